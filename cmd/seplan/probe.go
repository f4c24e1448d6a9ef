package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/milkywayathome/sepcl/device"
	"github.com/milkywayathome/sepcl/occa"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe for a usable OCCA backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := &device.Info{
			Name:            "occa host",
			Class:           device.ClassCPU,
			WarpSize:        1,
			MaxComputeUnits: uint32(runtime.NumCPU()),
		}

		be, err := occa.PreferredBackend(info)
		if err != nil {
			return err
		}
		defer be.Close()

		fmt.Printf("OCCA backend: %s\n", be.Mode())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
