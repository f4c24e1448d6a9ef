package main

import (
	"github.com/spf13/cobra"

	"github.com/milkywayathome/sepcl/logutil"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "seplan",
	Short: "Plan separation kernel dispatch for a compute device",
	Long: `seplan runs the separation work-partitioning pipeline against a device
capability snapshot: memory admission, chunk planning, and the resulting
kernel dispatch sizes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logutil.InitLogger(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose diagnostics")
}
