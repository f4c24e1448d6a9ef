package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/milkywayathome/sepcl/admission"
	"github.com/milkywayathome/sepcl/params"
)

var (
	checkDev deviceFlags

	checkCuts     []string
	checkStreams  int
	checkConvolve int
	checkAuxBG    bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the memory admission check for a set of integration cuts",
	RunE:  runCheck,
}

func init() {
	checkDev.register(checkCmd)

	fl := checkCmd.Flags()
	fl.StringSliceVar(&checkCuts, "cuts", []string{"700:800:320"}, "Integration cuts as r:mu:nu")
	fl.IntVar(&checkStreams, "streams", 3, "Number of streams")
	fl.IntVar(&checkConvolve, "convolve", 120, "Convolution depth")
	fl.BoolVar(&checkAuxBG, "aux-profile", false, "Auxiliary background profile")

	rootCmd.AddCommand(checkCmd)
}

func parseCut(s string) (params.IntegralArea, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return params.IntegralArea{}, fmt.Errorf("cut %q: want r:mu:nu", s)
	}

	var vals [3]uint64
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil || v == 0 {
			return params.IntegralArea{}, fmt.Errorf("cut %q: bad step count %q", s, p)
		}
		vals[i] = v
	}

	return params.IntegralArea{RSteps: vals[0], MuSteps: vals[1], NuSteps: vals[2]}, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	di, err := checkDev.info()
	if err != nil {
		return err
	}

	ap := &params.AstronomyParameters{
		NumberStreams: checkStreams,
		Convolve:      checkConvolve,
		AuxBGProfile:  checkAuxBG,
	}

	areas := make([]params.IntegralArea, 0, len(checkCuts))
	for _, c := range checkCuts {
		ia, err := parseCut(c)
		if err != nil {
			return err
		}
		areas = append(areas, ia)
	}

	if verbose {
		for i := range areas {
			sizes := admission.CalculateSizes(ap, &areas[i])
			fmt.Printf("cut %d: outBg=%d outStreams=%d rPts=%d rc=%d lTrig=%d bSin=%d const=%d\n",
				i, sizes.OutBg, sizes.OutStreams, sizes.RPts, sizes.Rc, sizes.LTrig, sizes.BSin,
				sizes.Ap+sizes.Ia+sizes.Sc+sizes.SgDx)
		}
	}

	if err := admission.CheckDeviceCapabilities(di, ap, areas); err != nil {
		return fmt.Errorf("device failed capability check: %w", err)
	}

	fmt.Printf("Device %q admits all %d cut(s)\n", di.Name, len(areas))
	return nil
}
