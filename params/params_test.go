package params

import (
	"errors"
	"testing"
)

func TestIntegralAreaArea(t *testing.T) {
	t.Run("Normal", func(t *testing.T) {
		ia := &IntegralArea{RSteps: 700, MuSteps: 800, NuSteps: 320}
		area, err := ia.Area()
		if err != nil {
			t.Fatalf("Area failed: %v", err)
		}
		if area != 560000 {
			t.Errorf("area = %d, want 560000", area)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		ia := &IntegralArea{RSteps: 1 << 33, MuSteps: 1 << 33, NuSteps: 1}
		if _, err := ia.Area(); !errors.Is(err, ErrAreaOverflow) {
			t.Fatalf("want ErrAreaOverflow, got %v", err)
		}
	})

	t.Run("MaxWithoutOverflow", func(t *testing.T) {
		ia := &IntegralArea{RSteps: 1 << 32, MuSteps: 1 << 31, NuSteps: 1}
		area, err := ia.Area()
		if err != nil {
			t.Fatalf("Area failed: %v", err)
		}
		if area != 1<<63 {
			t.Errorf("area = %d, want 2^63", area)
		}
	})
}
