package admission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/milkywayathome/sepcl/device"
	"github.com/milkywayathome/sepcl/params"
)

func testParams() *params.AstronomyParameters {
	return &params.AstronomyParameters{NumberStreams: 3, Convolve: 120}
}

func testArea() params.IntegralArea {
	return params.IntegralArea{RSteps: 700, MuSteps: 800, NuSteps: 320}
}

func roomyDevice() *device.Info {
	return &device.Info{
		Name:            "roomy",
		Class:           device.ClassAccelerator,
		GlobalMemSize:   1 << 30,
		MaxMemAlloc:     1 << 28,
		MaxConstBufSize: 1 << 16,
		MaxConstArgs:    8,
		DoubleSupport:   true,
	}
}

func TestCalculateSizes(t *testing.T) {
	ia := testArea()
	sizes := CalculateSizes(testParams(), &ia)

	assert.Equal(t, uint64(4480000), sizes.OutBg)
	assert.Equal(t, uint64(13440000), sizes.OutStreams)
	assert.Equal(t, uint64(1344000), sizes.RPts)
	assert.Equal(t, uint64(11200), sizes.Rc)
	assert.Equal(t, uint64(4096000), sizes.LTrig)
	assert.Equal(t, uint64(2048000), sizes.BSin)
	assert.Equal(t, uint64(144), sizes.Sc)
	assert.Equal(t, uint64(960), sizes.SgDx)
}

func TestCheckDeviceMemory(t *testing.T) {
	ia := testArea()
	sizes := CalculateSizes(testParams(), &ia)

	t.Run("Admits", func(t *testing.T) {
		require.NoError(t, CheckDeviceMemory(roomyDevice(), sizes))
	})

	t.Run("SingleAllocationLimit", func(t *testing.T) {
		di := roomyDevice()
		di.MaxMemAlloc = 5 << 20 // only the stream output buffer exceeds this

		err := CheckDeviceMemory(di, sizes)
		require.Error(t, err)

		var mle *MemoryLimitError
		require.ErrorAs(t, err, &mle)
		assert.Equal(t, "stream output buffer", mle.Buffer)
		assert.Equal(t, uint64(13440000), mle.Required)
		assert.Equal(t, uint64(5<<20), mle.Available)
	})

	t.Run("AllViolationsReported", func(t *testing.T) {
		di := roomyDevice()
		di.MaxMemAlloc = 1 << 20

		err := CheckDeviceMemory(di, sizes)
		require.Error(t, err)

		// outBg, outStreams, lTrig, bSin and rPts all exceed 1 MiB; rc fits.
		assert.Len(t, multierr.Errors(err), 5)
	})

	t.Run("ConstantArgCount", func(t *testing.T) {
		di := roomyDevice()
		di.MaxConstArgs = 4

		err := CheckDeviceMemory(di, sizes)
		var mle *MemoryLimitError
		require.ErrorAs(t, err, &mle)
		assert.Equal(t, "constant argument count", mle.Limit)
	})

	t.Run("ConstantBufferSize", func(t *testing.T) {
		di := roomyDevice()
		di.MaxConstBufSize = 1024 // total constant block is 1616 bytes

		err := CheckDeviceMemory(di, sizes)
		var mle *MemoryLimitError
		require.ErrorAs(t, err, &mle)
		assert.Equal(t, "constant buffer size", mle.Limit)
		assert.Equal(t, uint64(1616), mle.Required)
	})

	t.Run("TotalMemory", func(t *testing.T) {
		di := roomyDevice()
		di.GlobalMemSize = 1 << 20

		err := CheckDeviceMemory(di, sizes)
		var mle *MemoryLimitError
		require.ErrorAs(t, err, &mle)
		assert.Equal(t, "global memory", mle.Limit)
	})

	t.Run("Idempotent", func(t *testing.T) {
		di := roomyDevice()
		di.MaxMemAlloc = 1 << 20

		first := CheckDeviceMemory(di, sizes)
		second := CheckDeviceMemory(di, sizes)
		require.Error(t, first)
		require.Error(t, second)
		assert.Equal(t, first.Error(), second.Error())
	})
}

func TestCheckDeviceCapabilities(t *testing.T) {
	t.Run("Admits", func(t *testing.T) {
		areas := []params.IntegralArea{testArea(), testArea()}
		require.NoError(t, CheckDeviceCapabilities(roomyDevice(), testParams(), areas))
	})

	t.Run("NoDoubles", func(t *testing.T) {
		di := roomyDevice()
		di.DoubleSupport = false

		err := CheckDeviceCapabilities(di, testParams(), []params.IntegralArea{testArea()})

		var ce *CapabilityError
		require.ErrorAs(t, err, &ce)
	})

	t.Run("FailingCutIndexReported", func(t *testing.T) {
		huge := params.IntegralArea{RSteps: 70000, MuSteps: 80000, NuSteps: 320}
		areas := []params.IntegralArea{testArea(), huge}

		err := CheckDeviceCapabilities(roomyDevice(), testParams(), areas)

		var cut *CutError
		require.ErrorAs(t, err, &cut)
		assert.Equal(t, 1, cut.Cut)

		var mle *MemoryLimitError
		require.ErrorAs(t, err, &mle)
	})
}
