package stage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuildsAllBuiltinKinds(t *testing.T) {
	reg := NewRegistry()

	cases := []Config{
		{Type: "movingAverage", Params: []byte(`{"mode":"moving","windowSize":4}`)},
		{Type: "meanAbsoluteValue", Params: []byte(`{"mode":"moving","windowSize":4}`)},
		{Type: "rms", Params: []byte(`{"mode":"moving","windowSize":4}`)},
		{Type: "variance", Params: []byte(`{"mode":"moving","windowSize":4}`)},
		{Type: "zScoreNormalize", Params: []byte(`{"mode":"moving","windowSize":4}`)},
		{Type: "rectify", Params: []byte(`{"mode":"full"}`)},
	}

	for _, cfg := range cases {
		st, err := reg.Build(cfg)
		require.NoErrorf(t, err, "Build(%s)", cfg.Type)
		assert.Equal(t, cfg.Type, st.Type())
	}
}

func TestRegistryBuildsBatchVariants(t *testing.T) {
	reg := NewRegistry()

	cases := []Config{
		{Type: "movingAverage", Params: []byte(`{"mode":"batch"}`)},
		{Type: "meanAbsoluteValue", Params: []byte(`{"mode":"batch"}`)},
		{Type: "rms", Params: []byte(`{"mode":"batch"}`)},
		{Type: "variance", Params: []byte(`{"mode":"batch"}`)},
		{Type: "zScoreNormalize", Params: []byte(`{"mode":"batch"}`)},
	}

	for _, cfg := range cases {
		st, err := reg.Build(cfg)
		require.NoErrorf(t, err, "Build(%s)", cfg.Type)
		assert.Equal(t, cfg.Type, st.Type())
		assert.Equal(t, "batch", st.Describe().Mode)
	}
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Build(Config{Type: "bogus"})
	require.ErrorIs(t, err, ErrUnknownStageType)
}

func TestRegistryRejectsMissingWindowSizeForMoving(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Build(Config{Type: "movingAverage", Params: []byte(`{"mode":"moving"}`)})
	require.ErrorIs(t, err, ErrMissingWindowSize)
}

func TestMovingAverageProcessesMultiChannelInterleaved(t *testing.T) {
	s, err := NewMovingAverage(ModeMoving, 2)
	require.NoError(t, err)

	buf := []float32{1, 10, 3, 20}
	require.NoError(t, s.Process(buf, 2))
	// Channel 0 sees {1,3}: after first sample mean=1, after second mean=2.
	assert.InDelta(t, 2, buf[2], 1e-6)
	// Channel 1 sees {10,20}: after first mean=10, after second mean=15.
	assert.InDelta(t, 15, buf[3], 1e-6)
}

func TestMovingAverageRejectsChannelCountChange(t *testing.T) {
	s, err := NewMovingAverage(ModeMoving, 2)
	require.NoError(t, err)

	require.NoError(t, s.Process([]float32{1, 2}, 2))
	err = s.Process([]float32{1, 2, 3}, 3)
	require.ErrorIs(t, err, ErrChannelCountMismatch)
}

func TestMovingAverageSerializeDeserializeRoundTrip(t *testing.T) {
	s, err := NewMovingAverage(ModeMoving, 3)
	require.NoError(t, err)
	require.NoError(t, s.Process([]float32{1, 2, 3, 4, 5, 6}, 2))

	data, err := s.Serialize()
	require.NoError(t, err)

	restored, err := NewMovingAverage(ModeMoving, 3)
	require.NoError(t, err)
	require.NoError(t, restored.Deserialize(data))

	orig := []float32{7, 8}
	restoredBuf := []float32{7, 8}
	require.NoError(t, s.Process(orig, 2))
	require.NoError(t, restored.Process(restoredBuf, 2))
	assert.Equal(t, orig, restoredBuf)
}

func TestMovingAverageDeserializeRejectsWindowSizeMismatch(t *testing.T) {
	s, err := NewMovingAverage(ModeMoving, 3)
	require.NoError(t, err)
	require.NoError(t, s.Process([]float32{1, 2, 3}, 1))
	data, err := s.Serialize()
	require.NoError(t, err)

	other, err := NewMovingAverage(ModeMoving, 5)
	require.NoError(t, err)
	err = other.Deserialize(data)
	require.ErrorIs(t, err, ErrWindowSizeMismatch)
}

func TestMovingAverageRejectsMissingWindowSize(t *testing.T) {
	_, err := NewMovingAverage(ModeMoving, 0)
	require.ErrorIs(t, err, ErrMissingWindowSize)
}

func TestMovingAverageBatchFillsChannelWithMean(t *testing.T) {
	s, err := NewMovingAverage(ModeBatch, 0)
	require.NoError(t, err)

	buf := []float32{10, 20, 30, 40, 50}
	require.NoError(t, s.Process(buf, 1))
	assert.InDeltaSlice(t, []float32{30, 30, 30, 30, 30}, buf, 1e-4)
}

func TestMovingAverageBatchIsIdempotent(t *testing.T) {
	s, err := NewMovingAverage(ModeBatch, 0)
	require.NoError(t, err)

	once := []float32{10, 20, 30, 40, 50}
	require.NoError(t, s.Process(once, 1))

	twice := make([]float32, len(once))
	copy(twice, once)
	require.NoError(t, s.Process(twice, 1))

	assert.Equal(t, once, twice)
}

func TestMovingAverageBatchDeserializeRejectsModeMismatch(t *testing.T) {
	batch, err := NewMovingAverage(ModeBatch, 0)
	require.NoError(t, err)
	require.NoError(t, batch.Process([]float32{1, 2, 3}, 1))
	data, err := batch.Serialize()
	require.NoError(t, err)

	moving, err := NewMovingAverage(ModeMoving, 3)
	require.NoError(t, err)
	err = moving.Deserialize(data)
	require.ErrorIs(t, err, ErrModeMismatch)
}

func TestZScoreNormalizeDeserializeRejectsEpsilonMismatch(t *testing.T) {
	s, err := NewZScoreNormalize(ModeMoving, 3, 0.01)
	require.NoError(t, err)
	require.NoError(t, s.Process([]float32{1, 2, 3}, 1))
	data, err := s.Serialize()
	require.NoError(t, err)

	other, err := NewZScoreNormalize(ModeMoving, 3, 0.5)
	require.NoError(t, err)
	err = other.Deserialize(data)
	require.ErrorIs(t, err, ErrEpsilonMismatch)
}

func TestZScoreNormalizeBatchStandardizesPerChannel(t *testing.T) {
	s, err := NewZScoreNormalize(ModeBatch, 0, 1e-6)
	require.NoError(t, err)

	buf := []float32{10, 20, 30, 40, 50}
	require.NoError(t, s.Process(buf, 1))
	assert.InDeltaSlice(t, []float32{-1.41421, -0.70711, 0, 0.70711, 1.41421}, buf, 1e-3)
}

func TestZScoreNormalizeBatchIsIdempotent(t *testing.T) {
	s, err := NewZScoreNormalize(ModeBatch, 0, 1e-6)
	require.NoError(t, err)

	once := []float32{10, 20, 30, 40, 50}
	require.NoError(t, s.Process(once, 1))

	twice := make([]float32, len(once))
	copy(twice, once)
	require.NoError(t, s.Process(twice, 1))

	assert.InDeltaSlice(t, once, twice, 1e-4)
}

func TestRMSBatchFillsChannelWithRMS(t *testing.T) {
	s, err := NewRMS(ModeBatch, 0)
	require.NoError(t, err)

	buf := []float32{3, 4}
	require.NoError(t, s.Process(buf, 1))
	assert.InDeltaSlice(t, []float32{3.53553, 3.53553}, buf, 1e-3)
}

func TestVarianceBatchFillsChannelWithVariance(t *testing.T) {
	s, err := NewVariance(ModeBatch, 0)
	require.NoError(t, err)

	buf := []float32{2, 4, 4, 4, 5, 5, 7, 9}
	require.NoError(t, s.Process(buf, 1))
	for _, v := range buf {
		assert.InDelta(t, 4, v, 1e-3)
	}
}

func TestMeanAbsoluteValueBatchFillsChannelWithMAV(t *testing.T) {
	s, err := NewMeanAbsoluteValue(ModeBatch, 0)
	require.NoError(t, err)

	buf := []float32{-1, 2, -3, 4}
	require.NoError(t, s.Process(buf, 1))
	assert.InDeltaSlice(t, []float32{2.5, 2.5, 2.5, 2.5}, buf, 1e-4)
}

func TestRectifyModes(t *testing.T) {
	full, err := NewRectify(RectifyFullWave)
	require.NoError(t, err)
	buf := []float32{-2, 3, -4}
	require.NoError(t, full.Process(buf, 1))
	assert.Equal(t, []float32{2, 3, 4}, buf)

	half, err := NewRectify(RectifyHalfWave)
	require.NoError(t, err)
	buf2 := []float32{-2, 3, -4}
	require.NoError(t, half.Process(buf2, 1))
	assert.Equal(t, []float32{0, 3, 0}, buf2)
}

func TestRectifyRejectsInvalidMode(t *testing.T) {
	_, err := NewRectify("bogus")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRectifyDeserializeRejectsModeMismatch(t *testing.T) {
	full, err := NewRectify(RectifyFullWave)
	require.NoError(t, err)
	require.NoError(t, full.Process([]float32{1, 2}, 1))
	data, err := full.Serialize()
	require.NoError(t, err)

	half, err := NewRectify(RectifyHalfWave)
	require.NoError(t, err)
	err = half.Deserialize(data)
	require.ErrorIs(t, err, ErrModeMismatch)
}

func TestInvalidBufferLengthRejected(t *testing.T) {
	s, err := NewMovingAverage(ModeMoving, 2)
	require.NoError(t, err)
	err = s.Process([]float32{1, 2, 3}, 2)
	require.True(t, errors.Is(err, ErrInvalidBufferLength))
}
