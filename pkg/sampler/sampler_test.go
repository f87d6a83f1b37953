package sampler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pqc-lab/kembench/internal/constants"
)

func TestAvgPeak(t *testing.T) {
	avg, peak := avgPeak(nil)
	assert.Nil(t, avg)
	assert.Nil(t, peak)

	avg, peak = avgPeak([]float64{10, 20, 60})
	require.NotNil(t, avg)
	require.NotNil(t, peak)
	assert.InDelta(t, 30.0, *avg, 1e-9)
	assert.InDelta(t, 60.0, *peak, 1e-9)

	avg, peak = avgPeak([]float64{42})
	assert.InDelta(t, 42.0, *avg, 1e-9)
	assert.InDelta(t, 42.0, *peak, 1e-9)
}

func TestNewFallsBackToDefaultInterval(t *testing.T) {
	s := New(0)
	assert.Equal(t, constants.DefaultSampleInterval, s.interval)

	s = New(-time.Second)
	assert.Equal(t, constants.DefaultSampleInterval, s.interval)

	s = New(25 * time.Millisecond)
	assert.Equal(t, 25*time.Millisecond, s.interval)
}

func TestStartStopProducesSamples(t *testing.T) {
	s := New(10 * time.Millisecond)
	s.Start()
	time.Sleep(80 * time.Millisecond)
	summary := s.Stop()

	assert.InDelta(t, 0.01, summary.SampleIntervalS, 1e-9)
	assert.Greater(t, summary.SampleCount, 0)
	if summary.SystemAvgPercent != nil {
		assert.GreaterOrEqual(t, *summary.SystemPeakPercent, *summary.SystemAvgPercent)
		assert.GreaterOrEqual(t, *summary.SystemAvgPercent, 0.0)
	}
	if summary.ProcessAvgPercent != nil {
		assert.GreaterOrEqual(t, *summary.ProcessPeakPercent, *summary.ProcessAvgPercent)
	}
}

func TestStopWithoutSamples(t *testing.T) {
	// Stopping before the first tick must not invent CPU numbers.
	s := New(time.Hour)
	s.Start()
	summary := s.Stop()

	assert.Equal(t, 0, summary.SampleCount)
	assert.Nil(t, summary.SystemAvgPercent)
	assert.Nil(t, summary.SystemPeakPercent)
	assert.Nil(t, summary.ProcessAvgPercent)
	assert.Nil(t, summary.ProcessPeakPercent)
}
