package evtdata

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	for tb := uint16(0); tb < NumTimeBuckets; tb += 7 {
		for val := -4095; val <= 4095; val += 13 {
			packed := PackSample(tb, val)
			gotTb, gotVal := UnpackSample(packed)
			require.Equal(t, tb, gotTb)
			require.Equal(t, int16(val), gotVal)
		}
	}
}

func TestPackSampleSaturates(t *testing.T) {
	_, val := UnpackSample(PackSample(3, 5000))
	require.Equal(t, int16(4095), val)

	_, val = UnpackSample(PackSample(3, -5000))
	require.Equal(t, int16(-4095), val)
}

func TestPackSampleExtremeValues(t *testing.T) {
	// The int extremes must saturate cleanly and not leak into the
	// time-bucket bits.
	tb, val := UnpackSample(PackSample(3, math.MinInt))
	require.Equal(t, uint16(3), tb)
	require.Equal(t, int16(-4095), val)

	tb, val = UnpackSample(PackSample(3, math.MaxInt))
	require.Equal(t, uint16(3), tb)
	require.Equal(t, int16(4095), val)
}

func TestPackSampleZero(t *testing.T) {
	tb, val := UnpackSample(PackSample(0, 0))
	require.Equal(t, uint16(0), tb)
	require.Equal(t, int16(0), val)
}

func TestUnpackSamplesDense(t *testing.T) {
	packed := []uint32{
		PackSample(3, 100),
		PackSample(511, -42),
	}
	samples := UnpackSamples(packed)
	require.Len(t, samples, NumTimeBuckets)
	for tb, val := range samples {
		switch tb {
		case 3:
			require.Equal(t, int16(100), val)
		case 511:
			require.Equal(t, int16(-42), val)
		default:
			require.Equal(t, int16(0), val)
		}
	}
}

func TestUnpackSamplesLastWriteWins(t *testing.T) {
	packed := []uint32{
		PackSample(10, 7),
		PackSample(10, 9),
	}
	samples := UnpackSamples(packed)
	require.Equal(t, int16(9), samples[10])
}
