package evtdata

// Packed sample layout, 3 bytes on disk, zero-extended to 4 little-endian:
//
//	bits [0:12)   amplitude magnitude
//	bit  [12]     sign parity
//	bits [15:24)  time bucket

const (
	// NumTimeBuckets is the number of sampling intervals in every trace.
	NumTimeBuckets = 512

	maxSampleValue = 0xFFF

	sampleMask uint32 = 0xFFF
	parityMask uint32 = 0x1000
	tbMask     uint32 = 0xFF8000
	tbShift           = 15
)

// PackSample packs a time bucket / amplitude pair into a 24-bit value.
// The amplitude magnitude saturates at 4095; the sign goes into the parity
// bit. Packing never fails.
func PackSample(tb uint16, val int) uint32 {
	var parity uint32
	magnitude := val
	if val < 0 {
		parity = parityMask
		// Clamp before negating so math.MinInt cannot overflow.
		if val < -maxSampleValue {
			magnitude = maxSampleValue
		} else {
			magnitude = -val
		}
	} else if magnitude > maxSampleValue {
		magnitude = maxSampleValue
	}
	return uint32(tb)<<tbShift | uint32(magnitude) | parity
}

// UnpackSample unpacks a packed time bucket / amplitude pair.
func UnpackSample(packed uint32) (uint16, int16) {
	tb := uint16((packed & tbMask) >> tbShift)
	sample := int16(packed & sampleMask)
	if packed&parityMask != 0 {
		sample = -sample
	}
	return tb, sample
}

// UnpackSamples unpacks a sequence of packed pairs into a dense array of
// NumTimeBuckets amplitudes indexed by time bucket. Unreferenced time buckets
// stay at zero; repeated time buckets keep the last value seen.
func UnpackSamples(packed []uint32) []int16 {
	samples := make([]int16, NumTimeBuckets)
	for _, p := range packed {
		tb, val := UnpackSample(p)
		samples[tb] = val
	}
	return samples
}
