package segment

// TargetSampleRate is the sample rate the recognition stage expects.
const TargetSampleRate = 16000

// Resample converts src (captured at srcRate) to targetRate via linear
// interpolation between adjacent samples. For each output index i, the
// source position i/ratio is split into integer and fractional parts;
// boundary samples clamp to the last source sample. Resampling allocates a
// fresh buffer; it never mutates src.
func Resample(src []float32, srcRate, targetRate int) []float32 {
	if srcRate == targetRate || len(src) == 0 {
		out := make([]float32, len(src))
		copy(out, src)
		return out
	}

	ratio := float64(targetRate) / float64(srcRate)
	outLen := int(float64(len(src)) * ratio)
	out := make([]float32, outLen)

	for i := 0; i < outLen; i++ {
		srcPos := float64(i) / ratio
		idx := int(srcPos)
		frac := srcPos - float64(idx)

		if idx >= len(src)-1 {
			out[i] = src[len(src)-1]
			continue
		}
		out[i] = src[idx]*float32(1-frac) + src[idx+1]*float32(frac)
	}
	return out
}
