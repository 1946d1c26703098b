package audio

import (
	"encoding/binary"
	"math"
)

// downmix averages interleaved channels and rescales samples to 16 bits.
func downmix(data []int, channels, bitDepth int) []int16 {
	if channels < 1 {
		channels = 1
	}
	frames := len(data) / channels
	out := make([]int16, frames)

	for i := 0; i < frames; i++ {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += to16(data[i*channels+c], bitDepth)
		}
		out[i] = clamp16(sum / channels)
	}
	return out
}

func to16(v, bitDepth int) int {
	switch {
	case bitDepth == 8:
		// 8-bit WAV is unsigned.
		return (v - 128) << 8
	case bitDepth > 16:
		return v >> (bitDepth - 16)
	default:
		return v
	}
}

func clamp16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// resampleLinear converts samples between rates by linear interpolation.
func resampleLinear(samples []int16, from, to int) []int16 {
	if from == to || len(samples) == 0 || from <= 0 || to <= 0 {
		return samples
	}

	n := int(int64(len(samples)) * int64(to) / int64(from))
	if n == 0 {
		n = 1
	}
	out := make([]int16, n)
	ratio := float64(from) / float64(to)
	last := len(samples) - 1

	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= last {
			out[i] = samples[last]
			continue
		}
		frac := pos - float64(idx)
		a, b := float64(samples[idx]), float64(samples[idx+1])
		out[i] = clamp16(int(math.Round(a + (b-a)*frac)))
	}
	return out
}

// pcmBytes encodes samples as little-endian 16-bit PCM.
func pcmBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// pcmSamples decodes little-endian 16-bit PCM.
func pcmSamples(data []byte) []int16 {
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}
