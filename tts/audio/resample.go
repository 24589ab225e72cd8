package audio

import "encoding/binary"

// Resample converts mono PCM16LE from one sample rate to another with
// linear interpolation. Equal rates return pcm unchanged.
func Resample(pcm []byte, from, to int) []byte {
	if from == to || from <= 0 || to <= 0 || len(pcm) < 2 {
		return pcm
	}

	in := len(pcm) / 2
	out := int(int64(in) * int64(to) / int64(from))
	if out == 0 {
		return nil
	}

	sample := func(i int) float64 {
		return float64(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}

	buf := make([]byte, out*2)
	step := float64(from) / float64(to)
	for i := 0; i < out; i++ {
		pos := float64(i) * step
		j := int(pos)
		frac := pos - float64(j)

		v := sample(j)
		if j+1 < in {
			v += (sample(j+1) - v) * frac
		}
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(int16(v)))
	}
	return buf
}

// MonoToStereo duplicates every PCM16 sample into both channels.
func MonoToStereo(pcm []byte) []byte {
	out := make([]byte, 0, len(pcm)*2)
	for i := 0; i+1 < len(pcm); i += 2 {
		out = append(out, pcm[i], pcm[i+1], pcm[i], pcm[i+1])
	}
	return out
}

// Duration returns how long mono PCM16 at sampleRate plays, in seconds.
func Duration(pcm []byte, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(len(pcm)/2) / float64(sampleRate)
}
