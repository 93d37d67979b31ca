package acidbox

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	wavHeaderSize  = 44
	wavChannels    = 2
	wavBytesPerSmp = 2
)

// Interleave merges two equally long channels into L0, R0, L1, R1, ... If
// the channels differ in length, the shorter one is padded with silence.
func Interleave(left, right []float32) []float32 {
	n := max(len(left), len(right))
	ret := make([]float32, 2*n)
	for i := 0; i < n; i++ {
		if i < len(left) {
			ret[2*i] = left[i]
		}
		if i < len(right) {
			ret[2*i+1] = right[i]
		}
	}
	return ret
}

// Wav encodes interleaved stereo float samples as a canonical 44-byte header
// 16-bit PCM .wav file. Samples are converted with round(sample * 32767),
// clamped to the int16 range. An empty buffer yields a valid file with a zero
// length data chunk.
func Wav(interleaved []float32, sampleRate int) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(wavHeaderSize + wavBytesPerSmp*len(interleaved))
	wavHeader(len(interleaved), sampleRate, buf)
	if err := pcm16ToBuffer(interleaved, buf); err != nil {
		return nil, fmt.Errorf("Wav failed: %v", err)
	}
	return buf.Bytes(), nil
}

// Wav encodes the stereo buffer as a 16-bit PCM .wav file.
func (b AudioBuffer) Wav(sampleRate int) ([]byte, error) {
	left, right := b.Channels()
	return Wav(Interleave(left, right), sampleRate)
}

func pcm16ToBuffer(data []float32, buf *bytes.Buffer) error {
	int16data := make([]int16, len(data))
	for i, v := range data {
		int16data[i] = int16(clamp(int(math.Round(float64(v)*math.MaxInt16)), math.MinInt16, math.MaxInt16))
	}
	if err := binary.Write(buf, binary.LittleEndian, int16data); err != nil {
		return fmt.Errorf("could not binary write data to binary buffer: %v", err)
	}
	return nil
}

// wavHeader writes a wave header for a 16-bit stereo PCM .wav file into the
// buffer. bufferLength is the number of interleaved samples (L + R), so the
// number of frames is bufferLength / 2.
func wavHeader(bufferLength int, sampleRate int, buf *bytes.Buffer) {
	// Refer to: http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
	dataSize := wavBytesPerSmp * bufferLength
	buf.Write([]byte("RIFF"))
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.Write([]byte("WAVE"))
	buf.Write([]byte("fmt "))
	binary.Write(buf, binary.LittleEndian, uint32(16)) // fmt chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))  // PCM
	binary.Write(buf, binary.LittleEndian, uint16(wavChannels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*wavChannels*wavBytesPerSmp)) // avgBytesPerSec
	binary.Write(buf, binary.LittleEndian, uint16(wavChannels*wavBytesPerSmp))            // blockAlign
	binary.Write(buf, binary.LittleEndian, uint16(8*wavBytesPerSmp))                      // bits per sample
	buf.Write([]byte("data"))
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
