package oto

import (
	"encoding/binary"
	"math"

	"github.com/vsariola/acidbox"
)

// FloatBufferTo16BitLE converts a stereo float buffer to interleaved 16-bit
// little-endian samples, appending them to dst. Samples outside [-1, 1] are
// clipped.
func FloatBufferTo16BitLE(buff acidbox.AudioBuffer, dst []byte) []byte {
	for _, frame := range buff {
		for _, v := range frame {
			var uv int16
			if v < -1.0 {
				uv = -math.MaxInt16
			} else if v > 1.0 {
				uv = math.MaxInt16
			} else {
				uv = int16(v * math.MaxInt16)
			}
			dst = binary.LittleEndian.AppendUint16(dst, uint16(uv))
		}
	}
	return dst
}
