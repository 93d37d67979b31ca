package acidbox_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/go-audio/wav"
	"github.com/vsariola/acidbox"
)

func TestWavHeader(t *testing.T) {
	buffer := acidbox.AudioBuffer{{0, 0}, {0.5, -0.5}, {1, -1}, {2, -2}}
	b, err := buffer.Wav(44100)
	if err != nil {
		t.Fatalf("Wav failed: %v", err)
	}
	if len(b) != 44+len(buffer)*2*2 {
		t.Fatalf("wav file is %d bytes, expected %d", len(b), 44+len(buffer)*2*2)
	}
	if dataSize := binary.LittleEndian.Uint32(b[40:]); dataSize != uint32(len(buffer)*2*2) {
		t.Fatalf("data chunk size is %d, expected %d", dataSize, len(buffer)*2*2)
	}
	d := wav.NewDecoder(bytes.NewReader(b))
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatalf("could not decode the wav file: %v", err)
	}
	if d.SampleRate != 44100 || d.NumChans != 2 || d.BitDepth != 16 {
		t.Fatalf("decoded format: %v Hz, %v channels, %v bits", d.SampleRate, d.NumChans, d.BitDepth)
	}
	expected := []int{0, 0, 16384, -16384, 32767, -32767, 32767, -32768}
	if len(pcm.Data) != len(expected) {
		t.Fatalf("decoded %d samples, expected %d", len(pcm.Data), len(expected))
	}
	for i, v := range expected {
		if pcm.Data[i] != v {
			t.Fatalf("sample %d is %d, expected %d (all: %v)", i, pcm.Data[i], v, pcm.Data)
		}
	}
}

func TestWavEmpty(t *testing.T) {
	b, err := acidbox.Wav(nil, 48000)
	if err != nil {
		t.Fatalf("Wav failed: %v", err)
	}
	if len(b) != 44 {
		t.Fatalf("empty wav file is %d bytes, expected 44", len(b))
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" || string(b[36:40]) != "data" {
		t.Fatalf("malformed header: %q", b)
	}
	if riff := binary.LittleEndian.Uint32(b[4:]); riff != 36 {
		t.Fatalf("RIFF size is %d, expected 36", riff)
	}
	if rate := binary.LittleEndian.Uint32(b[24:]); rate != 48000 {
		t.Fatalf("sample rate is %d, expected 48000", rate)
	}
	if dataSize := binary.LittleEndian.Uint32(b[40:]); dataSize != 0 {
		t.Fatalf("data chunk size is %d, expected 0", dataSize)
	}
}

func TestInterleave(t *testing.T) {
	got := acidbox.Interleave([]float32{1, 2, 3}, []float32{4, 5})
	expected := []float32{1, 4, 2, 5, 3, 0}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("Interleave = %v, expected %v", got, expected)
		}
	}
}

func TestBufferSource(t *testing.T) {
	buffer := acidbox.AudioBuffer{{1, 1}, {2, 2}, {3, 3}}
	source := buffer.Source()
	block := make(acidbox.AudioBuffer, 2)
	if err := source(block); err != nil {
		t.Fatalf("first block returned %v", err)
	}
	if block[0][0] != 1 || block[1][0] != 2 {
		t.Fatalf("first block is %v", block)
	}
	if err := source(block); err != io.EOF {
		t.Fatalf("last block should return io.EOF, got %v", err)
	}
	if block[0][0] != 3 || block[1] != [2]float32{} {
		t.Fatalf("last block is %v, expected the tail padded with silence", block)
	}
}
