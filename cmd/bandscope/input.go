package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavInput streams deinterleaved float64 PCM blocks from a WAV file.
type wavInput struct {
	file *os.File
	dec  *wav.Decoder

	buf   *audio.IntBuffer
	left  []float64
	right []float64

	frames     int
	channels   int
	sampleRate int
	bitDepth   int
	scale      float64
}

// openWAVInput opens path and prepares block reads sized to one frame
// at the given tick rate.
func openWAVInput(path string, fps int) (*wavInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bandscope: open input: %w", err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("bandscope: %s is not a valid WAV file", path)
	}

	if err := dec.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("bandscope: reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		f.Close()
		return nil, fmt.Errorf("bandscope: WAV reports %d channels", channels)
	}

	if channels > 2 {
		channels = 2
	}

	bitDepth := int(dec.BitDepth)

	frames := int(dec.SampleRate) / fps
	if frames < 1 {
		frames = 1
	}

	in := &wavInput{
		file:       f,
		dec:        dec,
		frames:     frames,
		channels:   channels,
		sampleRate: int(dec.SampleRate),
		bitDepth:   bitDepth,
		scale:      float64(int64(1) << (bitDepth - 1)),
		left:       make([]float64, frames),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: int(dec.NumChans),
				SampleRate:  int(dec.SampleRate),
			},
			Data: make([]int, frames*int(dec.NumChans)),
		},
	}

	if channels == 2 {
		in.right = make([]float64, frames)
	}

	return in, nil
}

func (w *wavInput) SampleRate() int { return w.sampleRate }
func (w *wavInput) Channels() int   { return w.channels }

// Read fills the next block. The returned slices are reused across
// calls; for mono files right is nil. At end of file the input rewinds
// and keeps reading from the start, so io.EOF only surfaces when the
// rewind itself fails.
func (w *wavInput) Read() (left, right []float64, err error) {
	n, err := w.dec.PCMBuffer(w.buf)
	if err != nil {
		return nil, nil, fmt.Errorf("bandscope: decode WAV block: %w", err)
	}

	if n == 0 {
		if err := w.dec.Rewind(); err != nil {
			return nil, nil, io.EOF
		}

		if err := w.dec.FwdToPCM(); err != nil {
			return nil, nil, io.EOF
		}

		n, err = w.dec.PCMBuffer(w.buf)
		if err != nil || n == 0 {
			return nil, nil, io.EOF
		}
	}

	srcChans := w.buf.Format.NumChannels
	got := n / srcChans

	for i := 0; i < got; i++ {
		w.left[i] = w.normalize(w.buf.Data[i*srcChans])
	}

	if w.channels == 2 {
		for i := 0; i < got; i++ {
			w.right[i] = w.normalize(w.buf.Data[i*srcChans+1])
		}

		return w.left[:got], w.right[:got], nil
	}

	return w.left[:got], nil, nil
}

func (w *wavInput) normalize(v int) float64 {
	// 8-bit WAV PCM is unsigned.
	if w.bitDepth == 8 {
		return (float64(v) - 128) / w.scale
	}

	return float64(v) / w.scale
}

func (w *wavInput) Close() error {
	return w.file.Close()
}
