package abf

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-vecmath"
)

// Open reads the ABF file at path and decodes the given ADC channel.
func Open(path string, channel int) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	rec, err := Decode(data, channel)
	if err != nil {
		return nil, err
	}
	rec.Name = filepath.Base(path)
	return rec, nil
}

// Decode parses an in-memory ABF file and extracts every sweep of one ADC
// channel (0-based, in sampling order).
func Decode(data []byte, channel int) (*Recording, error) {
	fh, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	h := fh.Common()

	if channel < 0 || channel >= h.ChannelCount {
		return nil, fmt.Errorf("%w: channel %d, file has %d", ErrChannelRange, channel, h.ChannelCount)
	}

	rate, err := SampleRate(fh)
	if err != nil {
		return nil, err
	}

	perSweep := h.DataPoints / int64(h.SweepCount) / int64(h.ChannelCount)
	if perSweep <= 0 {
		return nil, fmt.Errorf("%w: %d points for %d sweeps of %d channels",
			ErrInvalidHeader, h.DataPoints, h.SweepCount, h.ChannelCount)
	}

	bps := int64(h.Format.bytesPerSample())
	r := &reader{data: data}
	raw := r.slice(h.DataOffset, int(h.DataPoints*bps))
	if r.err != nil {
		return nil, r.err
	}

	ch := h.Channels[channel]
	scale, offset := h.scaling(ch)

	n := int(perSweep)
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) / rate
	}

	rec := &Recording{
		Version:      h.Version,
		SampleRate:   rate,
		Channel:      channel,
		ChannelCount: h.ChannelCount,
		ChannelName:  ch.Name,
		Units:        ch.Units,
		Sweeps:       make([]Sweep, h.SweepCount),
	}

	stride := int64(h.ChannelCount)
	counts := make([]float64, n)
	for s := range rec.Sweeps {
		first := int64(s)*perSweep*stride + int64(channel)
		for i := range counts {
			pos := (first + int64(i)*stride) * bps
			counts[i] = sampleAt(raw[pos:pos+bps], h.Format)
		}

		y := make([]float64, n)
		vecmath.ScaleBlock(y, counts, scale)
		if offset != 0 {
			for i := range y {
				y[i] += offset
			}
		}
		rec.Sweeps[s] = Sweep{Time: t, Y: y}
	}

	return rec, nil
}

func sampleAt(b []byte, f DataFormat) float64 {
	if f == FormatFloat32 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	return float64(int16(binary.LittleEndian.Uint16(b)))
}

// scaling returns the factor and offset that map stored samples of ch to
// physical units. Float32 data is already in physical units.
func (h *Header) scaling(ch Channel) (scale, offset float64) {
	if h.Format == FormatFloat32 {
		return 1, 0
	}

	scale = float64(h.ADCRange)
	if h.ADCResolution != 0 {
		scale /= float64(h.ADCResolution)
	}
	for _, gain := range []float32{ch.InstrumentScaleFactor, ch.SignalGain, ch.ProgrammableGain} {
		if gain != 0 {
			scale /= float64(gain)
		}
	}
	if ch.TelegraphEnabled && ch.TelegraphAdditGain != 0 {
		scale /= float64(ch.TelegraphAdditGain)
	}

	return scale, float64(ch.InstrumentOffset - ch.SignalOffset)
}
