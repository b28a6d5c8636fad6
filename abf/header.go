package abf

import (
	"bytes"
	"fmt"
	"strings"
)

// FileHeader is implemented by *Header1 and *Header2.
type FileHeader interface {
	Common() *Header
}

// Common returns the version-independent header fields.
func (h *Header) Common() *Header { return h }

var (
	signatureV1 = []byte("ABF ")
	signatureV2 = []byte("ABF2")
)

// DecodeHeader parses the header of an ABF1 or ABF2 file. The concrete type
// is *Header1 or *Header2.
func DecodeHeader(data []byte) (FileHeader, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}

	switch {
	case bytes.Equal(data[:4], signatureV2):
		return decodeHeader2(data)
	case bytes.Equal(data[:4], signatureV1):
		return decodeHeader1(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadSignature, data[:4])
	}
}

// ABF2 section map: each entry is uBlockIndex (u32), uBytes (u32) and
// llNumEntries (i64), starting at byte 76.
const (
	sectionMapOffset = 76
	sectionEntrySize = 16

	sectionProtocol = 0
	sectionADC      = 1
	sectionStrings  = 9
	sectionData     = 10
)

type section struct {
	offset  int64
	bytes   int64
	entries int64
}

func readSection(r *reader, index int) section {
	off := int64(sectionMapOffset + index*sectionEntrySize)
	return section{
		offset:  int64(r.u32(off)) * blockSize,
		bytes:   int64(r.u32(off + 4)),
		entries: r.i64(off + 8),
	}
}

func decodeHeader2(data []byte) (*Header2, error) {
	r := &reader{data: data}

	h := &Header2{}
	h.Version = Version2
	h.SweepCount = int(r.u32(12))
	h.Format = DataFormat(r.i16(30))

	protocol := readSection(r, sectionProtocol)
	adc := readSection(r, sectionADC)
	strs := readSection(r, sectionStrings)
	dataSec := readSection(r, sectionData)
	if r.err != nil {
		return nil, r.err
	}

	h.Mode = OperationMode(r.i16(protocol.offset))
	h.SampleInterval = float64(r.f32(protocol.offset + 2))
	h.ADCRange = r.f32(protocol.offset + 110)
	h.ADCResolution = r.i32(protocol.offset + 118)

	indexed := indexedStrings(r, strs)

	h.ChannelCount = int(adc.entries)
	if h.ChannelCount <= 0 || adc.bytes < 82 {
		return nil, fmt.Errorf("%w: %d ADC channels of %d bytes", ErrInvalidHeader, adc.entries, adc.bytes)
	}
	h.Channels = make([]Channel, h.ChannelCount)
	for i := range h.Channels {
		base := adc.offset + int64(i)*adc.bytes
		h.Channels[i] = Channel{
			TelegraphEnabled:      r.i16(base+2) != 0,
			TelegraphAdditGain:    r.f32(base + 6),
			ProgrammableGain:      r.f32(base + 28),
			InstrumentScaleFactor: r.f32(base + 40),
			InstrumentOffset:      r.f32(base + 44),
			SignalGain:            r.f32(base + 48),
			SignalOffset:          r.f32(base + 52),
			Name:                  indexed.lookup(r.i32(base + 74)),
			Units:                 indexed.lookup(r.i32(base + 78)),
		}
	}

	h.DataOffset = dataSec.offset
	h.DataPoints = dataSec.entries
	if dataSec.bytes != 0 && int(dataSec.bytes) != h.Format.bytesPerSample() {
		return nil, fmt.Errorf("%w: %d bytes per sample with format %d", ErrUnsupportedFormat, dataSec.bytes, h.Format)
	}

	if r.err != nil {
		return nil, r.err
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// stringTable resolves the 1-based string indices of an ABF2 strings section.
// Index 1 is the creator application name; the bytes before it hold
// unrelated data and are skipped.
type stringTable []string

func indexedStrings(r *reader, s section) stringTable {
	if s.bytes == 0 || !r.has(s.offset, int(s.bytes)) {
		return nil
	}
	parts := strings.Split(string(r.slice(s.offset, int(s.bytes))), "\x00")
	for i, p := range parts {
		lower := strings.ToLower(p)
		for _, creator := range []string{"clampex", "clampfit", "axoscope", "patchxpress"} {
			if strings.Contains(lower, creator) {
				return stringTable(parts[i:])
			}
		}
	}
	return nil
}

func (t stringTable) lookup(index int32) string {
	if index < 1 || int(index) > len(t) {
		return ""
	}
	return strings.TrimSpace(t[index-1])
}

// ABF1 keeps per-channel parameters in 16-entry arrays indexed by physical
// channel number.
const (
	abf1MaxChannels     = 16
	abf1TelegraphOffset = 4512
)

func decodeHeader1(data []byte) (*Header1, error) {
	r := &reader{data: data}

	h := &Header1{}
	h.Version = Version1
	h.Mode = OperationMode(r.i16(8))
	h.DataPoints = int64(r.i32(10))
	ignored := int64(r.i16(14))
	h.SweepCount = int(r.i32(16))
	dataBlock := int64(r.i32(40))
	h.Format = DataFormat(r.i16(100))
	h.ChannelCount = int(r.i16(120))
	interval := float64(r.f32(122))
	h.ADCRange = r.f32(244)
	h.ADCResolution = r.i32(252)
	if r.err != nil {
		return nil, r.err
	}

	if h.ChannelCount <= 0 || h.ChannelCount > abf1MaxChannels {
		return nil, fmt.Errorf("%w: %d ADC channels", ErrInvalidHeader, h.ChannelCount)
	}
	// fADCSampleInterval spans one sample of every channel in the sequence.
	h.SampleInterval = interval * float64(h.ChannelCount)
	h.DataOffset = dataBlock*blockSize + ignored*int64(h.Format.bytesPerSample())

	telegraph := r.has(abf1TelegraphOffset, 2*64)

	h.Channels = make([]Channel, h.ChannelCount)
	for i := range h.Channels {
		phys := int64(r.i16(410 + int64(2*i)))
		if phys < 0 || phys >= abf1MaxChannels {
			return nil, fmt.Errorf("%w: physical channel %d", ErrInvalidHeader, phys)
		}
		ch := Channel{
			Name:                  r.str(442+10*phys, 10),
			Units:                 r.str(602+8*phys, 8),
			ProgrammableGain:      r.f32(730 + 4*phys),
			InstrumentScaleFactor: r.f32(922 + 4*phys),
			InstrumentOffset:      r.f32(986 + 4*phys),
			SignalGain:            r.f32(1050 + 4*phys),
			SignalOffset:          r.f32(1114 + 4*phys),
		}
		if telegraph {
			ch.TelegraphEnabled = r.i16(abf1TelegraphOffset+2*phys) != 0
			ch.TelegraphAdditGain = r.f32(abf1TelegraphOffset + 64 + 4*phys)
		}
		h.Channels[i] = ch
	}

	if r.err != nil {
		return nil, r.err
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Header) validate() error {
	if h.Format != FormatInt16 && h.Format != FormatFloat32 {
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, h.Format)
	}
	if !(h.SampleInterval > 0) {
		return fmt.Errorf("%w: sample interval %v us", ErrInvalidHeader, h.SampleInterval)
	}
	if h.DataPoints <= 0 {
		return fmt.Errorf("%w: %d data points", ErrInvalidHeader, h.DataPoints)
	}
	// A gap-free recording is one sweep whatever its episode count says.
	if h.Mode == ModeGapFree || h.SweepCount <= 0 {
		h.SweepCount = 1
	}
	return nil
}
