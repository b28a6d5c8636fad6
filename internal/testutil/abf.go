package testutil

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
)

// ABFFixture describes a synthetic recording written by WriteABF2 or
// WriteABF1.
type ABFFixture struct {
	SampleRate float64
	// Sweeps[s][c] holds the samples of channel c in sweep s. All slices must
	// have the same length.
	Sweeps [][][]float64
	// Float32 stores samples as float32 instead of scaled int16.
	Float32 bool
	// GapFree writes operation mode 3 and an episode count of GapFreeChunks;
	// only valid with one sweep. Other fixtures are episodic (mode 5).
	GapFree       bool
	GapFreeChunks int

	Names []string
	Units []string

	// ADCRange defaults to 10 and ADCResolution to 32768.
	ADCRange      float32
	ADCResolution int32
	// SignalGain defaults to 1.
	SignalGain float32
	// InstrumentOffset is added to every scaled int16 sample.
	InstrumentOffset float32
}

// Quantum returns the size of one int16 step in physical units.
func (f ABFFixture) Quantum() float64 {
	f = f.withDefaults()
	return float64(f.ADCRange) / float64(f.ADCResolution) / float64(f.SignalGain)
}

func (f ABFFixture) withDefaults() ABFFixture {
	if f.ADCRange == 0 {
		f.ADCRange = 10
	}
	if f.ADCResolution == 0 {
		f.ADCResolution = 32768
	}
	if f.SignalGain == 0 {
		f.SignalGain = 1
	}
	return f
}

func (f ABFFixture) channels() int {
	if len(f.Sweeps) == 0 {
		return 0
	}
	return len(f.Sweeps[0])
}

func (f ABFFixture) pointsPerSweep() int {
	if f.channels() == 0 {
		return 0
	}
	return len(f.Sweeps[0][0])
}

func (f ABFFixture) name(c int) string {
	if c < len(f.Names) {
		return f.Names[c]
	}
	return ""
}

func (f ABFFixture) unit(c int) string {
	if c < len(f.Units) {
		return f.Units[c]
	}
	return ""
}

// samples encodes the interleaved sample block.
func (f ABFFixture) samples() []byte {
	var out []byte
	q := f.Quantum()
	for _, sweep := range f.Sweeps {
		for i := range f.pointsPerSweep() {
			for c := range sweep {
				v := sweep[c][i]
				if f.Float32 {
					out = binary.LittleEndian.AppendUint32(out, math.Float32bits(float32(v)))
					continue
				}
				counts := math.Round((v - float64(f.InstrumentOffset)) / q)
				counts = math.Max(math.MinInt16, math.Min(math.MaxInt16, counts))
				out = binary.LittleEndian.AppendUint16(out, uint16(int16(counts)))
			}
		}
	}
	return out
}

func (f ABFFixture) bytesPerSample() int {
	if f.Float32 {
		return 4
	}
	return 2
}

func (f ABFFixture) formatCode() uint16 {
	if f.Float32 {
		return 1
	}
	return 0
}

func (f ABFFixture) episodes() int {
	if f.GapFree {
		return f.GapFreeChunks
	}
	return len(f.Sweeps)
}

func (f ABFFixture) operationMode() uint16 {
	if f.GapFree {
		return 3
	}
	return 5
}

func (f ABFFixture) check() error {
	if f.channels() == 0 || f.pointsPerSweep() == 0 || f.SampleRate <= 0 {
		return errors.New("testutil: empty ABF fixture")
	}
	return nil
}

type blob []byte

func (b blob) u16(off int, v uint16)  { binary.LittleEndian.PutUint16(b[off:], v) }
func (b blob) u32(off int, v uint32)  { binary.LittleEndian.PutUint32(b[off:], v) }
func (b blob) u64(off int, v uint64)  { binary.LittleEndian.PutUint64(b[off:], v) }
func (b blob) f32(off int, v float32) { b.u32(off, math.Float32bits(v)) }

func blocksFor(n int) int { return (n + 511) / 512 }

// EncodeABF2 returns the bytes of an ABF2 file for f.
func EncodeABF2(f ABFFixture) ([]byte, error) {
	f = f.withDefaults()
	if err := f.check(); err != nil {
		return nil, err
	}

	const adcEntry = 128
	nch := f.channels()

	strs := []byte("fixture header\x00Clampex\x00")
	for c := range nch {
		strs = append(strs, f.name(c)+"\x00"+f.unit(c)+"\x00"...)
	}
	data := f.samples()

	protocolBlock := 1
	adcBlock := protocolBlock + 1
	stringsBlock := adcBlock + blocksFor(nch*adcEntry)
	dataBlock := stringsBlock + blocksFor(len(strs))

	b := blob(make([]byte, dataBlock*512+len(data)))
	copy(b, "ABF2")
	copy(b[4:], []byte{0, 0, 6, 2})
	b.u32(8, 512)
	b.u32(12, uint32(f.episodes()))
	b.u16(30, f.formatCode())

	setSection := func(index, block, size int, entries int64) {
		off := 76 + 16*index
		b.u32(off, uint32(block))
		b.u32(off+4, uint32(size))
		b.u64(off+8, uint64(entries))
	}
	setSection(0, protocolBlock, 512, 1)
	setSection(1, adcBlock, adcEntry, int64(nch))
	setSection(9, stringsBlock, len(strs), 1)
	setSection(10, dataBlock, f.bytesPerSample(), int64(len(data)/f.bytesPerSample()))

	p := protocolBlock * 512
	b.u16(p, f.operationMode())
	b.f32(p+2, float32(1e6/f.SampleRate))
	b.f32(p+110, f.ADCRange)
	b.u32(p+118, uint32(f.ADCResolution))

	for c := range nch {
		a := adcBlock*512 + c*adcEntry
		b.u16(a, uint16(c))
		b.f32(a+28, 1)
		b.f32(a+40, 1)
		b.f32(a+44, f.InstrumentOffset)
		b.f32(a+48, f.SignalGain)
		b.u32(a+74, uint32(2+2*c))
		b.u32(a+78, uint32(3+2*c))
	}

	copy(b[stringsBlock*512:], strs)
	copy(b[dataBlock*512:], data)
	return b, nil
}

// EncodeABF1 returns the bytes of an ABF1 file for f.
func EncodeABF1(f ABFFixture) ([]byte, error) {
	f = f.withDefaults()
	if err := f.check(); err != nil {
		return nil, err
	}

	const headerBytes = 6144
	nch := f.channels()
	data := f.samples()

	b := blob(make([]byte, headerBytes+len(data)))
	copy(b, "ABF ")
	b.f32(4, 1.83)
	b.u16(8, f.operationMode())
	b.u32(10, uint32(len(data)/f.bytesPerSample()))
	b.u32(16, uint32(f.episodes()))
	b.u32(40, headerBytes/512)
	b.u16(100, f.formatCode())
	b.u16(120, uint16(nch))
	b.f32(122, float32(1e6/f.SampleRate/float64(nch)))
	b.f32(244, f.ADCRange)
	b.u32(252, uint32(f.ADCResolution))

	for c := range nch {
		b.u16(410+2*c, uint16(c))
		copy(b[442+10*c:452+10*c], padded(f.name(c), 10))
		copy(b[602+8*c:610+8*c], padded(f.unit(c), 8))
		b.f32(730+4*c, 1)
		b.f32(922+4*c, 1)
		b.f32(986+4*c, f.InstrumentOffset)
		b.f32(1050+4*c, f.SignalGain)
	}
	for c := nch; c < 16; c++ {
		b.u16(410+2*c, 0xFFFF)
	}

	copy(b[headerBytes:], data)
	return b, nil
}

func padded(s string, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = ' '
	}
	copy(out, s)
	return out
}

// WriteABF2 writes f as an ABF2 file at path.
func WriteABF2(path string, f ABFFixture) error {
	b, err := EncodeABF2(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// WriteABF1 writes f as an ABF1 file at path.
func WriteABF1(path string, f ABFFixture) error {
	b, err := EncodeABF1(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// SweepsOf builds an ABFFixture sweep list for a single channel.
func SweepsOf(sweeps ...[]float64) [][][]float64 {
	out := make([][][]float64, len(sweeps))
	for i, s := range sweeps {
		out[i] = [][]float64{s}
	}
	return out
}
