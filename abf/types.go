package abf

// Version identifies the header generation of a file.
type Version int

const (
	Version1 Version = 1
	Version2 Version = 2
)

func (v Version) String() string {
	switch v {
	case Version1:
		return "ABF1"
	case Version2:
		return "ABF2"
	default:
		return "unknown"
	}
}

// DataFormat is the on-disk sample encoding.
type DataFormat int16

const (
	FormatInt16   DataFormat = 0
	FormatFloat32 DataFormat = 1
)

func (f DataFormat) bytesPerSample() int {
	if f == FormatFloat32 {
		return 4
	}
	return 2
}

// Channel describes one ADC input and the gains that map raw int16 counts to
// physical units.
type Channel struct {
	Name  string
	Units string

	InstrumentScaleFactor float32
	InstrumentOffset      float32
	SignalGain            float32
	SignalOffset          float32
	ProgrammableGain      float32
	TelegraphEnabled      bool
	TelegraphAdditGain    float32
}

// OperationMode is the acquisition mode stored in nOperationMode.
type OperationMode int16

// ModeGapFree marks a continuous recording. Its episode count describes
// acquisition chunks, not sweeps.
const ModeGapFree OperationMode = 3

// Header is the decoded subset of an ABF header needed to read sweeps.
type Header struct {
	Version      Version
	Format       DataFormat
	Mode         OperationMode
	SweepCount   int
	ChannelCount int
	// SampleInterval is the per-channel sample interval in microseconds.
	SampleInterval float64
	ADCRange       float32
	ADCResolution  int32
	// DataOffset is the byte offset of the first sample.
	DataOffset int64
	// DataPoints is the total number of stored samples over all channels.
	DataPoints int64
	Channels   []Channel
}

// Header2 is an ABF2 header. It reports its rate as SampleRateHz.
type Header2 struct {
	Header
}

// SampleRateHz returns the per-channel sample rate in Hz.
func (h *Header2) SampleRateHz() float64 {
	return 1e6 / h.SampleInterval
}

// Header1 is an ABF1 header. It reports its rate as DataRate.
type Header1 struct {
	Header
}

// DataRate returns the per-channel sample rate in Hz.
func (h *Header1) DataRate() float64 {
	return 1e6 / h.SampleInterval
}

// Sweep is one episode of one channel.
type Sweep struct {
	Time []float64 // seconds from sweep start
	Y    []float64 // physical units
}

// Recording is one decoded ABF file, limited to a single channel.
type Recording struct {
	Name         string
	Version      Version
	SampleRate   float64
	Channel      int
	ChannelCount int
	ChannelName  string
	Units        string
	Sweeps       []Sweep
}

// SweepCount returns the number of sweeps.
func (r *Recording) SweepCount() int {
	return len(r.Sweeps)
}

// Duration returns the length of one sweep in seconds.
func (r *Recording) Duration() float64 {
	if len(r.Sweeps) == 0 || r.SampleRate <= 0 {
		return 0
	}
	return float64(len(r.Sweeps[0].Y)) / r.SampleRate
}
