// Package config merges flags, environment, an optional YAML file and
// defaults into the settings of one batch run.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. ABFPLOT_BASE_DIR.
const EnvPrefix = "ABFPLOT"

// Keys, equal to the flag names.
const (
	KeyBaseDir    = "base-dir"
	KeyDatePrefix = "date-prefix"
	KeyStart      = "start"
	KeyEnd        = "end"
	KeyCutoff     = "cutoff"
	KeyOrder      = "order"
	KeyHighpass   = "highpass"
	KeyBaseline   = "baseline"
	KeyMeasure    = "measure"
	KeyOutDir     = "outdir"
	KeyChannel    = "channel"
	KeyDPI        = "dpi"
	KeyReport     = "report"
	KeyStrict     = "strict"
	KeyLogLevel   = "log-level"
	KeyConfig     = "config"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings of one batch run.
type Config struct {
	BaseDir    string
	DatePrefix string
	Start      int
	End        int
	Cutoff     float64
	Order      int
	Highpass   float64
	Baseline   []float64
	Measure    float64
	OutDir     string
	Channel    int
	DPI        int
	Report     string
	Strict     bool
	LogLevel   string

	hasStart bool
	hasEnd   bool
}

// RegisterFlags declares every setting as a flag on cmd.
func RegisterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String(KeyBaseDir, "", "directory containing the ABF files (required)")
	f.String(KeyDatePrefix, "2024_02_21", "ABF filename prefix")
	f.Int(KeyStart, 0, "first file number, inclusive (required)")
	f.Int(KeyEnd, 0, "last file number, inclusive (required)")
	f.Float64(KeyCutoff, 1000, "low-pass cutoff in Hz")
	f.Int(KeyOrder, 4, "Butterworth filter order")
	f.Float64(KeyHighpass, 0, "optional high-pass cutoff in Hz (0 disables)")
	f.Float64Slice(KeyBaseline, []float64{0.005, 0.011}, "baseline window start,end in seconds")
	f.Float64(KeyMeasure, 0.0159, "measurement time in seconds")
	f.String(KeyOutDir, "outputs", "output directory for figures")
	f.Int(KeyChannel, 0, "ADC channel to plot")
	f.Int(KeyDPI, 300, "PNG resolution in dots per inch")
	f.String(KeyReport, "", "write a YAML batch report to this path")
	f.Bool(KeyStrict, false, "exit non-zero when any file is missing or fails")
	f.String(KeyLogLevel, "warn", "diagnostic log level (debug, info, warn, error)")
	f.String(KeyConfig, "", "YAML config file with the same keys as the flags")
}

// JoinBaselineArgs rewrites "--baseline A B" into "--baseline A,B" so the
// window can be given as two separate values. The comma and repeated-flag
// forms pass through unchanged, as does everything after "--".
func JoinBaselineArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}

		flag, first, inline := strings.Cut(arg, "=")
		if flag != "--"+KeyBaseline {
			out = append(out, arg)
			continue
		}

		next := i + 1
		if !inline {
			if next >= len(args) {
				out = append(out, arg)
				continue
			}
			first = args[next]
			next++
		}
		if next < len(args) && isNumber(first) && isNumber(args[next]) {
			out = append(out, flag, first+","+args[next])
			i = next
			continue
		}
		out = append(out, args[i:next]...)
		i = next - 1
	}
	return out
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatePrefix, "2024_02_21")
	v.SetDefault(KeyCutoff, 1000.0)
	v.SetDefault(KeyOrder, 4)
	v.SetDefault(KeyHighpass, 0.0)
	v.SetDefault(KeyBaseline, []float64{0.005, 0.011})
	v.SetDefault(KeyMeasure, 0.0159)
	v.SetDefault(KeyOutDir, "outputs")
	v.SetDefault(KeyChannel, 0)
	v.SetDefault(KeyDPI, 300)
	v.SetDefault(KeyStrict, false)
	v.SetDefault(KeyLogLevel, "warn")
}

// Load resolves the configuration for cmd: flags override the environment,
// which overrides the config file, which overrides the defaults. The result
// is not validated.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	baseline, err := floats(v.Get(KeyBaseline))
	if f := cmd.Flags().Lookup(KeyBaseline); f != nil && f.Changed {
		baseline, err = cmd.Flags().GetFloat64Slice(KeyBaseline)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: --%s: %v", ErrInvalid, KeyBaseline, err)
	}

	return &Config{
		BaseDir:    v.GetString(KeyBaseDir),
		DatePrefix: v.GetString(KeyDatePrefix),
		Start:      v.GetInt(KeyStart),
		End:        v.GetInt(KeyEnd),
		Cutoff:     v.GetFloat64(KeyCutoff),
		Order:      v.GetInt(KeyOrder),
		Highpass:   v.GetFloat64(KeyHighpass),
		Baseline:   baseline,
		Measure:    v.GetFloat64(KeyMeasure),
		OutDir:     v.GetString(KeyOutDir),
		Channel:    v.GetInt(KeyChannel),
		DPI:        v.GetInt(KeyDPI),
		Report:     v.GetString(KeyReport),
		Strict:     v.GetBool(KeyStrict),
		LogLevel:   v.GetString(KeyLogLevel),
		hasStart:   v.IsSet(KeyStart),
		hasEnd:     v.IsSet(KeyEnd),
	}, nil
}

// Validate checks required settings and value ranges.
func (c *Config) Validate() error {
	switch {
	case c.BaseDir == "":
		return fmt.Errorf("%w: --%s is required", ErrInvalid, KeyBaseDir)
	case !c.hasStart:
		return fmt.Errorf("%w: --%s is required", ErrInvalid, KeyStart)
	case !c.hasEnd:
		return fmt.Errorf("%w: --%s is required", ErrInvalid, KeyEnd)
	case c.Start > c.End:
		return fmt.Errorf("%w: --%s (%d) must not exceed --%s (%d)", ErrInvalid, KeyStart, c.Start, KeyEnd, c.End)
	case !(c.Cutoff > 0):
		return fmt.Errorf("%w: --%s must be > 0, got %g", ErrInvalid, KeyCutoff, c.Cutoff)
	case c.Order < 1:
		return fmt.Errorf("%w: --%s must be >= 1, got %d", ErrInvalid, KeyOrder, c.Order)
	case c.Highpass < 0:
		return fmt.Errorf("%w: --%s must be >= 0, got %g", ErrInvalid, KeyHighpass, c.Highpass)
	case c.Highpass > 0 && c.Highpass >= c.Cutoff:
		return fmt.Errorf("%w: --%s (%g Hz) must be below --%s (%g Hz)", ErrInvalid, KeyHighpass, c.Highpass, KeyCutoff, c.Cutoff)
	case len(c.Baseline) != 2:
		return fmt.Errorf("%w: --%s takes exactly 2 values, got %d", ErrInvalid, KeyBaseline, len(c.Baseline))
	case !(c.Baseline[0] < c.Baseline[1]):
		return fmt.Errorf("%w: --%s start (%g s) must be before end (%g s)", ErrInvalid, KeyBaseline, c.Baseline[0], c.Baseline[1])
	case c.Channel < 0:
		return fmt.Errorf("%w: --%s must be >= 0, got %d", ErrInvalid, KeyChannel, c.Channel)
	case c.DPI < 1:
		return fmt.Errorf("%w: --%s must be >= 1, got %d", ErrInvalid, KeyDPI, c.DPI)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: --%s: %v", ErrInvalid, KeyLogLevel, err)
	}
	return nil
}

// floats converts the forms a float list takes in viper: a pflag value
// string such as "[0.005,0.011]", a comma separated environment value, or a
// YAML sequence.
func floats(raw any) ([]float64, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []float64:
		return append([]float64(nil), v...), nil
	case []string:
		return floats(strings.Join(v, ","))
	case []any:
		out := make([]float64, 0, len(v))
		for _, e := range v {
			f, err := toFloat(e)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	case string:
		s := strings.Trim(strings.TrimSpace(v), "[]")
		if s == "" {
			return nil, nil
		}
		fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
		out := make([]float64, 0, len(fields))
		for _, field := range fields {
			f, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value %v (%T)", raw, raw)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}
