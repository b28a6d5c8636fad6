// Package cpu detects the processor features used to pick block-processing
// kernels for the filter runtime.
//
// Detection runs once and is cached. Tests can pin a feature set with
// SetForcedFeatures and undo it with ResetDetection.
package cpu

import "sync"

// SIMDLevel names an instruction set extension a kernel may require.
type SIMDLevel int

const (
	// SIMDNone marks a portable pure-Go kernel.
	SIMDNone SIMDLevel = iota
	SIMDAVX2
)

func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "None"
	case SIMDAVX2:
		return "AVX2"
	default:
		return "Unknown"
	}
}

// Features describes the capabilities of the running processor.
type Features struct {
	HasAVX2 bool

	// ForceGeneric restricts kernel selection to SIMDNone.
	ForceGeneric bool

	Architecture string
}

var (
	detectOnce sync.Once
	detected   Features

	forcedMu sync.RWMutex
	forced   *Features
)

// DetectFeatures returns the cached feature set, or the forced one when set.
func DetectFeatures() Features {
	forcedMu.RLock()
	f := forced
	forcedMu.RUnlock()
	if f != nil {
		return *f
	}

	detectOnce.Do(func() {
		detected = detectFeaturesImpl()
	})
	return detected
}

// SetForcedFeatures overrides detection. Intended for tests.
func SetForcedFeatures(f Features) {
	forcedMu.Lock()
	defer forcedMu.Unlock()
	forced = &f
}

// ResetDetection clears a forced feature set.
func ResetDetection() {
	forcedMu.Lock()
	defer forcedMu.Unlock()
	forced = nil
}

// Supports reports whether features can run a kernel that needs level.
func Supports(features Features, level SIMDLevel) bool {
	if features.ForceGeneric {
		return level == SIMDNone
	}

	switch level {
	case SIMDNone:
		return true
	case SIMDAVX2:
		return features.HasAVX2
	default:
		return false
	}
}
