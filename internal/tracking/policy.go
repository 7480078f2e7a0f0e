package tracking

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Policy holds the tunable knobs of the transition detector. Values are
// plain numbers so the struct round-trips through YAML cleanly.
type Policy struct {
	// Minimum continuous containment before an enter/exit is confirmed.
	// Zones may override this individually.
	LoiteringDelayS int `yaml:"loitering_delay_s"`

	// Sustained presence before the one-shot dwell event fires.
	DwellThresholdS int `yaml:"dwell_threshold_s"`

	// Samples with worse horizontal accuracy are still evaluated but flagged
	// low-confidence. 0 disables the ceiling.
	AccuracyCeilingM float64 `yaml:"accuracy_ceiling_m"`

	// Minimum spacing between samples accepted from one device.
	SampleIntervalS int `yaml:"sample_interval_s"`
}

func DefaultPolicy() Policy {
	return Policy{
		LoiteringDelayS:  30,
		DwellThresholdS:  15 * 60,
		AccuracyCeilingM: 100,
		SampleIntervalS:  15,
	}
}

// LoadPolicy reads a YAML policy file, falling back to defaults for the file
// being absent. A present-but-broken file is an error; a typo silently
// reverting to defaults would be worse.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse policy file: %w", err)
	}
	return p, nil
}

func (p Policy) LoiteringDelay() time.Duration {
	return time.Duration(p.LoiteringDelayS) * time.Second
}

func (p Policy) DwellThreshold() time.Duration {
	return time.Duration(p.DwellThresholdS) * time.Second
}

func (p Policy) SampleInterval() time.Duration {
	return time.Duration(p.SampleIntervalS) * time.Second
}
