package model

import "fmt"

// Tier is the severity assigned to a reading.
type Tier int

const (
	TierNormal Tier = iota
	TierWarning
	TierCritical
)

func (t Tier) String() string {
	switch t {
	case TierWarning:
		return "warning"
	case TierCritical:
		return "critical"
	default:
		return "normal"
	}
}

// MarshalText encodes the tier by name so JSON output stays readable.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText is the inverse of MarshalText.
func (t *Tier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "normal":
		*t = TierNormal
	case "warning":
		*t = TierWarning
	case "critical":
		*t = TierCritical
	default:
		return fmt.Errorf("unknown tier %q", b)
	}
	return nil
}

// Thresholds are inclusive lower bounds for the warning and critical tiers.
type Thresholds struct {
	Warning  int
	Critical int
}

var (
	// LoadThresholds apply to CPU, GPU, NPU and RGA utilisation.
	LoadThresholds = Thresholds{Warning: 60, Critical: 80}
	// TrailingCoreThresholds apply to the last core when the core count is
	// odd and it is drawn alone on its row. It has always gone red at 70.
	TrailingCoreThresholds = Thresholds{Warning: 60, Critical: 70}
	// TempThresholds apply to sensor temperatures in degrees Celsius.
	TempThresholds = Thresholds{Warning: 60, Critical: 70}
)

// Classify maps value onto a tier.
func Classify(value int, th Thresholds) Tier {
	switch {
	case value >= th.Critical:
		return TierCritical
	case value >= th.Warning:
		return TierWarning
	default:
		return TierNormal
	}
}

// CoreThresholds picks the thresholds for core index out of count cores.
func CoreThresholds(index, count int) Thresholds {
	if count%2 == 1 && index == count-1 {
		return TrailingCoreThresholds
	}
	return LoadThresholds
}
