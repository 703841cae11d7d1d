package viewer

import "github.com/roomkit/roomkit/internal/errdef"

// Thresholds are the tip totals at which each tier switches on.
type Thresholds struct {
	Recently int `toml:"recently"`
	ALot     int `toml:"alot"`
	Tons     int `toml:"tons"`
}

// Tiers are non-exclusive: Tons implies ALot implies Recently.
type Tiers struct {
	Recently bool
	ALot     bool
	Tons     bool
}

func DefaultThresholds() Thresholds {
	return Thresholds{Recently: 1, ALot: 50, Tons: 250}
}

// Validate rejects thresholds that would break tier ordering.
func (t Thresholds) Validate() error {
	if t.Recently < 1 {
		return errdef.New(errdef.CodeConfig, "tier threshold recently must be at least 1, got %d", t.Recently)
	}
	if t.ALot < t.Recently || t.Tons < t.ALot {
		return errdef.New(errdef.CodeConfig, "tier thresholds must satisfy recently <= alot <= tons, got %d/%d/%d", t.Recently, t.ALot, t.Tons)
	}
	return nil
}

// Classify computes the tiers for a lifetime tip total.
func (t Thresholds) Classify(total int) Tiers {
	return Tiers{
		Recently: total >= t.Recently,
		ALot:     total >= t.ALot,
		Tons:     total >= t.Tons,
	}
}
