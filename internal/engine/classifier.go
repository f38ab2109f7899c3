package engine

// UtilizationBand classifies a resource's average CPU utilization relative
// to the configured thresholds.
type UtilizationBand int

const (
	// BandRightSized means utilization is at or above the underutilization
	// threshold; no downsizing action applies.
	BandRightSized UtilizationBand = iota

	// BandUnderutilized means utilization is below the underutilization
	// threshold but not low enough to call the resource idle.
	BandUnderutilized

	// BandIdle means utilization is below the idle threshold. Idle implies
	// underutilized: every idle resource is also a rightsizing candidate.
	BandIdle
)

func (b UtilizationBand) String() string {
	switch b {
	case BandIdle:
		return "idle"
	case BandUnderutilized:
		return "underutilized"
	default:
		return "right_sized"
	}
}

// Classify places an average CPU reading into a utilization band. The idle
// bound is clamped to the underutilization bound, so an inverted
// configuration can never make a resource idle without also being
// underutilized.
func Classify(avgCPU, idleThreshold, underutilizedThreshold float64) UtilizationBand {
	if idleThreshold > underutilizedThreshold {
		idleThreshold = underutilizedThreshold
	}
	switch {
	case avgCPU < idleThreshold:
		return BandIdle
	case avgCPU < underutilizedThreshold:
		return BandUnderutilized
	default:
		return BandRightSized
	}
}

func (e *Engine) classify(avgCPU float64) UtilizationBand {
	return Classify(avgCPU, e.cfg.IdleThreshold, e.cfg.UnderutilizedThreshold)
}
