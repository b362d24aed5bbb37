// Package scoring holds the pure submission scoring functions. Everything
// here is deterministic and side-effect free; persistence and state changes
// belong to the use cases.
package scoring

import "strings"

// Fixed scoring policy. The 70/30 weighting is not configurable at runtime.
const (
	QualityWeight = 0.7
	SpeedWeight   = 0.3

	// Latency at or beyond this many milliseconds scores zero speed.
	zeroSpeedLatencyMs = 10000
)

// Formula is the label reported alongside every scoring result.
const Formula = "quality*0.7 + speed*0.3"

// SpeedScore maps latency to [0,1]: 0ms -> 1, 10s or slower -> 0, linear in
// between. Negative latency is clamped rather than rejected; callers validate
// their inputs upstream.
func SpeedScore(latencyMs int64) float64 {
	normalized := 1 - float64(latencyMs)/zeroSpeedLatencyMs
	return clamp01(normalized)
}

// EstimateQuality is a coarse length-based fallback used only when no
// explicit quality rating was supplied. It is not a substitute for a real
// rating.
func EstimateQuality(content string) float64 {
	n := len(strings.TrimSpace(content))
	switch {
	case n < 80:
		return 0.35
	case n < 200:
		return 0.55
	case n < 400:
		return 0.70
	default:
		return 0.85
	}
}

// FinalScore combines a quality rating and a speed score, both expected in
// [0,1].
func FinalScore(quality, speed float64) float64 {
	return quality*QualityWeight + speed*SpeedWeight
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
