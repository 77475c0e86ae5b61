package board

// approachingRatio is the fill fraction at which a column starts warning.
const approachingRatio = 0.8

// WIPState is the display state of a column's work-in-progress meter.
type WIPState int

// WIP display states.
const (
	WIPNone WIPState = iota
	WIPOK
	WIPApproaching
	WIPAtLimit
)

// String returns a short label for logs and tests.
func (s WIPState) String() string {
	switch s {
	case WIPOK:
		return "ok"
	case WIPApproaching:
		return "approaching"
	case WIPAtLimit:
		return "at-limit"
	default:
		return "none"
	}
}

// IsAtLimit reports whether count has reached limit. A limit <= 0 means no limit.
func IsAtLimit(count, limit int) bool {
	if limit <= 0 {
		return false
	}
	return count >= limit
}

// IsApproachingLimit reports whether count is at 80% of limit or beyond.
func IsApproachingLimit(count, limit int) bool {
	if limit <= 0 {
		return false
	}
	return float64(count) >= approachingRatio*float64(limit)
}

// ClassifyWIP picks a single display state. At-limit wins over approaching.
func ClassifyWIP(count, limit int) WIPState {
	switch {
	case limit <= 0:
		return WIPNone
	case IsAtLimit(count, limit):
		return WIPAtLimit
	case IsApproachingLimit(count, limit):
		return WIPApproaching
	default:
		return WIPOK
	}
}

// FillRatio returns count/limit capped at 1, or 0 when there is no limit.
func FillRatio(count, limit int) float64 {
	if limit <= 0 || count <= 0 {
		return 0
	}
	return min(1, float64(count)/float64(limit))
}
