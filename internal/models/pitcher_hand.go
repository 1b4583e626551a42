package models

import "strings"

// PitcherHand represents the throwing hand of the opposing starting pitcher
type PitcherHand string

const (
	PitcherHandUnknown PitcherHand = ""
	PitcherHandLeft    PitcherHand = "L"
	PitcherHandRight   PitcherHand = "R"
)

// ParsePitcherHand maps a provider hand code to a PitcherHand.
// Anything other than L or R (including switch pitchers) is Unknown.
func ParsePitcherHand(code string) PitcherHand {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "L":
		return PitcherHandLeft
	case "R":
		return PitcherHandRight
	default:
		return PitcherHandUnknown
	}
}

// IsKnown reports whether the hand has been resolved to L or R
func (h PitcherHand) IsKnown() bool {
	return h == PitcherHandLeft || h == PitcherHandRight
}

// String returns "L", "R" or "Unknown"
func (h PitcherHand) String() string {
	if !h.IsKnown() {
		return "Unknown"
	}
	return string(h)
}

// HandResult is the outcome of a best-effort handedness lookup for one game.
// Resolved is false when the lookup could not determine a hand; Reason says why.
type HandResult struct {
	Hand     PitcherHand
	Resolved bool
	Reason   string
}

// ResolvedHand builds a successful HandResult
func ResolvedHand(hand PitcherHand) HandResult {
	return HandResult{Hand: hand, Resolved: hand.IsKnown()}
}

// UnresolvedHand builds an unresolved HandResult carrying the reason
func UnresolvedHand(reason string) HandResult {
	return HandResult{Hand: PitcherHandUnknown, Resolved: false, Reason: reason}
}
