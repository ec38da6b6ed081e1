package models

// BlockKind classifies why a span of a date cannot be booked.
type BlockKind string

const (
	BlockOutsideHours BlockKind = "outside-hours"
	BlockBreak        BlockKind = "break"
	BlockBuffer       BlockKind = "buffer"
	BlockBooked       BlockKind = "booked"
)

// BlockedInterval is one half-open span [Start, End) on a date that cannot
// be booked. It is derived on demand from the schedule and the active
// appointments; it is never persisted and has no lifecycle of its own.
type BlockedInterval struct {
	Date   string    `json:"date"`
	Start  int       `json:"start"` // minutes from midnight, inclusive
	End    int       `json:"end"`   // minutes from midnight, exclusive
	Kind   BlockKind `json:"kind"`
	Reason string    `json:"reason"`
}

// Overlaps applies the engine-wide half-open overlap rule: [s1,e1) and
// [s2,e2) overlap iff s1 < e2 && s2 < e1. Touching intervals do not overlap.
func (b BlockedInterval) Overlaps(start, end int) bool {
	return b.Start < end && start < b.End
}
