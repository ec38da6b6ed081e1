package scheduling

import (
	"context"

	"glowbook/models"
)

// ConflictResult is the verdict for one proposed interval.
type ConflictResult struct {
	HasConflict bool     `json:"has_conflict"`
	Reasons     []string `json:"reasons,omitempty"`
}

// ConflictDetector answers whether a proposed half-open interval on a date
// collides with the provider's occupancy. It is the single source of
// overlap truth: the availability calculator and the booking lifecycle both
// delegate here rather than re-implementing the comparison.
type ConflictDetector interface {
	Check(ctx context.Context, providerID, date string, start, end int) (ConflictResult, error)
}

// DefaultConflictDetector is the production implementation.
type DefaultConflictDetector struct {
	Occupancy OccupancyIndex
}

func (cd *DefaultConflictDetector) Check(ctx context.Context, providerID, date string, start, end int) (ConflictResult, error) {
	if start >= end {
		return ConflictResult{}, ErrInvalidTimeRange
	}
	blocked, err := cd.Occupancy.BlockedFor(ctx, providerID, date)
	if err != nil {
		return ConflictResult{}, err
	}
	return CheckAgainst(blocked, start, end), nil
}

// CheckAgainst applies the half-open overlap rule to every blocked
// interval: [s1,e1) and [s2,e2) overlap iff s1 < e2 && s2 < e1. Touching
// intervals do not conflict. The blocked list is unmerged, so the full
// list is scanned.
func CheckAgainst(blocked []models.BlockedInterval, start, end int) ConflictResult {
	var result ConflictResult
	seen := make(map[string]bool)
	for _, b := range blocked {
		if !b.Overlaps(start, end) {
			continue
		}
		result.HasConflict = true
		if !seen[b.Reason] {
			seen[b.Reason] = true
			result.Reasons = append(result.Reasons, b.Reason)
		}
	}
	return result
}
