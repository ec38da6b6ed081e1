package scheduleRepo

import (
	"context"
	"errors"

	"glowbook/models"
)

// ErrNotFound is returned by Get when the provider has no stored schedule.
var ErrNotFound = errors.New("schedule not found")

// ScheduleRepository defines the data access methods for provider schedules.
type ScheduleRepository interface {
	// Get retrieves the schedule for a provider, or ErrNotFound.
	Get(ctx context.Context, providerID string) (*models.Schedule, error)
	// GetOrCreate retrieves the schedule for a provider, seeding the default
	// schedule on first access.
	GetOrCreate(ctx context.Context, providerID string) (*models.Schedule, error)
	// Replace overwrites the stored schedule and bumps its version. A
	// schedule is never deleted.
	Replace(ctx context.Context, schedule *models.Schedule) error
}
