package scheduling

import (
	"fmt"
	"time"

	"glowbook/models"
)

// ValidateSchedule checks a full schedule mutation. Any failure rejects the
// whole mutation; nothing is partially applied.
func ValidateSchedule(s *models.Schedule) error {
	if s.ProviderID == "" {
		return ValidationError{Field: "schedule", Detail: "provider id is required"}
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return ValidationError{Field: "schedule", Detail: fmt.Sprintf("unknown timezone %q", s.Timezone)}
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		if err := validateWindow(day, s.WindowFor(day)); err != nil {
			return err
		}
	}
	seen := make(map[string]bool)
	for _, br := range s.Breaks {
		if err := ValidateBreak(br); err != nil {
			return err
		}
		if seen[br.ID] {
			return ValidationError{Field: "breaks", Detail: fmt.Sprintf("duplicate break id %q", br.ID)}
		}
		seen[br.ID] = true
	}
	if s.Buffer.BeforeMinutes < 0 || s.Buffer.AfterMinutes < 0 {
		return ValidationError{Field: "buffer", Detail: "buffer minutes cannot be negative"}
	}
	return nil
}

func validateWindow(day time.Weekday, w models.WorkWindow) error {
	if !w.Enabled {
		return nil
	}
	if !w.Start.Valid() || !w.End.Valid() {
		return ValidationError{Field: "work_hours", Detail: fmt.Sprintf("%s has an invalid time of day", day)}
	}
	if w.Start.Minutes() >= w.End.Minutes() {
		return ValidationError{Field: "work_hours", Detail: fmt.Sprintf("%s start %s is not before end %s", day, w.Start, w.End)}
	}
	return nil
}

// ValidateBreak checks one recurring break template. Overlap between
// breaks is deliberately not rejected; the occupancy scan tolerates it.
func ValidateBreak(br models.Break) error {
	if br.Name == "" {
		return ValidationError{Field: "break", Detail: "name is required"}
	}
	if len(br.Days) == 0 {
		return ValidationError{Field: "break", Detail: fmt.Sprintf("break %q has no days", br.Name)}
	}
	for _, d := range br.Days {
		if d < time.Sunday || d > time.Saturday {
			return ValidationError{Field: "break", Detail: fmt.Sprintf("break %q has invalid weekday %d", br.Name, d)}
		}
	}
	if !br.Start.Valid() || !br.End.Valid() {
		return ValidationError{Field: "break", Detail: fmt.Sprintf("break %q has an invalid time of day", br.Name)}
	}
	if br.Start.Minutes() >= br.End.Minutes() {
		return ValidationError{Field: "break", Detail: fmt.Sprintf("break %q start %s is not before end %s", br.Name, br.Start, br.End)}
	}
	return nil
}
