package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"glowbook/models"
)

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Schedule)
		wantErr bool
	}{
		{
			name:   "default schedule is valid",
			mutate: func(s *models.Schedule) {},
		},
		{
			name:    "missing provider id",
			mutate:  func(s *models.Schedule) { s.ProviderID = "" },
			wantErr: true,
		},
		{
			name:    "unknown timezone",
			mutate:  func(s *models.Schedule) { s.Timezone = "Mars/Olympus" },
			wantErr: true,
		},
		{
			name: "window start not before end",
			mutate: func(s *models.Schedule) {
				s.WorkHours[time.Monday].Start = models.TimeOfDay{Hour: 17}
				s.WorkHours[time.Monday].End = models.TimeOfDay{Hour: 9}
			},
			wantErr: true,
		},
		{
			name: "window start equals end",
			mutate: func(s *models.Schedule) {
				s.WorkHours[time.Monday].End = s.WorkHours[time.Monday].Start
			},
			wantErr: true,
		},
		{
			name: "out of range time of day",
			mutate: func(s *models.Schedule) {
				s.WorkHours[time.Monday].End = models.TimeOfDay{Hour: 24, Minute: 30}
			},
			wantErr: true,
		},
		{
			name: "disabled window skips time checks",
			mutate: func(s *models.Schedule) {
				s.WorkHours[time.Saturday] = models.WorkWindow{
					Enabled: false,
					Start:   models.TimeOfDay{Hour: 17},
					End:     models.TimeOfDay{Hour: 9},
				}
			},
		},
		{
			name: "duplicate break ids",
			mutate: func(s *models.Schedule) {
				br := models.Break{
					ID:    "b1",
					Name:  "Lunch",
					Days:  []time.Weekday{time.Monday},
					Start: models.TimeOfDay{Hour: 12},
					End:   models.TimeOfDay{Hour: 13},
				}
				s.Breaks = []models.Break{br, br}
			},
			wantErr: true,
		},
		{
			name: "overlapping breaks are permitted",
			mutate: func(s *models.Schedule) {
				s.Breaks = []models.Break{
					{ID: "b1", Name: "Lunch", Days: []time.Weekday{time.Monday},
						Start: models.TimeOfDay{Hour: 12}, End: models.TimeOfDay{Hour: 13}},
					{ID: "b2", Name: "Errand", Days: []time.Weekday{time.Monday},
						Start: models.TimeOfDay{Hour: 12, Minute: 30}, End: models.TimeOfDay{Hour: 14}},
				}
			},
		},
		{
			name:    "negative before buffer",
			mutate:  func(s *models.Schedule) { s.Buffer.BeforeMinutes = -5 },
			wantErr: true,
		},
		{
			name:    "negative after buffer",
			mutate:  func(s *models.Schedule) { s.Buffer.AfterMinutes = -1 },
			wantErr: true,
		},
		{
			name:   "zero buffers are valid",
			mutate: func(s *models.Schedule) { s.Buffer = models.BufferPolicy{} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.DefaultSchedule("p1", "UTC")
			tt.mutate(s)
			err := ValidateSchedule(s)
			if tt.wantErr {
				var validation ValidationError
				assert.ErrorAs(t, err, &validation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBreak(t *testing.T) {
	valid := models.Break{
		ID:    "b1",
		Name:  "Lunch",
		Days:  []time.Weekday{time.Monday, time.Wednesday},
		Start: models.TimeOfDay{Hour: 12},
		End:   models.TimeOfDay{Hour: 13},
	}

	tests := []struct {
		name    string
		mutate  func(*models.Break)
		wantErr bool
	}{
		{name: "valid break", mutate: func(br *models.Break) {}},
		{name: "missing name", mutate: func(br *models.Break) { br.Name = "" }, wantErr: true},
		{name: "no days", mutate: func(br *models.Break) { br.Days = nil }, wantErr: true},
		{name: "weekday out of range", mutate: func(br *models.Break) { br.Days = []time.Weekday{7} }, wantErr: true},
		{name: "start not before end", mutate: func(br *models.Break) { br.End = br.Start }, wantErr: true},
		{name: "invalid time of day", mutate: func(br *models.Break) { br.Start = models.TimeOfDay{Minute: 75} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := valid
			tt.mutate(&br)
			err := ValidateBreak(br)
			if tt.wantErr {
				var validation ValidationError
				assert.ErrorAs(t, err, &validation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
