package validator

import (
	"strings"
	"testing"
	"time"

	"courtbook/pkg/logger"
	"courtbook/pkg/model"
)

func newTestValidator() *ReservationValidator {
	return NewReservationValidator(logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Service: "test",
	}))
}

func validReservation() *model.Reservation {
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	return &model.Reservation{
		CourtID:     "64f0c1d2e3a4b5c6d7e8f901",
		HolderID:    "user-42",
		HolderName:  "Dana Levi",
		HolderRef:   "STU-12345",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		DurationMin: 60,
		Status:      model.StatusBooked,
	}
}

func TestValidate_OK(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(validReservation()); err != nil {
		t.Fatalf("expected valid reservation, got: %v", err)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	v := newTestValidator()

	res := validReservation()
	res.CourtID = ""
	res.HolderID = ""

	err := v.Validate(res)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "CourtID") {
		t.Errorf("expected CourtID in error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "HolderID") {
		t.Errorf("expected HolderID in error, got: %v", err)
	}
}

func TestValidate_BadCourtID(t *testing.T) {
	v := newTestValidator()

	res := validReservation()
	res.CourtID = "not-an-object-id"

	if err := v.Validate(res); err == nil {
		t.Fatalf("expected validation error for malformed court id")
	}
}

func TestValidate_EndBeforeStart(t *testing.T) {
	v := newTestValidator()

	res := validReservation()
	res.EndTime = res.StartTime.Add(-time.Hour)

	if err := v.Validate(res); err == nil {
		t.Fatalf("expected validation error for inverted interval")
	}
}

func TestValidate_DurationMismatch(t *testing.T) {
	v := newTestValidator()

	res := validReservation()
	res.DurationMin = 90 // end stays 60 minutes after start

	err := v.Validate(res)
	if err == nil {
		t.Fatalf("expected validation error for duration mismatch")
	}
	if !strings.Contains(err.Error(), "90 minutes") {
		t.Errorf("expected duration in message, got: %v", err)
	}
}

func TestValidate_DurationBounds(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name     string
		duration int
		ok       bool
	}{
		{"below minimum", 10, false},
		{"minimum", 15, true},
		{"maximum", 480, true},
		{"above maximum", 500, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validReservation()
			res.DurationMin = tt.duration
			res.EndTime = res.StartTime.Add(time.Duration(tt.duration) * time.Minute)

			err := v.Validate(res)
			if tt.ok && err != nil {
				t.Errorf("expected %d minutes to validate, got: %v", tt.duration, err)
			}
			if !tt.ok && err == nil {
				t.Errorf("expected %d minutes to fail validation", tt.duration)
			}
		})
	}
}

func TestValidate_BadStatus(t *testing.T) {
	v := newTestValidator()

	res := validReservation()
	res.Status = "pending"

	if err := v.Validate(res); err == nil {
		t.Fatalf("expected validation error for unknown status")
	}
}
