package model

import (
	"time"
)

const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
)

// Reservation is a time-bounded claim on a court. Records are never deleted:
// cancellation flips the status and the interval becomes bookable again.
type Reservation struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CourtID     string    `json:"court_id" bson:"court_id" validate:"required,mongodb"`
	HolderID    string    `json:"holder_id" bson:"holder_id" validate:"required,min=1,max=100"`
	HolderName  string    `json:"holder_name" bson:"holder_name" validate:"required,min=2,max=100"`
	HolderRef   string    `json:"holder_ref,omitempty" bson:"holder_ref" validate:"omitempty,max=100"`
	StartTime   time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	DurationMin int       `json:"duration_min" bson:"duration_min" validate:"required,min=15,max=480"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=booked cancelled"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// IsCancelled reports whether the reservation reached its terminal state.
func (r *Reservation) IsCancelled() bool {
	return r.Status == StatusCancelled
}
