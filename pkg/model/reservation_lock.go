package model

import "time"

// ReservationLock is an advisory lock document serializing reservation
// creation per court. The unique _id insert is the mutual exclusion; a TTL
// index on expires_at reaps locks orphaned by a crashed request.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	TraceID   string    `bson:"trace_id" json:"trace_id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
