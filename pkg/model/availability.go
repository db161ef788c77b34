package model

import "time"

// FreeSlot is an open anchor on the daily grid. Hour is the local wall-clock
// hour of the slot start; the UTC instants are what a client resubmits to
// book the slot.
type FreeSlot struct {
	Hour     int       `json:"hour"`
	StartUTC time.Time `json:"start_utc"`
	EndUTC   time.Time `json:"end_utc"`
}

// BookedSlot is an occupied anchor. Mine tells the viewer whether the
// occupying reservation is their own; other holders' identities are not
// exposed.
type BookedSlot struct {
	Hour          int       `json:"hour"`
	StartUTC      time.Time `json:"start_utc"`
	EndUTC        time.Time `json:"end_utc"`
	ReservationID string    `json:"reservation_id"`
	Mine          bool      `json:"mine"`
}

// CourtAvailability is the per-court timeline for one civil day. Free and
// booked together cover every grid anchor exactly once.
type CourtAvailability struct {
	Court       *Court       `json:"court"`
	Day         string       `json:"day"`
	FreeSlots   []FreeSlot   `json:"free_slots"`
	BookedSlots []BookedSlot `json:"booked_slots"`
}
