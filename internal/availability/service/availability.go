package service

import (
	"context"
	"errors"

	courterrors "courtbook/internal/courts/errors"
	courtrepo "courtbook/internal/courts/repository"
	reservationrepo "courtbook/internal/reservations/repository"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
	"courtbook/pkg/timeslot"
)

// Query selects one civil day's availability. CourtID narrows to a single
// court; otherwise all active courts (optionally one category) are
// projected. ViewerID marks which booked slots belong to the caller.
type Query struct {
	Day         string
	CourtID     string
	Category    string
	SlotMinutes int
	OpenHour    int
	CloseHour   int
	ViewerID    string
}

type AvailabilityService interface {
	GetAvailability(ctx context.Context, q Query) ([]*model.CourtAvailability, error)
}

type availabilityService struct {
	courtRepo       courtrepo.CourtRepository
	reservationRepo reservationrepo.ReservationRepository
	cfg             *config.Config
}

func NewAvailabilityService(
	courtRepo courtrepo.CourtRepository,
	reservationRepo reservationrepo.ReservationRepository,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		courtRepo:       courtRepo,
		reservationRepo: reservationRepo,
		cfg:             cfg,
	}
}

// GetAvailability projects the free/booked slot grid for each candidate
// court. The day is resolved in the facility's civil timezone and converted
// to UTC only for querying the store, so the operating window never drifts
// with server locale or DST transitions elsewhere.
func (s *availabilityService) GetAvailability(ctx context.Context, q Query) ([]*model.CourtAvailability, error) {
	s.applyDefaults(&q)

	if q.SlotMinutes <= 0 {
		return nil, apperrors.Validation("Slot granularity must be positive", map[string]any{"slot_minutes": q.SlotMinutes})
	}
	if q.CloseHour <= q.OpenHour {
		return nil, apperrors.Validation("Close hour must be after open hour", map[string]any{
			"open_hour":  q.OpenHour,
			"close_hour": q.CloseHour,
		})
	}

	dayStartLocal, err := timeslot.ParseDay(q.Day, s.cfg.Location)
	if err != nil {
		return nil, apperrors.InvalidInput("Day must be in YYYY-MM-DD format")
	}
	dayStartUTC, dayEndUTC := timeslot.DayWindow(dayStartLocal)

	courts, err := s.resolveCourts(ctx, q)
	if err != nil {
		return nil, err
	}

	grid := timeslot.Grid(dayStartLocal, q.OpenHour, q.CloseHour, q.SlotMinutes)

	result := make([]*model.CourtAvailability, 0, len(courts))
	for _, court := range courts {
		reservations, err := s.reservationRepo.FindIntersecting(ctx, court.ID, dayStartUTC, dayEndUTC)
		if err != nil {
			s.cfg.Log.Error("Failed to load reservations for availability",
				"court_id", court.ID,
				"day", q.Day,
				"error", err,
			)
			return nil, apperrors.Internal("Failed to load reservations", err)
		}

		availability := &model.CourtAvailability{
			Court:       court,
			Day:         q.Day,
			FreeSlots:   []model.FreeSlot{},
			BookedSlots: []model.BookedSlot{},
		}

		for _, slot := range grid {
			booked := false
			for _, res := range reservations {
				if timeslot.Overlaps(res.StartTime, res.EndTime, slot.StartUTC(), slot.EndUTC()) {
					availability.BookedSlots = append(availability.BookedSlots, model.BookedSlot{
						Hour:          slot.Hour(),
						StartUTC:      slot.StartUTC(),
						EndUTC:        slot.EndUTC(),
						ReservationID: res.ID,
						Mine:          q.ViewerID != "" && res.HolderID == q.ViewerID,
					})
					booked = true
					break
				}
			}
			if !booked {
				availability.FreeSlots = append(availability.FreeSlots, model.FreeSlot{
					Hour:     slot.Hour(),
					StartUTC: slot.StartUTC(),
					EndUTC:   slot.EndUTC(),
				})
			}
		}

		result = append(result, availability)
	}

	return result, nil
}

func (s *availabilityService) applyDefaults(q *Query) {
	if q.SlotMinutes == 0 {
		q.SlotMinutes = s.cfg.DefaultSlotMinutes
	}
	if q.OpenHour == 0 && q.CloseHour == 0 {
		q.OpenHour = s.cfg.OpenHour
		q.CloseHour = s.cfg.CloseHour
	}
}

func (s *availabilityService) resolveCourts(ctx context.Context, q Query) ([]*model.Court, error) {
	if q.CourtID != "" {
		court, err := s.courtRepo.FindByID(ctx, q.CourtID)
		if err != nil {
			if errors.Is(err, courterrors.ErrNotFound) {
				return nil, apperrors.NotFoundWithID("Court", q.CourtID)
			}
			if errors.Is(err, courterrors.ErrInvalidID) {
				return nil, apperrors.InvalidInput("Invalid court ID format")
			}
			return nil, apperrors.Internal("Failed to resolve court", err)
		}
		return []*model.Court{court}, nil
	}

	courts, err := s.courtRepo.ListActive(ctx, q.Category)
	if err != nil {
		return nil, apperrors.Internal("Failed to list courts", err)
	}
	return courts, nil
}
