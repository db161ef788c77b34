package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	courterrors "courtbook/internal/courts/errors"
	courtrepo "courtbook/internal/courts/repository"
	"courtbook/internal/reservations/events"
	reservationerrors "courtbook/internal/reservations/errors"
	"courtbook/internal/reservations/repository"
	"courtbook/internal/reservations/validator"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
	"courtbook/pkg/sanitizer"
	"courtbook/pkg/timeslot"
)

type ReservationService interface {
	Create(ctx context.Context, res *model.Reservation) error
	Cancel(ctx context.Context, id string, requesterID string) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	lockRepo  repository.ReservationLockRepository
	courtRepo courtrepo.CourtRepository
	validator *validator.ReservationValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.ReservationLockRepository,
	courtRepo courtrepo.CourtRepository,
	validator *validator.ReservationValidator,
	publisher events.Publisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		courtRepo: courtRepo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create validates and commits a new reservation. The check-then-insert
// sequence is made atomic per court: a per-court advisory lock serializes
// concurrent creates, and the overlap re-check plus insert run inside a
// transaction.
func (s *reservationService) Create(ctx context.Context, res *model.Reservation) error {
	s.applyDefaults(res)
	s.sanitize(res)

	if err := s.validate(res); err != nil {
		return err
	}

	if !res.StartTime.After(time.Now()) {
		return apperrors.PastTime("Reservation start time must be in the future")
	}

	if err := s.verifyCourt(ctx, res.CourtID); err != nil {
		return err
	}

	lockID, err := s.acquireCourtLock(ctx, res.CourtID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseCourtLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release reservation lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, res); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, res); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation",
			"court_id", res.CourtID,
			"holder_id", res.HolderID,
			"start_time", res.StartTime,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", res.ID,
		"court_id", res.CourtID,
		"holder_id", res.HolderID,
		"start_time", res.StartTime,
		"duration_min", res.DurationMin,
	)
	s.publisher.ReservationCreated(ctx, res)
	return nil
}

// Cancel flips a reservation to cancelled. Only the holder may cancel;
// cancelling an already-cancelled reservation is an idempotent no-op. There
// is no minimum lead time before start: a reservation can be cancelled up to
// the last second (policy hook if the facility ever wants one).
func (s *reservationService) Cancel(ctx context.Context, id string, requesterID string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	if requesterID == "" {
		return nil, apperrors.InvalidInput("Requester ID cannot be empty")
	}

	res, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if res.HolderID != requesterID {
		s.cfg.Log.Warn("Cancellation attempted by non-holder",
			"id", id,
			"holder_id", res.HolderID,
			"requester_id", requesterID,
		)
		return nil, apperrors.Forbidden("Only the reservation holder may cancel it")
	}

	if res.IsCancelled() {
		return res, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled)
	if err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		s.cfg.Log.Error("Failed to cancel reservation", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel reservation", err)
	}

	s.cfg.Log.Info("Reservation cancelled",
		"id", updated.ID,
		"court_id", updated.CourtID,
		"holder_id", updated.HolderID,
	)
	s.publisher.ReservationCancelled(ctx, updated)
	return updated, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	return s.findByID(ctx, id)
}

// --- Helpers ---

func (s *reservationService) findByID(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}
	return res, nil
}

func (s *reservationService) applyDefaults(res *model.Reservation) {
	if res.Status == "" {
		res.Status = model.StatusBooked
	}
	res.StartTime = res.StartTime.UTC()
	if res.EndTime.IsZero() && res.DurationMin > 0 {
		res.EndTime = res.StartTime.Add(time.Duration(res.DurationMin) * time.Minute)
	}
	res.EndTime = res.EndTime.UTC()
}

func (s *reservationService) sanitize(res *model.Reservation) {
	res.HolderName = sanitizer.SanitizeDisplayName(res.HolderName)
	res.HolderRef = sanitizer.SanitizeRef(res.HolderRef)
}

func (s *reservationService) validate(res *model.Reservation) error {
	if err := s.validator.Validate(res); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *reservationService) verifyCourt(ctx context.Context, courtID string) error {
	court, err := s.courtRepo.FindByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, courterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Court", courtID)
		}
		if errors.Is(err, courterrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid court ID format")
		}
		return apperrors.Internal("Failed to verify court", err)
	}
	if !court.Active {
		return apperrors.Validation("Court is not open for booking", map[string]any{"court_id": courtID})
	}
	return nil
}

// verifyNoOverlap re-checks the requested window against booked reservations
// using the same half-open predicate the availability projection uses.
func (s *reservationService) verifyNoOverlap(ctx context.Context, res *model.Reservation) error {
	existing, err := s.repo.FindIntersecting(ctx, res.CourtID, res.StartTime, res.EndTime)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}

	for _, other := range existing {
		if other.ID == res.ID {
			continue
		}
		if timeslot.Overlaps(other.StartTime, other.EndTime, res.StartTime, res.EndTime) {
			return apperrors.Conflict(fmt.Sprintf(
				"Requested window overlaps an existing reservation (%s - %s)",
				other.StartTime.Format(time.RFC3339),
				other.EndTime.Format(time.RFC3339),
			))
		}
	}
	return nil
}

const (
	lockAcquireAttempts   = 5
	lockAcquireRetryDelay = 25 * time.Millisecond
)

// acquireCourtLock serializes creates per court. The key is court-scoped
// rather than slot-scoped because durations vary: a slot-keyed lock cannot
// cover a straddling window. A held lock is retried briefly so concurrent
// creates for disjoint windows on the same court queue up instead of
// failing; only sustained contention surfaces a conflict.
func (s *reservationService) acquireCourtLock(ctx context.Context, courtID string) (string, error) {
	lock := &model.ReservationLock{
		ID:      fmt.Sprintf("reservation_lock_%s", courtID),
		TraceID: uuid.New().String(),
	}

	for attempt := 1; ; attempt++ {
		lock.ExpiresAt = time.Now().Add(s.cfg.ReservationLockTTL)

		_, err := s.lockRepo.Acquire(ctx, lock)
		if err == nil {
			return lock.ID, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Internal("Failed to acquire reservation lock", err)
		}
		if attempt == lockAcquireAttempts {
			return "", apperrors.Conflict("This court is currently being booked by another request. Please try again.")
		}

		select {
		case <-ctx.Done():
			return "", apperrors.Internal("Request cancelled while waiting for reservation lock", ctx.Err())
		case <-time.After(lockAcquireRetryDelay):
		}
	}
}

func (s *reservationService) releaseCourtLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Release(ctx, lockID)
}
