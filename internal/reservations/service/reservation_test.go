package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	courterrors "courtbook/internal/courts/errors"
	reservationerrors "courtbook/internal/reservations/errors"
	"courtbook/internal/reservations/validator"
	"courtbook/pkg/config"
	mongotx "courtbook/pkg/db/mongo"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/logger"
	"courtbook/pkg/model"
)

const (
	testCourtID  = "507f1f77bcf86cd799439011"
	testHolderID = "user-1"
)

// Mock repositories for testing

type mockReservationRepository struct {
	mu           sync.Mutex
	reservations []*model.Reservation

	createFunc           func(ctx context.Context, res *model.Reservation) error
	findByIDFunc         func(ctx context.Context, id string) (*model.Reservation, error)
	findIntersectingFunc func(ctx context.Context, courtID string, start, end time.Time) ([]*model.Reservation, error)
	updateStatusFunc     func(ctx context.Context, id string, status string) (*model.Reservation, error)
}

func (m *mockReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, res)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *res
	m.reservations = append(m.reservations, &stored)
	return nil
}

func (m *mockReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reservationerrors.ErrNotFound
}

func (m *mockReservationRepository) FindIntersecting(ctx context.Context, courtID string, start, end time.Time) ([]*model.Reservation, error) {
	if m.findIntersectingFunc != nil {
		return m.findIntersectingFunc(ctx, courtID, start, end)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var matches []*model.Reservation
	for _, res := range m.reservations {
		if res.CourtID == courtID && res.Status == model.StatusBooked &&
			res.StartTime.Before(end) && res.EndTime.After(start) {
			matches = append(matches, res)
		}
	}
	return matches, nil
}

func (m *mockReservationRepository) HasOverlap(ctx context.Context, courtID string, start, end time.Time) (bool, error) {
	matches, err := m.FindIntersecting(ctx, courtID, start, end)
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

func (m *mockReservationRepository) UpdateStatus(ctx context.Context, id string, status string) (*model.Reservation, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil, reservationerrors.ErrNotFound
}

func (m *mockReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

// mockLockRepository emulates the unique-index insert: a second Acquire on
// the same lock ID fails with a duplicate key error until Release.
type mockLockRepository struct {
	mu   sync.Mutex
	held map[string]bool

	acquireFunc func(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error)
	releaseFunc func(ctx context.Context, lockID string) error
}

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
}

func (m *mockLockRepository) Acquire(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, lock)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held == nil {
		m.held = make(map[string]bool)
	}
	if m.held[lock.ID] {
		return nil, duplicateKeyError()
	}
	m.held[lock.ID] = true
	return lock, nil
}

func (m *mockLockRepository) Release(ctx context.Context, lockID string) error {
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, lockID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, lockID)
	return nil
}

type mockCourtRepository struct {
	findByIDFunc   func(ctx context.Context, id string) (*model.Court, error)
	listActiveFunc func(ctx context.Context, category string) ([]*model.Court, error)
}

func (m *mockCourtRepository) FindByID(ctx context.Context, id string) (*model.Court, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Court{ID: id, Name: "Center Court", Category: model.CategoryTennis, Active: true}, nil
}

func (m *mockCourtRepository) ListActive(ctx context.Context, category string) ([]*model.Court, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx, category)
	}
	return []*model.Court{}, nil
}

type mockPublisher struct {
	mu        sync.Mutex
	created   []*model.Reservation
	cancelled []*model.Reservation
}

func (m *mockPublisher) ReservationCreated(ctx context.Context, res *model.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, res)
}

func (m *mockPublisher) ReservationCancelled(ctx context.Context, res *model.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, res)
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:                log,
		Location:           time.UTC,
		ReservationLockTTL: 10 * time.Second,
		WriteTimeout:       5 * time.Second,
		ReadTimeout:        5 * time.Second,
	}
}

func newTestService(repo *mockReservationRepository, lockRepo *mockLockRepository, courtRepo *mockCourtRepository, pub *mockPublisher) *reservationService {
	cfg := testConfig()
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		courtRepo: courtRepo,
		validator: validator.NewReservationValidator(cfg.Log),
		publisher: pub,
		cfg:       cfg,
	}
}

func futureReservation(start time.Time, durationMin int) *model.Reservation {
	return &model.Reservation{
		CourtID:     testCourtID,
		HolderID:    testHolderID,
		HolderName:  "Dana Levi",
		StartTime:   start,
		DurationMin: durationMin,
	}
}

func TestCreate_Success(t *testing.T) {
	repo := &mockReservationRepository{}
	lockRepo := &mockLockRepository{}
	pub := &mockPublisher{}
	service := newTestService(repo, lockRepo, &mockCourtRepository{}, pub)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	res := futureReservation(start, 60)

	if err := service.Create(context.Background(), res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != model.StatusBooked {
		t.Errorf("expected status %q, got %q", model.StatusBooked, res.Status)
	}
	if want := start.UTC().Add(60 * time.Minute); !res.EndTime.Equal(want) {
		t.Errorf("expected derived end time %v, got %v", want, res.EndTime)
	}
	if len(repo.reservations) != 1 {
		t.Fatalf("expected 1 stored reservation, got %d", len(repo.reservations))
	}
	if len(pub.created) != 1 {
		t.Errorf("expected 1 created event, got %d", len(pub.created))
	}
	if len(lockRepo.held) != 0 {
		t.Errorf("expected lock to be released, %d still held", len(lockRepo.held))
	}
}

func TestCreate_PastStartTime(t *testing.T) {
	repo := &mockReservationRepository{}
	lockRepo := &mockLockRepository{}
	var lockAcquired bool
	lockRepo.acquireFunc = func(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
		lockAcquired = true
		return lock, nil
	}
	service := newTestService(repo, lockRepo, &mockCourtRepository{}, &mockPublisher{})

	res := futureReservation(time.Now().Add(-time.Hour), 60)

	err := service.Create(context.Background(), res)
	if !apperrors.IsCode(err, apperrors.CodePastTime) {
		t.Fatalf("expected %s error, got %v", apperrors.CodePastTime, err)
	}
	if lockAcquired {
		t.Error("lock should not be acquired for a past start time")
	}
	if len(repo.reservations) != 0 {
		t.Errorf("expected no stored reservations, got %d", len(repo.reservations))
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	service := newTestService(&mockReservationRepository{}, &mockLockRepository{}, &mockCourtRepository{}, &mockPublisher{})

	tests := []struct {
		name   string
		mutate func(res *model.Reservation)
	}{
		{
			name:   "missing court id",
			mutate: func(res *model.Reservation) { res.CourtID = "" },
		},
		{
			name:   "malformed court id",
			mutate: func(res *model.Reservation) { res.CourtID = "not-an-object-id" },
		},
		{
			name:   "duration below minimum",
			mutate: func(res *model.Reservation) { res.DurationMin = 10 },
		},
		{
			name: "end time disagrees with duration",
			mutate: func(res *model.Reservation) {
				res.EndTime = res.StartTime.Add(90 * time.Minute)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := futureReservation(time.Now().Add(24*time.Hour), 60)
			tt.mutate(res)

			err := service.Create(context.Background(), res)
			if !apperrors.IsCode(err, apperrors.CodeValidation) {
				t.Errorf("expected %s error, got %v", apperrors.CodeValidation, err)
			}
		})
	}
}

func TestCreate_CourtNotFound(t *testing.T) {
	courtRepo := &mockCourtRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Court, error) {
			return nil, courterrors.ErrNotFound
		},
	}
	service := newTestService(&mockReservationRepository{}, &mockLockRepository{}, courtRepo, &mockPublisher{})

	err := service.Create(context.Background(), futureReservation(time.Now().Add(24*time.Hour), 60))
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected %s error, got %v", apperrors.CodeNotFound, err)
	}
}

func TestCreate_InactiveCourt(t *testing.T) {
	courtRepo := &mockCourtRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Court, error) {
			return &model.Court{ID: id, Name: "Closed Court", Category: model.CategoryTennis, Active: false}, nil
		},
	}
	service := newTestService(&mockReservationRepository{}, &mockLockRepository{}, courtRepo, &mockPublisher{})

	err := service.Create(context.Background(), futureReservation(time.Now().Add(24*time.Hour), 60))
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected %s error, got %v", apperrors.CodeValidation, err)
	}
}

func TestCreate_OverlapConflict(t *testing.T) {
	day := time.Now().Add(24 * time.Hour).Truncate(24 * time.Hour)
	existingStart := day.Add(10 * time.Hour)

	repo := &mockReservationRepository{
		reservations: []*model.Reservation{
			{
				ID:        "68b000000000000000000001",
				CourtID:   testCourtID,
				HolderID:  "user-2",
				StartTime: existingStart,
				EndTime:   existingStart.Add(time.Hour),
				Status:    model.StatusBooked,
			},
		},
	}
	pub := &mockPublisher{}
	service := newTestService(repo, &mockLockRepository{}, &mockCourtRepository{}, pub)

	// 10:30-11:30 against an existing 10:00-11:00 hold.
	res := futureReservation(existingStart.Add(30*time.Minute), 60)

	err := service.Create(context.Background(), res)
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected %s error, got %v", apperrors.CodeConflict, err)
	}
	if len(repo.reservations) != 1 {
		t.Errorf("conflicting reservation must not be stored, have %d records", len(repo.reservations))
	}
	if len(pub.created) != 0 {
		t.Errorf("no event should be published on conflict, got %d", len(pub.created))
	}
}

func TestCreate_AdjacentWindowsAllowed(t *testing.T) {
	day := time.Now().Add(24 * time.Hour).Truncate(24 * time.Hour)
	existingStart := day.Add(10 * time.Hour)

	repo := &mockReservationRepository{
		reservations: []*model.Reservation{
			{
				ID:        "68b000000000000000000001",
				CourtID:   testCourtID,
				HolderID:  "user-2",
				StartTime: existingStart,
				EndTime:   existingStart.Add(time.Hour),
				Status:    model.StatusBooked,
			},
		},
	}
	service := newTestService(repo, &mockLockRepository{}, &mockCourtRepository{}, &mockPublisher{})

	// 11:00-12:00 starts exactly where the 10:00-11:00 hold ends.
	res := futureReservation(existingStart.Add(time.Hour), 60)

	if err := service.Create(context.Background(), res); err != nil {
		t.Fatalf("adjacent windows must not conflict: %v", err)
	}
	if len(repo.reservations) != 2 {
		t.Errorf("expected 2 stored reservations, got %d", len(repo.reservations))
	}
}

func TestCreate_CancelledReservationDoesNotBlock(t *testing.T) {
	day := time.Now().Add(24 * time.Hour).Truncate(24 * time.Hour)
	existingStart := day.Add(10 * time.Hour)

	repo := &mockReservationRepository{
		reservations: []*model.Reservation{
			{
				ID:        "68b000000000000000000001",
				CourtID:   testCourtID,
				HolderID:  "user-2",
				StartTime: existingStart,
				EndTime:   existingStart.Add(time.Hour),
				Status:    model.StatusCancelled,
			},
		},
	}
	service := newTestService(repo, &mockLockRepository{}, &mockCourtRepository{}, &mockPublisher{})

	res := futureReservation(existingStart, 60)

	if err := service.Create(context.Background(), res); err != nil {
		t.Fatalf("cancelled reservations must not block the window: %v", err)
	}
}

func TestCreate_LockHeldByAnotherRequest(t *testing.T) {
	lockRepo := &mockLockRepository{
		acquireFunc: func(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
			return nil, duplicateKeyError()
		},
	}
	repo := &mockReservationRepository{}
	service := newTestService(repo, lockRepo, &mockCourtRepository{}, &mockPublisher{})

	err := service.Create(context.Background(), futureReservation(time.Now().Add(24*time.Hour), 60))
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected %s error, got %v", apperrors.CodeConflict, err)
	}
	if len(repo.reservations) != 0 {
		t.Errorf("expected no stored reservations, got %d", len(repo.reservations))
	}
}

func TestCreate_ConcurrentRequests(t *testing.T) {
	const attempts = 20

	repo := &mockReservationRepository{}
	lockRepo := &mockLockRepository{}
	service := newTestService(repo, lockRepo, &mockCourtRepository{}, &mockPublisher{})

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res := futureReservation(start.Add(time.Duration(i%2)*30*time.Minute), 60)
			errs[i] = service.Create(context.Background(), res)
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for i, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperrors.IsCode(err, apperrors.CodeConflict):
			conflicts++
		default:
			t.Errorf("attempt %d: unexpected error: %v", i, err)
		}
	}

	if successes != 1 {
		t.Errorf("expected exactly 1 success across intersecting windows, got %d", successes)
	}
	if successes+conflicts != attempts {
		t.Errorf("expected all other attempts to conflict, got %d successes and %d conflicts", successes, conflicts)
	}
	if len(repo.reservations) != 1 {
		t.Errorf("expected exactly 1 stored reservation, got %d", len(repo.reservations))
	}
}

func TestCreate_ConcurrentDisjointWindows(t *testing.T) {
	const attempts = 4

	repo := &mockReservationRepository{}
	lockRepo := &mockLockRepository{}
	service := newTestService(repo, lockRepo, &mockCourtRepository{}, &mockPublisher{})

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	// Non-intersecting hourly windows racing on one court: the lock retry
	// lets each waiter acquire in turn, so none should surface a conflict.
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res := futureReservation(start.Add(time.Duration(i)*time.Hour), 60)
			errs[i] = service.Create(context.Background(), res)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("attempt %d: disjoint window should not conflict: %v", i, err)
		}
	}
	if len(repo.reservations) != attempts {
		t.Errorf("expected %d stored reservations, got %d", attempts, len(repo.reservations))
	}
}

func TestCancel_Success(t *testing.T) {
	stored := &model.Reservation{
		ID:        "68b000000000000000000001",
		CourtID:   testCourtID,
		HolderID:  testHolderID,
		StartTime: time.Now().Add(24 * time.Hour),
		EndTime:   time.Now().Add(25 * time.Hour),
		Status:    model.StatusBooked,
	}
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			found := *stored
			return &found, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status string) (*model.Reservation, error) {
			updated := *stored
			updated.Status = status
			return &updated, nil
		},
	}
	pub := &mockPublisher{}
	service := newTestService(repo, &mockLockRepository{}, &mockCourtRepository{}, pub)

	updated, err := service.Cancel(context.Background(), stored.ID, testHolderID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusCancelled {
		t.Errorf("expected status %q, got %q", model.StatusCancelled, updated.Status)
	}
	if len(pub.cancelled) != 1 {
		t.Errorf("expected 1 cancelled event, got %d", len(pub.cancelled))
	}
}

func TestCancel_NotFound(t *testing.T) {
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return nil, reservationerrors.ErrNotFound
		},
	}
	service := newTestService(repo, &mockLockRepository{}, &mockCourtRepository{}, &mockPublisher{})

	_, err := service.Cancel(context.Background(), "68b000000000000000000099", testHolderID)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected %s error, got %v", apperrors.CodeNotFound, err)
	}
}

func TestCancel_NonHolderForbidden(t *testing.T) {
	var statusUpdated bool
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return &model.Reservation{
				ID:       id,
				CourtID:  testCourtID,
				HolderID: testHolderID,
				Status:   model.StatusBooked,
			}, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status string) (*model.Reservation, error) {
			statusUpdated = true
			return nil, nil
		},
	}
	pub := &mockPublisher{}
	service := newTestService(repo, &mockLockRepository{}, &mockCourtRepository{}, pub)

	_, err := service.Cancel(context.Background(), "68b000000000000000000001", "someone-else")
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected %s error, got %v", apperrors.CodeForbidden, err)
	}
	if statusUpdated {
		t.Error("reservation status must not change on a forbidden cancellation")
	}
	if len(pub.cancelled) != 0 {
		t.Errorf("no event should be published, got %d", len(pub.cancelled))
	}
}

func TestCancel_AlreadyCancelledIsIdempotent(t *testing.T) {
	var statusUpdated bool
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return &model.Reservation{
				ID:       id,
				CourtID:  testCourtID,
				HolderID: testHolderID,
				Status:   model.StatusCancelled,
			}, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status string) (*model.Reservation, error) {
			statusUpdated = true
			return nil, nil
		},
	}
	pub := &mockPublisher{}
	service := newTestService(repo, &mockLockRepository{}, &mockCourtRepository{}, pub)

	res, err := service.Cancel(context.Background(), "68b000000000000000000001", testHolderID)
	if err != nil {
		t.Fatalf("repeated cancellation must succeed: %v", err)
	}
	if res.Status != model.StatusCancelled {
		t.Errorf("expected status %q, got %q", model.StatusCancelled, res.Status)
	}
	if statusUpdated {
		t.Error("already-cancelled reservation must not be written again")
	}
	if len(pub.cancelled) != 0 {
		t.Errorf("no event should be published for a no-op cancellation, got %d", len(pub.cancelled))
	}
}

func TestCancel_EmptyArguments(t *testing.T) {
	service := newTestService(&mockReservationRepository{}, &mockLockRepository{}, &mockCourtRepository{}, &mockPublisher{})

	if _, err := service.Cancel(context.Background(), "", testHolderID); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected %s for empty id, got %v", apperrors.CodeInvalidInput, err)
	}
	if _, err := service.Cancel(context.Background(), "68b000000000000000000001", ""); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected %s for empty requester, got %v", apperrors.CodeInvalidInput, err)
	}
}

func TestGetByID_InvalidID(t *testing.T) {
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return nil, reservationerrors.ErrInvalidID
		},
	}
	service := newTestService(repo, &mockLockRepository{}, &mockCourtRepository{}, &mockPublisher{})

	_, err := service.GetByID(context.Background(), "not-an-id")
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected %s error, got %v", apperrors.CodeInvalidInput, err)
	}
}
