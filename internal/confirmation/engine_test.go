package confirmation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "github.com/iBubenok/restaurant-booking-system/internal/bookings/errors"
	"github.com/iBubenok/restaurant-booking-system/pkg/config"
	mongotx "github.com/iBubenok/restaurant-booking-system/pkg/db/mongo"
	"github.com/iBubenok/restaurant-booking-system/pkg/logger"
	"github.com/iBubenok/restaurant-booking-system/pkg/model"
)

// Mock repositories for testing

type mockBookingRepository struct {
	findByIDFunc            func(ctx context.Context, id int64) (*model.Booking, error)
	existsConfirmedSlotFunc func(ctx context.Context, restaurantID int64, slot time.Time) (bool, error)
	commitStatusFunc        func(ctx context.Context, id int64, from, to model.BookingStatus) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) ExistsConfirmedSlot(ctx context.Context, restaurantID int64, slot time.Time) (bool, error) {
	if m.existsConfirmedSlotFunc != nil {
		return m.existsConfirmedSlotFunc(ctx, restaurantID, slot)
	}
	return false, nil
}

func (m *mockBookingRepository) CommitStatus(ctx context.Context, id int64, from, to model.BookingStatus) error {
	if m.commitStatusFunc != nil {
		return m.commitStatusFunc(ctx, id, from, to)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockSlotLockRepository struct {
	withSlotLockFunc func(ctx context.Context, restaurantID int64, slot time.Time, fn func(ctx context.Context) error) error
}

func (m *mockSlotLockRepository) Acquire(ctx context.Context, restaurantID int64, slot time.Time) (*model.SlotLock, error) {
	return &model.SlotLock{ID: model.SlotLockID(restaurantID, slot)}, nil
}

func (m *mockSlotLockRepository) Release(ctx context.Context, lockID string) error {
	return nil
}

func (m *mockSlotLockRepository) WithSlotLock(ctx context.Context, restaurantID int64, slot time.Time, fn func(ctx context.Context) error) error {
	if m.withSlotLockFunc != nil {
		return m.withSlotLockFunc(ctx, restaurantID, slot, fn)
	}
	return fn(ctx)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.ERROR,
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

func newTestEngine(repo *mockBookingRepository, locks *mockSlotLockRepository) *Engine {
	return NewEngine(repo, locks, NewAvailabilityChecker(repo), testConfig())
}

var slot = time.Date(2026, 9, 1, 19, 30, 0, 0, time.UTC)

func TestProcess_ConfirmsFreeSlot(t *testing.T) {
	var commits []string
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Booking, error) {
			return &model.Booking{ID: id, RestaurantID: 1, BookingDatetime: slot, Status: model.StatusCreated}, nil
		},
		existsConfirmedSlotFunc: func(ctx context.Context, restaurantID int64, s time.Time) (bool, error) {
			return false, nil
		},
		commitStatusFunc: func(ctx context.Context, id int64, from, to model.BookingStatus) error {
			commits = append(commits, fmt.Sprintf("%s->%s", from, to))
			return nil
		},
	}

	engine := newTestEngine(repo, &mockSlotLockRepository{})

	status, err := engine.Process(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != model.StatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", status)
	}

	want := []string{"CREATED->CHECKING_AVAILABILITY", "CHECKING_AVAILABILITY->CONFIRMED"}
	if len(commits) != len(want) {
		t.Fatalf("expected commits %v, got %v", want, commits)
	}
	for i := range want {
		if commits[i] != want[i] {
			t.Errorf("commit %d: expected %s, got %s", i, want[i], commits[i])
		}
	}
}

func TestProcess_RejectsTakenSlot(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Booking, error) {
			return &model.Booking{ID: id, RestaurantID: 1, BookingDatetime: slot, Status: model.StatusCreated}, nil
		},
		existsConfirmedSlotFunc: func(ctx context.Context, restaurantID int64, s time.Time) (bool, error) {
			return true, nil
		},
	}

	engine := newTestEngine(repo, &mockSlotLockRepository{})

	status, err := engine.Process(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != model.StatusRejected {
		t.Errorf("expected REJECTED, got %s", status)
	}
}

func TestProcess_TerminalBookingIsNoOp(t *testing.T) {
	var commitCalls int
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Booking, error) {
			return &model.Booking{ID: id, RestaurantID: 1, BookingDatetime: slot, Status: model.StatusConfirmed}, nil
		},
		commitStatusFunc: func(ctx context.Context, id int64, from, to model.BookingStatus) error {
			commitCalls++
			return nil
		},
	}

	var lockCalls int
	locks := &mockSlotLockRepository{
		withSlotLockFunc: func(ctx context.Context, restaurantID int64, s time.Time, fn func(ctx context.Context) error) error {
			lockCalls++
			return fn(ctx)
		},
	}

	engine := newTestEngine(repo, locks)

	status, err := engine.Process(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != model.StatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", status)
	}
	if commitCalls != 0 {
		t.Errorf("redelivery of a decided booking must not write, got %d commits", commitCalls)
	}
	if lockCalls != 0 {
		t.Errorf("redelivery of a decided booking must not take the lock, got %d acquisitions", lockCalls)
	}
}

func TestProcess_UnknownBooking(t *testing.T) {
	engine := newTestEngine(&mockBookingRepository{}, &mockSlotLockRepository{})

	_, err := engine.Process(context.Background(), 99)
	if !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestProcess_LockTimeoutIsRetryable(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Booking, error) {
			return &model.Booking{ID: id, RestaurantID: 1, BookingDatetime: slot, Status: model.StatusCreated}, nil
		},
	}
	locks := &mockSlotLockRepository{
		withSlotLockFunc: func(ctx context.Context, restaurantID int64, s time.Time, fn func(ctx context.Context) error) error {
			return bookingserrors.ErrSlotLockTimeout
		},
	}

	engine := newTestEngine(repo, locks)

	_, err := engine.Process(context.Background(), 4)
	if !errors.Is(err, ErrRetryable) {
		t.Errorf("expected retryable error on lock timeout, got %v", err)
	}
}

func TestProcess_ResumesCheckingAvailability(t *testing.T) {
	var commits []string
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Booking, error) {
			return &model.Booking{ID: id, RestaurantID: 1, BookingDatetime: slot, Status: model.StatusCheckingAvailability}, nil
		},
		commitStatusFunc: func(ctx context.Context, id int64, from, to model.BookingStatus) error {
			commits = append(commits, fmt.Sprintf("%s->%s", from, to))
			return nil
		},
	}

	engine := newTestEngine(repo, &mockSlotLockRepository{})

	status, err := engine.Process(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != model.StatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", status)
	}
	if len(commits) != 1 || commits[0] != "CHECKING_AVAILABILITY->CONFIRMED" {
		t.Errorf("a booking found mid-flight must skip the initial transition, got %v", commits)
	}
}

func TestProcess_ConflictResolvedByConcurrentWorker(t *testing.T) {
	calls := 0
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Booking, error) {
			calls++
			if calls == 1 {
				return &model.Booking{ID: id, RestaurantID: 1, BookingDatetime: slot, Status: model.StatusCreated}, nil
			}
			return &model.Booking{ID: id, RestaurantID: 1, BookingDatetime: slot, Status: model.StatusRejected}, nil
		},
		commitStatusFunc: func(ctx context.Context, id int64, from, to model.BookingStatus) error {
			return bookingserrors.ErrStatusConflict
		},
	}

	engine := newTestEngine(repo, &mockSlotLockRepository{})

	status, err := engine.Process(context.Background(), 6)
	if err != nil {
		t.Fatalf("expected losing the race to a finished worker to be a no-op, got %v", err)
	}
	if status != model.StatusRejected {
		t.Errorf("expected REJECTED from the winning worker, got %s", status)
	}
}

// fakeStore is a stateful in-memory stand-in for the booking collection and
// the slot lock collection, preserving their concurrency semantics:
// conditional status commits and mutual exclusion per slot key.
type fakeStore struct {
	mu       sync.Mutex
	bookings map[int64]*model.Booking
	locks    map[string]*sync.Mutex
}

func newFakeStore(bookings ...*model.Booking) *fakeStore {
	s := &fakeStore{
		bookings: make(map[int64]*model.Booking),
		locks:    make(map[string]*sync.Mutex),
	}
	for _, b := range bookings {
		s.bookings[b.ID] = b
	}
	return s
}

func (s *fakeStore) Create(ctx context.Context, booking *model.Booking) error { return nil }

func (s *fakeStore) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (s *fakeStore) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	return nil, nil
}

func (s *fakeStore) Count(ctx context.Context) (int64, error) { return 0, nil }

func (s *fakeStore) ExistsConfirmedSlot(ctx context.Context, restaurantID int64, slot time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.RestaurantID == restaurantID && b.BookingDatetime.Equal(slot) && b.Status == model.StatusConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CommitStatus(ctx context.Context, id int64, from, to model.BookingStatus) error {
	if err := model.ValidateTransition(from, to); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != from {
		return bookingserrors.ErrStatusConflict
	}
	b.Status = to
	return nil
}

func (s *fakeStore) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func (s *fakeStore) Acquire(ctx context.Context, restaurantID int64, slot time.Time) (*model.SlotLock, error) {
	return nil, errors.New("not used")
}

func (s *fakeStore) Release(ctx context.Context, lockID string) error { return nil }

func (s *fakeStore) WithSlotLock(ctx context.Context, restaurantID int64, slot time.Time, fn func(ctx context.Context) error) error {
	key := model.SlotLockID(restaurantID, slot)
	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}

func TestProcess_ConcurrentWorkersSingleWinner(t *testing.T) {
	store := newFakeStore(
		&model.Booking{ID: 1, RestaurantID: 7, BookingDatetime: slot, Status: model.StatusCreated},
		&model.Booking{ID: 2, RestaurantID: 7, BookingDatetime: slot, Status: model.StatusCreated},
	)

	engineA := NewEngine(store, store, NewAvailabilityChecker(store), testConfig())
	engineB := NewEngine(store, store, NewAvailabilityChecker(store), testConfig())

	var wg sync.WaitGroup
	results := make([]model.BookingStatus, 2)
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], errs[0] = engineA.Process(context.Background(), 1)
	}()
	go func() {
		defer wg.Done()
		results[1], errs[1] = engineB.Process(context.Background(), 2)
	}()
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d failed: %v", i, err)
		}
	}

	confirmed := 0
	rejected := 0
	for _, status := range results {
		switch status {
		case model.StatusConfirmed:
			confirmed++
		case model.StatusRejected:
			rejected++
		default:
			t.Errorf("unexpected terminal status %s", status)
		}
	}

	if confirmed != 1 || rejected != 1 {
		t.Errorf("expected exactly one CONFIRMED and one REJECTED, got %d/%d", confirmed, rejected)
	}
}

func TestProcess_SequentialBookingsSameSlot(t *testing.T) {
	store := newFakeStore(
		&model.Booking{ID: 1, RestaurantID: 3, BookingDatetime: slot, Status: model.StatusCreated},
		&model.Booking{ID: 2, RestaurantID: 3, BookingDatetime: slot, Status: model.StatusCreated},
		&model.Booking{ID: 3, RestaurantID: 3, BookingDatetime: slot, Status: model.StatusCreated},
	)
	engine := NewEngine(store, store, NewAvailabilityChecker(store), testConfig())

	first, err := engine.Process(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != model.StatusConfirmed {
		t.Errorf("first booking for a free slot must confirm, got %s", first)
	}

	for _, id := range []int64{2, 3} {
		status, err := engine.Process(context.Background(), id)
		if err != nil {
			t.Fatalf("unexpected error for booking %d: %v", id, err)
		}
		if status != model.StatusRejected {
			t.Errorf("booking %d for a taken slot must reject, got %s", id, status)
		}
	}
}
