//go:build unit

package reservation_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"class-booking/internal/domain/slot"
	"class-booking/internal/infra/converter"
	"class-booking/internal/pkg/clock"
	"class-booking/internal/pkg/errs"
	"class-booking/internal/usecase/reservation"
	"class-booking/internal/usecase/shared"
	"class-booking/internal/usecase/state"
	"class-booking/tests/common/builder"
	"class-booking/tests/common/docstoretest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	slotsColl    = "class"
	bookingsColl = "bookings"
)

var bookedAt = time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)

type fixture struct {
	docs  *docstoretest.Faulty
	state *state.Store
	ctrl  *reservation.Controller
	opts  reservation.Options
}

func defaultOptions() reservation.Options {
	return reservation.Options{
		Policy:             reservation.PolicySplit,
		SyncMode:           reservation.SyncPoll,
		SlotsCollection:    slotsColl,
		BookingsCollection: bookingsColl,
		WriteTimeout:       2 * time.Second,
	}
}

func newFixture(t *testing.T, opts reservation.Options, slots ...*builder.SlotBuilder) *fixture {
	t.Helper()
	docs := docstoretest.NewFaulty()
	builder.Seed(t, docs, slotsColl, slots...)

	st := state.NewStore(docs, slotsColl, nil)
	if opts.SyncMode == reservation.SyncListen {
		sub, err := st.Subscribe(context.Background(), nil)
		require.NoError(t, err)
		t.Cleanup(sub.Unsubscribe)
	} else {
		require.NoError(t, st.Load(context.Background()))
	}

	committer, err := reservation.NewCommitter(docs, opts, nil)
	require.NoError(t, err)
	ctrl := reservation.NewController(st, committer, clock.NewMockClock(bookedAt), opts, nil)
	return &fixture{docs: docs, state: st, ctrl: ctrl, opts: opts}
}

// remoteSlotsLeft reads the count straight from the store.
func (f *fixture) remoteSlotsLeft(t *testing.T, id string) int {
	t.Helper()
	docs, err := f.docs.ListAll(context.Background(), slotsColl)
	require.NoError(t, err)
	for _, d := range docs {
		if d.ID == id {
			n, err := converter.IntField(d.Fields, converter.FieldSlotsLeft)
			require.NoError(t, err)
			return n
		}
	}
	t.Fatalf("slot %s not in store", id)
	return 0
}

func (f *fixture) bookings(t *testing.T) []shared.Document {
	t.Helper()
	docs, err := f.docs.ListAll(context.Background(), bookingsColl)
	require.NoError(t, err)
	return docs
}

func (f *fixture) localSlotsLeft(t *testing.T, id string) int {
	t.Helper()
	s, ok := f.state.Get(id)
	require.True(t, ok)
	return s.SlotsLeft().Int()
}

type ControllerTestSuite struct {
	suite.Suite
	f *fixture
}

func (s *ControllerTestSuite) SetupTest() {
	s.f = newFixture(s.T(), defaultOptions(),
		builder.NewSlotBuilder().WithID("mon").WithSlotsLeft(2),
		builder.NewSlotBuilder().WithID("tue").WithDay("Tuesday").AsLastSeat(),
		builder.NewSlotBuilder().WithID("wed").WithDay("Wednesday").AsFull(),
	)
}

func TestControllerTestSuite(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}

func (s *ControllerTestSuite) TestInitialView() {
	v := s.f.ctrl.View()

	s.Equal(reservation.StateIdle, v.State)
	s.False(v.CanSubmit)
	s.Require().Len(v.Slots, 3)
	s.Equal([]string{"mon", "tue", "wed"}, []string{v.Slots[0].ID, v.Slots[1].ID, v.Slots[2].ID})
	s.True(v.Slots[0].Bookable)
	s.True(v.Slots[1].Bookable)
	s.False(v.Slots[2].Bookable, "a full slot is not bookable")
}

func (s *ControllerTestSuite) TestSelect() {
	s.Run("marks the slot and shows the optimistic count", func() {
		s.SetupTest()
		s.Require().NoError(s.f.ctrl.Select("mon"))

		s.Equal(reservation.StateSelecting, s.f.ctrl.State())
		pending, ok := s.f.ctrl.Pending()
		s.Require().True(ok)
		s.Equal(2, pending.Observed.Int())
		s.Equal(1, pending.Tentative.Int())
		s.True(pending.Optimistic)

		v := s.f.ctrl.View()
		mon, _ := v.Slot("mon")
		s.True(mon.Selected)
		s.Equal(2, mon.SlotsLeft)
		s.Equal(1, mon.DisplaySlotsLeft)
		s.True(v.CanSubmit)

		s.Equal(2, s.f.remoteSlotsLeft(s.T(), "mon"), "selection does not write")
		inserts, updates := s.f.docs.Writes()
		s.Zero(inserts + updates)
	})

	s.Run("full slot is rejected", func() {
		s.SetupTest()
		err := s.f.ctrl.Select("wed")

		s.True(errs.Is(err, errs.ErrSlotFull), "got %v", err)
		s.Equal(reservation.StateIdle, s.f.ctrl.State())
	})

	s.Run("unknown slot is rejected", func() {
		s.SetupTest()
		err := s.f.ctrl.Select("nope")

		s.True(errs.Is(err, errs.ErrSlotNotFound), "got %v", err)
	})

	s.Run("selecting again replaces the pending slot", func() {
		s.SetupTest()
		s.Require().NoError(s.f.ctrl.Select("mon"))
		s.Require().NoError(s.f.ctrl.Select("tue"))

		v := s.f.ctrl.View()
		s.Equal("tue", v.PendingSlotID)
		mon, _ := v.Slot("mon")
		tue, _ := v.Slot("tue")
		s.False(mon.Selected)
		s.Equal(2, mon.DisplaySlotsLeft, "previous optimistic decrement is dropped")
		s.Equal(0, tue.DisplaySlotsLeft)
	})

	s.Run("last seat selected hides book now", func() {
		s.SetupTest()
		s.Require().NoError(s.f.ctrl.Select("tue"))

		tue, _ := s.f.ctrl.View().Slot("tue")
		s.Equal(0, tue.DisplaySlotsLeft)
		s.False(tue.Bookable)
		s.True(s.f.ctrl.View().CanSubmit, "confirmed count still allows the submit")
	})
}

func (s *ControllerTestSuite) TestCancel() {
	s.Require().NoError(s.f.ctrl.Cancel(), "cancel from idle is a no-op")

	s.Require().NoError(s.f.ctrl.Select("mon"))
	s.Require().NoError(s.f.ctrl.SetStudentName("Ada"))
	s.Require().NoError(s.f.ctrl.Cancel())

	v := s.f.ctrl.View()
	s.Equal(reservation.StateIdle, v.State)
	s.Empty(v.PendingSlotID)
	s.Empty(v.StudentName)
	mon, _ := v.Slot("mon")
	s.Equal(2, mon.DisplaySlotsLeft)
	s.Equal(2, s.f.remoteSlotsLeft(s.T(), "mon"))
}

func (s *ControllerTestSuite) TestSubmit_Success() {
	s.Require().NoError(s.f.ctrl.Select("mon"))
	s.Require().NoError(s.f.ctrl.Submit(context.Background(), "  Ada Lovelace "))

	s.Equal(1, s.f.remoteSlotsLeft(s.T(), "mon"))
	s.Equal(1, s.f.localSlotsLeft(s.T(), "mon"), "poll mode applies the confirmed count")

	records := s.f.bookings(s.T())
	s.Require().Len(records, 1)
	record, err := converter.BookingFromDocument(records[0])
	s.Require().NoError(err)
	s.Equal("Ada Lovelace", record.StudentName().String())
	s.Equal("Monday", record.Day())
	s.Equal("10:00", record.Time())
	s.Equal("mon", record.SlotID())
	s.True(bookedAt.Equal(record.BookedAt()))

	v := s.f.ctrl.View()
	s.Equal(reservation.StateIdle, v.State)
	s.Empty(v.PendingSlotID)
	s.Empty(v.LastError)
}

func (s *ControllerTestSuite) TestSubmit_LastSeatFillsSlot() {
	s.Require().NoError(s.f.ctrl.Select("tue"))
	s.Require().NoError(s.f.ctrl.Submit(context.Background(), "Ada"))

	s.Equal(0, s.f.remoteSlotsLeft(s.T(), "tue"))
	tue, _ := s.f.ctrl.View().Slot("tue")
	s.False(tue.Bookable)

	err := s.f.ctrl.Select("tue")
	s.True(errs.Is(err, errs.ErrSlotFull))
}

func (s *ControllerTestSuite) TestSubmit_Validation() {
	s.Run("requires a selection", func() {
		s.SetupTest()
		err := s.f.ctrl.Submit(context.Background(), "Ada")
		s.True(errs.Is(err, errs.ErrNotSelecting), "got %v", err)
	})

	s.Run("requires a name", func() {
		s.SetupTest()
		s.Require().NoError(s.f.ctrl.Select("mon"))

		err := s.f.ctrl.Submit(context.Background(), "   ")
		s.True(errs.Is(err, errs.ErrStudentNameRequired), "got %v", err)
		s.Equal(reservation.StateSelecting, s.f.ctrl.State())
		inserts, updates := s.f.docs.Writes()
		s.Zero(inserts + updates)
	})

	s.Run("name too long", func() {
		s.SetupTest()
		s.Require().NoError(s.f.ctrl.Select("mon"))

		err := s.f.ctrl.Submit(context.Background(), strings.Repeat("a", 101))
		s.True(errs.Is(err, errs.ErrDomainValidation), "got %v", err)
	})

	s.Run("falls back to the draft name", func() {
		s.SetupTest()
		s.Require().NoError(s.f.ctrl.Select("mon"))
		s.Require().NoError(s.f.ctrl.SetStudentName("Grace"))
		s.Equal("Grace", s.f.ctrl.View().StudentName)

		s.Require().NoError(s.f.ctrl.Submit(context.Background(), ""))
		records := s.f.bookings(s.T())
		s.Require().Len(records, 1)
		s.Equal("Grace", records[0].Fields[converter.FieldStudentName])
	})
}

func (s *ControllerTestSuite) TestSubmit_SlotFilledRemotely() {
	s.Require().NoError(s.f.ctrl.Select("tue"))

	// Someone else takes the last seat; the next reload shows it.
	s.Require().NoError(s.f.docs.Put(context.Background(), slotsColl, "tue",
		builder.NewSlotBuilder().WithID("tue").WithDay("Tuesday").AsFull().BuildFields()))
	s.Require().NoError(s.f.state.Load(context.Background()))

	err := s.f.ctrl.Submit(context.Background(), "Ada")
	s.True(errs.Is(err, errs.ErrSlotFull), "got %v", err)

	inserts, updates := s.f.docs.Writes()
	s.Zero(inserts + updates, "nothing is written for a full slot")

	v := s.f.ctrl.View()
	s.Equal(reservation.StateSelecting, v.State)
	s.NotEmpty(v.LastError)
	s.False(v.CanSubmit)
	tue, _ := v.Slot("tue")
	s.Equal(0, tue.DisplaySlotsLeft, "display never goes negative")
}

func (s *ControllerTestSuite) TestSubmit_SlotRemovedRemotely() {
	source := &hidingSource{Store: s.f.state}
	committer, err := reservation.NewCommitter(s.f.docs, defaultOptions(), nil)
	s.Require().NoError(err)
	ctrl := reservation.NewController(source, committer, nil, defaultOptions(), nil)

	s.Require().NoError(ctrl.Select("mon"))
	source.hidden = "mon"

	err = ctrl.Submit(context.Background(), "Ada")
	s.True(errs.Is(err, errs.ErrSlotNotFound), "got %v", err)
	s.NotEmpty(ctrl.View().LastError)
	inserts, updates := s.f.docs.Writes()
	s.Zero(inserts + updates)
}

func (s *ControllerTestSuite) TestSubmit_SlotWriteFails() {
	s.f.docs.FailUpdate(errors.New("connection reset"))
	s.Require().NoError(s.f.ctrl.Select("mon"))

	err := s.f.ctrl.Submit(context.Background(), "Ada")
	s.Require().Error(err)
	var submitErr *shared.SubmitError
	s.Require().True(errors.As(err, &submitErr))
	s.Equal(shared.StageSlot, submitErr.Stage)
	s.True(errs.Is(err, errs.ErrStoreOperationFailed))

	v := s.f.ctrl.View()
	s.Equal(reservation.StateSelecting, v.State, "the session stays selectable for retry")
	s.Equal("mon", v.PendingSlotID)
	s.NotEmpty(v.LastError)
	mon, _ := v.Slot("mon")
	s.Equal(2, mon.DisplaySlotsLeft, "optimistic decrement is dropped after a failure")
	s.Equal(2, s.f.localSlotsLeft(s.T(), "mon"))
	s.Equal(2, s.f.remoteSlotsLeft(s.T(), "mon"))
	s.Len(s.f.bookings(s.T()), 1, "split policy leaves the booking record behind")

	s.f.docs.FailUpdate(nil)
	s.Require().NoError(s.f.ctrl.Submit(context.Background(), ""), "retry reuses the stored name")
	s.Equal(1, s.f.remoteSlotsLeft(s.T(), "mon"))
	s.Len(s.f.bookings(s.T()), 2)
}

func (s *ControllerTestSuite) TestSubmit_BookingWriteFails() {
	s.f.docs.FailInsert(errors.New("quota exceeded"))
	s.Require().NoError(s.f.ctrl.Select("mon"))

	err := s.f.ctrl.Submit(context.Background(), "Ada")
	var submitErr *shared.SubmitError
	s.Require().True(errors.As(err, &submitErr))
	s.Equal(shared.StageBooking, submitErr.Stage)

	s.Equal(2, s.f.remoteSlotsLeft(s.T(), "mon"), "slot is not touched when the record fails")
	s.Empty(s.f.bookings(s.T()))
}

func (s *ControllerTestSuite) TestSubmit_InProgress() {
	entered, release := s.f.docs.HoldWrites()
	defer release()
	s.Require().NoError(s.f.ctrl.Select("mon"))

	done := make(chan error, 1)
	go func() {
		done <- s.f.ctrl.Submit(context.Background(), "Ada")
	}()
	<-entered

	s.Equal(reservation.StateSubmitting, s.f.ctrl.State())
	s.True(errs.Is(s.f.ctrl.Submit(context.Background(), "Ada"), errs.ErrSubmitInProgress))
	s.True(errs.Is(s.f.ctrl.Select("tue"), errs.ErrSubmitInProgress))
	s.True(errs.Is(s.f.ctrl.Cancel(), errs.ErrSubmitInProgress))
	s.True(errs.Is(s.f.ctrl.SetStudentName("Bob"), errs.ErrSubmitInProgress))

	v := s.f.ctrl.View()
	s.False(v.CanSubmit)
	for _, sv := range v.Slots {
		s.Equal(sv.DisplaySlotsLeft > 0, sv.Bookable, "slot %s", sv.ID)
	}
	mon, _ := v.Slot("mon")
	s.Equal(1, mon.DisplaySlotsLeft)
	s.True(mon.Bookable)

	release()
	s.Require().NoError(<-done)
	s.Equal(reservation.StateIdle, s.f.ctrl.State())
	s.Equal(1, s.f.remoteSlotsLeft(s.T(), "mon"))
}

func (s *ControllerTestSuite) TestSubmit_CallerCancellation() {
	s.Run("cancelling the caller after writing started still books", func() {
		s.SetupTest()
		entered, release := s.f.docs.HoldWrites()
		defer release()
		s.Require().NoError(s.f.ctrl.Select("mon"))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.f.ctrl.Submit(ctx, "Ada") }()
		<-entered

		cancel()
		release()

		s.Require().NoError(<-done)
		s.Equal(reservation.StateIdle, s.f.ctrl.State())
		s.Len(s.f.bookings(s.T()), 1)
		s.Equal(1, s.f.remoteSlotsLeft(s.T(), "mon"), "the slot write follows the booking record")
	})

	s.Run("a caller deadline shorter than the write does not end it", func() {
		s.SetupTest()
		entered, release := s.f.docs.HoldWrites()
		defer release()
		s.Require().NoError(s.f.ctrl.Select("mon"))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		done := make(chan error, 1)
		go func() { done <- s.f.ctrl.Submit(ctx, "Ada") }()
		<-entered

		<-ctx.Done()
		release()

		s.Require().NoError(<-done)
		s.Equal(1, s.f.remoteSlotsLeft(s.T(), "mon"))
	})
}

func TestSubmit_WriteTimeout(t *testing.T) {
	opts := defaultOptions()
	opts.WriteTimeout = 50 * time.Millisecond
	f := newFixture(t, opts, builder.NewSlotBuilder().WithID("mon").WithSlotsLeft(2))

	_, release := f.docs.HoldWrites()
	defer release()
	require.NoError(t, f.ctrl.Select("mon"))

	err := f.ctrl.Submit(context.Background(), "Ada")

	require.Error(t, err)
	assert.True(t, errs.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Equal(t, reservation.StateSelecting, f.ctrl.State())
	assert.Empty(t, f.bookings(t))
	assert.Equal(t, 2, f.remoteSlotsLeft(t, "mon"))
}

func TestController_Policies(t *testing.T) {
	mon := func() *builder.SlotBuilder { return builder.NewSlotBuilder().WithID("mon").WithSlotsLeft(2) }

	t.Run("direct writes only the slot", func(t *testing.T) {
		opts := defaultOptions()
		opts.Policy = reservation.PolicyDirect
		f := newFixture(t, opts, mon())

		require.NoError(t, f.ctrl.Select("mon"))
		require.NoError(t, f.ctrl.Submit(context.Background(), "Ada"))

		assert.Equal(t, 1, f.remoteSlotsLeft(t, "mon"))
		assert.Empty(t, f.bookings(t))
	})

	t.Run("direct still requires a name", func(t *testing.T) {
		opts := defaultOptions()
		opts.Policy = reservation.PolicyDirect
		f := newFixture(t, opts, mon())

		require.NoError(t, f.ctrl.Select("mon"))
		assert.True(t, errs.Is(f.ctrl.Submit(context.Background(), ""), errs.ErrStudentNameRequired))
	})

	t.Run("atomic writes both", func(t *testing.T) {
		opts := defaultOptions()
		opts.Policy = reservation.PolicyAtomic
		f := newFixture(t, opts, mon())

		require.NoError(t, f.ctrl.Select("mon"))
		require.NoError(t, f.ctrl.Submit(context.Background(), "Ada"))

		assert.Equal(t, 1, f.remoteSlotsLeft(t, "mon"))
		assert.Len(t, f.bookings(t), 1)
	})

	t.Run("atomic failure writes nothing", func(t *testing.T) {
		opts := defaultOptions()
		opts.Policy = reservation.PolicyAtomic
		f := newFixture(t, opts, mon())
		f.docs.FailUpdate(errors.New("connection reset"))

		require.NoError(t, f.ctrl.Select("mon"))
		err := f.ctrl.Submit(context.Background(), "Ada")

		var submitErr *shared.SubmitError
		require.True(t, errors.As(err, &submitErr))
		assert.Equal(t, shared.StageCommit, submitErr.Stage)
		assert.Equal(t, 2, f.remoteSlotsLeft(t, "mon"))
		assert.Empty(t, f.bookings(t), "the booking insert is rolled back")
	})
}

func TestController_CompareAndSwap(t *testing.T) {
	mon := builder.NewSlotBuilder().WithID("mon").WithSlotsLeft(2)

	// bumpRemote changes the stored count behind the local state's back.
	bumpRemote := func(t *testing.T, f *fixture, n int) {
		t.Helper()
		require.NoError(t, f.docs.Store.UpdateFields(context.Background(), slotsColl, "mon", shared.Fields{converter.FieldSlotsLeft: n}))
	}

	t.Run("stale count is rejected", func(t *testing.T) {
		opts := defaultOptions()
		opts.CompareAndSwap = true
		f := newFixture(t, opts, mon)
		require.NoError(t, f.ctrl.Select("mon"))
		bumpRemote(t, f, 1)

		err := f.ctrl.Submit(context.Background(), "Ada")
		assert.True(t, errs.Is(err, errs.ErrStaleSlot), "got %v", err)
		assert.Equal(t, 1, f.remoteSlotsLeft(t, "mon"), "the concurrent write is preserved")

		require.NoError(t, f.state.Load(context.Background()))
		require.NoError(t, f.ctrl.Submit(context.Background(), ""))
		assert.Equal(t, 0, f.remoteSlotsLeft(t, "mon"))
	})

	t.Run("atomic with cas rolls back the record", func(t *testing.T) {
		opts := defaultOptions()
		opts.Policy = reservation.PolicyAtomic
		opts.CompareAndSwap = true
		f := newFixture(t, opts, mon)
		require.NoError(t, f.ctrl.Select("mon"))
		bumpRemote(t, f, 1)

		err := f.ctrl.Submit(context.Background(), "Ada")
		assert.True(t, errs.Is(err, errs.ErrStaleSlot), "got %v", err)
		assert.Empty(t, f.bookings(t))
	})

	t.Run("without cas the last write wins", func(t *testing.T) {
		f := newFixture(t, defaultOptions(), mon)
		require.NoError(t, f.ctrl.Select("mon"))
		bumpRemote(t, f, 1)

		require.NoError(t, f.ctrl.Submit(context.Background(), "Ada"))
		assert.Equal(t, 1, f.remoteSlotsLeft(t, "mon"), "observed 2, wrote 1 over the concurrent 1")
	})
}

func TestController_ListenMode(t *testing.T) {
	opts := defaultOptions()
	opts.SyncMode = reservation.SyncListen
	f := newFixture(t, opts, builder.NewSlotBuilder().WithID("mon").WithSlotsLeft(2))

	var versions []uint64
	watch := f.state.Watch(func(snap state.Snapshot) { versions = append(versions, snap.Version) })
	defer watch.Unsubscribe()

	require.NoError(t, f.ctrl.Select("mon"))
	require.NoError(t, f.ctrl.Submit(context.Background(), "Ada"))

	assert.Equal(t, 1, f.localSlotsLeft(t, "mon"), "the subscription delivers the confirmed count")
	assert.NotEmpty(t, versions)

	// remote changes flow in without a reload
	require.NoError(t, f.docs.Store.UpdateFields(context.Background(), slotsColl, "mon", shared.Fields{converter.FieldSlotsLeft: 5}))
	assert.Equal(t, 5, f.localSlotsLeft(t, "mon"))
}

func TestNewCommitter_Validation(t *testing.T) {
	t.Run("unknown policy", func(t *testing.T) {
		opts := defaultOptions()
		opts.Policy = "yolo"
		_, err := reservation.NewCommitter(docstoretest.NewFaulty(), opts, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown commit policy "yolo"`)
		assert.Contains(t, strings.Join(errs.ExtractStackLines(err, 0), "\n"), "options.go",
			"validation errors carry a stack")
	})

	t.Run("record policies need a bookings collection", func(t *testing.T) {
		opts := defaultOptions()
		opts.BookingsCollection = ""
		_, err := reservation.NewCommitter(docstoretest.NewFaulty(), opts, nil)
		assert.Error(t, err)

		opts.Policy = reservation.PolicyDirect
		_, err = reservation.NewCommitter(docstoretest.NewFaulty(), opts, nil)
		assert.NoError(t, err)
	})

	t.Run("cas needs conditional updates", func(t *testing.T) {
		opts := defaultOptions()
		opts.CompareAndSwap = true
		_, err := reservation.NewCommitter(plainStore{}, opts, nil)
		assert.Error(t, err)
	})

	t.Run("atomic needs transactions", func(t *testing.T) {
		opts := defaultOptions()
		opts.Policy = reservation.PolicyAtomic
		_, err := reservation.NewCommitter(plainStore{}, opts, nil)
		assert.Error(t, err)
	})
}

// plainStore offers only the base document operations.
type plainStore struct{}

func (plainStore) ListAll(context.Context, string) ([]shared.Document, error) { return nil, nil }
func (plainStore) Subscribe(context.Context, string, func([]shared.Document)) (shared.Unsubscribe, error) {
	return func() {}, nil
}
func (plainStore) UpdateFields(context.Context, string, string, shared.Fields) error { return nil }
func (plainStore) Insert(context.Context, string, shared.Fields) (string, error) { return "", nil }

// hidingSource pretends one slot was deleted from the collection.
type hidingSource struct {
	*state.Store
	hidden string
}

func (h *hidingSource) Get(id string) (*slot.Slot, bool) {
	if id == h.hidden {
		return nil, false
	}
	return h.Store.Get(id)
}
