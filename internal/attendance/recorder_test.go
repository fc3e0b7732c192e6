package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presensi/internal/roster"
	"presensi/internal/school"
)

// fakeStore keeps records in memory and counts calls so tests can assert
// that rejections perform zero writes.
type fakeStore struct {
	records map[string]*Record // keyed by id
	nextID  int

	findErr     error
	insertErr   error
	checkOutErr error

	reads, inserts, updates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*Record{}}
}

func (f *fakeStore) FindSince(_ context.Context, schoolID, nisn string, since time.Time) (*Record, error) {
	f.reads++
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, rec := range f.records {
		if rec.SchoolID == schoolID && rec.NISN == nisn && !rec.CheckInAt.Before(since) {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Insert(_ context.Context, rec Record) (Record, error) {
	f.inserts++
	if f.insertErr != nil {
		return Record{}, f.insertErr
	}
	for _, existing := range f.records {
		if existing.SchoolID == rec.SchoolID && existing.NISN == rec.NISN && existing.Day.Equal(rec.Day) {
			return Record{}, ErrDuplicateDay
		}
	}
	f.nextID++
	rec.ID = string(rune('a' + f.nextID))
	cp := rec
	f.records[rec.ID] = &cp
	return rec, nil
}

func (f *fakeStore) SetCheckOut(_ context.Context, id string, at time.Time) error {
	f.updates++
	if f.checkOutErr != nil {
		return f.checkOutErr
	}
	rec, ok := f.records[id]
	if !ok {
		return errors.New("no such record")
	}
	rec.CheckOutAt = &at
	return nil
}

var testSchool = school.School{ID: "sch-1", Name: "SDN 1 Testing", Timezone: "Asia/Jakarta"}

func testSnapshot() *roster.Snapshot {
	return roster.NewSnapshot([]roster.Student{
		{NISN: "1001", Name: "Budi Santoso", ClassLabel: "6A", SchoolID: "sch-1"},
		{NISN: "1002", Name: "Siti Rahma", ClassLabel: "6B", SchoolID: "sch-1"},
	})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecordScanFullDay(t *testing.T) {
	st := newFakeStore()
	morning := time.Date(2025, 3, 10, 6, 45, 0, 0, time.UTC)
	rec := NewRecorder(st, WithClock(fixedClock(morning)))
	ctx := context.Background()

	// First check-in is accepted and writes one row.
	out := rec.RecordScan(ctx, testSchool, "1001", CheckIn, testSnapshot())
	require.Equal(t, KindCheckedIn, out.Kind)
	assert.Equal(t, "Budi Santoso", out.StudentName)
	assert.Equal(t, "6A", out.ClassLabel)
	assert.Equal(t, 1, st.inserts)
	firstIn := out.CheckInAt

	// Second check-in same day is rejected and carries the original time.
	out = rec.RecordScan(ctx, testSchool, "1001", CheckIn, testSnapshot())
	require.Equal(t, KindAlreadyCheckedIn, out.Kind)
	assert.Equal(t, firstIn, out.CheckInAt)
	assert.Equal(t, 1, st.inserts, "rejection must not insert")

	// Check-out is accepted once.
	afternoon := morning.Add(8 * time.Hour)
	rec = NewRecorder(st, WithClock(fixedClock(afternoon)))
	out = rec.RecordScan(ctx, testSchool, "1001", CheckOut, testSnapshot())
	require.Equal(t, KindCheckedOut, out.Kind)
	assert.Equal(t, 1, st.updates)
	assert.False(t, out.CheckOutAt.IsZero())

	// Second check-out is rejected, same update count.
	out = rec.RecordScan(ctx, testSchool, "1001", CheckOut, testSnapshot())
	require.Equal(t, KindAlreadyCheckedOut, out.Kind)
	assert.Equal(t, 1, st.updates)
}

func TestRecordScanUnknownStudent(t *testing.T) {
	st := newFakeStore()
	rec := NewRecorder(st)

	out := rec.RecordScan(context.Background(), testSchool, "9999", CheckIn, testSnapshot())
	require.Equal(t, KindUnknownStudent, out.Kind)
	assert.Zero(t, st.reads, "unknown student must trigger zero store calls")
	assert.Zero(t, st.inserts)
}

func TestRecordScanCheckOutBeforeCheckIn(t *testing.T) {
	st := newFakeStore()
	rec := NewRecorder(st)

	out := rec.RecordScan(context.Background(), testSchool, "1002", CheckOut, testSnapshot())
	require.Equal(t, KindNotCheckedInYet, out.Kind)
	assert.Equal(t, "Siti Rahma", out.StudentName)
	assert.Zero(t, st.inserts)
	assert.Zero(t, st.updates)
}

func TestRecordScanRejectionIsIdempotent(t *testing.T) {
	st := newFakeStore()
	rec := NewRecorder(st)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		out := rec.RecordScan(ctx, testSchool, "1001", CheckOut, testSnapshot())
		assert.Equal(t, KindNotCheckedInYet, out.Kind)
	}
	assert.Zero(t, st.inserts)
	assert.Zero(t, st.updates)
}

func TestRecordScanDuplicateInsertRace(t *testing.T) {
	// Both stations observed NoRecord; the store's unique index rejects the
	// loser, which must come back as AlreadyCheckedIn with the winner's time.
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	st := newFakeStore()
	winnerAt := time.Date(2025, 3, 10, 6, 40, 0, 0, jakarta)
	st.records["w"] = &Record{
		ID: "w", SchoolID: "sch-1", NISN: "1001",
		Day:       time.Date(2025, 3, 10, 0, 0, 0, 0, jakarta),
		CheckInAt: winnerAt,
	}

	raced := &racingStore{fakeStore: st}
	out := NewRecorder(raced, WithClock(fixedClock(winnerAt.Add(time.Second)))).
		RecordScan(context.Background(), testSchool, "1001", CheckIn, testSnapshot())

	require.Equal(t, KindAlreadyCheckedIn, out.Kind)
	assert.Equal(t, winnerAt, out.CheckInAt)
}

// racingStore simulates the second station: the existence check still sees
// NoRecord, the insert hits the unique index.
type racingStore struct {
	*fakeStore
	finds int
}

func (r *racingStore) FindSince(ctx context.Context, schoolID, nisn string, since time.Time) (*Record, error) {
	r.finds++
	if r.finds == 1 {
		return nil, nil
	}
	return r.fakeStore.FindSince(ctx, schoolID, nisn, since)
}

func TestRecordScanPersistenceFailure(t *testing.T) {
	boom := errors.New("connection reset")
	ctx := context.Background()

	t.Run("read failure", func(t *testing.T) {
		st := newFakeStore()
		st.findErr = boom
		out := NewRecorder(st).RecordScan(ctx, testSchool, "1001", CheckIn, testSnapshot())
		require.Equal(t, KindPersistenceFailure, out.Kind)
		assert.ErrorIs(t, out.Err, boom)
		assert.Zero(t, st.inserts)
	})

	t.Run("insert failure", func(t *testing.T) {
		st := newFakeStore()
		st.insertErr = boom
		out := NewRecorder(st).RecordScan(ctx, testSchool, "1001", CheckIn, testSnapshot())
		require.Equal(t, KindPersistenceFailure, out.Kind)
		assert.ErrorIs(t, out.Err, boom)
	})

	t.Run("check-out failure", func(t *testing.T) {
		st := newFakeStore()
		now := time.Date(2025, 3, 10, 6, 45, 0, 0, time.UTC)
		_, err := st.Insert(ctx, Record{SchoolID: "sch-1", NISN: "1001", Day: now.Truncate(24 * time.Hour), CheckInAt: now})
		require.NoError(t, err)
		st.checkOutErr = boom
		out := NewRecorder(st, WithClock(fixedClock(now.Add(time.Hour)))).
			RecordScan(ctx, testSchool, "1001", CheckOut, testSnapshot())
		require.Equal(t, KindPersistenceFailure, out.Kind)
	})
}

func TestRecordScanDayBoundaryUsesSchoolZone(t *testing.T) {
	// 23:30 in Jakarta on March 10 is already March 11 in UTC+9. The day
	// must be computed in the school's zone, so a record from that morning
	// still blocks a second check-in.
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	st := newFakeStore()
	morning := time.Date(2025, 3, 10, 6, 45, 0, 0, jakarta)
	rec := NewRecorder(st, WithClock(fixedClock(morning)))
	ctx := context.Background()

	out := rec.RecordScan(ctx, testSchool, "1001", CheckIn, testSnapshot())
	require.Equal(t, KindCheckedIn, out.Kind)

	lateEvening := time.Date(2025, 3, 10, 23, 30, 0, 0, jakarta)
	rec = NewRecorder(st, WithClock(fixedClock(lateEvening)))
	out = rec.RecordScan(ctx, testSchool, "1001", CheckIn, testSnapshot())
	assert.Equal(t, KindAlreadyCheckedIn, out.Kind)

	// Next Jakarta morning is a fresh day.
	nextDay := time.Date(2025, 3, 11, 6, 45, 0, 0, jakarta)
	rec = NewRecorder(st, WithClock(fixedClock(nextDay)))
	out = rec.RecordScan(ctx, testSchool, "1001", CheckIn, testSnapshot())
	assert.Equal(t, KindCheckedIn, out.Kind)
}

func TestRecordScanInvalidDirection(t *testing.T) {
	st := newFakeStore()
	out := NewRecorder(st).RecordScan(context.Background(), testSchool, "1001", Direction("sideways"), testSnapshot())
	assert.Equal(t, KindUnknownStudent, out.Kind)
	assert.Zero(t, st.reads)
	assert.Zero(t, st.inserts)
}
