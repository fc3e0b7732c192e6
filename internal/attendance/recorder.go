package attendance

import (
	"context"
	"errors"
	"time"

	"presensi/internal/roster"
	"presensi/internal/school"
)

// ErrDuplicateDay is returned by Store.Insert when a record for the same
// (school, nisn, day) already exists. The store's unique index raises it
// even when two stations race past the existence check.
var ErrDuplicateDay = errors.New("attendance record already exists for this day")

// Store is the persistence the recorder needs: one range read, one insert,
// one update-by-id.
type Store interface {
	// FindSince returns the record for (school, nisn) whose check-in is at
	// or after since, or nil when there is none.
	FindSince(ctx context.Context, schoolID, nisn string, since time.Time) (*Record, error)
	// Insert writes a new record. Returns ErrDuplicateDay when the day's
	// record already exists.
	Insert(ctx context.Context, rec Record) (Record, error)
	// SetCheckOut sets the check-out timestamp on an existing record.
	SetCheckOut(ctx context.Context, id string, at time.Time) error
}

// Recorder decides whether a single scan is accepted and persists the event.
// It is a pure function of its inputs plus the store: the roster snapshot is
// passed per call, never cached here.
type Recorder struct {
	store      Store
	now        func() time.Time
	fallbackTZ string
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithFallbackTimezone sets the zone used when a school has none configured.
func WithFallbackTimezone(name string) Option {
	return func(r *Recorder) { r.fallbackTZ = name }
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{store: store, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RecordScan admits or rejects one scan. Exactly one insert or one update
// happens on an accepted outcome; rejections perform zero writes.
//
// A direction outside in/out is treated like an unintelligible badge and
// rejected as KindUnknownStudent, without touching the store. The HTTP layer
// validates direction before calling, so only a broken caller reaches this.
func (r *Recorder) RecordScan(ctx context.Context, sch school.School, nisn string, dir Direction, snap *roster.Snapshot) Outcome {
	if !dir.Valid() {
		return Outcome{Kind: KindUnknownStudent}
	}
	student, ok := snap.Lookup(nisn)
	if !ok {
		return Outcome{Kind: KindUnknownStudent}
	}

	// "Today" in the school's zone, so stations near midnight agree on the day.
	now := r.now().In(sch.Location(r.fallbackTZ))
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	existing, err := r.store.FindSince(ctx, sch.ID, nisn, midnight)
	if err != nil {
		return Outcome{Kind: KindPersistenceFailure, StudentName: student.Name, Err: err}
	}

	if dir == CheckIn {
		return r.checkIn(ctx, sch.ID, student, existing, now, midnight)
	}
	return r.checkOut(ctx, student, existing, now)
}

func (r *Recorder) checkIn(ctx context.Context, schoolID string, student roster.Student, existing *Record, now, midnight time.Time) Outcome {
	if existing != nil {
		return Outcome{
			Kind:        KindAlreadyCheckedIn,
			StudentName: student.Name,
			ClassLabel:  student.ClassLabel,
			CheckInAt:   existing.CheckInAt,
		}
	}

	rec, err := r.store.Insert(ctx, Record{
		SchoolID:  schoolID,
		NISN:      student.NISN,
		Day:       midnight,
		CheckInAt: now,
	})
	if errors.Is(err, ErrDuplicateDay) {
		// Another station won the race. Re-read for the feedback timestamp.
		out := Outcome{Kind: KindAlreadyCheckedIn, StudentName: student.Name, ClassLabel: student.ClassLabel}
		if winner, rerr := r.store.FindSince(ctx, schoolID, student.NISN, midnight); rerr == nil && winner != nil {
			out.CheckInAt = winner.CheckInAt
		}
		return out
	}
	if err != nil {
		return Outcome{Kind: KindPersistenceFailure, StudentName: student.Name, Err: err}
	}

	return Outcome{
		Kind:        KindCheckedIn,
		StudentName: student.Name,
		ClassLabel:  student.ClassLabel,
		RecordID:    rec.ID,
		CheckInAt:   rec.CheckInAt,
	}
}

func (r *Recorder) checkOut(ctx context.Context, student roster.Student, existing *Record, now time.Time) Outcome {
	if existing == nil {
		return Outcome{Kind: KindNotCheckedInYet, StudentName: student.Name, ClassLabel: student.ClassLabel}
	}
	if existing.CheckOutAt != nil {
		return Outcome{
			Kind:        KindAlreadyCheckedOut,
			StudentName: student.Name,
			ClassLabel:  student.ClassLabel,
			CheckOutAt:  *existing.CheckOutAt,
		}
	}

	if err := r.store.SetCheckOut(ctx, existing.ID, now); err != nil {
		return Outcome{Kind: KindPersistenceFailure, StudentName: student.Name, Err: err}
	}

	return Outcome{
		Kind:        KindCheckedOut,
		StudentName: student.Name,
		ClassLabel:  student.ClassLabel,
		RecordID:    existing.ID,
		CheckInAt:   existing.CheckInAt,
		CheckOutAt:  now,
	}
}
