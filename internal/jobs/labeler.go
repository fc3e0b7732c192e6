package jobs

import (
	"context"

	"github.com/sirupsen/logrus"

	"presensi/internal/attendance"
	"presensi/internal/school"
	"presensi/internal/tally"
)

type statusSetter interface {
	SetStatus(ctx context.Context, id, status string) error
}

type schoolGetter interface {
	Get(ctx context.Context, id string) (school.School, error)
}

type tallyBumper interface {
	Bump(ctx context.Context, schoolID, day, field string) error
}

// Labeler consumes accepted scans off the queue: check-ins get labeled
// present or late against the school's entry deadline, and the day's tally
// hash is bumped either way.
type Labeler struct {
	records    statusSetter
	schools    schoolGetter
	tallies    tallyBumper
	fallbackTZ string
	log        *logrus.Logger
}

// NewLabeler creates a labeler. fallbackTZ applies when a school carries no
// timezone of its own.
func NewLabeler(records statusSetter, schools schoolGetter, tallies tallyBumper, fallbackTZ string, log *logrus.Logger) *Labeler {
	return &Labeler{records: records, schools: schools, tallies: tallies, fallbackTZ: fallbackTZ, log: log}
}

// HandleScan processes one accepted scan. The day key for the tally is the
// scan's calendar day in the school's zone, matching what the recorder used.
func (l *Labeler) HandleScan(ctx context.Context, scan attendance.ScanMessage) error {
	sch, err := l.schools.Get(ctx, scan.SchoolID)
	if err != nil {
		return err
	}
	day := scan.At.In(sch.Location(l.fallbackTZ)).Format("2006-01-02")

	if scan.Direction == attendance.CheckOut {
		return l.tallies.Bump(ctx, scan.SchoolID, day, tally.FieldCheckedOut)
	}

	status := attendance.StatusPresent
	field := tally.FieldPresent
	if scan.At.After(sch.DeadlineOn(scan.At, l.fallbackTZ)) {
		status = attendance.StatusLate
		field = tally.FieldLate
	}

	if err := l.records.SetStatus(ctx, scan.RecordID, status); err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{"record": scan.RecordID, "status": status}).Debug("check-in labeled")
	return l.tallies.Bump(ctx, scan.SchoolID, day, field)
}
