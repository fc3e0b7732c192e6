package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presensi/internal/attendance"
	"presensi/internal/logging"
	"presensi/internal/school"
	"presensi/internal/tally"
)

type fakeStatusSetter struct {
	statuses map[string]string
	err      error
}

func (f *fakeStatusSetter) SetStatus(_ context.Context, id, status string) error {
	if f.err != nil {
		return f.err
	}
	if f.statuses == nil {
		f.statuses = map[string]string{}
	}
	f.statuses[id] = status
	return nil
}

type fakeSchools struct {
	school school.School
	err    error
}

func (f *fakeSchools) Get(context.Context, string) (school.School, error) {
	return f.school, f.err
}

type bump struct {
	schoolID, day, field string
}

type fakeTallies struct {
	bumps []bump
}

func (f *fakeTallies) Bump(_ context.Context, schoolID, day, field string) error {
	f.bumps = append(f.bumps, bump{schoolID, day, field})
	return nil
}

func jakartaSchool() school.School {
	return school.School{
		ID:            "sch-1",
		Name:          "SMA 3",
		Timezone:      "Asia/Jakarta",
		EntryDeadline: "07:15",
	}
}

func testLabeler(records statusSetter, schools schoolGetter, tallies tallyBumper) *Labeler {
	return NewLabeler(records, schools, tallies, "UTC", logging.New("error", "test"))
}

func TestHandleScanLabelsOnTimeCheckInPresent(t *testing.T) {
	records := &fakeStatusSetter{}
	tallies := &fakeTallies{}
	l := testLabeler(records, &fakeSchools{school: jakartaSchool()}, tallies)

	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	at := time.Date(2026, 3, 9, 6, 58, 0, 0, jakarta)

	err = l.HandleScan(context.Background(), attendance.ScanMessage{
		RecordID: "rec-1", SchoolID: "sch-1", NISN: "1001",
		Direction: attendance.CheckIn, At: at,
	})
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusPresent, records.statuses["rec-1"])
	require.Len(t, tallies.bumps, 1)
	assert.Equal(t, bump{"sch-1", "2026-03-09", tally.FieldPresent}, tallies.bumps[0])
}

func TestHandleScanLabelsCheckInPastDeadlineLate(t *testing.T) {
	records := &fakeStatusSetter{}
	tallies := &fakeTallies{}
	l := testLabeler(records, &fakeSchools{school: jakartaSchool()}, tallies)

	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	at := time.Date(2026, 3, 9, 7, 16, 0, 0, jakarta)

	err = l.HandleScan(context.Background(), attendance.ScanMessage{
		RecordID: "rec-2", SchoolID: "sch-1", NISN: "1001",
		Direction: attendance.CheckIn, At: at,
	})
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusLate, records.statuses["rec-2"])
	require.Len(t, tallies.bumps, 1)
	assert.Equal(t, tally.FieldLate, tallies.bumps[0].field)
}

func TestHandleScanCheckOutBumpsTallyOnly(t *testing.T) {
	records := &fakeStatusSetter{}
	tallies := &fakeTallies{}
	l := testLabeler(records, &fakeSchools{school: jakartaSchool()}, tallies)

	at := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC) // 14:00 in Jakarta

	err := l.HandleScan(context.Background(), attendance.ScanMessage{
		RecordID: "rec-3", SchoolID: "sch-1", NISN: "1001",
		Direction: attendance.CheckOut, At: at,
	})
	require.NoError(t, err)

	assert.Empty(t, records.statuses, "check-outs keep the check-in label")
	require.Len(t, tallies.bumps, 1)
	assert.Equal(t, bump{"sch-1", "2026-03-09", tally.FieldCheckedOut}, tallies.bumps[0])
}

// The tally day key follows the school's zone. 17:30 UTC is already the next
// calendar day in Jakarta.
func TestHandleScanDayKeyUsesSchoolZone(t *testing.T) {
	tallies := &fakeTallies{}
	l := testLabeler(&fakeStatusSetter{}, &fakeSchools{school: jakartaSchool()}, tallies)

	at := time.Date(2026, 3, 9, 17, 30, 0, 0, time.UTC)

	err := l.HandleScan(context.Background(), attendance.ScanMessage{
		RecordID: "rec-4", SchoolID: "sch-1", NISN: "1001",
		Direction: attendance.CheckOut, At: at,
	})
	require.NoError(t, err)

	require.Len(t, tallies.bumps, 1)
	assert.Equal(t, "2026-03-10", tallies.bumps[0].day)
}

func TestHandleScanErrors(t *testing.T) {
	t.Run("school lookup", func(t *testing.T) {
		l := testLabeler(&fakeStatusSetter{}, &fakeSchools{err: errors.New("gone")}, &fakeTallies{})
		err := l.HandleScan(context.Background(), attendance.ScanMessage{
			RecordID: "rec-5", SchoolID: "sch-1", Direction: attendance.CheckIn, At: time.Now(),
		})
		assert.Error(t, err)
	})

	t.Run("status write", func(t *testing.T) {
		tallies := &fakeTallies{}
		l := testLabeler(&fakeStatusSetter{err: errors.New("db down")}, &fakeSchools{school: jakartaSchool()}, tallies)
		err := l.HandleScan(context.Background(), attendance.ScanMessage{
			RecordID: "rec-6", SchoolID: "sch-1", Direction: attendance.CheckIn, At: time.Now(),
		})
		assert.Error(t, err)
		assert.Empty(t, tallies.bumps, "no tally bump when the label did not stick")
	})
}
