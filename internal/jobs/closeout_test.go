package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presensi/internal/logging"
	"presensi/internal/school"
)

type fakeSchoolList struct {
	schools []school.School
	err     error
}

func (f *fakeSchoolList) List(context.Context) ([]school.School, error) {
	return f.schools, f.err
}

type closeCall struct {
	schoolID string
	before   time.Time
}

type fakeCloser struct {
	calls []closeCall
	errFor string
}

func (f *fakeCloser) CloseOutBefore(_ context.Context, schoolID string, before time.Time) (int64, error) {
	f.calls = append(f.calls, closeCall{schoolID, before})
	if schoolID == f.errFor {
		return 0, errors.New("deadlock")
	}
	return 1, nil
}

// Each school's cutoff is its own local midnight: at 2026-03-09 18:30 UTC it
// is already the 10th in Jakarta, so the Jakarta school closes through the
// 9th while the UTC school only closes through the 8th.
func TestCloseEndedDaysCutoffPerSchoolZone(t *testing.T) {
	schools := &fakeSchoolList{schools: []school.School{
		{ID: "sch-jkt", Timezone: "Asia/Jakarta"},
		{ID: "sch-utc", Timezone: "UTC"},
	}}
	closer := &fakeCloser{}
	now := time.Date(2026, 3, 9, 18, 30, 0, 0, time.UTC)

	CloseEndedDays(context.Background(), schools, closer, now, "UTC", logging.New("error", "test"))

	require.Len(t, closer.calls, 2)

	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	assert.Equal(t, "sch-jkt", closer.calls[0].schoolID)
	assert.True(t, closer.calls[0].before.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, jakarta)))
	assert.Equal(t, "sch-utc", closer.calls[1].schoolID)
	assert.True(t, closer.calls[1].before.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)))
}

func TestCloseEndedDaysUnknownZoneFallsBack(t *testing.T) {
	schools := &fakeSchoolList{schools: []school.School{{ID: "sch-1", Timezone: "Mars/Olympus"}}}
	closer := &fakeCloser{}
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	CloseEndedDays(context.Background(), schools, closer, now, "UTC", logging.New("error", "test"))

	require.Len(t, closer.calls, 1)
	assert.True(t, closer.calls[0].before.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)))
}

func TestCloseEndedDaysContinuesPastFailingSchool(t *testing.T) {
	schools := &fakeSchoolList{schools: []school.School{
		{ID: "sch-bad", Timezone: "UTC"},
		{ID: "sch-ok", Timezone: "UTC"},
	}}
	closer := &fakeCloser{errFor: "sch-bad"}

	CloseEndedDays(context.Background(), schools, closer, time.Now(), "UTC", logging.New("error", "test"))

	require.Len(t, closer.calls, 2)
	assert.Equal(t, "sch-ok", closer.calls[1].schoolID)
}
