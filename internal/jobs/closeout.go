// Package jobs holds the queue consumer and the scheduled maintenance work.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"presensi/internal/metrics"
	"presensi/internal/school"
)

type schoolLister interface {
	List(ctx context.Context) ([]school.School, error)
}

type openDayCloser interface {
	CloseOutBefore(ctx context.Context, schoolID string, before time.Time) (int64, error)
}

// ScheduleCloseOut registers the sweep that labels records from ended days
// still missing a check-out as no_checkout. It runs hourly by default and
// walks schools one by one, so each tenant's day closes at its own midnight
// rather than the worker's.
func ScheduleCloseOut(c *cron.Cron, spec string, schools schoolLister, records openDayCloser, fallbackTZ string, log *logrus.Logger) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		CloseEndedDays(ctx, schools, records, time.Now(), fallbackTZ, log)
	})
	return err
}

// CloseEndedDays runs one sweep at the given instant. A school whose local
// day has not ended keeps its open records untouched; the sweep is idempotent
// across repeat runs.
func CloseEndedDays(ctx context.Context, schools schoolLister, records openDayCloser, now time.Time, fallbackTZ string, log *logrus.Logger) {
	list, err := schools.List(ctx)
	if err != nil {
		log.WithError(err).Error("close-out school listing failed")
		return
	}

	for _, sch := range list {
		local := now.In(sch.Location(fallbackTZ))
		cutoff := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())

		n, err := records.CloseOutBefore(ctx, sch.ID, cutoff)
		if err != nil {
			log.WithError(err).WithField("school", sch.ID).Error("close-out failed")
			continue
		}
		if n > 0 {
			metrics.CloseOutRecords.Add(float64(n))
			log.WithFields(logrus.Fields{
				"school":  sch.ID,
				"before":  cutoff.Format("2006-01-02"),
				"records": n,
			}).Info("close-out done")
		}
	}
}
