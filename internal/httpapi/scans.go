package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"presensi/internal/attendance"
	"presensi/internal/live"
	"presensi/internal/metrics"
	"presensi/internal/queue"
	"presensi/internal/school"
)

// recordScan is the scan station endpoint. The cooldown absorbs the same
// badge held in frame; the recorder enforces the per-day invariant.
func (s *Server) recordScan(c *gin.Context) {
	schoolID, classFilter, ok := tenantScope(c)
	if !ok {
		return
	}
	var req struct {
		NISN      string               `json:"nisn" binding:"required"`
		Direction attendance.Direction `json:"direction" binding:"required,oneof=in out"`
		DeviceID  string               `json:"device_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if !s.cooldown.Allow(ctx, schoolID, req.DeviceID, req.NISN) {
		metrics.CooldownHits.Inc()
		c.JSON(http.StatusTooEarly, gin.H{"status": "cooldown"})
		return
	}

	sch, err := s.schools.Get(ctx, schoolID)
	if err != nil {
		if errors.Is(err, school.ErrNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "school no longer exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	snap, err := s.students.Snapshot(ctx, schoolID, classFilter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "roster load failed"})
		return
	}

	out := s.recorder.RecordScan(ctx, sch, req.NISN, req.Direction, snap)
	metrics.ScanOutcomes.WithLabelValues(string(req.Direction), string(out.Kind)).Inc()

	if out.Kind.Accepted() {
		s.publishScan(c, out, sch.ID, req.NISN, req.Direction)
		s.hub.Broadcast(sch.ID, live.Event{Event: "scan", Data: out})
	}

	c.JSON(statusFor(out.Kind), out)
}

func (s *Server) publishScan(c *gin.Context, out attendance.Outcome, schoolID, nisn string, dir attendance.Direction) {
	at := out.CheckInAt
	if dir == attendance.CheckOut {
		at = out.CheckOutAt
	}
	body, err := json.Marshal(attendance.ScanMessage{
		RecordID:  out.RecordID,
		SchoolID:  schoolID,
		NISN:      nisn,
		Direction: dir,
		At:        at,
	})
	if err != nil {
		return
	}
	if err := s.queue.Publish(c.Request.Context(), queue.Message{Type: "scan", Body: body}); err != nil {
		s.log.WithError(err).Warn("queue publish failed")
	}
}

func statusFor(kind attendance.Kind) int {
	switch kind {
	case attendance.KindCheckedIn, attendance.KindCheckedOut:
		return http.StatusAccepted
	case attendance.KindUnknownStudent:
		return http.StatusNotFound
	case attendance.KindPersistenceFailure:
		return http.StatusBadGateway
	default:
		// Invariant-guard rejections.
		return http.StatusConflict
	}
}
