package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"presensi/internal/attendance"
)

func (s *Server) listToday(c *gin.Context) {
	schoolID, _, ok := tenantScope(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	sch, err := s.schools.Get(ctx, schoolID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().In(sch.Location(s.cfg.DefaultTimezone))
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	records, err := s.attendance.ListSince(ctx, schoolID, midnight, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The check-out view is the same day's rows that already have one.
	if c.Query("direction") == string(attendance.CheckOut) {
		filtered := records[:0]
		for _, rec := range records {
			if rec.CheckOutAt != nil {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (s *Server) listRange(c *gin.Context) {
	schoolID, _, ok := tenantScope(c)
	if !ok {
		return
	}
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return
	}

	records, err := s.attendance.ListRange(c.Request.Context(), schoolID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (s *Server) daySummary(c *gin.Context) {
	schoolID, _, ok := tenantScope(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	day := c.Query("day")
	if day == "" {
		sch, err := s.schools.Get(ctx, schoolID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		day = time.Now().In(sch.Location(s.cfg.DefaultTimezone)).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", day); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
		return
	}

	counts, err := s.tallies.Day(ctx, schoolID, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "counts": counts})
}
