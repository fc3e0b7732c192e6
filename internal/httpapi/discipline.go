package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"presensi/internal/discipline"
	"presensi/internal/roster"
)

func (s *Server) createNote(c *gin.Context) {
	schoolID, _, ok := tenantScope(c)
	if !ok {
		return
	}
	var req struct {
		NISN        string `json:"nisn" binding:"required"`
		Severity    string `json:"severity" binding:"required,oneof=ringan sedang berat"`
		Description string `json:"description" binding:"required"`
		Points      int    `json:"points"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Notes only attach to enrolled students.
	if _, err := s.students.Get(c.Request.Context(), schoolID, req.NISN); err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	note, err := s.disciplines.Create(c.Request.Context(), discipline.Note{
		SchoolID:    schoolID,
		NISN:        req.NISN,
		Severity:    req.Severity,
		Description: req.Description,
		Points:      req.Points,
	})
	if err != nil {
		s.log.WithError(err).Error("create discipline note failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create note failed"})
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (s *Server) listNotes(c *gin.Context) {
	schoolID, _, ok := tenantScope(c)
	if !ok {
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	notes, err := s.disciplines.List(c.Request.Context(), schoolID, c.Query("nisn"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}
