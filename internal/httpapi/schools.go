package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"presensi/internal/school"
)

func (s *Server) createSchool(c *gin.Context) {
	var req struct {
		Name          string `json:"name" binding:"required"`
		Timezone      string `json:"timezone"`
		EntryDeadline string `json:"entry_deadline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown timezone"})
			return
		}
	}
	if req.EntryDeadline != "" {
		if _, err := time.Parse("15:04", req.EntryDeadline); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "entry_deadline must be HH:MM"})
			return
		}
	}

	created, err := s.schools.Create(c.Request.Context(), school.School{
		Name:          req.Name,
		Timezone:      req.Timezone,
		EntryDeadline: req.EntryDeadline,
	})
	if err != nil {
		s.log.WithError(err).Error("create school failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create school failed"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) listSchools(c *gin.Context) {
	schools, err := s.schools.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"schools": schools})
}

func (s *Server) deleteSchool(c *gin.Context) {
	err := s.schools.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, school.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "school not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
