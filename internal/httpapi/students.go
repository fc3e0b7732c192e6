package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"presensi/internal/auth"
	"presensi/internal/badge"
	"presensi/internal/roster"
)

// tenantScope pulls the caller's school and, for homeroom users, the class
// their session is pinned to. Homeroom users only ever see their own class.
func tenantScope(c *gin.Context) (schoolID, classFilter string, ok bool) {
	claims, found := auth.FromContext(c)
	if !found || claims.SchoolID == "" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "session has no school"})
		return "", "", false
	}
	if claims.Role == auth.RoleHomeroom {
		return claims.SchoolID, claims.ClassLabel, true
	}
	return claims.SchoolID, "", true
}

func (s *Server) createStudent(c *gin.Context) {
	schoolID, classFilter, ok := tenantScope(c)
	if !ok {
		return
	}
	var req struct {
		NISN          string `json:"nisn" binding:"required"`
		Name          string `json:"name" binding:"required"`
		ClassLabel    string `json:"class_label"`
		GuardianPhone string `json:"guardian_phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if classFilter != "" {
		req.ClassLabel = classFilter
	}

	created, err := s.students.Create(c.Request.Context(), roster.Student{
		SchoolID:      schoolID,
		NISN:          req.NISN,
		Name:          req.Name,
		ClassLabel:    req.ClassLabel,
		GuardianPhone: req.GuardianPhone,
	})
	if err != nil {
		if errors.Is(err, roster.ErrDuplicateNISN) {
			c.JSON(http.StatusConflict, gin.H{"error": "nisn already registered"})
			return
		}
		s.log.WithError(err).Error("create student failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create student failed"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) listStudents(c *gin.Context) {
	schoolID, classFilter, ok := tenantScope(c)
	if !ok {
		return
	}
	if classFilter == "" {
		classFilter = c.Query("class")
	}
	students, err := s.students.List(c.Request.Context(), schoolID, classFilter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

func (s *Server) updateStudent(c *gin.Context) {
	schoolID, classFilter, ok := tenantScope(c)
	if !ok {
		return
	}
	var req struct {
		Name          string `json:"name" binding:"required"`
		ClassLabel    string `json:"class_label"`
		GuardianPhone string `json:"guardian_phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if classFilter != "" {
		req.ClassLabel = classFilter
	}

	err := s.students.Update(c.Request.Context(), schoolID, c.Param("nisn"), req.Name, req.ClassLabel, req.GuardianPhone)
	if err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteStudent(c *gin.Context) {
	schoolID, _, ok := tenantScope(c)
	if !ok {
		return
	}
	err := s.students.Delete(c.Request.Context(), schoolID, c.Param("nisn"))
	if err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) studentBadge(c *gin.Context) {
	schoolID, _, ok := tenantScope(c)
	if !ok {
		return
	}
	nisn := c.Param("nisn")
	if _, err := s.students.Get(c.Request.Context(), schoolID, nisn); err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	size, _ := strconv.Atoi(c.Query("size"))
	png, err := badge.PNG(nisn, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "badge render failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
