package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"presensi/internal/auth"
	"presensi/internal/identity"
)

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrBadCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		s.log.WithError(err).Error("login lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	schoolID, classLabel := "", ""
	if user.SchoolID != nil {
		schoolID = *user.SchoolID
	}
	if user.ClassLabel != nil {
		classLabel = *user.ClassLabel
	}

	token, exp, err := auth.Issue(user.ID, user.Role, schoolID, classLabel, s.cfg.JWTIssuer, s.cfg.JWTSigningKey, s.cfg.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"expires_at":   exp.Unix(),
		"role":         user.Role,
		"school_id":    schoolID,
		"class_label":  classLabel,
	})
}

// changePassword lets a signed-in user rotate their own password after
// re-proving the current one.
func (s *Server) changePassword(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.users.GetByID(c.Request.Context(), claims.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		c.JSON(http.StatusForbidden, gin.H{"error": "current password is wrong"})
		return
	}
	if err := s.users.UpdatePassword(c.Request.Context(), user.ID, req.NewPassword); err != nil {
		s.log.WithError(err).Error("password update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password update failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) createUser(c *gin.Context) {
	var req struct {
		Email      string  `json:"email" binding:"required,email"`
		Password   string  `json:"password" binding:"required,min=8"`
		Role       string  `json:"role" binding:"required,oneof=admin operator homeroom"`
		SchoolID   *string `json:"school_id"`
		ClassLabel *string `json:"class_label"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role != auth.RoleAdmin && (req.SchoolID == nil || *req.SchoolID == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "school_id required for school roles"})
		return
	}
	if req.Role == auth.RoleHomeroom && (req.ClassLabel == nil || *req.ClassLabel == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "class_label required for homeroom"})
		return
	}

	user, err := s.users.Create(c.Request.Context(), req.Email, req.Password, req.Role, req.SchoolID, req.ClassLabel)
	if err != nil {
		s.log.WithError(err).Error("create user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
