package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"presensi/internal/auth"
)

func (s *Server) liveFeed(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token missing"})
		return
	}
	claims, err := auth.Parse(token, s.cfg.JWTSigningKey, s.cfg.JWTIssuer)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if claims.SchoolID == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "session has no school"})
		return
	}

	s.hub.Serve(c.Writer, c.Request, claims.SchoolID)
}
