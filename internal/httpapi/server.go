// Package httpapi wires the gin routes over the domain packages.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"presensi/internal/attendance"
	"presensi/internal/auth"
	"presensi/internal/config"
	"presensi/internal/discipline"
	"presensi/internal/httpmiddleware"
	"presensi/internal/identity"
	"presensi/internal/live"
	"presensi/internal/queue"
	"presensi/internal/roster"
	"presensi/internal/scan"
	"presensi/internal/school"
	"presensi/internal/store"
	"presensi/internal/tally"
)

// ScanGate is the debounce consulted before a scan reaches the recorder.
type ScanGate interface {
	Allow(ctx context.Context, schoolID, deviceID, nisn string) bool
}

var _ ScanGate = (*scan.Cooldown)(nil)

// Server bundles the handler dependencies.
type Server struct {
	cfg         config.App
	log         *logrus.Logger
	db          *store.DB
	redis       *store.Redis
	schools     *school.Repository
	users       *identity.Repository
	students    *roster.Repository
	attendance  *attendance.Repository
	recorder    *attendance.Recorder
	disciplines *discipline.Repository
	cooldown    ScanGate
	tallies     *tally.Tally
	queue       queue.Queue
	hub         *live.Hub
}

// New creates a server over the given infrastructure.
func New(cfg config.App, log *logrus.Logger, db *store.DB, rds *store.Redis, q queue.Queue) *Server {
	attRepo := attendance.NewRepository(db.Client)
	return &Server{
		cfg:         cfg,
		log:         log,
		db:          db,
		redis:       rds,
		schools:     school.NewRepository(db.Client),
		users:       identity.NewRepository(db.Client),
		students:    roster.NewRepository(db.Client),
		attendance:  attRepo,
		recorder:    attendance.NewRecorder(attRepo, attendance.WithFallbackTimezone(cfg.DefaultTimezone)),
		disciplines: discipline.NewRepository(db.Client),
		cooldown:    scan.NewCooldown(rds.Client, cfg.ScanCooldown),
		tallies:     tally.New(rds.Client),
		queue:       q,
		hub:         live.NewHub(log),
	}
}

// Router builds the gin engine with middleware and all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(s.cfg.RateLimitPerMin, s.cfg.RateLimitPerMin).Gin())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", s.health)
	r.POST("/v1/auth/login", s.login)

	authed := r.Group("/v1", auth.Bearer(s.cfg.JWTSigningKey, s.cfg.JWTIssuer))
	authed.POST("/auth/password", s.changePassword)

	admin := authed.Group("", auth.Require(auth.RoleAdmin))
	admin.POST("/schools", s.createSchool)
	admin.GET("/schools", s.listSchools)
	admin.DELETE("/schools/:id", s.deleteSchool)
	admin.POST("/users", s.createUser)
	admin.GET("/users", s.listUsers)

	staff := authed.Group("", auth.Require(auth.RoleOperator, auth.RoleHomeroom))
	staff.POST("/students", s.createStudent)
	staff.GET("/students", s.listStudents)
	staff.PUT("/students/:nisn", s.updateStudent)
	staff.DELETE("/students/:nisn", s.deleteStudent)
	staff.GET("/students/:nisn/badge.png", s.studentBadge)
	staff.POST("/scans", s.recordScan)
	staff.GET("/attendance/today", s.listToday)
	staff.GET("/attendance", s.listRange)
	staff.GET("/attendance/summary", s.daySummary)
	staff.POST("/discipline", s.createNote)
	staff.GET("/discipline", s.listNotes)

	// Browsers cannot set headers on websocket dials; the token rides the
	// query string instead.
	r.GET("/v1/live", s.liveFeed)

	return r
}

func (s *Server) health(c *gin.Context) {
	redisHealthy := s.redis.Healthy(c.Request.Context())
	dbHealthy := s.db != nil && s.db.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
}

// CORS middleware for browser requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
