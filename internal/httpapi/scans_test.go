package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presensi/internal/attendance"
	"presensi/internal/auth"
	"presensi/internal/logging"
)

func TestStatusFor(t *testing.T) {
	cases := map[attendance.Kind]int{
		attendance.KindCheckedIn:          http.StatusAccepted,
		attendance.KindCheckedOut:         http.StatusAccepted,
		attendance.KindUnknownStudent:     http.StatusNotFound,
		attendance.KindAlreadyCheckedIn:   http.StatusConflict,
		attendance.KindNotCheckedInYet:    http.StatusConflict,
		attendance.KindAlreadyCheckedOut:  http.StatusConflict,
		attendance.KindPersistenceFailure: http.StatusBadGateway,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusFor(kind), "kind %s", kind)
	}
}

type denyGate struct {
	calls int
}

func (g *denyGate) Allow(context.Context, string, string, string) bool {
	g.calls++
	return false
}

func scanContext(t *testing.T, w *httptest.ResponseRecorder, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/scans", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(auth.ContextKey, auth.Claims{Subject: "u-1", Role: auth.RoleOperator, SchoolID: "sch-1"})
	return c
}

// A scan inside the cooldown window is answered at the gate; the recorder
// and the repositories are nil here, so reaching them would panic the test.
func TestRecordScanInsideCooldownWindow(t *testing.T) {
	gate := &denyGate{}
	s := &Server{log: logging.New("error", "test"), cooldown: gate}

	w := httptest.NewRecorder()
	c := scanContext(t, w, `{"nisn":"1001","direction":"in","device_id":"gate-1"}`)
	s.recordScan(c)

	require.Equal(t, http.StatusTooEarly, w.Code)
	assert.Contains(t, w.Body.String(), `"cooldown"`)
	assert.Equal(t, 1, gate.calls)
}

// Malformed payloads are rejected before the gate is even consulted.
func TestRecordScanBadDirectionNeverReachesGate(t *testing.T) {
	gate := &denyGate{}
	s := &Server{log: logging.New("error", "test"), cooldown: gate}

	w := httptest.NewRecorder()
	c := scanContext(t, w, `{"nisn":"1001","direction":"sideways","device_id":"gate-1"}`)
	s.recordScan(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, gate.calls)
}
