package school

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocation(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	s := School{Timezone: "Asia/Jakarta"}
	assert.Equal(t, jakarta, s.Location(""))

	// Unset school zone falls back to the configured default.
	s = School{}
	assert.Equal(t, jakarta, s.Location("Asia/Jakarta"))

	// Garbage everywhere falls back to server local.
	s = School{Timezone: "Mars/Olympus"}
	assert.Equal(t, time.Local, s.Location("Pluto/Underworld"))
}

func TestDeadlineOn(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	s := School{Timezone: "Asia/Jakarta", EntryDeadline: "07:15"}
	at := time.Date(2025, 3, 10, 6, 50, 0, 0, jakarta)

	deadline := s.DeadlineOn(at, "")
	assert.Equal(t, time.Date(2025, 3, 10, 7, 15, 0, 0, jakarta), deadline)
	assert.True(t, at.Before(deadline))

	late := time.Date(2025, 3, 10, 7, 30, 0, 0, jakarta)
	assert.True(t, late.After(s.DeadlineOn(late, "")))

	// Malformed deadline uses the default.
	s.EntryDeadline = "breakfast"
	deadline = s.DeadlineOn(at, "")
	assert.Equal(t, 7, deadline.Hour())
	assert.Equal(t, 15, deadline.Minute())
}
