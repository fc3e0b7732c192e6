package school

import "time"

// School is a tenant. Rosters, attendance and discipline notes are all
// partitioned by school id.
type School struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Timezone      string    `json:"timezone"`
	EntryDeadline string    `json:"entry_deadline"`
	CreatedAt     time.Time `json:"created_at"`
}

// DeadlineOn returns the entry deadline on the calendar day of at, in the
// school's zone. Check-ins after this instant are labeled late. A malformed
// deadline falls back to 07:15.
func (s School) DeadlineOn(at time.Time, fallbackTZ string) time.Time {
	loc := s.Location(fallbackTZ)
	local := at.In(loc)
	hm, err := time.Parse("15:04", s.EntryDeadline)
	if err != nil {
		hm, _ = time.Parse("15:04", "07:15")
	}
	return time.Date(local.Year(), local.Month(), local.Day(), hm.Hour(), hm.Minute(), 0, 0, loc)
}

// Location resolves the school's IANA timezone. Scans near midnight land on
// the calendar day of the school, not of the scanning device. Falls back to
// the provided default, then to server local time.
func (s School) Location(fallback string) *time.Location {
	for _, name := range []string{s.Timezone, fallback} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.Local
}
