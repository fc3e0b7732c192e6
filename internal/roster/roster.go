// Package roster manages the students of a school and builds the read-only
// snapshots the scan path validates against.
package roster

import "time"

// Student belongs to exactly one school. The NISN (national student number)
// is the QR payload printed on the student's badge and is unique per school.
type Student struct {
	ID            string    `json:"id"`
	SchoolID      string    `json:"school_id"`
	NISN          string    `json:"nisn"`
	Name          string    `json:"name"`
	ClassLabel    string    `json:"class_label"`
	GuardianPhone string    `json:"guardian_phone"`
	CreatedAt     time.Time `json:"created_at"`
}

// Snapshot is an immutable NISN-keyed view of a roster, loaded once per scan
// so the recorder stays a pure function of its inputs.
type Snapshot struct {
	byNISN map[string]Student
}

// NewSnapshot indexes students by NISN.
func NewSnapshot(students []Student) *Snapshot {
	m := make(map[string]Student, len(students))
	for _, s := range students {
		m[s.NISN] = s
	}
	return &Snapshot{byNISN: m}
}

// Lookup returns the student with the given NISN, if present.
func (s *Snapshot) Lookup(nisn string) (Student, bool) {
	st, ok := s.byNISN[nisn]
	return st, ok
}

// Len returns the roster size.
func (s *Snapshot) Len() int {
	return len(s.byNISN)
}
