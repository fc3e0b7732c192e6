// Package attendance implements the scan admission rule: per school, per
// student, per calendar day there is at most one record, its check-out is
// set at most once, and only after its check-in.
package attendance

import (
	"encoding/json"
	"time"
)

// Direction of a scan event.
type Direction string

const (
	CheckIn  Direction = "in"
	CheckOut Direction = "out"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == CheckIn || d == CheckOut
}

// Status labels attached to records after the fact. The scan path never
// writes these; the worker and the nightly close-out do.
const (
	StatusPresent    = "present"
	StatusLate       = "late"
	StatusNoCheckout = "no_checkout"
)

// Record is one student's attendance row for one day.
type Record struct {
	ID         string     `json:"id"`
	SchoolID   string     `json:"school_id"`
	NISN       string     `json:"nisn"`
	Day        time.Time  `json:"day"`
	CheckInAt  time.Time  `json:"check_in_at"`
	CheckOutAt *time.Time `json:"check_out_at,omitempty"`
	Status     *string    `json:"status,omitempty"`
}

// Kind classifies the outcome of one scan.
type Kind string

const (
	KindCheckedIn          Kind = "checked_in"
	KindCheckedOut         Kind = "checked_out"
	KindUnknownStudent     Kind = "unknown_student"
	KindAlreadyCheckedIn   Kind = "already_checked_in"
	KindNotCheckedInYet    Kind = "not_checked_in_yet"
	KindAlreadyCheckedOut  Kind = "already_checked_out"
	KindPersistenceFailure Kind = "persistence_failure"
)

// Accepted reports whether the scan produced a write.
func (k Kind) Accepted() bool {
	return k == KindCheckedIn || k == KindCheckedOut
}

// ScanMessage is the queue payload published after an accepted scan, picked
// up by the worker for lateness labeling and tallies.
type ScanMessage struct {
	RecordID  string    `json:"record_id"`
	SchoolID  string    `json:"school_id"`
	NISN      string    `json:"nisn"`
	Direction Direction `json:"direction"`
	At        time.Time `json:"at"`
}

// Outcome is the synchronous result of one scan. Rejections carry enough
// for operator feedback but never represent a write.
type Outcome struct {
	Kind        Kind
	StudentName string
	ClassLabel  string
	RecordID    string
	CheckInAt   time.Time
	CheckOutAt  time.Time
	Err         error
}

// MarshalJSON drops zero timestamps, which struct tags alone cannot do for
// time.Time values.
func (o Outcome) MarshalJSON() ([]byte, error) {
	wire := struct {
		Kind        Kind       `json:"kind"`
		StudentName string     `json:"student_name,omitempty"`
		ClassLabel  string     `json:"class_label,omitempty"`
		RecordID    string     `json:"record_id,omitempty"`
		CheckInAt   *time.Time `json:"check_in_at,omitempty"`
		CheckOutAt  *time.Time `json:"check_out_at,omitempty"`
	}{
		Kind:        o.Kind,
		StudentName: o.StudentName,
		ClassLabel:  o.ClassLabel,
		RecordID:    o.RecordID,
	}
	if !o.CheckInAt.IsZero() {
		wire.CheckInAt = &o.CheckInAt
	}
	if !o.CheckOutAt.IsZero() {
		wire.CheckOutAt = &o.CheckOutAt
	}
	return json.Marshal(wire)
}
