package model

import "time"

// ScanID uniquely identifies a scan record
type ScanID int64

// VerificationStatus is an advisory review flag on a scan; it never affects scoring
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// IsValid reports whether s is one of the known statuses
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}

// ScanRecord records that a scanner scanned a target's code for a task.
// At most one record exists per (scanner, task), and per (scanner, target)
// while duplicate targets are disallowed.
type ScanRecord struct {
	ID        ScanID
	ScannerID PlayerID
	TargetID  PlayerID
	TaskID    TaskID
	Timestamp time.Time
	Status    VerificationStatus
}
