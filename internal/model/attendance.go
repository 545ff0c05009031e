package model

import "time"

// AttendanceStatus is the closed set of statuses an entry may carry.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusHoliday AttendanceStatus = "holiday"
)

// Valid reports whether s is one of the known statuses.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusHoliday:
		return true
	}
	return false
}

// AttendanceEntry is one append to a person's attendance history.
// Entries are kept in insertion order; nothing enforces one entry per day.
type AttendanceEntry struct {
	Date   time.Time        `json:"date" bson:"date"`
	Status AttendanceStatus `json:"status" bson:"status"`
}

// UpdateAck mirrors the acknowledgement a document store returns for a single update.
type UpdateAck struct {
	Acknowledged  bool  `json:"acknowledged"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// MarkStudentsRequest maps studentId to status. Validated with
// validator.ValidateAttendanceBatch after binding since gin does not validate maps.
type MarkStudentsRequest map[string]AttendanceStatus

// Per-entry error codes carried on a StudentAck.
const (
	AckErrNotFound    = "NOT_FOUND"
	AckErrNotInRoster = "NOT_IN_ROSTER"
	AckErrInternal    = "INTERNAL_ERROR"
)

// StudentAck reports the outcome of one entry of a student attendance batch.
type StudentAck struct {
	StudentID string           `json:"studentId"`
	Status    AttendanceStatus `json:"status"`
	UpdateAck
	// Notified is true when an absence email was accepted by the mail transport.
	Notified    bool   `json:"notified"`
	NotifyError string `json:"notifyError,omitempty"`
	ErrorCode   string `json:"errorCode,omitempty"`
	Error       string `json:"error,omitempty"`
}

// FaceAttendanceRequest carries a captured camera frame as a data URL.
type FaceAttendanceRequest struct {
	LiveImage string `json:"liveImage" binding:"required,startswith=data:image/"`
}

// FaceAttendanceResult is returned by the face-capture attendance endpoint.
type FaceAttendanceResult struct {
	UpdateAck
	EvidenceURL  string   `json:"evidenceUrl"`
	FaceVerified bool     `json:"faceVerified"`
	Similarity   *float64 `json:"similarity,omitempty"`
}
