package models

import "time"

// SessionStage enumerates the states of a verification session.
type SessionStage string

const (
	StageLocationCheck SessionStage = "location_check"
	StageCameraCapture SessionStage = "camera_capture"
	StageReadyToSubmit SessionStage = "ready_to_submit"
	StageSubmitted     SessionStage = "submitted"
	StageCancelled     SessionStage = "cancelled"
	StageFailed        SessionStage = "failed"
)

// Terminal reports whether the stage ends the session.
func (s SessionStage) Terminal() bool {
	return s == StageSubmitted || s == StageCancelled || s == StageFailed
}

// GeoPosition is a latitude/longitude pair. Ephemeral: used for a single
// geofence comparison and never persisted.
type GeoPosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationReading is the outcome of one device geolocation attempt as
// reported by the client. Unavailable means the device has no location
// capability; Denied means the user refused the permission prompt.
type LocationReading struct {
	Position    GeoPosition `json:"position"`
	Unavailable bool        `json:"unavailable"`
	Denied      bool        `json:"denied"`
}

// GeofenceReason classifies a rejected geofence check.
type GeofenceReason string

const (
	ReasonNoGPS      GeofenceReason = "no-gps"
	ReasonDenied     GeofenceReason = "denied"
	ReasonOutOfRange GeofenceReason = "out-of-range"
)

// GeofenceResult is the outcome of comparing a device position against the
// campus anchor. Distance is meters from the anchor and is populated for
// out-of-range rejections so the user knows how far to move.
type GeofenceResult struct {
	OK       bool           `json:"ok"`
	Distance float64        `json:"distance,omitempty"`
	Reason   GeofenceReason `json:"reason,omitempty"`
}

// VerificationSession is the transient state of one attendance attempt:
// location check, live capture, submit. Exactly one session may be active
// per student at a time.
type VerificationSession struct {
	ID           string       `json:"id"`
	StudentID    string       `json:"student_id"`
	Subject      string       `json:"subject"`
	Stage        SessionStage `json:"stage"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Distance     float64      `json:"distance,omitempty"`
	PhotoPath    string       `json:"-"`
	PhotoURL     string       `json:"photo_url,omitempty"`
	StartedAt    time.Time    `json:"started_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
