package domain

import "time"

// OracleAnnouncement is the oracle's commitment to an outcome set for one
// event. Value is opaque to the seeding workflow and forwarded verbatim.
type OracleAnnouncement struct {
	EventID      string
	Outcomes     []string
	Maturity     time.Time
	OraclePubKey string // hex x-only key
	Value        string // hex-encoded announcement
}

// AnnouncementBuilder produces announcements for a fixed oracle identity.
type AnnouncementBuilder interface {
	BuildAnnouncement(outcomes []string, eventID string, maturity time.Time) (OracleAnnouncement, error)
}
