// api/models/visit.go
package models

import "time"

// VisitorInfo is a best-effort classification of the visitor's user agent.
// Every field falls back to "Unknown" when nothing matches.
type VisitorInfo struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// VisitEvent is one immutable record of a counted visit. Write-once;
// never updated.
type VisitEvent struct {
	EventID   string      `json:"eventId"`
	VisitDate string      `json:"visitDate"`
	PagePath  string      `json:"pagePath"`
	Timestamp time.Time   `json:"timestamp"`
	UserAgent string      `json:"userAgent"`
	IPAddress string      `json:"ipAddress"`
	Visitor   VisitorInfo `json:"visitor"`
}

// VisitCountByTime is one time bucket of the daily-visits stats query.
type VisitCountByTime struct {
	Time  time.Time `json:"time"`
	Count uint64    `json:"count"`
}
