package models

import "time"

// ServiceStats is a point-in-time view of the in-process counters.
type ServiceStats struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	FetchesTotal             uint64    `json:"fetches_total"`
	FetchErrorsTotal         uint64    `json:"fetch_errors_total"`
	AverageFetchDurationMs   float64   `json:"average_fetch_duration_ms"`
	DocumentsAssembled       uint64    `json:"documents_assembled"`
	NotificationsSent        uint64    `json:"notifications_sent"`
	NotificationsFailed      uint64    `json:"notifications_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
