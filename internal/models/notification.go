package models

import "time"

// NotificationMessage is one outbound message for a single recipient.
type NotificationMessage struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// DispatchResult counts per-recipient delivery outcomes of one dispatch.
type DispatchResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
