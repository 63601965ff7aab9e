package model

import "time"

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
)

// AuditEvent is an append-only record of a ledger mutation.
type AuditEvent struct {
	ID         string         `json:"id,omitempty" bson:"_id,omitempty"`
	CompanyID  string         `json:"company_id" bson:"company_id"`
	LocationID string         `json:"location_id" bson:"location_id"`
	UserID     string         `json:"user_id" bson:"user_id"`
	EventType  string         `json:"event_type" bson:"event_type"`
	EventData  map[string]any `json:"event_data" bson:"event_data"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}
