package model

import "time"

const (
	BookingStatusActive    = "active"
	BookingStatusCancelled = "cancelled"
)

// Booking is one person's claim on one seat at one location for one date.
// BookingDate is a calendar date in YYYY-MM-DD form with no time zone.
type Booking struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	CompanyID    string    `json:"company_id" bson:"company_id" validate:"required"`
	LocationID   string    `json:"location_id" bson:"location_id" validate:"required"`
	LocationName string    `json:"location_name" bson:"location_name"`
	UserID       string    `json:"user_id" bson:"user_id" validate:"required"`
	UserName     string    `json:"user_name" bson:"user_name" validate:"required,min=1,max=100"`
	BookingDate  string    `json:"booking_date" bson:"booking_date" validate:"required,datetime=2006-01-02"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=active cancelled"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}
