package model

import "time"

type LocationSettings struct {
	BookingWindowDays    int  `json:"booking_window_days" bson:"booking_window_days" validate:"omitempty,min=1,max=365"`
	MaxBookingsPerUser   int  `json:"max_bookings_per_user" bson:"max_bookings_per_user" validate:"omitempty,min=1,max=31"`
	AllowWeekendBookings bool `json:"allow_weekend_bookings" bson:"allow_weekend_bookings"`
}

// Location is a physical office with a fixed number of seats per day.
// AccessCode is stored uppercase; PIN is a legacy four digit code.
type Location struct {
	ID         string           `json:"id,omitempty" bson:"_id,omitempty"`
	CompanyID  string           `json:"company_id" bson:"company_id" validate:"required"`
	Name       string           `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Address    string           `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,max=200"`
	Capacity   int              `json:"capacity" bson:"capacity" validate:"required,capacity"`
	AccessCode string           `json:"access_code" bson:"access_code" validate:"required,access_code"`
	PIN        string           `json:"pin,omitempty" bson:"pin,omitempty" validate:"omitempty,legacy_pin"`
	IsActive   bool             `json:"is_active" bson:"is_active"`
	Settings   LocationSettings `json:"settings" bson:"settings"`
	CreatedAt  time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" bson:"updated_at"`
}

type LocationUpdate struct {
	Name     string            `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Address  *string           `json:"address,omitempty" validate:"omitempty,max=200"`
	Capacity *int              `json:"capacity,omitempty" validate:"omitempty,capacity"`
	PIN      *string           `json:"pin,omitempty" validate:"omitempty,legacy_pin"`
	IsActive *bool             `json:"is_active,omitempty"`
	Settings *LocationSettings `json:"settings,omitempty"`
}
