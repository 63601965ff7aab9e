package model

import "time"

// BookingLock is an advisory lock document keyed by location and date. Its
// unique _id makes a second insert fail with a duplicate key error, which
// serializes capacity check and insert when strict capacity is enabled.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
