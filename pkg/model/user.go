package model

import "time"

// User is created the first time a display name books within a company.
// Identity is the (CompanyID, Name) pair; Email stays empty for those users.
type User struct {
	ID                string    `json:"id,omitempty" bson:"_id,omitempty"`
	CompanyID         string    `json:"company_id" bson:"company_id"`
	Name              string    `json:"name" bson:"name"`
	Email             *string   `json:"email" bson:"email"`
	DefaultLocationID string    `json:"default_location_id,omitempty" bson:"default_location_id,omitempty"`
	IsActive          bool      `json:"is_active" bson:"is_active"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
}
