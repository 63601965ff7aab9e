package model

import "time"

type MailContent struct {
	Subject string `json:"subject" bson:"subject"`
	HTML    string `json:"html" bson:"html"`
}

// Mail is a queued outbound email. Delivery happens outside this system.
type Mail struct {
	ID        string      `json:"id,omitempty" bson:"_id,omitempty"`
	To        []string    `json:"to" bson:"to"`
	Message   MailContent `json:"message" bson:"message"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}
