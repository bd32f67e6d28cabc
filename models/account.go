package models

import "time"

// Account mirrors the linked-provider view of an identity for reporting.
type Account struct {
	UID         string    `bson:"uid" json:"uid"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	PhoneNumber string    `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Providers   []string  `bson:"providers" json:"providers"`
	EmailLinked bool      `bson:"emailLinked" json:"emailLinked"`
	PhoneLinked bool      `bson:"phoneLinked" json:"phoneLinked"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}
