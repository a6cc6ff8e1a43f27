package models

import "time"

// User is an attendee or staff account. Identity verification (including
// the face-similarity result) is performed by an external service; this
// system only consumes the resulting flag.
type User struct {
	ID       string `bson:"id" json:"id"`
	Email    string `bson:"email" json:"email"`
	FullName string `bson:"fullName" json:"fullName"`

	// PasswordHash is a bcrypt hash; never serialized to clients.
	PasswordHash string `bson:"passwordHash" json:"-"`

	IsVerified bool `bson:"isVerified" json:"isVerified"`
	// IsHost grants access to scanner and stats endpoints.
	IsHost bool `bson:"isHost" json:"isHost"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
