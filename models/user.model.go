package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserAddress is the profile address of a user
type UserAddress struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
}

// User represents a user in the system
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   UserAddress        `bson:"address" json:"address"`
	Role      string             `bson:"role" json:"role"` // "user" or "admin"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	LastLogin *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
}

// SignupRequest is the registration payload
type SignupRequest struct {
	Name     string      `json:"name" validate:"required,min=2,max=50"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Phone    string      `json:"phone" validate:"omitempty,numeric,len=10"`
	Address  UserAddress `json:"address"`
}

// LoginRequest is the credentials payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate is a partial profile update; empty fields are left untouched.
type ProfileUpdate struct {
	Name    string       `json:"name" validate:"omitempty,min=2,max=50"`
	Phone   string       `json:"phone" validate:"omitempty,numeric,len=10"`
	Address *UserAddress `json:"address"`
}

// PasswordChange is the change-password payload
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}
