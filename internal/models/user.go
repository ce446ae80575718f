package models

import "time"

// Role values for back-office users.
const RoleAdmin = "admin"

// User represents a back-office administrator.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name      string    `json:"name" gorm:"type:varchar(100)" bson:"name"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" bson:"email"`
	Password  string    `json:"-" gorm:"type:varchar(255)" bson:"password"` // bcrypt hash, never serialized
	Role      string    `json:"role" gorm:"type:varchar(32)" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// RegisterAdminInput is the onboarding payload. AdminSecret must match the configured secret.
type RegisterAdminInput struct {
	Name        string `json:"name" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	AdminSecret string `json:"adminSecret" validate:"required"`
}

// LoginInput holds admin credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
