package model

import "time"

// User is an account that owns bookings and payments.
type User struct {
	ID        uint       `gorm:"primaryKey"`
	Username  string     `gorm:"uniqueIndex;size:150;not null"`
	Email     string     `gorm:"size:255;not null"`
	Phone     string     `gorm:"size:32"`
	Password  string     `gorm:"size:255;not null"` // bcrypt hash
	Status    UserStatus `gorm:"size:32;not null"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`

	// Associations
	UserRoles []UserRole `gorm:"constraint:OnDelete:CASCADE"`
}

// Role is a named permission group, e.g. Admin or User.
type Role struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:100;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	UserRoles []UserRole `gorm:"constraint:OnDelete:CASCADE"`
}

// UserRole joins users to roles.
type UserRole struct {
	UserID    uint      `gorm:"primaryKey"`
	RoleID    uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

// Role names used by the RBAC policy.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)
