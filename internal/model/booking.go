package model

import (
	"time"

	"gorm.io/datatypes"
)

// Booking reserves a room for a user over a date range.
// Overlapping bookings for the same room are allowed.
type Booking struct {
	ID           uint           `gorm:"primaryKey"`
	UserID       uint           `gorm:"index;not null"`
	RoomID       uint           `gorm:"index;not null"`
	CheckInDate  datatypes.Date `gorm:"not null"`
	CheckOutDate datatypes.Date `gorm:"not null"`
	Status       BookingStatus  `gorm:"size:32;not null;index"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`

	// Associations. Rooms are deleted without touching their bookings, so RoomID
	// carries no constraint.
	User *User
	Room *Room `gorm:"constraint:-"`
}

// BookingView is the read-only projection of a Booking.
type BookingView struct {
	ID           uint          `json:"id"`
	UserID       uint          `json:"userId"`
	RoomID       uint          `json:"roomId"`
	CheckInDate  Date          `json:"checkInDate"`
	CheckOutDate Date          `json:"checkOutDate"`
	Status       BookingStatus `json:"status"`
}

func (b Booking) View() BookingView {
	return BookingView{
		ID:           b.ID,
		UserID:       b.UserID,
		RoomID:       b.RoomID,
		CheckInDate:  Date(b.CheckInDate),
		CheckOutDate: Date(b.CheckOutDate),
		Status:       b.Status,
	}
}
