package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Room represents a bookable hotel room.
type Room struct {
	ID            uint            `gorm:"primaryKey"`
	RoomNumber    string          `gorm:"size:50;not null;index"`
	Description   *string         `gorm:"type:text"`
	Type          RoomType        `gorm:"size:32;not null"`
	Status        RoomStatus      `gorm:"size:32;not null;index"`
	PricePerNight decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	// PhotoPath is a reference into the file asset store, nil when the room has no photo.
	PhotoPath *string   `gorm:"size:512"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// RoomView is the read-only projection of a Room returned to callers.
type RoomView struct {
	ID            uint            `json:"id"`
	RoomNumber    string          `json:"roomNumber"`
	Description   *string         `json:"description"`
	Type          RoomType        `json:"type"`
	Status        RoomStatus      `json:"status"`
	PricePerNight decimal.Decimal `json:"pricePerNight"`
	PhotoPath     *string         `json:"photoPath"`
}

// View projects the row.
func (r Room) View() RoomView {
	return RoomView{
		ID:            r.ID,
		RoomNumber:    r.RoomNumber,
		Description:   r.Description,
		Type:          r.Type,
		Status:        r.Status,
		PricePerNight: r.PricePerNight,
		PhotoPath:     r.PhotoPath,
	}
}
