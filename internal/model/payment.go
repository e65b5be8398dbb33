package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records an amount paid against a booking. Amounts are recorded, not processed.
type Payment struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"index;not null"`
	BookingID uint            `gorm:"index;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Date      time.Time       `gorm:"not null"`
	Status    PaymentStatus   `gorm:"size:32;not null;index"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`

	// Associations. BookingID carries no constraint for the same reason as Booking.RoomID.
	User    *User
	Booking *Booking `gorm:"constraint:-"`
}

// PaymentView is the read-only projection of a Payment.
type PaymentView struct {
	ID        uint            `json:"id"`
	UserID    uint            `json:"userId"`
	BookingID uint            `json:"bookingId"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Status    PaymentStatus   `json:"status"`
}

func (p Payment) View() PaymentView {
	return PaymentView{
		ID:        p.ID,
		UserID:    p.UserID,
		BookingID: p.BookingID,
		Amount:    p.Amount,
		Date:      p.Date,
		Status:    p.Status,
	}
}
