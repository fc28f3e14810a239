package models

import (
	"time"
)

// Status pembayaran
const (
	PaymentPending = "pending"
	PaymentSettled = "settled"
	PaymentFailed  = "failed"
	PaymentExpired = "expired"
)

// Payment merepresentasikan deposit untuk sebuah reservasi
type Payment struct {
	ID            uint        `json:"id" gorm:"primaryKey"`
	ReservationID uint        `json:"reservation_id" gorm:"not null;index"`
	Reservation   Reservation `json:"reservation,omitempty" gorm:"foreignKey:ReservationID"`
	OrderRef      string      `json:"order_ref" gorm:"type:varchar(64);uniqueIndex"` // ID transaksi yang dikirim ke gateway
	Amount        float64     `json:"amount" gorm:"type:decimal(10,2);not null"`
	Status        string      `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	SnapToken     string      `json:"snap_token,omitempty"`
	RedirectURL   string      `json:"redirect_url,omitempty"`
	PaymentTime   *time.Time  `json:"payment_time,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
