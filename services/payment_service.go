package services

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"gorm.io/gorm"

	"github.com/tablewise/reserve-app/models"
)

// Deposit per orang dalam Rupiah
const depositPerGuest = 25000

// PaymentService membuat sesi pembayaran deposit reservasi lewat Midtrans Snap
type PaymentService struct {
	db        *gorm.DB
	snap      snap.Client
	serverKey string
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_ENV") == "production" {
		env = midtrans.Production
	}

	var client snap.Client
	client.New(serverKey, env)

	return &PaymentService{
		db:        db,
		snap:      client,
		serverKey: serverKey,
	}
}

// DepositAmount -> jumlah deposit untuk satu reservasi
func DepositAmount(partySize int) float64 {
	return float64(partySize * depositPerGuest)
}

// CreateSession membuat transaksi Snap dan menyimpan record Payment pending
func (ps *PaymentService) CreateSession(reservation models.Reservation) (*models.Payment, error) {
	orderRef := fmt.Sprintf("RSV-%d-%s", reservation.ID, uuid.New().String()[:8])
	amount := DepositAmount(reservation.PartySize)

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderRef,
			GrossAmt: int64(amount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: reservation.User.Name,
			Email: reservation.User.Email,
		},
	}

	resp, snapErr := ps.snap.CreateTransaction(req)
	if snapErr != nil {
		return nil, fmt.Errorf("failed to create payment session: %w", snapErr)
	}

	payment := models.Payment{
		ReservationID: reservation.ID,
		OrderRef:      orderRef,
		Amount:        amount,
		Status:        models.PaymentPending,
		SnapToken:     resp.Token,
		RedirectURL:   resp.RedirectURL,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := ps.db.Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// VerifySignature mencocokkan signature callback Midtrans:
// sha512(order_id + status_code + gross_amount + server_key)
func (ps *PaymentService) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	hash := sha512.Sum512([]byte(orderID + statusCode + grossAmount + ps.serverKey))
	return hex.EncodeToString(hash[:]) == signature
}

// ResolveCallbackStatus memetakan transaction_status Midtrans ke status Payment
func ResolveCallbackStatus(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			return models.PaymentSettled
		}
		return models.PaymentPending
	case "settlement":
		return models.PaymentSettled
	case "deny", "cancel", "failure":
		return models.PaymentFailed
	case "expire":
		return models.PaymentExpired
	default:
		return models.PaymentPending
	}
}
