package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/tablewise/reserve-app/models"
	"github.com/tablewise/reserve-app/utils"
)

// Sesi Snap yang tidak dibayar dianggap hangus setelah durasi ini
const paymentTimeout = 30 * time.Minute

// PaymentMonitor menandai deposit pending yang kedaluwarsa secara periodik
type PaymentMonitor struct {
	db       *gorm.DB
	interval time.Duration
	stop     chan struct{}
}

func NewPaymentMonitor(db *gorm.DB) *PaymentMonitor {
	return &PaymentMonitor{
		db:       db,
		interval: 5 * time.Minute,
		stop:     make(chan struct{}),
	}
}

// Start memulai goroutine pengecekan timeout
func (pm *PaymentMonitor) Start() {
	go func() {
		ticker := time.NewTicker(pm.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				pm.expireStalePayments()
			case <-pm.stop:
				return
			}
		}
	}()
	utils.InfoLogger.Println("Payment monitor started")
}

// Stop menghentikan goroutine monitoring
func (pm *PaymentMonitor) Stop() {
	close(pm.stop)
}

func (pm *PaymentMonitor) expireStalePayments() {
	cutoff := time.Now().Add(-paymentTimeout)

	result := pm.db.Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", models.PaymentPending, cutoff).
		Updates(map[string]interface{}{
			"status":     models.PaymentExpired,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		utils.ErrorLogger.Printf("Error expiring stale payments: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		utils.InfoLogger.Printf("Expired %d stale pending payments", result.RowsAffected)
	}
}
