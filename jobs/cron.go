package jobs

import (
	"context"
	"log"
	"time"

	"garden/constants"

	"github.com/olahol/melody"
	"github.com/robfig/cron/v3"
)

// StaleReconciler định nghĩa interface cho việc quét các lần nhắc quá hạn
type StaleReconciler interface {
	ReconcileStale(ctx context.Context, thresholdDays int) (int, error)
}

var staleReconciler StaleReconciler

// SetStaleReconciler thiết lập implementation cho StaleReconciler
func SetStaleReconciler(reconciler StaleReconciler) {
	staleReconciler = reconciler
}

// InitCronJobs khởi tạo các cron jobs
func InitCronJobs(c *cron.Cron, m *melody.Melody) error {
	// Cron job chạy lúc 0h mỗi ngày: quét các lần nhắc pending quá hạn
	_, err := c.AddFunc("0 0 * * *", func() {
		now := time.Now()
		log.Printf("Đang quét các nhắc việc quá hạn lúc: %v", now)
		if staleReconciler == nil {
			log.Printf("Lỗi: StaleReconciler chưa được thiết lập")
			return
		}

		processed, err := staleReconciler.ReconcileStale(context.Background(), constants.StaleThresholdDays)
		if err != nil {
			log.Printf("Lỗi khi quét nhắc việc quá hạn: %v", err)
			return
		}
		log.Printf("Đã đánh dấu %d nhắc việc bị bỏ lỡ", processed)
	})
	if err != nil {
		return err
	}

	c.Start()
	log.Println("Cron jobs initialized successfully")
	return nil
}
