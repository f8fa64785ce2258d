package jobs

import (
	"log"
	"time"

	"staycal/models"
	"staycal/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CalendarSyncer định nghĩa interface cho việc đồng bộ lịch ngoài
type CalendarSyncer interface {
	SyncSource(source *models.ExternalCalendarSource) error
}

var calendarSyncer CalendarSyncer

// SetCalendarSyncer thiết lập implementation cho CalendarSyncer
func SetCalendarSyncer(syncer CalendarSyncer) {
	calendarSyncer = syncer
}

// syncQueue đệm các source chờ đồng bộ; worker xử lý tuần tự từng source
// để một feed chậm không làm tắc cả đợt cron
var syncQueue = make(chan models.ExternalCalendarSource, 64)

func startSyncWorker() {
	go func() {
		for source := range syncQueue {
			if calendarSyncer == nil {
				utils.LogError("CalendarSyncer chưa được thiết lập, bỏ qua source %d", source.ID)
				continue
			}
			if err := calendarSyncer.SyncSource(&source); err != nil {
				utils.LogError("Lỗi khi đồng bộ source %d (%s): %v", source.ID, source.Name, err)
			}
		}
	}()
}

func enqueueActiveSources(db *gorm.DB) {
	var sources []models.ExternalCalendarSource
	if err := db.Where("is_active = ?", true).Find(&sources).Error; err != nil {
		utils.LogError("Lỗi khi lấy danh sách calendar source: %v", err)
		return
	}

	for _, source := range sources {
		select {
		case syncQueue <- source:
		default:
			// Hàng đợi đầy: bỏ qua, source sẽ được nhặt lại ở đợt sau
			utils.LogError("Hàng đợi đồng bộ đầy, bỏ qua source %d (%s)", source.ID, source.Name)
		}
	}
	utils.LogInfo("Đã xếp %d calendar source vào hàng đợi đồng bộ", len(sources))
}

// InitCronJobs khởi tạo các cron jobs
func InitCronJobs(c *cron.Cron, db *gorm.DB) error {
	startSyncWorker()

	// Cron job đồng bộ lịch ngoài mỗi 6 tiếng
	_, err := c.AddFunc("0 */6 * * *", func() {
		now := time.Now()
		log.Printf("Đang chạy đồng bộ lịch ngoài lúc: %v", now)
		enqueueActiveSources(db)
	})
	if err != nil {
		return err
	}

	c.Start()
	log.Println("Cron jobs initialized successfully")
	return nil
}
