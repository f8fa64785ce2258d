package services

import (
	"encoding/json"
	"errors"
	"time"

	apperrors "staycal/errors"
	"staycal/models"
	"staycal/services/logger"

	"github.com/olahol/melody"
	"gorm.io/gorm"
)

// CacheInvalidator xóa cache availability/export của một property sau khi
// ledger thay đổi
type CacheInvalidator interface {
	InvalidateProperty(propertyID uint)
}

// SyncService điều phối đồng bộ các calendar bên ngoài: fetch → parse →
// áp vào ledger, ghi metadata sync trên từng source. Các source độc lập
// với nhau: một source lỗi không chặn source khác của cùng property.
type SyncService struct {
	db     *gorm.DB
	ledger *LedgerService
	m      *melody.Melody
	cache  CacheInvalidator
	logger logger.Logger
}

type SyncServiceOptions struct {
	DB     *gorm.DB
	Ledger *LedgerService
	Melody *melody.Melody
	Cache  CacheInvalidator
	Logger logger.Logger
}

// NewSyncService tạo instance mới của SyncService
func NewSyncService(opts SyncServiceOptions) *SyncService {
	lg := opts.Logger
	if lg == nil {
		lg = logger.NewDefaultLogger(logger.InfoLevel)
	}
	return &SyncService{
		db:     opts.DB,
		ledger: opts.Ledger,
		m:      opts.Melody,
		cache:  opts.Cache,
		logger: lg,
	}
}

// SyncSource chạy một lượt sync cho một source. Thành công: cập nhật
// lastSyncedAt và xóa lastSyncError. Thất bại: ghi lastSyncError, giữ
// nguyên lastSyncedAt và toàn bộ dòng ledger cũ của source.
func (s *SyncService) SyncSource(source *models.ExternalCalendarSource) error {
	content, err := FetchCalendar(source.URL)
	if err != nil {
		s.recordFailure(source, err)
		return err
	}

	events := ParseCalendar(content)

	if err := s.ledger.ApplySyncBatch(source.PropertyID, source.UnitID, source.SourceRef(), events); err != nil {
		s.recordFailure(source, err)
		return err
	}

	now := time.Now().UTC()
	source.LastSyncedAt = &now
	source.LastSyncError = ""
	if err := s.db.Model(source).Updates(map[string]interface{}{
		"last_synced_at":  now,
		"last_sync_error": "",
	}).Error; err != nil {
		s.logger.Error("Không thể cập nhật metadata sync của source %d: %v", source.ID, err)
	}

	// Lượt sync thành công đã ghi ledger: cache availability/export của
	// property không còn đúng, kể cả khi sync chạy từ cron
	if s.cache != nil {
		s.cache.InvalidateProperty(source.PropertyID)
	}

	s.logger.Info("Sync source %d (%s) thành công: %d event", source.ID, source.Name, len(events))
	s.broadcast(source, "synced", len(events))
	return nil
}

func (s *SyncService) recordFailure(source *models.ExternalCalendarSource, cause error) {
	source.LastSyncError = cause.Error()
	if err := s.db.Model(source).Update("last_sync_error", cause.Error()).Error; err != nil {
		s.logger.Error("Không thể ghi lỗi sync của source %d: %v", source.ID, err)
	}
	s.logger.Error("Sync source %d (%s) thất bại: %v", source.ID, source.Name, cause)
	s.broadcast(source, "sync_failed", 0)
}

// broadcast đẩy kết quả sync qua websocket cho các client đang mở dashboard
func (s *SyncService) broadcast(source *models.ExternalCalendarSource, status string, eventCount int) {
	if s.m == nil {
		return
	}
	message, err := json.Marshal(map[string]interface{}{
		"type":       "calendar_sync",
		"sourceId":   source.ID,
		"propertyId": source.PropertyID,
		"status":     status,
		"eventCount": eventCount,
		"error":      source.LastSyncError,
	})
	if err != nil {
		return
	}
	_ = s.m.Broadcast(message)
}

// SyncProperty sync tất cả source đang active của property. Trả về lỗi
// NotFound nếu property không tồn tại; lỗi của từng source chỉ ghi nhận.
func (s *SyncService) SyncProperty(propertyID uint) error {
	var property models.Property
	if err := s.db.First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewAppError(apperrors.ErrCodePropertyNotFound, "Không tìm thấy property", err)
		}
		return apperrors.NewAppError(apperrors.ErrCodeDBError, "Không thể lấy thông tin property", err)
	}

	var sources []models.ExternalCalendarSource
	if err := s.db.Where("property_id = ? AND is_active = ?", propertyID, true).Find(&sources).Error; err != nil {
		return apperrors.NewAppError(apperrors.ErrCodeDBError, "Không thể lấy danh sách source", err)
	}

	for i := range sources {
		if err := s.SyncSource(&sources[i]); err != nil {
			// Lỗi đã được ghi lên source, tiếp tục source kế
			continue
		}
	}
	return nil
}
