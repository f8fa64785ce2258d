package services

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"staycal/constants"
	apperrors "staycal/errors"
	"staycal/models"
	"staycal/services/logger"

	"gorm.io/gorm"
)

// HostBlock là một thao tác của host trên một ngày: status "blocked" tạo
// (hoặc cập nhật) dòng chặn, status "available" xóa dòng hiện có.
type HostBlock struct {
	UnitID *uint
	Day    time.Time
	Status string
}

// LedgerService quản lý ledger availability: nguồn sự thật duy nhất cho
// câu hỏi "ngày này có đặt được không". Ba đường ghi (host chặn tay,
// booking giữ chỗ, iCal sync) đều đi qua service này và được serialize
// theo từng property để các invariant giữ vững khi chạy đồng thời.
type LedgerService struct {
	db     *gorm.DB
	logger logger.Logger

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewLedgerService tạo instance mới của LedgerService
func NewLedgerService(db *gorm.DB, lg logger.Logger) *LedgerService {
	if lg == nil {
		lg = logger.NewDefaultLogger(logger.InfoLevel)
	}
	return &LedgerService{
		db:     db,
		logger: lg,
		locks:  map[uint]*sync.Mutex{},
	}
}

// propertyLock trả về mutex riêng của property
func (s *LedgerService) propertyLock(propertyID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[propertyID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[propertyID] = lock
	}
	return lock
}

func (s *LedgerService) scopeUnit(tx *gorm.DB, unitID *uint) *gorm.DB {
	if unitID == nil {
		return tx.Where("unit_id IS NULL")
	}
	return tx.Where("unit_id = ?", *unitID)
}

// ListAvailability trả về các dòng ledger của property, sort theo ngày.
// Với unitID: lấy dòng của unit đó VÀ dòng null-unit (chặn cả property áp
// dụng cho mọi unit); nếu một ngày có cả hai thì dòng của unit thắng.
// Đường đọc không cần auth: dùng cho public search.
func (s *LedgerService) ListAvailability(propertyID uint, unitID *uint) ([]models.AvailabilityEntry, error) {
	var entries []models.AvailabilityEntry

	tx := s.db.Where("property_id = ?", propertyID)
	if unitID != nil {
		tx = tx.Where("unit_id = ? OR unit_id IS NULL", *unitID)
	}
	if err := tx.Order("day ASC").Find(&entries).Error; err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrCodeDBError, "Không thể lấy dữ liệu availability", err)
	}

	if unitID == nil {
		return entries, nil
	}

	// Dòng unit-scoped đè dòng null-unit cùng ngày
	byDay := make(map[string]models.AvailabilityEntry)
	for _, entry := range entries {
		key := entry.Day.UTC().Format(constants.ICalDateLayout)
		existing, ok := byDay[key]
		if !ok || (existing.UnitID == nil && entry.UnitID != nil) {
			byDay[key] = entry
		}
	}

	result := make([]models.AvailabilityEntry, 0, len(byDay))
	for _, entry := range entries {
		if chosen := byDay[entry.Day.UTC().Format(constants.ICalDateLayout)]; chosen.ID == entry.ID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// SetHostBlocks áp các thao tác chặn/mở của host. Fail toàn bộ nếu caller
// không sở hữu property; từng dòng fail thì log rồi đi tiếp.
func (s *LedgerService) SetHostBlocks(propertyID, callerID uint, blocks []HostBlock) error {
	var property models.Property
	if err := s.db.First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewAppError(apperrors.ErrCodePropertyNotFound, "Không tìm thấy property", err)
		}
		return apperrors.NewAppError(apperrors.ErrCodeDBError, "Không thể lấy thông tin property", err)
	}

	if property.HostID != callerID {
		return apperrors.NewAppError(apperrors.ErrCodeForbidden, "Caller không phải host của property", nil)
	}

	lock := s.propertyLock(propertyID)
	lock.Lock()
	defer lock.Unlock()

	// Gom thành hai nhóm: xóa trước, upsert sau
	var deletes, upserts []HostBlock
	for _, block := range blocks {
		block.Day = models.NormalizeDay(block.Day)
		if block.Status == constants.AvailabilityStatusAvailable {
			deletes = append(deletes, block)
		} else {
			upserts = append(upserts, block)
		}
	}

	for _, block := range deletes {
		tx := s.scopeUnit(s.db.Where("property_id = ? AND day = ?", propertyID, block.Day), block.UnitID)
		if err := tx.Delete(&models.AvailabilityEntry{}).Error; err != nil {
			s.logger.Error("Không thể xóa entry ngày %s của property %d: %v", block.Day.Format(constants.DateLayout), propertyID, err)
		}
	}

	for _, block := range upserts {
		if err := s.upsertHostBlock(propertyID, block); err != nil {
			s.logger.Error("Không thể lưu entry ngày %s của property %d: %v", block.Day.Format(constants.DateLayout), propertyID, err)
		}
	}

	return nil
}

func (s *LedgerService) upsertHostBlock(propertyID uint, block HostBlock) error {
	var existing models.AvailabilityEntry
	tx := s.scopeUnit(s.db.Where("property_id = ? AND day = ?", propertyID, block.Day), block.UnitID)
	err := tx.First(&existing).Error

	if err == nil {
		existing.Status = constants.AvailabilityStatusBlocked
		existing.Source = constants.AvailabilitySourceHost
		existing.SourceRef = ""
		return s.db.Save(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	entry := models.AvailabilityEntry{
		PropertyID: propertyID,
		UnitID:     block.UnitID,
		Day:        block.Day,
		Status:     constants.AvailabilityStatusBlocked,
		Source:     constants.AvailabilitySourceHost,
	}
	return s.db.Create(&entry).Error
}

// Reserve ghi các dòng booked cho mọi ngày trong [checkIn, checkOut) của
// từng unit được chọn (hoặc một bộ dòng null-unit khi property không chia
// unit). Không tự kiểm tra trùng: flow tạo booking phải query
// ListAvailability trước; hàm này chỉ ghi nhận giữ chỗ.
func (s *LedgerService) Reserve(propertyID uint, unitIDs []uint, checkIn, checkOut time.Time, bookingID uint) error {
	checkIn = models.NormalizeDay(checkIn)
	checkOut = models.NormalizeDay(checkOut)
	ref := strconv.FormatUint(uint64(bookingID), 10)

	lock := s.propertyLock(propertyID)
	lock.Lock()
	defer lock.Unlock()

	scopes := make([]*uint, 0)
	if len(unitIDs) == 0 {
		scopes = append(scopes, nil)
	} else {
		for i := range unitIDs {
			scopes = append(scopes, &unitIDs[i])
		}
	}

	var firstErr error
	for _, unitID := range scopes {
		for day := checkIn; day.Before(checkOut); day = day.AddDate(0, 0, 1) {
			entry := models.AvailabilityEntry{
				PropertyID: propertyID,
				UnitID:     unitID,
				Day:        day,
				Status:     constants.AvailabilityStatusBooked,
				Source:     constants.AvailabilitySourceBooking,
				SourceRef:  ref,
			}
			if err := s.db.Create(&entry).Error; err != nil {
				s.logger.Error("Không thể ghi giữ chỗ ngày %s cho booking %d: %v", day.Format(constants.DateLayout), bookingID, err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}

// Release xóa mọi dòng ledger của booking, bất kể unit/ngày. Giữ lock của
// property như mọi đường ghi khác: xóa chen vào giữa lượt sync đang chạy
// sẽ làm sai bước kiểm tra ngày-đã-có của sync. Idempotent: gọi lần hai
// không làm gì.
func (s *LedgerService) Release(propertyID, bookingID uint) error {
	ref := strconv.FormatUint(uint64(bookingID), 10)

	lock := s.propertyLock(propertyID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.db.
		Where("property_id = ? AND source = ? AND source_ref = ?",
			propertyID, constants.AvailabilitySourceBooking, ref).
		Delete(&models.AvailabilityEntry{}).Error; err != nil {
		return apperrors.NewAppError(apperrors.ErrCodeDBError, "Không thể giải phóng ngày của booking", err)
	}
	return nil
}

// ApplySyncBatch áp kết quả parse của một source lên ledger. Bước 1 xóa
// toàn bộ dòng ical_sync cũ của source (event đã biến mất khỏi calendar
// bên ngoài được mở lại đúng). Bước 2 expand từng event thành ngày; ngày
// đã có dòng bất kỳ (booking, host, source khác) thì bỏ qua — booking và
// chặn tay có quyền cao hơn calendar ngoài. Lỗi insert từng ngày chỉ log:
// calendar sync một phần vẫn tốt hơn là không có.
func (s *LedgerService) ApplySyncBatch(propertyID uint, unitID *uint, sourceRef string, events []ParsedEvent) error {
	lock := s.propertyLock(propertyID)
	lock.Lock()
	defer lock.Unlock()

	// Xóa phải xong trước khi insert để không còn ngày cũ lẫn ngày mới
	if err := s.db.
		Where("property_id = ? AND source = ? AND source_ref = ?",
			propertyID, constants.AvailabilitySourceICalSync, sourceRef).
		Delete(&models.AvailabilityEntry{}).Error; err != nil {
		return apperrors.NewAppError(apperrors.ErrCodeDBError, "Không thể xóa dữ liệu sync cũ", err)
	}

	for _, event := range events {
		start := models.NormalizeDay(event.Start)
		end := models.NormalizeDay(event.End)

		for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
			var count int64
			tx := s.scopeUnit(s.db.Model(&models.AvailabilityEntry{}).
				Where("property_id = ? AND day = ?", propertyID, day), unitID)
			if err := tx.Count(&count).Error; err != nil {
				s.logger.Error("Không thể kiểm tra ngày %s của property %d: %v", day.Format(constants.DateLayout), propertyID, err)
				continue
			}
			if count > 0 {
				continue
			}

			entry := models.AvailabilityEntry{
				PropertyID: propertyID,
				UnitID:     unitID,
				Day:        day,
				Status:     constants.AvailabilityStatusBlocked,
				Source:     constants.AvailabilitySourceICalSync,
				SourceRef:  sourceRef,
				Note:       event.Summary,
			}
			if err := s.db.Create(&entry).Error; err != nil {
				s.logger.Error("Không thể ghi ngày sync %s của property %d: %v", day.Format(constants.DateLayout), propertyID, err)
			}
		}
	}

	return nil
}

// RemoveSourceEntries xóa mọi dòng ical_sync của một source; dùng khi host
// xóa source khỏi property.
func (s *LedgerService) RemoveSourceEntries(propertyID uint, sourceRef string) error {
	lock := s.propertyLock(propertyID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.db.
		Where("property_id = ? AND source = ? AND source_ref = ?",
			propertyID, constants.AvailabilitySourceICalSync, sourceRef).
		Delete(&models.AvailabilityEntry{}).Error; err != nil {
		return apperrors.NewAppError(apperrors.ErrCodeDBError, "Không thể xóa dữ liệu của source", err)
	}
	return nil
}
