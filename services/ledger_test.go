package services

import (
	"testing"

	"staycal/constants"
	apperrors "staycal/errors"
	"staycal/models"
	"staycal/services/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupLedgerTest(t *testing.T) (*gorm.DB, *LedgerService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// DB in-memory sống theo connection: giữ pool ở 1 connection
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Property{},
		&models.Unit{},
		&models.AvailabilityEntry{},
		&models.ExternalCalendarSource{},
	))

	ledger := NewLedgerService(db, logger.NewDefaultLogger(logger.ErrorLevel))
	return db, ledger
}

func seedProperty(t *testing.T, db *gorm.DB, hostID uint) models.Property {
	t.Helper()
	property := models.Property{
		HostID:      hostID,
		Name:        "Test Homestay",
		ExportToken: models.NewExportToken(),
	}
	require.NoError(t, db.Create(&property).Error)
	return property
}

func countEntries(t *testing.T, db *gorm.DB, propertyID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.AvailabilityEntry{}).
		Where("property_id = ?", propertyID).Count(&count).Error)
	return count
}

func TestSetHostBlocksCreatesAndRemovesEntries(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)

	err := ledger.SetHostBlocks(property.ID, 10, []HostBlock{
		{Day: day(2025, 7, 1), Status: constants.AvailabilityStatusBlocked},
		{Day: day(2025, 7, 2), Status: constants.AvailabilityStatusBlocked},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, countEntries(t, db, property.ID))

	// Mở lại ngày 1/7: dòng bị xóa, ngày 2/7 giữ nguyên
	err = ledger.SetHostBlocks(property.ID, 10, []HostBlock{
		{Day: day(2025, 7, 1), Status: constants.AvailabilityStatusAvailable},
	})
	require.NoError(t, err)

	entries, err := ledger.ListAvailability(property.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, day(2025, 7, 2), models.NormalizeDay(entries[0].Day))
	assert.Equal(t, constants.AvailabilitySourceHost, entries[0].Source)
}

func TestSetHostBlocksIdempotentUpsert(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)

	blocks := []HostBlock{{Day: day(2025, 7, 1), Status: constants.AvailabilityStatusBlocked}}
	require.NoError(t, ledger.SetHostBlocks(property.ID, 10, blocks))
	require.NoError(t, ledger.SetHostBlocks(property.ID, 10, blocks))

	assert.EqualValues(t, 1, countEntries(t, db, property.ID))
}

func TestSetHostBlocksForbiddenForNonOwner(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)

	err := ledger.SetHostBlocks(property.ID, 99, []HostBlock{
		{Day: day(2025, 7, 1), Status: constants.AvailabilityStatusBlocked},
	})

	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeForbidden, appErr.Code)
	assert.EqualValues(t, 0, countEntries(t, db, property.ID))
}

func TestSetHostBlocksPropertyNotFound(t *testing.T) {
	_, ledger := setupLedgerTest(t)

	err := ledger.SetHostBlocks(12345, 10, nil)

	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodePropertyNotFound, appErr.Code)
}

func TestReserveWritesHalfOpenRangePerUnit(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)

	// 3 đêm x 2 unit: ngày checkout 13/7 không bị giữ
	err := ledger.Reserve(property.ID, []uint{1, 2}, day(2025, 7, 10), day(2025, 7, 13), 55)
	require.NoError(t, err)
	assert.EqualValues(t, 6, countEntries(t, db, property.ID))

	var checkoutCount int64
	require.NoError(t, db.Model(&models.AvailabilityEntry{}).
		Where("property_id = ? AND day = ?", property.ID, day(2025, 7, 13)).
		Count(&checkoutCount).Error)
	assert.EqualValues(t, 0, checkoutCount)

	var entry models.AvailabilityEntry
	require.NoError(t, db.Where("property_id = ?", property.ID).First(&entry).Error)
	assert.Equal(t, constants.AvailabilityStatusBooked, entry.Status)
	assert.Equal(t, constants.AvailabilitySourceBooking, entry.Source)
	assert.Equal(t, "55", entry.SourceRef)
}

func TestReserveWithoutUnitsUsesPropertyScope(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)

	err := ledger.Reserve(property.ID, nil, day(2025, 7, 10), day(2025, 7, 12), 7)
	require.NoError(t, err)

	var entries []models.AvailabilityEntry
	require.NoError(t, db.Where("property_id = ?", property.ID).Find(&entries).Error)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Nil(t, entry.UnitID)
	}
}

func TestReleaseRemovesOnlyBookingEntries(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)

	require.NoError(t, ledger.SetHostBlocks(property.ID, 10, []HostBlock{
		{Day: day(2025, 7, 1), Status: constants.AvailabilityStatusBlocked},
	}))
	require.NoError(t, ledger.Reserve(property.ID, nil, day(2025, 7, 10), day(2025, 7, 12), 55))

	require.NoError(t, ledger.Release(property.ID, 55))
	assert.EqualValues(t, 1, countEntries(t, db, property.ID))

	// Idempotent: release lần hai không lỗi, không đổi gì
	require.NoError(t, ledger.Release(property.ID, 55))
	assert.EqualValues(t, 1, countEntries(t, db, property.ID))
}

func TestReleaseScopedToProperty(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)
	other := seedProperty(t, db, 11)

	require.NoError(t, ledger.Reserve(property.ID, nil, day(2025, 7, 10), day(2025, 7, 12), 55))

	// Release trỏ nhầm property: không dòng nào của booking bị xóa
	require.NoError(t, ledger.Release(other.ID, 55))
	assert.EqualValues(t, 2, countEntries(t, db, property.ID))

	require.NoError(t, ledger.Release(property.ID, 55))
	assert.EqualValues(t, 0, countEntries(t, db, property.ID))
}

func TestApplySyncBatchExpandsEvents(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)

	events := []ParsedEvent{
		{Start: day(2025, 8, 1), End: day(2025, 8, 4), Summary: "Airbnb (Not available)"},
	}
	require.NoError(t, ledger.ApplySyncBatch(property.ID, nil, "3", events))

	entries, err := ledger.ListAvailability(property.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, entry := range entries {
		assert.Equal(t, constants.AvailabilityStatusBlocked, entry.Status)
		assert.Equal(t, constants.AvailabilitySourceICalSync, entry.Source)
		assert.Equal(t, "3", entry.SourceRef)
		assert.Equal(t, "Airbnb (Not available)", entry.Note)
	}
}

func TestApplySyncBatchReplacesPreviousRun(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)

	require.NoError(t, ledger.ApplySyncBatch(property.ID, nil, "3", []ParsedEvent{
		{Start: day(2025, 8, 1), End: day(2025, 8, 4)},
	}))

	// Event bên ngoài bị hủy, feed mới chỉ còn một đêm khác
	require.NoError(t, ledger.ApplySyncBatch(property.ID, nil, "3", []ParsedEvent{
		{Start: day(2025, 8, 20), End: day(2025, 8, 21)},
	}))

	entries, err := ledger.ListAvailability(property.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, day(2025, 8, 20), models.NormalizeDay(entries[0].Day))
}

func TestApplySyncBatchIdempotentReapply(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)

	events := []ParsedEvent{
		{Start: day(2025, 8, 1), End: day(2025, 8, 4), Summary: "Reserved"},
		{Start: day(2025, 8, 10), End: day(2025, 8, 11), Summary: "Reserved"},
	}

	require.NoError(t, ledger.ApplySyncBatch(property.ID, nil, "3", events))
	first, err := ledger.ListAvailability(property.ID, nil)
	require.NoError(t, err)

	// Áp lại đúng bộ event đó: trạng thái ledger không đổi
	require.NoError(t, ledger.ApplySyncBatch(property.ID, nil, "3", events))
	second, err := ledger.ListAvailability(property.ID, nil)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	assert.EqualValues(t, 4, countEntries(t, db, property.ID))
	for i := range first {
		assert.Equal(t, models.NormalizeDay(first[i].Day), models.NormalizeDay(second[i].Day))
		assert.Equal(t, first[i].Status, second[i].Status)
		assert.Equal(t, first[i].Source, second[i].Source)
		assert.Equal(t, first[i].SourceRef, second[i].SourceRef)
	}
}

func TestApplySyncBatchDoesNotTouchOtherSources(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)

	require.NoError(t, ledger.ApplySyncBatch(property.ID, nil, "3", []ParsedEvent{
		{Start: day(2025, 8, 1), End: day(2025, 8, 2)},
	}))
	require.NoError(t, ledger.ApplySyncBatch(property.ID, nil, "4", []ParsedEvent{
		{Start: day(2025, 8, 10), End: day(2025, 8, 11)},
	}))

	// Source 3 sync lại với feed rỗng: chỉ dòng của source 3 biến mất
	require.NoError(t, ledger.ApplySyncBatch(property.ID, nil, "3", nil))

	entries, err := ledger.ListAvailability(property.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "4", entries[0].SourceRef)
}

func TestApplySyncBatchSkipsDaysOwnedByBooking(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)

	require.NoError(t, ledger.Reserve(property.ID, nil, day(2025, 8, 2), day(2025, 8, 3), 55))

	require.NoError(t, ledger.ApplySyncBatch(property.ID, nil, "3", []ParsedEvent{
		{Start: day(2025, 8, 1), End: day(2025, 8, 4)},
	}))

	entries, err := ledger.ListAvailability(property.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var bookedDay models.AvailabilityEntry
	require.NoError(t, db.Where("property_id = ? AND day = ?", property.ID, day(2025, 8, 2)).
		First(&bookedDay).Error)
	assert.Equal(t, constants.AvailabilitySourceBooking, bookedDay.Source)
	assert.Equal(t, "55", bookedDay.SourceRef)
}

func TestRemoveSourceEntries(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)

	require.NoError(t, ledger.ApplySyncBatch(property.ID, nil, "3", []ParsedEvent{
		{Start: day(2025, 8, 1), End: day(2025, 8, 3)},
	}))
	require.NoError(t, ledger.SetHostBlocks(property.ID, 10, []HostBlock{
		{Day: day(2025, 9, 1), Status: constants.AvailabilityStatusBlocked},
	}))

	require.NoError(t, ledger.RemoveSourceEntries(property.ID, "3"))

	entries, err := ledger.ListAvailability(property.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, constants.AvailabilitySourceHost, entries[0].Source)
}

func TestListAvailabilityUnitOverridesPropertyWide(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)
	unitID := uint(1)

	// Cùng ngày: một dòng null-unit (cả property) và một dòng của unit 1
	require.NoError(t, db.Create(&models.AvailabilityEntry{
		PropertyID: property.ID,
		Day:        day(2025, 9, 1),
		Status:     constants.AvailabilityStatusBlocked,
		Source:     constants.AvailabilitySourceHost,
	}).Error)
	require.NoError(t, db.Create(&models.AvailabilityEntry{
		PropertyID: property.ID,
		UnitID:     &unitID,
		Day:        day(2025, 9, 1),
		Status:     constants.AvailabilityStatusBooked,
		Source:     constants.AvailabilitySourceBooking,
		SourceRef:  "55",
	}).Error)

	entries, err := ledger.ListAvailability(property.ID, &unitID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, constants.AvailabilityStatusBooked, entries[0].Status)
	require.NotNil(t, entries[0].UnitID)
	assert.Equal(t, unitID, *entries[0].UnitID)
}

func TestListAvailabilityUnitSeesPropertyWideBlocks(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	property := seedProperty(t, db, 10)
	unitID := uint(1)
	otherUnit := uint(2)

	require.NoError(t, db.Create(&models.AvailabilityEntry{
		PropertyID: property.ID,
		Day:        day(2025, 9, 1),
		Status:     constants.AvailabilityStatusBlocked,
		Source:     constants.AvailabilitySourceHost,
	}).Error)
	require.NoError(t, db.Create(&models.AvailabilityEntry{
		PropertyID: property.ID,
		UnitID:     &otherUnit,
		Day:        day(2025, 9, 2),
		Status:     constants.AvailabilityStatusBooked,
		Source:     constants.AvailabilitySourceBooking,
		SourceRef:  "9",
	}).Error)

	entries, err := ledger.ListAvailability(property.ID, &unitID)
	require.NoError(t, err)

	// Chặn cả property hiện ra, booking của unit khác thì không
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].UnitID)
	assert.Equal(t, day(2025, 9, 1), models.NormalizeDay(entries[0].Day))
}
