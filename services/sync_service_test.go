package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"staycal/constants"
	"staycal/models"
	"staycal/services/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSyncTest(t *testing.T) (*gorm.DB, *SyncService, *LedgerService) {
	t.Helper()
	db, ledger := setupLedgerTest(t)
	sync := NewSyncService(SyncServiceOptions{
		DB:     db,
		Ledger: ledger,
		Logger: logger.NewDefaultLogger(logger.ErrorLevel),
	})
	return db, sync, ledger
}

func seedSource(t *testing.T, db *gorm.DB, propertyID uint, url string) models.ExternalCalendarSource {
	t.Helper()
	source := models.ExternalCalendarSource{
		PropertyID: propertyID,
		Name:       "Airbnb",
		URL:        url,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&source).Error)
	return source
}

const sampleFeed = "BEGIN:VCALENDAR\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART;VALUE=DATE:20250801\r\n" +
	"DTEND;VALUE=DATE:20250803\r\n" +
	"SUMMARY:Reserved\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestSyncSourceSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	db, sync, ledger := setupSyncTest(t)
	property := seedProperty(t, db, 10)
	source := seedSource(t, db, property.ID, server.URL)

	require.NoError(t, sync.SyncSource(&source))

	entries, err := ledger.ListAvailability(property.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, constants.AvailabilitySourceICalSync, entries[0].Source)
	assert.Equal(t, source.SourceRef(), entries[0].SourceRef)

	var reloaded models.ExternalCalendarSource
	require.NoError(t, db.First(&reloaded, source.ID).Error)
	require.NotNil(t, reloaded.LastSyncedAt)
	assert.Empty(t, reloaded.LastSyncError)
}

func TestSyncSourceFetchFailureKeepsOldEntries(t *testing.T) {
	db, sync, ledger := setupSyncTest(t)
	property := seedProperty(t, db, 10)

	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	source := seedSource(t, db, property.ID, okServer.URL)
	require.NoError(t, sync.SyncSource(&source))
	okServer.Close()

	before, err := ledger.ListAvailability(property.ID, nil)
	require.NoError(t, err)
	require.Len(t, before, 2)

	// Server 500: lượt sync này thất bại, ledger giữ nguyên
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer badServer.Close()

	require.NoError(t, db.Model(&source).Update("url", badServer.URL).Error)
	source.URL = badServer.URL

	err = sync.SyncSource(&source)
	require.Error(t, err)

	after, err := ledger.ListAvailability(property.ID, nil)
	require.NoError(t, err)
	assert.Len(t, after, 2)

	var reloaded models.ExternalCalendarSource
	require.NoError(t, db.First(&reloaded, source.ID).Error)
	assert.NotEmpty(t, reloaded.LastSyncError)
	// lastSyncedAt vẫn là của lượt thành công trước
	assert.NotNil(t, reloaded.LastSyncedAt)
}

func TestSyncSourceEmptyFeedClearsOldEntries(t *testing.T) {
	db, sync, ledger := setupSyncTest(t)
	property := seedProperty(t, db, 10)

	feed := sampleFeed
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}))
	defer server.Close()

	source := seedSource(t, db, property.ID, server.URL)
	require.NoError(t, sync.SyncSource(&source))

	// Feed giờ trống: các ngày cũ của source phải được mở lại
	feed = "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"
	require.NoError(t, sync.SyncSource(&source))

	entries, err := ledger.ListAvailability(property.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type recordingInvalidator struct {
	propertyIDs []uint
}

func (r *recordingInvalidator) InvalidateProperty(propertyID uint) {
	r.propertyIDs = append(r.propertyIDs, propertyID)
}

func TestSyncSourceInvalidatesCacheOnSuccessOnly(t *testing.T) {
	db, _, ledger := setupSyncTest(t)
	invalidator := &recordingInvalidator{}
	sync := NewSyncService(SyncServiceOptions{
		DB:     db,
		Ledger: ledger,
		Cache:  invalidator,
		Logger: logger.NewDefaultLogger(logger.ErrorLevel),
	})
	property := seedProperty(t, db, 10)

	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer okServer.Close()
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer badServer.Close()

	good := seedSource(t, db, property.ID, okServer.URL)
	require.NoError(t, sync.SyncSource(&good))
	assert.Equal(t, []uint{property.ID}, invalidator.propertyIDs)

	// Sync thất bại không đổi ledger nên cũng không xóa cache
	bad := seedSource(t, db, property.ID, badServer.URL)
	require.Error(t, sync.SyncSource(&bad))
	assert.Equal(t, []uint{property.ID}, invalidator.propertyIDs)
}

func TestSyncPropertyNotFound(t *testing.T) {
	_, sync, _ := setupSyncTest(t)

	err := sync.SyncProperty(9999)

	require.Error(t, err)
}

func TestSyncPropertyContinuesPastFailingSource(t *testing.T) {
	db, sync, ledger := setupSyncTest(t)
	property := seedProperty(t, db, 10)

	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer badServer.Close()
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer okServer.Close()

	seedSource(t, db, property.ID, badServer.URL)
	goodSource := seedSource(t, db, property.ID, okServer.URL)

	require.NoError(t, sync.SyncProperty(property.ID))

	entries, err := ledger.ListAvailability(property.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, goodSource.SourceRef(), entries[0].SourceRef)
}
