package controllers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"staycal/config"
	"staycal/constants"
	"staycal/dto"
	apperrors "staycal/errors"
	"staycal/models"
	"staycal/response"
	"staycal/services"
	"staycal/validator"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CalendarController struct {
	db       *gorm.DB
	ledger   *services.LedgerService
	sync     *services.SyncService
	redisCli *redis.Client
}

func NewCalendarController(db *gorm.DB, ledger *services.LedgerService, sync *services.SyncService, redisCli *redis.Client) *CalendarController {
	return &CalendarController{
		db:       db,
		ledger:   ledger,
		sync:     sync,
		redisCli: redisCli,
	}
}

// requirePropertyOwner load property và kiểm tra caller có phải host không
func (ctl *CalendarController) requirePropertyOwner(c *gin.Context, propertyID uint) (*models.Property, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c)
		return nil, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	currentUserID, currentUserRole, err := services.GetUserIDFromToken(tokenString)
	if err != nil {
		response.Unauthorized(c)
		return nil, false
	}

	var property models.Property
	if err := ctl.db.First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return nil, false
		}
		response.ServerError(c)
		return nil, false
	}

	if property.HostID != currentUserID && currentUserRole != constants.RoleSuperAdmin {
		response.Forbidden(c)
		return nil, false
	}

	return &property, true
}

func convertToCalendarSourceResponse(source models.ExternalCalendarSource) dto.CalendarSourceResponse {
	return dto.CalendarSourceResponse{
		ID:            source.ID,
		PropertyID:    source.PropertyID,
		UnitID:        source.UnitID,
		Name:          source.Name,
		URL:           source.URL,
		IsActive:      source.IsActive,
		LastSyncedAt:  source.LastSyncedAt,
		LastSyncError: source.LastSyncError,
	}
}

// GetCalendarSources trả về các source đã đăng ký của property
func (ctl *CalendarController) GetCalendarSources(c *gin.Context) {
	propertyIDStr := c.DefaultQuery("propertyId", "")
	if propertyIDStr == "" {
		response.BadRequest(c, "propertyId là bắt buộc")
		return
	}
	propertyID, err := strconv.ParseUint(propertyIDStr, 10, 32)
	if err != nil {
		response.BadRequest(c, "propertyId không hợp lệ")
		return
	}

	if _, ok := ctl.requirePropertyOwner(c, uint(propertyID)); !ok {
		return
	}

	var sources []models.ExternalCalendarSource
	if err := ctl.db.Where("property_id = ?", propertyID).Order("id ASC").Find(&sources).Error; err != nil {
		response.ServerError(c)
		return
	}

	sourceResponses := make([]dto.CalendarSourceResponse, 0, len(sources))
	for _, source := range sources {
		sourceResponses = append(sourceResponses, convertToCalendarSourceResponse(source))
	}

	response.Success(c, sourceResponses)
}

// CreateCalendarSource đăng ký source mới và sync ngay lần đầu (best
// effort: sync lỗi chỉ ghi lên source, không làm fail việc đăng ký)
func (ctl *CalendarController) CreateCalendarSource(c *gin.Context) {
	var request dto.CreateCalendarSourceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	if _, ok := ctl.requirePropertyOwner(c, request.PropertyID); !ok {
		return
	}

	source := models.ExternalCalendarSource{
		PropertyID: request.PropertyID,
		UnitID:     request.UnitID,
		Name:       request.Name,
		URL:        request.URL,
		IsActive:   true,
	}

	if err := validator.ValidateCalendarSource(&source); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := ctl.db.Create(&source).Error; err != nil {
		response.ServerError(c)
		return
	}

	// Sync ngay sau khi đăng ký
	if err := ctl.sync.SyncSource(&source); err != nil {
		log.Printf("Sync lần đầu của source %d thất bại: %v", source.ID, err)
	}

	invalidateAvailabilityCache(ctl.redisCli, source.PropertyID)

	response.Success(c, convertToCalendarSourceResponse(source))
}

// DeleteCalendarSource xóa source và toàn bộ dòng ledger của nó
func (ctl *CalendarController) DeleteCalendarSource(c *gin.Context) {
	sourceIDStr := c.Param("id")
	sourceID, err := strconv.ParseUint(sourceIDStr, 10, 32)
	if err != nil {
		response.BadRequest(c, "id không hợp lệ")
		return
	}

	var source models.ExternalCalendarSource
	if err := ctl.db.First(&source, sourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.ServerError(c)
		return
	}

	if _, ok := ctl.requirePropertyOwner(c, source.PropertyID); !ok {
		return
	}

	if err := ctl.ledger.RemoveSourceEntries(source.PropertyID, source.SourceRef()); err != nil {
		response.ServerError(c)
		return
	}

	if err := ctl.db.Delete(&source).Error; err != nil {
		response.ServerError(c)
		return
	}

	invalidateAvailabilityCache(ctl.redisCli, source.PropertyID)

	response.Success(c, gin.H{"message": "Source đã được xóa"})
}

// TriggerPropertySync sync lại toàn bộ source đang active của property
func (ctl *CalendarController) TriggerPropertySync(c *gin.Context) {
	var request dto.TriggerSyncRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	if _, ok := ctl.requirePropertyOwner(c, request.PropertyID); !ok {
		return
	}

	if err := ctl.sync.SyncProperty(request.PropertyID); err != nil {
		if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Code == apperrors.ErrCodePropertyNotFound {
			response.NotFound(c)
			return
		}
		response.ServerError(c)
		return
	}

	invalidateAvailabilityCache(ctl.redisCli, request.PropertyID)

	var sources []models.ExternalCalendarSource
	if err := ctl.db.Where("property_id = ?", request.PropertyID).Order("id ASC").Find(&sources).Error; err != nil {
		response.ServerError(c)
		return
	}

	sourceResponses := make([]dto.CalendarSourceResponse, 0, len(sources))
	for _, source := range sources {
		sourceResponses = append(sourceResponses, convertToCalendarSourceResponse(source))
	}

	response.Success(c, sourceResponses)
}

// ExportCalendar phục vụ feed iCal của property tại URL chứa token.
// Token sai thì trả 401 trước khi đụng đến ledger.
func (ctl *CalendarController) ExportCalendar(c *gin.Context) {
	propertyIDStr := c.Param("propertyId")
	token := c.Param("token")

	propertyID, err := strconv.ParseUint(propertyIDStr, 10, 32)
	if err != nil {
		response.BadRequest(c, "propertyId không hợp lệ")
		return
	}

	var property models.Property
	if err := ctl.db.First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.ServerError(c)
		return
	}

	if token == "" || token != property.ExportToken {
		response.Unauthorized(c)
		return
	}

	fileName := services.ExportFileName(property.Name)

	cacheKey := fmt.Sprintf("export:property:%d", property.ID)
	var feed string
	if ctl.redisCli != nil {
		if err := services.GetFromRedis(config.Ctx, ctl.redisCli, cacheKey, &feed); err == nil && feed != "" {
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
			c.Data(200, "text/calendar; charset=utf-8", []byte(feed))
			return
		}
	}

	entries, err := ctl.ledger.ListAvailability(property.ID, nil)
	if err != nil {
		response.ServerError(c)
		return
	}

	feed = services.BuildExportFeed(property, entries)

	if ctl.redisCli != nil {
		if err := services.SetToRedis(config.Ctx, ctl.redisCli, cacheKey, feed, 10*time.Minute); err != nil {
			log.Printf("Lỗi khi lưu export feed vào Redis: %v", err)
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(200, "text/calendar; charset=utf-8", []byte(feed))
}
