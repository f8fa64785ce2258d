package controllers

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"staycal/config"
	"staycal/constants"
	"staycal/dto"
	apperrors "staycal/errors"
	"staycal/response"
	"staycal/services"
	"staycal/validator"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type AvailabilityController struct {
	ledger   *services.LedgerService
	redisCli *redis.Client
}

func NewAvailabilityController(ledger *services.LedgerService, redisCli *redis.Client) *AvailabilityController {
	return &AvailabilityController{
		ledger:   ledger,
		redisCli: redisCli,
	}
}

func availabilityCacheKey(propertyID uint, unitID *uint) string {
	if unitID != nil {
		return fmt.Sprintf("availability:property:%d:unit:%d", propertyID, *unitID)
	}
	return fmt.Sprintf("availability:property:%d", propertyID)
}

// invalidateAvailabilityCache xóa cache availability và export feed của property
func invalidateAvailabilityCache(redisCli *redis.Client, propertyID uint) {
	if redisCli == nil {
		return
	}
	if err := services.DeleteKeysByPattern(config.Ctx, redisCli, fmt.Sprintf("availability:property:%d*", propertyID)); err != nil {
		log.Printf("Lỗi khi xóa cache availability của property %d: %v", propertyID, err)
	}
	_ = services.DeleteFromRedis(config.Ctx, redisCli, fmt.Sprintf("export:property:%d", propertyID))
}

// GetAvailability trả về các ngày không trống của property. Public: dùng
// cho search, không cần token.
func (ctl *AvailabilityController) GetAvailability(c *gin.Context) {
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

	var unitID *uint
	if unitIDStr := c.Query("unitId"); unitIDStr != "" {
		parsed, err := strconv.ParseUint(unitIDStr, 10, 32)
		if err != nil {
			response.BadRequest(c, "unitId không hợp lệ")
			return
		}
		u := uint(parsed)
		unitID = &u
	}

	cacheKey := availabilityCacheKey(uint(propertyID), unitID)
	var days []dto.AvailabilityDayResponse
	if ctl.redisCli != nil {
		if err := services.GetFromRedis(config.Ctx, ctl.redisCli, cacheKey, &days); err == nil && len(days) > 0 {
			response.Success(c, days)
			return
		}
	}

	entries, err := ctl.ledger.ListAvailability(uint(propertyID), unitID)
	if err != nil {
		log.Printf("Error retrieving availability: %v", err)
		response.ServerError(c)
		return
	}

	days = make([]dto.AvailabilityDayResponse, 0, len(entries))
	for _, entry := range entries {
		days = append(days, dto.AvailabilityDayResponse{
			Day:       entry.Day.Format(constants.DateLayout),
			UnitID:    entry.UnitID,
			Status:    entry.Status,
			Source:    entry.Source,
			SourceRef: entry.SourceRef,
			Note:      entry.Note,
		})
	}

	if ctl.redisCli != nil && len(days) > 0 {
		if err := services.SetToRedis(config.Ctx, ctl.redisCli, cacheKey, days, 10*time.Minute); err != nil {
			log.Printf("Lỗi khi lưu availability vào Redis: %v", err)
		}
	}

	response.Success(c, days)
}

// UpdateHostBlocks áp các thao tác chặn/mở của host lên ledger
func (ctl *AvailabilityController) UpdateHostBlocks(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c)
		return
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	currentUserID, _, err := services.GetUserIDFromToken(tokenString)
	if err != nil {
		response.Unauthorized(c)
		return
	}

	var request dto.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	blocks := make([]services.HostBlock, 0, len(request.Entries))
	for i := range request.Entries {
		entry := &request.Entries[i]
		if err := validator.ValidateHostBlockEntry(entry); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		day, _ := time.Parse(constants.DateLayout, entry.Day)
		blocks = append(blocks, services.HostBlock{
			UnitID: entry.UnitID,
			Day:    day,
			Status: entry.Status,
		})
	}

	if err := ctl.ledger.SetHostBlocks(request.PropertyID, currentUserID, blocks); err != nil {
		if appErr := apperrors.GetAppError(err); appErr != nil {
			switch appErr.Code {
			case apperrors.ErrCodePropertyNotFound:
				response.NotFound(c)
				return
			case apperrors.ErrCodeForbidden:
				response.Forbidden(c)
				return
			}
		}
		response.ServerError(c)
		return
	}

	invalidateAvailabilityCache(ctl.redisCli, request.PropertyID)

	response.Success(c, gin.H{"message": "Lịch đã được cập nhật"})
}
