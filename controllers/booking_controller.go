package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"staycal/constants"
	"staycal/dto"
	"staycal/models"
	"staycal/response"
	"staycal/services"
	"staycal/validator"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type BookingController struct {
	db       *gorm.DB
	ledger   *services.LedgerService
	redisCli *redis.Client
}

func NewBookingController(db *gorm.DB, ledger *services.LedgerService, redisCli *redis.Client) *BookingController {
	return &BookingController{
		db:       db,
		ledger:   ledger,
		redisCli: redisCli,
	}
}

func convertToBookingResponse(booking models.Booking) dto.BookingResponse {
	unitIDs := make([]uint, 0, len(booking.UnitIDs))
	for _, id := range booking.UnitIDs {
		unitIDs = append(unitIDs, uint(id))
	}
	return dto.BookingResponse{
		ID: booking.ID,
		Property: dto.BookingPropertyInfo{
			ID:      booking.Property.ID,
			Name:    booking.Property.Name,
			Address: booking.Property.Address,
		},
		UnitIDs:      unitIDs,
		CheckInDate:  booking.CheckInDate,
		CheckOutDate: booking.CheckOutDate,
		Status:       booking.Status,
		Guest: dto.BookingGuestInfo{
			Name:        booking.GuestName,
			Email:       booking.GuestEmail,
			PhoneNumber: booking.GuestPhone,
		},
		CreatedAt: booking.CreatedAt,
		UpdatedAt: booking.UpdatedAt,
	}
}

// hasConflict kiểm tra xem có ngày nào trong [checkIn, checkOut) đã không
// trống cho unit không
func hasConflict(entries []models.AvailabilityEntry, checkIn, checkOut time.Time) bool {
	for _, entry := range entries {
		day := models.NormalizeDay(entry.Day)
		if !day.Before(checkIn) && day.Before(checkOut) {
			return true
		}
	}
	return false
}

// CreateBooking tạo booking mới và giữ chỗ ngay trên ledger: các ngày
// phải được giữ từ lúc tạo để không bị double-booking trong lúc chờ duyệt
func (ctl *BookingController) CreateBooking(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")

	var request dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	var userId *uint
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		userID, _, err := services.GetUserIDFromToken(tokenString)
		if err != nil {
			response.Unauthorized(c)
			return
		}
		userId = &userID
	} else if request.UserID != 0 {
		userId = &request.UserID
	}

	checkIn, checkOut, err := validator.ValidateBookingDates(request.CheckInDate, request.CheckOutDate)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	today := models.NormalizeDay(time.Now())
	if models.NormalizeDay(checkIn).Before(today) {
		response.BadRequest(c, "Ngày nhận phòng không được nhỏ hơn ngày hiện tại")
		return
	}

	var property models.Property
	if err := ctl.db.First(&property, request.PropertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.ServerError(c)
		return
	}

	checkIn = models.NormalizeDay(checkIn)
	checkOut = models.NormalizeDay(checkOut)

	// Kiểm tra trùng lịch trước khi giữ chỗ
	if len(request.UnitIDs) > 0 {
		for i := range request.UnitIDs {
			var unit models.Unit
			if err := ctl.db.First(&unit, request.UnitIDs[i]).Error; err != nil || unit.PropertyID != request.PropertyID {
				response.BadRequest(c, "PropertyID không hợp lệ")
				return
			}

			entries, err := ctl.ledger.ListAvailability(request.PropertyID, &request.UnitIDs[i])
			if err != nil {
				response.ServerError(c)
				return
			}
			if hasConflict(entries, checkIn, checkOut) {
				response.BadRequest(c, "Unit đã được đặt hoặc không khả dụng trong khoảng thời gian này")
				return
			}
		}
	} else {
		entries, err := ctl.ledger.ListAvailability(request.PropertyID, nil)
		if err != nil {
			response.ServerError(c)
			return
		}
		if hasConflict(entries, checkIn, checkOut) {
			response.BadRequest(c, "Chỗ ở đã được đặt hoặc không khả dụng trong khoảng thời gian này")
			return
		}
	}

	unitIDs := make(pq.Int64Array, 0, len(request.UnitIDs))
	for _, id := range request.UnitIDs {
		unitIDs = append(unitIDs, int64(id))
	}

	booking := models.Booking{
		UserID:       userId,
		PropertyID:   request.PropertyID,
		UnitIDs:      unitIDs,
		CheckInDate:  request.CheckInDate,
		CheckOutDate: request.CheckOutDate,
		Status:       constants.BookingStatusPending,
		GuestName:    request.GuestName,
		GuestEmail:   request.GuestEmail,
		GuestPhone:   request.GuestPhone,
	}

	if err := ctl.db.Create(&booking).Error; err != nil {
		response.ServerError(c)
		return
	}

	if err := ctl.ledger.Reserve(request.PropertyID, request.UnitIDs, checkIn, checkOut, booking.ID); err != nil {
		log.Printf("Lỗi khi giữ chỗ cho booking %d: %v", booking.ID, err)
		response.ServerError(c)
		return
	}

	invalidateAvailabilityCache(ctl.redisCli, request.PropertyID)

	booking.Property = property
	response.Success(c, convertToBookingResponse(booking))
}

// ChangeBookingStatus xử lý duyệt / từ chối / ghi nhận thanh toán / hủy.
// Duyệt và từ chối không đụng đến ledger: ngày đã được giữ từ lúc tạo.
// Hủy luôn thành công với người dùng kể cả khi giải phóng ledger lỗi;
// dòng giữ chỗ còn sót được coi là bất thường có thể đối soát sau.
func (ctl *BookingController) ChangeBookingStatus(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c)
		return
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	currentUserID, currentUserRole, err := services.GetUserIDFromToken(tokenString)
	if err != nil {
		response.Unauthorized(c)
		return
	}

	var req dto.BookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	var booking models.Booking
	if err := ctl.db.Preload("Property").First(&booking, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.ServerError(c)
		return
	}

	isHost := booking.Property.HostID == currentUserID || currentUserRole == constants.RoleSuperAdmin
	isOwner := booking.UserID != nil && *booking.UserID == currentUserID

	state := models.GetBookingState(booking.Status)

	switch req.Status {
	case constants.BookingStatusAccepted:
		if !isHost {
			response.Forbidden(c)
			return
		}
		if err := state.Accept(&booking); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	case constants.BookingStatusRejected:
		if !isHost {
			response.Forbidden(c)
			return
		}
		if err := state.Reject(&booking); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	case constants.BookingStatusPaid:
		if !isHost {
			response.Forbidden(c)
			return
		}
		if err := state.Pay(&booking); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	case constants.BookingStatusCancelled:
		if !isHost && !isOwner {
			response.Forbidden(c)
			return
		}
		if isOwner && !isHost {
			timeSinceCreation := time.Since(booking.CreatedAt).Hours()
			if timeSinceCreation > 24 {
				response.BadRequest(c, "Liên hệ host để được hủy đơn")
				return
			}
		}
		if err := state.Cancel(&booking); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	default:
		response.BadRequest(c, "Trạng thái không hợp lệ")
		return
	}

	booking.UpdatedAt = time.Now()
	if err := ctl.db.Save(&booking).Error; err != nil {
		response.ServerError(c)
		return
	}

	// Chỉ hủy (kể cả hoàn tiền) mới giải phóng các ngày đã giữ.
	// Duyệt và từ chối là thay đổi trạng thái thuần túy, không đụng ledger
	if booking.Status == constants.BookingStatusCancelled ||
		booking.Status == constants.BookingStatusRefunded {
		if err := ctl.ledger.Release(booking.PropertyID, booking.ID); err != nil {
			log.Printf("Lỗi khi giải phóng ngày của booking %d: %v", booking.ID, err)
		}
		invalidateAvailabilityCache(ctl.redisCli, booking.PropertyID)
	}

	response.Success(c, gin.H{"message": "Trạng thái booking đã được cập nhật"})
}

// GetBookingDetail trả về chi tiết một booking
func (ctl *BookingController) GetBookingDetail(c *gin.Context) {
	bookingId := c.Param("id")

	var booking models.Booking
	if err := ctl.db.Preload("Property").Where("id = ?", bookingId).First(&booking).Error; err != nil {
		response.NotFound(c)
		return
	}

	response.Success(c, convertToBookingResponse(booking))
}

// GetBookingHistory trả về các booking của user hiện tại
func (ctl *BookingController) GetBookingHistory(c *gin.Context) {
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

	var bookings []models.Booking
	if err := ctl.db.Preload("Property").
		Where("user_id = ?", currentUserID).
		Order("created_at DESC").
		Find(&bookings).Error; err != nil {
		response.ServerError(c)
		return
	}

	bookingResponses := make([]dto.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		bookingResponses = append(bookingResponses, convertToBookingResponse(booking))
	}

	response.Success(c, bookingResponses)
}
