package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"staycal/constants"
	"staycal/dto"
	"staycal/models"
	"staycal/response"
	"staycal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PropertyController struct {
	db *gorm.DB
}

func NewPropertyController(db *gorm.DB) *PropertyController {
	return &PropertyController{db: db}
}

func convertToPropertyResponse(property models.Property) dto.PropertyResponse {
	units := make([]dto.PropertyUnitResponse, 0, len(property.Units))
	for _, unit := range property.Units {
		units = append(units, dto.PropertyUnitResponse{
			ID:       unit.UnitId,
			UnitName: unit.UnitName,
		})
	}
	return dto.PropertyResponse{
		ID:      property.ID,
		HostID:  property.HostID,
		Name:    property.Name,
		Address: property.Address,
		Units:   units,
	}
}

// CreateProperty tạo property mới cùng các unit, token export được sinh
// một lần và không bao giờ trả về qua danh sách công khai
func (ctl *PropertyController) CreateProperty(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	currentUserID, _, err := services.GetUserIDFromToken(tokenString)
	if err != nil {
		response.Unauthorized(c)
		return
	}

	var request dto.CreatePropertyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	property := models.Property{
		HostID:      currentUserID,
		Name:        request.Name,
		Address:     request.Address,
		ExportToken: models.NewExportToken(),
	}

	if err := ctl.db.Create(&property).Error; err != nil {
		response.ServerError(c)
		return
	}

	for _, unitName := range request.Units {
		unit := models.Unit{
			PropertyID: property.ID,
			UnitName:   unitName,
		}
		if err := ctl.db.Create(&unit).Error; err != nil {
			response.ServerError(c)
			return
		}
		property.Units = append(property.Units, unit)
	}

	resp := convertToPropertyResponse(property)
	resp.ExportURL = fmt.Sprintf("/api/v1/export/%d/%s", property.ID, property.ExportToken)
	response.Success(c, resp)
}

// GetPropertyDetail trả về chi tiết property; chỉ chủ sở hữu hoặc
// superadmin mới thấy link export
func (ctl *PropertyController) GetPropertyDetail(c *gin.Context) {
	propertyId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ID không hợp lệ")
		return
	}

	var property models.Property
	if err := ctl.db.Preload("Units").First(&property, propertyId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.ServerError(c)
		return
	}

	resp := convertToPropertyResponse(property)

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		currentUserID, currentUserRole, err := services.GetUserIDFromToken(tokenString)
		if err == nil && (property.HostID == currentUserID || currentUserRole == constants.RoleSuperAdmin) {
			resp.ExportURL = fmt.Sprintf("/api/v1/export/%d/%s", property.ID, property.ExportToken)
		}
	}

	response.Success(c, resp)
}

// GetProperties trả về danh sách property
func (ctl *PropertyController) GetProperties(c *gin.Context) {
	var properties []models.Property
	if err := ctl.db.Preload("Units").Order("created_at DESC").Find(&properties).Error; err != nil {
		response.ServerError(c)
		return
	}

	propertyResponses := make([]dto.PropertyResponse, 0, len(properties))
	for _, property := range properties {
		propertyResponses = append(propertyResponses, convertToPropertyResponse(property))
	}

	response.Success(c, propertyResponses)
}
