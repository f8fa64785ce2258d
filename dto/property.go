package dto

// CreatePropertyRequest là DTO cho yêu cầu tạo property
type CreatePropertyRequest struct {
	Name    string   `json:"name" binding:"required"`
	Address string   `json:"address"`
	Units   []string `json:"units"`
}

// PropertyUnitResponse thông tin rút gọn của unit
type PropertyUnitResponse struct {
	ID       uint   `json:"id"`
	UnitName string `json:"unitName"`
}

// PropertyResponse là DTO cho response của property
type PropertyResponse struct {
	ID        uint                   `json:"id"`
	HostID    uint                   `json:"hostId"`
	Name      string                 `json:"name"`
	Address   string                 `json:"address"`
	Units     []PropertyUnitResponse `json:"units"`
	ExportURL string                 `json:"exportUrl,omitempty"`
}
