package dto

// AvailabilityDayResponse là một ngày không trống trong ledger
type AvailabilityDayResponse struct {
	Day       string `json:"day"`
	UnitID    *uint  `json:"unitId"`
	Status    string `json:"status"`
	Source    string `json:"source"`
	SourceRef string `json:"sourceRef,omitempty"`
	Note      string `json:"note,omitempty"`
}

// HostBlockEntry là một thao tác chặn/mở của host trên một ngày
type HostBlockEntry struct {
	UnitID *uint  `json:"unitId"`
	Day    string `json:"day" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// UpdateAvailabilityRequest là DTO cho yêu cầu cập nhật chặn tay
type UpdateAvailabilityRequest struct {
	PropertyID uint             `json:"propertyId" binding:"required"`
	Entries    []HostBlockEntry `json:"entries" binding:"required"`
}
