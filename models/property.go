package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

type Property struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	HostID      uint      `json:"hostId" gorm:"index"` // ID của host sở hữu
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	ExportToken string    `json:"-" gorm:"index"` // token bí mật cho feed export, tạo một lần
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Units       []Unit    `json:"units" gorm:"foreignKey:PropertyID"`
}

// NewExportToken sinh token export cho property
func NewExportToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
