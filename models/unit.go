package models

import "time"

type Unit struct {
	UnitId     uint      `json:"id" gorm:"primaryKey"`
	PropertyID uint      `json:"propertyId" gorm:"index"`
	UnitName   string    `json:"unitName"`
	NumBed     int       `json:"numBed"`
	People     int       `json:"people"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Parent     Property  `json:"parent" gorm:"foreignKey:PropertyID"`
}
