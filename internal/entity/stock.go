package entity

import "time"

// Stock is the identity record of a listed symbol. Display metadata is filled
// once, when the symbol is first seen, and is not refreshed afterwards.
type Stock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"type:varchar(8);uniqueIndex;not null" json:"symbol"`
	Name      string    `gorm:"type:varchar(64)" json:"name"`
	Industry  string    `gorm:"type:varchar(64)" json:"industry"`
	Exchange  string    `gorm:"type:varchar(16)" json:"exchange"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Stock) TableName() string {
	return "stocks"
}
