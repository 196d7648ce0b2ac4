package model

import "time"

type Braincell struct {
	Id        string    `gorm:"type:varchar(64);primaryKey"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Content   string    `gorm:"type:text"`
	UserId    string    `gorm:"type:varchar(128);not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Braincell) TableName() string {
	return "braincells"
}
