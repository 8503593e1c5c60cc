package models

import "time"

type Garden struct {
	ID          uint      `json:"id" gorm:"primaryKey"` // ID của khu vườn
	UserID      uint      `json:"userId"`               // ID của người dùng sở hữu
	Name        string    `json:"name"`                 // Tên khu vườn
	Description string    `json:"description"`          // Mô tả khu vườn
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	User        *User     `json:"user,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:UserID;references:ID"`

	Logs          []GardenLog    `json:"logs,omitempty" gorm:"foreignKey:GardenID"`          // Nhật ký trồng cây trong vườn
	Notifications []Notification `json:"notifications,omitempty" gorm:"foreignKey:GardenID"` // Thông báo chăm sóc của vườn
}
