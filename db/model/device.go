package model

import "time"

// Device is an Expo push token registered at sign-in.
type Device struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_device_user_token"`
	PushToken string    `json:"-" gorm:"not null;uniqueIndex:idx_device_user_token"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
