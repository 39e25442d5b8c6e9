package model

import "time"

// Friend is a directed edge UserID -> FriendID. The reverse edge is a
// separate row, and nothing stops the same edge from being stored twice.
type Friend struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	FriendID  uint      `json:"friend_id" gorm:"not null;index"`
	User      *User     `json:"-" gorm:"foreignKey:UserID"`
	Target    *User     `json:"-" gorm:"foreignKey:FriendID"`
	CreatedAt time.Time `json:"created_at"`
}
