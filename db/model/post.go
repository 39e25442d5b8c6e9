package model

type Post struct {
	Base
	Title   string `gorm:"index" json:"title"`
	Content string `json:"content"`
	OwnerID uint   `gorm:"index;not null" json:"owner_id"`
	Owner   *User  `json:"-"`
}
