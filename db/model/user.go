package model

type User struct {
	Base
	Email          string      `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword string      `gorm:"not null" json:"-"`
	Name           string      `gorm:"not null" json:"name"`
	BirthYear      int         `gorm:"not null" json:"birth_year"`
	Gender         *string     `json:"gender"`
	Region         string      `gorm:"index;not null" json:"region"`
	SchoolName     string      `gorm:"index;not null" json:"school_name"`
	SchoolType     string      `gorm:"not null" json:"school_type"`
	AdmissionYear  int         `gorm:"not null" json:"admission_year"`
	IsActive       bool        `gorm:"not null;default:true" json:"is_active"`
	Detail         *UserDetail `gorm:"foreignKey:OwnerID" json:"detail"`
	Posts          []Post      `gorm:"foreignKey:OwnerID" json:"-"`
}

// UserDetail is the optional free-text extension of a profile, one per user.
type UserDetail struct {
	ID              uint    `gorm:"primarykey" json:"id"`
	OwnerID         uint    `gorm:"uniqueIndex;not null" json:"owner_id"`
	TransferHistory *string `json:"transfer_history"`
	ClassInfo       *string `json:"class_info"`
	ClubName        *string `json:"club_name"`
	Nickname        *string `json:"nickname"`
	MemoryKeywords  *string `json:"memory_keywords"`
}
