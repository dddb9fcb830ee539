package models

import "time"

// Judge is the directory's copy of a synced judicial profile.
type Judge struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID int       `gorm:"uniqueIndex;not null" json:"external_id"`
	FullName   string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Gender     string    `gorm:"type:varchar(20)" json:"gender"`
	BirthDate  string    `gorm:"type:varchar(10)" json:"birth_date"`
	Court      string    `gorm:"type:varchar(100);index" json:"court"`
	Title      string    `gorm:"type:varchar(100)" json:"title"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Judge) TableName() string {
	return "judges"
}
