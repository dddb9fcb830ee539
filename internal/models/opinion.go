package models

import "time"

// Opinion is the directory's copy of a synced court decision, keyed by the
// provider's id so repeated syncs upsert instead of duplicating.
type Opinion struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID   int       `gorm:"uniqueIndex;not null" json:"external_id"`
	CaseName     string    `gorm:"type:text;not null" json:"case_name"`
	Court        string    `gorm:"type:varchar(100);index" json:"court"`
	DateFiled    string    `gorm:"type:varchar(10)" json:"date_filed"`
	DocketNumber string    `gorm:"type:varchar(255)" json:"docket_number"`
	AuthorID     int       `gorm:"index" json:"author_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Opinion) TableName() string {
	return "opinions"
}
