package models

import "time"

// Notice is an announcement; a nil ClassID makes it global
type Notice struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null;size:200"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	ClassID   *uint     `json:"class_id" gorm:"index"`
	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	// Relations
	Class *Class `json:"class,omitempty" gorm:"foreignKey:ClassID"`
}

func (Notice) TableName() string {
	return "notices"
}

func (n *Notice) IsGlobal() bool {
	return n.ClassID == nil
}
