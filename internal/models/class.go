package models

import "time"

type Class struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:100;uniqueIndex"`
	Description *string   `json:"description" gorm:"size:500"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Subjects    []Subject      `json:"subjects,omitempty" gorm:"foreignKey:ClassID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Enrollments []StudentClass `json:"-" gorm:"foreignKey:ClassID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Notices     []Notice       `json:"-" gorm:"foreignKey:ClassID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (Class) TableName() string {
	return "classes"
}

type Subject struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:100;index"`
	Description *string   `json:"description" gorm:"size:500"`
	ClassID     uint      `json:"class_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Class    *Class    `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Chapters []Chapter `json:"chapters,omitempty" gorm:"foreignKey:SubjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Subject) TableName() string {
	return "subjects"
}

type Chapter struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:200"`
	Description *string   `json:"description" gorm:"size:1000"`
	OrderIndex  int       `json:"order_index" gorm:"not null;default:1;index"`
	SubjectID   uint      `json:"subject_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`

	// Computed per student, never stored
	IsCompleted bool `json:"is_completed" gorm:"-"`

	// Relations
	Subject  *Subject          `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Contents []Content         `json:"contents,omitempty" gorm:"foreignKey:ChapterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Quizzes  []Quiz            `json:"quizzes,omitempty" gorm:"foreignKey:ChapterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Progress []StudentProgress `json:"-" gorm:"foreignKey:ChapterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Chapter) TableName() string {
	return "chapters"
}
