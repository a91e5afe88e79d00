package models

import "time"

// StudentProgress is the per-chapter completion ledger. A missing row means
// the chapter is not started; once IsCompleted is set it is never cleared.
type StudentProgress struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	StudentID      string     `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_student_chapter"`
	ChapterID      uint       `json:"chapter_id" gorm:"not null;uniqueIndex:idx_student_chapter;index"`
	IsCompleted    bool       `json:"is_completed" gorm:"not null;default:false"`
	CompletedAt    *time.Time `json:"completed_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at" gorm:"not null;index"`

	// Relations
	Chapter *Chapter `json:"chapter,omitempty" gorm:"foreignKey:ChapterID"`
}

func (StudentProgress) TableName() string {
	return "student_progress"
}

// StudentClass is a student's enrollment in a class
type StudentClass struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	StudentID  string    `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_student_class"`
	ClassID    uint      `json:"class_id" gorm:"not null;uniqueIndex:idx_student_class;index"`
	EnrolledAt time.Time `json:"enrolled_at" gorm:"not null"`

	// Relations
	Class *Class `json:"class,omitempty" gorm:"foreignKey:ClassID"`
}

func (StudentClass) TableName() string {
	return "student_classes"
}

type ParentChild struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	ParentID string    `json:"parent_id" gorm:"not null;size:255;uniqueIndex:idx_parent_child"`
	ChildID  string    `json:"child_id" gorm:"not null;size:255;uniqueIndex:idx_parent_child;index"`
	LinkedAt time.Time `json:"linked_at" gorm:"not null"`
}

func (ParentChild) TableName() string {
	return "parent_children"
}
