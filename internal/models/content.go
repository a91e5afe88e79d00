package models

import (
	"fmt"
	"strings"
	"time"
)

type ContentType int

const (
	ContentText  ContentType = 1
	ContentPDF   ContentType = 2
	ContentVideo ContentType = 3
	ContentLink  ContentType = 4
)

var contentTypeNames = map[ContentType]string{
	ContentText:  "text",
	ContentPDF:   "pdf",
	ContentVideo: "video",
	ContentLink:  "link",
}

func (t ContentType) String() string {
	if name, ok := contentTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

func (t ContentType) IsValid() bool {
	_, ok := contentTypeNames[t]
	return ok
}

// ParseContentType accepts the lowercase name of a content type
func ParseContentType(s string) (ContentType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range contentTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown content type %q", s)
}

type Content struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	Title       string      `json:"title" gorm:"not null;size:200"`
	Description *string     `json:"description" gorm:"size:1000"`
	Type        ContentType `json:"type" gorm:"not null"`
	TextContent *string     `json:"text_content" gorm:"type:text"`
	FileURL     *string     `json:"file_url" gorm:"size:500"`
	VideoURL    *string     `json:"video_url" gorm:"size:500"`
	OrderIndex  int         `json:"order_index" gorm:"not null;default:1"`
	ChapterID   uint        `json:"chapter_id" gorm:"not null;index"`
	CreatedBy   string      `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt   time.Time   `json:"created_at"`

	// Relations
	Chapter *Chapter `json:"chapter,omitempty" gorm:"foreignKey:ChapterID"`
}

func (Content) TableName() string {
	return "contents"
}
