package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	EventSource  = "learning-service"
	EventVersion = "1.0"
)

type EventType string

const (
	ChapterCompleted EventType = "chapter.completed"
	QuizSubmitted    EventType = "quiz.submitted"
	NoticePublished  EventType = "notice.published"
	StudentEnrolled  EventType = "student.enrolled"
	ParentLinked     EventType = "parent.linked"
)

// Event is the envelope written to every topic
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type ChapterCompletedData struct {
	StudentID   string    `json:"student_id"`
	ChapterID   uint      `json:"chapter_id"`
	CompletedAt time.Time `json:"completed_at"`
}

type QuizSubmittedData struct {
	AttemptID      uint    `json:"attempt_id"`
	StudentID      string  `json:"student_id"`
	QuizID         uint    `json:"quiz_id"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
}

type NoticePublishedData struct {
	NoticeID  uint   `json:"notice_id"`
	Title     string `json:"title"`
	ClassID   *uint  `json:"class_id,omitempty"`
	CreatedBy string `json:"created_by"`
}

type StudentEnrolledData struct {
	EnrollmentID uint   `json:"enrollment_id"`
	StudentID    string `json:"student_id"`
	ClassID      uint   `json:"class_id"`
}

type ParentLinkedData struct {
	LinkID   uint   `json:"link_id"`
	ParentID string `json:"parent_id"`
	ChildID  string `json:"child_id"`
}

// NewEvent builds an envelope around data
func NewEvent(eventType EventType, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	return &Event{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// Decode unmarshals the event payload into dest
func (e *Event) Decode(dest interface{}) error {
	return json.Unmarshal(e.Data, dest)
}

func (e *Event) toMessage(ctx context.Context) (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessageWithContext(ctx, e.ID, payload)
	msg.Metadata.Set("event_type", string(e.Type))
	msg.Metadata.Set("source", e.Source)
	return msg, nil
}

// EventFromMessage decodes a message produced by Publisher
func EventFromMessage(msg *message.Message) (*Event, error) {
	var e Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &e, nil
}
