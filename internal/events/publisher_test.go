package events

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherDeliversEnvelope(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	pubSub := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NewSlogLogger(logger))
	publisher := NewPublisher(pubSub, "learning.", logger)
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := publisher.Publish(ctx, ChapterCompleted, ChapterCompletedData{StudentID: "s1", ChapterID: 42})
	require.NoError(t, err)

	messages, err := pubSub.Subscribe(ctx, "learning.chapter.completed")
	require.NoError(t, err)

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, string(ChapterCompleted), msg.Metadata.Get("event_type"))

		event, err := EventFromMessage(msg)
		require.NoError(t, err)
		assert.Equal(t, EventSource, event.Source)
		assert.Equal(t, EventVersion, event.Version)
		assert.Equal(t, msg.UUID, event.ID)

		var data ChapterCompletedData
		require.NoError(t, event.Decode(&data))
		assert.Equal(t, "s1", data.StudentID)
		assert.Equal(t, uint(42), data.ChapterID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestPublisherTopic(t *testing.T) {
	p := NewPublisher(nil, "prod.", slog.New(slog.DiscardHandler))
	assert.Equal(t, "prod.quiz.submitted", p.Topic(QuizSubmitted))
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher()
	ctx := context.Background()

	require.NoError(t, mock.Publish(ctx, QuizSubmitted, QuizSubmittedData{QuizID: 1, Score: 7, TotalQuestions: 10}))
	require.NoError(t, mock.Publish(ctx, NoticePublished, NoticePublishedData{NoticeID: 3}))

	assert.Len(t, mock.GetPublishedEvents(), 2)
	quizEvents := mock.EventsOfType(QuizSubmitted)
	require.Len(t, quizEvents, 1)

	var data QuizSubmittedData
	require.NoError(t, quizEvents[0].Decode(&data))
	assert.Equal(t, 7, data.Score)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())

	boom := errors.New("broker down")
	mock.FailWith(boom)
	assert.ErrorIs(t, mock.Publish(ctx, ParentLinked, ParentLinkedData{}), boom)
}

func TestNoopPublisher(t *testing.T) {
	var p EventPublisher = NewNoopPublisher()
	assert.NoError(t, p.Publish(context.Background(), StudentEnrolled, nil))
	assert.NoError(t, p.Close())
}
