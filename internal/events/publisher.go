package events

import (
	"time"

	"github.com/google/uuid"
)

// Publisher публикует события изменений леджера во внешнюю шину.
type Publisher interface {
	Publish(topic string, event any) error
}

type LedgerEvent struct {
	Action     string    `json:"action"`
	ProjectID  uuid.UUID `json:"project_id"`
	Section    string    `json:"section,omitempty"`
	EntityID   string    `json:"entity_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NoopPublisher используется, когда шина событий не настроена.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (*NoopPublisher) Publish(topic string, event any) error {
	return nil
}

var _ Publisher = (*NoopPublisher)(nil)
