package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub раздает события изменений проекта подключенным SSE-клиентам.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Subscribe подписывает клиента на события проекта и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(projectID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 10)

	h.mu.Lock()
	defer h.mu.Unlock()

	projectSubs, ok := h.subscribers[projectID]
	if !ok {
		projectSubs = make(map[chan Event]struct{})
		h.subscribers[projectID] = projectSubs
	}
	projectSubs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if subs, exists := h.subscribers[projectID]; exists {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, projectID)
			}
		}
		close(ch)
	}
}

// Publish отправляет событие всем подписчикам проекта.
// Медленные подписчики пропускают событие, блокировки нет.
func (h *Hub) Publish(projectID uuid.UUID, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[projectID]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}
