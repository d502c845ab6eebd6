package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ahsan757/trader/internal/models"
	"github.com/ahsan757/trader/internal/notifications"
)

type NotificationHandler struct {
	Hub *notifications.Hub
}

// NewNotificationHandler создает SSE-обработчик уведомлений.
func NewNotificationHandler(hub *notifications.Hub) *NotificationHandler {
	return &NotificationHandler{Hub: hub}
}

// Stream открывает SSE-поток событий изменений проекта.
func (h *NotificationHandler) Stream(c echo.Context) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return badRequest(c, "invalid project id")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	ch, unsubscribe := h.Hub.Subscribe(projectID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{Type: "connected", Data: map[string]string{"project_id": projectID.String()}})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}

func publishProjectUpdated(hub *notifications.Hub, project models.Project) {
	if hub == nil {
		return
	}

	buy := models.Summarize(project, models.SectionBuy)
	give := models.Summarize(project, models.SectionGive)

	hub.Publish(project.ID, notifications.Event{
		Type: "project_updated",
		Data: map[string]interface{}{
			"project_id":   project.ID.String(),
			"buy_balance":  buy.Balance,
			"give_balance": give.Balance,
		},
	})
}

func publishProjectDeleted(hub *notifications.Hub, projectID uuid.UUID) {
	if hub == nil {
		return
	}

	hub.Publish(projectID, notifications.Event{
		Type: "project_deleted",
		Data: map[string]interface{}{
			"project_id": projectID.String(),
		},
	})
}
