package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahsan757/trader/internal/ledger"
	"github.com/ahsan757/trader/internal/notifications"
	"github.com/ahsan757/trader/internal/repository"
)

type ProjectHandler struct {
	Ledger   *ledger.Service
	Notifier *notifications.Hub
}

// NewProjectHandler создает обработчик проектов.
func NewProjectHandler(service *ledger.Service, notifier *notifications.Hub) *ProjectHandler {
	return &ProjectHandler{Ledger: service, Notifier: notifier}
}

type CreateProjectRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// List возвращает все проекты от новых к старым.
func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.Ledger.ListProjects(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return storeUnavailable(c)
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, projects)
}

// Create создает новый проект с пустыми секциями.
func (h *ProjectHandler) Create(c echo.Context) error {
	var req CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	project, err := h.Ledger.CreateProject(c.Request().Context(), req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "name is required")
		}
		if errors.Is(err, repository.ErrUnavailable) {
			return storeUnavailable(c)
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, project)
}

// Get возвращает проект по идентификатору.
func (h *ProjectHandler) Get(c echo.Context) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return badRequest(c, "invalid project id")
	}

	project, err := h.Ledger.GetProject(c.Request().Context(), projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "project not found")
		}
		if errors.Is(err, repository.ErrUnavailable) {
			return storeUnavailable(c)
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, project)
}

// Delete удаляет проект каскадно. Повторное удаление не ошибка.
func (h *ProjectHandler) Delete(c echo.Context) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return badRequest(c, "invalid project id")
	}

	if err := h.Ledger.DeleteProject(c.Request().Context(), projectID); err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return storeUnavailable(c)
		}
		return serverError(c)
	}

	publishProjectDeleted(h.Notifier, projectID)
	return c.JSON(http.StatusOK, map[string]string{"message": "Project deleted"})
}
