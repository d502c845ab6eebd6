package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/ahsan757/trader/internal/ledger"
	"github.com/ahsan757/trader/internal/notifications"
	"github.com/ahsan757/trader/internal/repository"
)

type ItemHandler struct {
	Ledger   *ledger.Service
	Notifier *notifications.Hub
}

// NewItemHandler создает обработчик позиций леджера.
func NewItemHandler(service *ledger.Service, notifier *notifications.Hub) *ItemHandler {
	return &ItemHandler{Ledger: service, Notifier: notifier}
}

type ItemRequest struct {
	Name     string          `json:"name" validate:"required,max=200"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
	Rate     decimal.Decimal `json:"rate" validate:"required"`
}

// Create добавляет позицию в хвост секции. Сумма считается на сервере.
func (h *ItemHandler) Create(c echo.Context) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return badRequest(c, "invalid project id")
	}

	section, ok := parseSection(c)
	if !ok {
		return badRequest(c, "invalid section")
	}

	var req ItemRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	project, err := h.Ledger.AddItem(c.Request().Context(), projectID, section, ledger.ItemInput{
		Name:     req.Name,
		Quantity: req.Quantity,
		Rate:     req.Rate,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "project not found")
		}
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "quantity and rate must be positive")
		}
		if errors.Is(err, repository.ErrUnavailable) {
			return storeUnavailable(c)
		}
		return serverError(c)
	}

	publishProjectUpdated(h.Notifier, project)
	return c.JSON(http.StatusCreated, project)
}

// Update перезаписывает позицию на месте. Сумма пересчитывается.
func (h *ItemHandler) Update(c echo.Context) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return badRequest(c, "invalid project id")
	}

	section, ok := parseSection(c)
	if !ok {
		return badRequest(c, "invalid section")
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		return badRequest(c, "invalid item id")
	}

	var req ItemRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	project, err := h.Ledger.UpdateItem(c.Request().Context(), projectID, section, itemID, ledger.ItemInput{
		Name:     req.Name,
		Quantity: req.Quantity,
		Rate:     req.Rate,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "project or item not found")
		}
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "quantity and rate must be positive")
		}
		if errors.Is(err, repository.ErrUnavailable) {
			return storeUnavailable(c)
		}
		return serverError(c)
	}

	publishProjectUpdated(h.Notifier, project)
	return c.JSON(http.StatusOK, project)
}

// Delete удаляет позицию; последующие сдвигаются вниз.
func (h *ItemHandler) Delete(c echo.Context) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return badRequest(c, "invalid project id")
	}

	section, ok := parseSection(c)
	if !ok {
		return badRequest(c, "invalid section")
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		return badRequest(c, "invalid item id")
	}

	project, err := h.Ledger.DeleteItem(c.Request().Context(), projectID, section, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "project or item not found")
		}
		if errors.Is(err, repository.ErrUnavailable) {
			return storeUnavailable(c)
		}
		return serverError(c)
	}

	publishProjectUpdated(h.Notifier, project)
	return c.JSON(http.StatusOK, project)
}
