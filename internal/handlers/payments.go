package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/ahsan757/trader/internal/ledger"
	"github.com/ahsan757/trader/internal/models"
	"github.com/ahsan757/trader/internal/notifications"
	"github.com/ahsan757/trader/internal/repository"
)

const dateLayout = "2006-01-02"

type PaymentHandler struct {
	Ledger   *ledger.Service
	Notifier *notifications.Hub
}

// NewPaymentHandler создает обработчик платежей.
func NewPaymentHandler(service *ledger.Service, notifier *notifications.Hub) *PaymentHandler {
	return &PaymentHandler{Ledger: service, Notifier: notifier}
}

type PaymentRequest struct {
	Type    string          `json:"type" validate:"required,oneof=cash online"`
	Date    string          `json:"date" validate:"required"`
	Purpose string          `json:"purpose" validate:"required,max=200"`
	Amount  decimal.Decimal `json:"amount" validate:"required"`
}

// Create добавляет платеж в хвост секции.
func (h *PaymentHandler) Create(c echo.Context) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return badRequest(c, "invalid project id")
	}

	section, ok := parseSection(c)
	if !ok {
		return badRequest(c, "invalid section")
	}

	var req PaymentRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return badRequest(c, err.Error())
	}

	project, err := h.Ledger.AddPayment(c.Request().Context(), projectID, section, ledger.PaymentInput{
		Type:    models.PaymentType(req.Type),
		Date:    date,
		Purpose: req.Purpose,
		Amount:  req.Amount,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "project not found")
		}
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "amount must be positive")
		}
		if errors.Is(err, repository.ErrUnavailable) {
			return storeUnavailable(c)
		}
		return serverError(c)
	}

	publishProjectUpdated(h.Notifier, project)
	return c.JSON(http.StatusCreated, project)
}

// Delete удаляет платеж; последующие сдвигаются вниз.
func (h *PaymentHandler) Delete(c echo.Context) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return badRequest(c, "invalid project id")
	}

	section, ok := parseSection(c)
	if !ok {
		return badRequest(c, "invalid section")
	}

	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		return badRequest(c, "invalid payment id")
	}

	project, err := h.Ledger.DeletePayment(c.Request().Context(), projectID, section, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "project or payment not found")
		}
		if errors.Is(err, repository.ErrUnavailable) {
			return storeUnavailable(c)
		}
		return serverError(c)
	}

	publishProjectUpdated(h.Notifier, project)
	return c.JSON(http.StatusOK, project)
}

func parseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errors.New("invalid date format")
	}

	return parsed, nil
}
