package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ahsan757/trader/internal/ledger"
	"github.com/ahsan757/trader/internal/models"
	"github.com/ahsan757/trader/internal/repository"
)

const (
	exportTypeItems    = "items"
	exportTypePayments = "payments"
)

// Statement возвращает проект вместе с агрегатами обеих секций.
func (h *ProjectHandler) Statement(c echo.Context) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return badRequest(c, "invalid project id")
	}

	statement, err := h.Ledger.Statement(c.Request().Context(), projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "project not found")
		}
		if errors.Is(err, repository.ErrUnavailable) {
			return storeUnavailable(c)
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, statement)
}

// StatementCSV выгружает выписку проекта в CSV-файл.
func (h *ProjectHandler) StatementCSV(c echo.Context) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return badRequest(c, "invalid project id")
	}

	statement, err := h.Ledger.Statement(c.Request().Context(), projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "project not found")
		}
		if errors.Is(err, repository.ErrUnavailable) {
			return storeUnavailable(c)
		}
		return serverError(c)
	}

	exportType := strings.ToLower(strings.TrimSpace(c.QueryParam("type")))
	if exportType == "" {
		exportType = exportTypeItems
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	switch exportType {
	case exportTypePayments:
		if err := writePaymentsCSV(writer, statement); err != nil {
			return serverError(c)
		}
	case exportTypeItems:
		if err := writeItemsCSV(writer, statement); err != nil {
			return serverError(c)
		}
	default:
		return badRequest(c, "invalid export type")
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "project-" + statement.Project.ID.String() + "-" + exportType + ".csv"
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func writeItemsCSV(writer *csv.Writer, statement ledger.Statement) error {
	header := []string{
		"project_id",
		"project_name",
		"section",
		"item_id",
		"item_name",
		"quantity",
		"rate",
		"total_amount",
		"sort_order",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, section := range []models.Section{models.SectionBuy, models.SectionGive} {
		for _, item := range statement.Project.Items(section) {
			record := []string{
				statement.Project.ID.String(),
				statement.Project.Name,
				string(section),
				item.ID.String(),
				item.Name,
				item.Quantity.String(),
				item.Rate.String(),
				item.TotalAmount.String(),
				formatInt(item.SortOrder),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	return nil
}

func writePaymentsCSV(writer *csv.Writer, statement ledger.Statement) error {
	header := []string{
		"project_id",
		"project_name",
		"section",
		"payment_id",
		"payment_type",
		"date",
		"purpose",
		"amount",
		"sort_order",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, section := range []models.Section{models.SectionBuy, models.SectionGive} {
		for _, payment := range statement.Project.Payments(section) {
			record := []string{
				statement.Project.ID.String(),
				statement.Project.Name,
				string(section),
				payment.ID.String(),
				string(payment.Type),
				payment.Date.Format(dateLayout),
				payment.Purpose,
				payment.Amount.String(),
				formatInt(payment.SortOrder),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	return nil
}

func formatInt(value int) string {
	return strconv.Itoa(value)
}
