package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/ahsan757/trader/internal/ledger"
	"github.com/ahsan757/trader/internal/models"
	"github.com/ahsan757/trader/internal/repository"
)

type StatsHandler struct {
	Ledger *ledger.Service
}

// NewStatsHandler создает обработчик сводной статистики.
func NewStatsHandler(service *ledger.Service) *StatsHandler {
	return &StatsHandler{Ledger: service}
}

type OverviewResponse struct {
	TotalProjects int                   `json:"total_projects"`
	Buy           models.SectionSummary `json:"buy"`
	Give          models.SectionSummary `json:"give"`
}

// Overview возвращает сводные суммы по всем проектам.
func (h *StatsHandler) Overview(c echo.Context) error {
	stats, err := h.Ledger.Overview(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return storeUnavailable(c)
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toOverviewResponse(stats))
}

func toOverviewResponse(stats repository.OverviewStats) OverviewResponse {
	return OverviewResponse{
		TotalProjects: stats.TotalProjects,
		Buy:           sectionSummary(stats.BuyItemsCost, stats.BuyPaid),
		Give:          sectionSummary(stats.GiveItemsCost, stats.GivePaid),
	}
}

func sectionSummary(itemsCost, paid decimal.Decimal) models.SectionSummary {
	return models.SectionSummary{
		TotalItemsCost: itemsCost,
		TotalPaid:      paid,
		Balance:        itemsCost.Sub(paid),
	}
}
