package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahsan757/trader/internal/models"
)

type OverviewStats struct {
	TotalProjects int
	BuyItemsCost  decimal.Decimal
	BuyPaid       decimal.Decimal
	GiveItemsCost decimal.Decimal
	GivePaid      decimal.Decimal
}

// ProjectStore описывает границу хранилища проектов.
// Позиции и платежи адресуются стабильным идентификатором, а не индексом;
// порядок отображения поддерживается полем SortOrder: добавление идет в хвост
// секции, удаление сдвигает последующие элементы на одну позицию вниз.
type ProjectStore interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, name string) (models.Project, error)
	GetProject(ctx context.Context, projectID uuid.UUID) (models.Project, error)
	// DeleteProject удаляет проект вместе с вложенными данными.
	// Повторное удаление не является ошибкой.
	DeleteProject(ctx context.Context, projectID uuid.UUID) error

	AppendItem(ctx context.Context, projectID uuid.UUID, section models.Section, item models.Item) (models.Project, error)
	// ReplaceItem перезаписывает имя, количество, цену и сумму позиции,
	// сохраняя ее идентификатор и место в секции.
	ReplaceItem(ctx context.Context, projectID uuid.UUID, section models.Section, itemID uuid.UUID, item models.Item) (models.Project, error)
	RemoveItem(ctx context.Context, projectID uuid.UUID, section models.Section, itemID uuid.UUID) (models.Project, error)

	AppendPayment(ctx context.Context, projectID uuid.UUID, section models.Section, payment models.Payment) (models.Project, error)
	RemovePayment(ctx context.Context, projectID uuid.UUID, section models.Section, paymentID uuid.UUID) (models.Project, error)

	Overview(ctx context.Context) (OverviewStats, error)
}
