package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahsan757/trader/internal/events"
	"github.com/ahsan757/trader/internal/models"
	"github.com/ahsan757/trader/internal/repository"
)

const maxNameLength = 200

// Service реализует операции леджера поверх хранилища проектов.
// Сумма позиции всегда пересчитывается здесь и не берется от клиента.
type Service struct {
	store     repository.ProjectStore
	publisher events.Publisher
	topic     string
	logger    *slog.Logger
}

type ItemInput struct {
	Name     string
	Quantity decimal.Decimal
	Rate     decimal.Decimal
}

type PaymentInput struct {
	Type    models.PaymentType
	Date    time.Time
	Purpose string
	Amount  decimal.Decimal
}

type Statement struct {
	Project models.Project        `json:"project"`
	Buy     models.SectionSummary `json:"buy"`
	Give    models.SectionSummary `json:"give"`
}

// NewService создает сервис леджера.
func NewService(store repository.ProjectStore, publisher events.Publisher, topic string, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{store: store, publisher: publisher, topic: topic, logger: logger}
}

// ListProjects возвращает проекты от новых к старым.
func (s *Service) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.store.ListProjects(ctx)
}

// GetProject возвращает проект по идентификатору.
func (s *Service) GetProject(ctx context.Context, projectID uuid.UUID) (models.Project, error) {
	return s.store.GetProject(ctx, projectID)
}

// CreateProject создает проект с пустыми секциями.
func (s *Service) CreateProject(ctx context.Context, name string) (models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return models.Project{}, fmt.Errorf("project name: %w", repository.ErrInvalid)
	}

	project, err := s.store.CreateProject(ctx, name)
	if err != nil {
		return models.Project{}, err
	}

	s.publish("project_created", project.ID, "", "")
	return project, nil
}

// DeleteProject удаляет проект вместе с вложенными данными.
// Повторное удаление не является ошибкой.
func (s *Service) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	if err := s.store.DeleteProject(ctx, projectID); err != nil {
		return err
	}

	s.publish("project_deleted", projectID, "", "")
	return nil
}

// AddItem добавляет позицию в хвост секции, пересчитав сумму.
func (s *Service) AddItem(ctx context.Context, projectID uuid.UUID, section models.Section, input ItemInput) (models.Project, error) {
	if err := checkSection(section); err != nil {
		return models.Project{}, err
	}

	item, err := buildItem(input)
	if err != nil {
		return models.Project{}, err
	}

	project, err := s.store.AppendItem(ctx, projectID, section, item)
	if err != nil {
		return models.Project{}, err
	}

	s.publish("item_added", projectID, section, item.ID.String())
	return project, nil
}

// UpdateItem перезаписывает позицию на месте, пересчитав сумму.
func (s *Service) UpdateItem(ctx context.Context, projectID uuid.UUID, section models.Section, itemID uuid.UUID, input ItemInput) (models.Project, error) {
	if err := checkSection(section); err != nil {
		return models.Project{}, err
	}

	item, err := buildItem(input)
	if err != nil {
		return models.Project{}, err
	}

	project, err := s.store.ReplaceItem(ctx, projectID, section, itemID, item)
	if err != nil {
		return models.Project{}, err
	}

	s.publish("item_updated", projectID, section, itemID.String())
	return project, nil
}

// DeleteItem удаляет позицию; последующие сдвигаются вниз.
func (s *Service) DeleteItem(ctx context.Context, projectID uuid.UUID, section models.Section, itemID uuid.UUID) (models.Project, error) {
	if err := checkSection(section); err != nil {
		return models.Project{}, err
	}

	project, err := s.store.RemoveItem(ctx, projectID, section, itemID)
	if err != nil {
		return models.Project{}, err
	}

	s.publish("item_deleted", projectID, section, itemID.String())
	return project, nil
}

// AddPayment добавляет платеж; сумма платежа авторитетна, пересчет не нужен.
func (s *Service) AddPayment(ctx context.Context, projectID uuid.UUID, section models.Section, input PaymentInput) (models.Project, error) {
	if err := checkSection(section); err != nil {
		return models.Project{}, err
	}

	if _, ok := models.ParsePaymentType(string(input.Type)); !ok {
		return models.Project{}, fmt.Errorf("payment type: %w", repository.ErrInvalid)
	}

	purpose := strings.TrimSpace(input.Purpose)
	if purpose == "" || len(purpose) > maxNameLength {
		return models.Project{}, fmt.Errorf("payment purpose: %w", repository.ErrInvalid)
	}

	if input.Amount.Cmp(decimal.Zero) <= 0 {
		return models.Project{}, fmt.Errorf("payment amount: %w", repository.ErrInvalid)
	}

	if input.Date.IsZero() {
		return models.Project{}, fmt.Errorf("payment date: %w", repository.ErrInvalid)
	}

	payment := models.Payment{
		ID:        uuid.New(),
		Type:      input.Type,
		Date:      input.Date,
		Purpose:   purpose,
		Amount:    input.Amount,
		CreatedAt: time.Now().UTC(),
	}

	project, err := s.store.AppendPayment(ctx, projectID, section, payment)
	if err != nil {
		return models.Project{}, err
	}

	s.publish("payment_added", projectID, section, payment.ID.String())
	return project, nil
}

// DeletePayment удаляет платеж; последующие сдвигаются вниз.
func (s *Service) DeletePayment(ctx context.Context, projectID uuid.UUID, section models.Section, paymentID uuid.UUID) (models.Project, error) {
	if err := checkSection(section); err != nil {
		return models.Project{}, err
	}

	project, err := s.store.RemovePayment(ctx, projectID, section, paymentID)
	if err != nil {
		return models.Project{}, err
	}

	s.publish("payment_deleted", projectID, section, paymentID.String())
	return project, nil
}

// Statement возвращает проект вместе с агрегатами обеих секций.
func (s *Service) Statement(ctx context.Context, projectID uuid.UUID) (Statement, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return Statement{}, err
	}

	return Statement{
		Project: project,
		Buy:     models.Summarize(project, models.SectionBuy),
		Give:    models.Summarize(project, models.SectionGive),
	}, nil
}

// Overview возвращает сводные суммы по всем проектам.
func (s *Service) Overview(ctx context.Context) (repository.OverviewStats, error) {
	return s.store.Overview(ctx)
}

func checkSection(section models.Section) error {
	if _, ok := models.ParseSection(string(section)); !ok {
		return fmt.Errorf("section %q: %w", section, repository.ErrInvalid)
	}
	return nil
}

func buildItem(input ItemInput) (models.Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxNameLength {
		return models.Item{}, fmt.Errorf("item name: %w", repository.ErrInvalid)
	}

	if input.Quantity.Cmp(decimal.Zero) <= 0 {
		return models.Item{}, fmt.Errorf("item quantity: %w", repository.ErrInvalid)
	}

	if input.Rate.Cmp(decimal.Zero) <= 0 {
		return models.Item{}, fmt.Errorf("item rate: %w", repository.ErrInvalid)
	}

	return models.Item{
		ID:          uuid.New(),
		Name:        name,
		Quantity:    input.Quantity,
		Rate:        input.Rate,
		TotalAmount: models.ComputeItemTotal(input.Quantity, input.Rate),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (s *Service) publish(action string, projectID uuid.UUID, section models.Section, entityID string) {
	event := events.LedgerEvent{
		Action:     action,
		ProjectID:  projectID,
		Section:    string(section),
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}

	if err := s.publisher.Publish(s.topic, event); err != nil {
		s.logger.Warn("publish ledger event failed",
			slog.String("action", action),
			slog.String("error", err.Error()))
	}
}
