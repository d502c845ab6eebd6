package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahsan757/trader/internal/events"
	"github.com/ahsan757/trader/internal/models"
	"github.com/ahsan757/trader/internal/repository"
)

// capturePublisher запоминает опубликованные события для проверок в тестах.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.LedgerEvent
}

func (p *capturePublisher) Publish(topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ledgerEvent, ok := event.(events.LedgerEvent)
	if !ok {
		return errors.New("unexpected event type")
	}

	p.events = append(p.events, ledgerEvent)
	return nil
}

func (p *capturePublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	actions := make([]string, 0, len(p.events))
	for _, event := range p.events {
		actions = append(actions, event.Action)
	}
	return actions
}

func newTestService() (*Service, *capturePublisher) {
	publisher := &capturePublisher{}
	return NewService(repository.NewMemoryStore(), publisher, "test_events", nil), publisher
}

func itemInput(name string, quantity, rate int64) ItemInput {
	return ItemInput{
		Name:     name,
		Quantity: decimal.NewFromInt(quantity),
		Rate:     decimal.NewFromInt(rate),
	}
}

func paymentInput(amount int64) PaymentInput {
	return PaymentInput{
		Type:    models.PaymentTypeCash,
		Date:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Purpose: "advance",
		Amount:  decimal.NewFromInt(amount),
	}
}

// TestProjectLifecycle проходит полный сценарий проекта: позиция,
// платеж, правка, удаление и итоговые балансы на каждом шаге.
func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	project, err := service.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	project, err = service.AddItem(ctx, project.ID, models.SectionBuy, itemInput("Cement", 10, 500))
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(project.BuyItems) != 1 {
		t.Fatalf("expected 1 buy item, got %d", len(project.BuyItems))
	}
	if !project.BuyItems[0].TotalAmount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected item total 5000, got %s", project.BuyItems[0].TotalAmount)
	}

	project, err = service.AddPayment(ctx, project.ID, models.SectionBuy, paymentInput(2000))
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}

	statement, err := service.Statement(ctx, project.ID)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if !statement.Buy.Balance.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("expected buy balance 3000, got %s", statement.Buy.Balance)
	}

	itemID := project.BuyItems[0].ID
	project, err = service.UpdateItem(ctx, project.ID, models.SectionBuy, itemID, itemInput("Cement", 5, 500))
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if !project.BuyItems[0].TotalAmount.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("expected item total 2500, got %s", project.BuyItems[0].TotalAmount)
	}

	statement, err = service.Statement(ctx, project.ID)
	if err != nil {
		t.Fatalf("statement after update: %v", err)
	}
	if !statement.Buy.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected buy balance 500, got %s", statement.Buy.Balance)
	}

	project, err = service.DeleteItem(ctx, project.ID, models.SectionBuy, itemID)
	if err != nil {
		t.Fatalf("delete item: %v", err)
	}
	if len(project.BuyItems) != 0 {
		t.Fatalf("expected no buy items, got %d", len(project.BuyItems))
	}

	statement, err = service.Statement(ctx, project.ID)
	if err != nil {
		t.Fatalf("statement after delete: %v", err)
	}
	if !statement.Buy.Balance.Equal(decimal.NewFromInt(-2000)) {
		t.Fatalf("expected buy balance -2000, got %s", statement.Buy.Balance)
	}

	if err := service.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if err := service.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("repeated delete must not fail: %v", err)
	}

	if _, err := service.GetProject(ctx, project.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

// TestCreateProjectRejectsBlankName проверяет отказ на пустом имени.
func TestCreateProjectRejectsBlankName(t *testing.T) {
	service, _ := newTestService()

	if _, err := service.CreateProject(context.Background(), "   "); !errors.Is(err, repository.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

// TestAddItemValidation проверяет отказ на некорректных полях позиции.
func TestAddItemValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	project, err := service.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	cases := []struct {
		name  string
		input ItemInput
	}{
		{"blank name", itemInput("  ", 1, 1)},
		{"zero quantity", itemInput("Cement", 0, 500)},
		{"negative rate", itemInput("Cement", 10, -500)},
	}

	for _, tc := range cases {
		if _, err := service.AddItem(ctx, project.ID, models.SectionBuy, tc.input); !errors.Is(err, repository.ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", tc.name, err)
		}
	}
}

// TestAddItemUnknownSection проверяет отказ на неизвестной секции.
func TestAddItemUnknownSection(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	project, err := service.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	if _, err := service.AddItem(ctx, project.ID, models.Section("sell"), itemInput("Cement", 1, 1)); !errors.Is(err, repository.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

// TestAddItemUnknownProject проверяет отказ на несуществующем проекте.
func TestAddItemUnknownProject(t *testing.T) {
	service, _ := newTestService()

	if _, err := service.AddItem(context.Background(), uuid.New(), models.SectionBuy, itemInput("Cement", 1, 1)); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestAddPaymentValidation проверяет отказ на некорректных полях платежа.
func TestAddPaymentValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	project, err := service.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	badType := paymentInput(100)
	badType.Type = models.PaymentType("card")

	blankPurpose := paymentInput(100)
	blankPurpose.Purpose = "  "

	zeroAmount := paymentInput(0)

	zeroDate := paymentInput(100)
	zeroDate.Date = time.Time{}

	cases := []struct {
		name  string
		input PaymentInput
	}{
		{"unknown type", badType},
		{"blank purpose", blankPurpose},
		{"zero amount", zeroAmount},
		{"zero date", zeroDate},
	}

	for _, tc := range cases {
		if _, err := service.AddPayment(ctx, project.ID, models.SectionBuy, tc.input); !errors.Is(err, repository.ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", tc.name, err)
		}
	}
}

// TestUpdateItemKeepsPosition проверяет правку на месте без смены порядка.
func TestUpdateItemKeepsPosition(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	project, err := service.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	project, err = service.AddItem(ctx, project.ID, models.SectionBuy, itemInput("Cement", 10, 500))
	if err != nil {
		t.Fatalf("add first item: %v", err)
	}
	project, err = service.AddItem(ctx, project.ID, models.SectionBuy, itemInput("Bricks", 3, 100))
	if err != nil {
		t.Fatalf("add second item: %v", err)
	}

	firstID := project.BuyItems[0].ID
	project, err = service.UpdateItem(ctx, project.ID, models.SectionBuy, firstID, itemInput("Sand", 2, 50))
	if err != nil {
		t.Fatalf("update item: %v", err)
	}

	if len(project.BuyItems) != 2 {
		t.Fatalf("expected 2 items, got %d", len(project.BuyItems))
	}
	if project.BuyItems[0].ID != firstID || project.BuyItems[0].Name != "Sand" {
		t.Fatalf("expected updated item to keep first position, got %+v", project.BuyItems[0])
	}
	if project.BuyItems[1].Name != "Bricks" {
		t.Fatalf("expected second item untouched, got %+v", project.BuyItems[1])
	}
}

// TestDeleteItemShiftsOrder проверяет сдвиг порядка после удаления из середины.
func TestDeleteItemShiftsOrder(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	project, err := service.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	for _, name := range []string{"Cement", "Bricks", "Sand"} {
		project, err = service.AddItem(ctx, project.ID, models.SectionBuy, itemInput(name, 1, 1))
		if err != nil {
			t.Fatalf("add item %s: %v", name, err)
		}
	}

	middleID := project.BuyItems[1].ID
	project, err = service.DeleteItem(ctx, project.ID, models.SectionBuy, middleID)
	if err != nil {
		t.Fatalf("delete item: %v", err)
	}

	if len(project.BuyItems) != 2 {
		t.Fatalf("expected 2 items, got %d", len(project.BuyItems))
	}
	if project.BuyItems[0].Name != "Cement" || project.BuyItems[1].Name != "Sand" {
		t.Fatalf("unexpected order after delete: %s, %s", project.BuyItems[0].Name, project.BuyItems[1].Name)
	}
	for i, item := range project.BuyItems {
		if item.SortOrder != i {
			t.Fatalf("expected sort order %d, got %d", i, item.SortOrder)
		}
	}
}

// TestSectionsIndependent проверяет, что секции не влияют друг на друга.
func TestSectionsIndependent(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	project, err := service.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	if _, err = service.AddItem(ctx, project.ID, models.SectionBuy, itemInput("Cement", 10, 500)); err != nil {
		t.Fatalf("add buy item: %v", err)
	}
	if _, err = service.AddPayment(ctx, project.ID, models.SectionGive, paymentInput(700)); err != nil {
		t.Fatalf("add give payment: %v", err)
	}

	statement, err := service.Statement(ctx, project.ID)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}

	if !statement.Buy.Balance.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected buy balance 5000, got %s", statement.Buy.Balance)
	}
	if !statement.Give.Balance.Equal(decimal.NewFromInt(-700)) {
		t.Fatalf("expected give balance -700, got %s", statement.Give.Balance)
	}
}

// TestEventsPublished проверяет публикацию событий на мутациях.
func TestEventsPublished(t *testing.T) {
	ctx := context.Background()
	service, publisher := newTestService()

	project, err := service.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	project, err = service.AddItem(ctx, project.ID, models.SectionBuy, itemInput("Cement", 10, 500))
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if _, err := service.DeleteItem(ctx, project.ID, models.SectionBuy, project.BuyItems[0].ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	want := []string{"project_created", "item_added", "item_deleted"}
	got := publisher.actions()
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if publisher.events[1].ProjectID != project.ID || publisher.events[1].Section != "buy" {
		t.Fatalf("unexpected item_added payload: %+v", publisher.events[1])
	}
}

// TestOverview проверяет сводку по нескольким проектам.
func TestOverview(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	first, err := service.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create first project: %v", err)
	}
	second, err := service.CreateProject(ctx, "Beta")
	if err != nil {
		t.Fatalf("create second project: %v", err)
	}

	if _, err := service.AddItem(ctx, first.ID, models.SectionBuy, itemInput("Cement", 10, 500)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := service.AddPayment(ctx, first.ID, models.SectionBuy, paymentInput(2000)); err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if _, err := service.AddItem(ctx, second.ID, models.SectionGive, itemInput("Steel", 2, 350)); err != nil {
		t.Fatalf("add give item: %v", err)
	}

	stats, err := service.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if stats.TotalProjects != 2 {
		t.Fatalf("expected 2 projects, got %d", stats.TotalProjects)
	}
	if !stats.BuyItemsCost.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected buy items cost 5000, got %s", stats.BuyItemsCost)
	}
	if !stats.BuyPaid.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected buy paid 2000, got %s", stats.BuyPaid)
	}
	if !stats.GiveItemsCost.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("expected give items cost 700, got %s", stats.GiveItemsCost)
	}
}
