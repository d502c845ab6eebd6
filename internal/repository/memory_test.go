package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahsan757/trader/internal/models"
)

func testItem(name string, quantity, rate int64) models.Item {
	q := decimal.NewFromInt(quantity)
	r := decimal.NewFromInt(rate)
	return models.Item{
		ID:          uuid.New(),
		Name:        name,
		Quantity:    q,
		Rate:        r,
		TotalAmount: q.Mul(r),
		CreatedAt:   time.Now().UTC(),
	}
}

func testPayment(amount int64) models.Payment {
	return models.Payment{
		ID:        uuid.New(),
		Type:      models.PaymentTypeCash,
		Date:      time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Purpose:   "advance",
		Amount:    decimal.NewFromInt(amount),
		CreatedAt: time.Now().UTC(),
	}
}

// TestMemoryStoreListOrder проверяет порядок списка от новых к старым.
func TestMemoryStoreListOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		if _, err := store.CreateProject(ctx, name); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	projects, err := store.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(projects) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(projects))
	}
	if projects[0].Name != "Gamma" || projects[2].Name != "Alpha" {
		t.Fatalf("unexpected order: %s, %s, %s", projects[0].Name, projects[1].Name, projects[2].Name)
	}
}

// TestMemoryStoreAppendTail проверяет добавление в хвост с нумерацией порядка.
func TestMemoryStoreAppendTail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	project, err := store.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	project, err = store.AppendItem(ctx, project.ID, models.SectionBuy, testItem("Cement", 10, 500))
	if err != nil {
		t.Fatalf("append first: %v", err)
	}
	project, err = store.AppendItem(ctx, project.ID, models.SectionBuy, testItem("Bricks", 3, 100))
	if err != nil {
		t.Fatalf("append second: %v", err)
	}

	if len(project.BuyItems) != 2 {
		t.Fatalf("expected 2 items, got %d", len(project.BuyItems))
	}
	if project.BuyItems[0].SortOrder != 0 || project.BuyItems[1].SortOrder != 1 {
		t.Fatalf("unexpected sort orders: %d, %d", project.BuyItems[0].SortOrder, project.BuyItems[1].SortOrder)
	}
	if project.BuyItems[1].Name != "Bricks" {
		t.Fatalf("expected Bricks at tail, got %s", project.BuyItems[1].Name)
	}
}

// TestMemoryStoreReplaceKeepsPlace проверяет правку на месте.
func TestMemoryStoreReplaceKeepsPlace(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	project, err := store.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first := testItem("Cement", 10, 500)
	if _, err := store.AppendItem(ctx, project.ID, models.SectionBuy, first); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if _, err := store.AppendItem(ctx, project.ID, models.SectionBuy, testItem("Bricks", 3, 100)); err != nil {
		t.Fatalf("append second: %v", err)
	}

	project, err = store.ReplaceItem(ctx, project.ID, models.SectionBuy, first.ID, testItem("Sand", 2, 50))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	if project.BuyItems[0].ID != first.ID {
		t.Fatal("expected item id to survive replace")
	}
	if project.BuyItems[0].Name != "Sand" || project.BuyItems[0].SortOrder != 0 {
		t.Fatalf("unexpected replaced item: %+v", project.BuyItems[0])
	}
}

// TestMemoryStoreReplaceMissing проверяет ErrNotFound на чужом идентификаторе.
func TestMemoryStoreReplaceMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	project, err := store.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.ReplaceItem(ctx, project.ID, models.SectionBuy, uuid.New(), testItem("Sand", 2, 50)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestMemoryStoreRemoveShifts проверяет сдвиг порядка после удаления.
func TestMemoryStoreRemoveShifts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	project, err := store.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	middle := testItem("Bricks", 3, 100)
	if _, err := store.AppendItem(ctx, project.ID, models.SectionBuy, testItem("Cement", 10, 500)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := store.AppendItem(ctx, project.ID, models.SectionBuy, middle); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := store.AppendItem(ctx, project.ID, models.SectionBuy, testItem("Sand", 2, 50)); err != nil {
		t.Fatalf("append: %v", err)
	}

	project, err = store.RemoveItem(ctx, project.ID, models.SectionBuy, middle.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}

	if len(project.BuyItems) != 2 {
		t.Fatalf("expected 2 items, got %d", len(project.BuyItems))
	}
	for i, item := range project.BuyItems {
		if item.SortOrder != i {
			t.Fatalf("expected sort order %d, got %d", i, item.SortOrder)
		}
	}
}

// TestMemoryStoreRemovePaymentMissing проверяет ErrNotFound на чужом платеже.
func TestMemoryStoreRemovePaymentMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	project, err := store.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.RemovePayment(ctx, project.ID, models.SectionBuy, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestMemoryStoreDeleteIdempotent проверяет идемпотентность удаления проекта.
func TestMemoryStoreDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	project, err := store.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("repeated delete: %v", err)
	}

	if _, err := store.GetProject(ctx, project.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestMemoryStoreCloneIsolation проверяет, что наружу уходят копии.
func TestMemoryStoreCloneIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	returned, err := store.AppendItem(ctx, created.ID, models.SectionBuy, testItem("Cement", 10, 500))
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	returned.BuyItems[0].Name = "Mutated"

	fresh, err := store.GetProject(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.BuyItems[0].Name != "Cement" {
		t.Fatalf("store state leaked: %s", fresh.BuyItems[0].Name)
	}
}

// TestMemoryStoreOverview проверяет сводку по платежам и позициям.
func TestMemoryStoreOverview(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	project, err := store.CreateProject(ctx, "Alpha")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.AppendItem(ctx, project.ID, models.SectionBuy, testItem("Cement", 10, 500)); err != nil {
		t.Fatalf("append item: %v", err)
	}
	if _, err := store.AppendPayment(ctx, project.ID, models.SectionGive, testPayment(700)); err != nil {
		t.Fatalf("append payment: %v", err)
	}

	stats, err := store.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if stats.TotalProjects != 1 {
		t.Fatalf("expected 1 project, got %d", stats.TotalProjects)
	}
	if !stats.BuyItemsCost.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected buy items cost 5000, got %s", stats.BuyItemsCost)
	}
	if !stats.GivePaid.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("expected give paid 700, got %s", stats.GivePaid)
	}
}
