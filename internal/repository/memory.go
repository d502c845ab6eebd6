package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahsan757/trader/internal/models"
)

// MemoryStore хранит проекты в памяти. Потокобезопасен; наружу отдает
// глубокие копии, чтобы вызывающий код не менял внутреннее состояние.
type MemoryStore struct {
	mu       sync.Mutex
	seq      int
	projects map[uuid.UUID]*memoryProject
}

type memoryProject struct {
	seq     int
	project models.Project
}

// NewMemoryStore создает пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[uuid.UUID]*memoryProject),
	}
}

// ListProjects возвращает проекты от новых к старым.
func (m *MemoryStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]*memoryProject, 0, len(m.projects))
	for _, entry := range m.projects {
		stored = append(stored, entry)
	}
	sort.Slice(stored, func(i, j int) bool {
		return stored[i].seq > stored[j].seq
	})

	projects := make([]models.Project, 0, len(stored))
	for _, entry := range stored {
		projects = append(projects, cloneProject(entry.project))
	}

	return projects, nil
}

// CreateProject создает проект с пустыми коллекциями.
func (m *MemoryStore) CreateProject(ctx context.Context, name string) (models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	project := models.Project{
		ID:           uuid.New(),
		Name:         name,
		BuyItems:     make([]models.Item, 0),
		BuyPayments:  make([]models.Payment, 0),
		GiveItems:    make([]models.Item, 0),
		GivePayments: make([]models.Payment, 0),
		CreatedAt:    time.Now().UTC(),
	}

	m.seq++
	m.projects[project.ID] = &memoryProject{seq: m.seq, project: project}

	return cloneProject(project), nil
}

// GetProject возвращает проект по идентификатору.
func (m *MemoryStore) GetProject(ctx context.Context, projectID uuid.UUID) (models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.projects[projectID]
	if !ok {
		return models.Project{}, ErrNotFound
	}

	return cloneProject(entry.project), nil
}

// DeleteProject удаляет проект. Повторное удаление не ошибка.
func (m *MemoryStore) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.projects, projectID)
	return nil
}

// AppendItem добавляет позицию в хвост секции.
func (m *MemoryStore) AppendItem(ctx context.Context, projectID uuid.UUID, section models.Section, item models.Item) (models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.projects[projectID]
	if !ok {
		return models.Project{}, ErrNotFound
	}

	if section == models.SectionGive {
		item.SortOrder = len(entry.project.GiveItems)
		entry.project.GiveItems = append(entry.project.GiveItems, item)
	} else {
		item.SortOrder = len(entry.project.BuyItems)
		entry.project.BuyItems = append(entry.project.BuyItems, item)
	}

	return cloneProject(entry.project), nil
}

// ReplaceItem перезаписывает поля позиции, сохраняя место в секции.
func (m *MemoryStore) ReplaceItem(ctx context.Context, projectID uuid.UUID, section models.Section, itemID uuid.UUID, item models.Item) (models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.projects[projectID]
	if !ok {
		return models.Project{}, ErrNotFound
	}

	items := entry.project.BuyItems
	if section == models.SectionGive {
		items = entry.project.GiveItems
	}

	for i := range items {
		if items[i].ID == itemID {
			items[i].Name = item.Name
			items[i].Quantity = item.Quantity
			items[i].Rate = item.Rate
			items[i].TotalAmount = item.TotalAmount
			return cloneProject(entry.project), nil
		}
	}

	return models.Project{}, ErrNotFound
}

// RemoveItem удаляет позицию и сдвигает последующие вниз.
func (m *MemoryStore) RemoveItem(ctx context.Context, projectID uuid.UUID, section models.Section, itemID uuid.UUID) (models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.projects[projectID]
	if !ok {
		return models.Project{}, ErrNotFound
	}

	items := entry.project.Items(section)
	idx := -1
	for i := range items {
		if items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Project{}, ErrNotFound
	}

	items = append(items[:idx], items[idx+1:]...)
	for i := range items {
		items[i].SortOrder = i
	}

	if section == models.SectionGive {
		entry.project.GiveItems = items
	} else {
		entry.project.BuyItems = items
	}

	return cloneProject(entry.project), nil
}

// AppendPayment добавляет платеж в хвост секции.
func (m *MemoryStore) AppendPayment(ctx context.Context, projectID uuid.UUID, section models.Section, payment models.Payment) (models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.projects[projectID]
	if !ok {
		return models.Project{}, ErrNotFound
	}

	if section == models.SectionGive {
		payment.SortOrder = len(entry.project.GivePayments)
		entry.project.GivePayments = append(entry.project.GivePayments, payment)
	} else {
		payment.SortOrder = len(entry.project.BuyPayments)
		entry.project.BuyPayments = append(entry.project.BuyPayments, payment)
	}

	return cloneProject(entry.project), nil
}

// RemovePayment удаляет платеж и сдвигает последующие вниз.
func (m *MemoryStore) RemovePayment(ctx context.Context, projectID uuid.UUID, section models.Section, paymentID uuid.UUID) (models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.projects[projectID]
	if !ok {
		return models.Project{}, ErrNotFound
	}

	payments := entry.project.Payments(section)
	idx := -1
	for i := range payments {
		if payments[i].ID == paymentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Project{}, ErrNotFound
	}

	payments = append(payments[:idx], payments[idx+1:]...)
	for i := range payments {
		payments[i].SortOrder = i
	}

	if section == models.SectionGive {
		entry.project.GivePayments = payments
	} else {
		entry.project.BuyPayments = payments
	}

	return cloneProject(entry.project), nil
}

// Overview возвращает сводные суммы по всем проектам.
func (m *MemoryStore) Overview(ctx context.Context) (OverviewStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := OverviewStats{}
	for _, entry := range m.projects {
		stats.TotalProjects++

		buy := models.Summarize(entry.project, models.SectionBuy)
		give := models.Summarize(entry.project, models.SectionGive)

		stats.BuyItemsCost = stats.BuyItemsCost.Add(buy.TotalItemsCost)
		stats.BuyPaid = stats.BuyPaid.Add(buy.TotalPaid)
		stats.GiveItemsCost = stats.GiveItemsCost.Add(give.TotalItemsCost)
		stats.GivePaid = stats.GivePaid.Add(give.TotalPaid)
	}

	return stats, nil
}

func cloneProject(project models.Project) models.Project {
	clone := project
	clone.BuyItems = append(make([]models.Item, 0, len(project.BuyItems)), project.BuyItems...)
	clone.BuyPayments = append(make([]models.Payment, 0, len(project.BuyPayments)), project.BuyPayments...)
	clone.GiveItems = append(make([]models.Item, 0, len(project.GiveItems)), project.GiveItems...)
	clone.GivePayments = append(make([]models.Payment, 0, len(project.GivePayments)), project.GivePayments...)
	return clone
}

var _ ProjectStore = (*MemoryStore)(nil)
