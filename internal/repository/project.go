package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ahsan757/trader/internal/models"
)

type ProjectRepository struct {
	db *pgxpool.Pool
}

// NewProjectRepository создает репозиторий проектов поверх PostgreSQL.
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ListProjects возвращает проекты по убыванию времени создания.
func (r *ProjectRepository) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, created_at
		 FROM projects
		 ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var project models.Project
		if err := rows.Scan(&project.ID, &project.Name, &project.CreatedAt); err != nil {
			return nil, storeError(err)
		}
		initCollections(&project)
		index[project.ID] = len(projects)
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}

	itemRows, err := r.db.Query(ctx,
		`SELECT project_id, id, section, name, quantity, rate, total_amount, sort_order, created_at
		 FROM ledger_items
		 ORDER BY project_id, section, sort_order`,
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var projectID uuid.UUID
		var section string
		var item models.Item
		err := itemRows.Scan(&projectID, &item.ID, &section, &item.Name, &item.Quantity, &item.Rate, &item.TotalAmount, &item.SortOrder, &item.CreatedAt)
		if err != nil {
			return nil, storeError(err)
		}
		if idx, ok := index[projectID]; ok {
			appendItem(&projects[idx], models.Section(section), item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, storeError(err)
	}

	paymentRows, err := r.db.Query(ctx,
		`SELECT project_id, id, section, payment_type, paid_on, purpose, amount, sort_order, created_at
		 FROM ledger_payments
		 ORDER BY project_id, section, sort_order`,
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer paymentRows.Close()

	for paymentRows.Next() {
		var projectID uuid.UUID
		var section string
		var payment models.Payment
		err := paymentRows.Scan(&projectID, &payment.ID, &section, &payment.Type, &payment.Date, &payment.Purpose, &payment.Amount, &payment.SortOrder, &payment.CreatedAt)
		if err != nil {
			return nil, storeError(err)
		}
		if idx, ok := index[projectID]; ok {
			appendPayment(&projects[idx], models.Section(section), payment)
		}
	}
	if err := paymentRows.Err(); err != nil {
		return nil, storeError(err)
	}

	return projects, nil
}

// CreateProject создает проект с пустыми коллекциями.
func (r *ProjectRepository) CreateProject(ctx context.Context, name string) (models.Project, error) {
	var project models.Project

	err := r.db.QueryRow(ctx,
		`INSERT INTO projects (id, name)
		 VALUES ($1, $2)
		 RETURNING id, name, created_at`,
		uuid.New(), name,
	).Scan(&project.ID, &project.Name, &project.CreatedAt)
	if err != nil {
		return project, storeError(err)
	}

	initCollections(&project)
	return project, nil
}

// GetProject возвращает проект по идентификатору.
func (r *ProjectRepository) GetProject(ctx context.Context, projectID uuid.UUID) (models.Project, error) {
	return loadProject(ctx, r.db, projectID)
}

// DeleteProject удаляет проект каскадно. Отсутствующий проект не ошибка.
func (r *ProjectRepository) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	return storeError(err)
}

// AppendItem добавляет позицию в хвост секции.
func (r *ProjectRepository) AppendItem(ctx context.Context, projectID uuid.UUID, section models.Section, item models.Item) (models.Project, error) {
	var project models.Project

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return project, storeError(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockProject(ctx, tx, projectID); err != nil {
		return project, err
	}

	var sortOrder int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) + 1
		 FROM ledger_items
		 WHERE project_id = $1 AND section = $2`,
		projectID, section,
	).Scan(&sortOrder)
	if err != nil {
		return project, storeError(err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO ledger_items (id, project_id, section, name, quantity, rate, total_amount, sort_order, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, projectID, section, item.Name, item.Quantity, item.Rate, item.TotalAmount, sortOrder, item.CreatedAt,
	)
	if err != nil {
		return project, storeError(err)
	}

	project, err = loadProject(ctx, tx, projectID)
	if err != nil {
		return project, err
	}

	return project, storeError(tx.Commit(ctx))
}

// ReplaceItem перезаписывает поля позиции, сохраняя место в секции.
func (r *ProjectRepository) ReplaceItem(ctx context.Context, projectID uuid.UUID, section models.Section, itemID uuid.UUID, item models.Item) (models.Project, error) {
	var project models.Project

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return project, storeError(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockProject(ctx, tx, projectID); err != nil {
		return project, err
	}

	cmd, err := tx.Exec(ctx,
		`UPDATE ledger_items
		 SET name = $4,
		     quantity = $5,
		     rate = $6,
		     total_amount = $7
		 WHERE id = $3 AND project_id = $1 AND section = $2`,
		projectID, section, itemID, item.Name, item.Quantity, item.Rate, item.TotalAmount,
	)
	if err != nil {
		return project, storeError(err)
	}
	if cmd.RowsAffected() == 0 {
		return project, ErrNotFound
	}

	project, err = loadProject(ctx, tx, projectID)
	if err != nil {
		return project, err
	}

	return project, storeError(tx.Commit(ctx))
}

// RemoveItem удаляет позицию и сдвигает последующие на одну позицию вниз.
func (r *ProjectRepository) RemoveItem(ctx context.Context, projectID uuid.UUID, section models.Section, itemID uuid.UUID) (models.Project, error) {
	var project models.Project

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return project, storeError(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockProject(ctx, tx, projectID); err != nil {
		return project, err
	}

	var removedOrder int
	err = tx.QueryRow(ctx,
		`DELETE FROM ledger_items
		 WHERE id = $3 AND project_id = $1 AND section = $2
		 RETURNING sort_order`,
		projectID, section, itemID,
	).Scan(&removedOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project, ErrNotFound
		}
		return project, storeError(err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE ledger_items
		 SET sort_order = sort_order - 1
		 WHERE project_id = $1 AND section = $2 AND sort_order > $3`,
		projectID, section, removedOrder,
	)
	if err != nil {
		return project, storeError(err)
	}

	project, err = loadProject(ctx, tx, projectID)
	if err != nil {
		return project, err
	}

	return project, storeError(tx.Commit(ctx))
}

// AppendPayment добавляет платеж в хвост секции.
func (r *ProjectRepository) AppendPayment(ctx context.Context, projectID uuid.UUID, section models.Section, payment models.Payment) (models.Project, error) {
	var project models.Project

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return project, storeError(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockProject(ctx, tx, projectID); err != nil {
		return project, err
	}

	var sortOrder int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) + 1
		 FROM ledger_payments
		 WHERE project_id = $1 AND section = $2`,
		projectID, section,
	).Scan(&sortOrder)
	if err != nil {
		return project, storeError(err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO ledger_payments (id, project_id, section, payment_type, paid_on, purpose, amount, sort_order, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		payment.ID, projectID, section, payment.Type, payment.Date, payment.Purpose, payment.Amount, sortOrder, payment.CreatedAt,
	)
	if err != nil {
		return project, storeError(err)
	}

	project, err = loadProject(ctx, tx, projectID)
	if err != nil {
		return project, err
	}

	return project, storeError(tx.Commit(ctx))
}

// RemovePayment удаляет платеж и сдвигает последующие вниз.
func (r *ProjectRepository) RemovePayment(ctx context.Context, projectID uuid.UUID, section models.Section, paymentID uuid.UUID) (models.Project, error) {
	var project models.Project

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return project, storeError(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockProject(ctx, tx, projectID); err != nil {
		return project, err
	}

	var removedOrder int
	err = tx.QueryRow(ctx,
		`DELETE FROM ledger_payments
		 WHERE id = $3 AND project_id = $1 AND section = $2
		 RETURNING sort_order`,
		projectID, section, paymentID,
	).Scan(&removedOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project, ErrNotFound
		}
		return project, storeError(err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE ledger_payments
		 SET sort_order = sort_order - 1
		 WHERE project_id = $1 AND section = $2 AND sort_order > $3`,
		projectID, section, removedOrder,
	)
	if err != nil {
		return project, storeError(err)
	}

	project, err = loadProject(ctx, tx, projectID)
	if err != nil {
		return project, err
	}

	return project, storeError(tx.Commit(ctx))
}

// Overview возвращает сводные суммы по всем проектам.
func (r *ProjectRepository) Overview(ctx context.Context) (OverviewStats, error) {
	var stats OverviewStats

	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&stats.TotalProjects)
	if err != nil {
		return stats, storeError(err)
	}

	err = r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_amount) FILTER (WHERE section = 'buy'), 0),
		        COALESCE(SUM(total_amount) FILTER (WHERE section = 'give'), 0)
		 FROM ledger_items`,
	).Scan(&stats.BuyItemsCost, &stats.GiveItemsCost)
	if err != nil {
		return stats, storeError(err)
	}

	err = r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount) FILTER (WHERE section = 'buy'), 0),
		        COALESCE(SUM(amount) FILTER (WHERE section = 'give'), 0)
		 FROM ledger_payments`,
	).Scan(&stats.BuyPaid, &stats.GivePaid)
	if err != nil {
		return stats, storeError(err)
	}

	return stats, nil
}

func lockProject(ctx context.Context, q queryer, projectID uuid.UUID) error {
	var one int
	err := q.QueryRow(ctx,
		`SELECT 1 FROM projects WHERE id = $1 FOR UPDATE`,
		projectID,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return storeError(err)
	}

	return nil
}

func loadProject(ctx context.Context, q queryer, projectID uuid.UUID) (models.Project, error) {
	var project models.Project

	err := q.QueryRow(ctx,
		`SELECT id, name, created_at FROM projects WHERE id = $1`,
		projectID,
	).Scan(&project.ID, &project.Name, &project.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project, ErrNotFound
		}
		return project, storeError(err)
	}

	initCollections(&project)

	itemRows, err := q.Query(ctx,
		`SELECT id, section, name, quantity, rate, total_amount, sort_order, created_at
		 FROM ledger_items
		 WHERE project_id = $1
		 ORDER BY section, sort_order`,
		projectID,
	)
	if err != nil {
		return project, storeError(err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var section string
		var item models.Item
		err := itemRows.Scan(&item.ID, &section, &item.Name, &item.Quantity, &item.Rate, &item.TotalAmount, &item.SortOrder, &item.CreatedAt)
		if err != nil {
			return project, storeError(err)
		}
		appendItem(&project, models.Section(section), item)
	}
	if err := itemRows.Err(); err != nil {
		return project, storeError(err)
	}

	paymentRows, err := q.Query(ctx,
		`SELECT id, section, payment_type, paid_on, purpose, amount, sort_order, created_at
		 FROM ledger_payments
		 WHERE project_id = $1
		 ORDER BY section, sort_order`,
		projectID,
	)
	if err != nil {
		return project, storeError(err)
	}
	defer paymentRows.Close()

	for paymentRows.Next() {
		var section string
		var payment models.Payment
		err := paymentRows.Scan(&payment.ID, &section, &payment.Type, &payment.Date, &payment.Purpose, &payment.Amount, &payment.SortOrder, &payment.CreatedAt)
		if err != nil {
			return project, storeError(err)
		}
		appendPayment(&project, models.Section(section), payment)
	}
	if err := paymentRows.Err(); err != nil {
		return project, storeError(err)
	}

	return project, nil
}

func initCollections(project *models.Project) {
	project.BuyItems = make([]models.Item, 0)
	project.BuyPayments = make([]models.Payment, 0)
	project.GiveItems = make([]models.Item, 0)
	project.GivePayments = make([]models.Payment, 0)
}

func appendItem(project *models.Project, section models.Section, item models.Item) {
	if section == models.SectionGive {
		project.GiveItems = append(project.GiveItems, item)
		return
	}
	project.BuyItems = append(project.BuyItems, item)
}

func appendPayment(project *models.Project, section models.Section, payment models.Payment) {
	if section == models.SectionGive {
		project.GivePayments = append(project.GivePayments, payment)
		return
	}
	project.BuyPayments = append(project.BuyPayments, payment)
}

func storeError(err error) error {
	if err == nil {
		return nil
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return err
}

var _ ProjectStore = (*ProjectRepository)(nil)
