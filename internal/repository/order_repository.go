package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-desk/internal/domain"
)

// StaleFilter captures the reminder sweep query parameters.
type StaleFilter struct {
	UpdatedBefore     time.Time
	ExcludeStates     []domain.OrderState
	Priorities        []domain.OrderPriority
	ExcludePriorities []domain.OrderPriority
}

// StateCount is one row of the status aggregation.
type StateCount struct {
	State    domain.OrderState
	Priority domain.OrderPriority
	Count    int
}

// OrderRepository encapsulates service order persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.ServiceOrder) error
	Update(ctx context.Context, order *domain.ServiceOrder) error
	GetByNumber(ctx context.Context, number string) (*domain.ServiceOrder, error)
	FindMaxNumber(ctx context.Context, prefix, datePattern string) (string, error)
	ListStale(ctx context.Context, filter StaleFilter) ([]domain.ServiceOrder, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]domain.ServiceOrder, error)
	CountByStatePriority(ctx context.Context) ([]StateCount, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates the repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

// IsDuplicateNumber reports whether err is the unique violation raised
// when two creators computed the same document number.
func IsDuplicateNumber(err error) bool {
	if errors.Is(err, ErrDuplicateNumber) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const orderColumns = `id, number, description, priority, state, technician,
               equipment_id, equipment_name, component, channel, contact, notes,
               created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.ServiceOrder) error {
	const query = `
        INSERT INTO service_orders (number, description, priority, state, technician,
            equipment_id, equipment_name, component, channel, contact, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		order.Number,
		order.Description,
		order.Priority,
		order.State,
		order.Technician,
		order.EquipmentID,
		order.EquipmentName,
		order.Component,
		order.Channel,
		order.Contact,
		order.Notes,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

func (r *orderRepository) Update(ctx context.Context, order *domain.ServiceOrder) error {
	const query = `
        UPDATE service_orders SET state=$1, technician=$2, notes=$3, updated_at=NOW()
        WHERE number=$4`
	cmd, err := r.pool.Exec(ctx, query,
		order.State,
		order.Technician,
		order.Notes,
		order.Number,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	order.UpdatedAt = time.Now()
	return nil
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*domain.ServiceOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_orders WHERE number=$1`, orderColumns)
	var order domain.ServiceOrder
	if err := r.pool.QueryRow(ctx, query, number).Scan(
		&order.ID,
		&order.Number,
		&order.Description,
		&order.Priority,
		&order.State,
		&order.Technician,
		&order.EquipmentID,
		&order.EquipmentName,
		&order.Component,
		&order.Channel,
		&order.Contact,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindMaxNumber(ctx context.Context, prefix, datePattern string) (string, error) {
	// Sequences past the zero-pad width grow a digit, so a plain
	// MAX(number) would stick at e.g. -999. Longer number wins first,
	// text order breaks ties within a width.
	const query = `
        SELECT number FROM service_orders WHERE number LIKE $1
        ORDER BY length(number) DESC, number DESC LIMIT 1`
	pattern := prefix + "-" + datePattern + "-%"
	var max string
	if err := r.pool.QueryRow(ctx, query, pattern).Scan(&max); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return max, nil
}

func (r *orderRepository) ListStale(ctx context.Context, filter StaleFilter) ([]domain.ServiceOrder, error) {
	clauses := []string{"updated_at < $1"}
	args := []any{filter.UpdatedBefore}

	if len(filter.ExcludeStates) > 0 {
		placeholders := make([]string, len(filter.ExcludeStates))
		for i, state := range filter.ExcludeStates {
			args = append(args, state)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("state NOT IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.ExcludePriorities) > 0 {
		placeholders := make([]string, len(filter.ExcludePriorities))
		for i, pr := range filter.ExcludePriorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority NOT IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM service_orders WHERE %s ORDER BY updated_at ASC`,
		orderColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *orderRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]domain.ServiceOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_orders WHERE created_at >= $1 ORDER BY created_at ASC`, orderColumns)
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *orderRepository) CountByStatePriority(ctx context.Context) ([]StateCount, error) {
	const query = `
        SELECT state, priority, COUNT(*) FROM service_orders
        GROUP BY state, priority ORDER BY state, priority`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StateCount
	for rows.Next() {
		var sc StateCount
		if err := rows.Scan(&sc.State, &sc.Priority, &sc.Count); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

func scanOrders(rows pgx.Rows) ([]domain.ServiceOrder, error) {
	var result []domain.ServiceOrder
	for rows.Next() {
		var order domain.ServiceOrder
		if err := rows.Scan(
			&order.ID,
			&order.Number,
			&order.Description,
			&order.Priority,
			&order.State,
			&order.Technician,
			&order.EquipmentID,
			&order.EquipmentName,
			&order.Component,
			&order.Channel,
			&order.Contact,
			&order.Notes,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, rows.Err()
}
