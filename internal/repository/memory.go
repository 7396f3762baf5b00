package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-desk/internal/domain"
)

// MemoryOrderRepository is an in-memory OrderRepository used by tests
// and local development without a database. It mirrors the uniqueness
// semantics of the SQL schema, including the duplicate-number conflict.
type MemoryOrderRepository struct {
	mu     sync.Mutex
	seq    int
	orders map[string]*domain.ServiceOrder

	// FailCreate forces Create to return an error, for exercising the
	// degraded intake path.
	FailCreate error
}

// NewMemoryOrderRepository builds an empty in-memory repository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*domain.ServiceOrder)}
}

var _ OrderRepository = (*MemoryOrderRepository)(nil)

// ErrDuplicateNumber mirrors the SQL unique violation for tests.
var ErrDuplicateNumber = fmt.Errorf("duplicate order number")

func (m *MemoryOrderRepository) Create(ctx context.Context, order *domain.ServiceOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreate != nil {
		return m.FailCreate
	}
	if _, exists := m.orders[order.Number]; exists {
		return ErrDuplicateNumber
	}
	m.seq++
	order.ID = fmt.Sprintf("mem-%d", m.seq)
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt
	clone := *order
	m.orders[order.Number] = &clone
	return nil
}

func (m *MemoryOrderRepository) Update(ctx context.Context, order *domain.ServiceOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[order.Number]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.State = order.State
	stored.Technician = order.Technician
	stored.Notes = order.Notes
	stored.UpdatedAt = time.Now()
	order.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemoryOrderRepository) GetByNumber(ctx context.Context, number string) (*domain.ServiceOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (m *MemoryOrderRepository) FindMaxNumber(ctx context.Context, prefix, datePattern string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	like := prefix + "-" + datePattern + "-"
	max := ""
	for number := range m.orders {
		if !strings.HasPrefix(number, like) {
			continue
		}
		// Length before text, matching the SQL ordering: sequences past
		// the zero-pad width grow a digit.
		if len(number) > len(max) || (len(number) == len(max) && number > max) {
			max = number
		}
	}
	return max, nil
}

func (m *MemoryOrderRepository) ListStale(ctx context.Context, filter StaleFilter) ([]domain.ServiceOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.ServiceOrder
	for _, stored := range m.orders {
		if !stored.UpdatedAt.Before(filter.UpdatedBefore) {
			continue
		}
		if containsState(filter.ExcludeStates, stored.State) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, stored.Priority) {
			continue
		}
		if containsPriority(filter.ExcludePriorities, stored.Priority) {
			continue
		}
		result = append(result, *stored)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.Before(result[j].UpdatedAt) })
	return result, nil
}

func (m *MemoryOrderRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]domain.ServiceOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.ServiceOrder
	for _, stored := range m.orders {
		if stored.CreatedAt.Before(since) {
			continue
		}
		result = append(result, *stored)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *MemoryOrderRepository) CountByStatePriority(ctx context.Context) ([]StateCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]*StateCount)
	for _, stored := range m.orders {
		key := string(stored.State) + "|" + string(stored.Priority)
		if sc, ok := counts[key]; ok {
			sc.Count++
			continue
		}
		counts[key] = &StateCount{State: stored.State, Priority: stored.Priority, Count: 1}
	}
	result := make([]StateCount, 0, len(counts))
	for _, sc := range counts {
		result = append(result, *sc)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].State != result[j].State {
			return result[i].State < result[j].State
		}
		return result[i].Priority < result[j].Priority
	})
	return result, nil
}

// Seed inserts an order bypassing Create semantics, for test setup.
func (m *MemoryOrderRepository) Seed(order domain.ServiceOrder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if order.ID == "" {
		order.ID = fmt.Sprintf("mem-%d", m.seq)
	}
	m.orders[order.Number] = &order
}

func containsState(states []domain.OrderState, state domain.OrderState) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

func containsPriority(priorities []domain.OrderPriority, priority domain.OrderPriority) bool {
	for _, p := range priorities {
		if p == priority {
			return true
		}
	}
	return false
}

// MemoryCatalogRepository is an in-memory CatalogRepository for tests.
type MemoryCatalogRepository struct {
	Entries []domain.CatalogEntry
	Fail    error
}

var _ CatalogRepository = (*MemoryCatalogRepository)(nil)

func (m *MemoryCatalogRepository) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	if m.Fail != nil {
		return nil, m.Fail
	}
	return append([]domain.CatalogEntry{}, m.Entries...), nil
}
