package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-desk/internal/domain"
)

// CatalogRepository reads the equipment/client catalog. The catalog is
// owned by the dashboard side; this service never writes it.
type CatalogRepository interface {
	List(ctx context.Context) ([]domain.CatalogEntry, error)
}

type catalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository instantiates the repository.
func NewCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepository{pool: pool}
}

func (r *catalogRepository) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	const query = `
        SELECT id, name, brand, model, client_name
        FROM catalog_entries ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CatalogEntry
	for rows.Next() {
		var entry domain.CatalogEntry
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Brand, &entry.Model, &entry.ClientName); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
