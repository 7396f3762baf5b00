package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-desk/internal/domain"
)

func TestMemoryFindMaxNumber(t *testing.T) {
	repo := NewMemoryOrderRepository()
	repo.Seed(domain.ServiceOrder{Number: "TKT-20260901-001"})
	repo.Seed(domain.ServiceOrder{Number: "TKT-20260901-003"})
	repo.Seed(domain.ServiceOrder{Number: "TKT-20260831-009"})

	max, err := repo.FindMaxNumber(context.Background(), "TKT", "20260901")
	require.NoError(t, err)
	assert.Equal(t, "TKT-20260901-003", max)
}

func TestMemoryFindMaxNumberPastPadWidth(t *testing.T) {
	repo := NewMemoryOrderRepository()
	repo.Seed(domain.ServiceOrder{Number: "TKT-20260901-999"})
	repo.Seed(domain.ServiceOrder{Number: "TKT-20260901-1000"})

	max, err := repo.FindMaxNumber(context.Background(), "TKT", "20260901")
	require.NoError(t, err)
	assert.Equal(t, "TKT-20260901-1000", max, "a longer sequence outranks a lexicographically larger one")
}
