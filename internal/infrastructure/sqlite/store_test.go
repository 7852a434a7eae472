package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
	"github.com/jhoicas/onu-almacen-api/internal/infrastructure/sqlite"
)

func TestOpen_PersisteEntreReinicios(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "almacen.db")

	s, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	var batchID int64
	require.NoError(t, s.Run(ctx, func(repos repository.Set) error {
		b := &entity.Batch{Code: "L-2024-01", Vendor: "Huawei", ExpectedQuantity: 300, UnitCost: decimal.RequireFromString("85000.50")}
		if err := repos.Batches.Create(ctx, b); err != nil {
			return err
		}
		batchID = b.ID
		return nil
	}))
	require.NoError(t, s.Close())

	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	require.NoError(t, reopened.Run(ctx, func(repos repository.Set) error {
		b, err := repos.Batches.GetByID(ctx, batchID)
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, "L-2024-01", b.Code)
		assert.True(t, decimal.RequireFromString("85000.5").Equal(b.UnitCost))
		return nil
	}))
}

func TestOpen_BaseNuevaVacia(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "vacia.db"))
	require.NoError(t, err)
	defer s.Close()
	assert.Empty(t, s.Snapshot().Batches)
}
