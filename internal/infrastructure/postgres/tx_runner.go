package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/onu-almacen-api/internal/application/ports"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los constraints diferidos se verifican en el Commit, por eso su error también se traduce.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Set) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewSet(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewSet repositorios sobre un mismo Querier (tx o pool).
func NewSet(q Querier) repository.Set {
	return repository.Set{
		Equipment:     NewEquipmentRepository(q),
		History:       NewHistoryRepository(q),
		Retired:       NewRetiredRepository(q),
		Batches:       NewBatchRepository(q),
		Deliveries:    NewDeliveryRepository(q),
		Returns:       NewReturnRepository(q),
		Inspections:   NewInspectionRepository(q),
		SectorReturns: NewSectorReturnRepository(q),
		Warehouses:    NewWarehouseRepository(q),
		Models:        NewModelRepository(q),
	}
}
