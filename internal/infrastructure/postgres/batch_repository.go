package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
)

var (
	_ repository.BatchRepository    = (*BatchRepo)(nil)
	_ repository.DeliveryRepository = (*DeliveryRepo)(nil)
)

const batchColumns = `id, code, vendor, expected_quantity, warehouse_id, model_id, unit_cost, notes,
	created_by, version, created_at, updated_at`

// BatchRepo implementación del puerto BatchRepository sobre PostgreSQL.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de persistencia para lotes.
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

func scanBatch(row pgx.Row, extra ...any) (*entity.Batch, error) {
	var b entity.Batch
	dest := append([]any{&b.ID, &b.Code, &b.Vendor, &b.ExpectedQuantity, &b.WarehouseID, &b.ModelID,
		&b.UnitCost, &b.Notes, &b.CreatedBy, &b.Version, &b.CreatedAt, &b.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create unit_cost viaja como NUMERIC gracias al codec pgx-shopspring-decimal.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (code, vendor, expected_quantity, warehouse_id, model_id, unit_cost, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, version, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		b.Code, b.Vendor, b.ExpectedQuantity, b.WarehouseID, b.ModelID, b.UnitCost, b.Notes, b.CreatedBy,
	).Scan(&b.ID, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return mapWriteError(err)
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepo) one(ctx context.Context, query string, arg any) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

func (r *BatchRepo) GetByID(ctx context.Context, id int64) (*entity.Batch, error) {
	return r.one(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id)
}

func (r *BatchRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Batch, error) {
	return r.one(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1 FOR UPDATE`, id)
}

func (r *BatchRepo) GetByCode(ctx context.Context, code string) (*entity.Batch, error) {
	return r.one(ctx, `SELECT `+batchColumns+` FROM batches WHERE code = $1`, code)
}

func (r *BatchRepo) List(ctx context.Context, limit, offset int) ([]*entity.Batch, int, error) {
	rows, err := r.q.Query(ctx, `SELECT `+batchColumns+`, COUNT(*) OVER ()
		FROM batches ORDER BY id LIMIT NULLIF($1, 0) OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var out []*entity.Batch
	total := 0
	for rows.Next() {
		b, err := scanBatch(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 && offset > 0 {
		if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM batches`).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count batches: %w", err)
		}
	}
	return out, total, nil
}

func (r *BatchRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

// DeliveryRepo implementación del puerto DeliveryRepository sobre PostgreSQL.
type DeliveryRepo struct {
	q Querier
}

// NewDeliveryRepository construye el adaptador de persistencia para entregas parciales.
func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

const deliveryColumns = `d.id, d.batch_id, d.number, d.delivery_date, d.declared_quantity, d.state, d.notes,
	d.created_by, d.version, d.created_at, d.updated_at,
	(SELECT COUNT(*) FROM equipment e WHERE e.delivery_id = d.id)`

func scanDelivery(row pgx.Row) (*entity.PartialDelivery, error) {
	var d entity.PartialDelivery
	var state string
	err := row.Scan(&d.ID, &d.BatchID, &d.Number, &d.DeliveryDate, &d.DeclaredQuantity, &state, &d.Notes,
		&d.CreatedBy, &d.Version, &d.CreatedAt, &d.UpdatedAt, &d.EquipmentCount)
	if err != nil {
		return nil, err
	}
	d.State = entity.DeliveryState(state)
	return &d, nil
}

// Create el número repetido en el lote se detecta al commit (constraint diferido) o aquí si ya está confirmado.
func (r *DeliveryRepo) Create(ctx context.Context, d *entity.PartialDelivery) error {
	query := `
		INSERT INTO partial_deliveries (batch_id, number, delivery_date, declared_quantity, state, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, version, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		d.BatchID, d.Number, d.DeliveryDate, d.DeclaredQuantity, string(d.State), d.Notes, d.CreatedBy,
	).Scan(&d.ID, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return mapWriteError(err)
		}
		return fmt.Errorf("insert delivery: %w", err)
	}
	d.EquipmentCount = 0
	return nil
}

func (r *DeliveryRepo) one(ctx context.Context, query string, args ...any) (*entity.PartialDelivery, error) {
	d, err := scanDelivery(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return d, nil
}

func (r *DeliveryRepo) GetByID(ctx context.Context, id int64) (*entity.PartialDelivery, error) {
	return r.one(ctx, `SELECT `+deliveryColumns+` FROM partial_deliveries d WHERE d.id = $1`, id)
}

func (r *DeliveryRepo) GetByNumber(ctx context.Context, batchID int64, number int) (*entity.PartialDelivery, error) {
	return r.one(ctx, `SELECT `+deliveryColumns+` FROM partial_deliveries d
		WHERE d.batch_id = $1 AND d.number = $2`, batchID, number)
}

func (r *DeliveryRepo) ListByBatch(ctx context.Context, batchID int64) ([]*entity.PartialDelivery, error) {
	rows, err := r.q.Query(ctx, `SELECT `+deliveryColumns+` FROM partial_deliveries d
		WHERE d.batch_id = $1 ORDER BY d.number`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()
	var out []*entity.PartialDelivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DeliveryRepo) UpdateNumber(ctx context.Context, id int64, number int) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE partial_deliveries SET number = $2, version = version + 1, updated_at = now()
		WHERE id = $1`, id, number)
	if err != nil {
		return fmt.Errorf("update delivery number: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("entrega", id)
	}
	return nil
}

func (r *DeliveryRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM partial_deliveries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete delivery: %w", err)
	}
	return nil
}

func (r *DeliveryRepo) DeleteByBatch(ctx context.Context, batchID int64) (int, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM partial_deliveries WHERE batch_id = $1`, batchID)
	if err != nil {
		return 0, fmt.Errorf("delete deliveries: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}
