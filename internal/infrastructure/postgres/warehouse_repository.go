package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.ModelRepository     = (*ModelRepo)(nil)
)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, warehouse *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (name, address)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, warehouse.Name, warehouse.Address).
		Scan(&warehouse.ID, &warehouse.CreatedAt, &warehouse.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id int64) (*entity.Warehouse, error) {
	query := `SELECT id, name, address, created_at, updated_at FROM warehouses WHERE id = $1`
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, id).Scan(&w.ID, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// Update actualiza una bodega existente.
func (r *WarehouseRepo) Update(ctx context.Context, warehouse *entity.Warehouse) error {
	query := `
		UPDATE warehouses SET name = $2, address = $3, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query, warehouse.ID, warehouse.Name, warehouse.Address).
		Scan(&warehouse.CreatedAt, &warehouse.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.NotFoundf("bodega", warehouse.ID)
		}
		return fmt.Errorf("update warehouse: %w", err)
	}
	return nil
}

// List lista bodegas por nombre con paginación.
func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	query := `
		SELECT id, name, address, created_at, updated_at
		FROM warehouses ORDER BY name LIMIT NULLIF($1, 0) OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

// ModelRepo catálogo de modelos sobre PostgreSQL.
type ModelRepo struct {
	q Querier
}

// NewModelRepository construye el repositorio de modelos de equipo.
func NewModelRepository(q Querier) *ModelRepo {
	return &ModelRepo{q: q}
}

func (r *ModelRepo) Create(ctx context.Context, m *entity.EquipmentModel) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO equipment_models (brand, name, item_code) VALUES ($1, $2, $3)
		RETURNING id, created_at`, m.Brand, m.Name, m.ItemCode,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return mapWriteError(err)
		}
		return fmt.Errorf("insert model: %w", err)
	}
	return nil
}

func (r *ModelRepo) one(ctx context.Context, where string, arg any) (*entity.EquipmentModel, error) {
	var m entity.EquipmentModel
	err := r.q.QueryRow(ctx, `SELECT id, brand, name, item_code, created_at FROM equipment_models WHERE `+where, arg).
		Scan(&m.ID, &m.Brand, &m.Name, &m.ItemCode, &m.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get model: %w", err)
	}
	return &m, nil
}

func (r *ModelRepo) GetByID(ctx context.Context, id int64) (*entity.EquipmentModel, error) {
	return r.one(ctx, "id = $1", id)
}

func (r *ModelRepo) GetByItemCode(ctx context.Context, itemCode string) (*entity.EquipmentModel, error) {
	return r.one(ctx, "item_code = $1", itemCode)
}

func (r *ModelRepo) List(ctx context.Context, limit, offset int) ([]*entity.EquipmentModel, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, brand, name, item_code, created_at
		FROM equipment_models ORDER BY id LIMIT NULLIF($1, 0) OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()
	var list []*entity.EquipmentModel
	for rows.Next() {
		var m entity.EquipmentModel
		if err := rows.Scan(&m.ID, &m.Brand, &m.Name, &m.ItemCode, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
