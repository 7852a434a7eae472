package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
)

var (
	_ repository.EquipmentRepository         = (*EquipmentRepo)(nil)
	_ repository.HistoryRepository           = (*HistoryRepo)(nil)
	_ repository.RetiredIdentifierRepository = (*RetiredRepo)(nil)
)

const equipmentColumns = `id, code, item_code, mac, gpon_serial, COALESCE(manufacturer_serial, ''), state,
	batch_id, delivery_id, model_id, warehouse_id, replaces_id, version, created_at, updated_at`

// EquipmentRepo implementación del puerto EquipmentRepository sobre PostgreSQL.
type EquipmentRepo struct {
	q Querier
}

// NewEquipmentRepository construye el adaptador de persistencia para equipos.
func NewEquipmentRepository(q Querier) *EquipmentRepo {
	return &EquipmentRepo{q: q}
}

func scanEquipment(row pgx.Row) (*entity.Equipment, error) {
	var e entity.Equipment
	var state string
	err := row.Scan(&e.ID, &e.Code, &e.ItemCode, &e.MAC, &e.GPONSerial, &e.ManufacturerSerial, &state,
		&e.BatchID, &e.DeliveryID, &e.ModelID, &e.WarehouseID, &e.ReplacesID, &e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.State = entity.EquipmentState(state)
	return &e, nil
}

func (r *EquipmentRepo) queryOne(ctx context.Context, query string, args ...any) (*entity.Equipment, error) {
	e, err := scanEquipment(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get equipment: %w", err)
	}
	return e, nil
}

func (r *EquipmentRepo) queryMany(ctx context.Context, query string, args ...any) ([]*entity.Equipment, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()
	var out []*entity.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Create inserta el equipo; los constraints UNIQUE se traducen a DuplicateIdentifierError.
func (r *EquipmentRepo) Create(ctx context.Context, e *entity.Equipment) error {
	query := `
		INSERT INTO equipment (code, item_code, mac, gpon_serial, manufacturer_serial, state,
			batch_id, delivery_id, model_id, warehouse_id, replaces_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, version, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		e.Code, e.ItemCode, e.MAC, e.GPONSerial, nullIfEmpty(e.ManufacturerSerial), string(e.State),
		e.BatchID, e.DeliveryID, e.ModelID, e.WarehouseID, e.ReplacesID,
	).Scan(&e.ID, &e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return mapWriteError(err)
		}
		return fmt.Errorf("insert equipment: %w", err)
	}
	return nil
}

func (r *EquipmentRepo) GetByID(ctx context.Context, id int64) (*entity.Equipment, error) {
	return r.queryOne(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE id = $1`, id)
}

func (r *EquipmentRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Equipment, error) {
	return r.queryOne(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE id = $1 FOR UPDATE`, id)
}

// GetManyForUpdate bloquea en orden de ID para evitar deadlocks entre transacciones.
func (r *EquipmentRepo) GetManyForUpdate(ctx context.Context, ids []int64) ([]*entity.Equipment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryMany(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
}

// Update compara la versión en el WHERE; sin fila afectada distingue inexistente de conflicto.
func (r *EquipmentRepo) Update(ctx context.Context, e *entity.Equipment) error {
	query := `
		UPDATE equipment SET state = $3, delivery_id = $4, warehouse_id = $5, replaces_id = $6,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING version, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, e.ID, e.Version, string(e.State), e.DeliveryID, e.WarehouseID, e.ReplacesID).
		Scan(&e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("update equipment: %w", err)
	}
	var actual int64
	err = r.q.QueryRow(ctx, `SELECT version FROM equipment WHERE id = $1`, e.ID).Scan(&actual)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFoundf("equipo", e.ID)
	}
	if err != nil {
		return fmt.Errorf("update equipment: %w", err)
	}
	return &domain.VersionConflictError{Entity: "equipo", ID: e.ID, Expected: e.Version, Actual: actual}
}

func (r *EquipmentRepo) FindByIdentifier(ctx context.Context, field entity.IdentifierField, value string) (*entity.Equipment, error) {
	if value == "" {
		return nil, nil
	}
	var column string
	switch field {
	case entity.FieldMAC:
		column = "mac"
	case entity.FieldGPONSerial:
		column = "gpon_serial"
	case entity.FieldManufacturerSerial:
		column = "manufacturer_serial"
	default:
		return nil, domain.Invalid("field", fmt.Sprintf("campo identificador desconocido %q", field))
	}
	return r.queryOne(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE `+column+` = $1`, value)
}

// List arma el WHERE dinámicamente; el total se calcula con COUNT(*) OVER ().
func (r *EquipmentRepo) List(ctx context.Context, f entity.EquipmentFilter) ([]*entity.Equipment, int, error) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.State != "" {
		add("state = $%d", string(f.State))
	}
	if f.ModelID != 0 {
		add("model_id = $%d", f.ModelID)
	}
	if f.BatchID != 0 {
		add("batch_id = $%d", f.BatchID)
	}
	if f.WarehouseID != 0 {
		add("warehouse_id = $%d", f.WarehouseID)
	}
	if f.DeliveryID != 0 {
		add("delivery_id = $%d", f.DeliveryID)
	}
	if q := strings.ToUpper(strings.TrimSpace(f.Search)); q != "" {
		add(`(code LIKE '%%' || $%[1]d || '%%' OR mac LIKE '%%' || $%[1]d || '%%'
			OR replace(mac, ':', '') LIKE '%%' || $%[1]d || '%%'
			OR gpon_serial LIKE '%%' || $%[1]d || '%%'
			OR manufacturer_serial LIKE '%%' || $%[1]d || '%%')`, q)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s, COUNT(*) OVER () FROM equipment%s ORDER BY id LIMIT NULLIF($%d, 0) OFFSET $%d`,
		equipmentColumns, where, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()
	var out []*entity.Equipment
	total := 0
	for rows.Next() {
		var e entity.Equipment
		var state string
		if err := rows.Scan(&e.ID, &e.Code, &e.ItemCode, &e.MAC, &e.GPONSerial, &e.ManufacturerSerial, &state,
			&e.BatchID, &e.DeliveryID, &e.ModelID, &e.WarehouseID, &e.ReplacesID, &e.Version,
			&e.CreatedAt, &e.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan equipment: %w", err)
		}
		e.State = entity.EquipmentState(state)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 && f.Offset > 0 {
		// la ventana no trae filas: el total se pide aparte
		if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM equipment`+where, args[:len(args)-2]...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count equipment: %w", err)
		}
	}
	return out, total, nil
}

func (r *EquipmentRepo) count(ctx context.Context, query string, arg int64) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, query, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("count equipment: %w", err)
	}
	return n, nil
}

func (r *EquipmentRepo) CountByDelivery(ctx context.Context, deliveryID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM equipment WHERE delivery_id = $1`, deliveryID)
}

func (r *EquipmentRepo) ListByDelivery(ctx context.Context, deliveryID int64, limit int) ([]*entity.Equipment, error) {
	return r.queryMany(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE delivery_id = $1 ORDER BY id LIMIT NULLIF($2, 0)`,
		deliveryID, limit)
}

func (r *EquipmentRepo) DetachDelivery(ctx context.Context, deliveryID int64) (int, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE equipment SET delivery_id = NULL, version = version + 1, updated_at = now()
		WHERE delivery_id = $1`, deliveryID)
	if err != nil {
		return 0, fmt.Errorf("detach delivery: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

func (r *EquipmentRepo) CountByBatch(ctx context.Context, batchID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM equipment WHERE batch_id = $1`, batchID)
}

func (r *EquipmentRepo) ListByBatch(ctx context.Context, batchID int64, limit int) ([]*entity.Equipment, error) {
	return r.queryMany(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE batch_id = $1 ORDER BY id LIMIT NULLIF($2, 0)`,
		batchID, limit)
}

func (r *EquipmentRepo) CountUnassigned(ctx context.Context, batchID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM equipment WHERE batch_id = $1 AND delivery_id IS NULL`, batchID)
}

// Delete el historial, las inspecciones y las devoluciones de sector caen por ON DELETE CASCADE.
// Los reemplazos que apuntan a estos equipos quedan con replaces_id NULL.
func (r *EquipmentRepo) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM equipment WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("delete equipment: %w", err)
	}
	return nil
}

// HistoryRepo historial de estados sobre PostgreSQL.
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el repositorio de historial.
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

func (r *HistoryRepo) Append(ctx context.Context, c *entity.StateChange) error {
	query := `
		INSERT INTO equipment_history (equipment_id, from_state, to_state, trigger, actor, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		c.EquipmentID, nullIfEmpty(string(c.From)), string(c.To), string(c.Trigger), c.Actor, c.Reason,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (r *HistoryRepo) ListByEquipment(ctx context.Context, equipmentID int64) ([]*entity.StateChange, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, equipment_id, COALESCE(from_state, ''), to_state, trigger, actor, reason, created_at
		FROM equipment_history WHERE equipment_id = $1 ORDER BY id`, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()
	var out []*entity.StateChange
	for rows.Next() {
		var c entity.StateChange
		var from, to, trigger string
		if err := rows.Scan(&c.ID, &c.EquipmentID, &from, &to, &trigger, &c.Actor, &c.Reason, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		c.From, c.To, c.Trigger = entity.EquipmentState(from), entity.EquipmentState(to), entity.Trigger(trigger)
		out = append(out, &c)
	}
	return out, rows.Err()
}

// RetiredRepo registro de identificadores retirados sobre PostgreSQL.
type RetiredRepo struct {
	q Querier
}

// NewRetiredRepository construye el repositorio de identificadores retirados.
func NewRetiredRepository(q Querier) *RetiredRepo {
	return &RetiredRepo{q: q}
}

// Retire un identificador ya retirado viola la PK (field, value).
func (r *RetiredRepo) Retire(ctx context.Context, ids []entity.RetiredIdentifier) error {
	for i := range ids {
		err := r.q.QueryRow(ctx, `
			INSERT INTO retired_identifiers (field, value, equipment_id) VALUES ($1, $2, $3)
			RETURNING retired_at`, string(ids[i].Field), ids[i].Value, ids[i].EquipmentID,
		).Scan(&ids[i].RetiredAt)
		if err != nil {
			if isUniqueViolation(err) {
				return &domain.DuplicateIdentifierError{Field: string(ids[i].Field), Value: ids[i].Value}
			}
			return fmt.Errorf("retire identifier: %w", err)
		}
	}
	return nil
}

func (r *RetiredRepo) Get(ctx context.Context, field entity.IdentifierField, value string) (*entity.RetiredIdentifier, error) {
	var ri entity.RetiredIdentifier
	var f string
	err := r.q.QueryRow(ctx, `
		SELECT field, value, equipment_id, retired_at FROM retired_identifiers
		WHERE field = $1 AND value = $2`, string(field), value,
	).Scan(&f, &ri.Value, &ri.EquipmentID, &ri.RetiredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get retired identifier: %w", err)
	}
	ri.Field = entity.IdentifierField(f)
	return &ri, nil
}
