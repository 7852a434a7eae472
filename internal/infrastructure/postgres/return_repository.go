package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

const returnColumns = `id, number, batch_id, vendor, reason, lab_report_number, state, COALESCE(response_code, ''),
	sent_at, sent_notes, confirmed_at, response_notes, created_by, version, created_at, updated_at`

// ReturnRepo devoluciones a proveedor sobre PostgreSQL. Los ítems viven en vendor_return_items.
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador de persistencia para devoluciones.
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

func scanReturn(row pgx.Row, extra ...any) (*entity.VendorReturn, error) {
	var vr entity.VendorReturn
	var state, code string
	dest := append([]any{&vr.ID, &vr.Number, &vr.BatchID, &vr.Vendor, &vr.Reason, &vr.LabReportNumber, &state, &code,
		&vr.SentAt, &vr.SentNotes, &vr.ConfirmedAt, &vr.ResponseNotes, &vr.CreatedBy, &vr.Version,
		&vr.CreatedAt, &vr.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	vr.State = entity.ReturnState(state)
	vr.ResponseCode = entity.ResponseCode(code)
	return &vr, nil
}

// Create inserta cabecera e ítems en la misma transacción.
func (r *ReturnRepo) Create(ctx context.Context, vr *entity.VendorReturn) error {
	query := `
		INSERT INTO vendor_returns (number, batch_id, vendor, reason, lab_report_number, state, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, version, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		vr.Number, vr.BatchID, vr.Vendor, vr.Reason, vr.LabReportNumber, string(vr.State), vr.CreatedBy,
	).Scan(&vr.ID, &vr.Version, &vr.CreatedAt, &vr.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return mapWriteError(err)
		}
		return fmt.Errorf("insert vendor return: %w", err)
	}
	for i, it := range vr.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO vendor_return_items (return_id, equipment_id, position, replacement_id, replaced_at)
			VALUES ($1, $2, $3, $4, $5)`, vr.ID, it.EquipmentID, i+1, it.ReplacementID, it.ReplacedAt)
		if err != nil {
			return fmt.Errorf("insert vendor return item: %w", err)
		}
	}
	return nil
}

func (r *ReturnRepo) one(ctx context.Context, query string, arg any) (*entity.VendorReturn, error) {
	vr, err := scanReturn(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vendor return: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.VendorReturn{vr}); err != nil {
		return nil, err
	}
	return vr, nil
}

// loadItems completa los ítems de varias devoluciones con una sola consulta.
func (r *ReturnRepo) loadItems(ctx context.Context, returns []*entity.VendorReturn) error {
	if len(returns) == 0 {
		return nil
	}
	byID := make(map[int64]*entity.VendorReturn, len(returns))
	ids := make([]int64, 0, len(returns))
	for _, vr := range returns {
		vr.Items = []entity.ReturnItem{}
		byID[vr.ID] = vr
		ids = append(ids, vr.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT return_id, equipment_id, replacement_id, replaced_at
		FROM vendor_return_items WHERE return_id = ANY($1) ORDER BY return_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list vendor return items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var returnID int64
		var it entity.ReturnItem
		if err := rows.Scan(&returnID, &it.EquipmentID, &it.ReplacementID, &it.ReplacedAt); err != nil {
			return fmt.Errorf("scan vendor return item: %w", err)
		}
		vr := byID[returnID]
		vr.Items = append(vr.Items, it)
	}
	return rows.Err()
}

func (r *ReturnRepo) many(ctx context.Context, query string, args ...any) ([]*entity.VendorReturn, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vendor returns: %w", err)
	}
	var out []*entity.VendorReturn
	for rows.Next() {
		vr, err := scanReturn(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan vendor return: %w", err)
		}
		out = append(out, vr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, r.loadItems(ctx, out)
}

func (r *ReturnRepo) GetByID(ctx context.Context, id int64) (*entity.VendorReturn, error) {
	return r.one(ctx, `SELECT `+returnColumns+` FROM vendor_returns WHERE id = $1`, id)
}

func (r *ReturnRepo) GetForUpdate(ctx context.Context, id int64) (*entity.VendorReturn, error) {
	return r.one(ctx, `SELECT `+returnColumns+` FROM vendor_returns WHERE id = $1 FOR UPDATE`, id)
}

func (r *ReturnRepo) GetByNumber(ctx context.Context, number string) (*entity.VendorReturn, error) {
	return r.one(ctx, `SELECT `+returnColumns+` FROM vendor_returns WHERE number = $1`, number)
}

// List más recientes primero.
func (r *ReturnRepo) List(ctx context.Context, f entity.ReturnFilter) ([]*entity.VendorReturn, int, error) {
	where := ` WHERE ($1::text = '' OR state = $1) AND ($2::bigint = 0 OR batch_id = $2)`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM vendor_returns`+where,
		string(f.State), f.BatchID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vendor returns: %w", err)
	}
	out, err := r.many(ctx, `SELECT `+returnColumns+` FROM vendor_returns`+where+`
		ORDER BY id DESC LIMIT NULLIF($3, 0) OFFSET $4`, string(f.State), f.BatchID, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ReturnRepo) Update(ctx context.Context, vr *entity.VendorReturn) error {
	query := `
		UPDATE vendor_returns SET state = $3, response_code = $4, sent_at = $5, sent_notes = $6,
			confirmed_at = $7, response_notes = $8, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING version, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, vr.ID, vr.Version, string(vr.State), nullIfEmpty(string(vr.ResponseCode)),
		vr.SentAt, vr.SentNotes, vr.ConfirmedAt, vr.ResponseNotes,
	).Scan(&vr.Version, &vr.CreatedAt, &vr.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("update vendor return: %w", err)
	}
	var actual int64
	err = r.q.QueryRow(ctx, `SELECT version FROM vendor_returns WHERE id = $1`, vr.ID).Scan(&actual)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFoundf("devolución", vr.ID)
	}
	if err != nil {
		return fmt.Errorf("update vendor return: %w", err)
	}
	return &domain.VersionConflictError{Entity: "devolución", ID: vr.ID, Expected: vr.Version, Actual: actual}
}

// UpdateItem registra el reemplazo del ítem y sube la versión de la cabecera.
func (r *ReturnRepo) UpdateItem(ctx context.Context, returnID int64, item entity.ReturnItem) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE vendor_return_items SET replacement_id = $3, replaced_at = $4
		WHERE return_id = $1 AND equipment_id = $2`, returnID, item.EquipmentID, item.ReplacementID, item.ReplacedAt)
	if err != nil {
		return fmt.Errorf("update vendor return item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("ítem de devolución", item.EquipmentID)
	}
	if _, err := r.q.Exec(ctx, `
		UPDATE vendor_returns SET version = version + 1, updated_at = now() WHERE id = $1`, returnID); err != nil {
		return fmt.Errorf("touch vendor return: %w", err)
	}
	return nil
}

func (r *ReturnRepo) FindByEquipment(ctx context.Context, equipmentIDs []int64) ([]*entity.VendorReturn, error) {
	if len(equipmentIDs) == 0 {
		return nil, nil
	}
	return r.many(ctx, `SELECT `+returnColumns+` FROM vendor_returns
		WHERE id IN (SELECT return_id FROM vendor_return_items WHERE equipment_id = ANY($1))
		ORDER BY id`, equipmentIDs)
}

func (r *ReturnRepo) CountByBatch(ctx context.Context, batchID int64) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM vendor_returns WHERE batch_id = $1`, batchID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count vendor returns: %w", err)
	}
	return n, nil
}

// NextSequence toma un advisory lock por prefijo hasta el fin de la transacción,
// así dos creaciones concurrentes no leen el mismo máximo.
func (r *ReturnRepo) NextSequence(ctx context.Context, prefix string) (int, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, prefix); err != nil {
		return 0, fmt.Errorf("lock return sequence: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT number FROM vendor_returns WHERE starts_with(number, $1)`, prefix)
	if err != nil {
		return 0, fmt.Errorf("list return numbers: %w", err)
	}
	defer rows.Close()
	top := 0
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return 0, fmt.Errorf("scan return number: %w", err)
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(number, prefix)); err == nil && n > top {
			top = n
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return top + 1, nil
}
