package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
)

var (
	_ repository.EquipmentRepository         = (*EquipmentRepo)(nil)
	_ repository.HistoryRepository           = (*HistoryRepo)(nil)
	_ repository.RetiredIdentifierRepository = (*RetiredRepo)(nil)
)

// EquipmentRepo implementa repository.EquipmentRepository.
type EquipmentRepo struct{ t *tx }

// Create valida unicidad igual que los constraints UNIQUE de la base.
func (r *EquipmentRepo) Create(_ context.Context, e *entity.Equipment) error {
	for _, other := range r.t.st.equipment {
		if err := collides(other, e); err != nil {
			return err
		}
	}
	e.ID = r.t.nextID()
	e.Version = 1
	e.CreatedAt = r.t.now
	e.UpdatedAt = r.t.now
	r.t.st.equipment[e.ID] = e.Clone()
	r.t.touch()
	return nil
}

func collides(a, b *entity.Equipment) error {
	switch {
	case a.Code == b.Code:
		return &domain.DuplicateIdentifierError{Field: "code", Value: b.Code}
	case a.MAC == b.MAC:
		return &domain.DuplicateIdentifierError{Field: string(entity.FieldMAC), Value: b.MAC}
	case a.GPONSerial == b.GPONSerial:
		return &domain.DuplicateIdentifierError{Field: string(entity.FieldGPONSerial), Value: b.GPONSerial}
	case b.ManufacturerSerial != "" && a.ManufacturerSerial == b.ManufacturerSerial:
		return &domain.DuplicateIdentifierError{Field: string(entity.FieldManufacturerSerial), Value: b.ManufacturerSerial}
	}
	return nil
}

func (r *EquipmentRepo) GetByID(_ context.Context, id int64) (*entity.Equipment, error) {
	return r.t.st.equipment[id].Clone(), nil
}

// GetForUpdate la transacción ya es exclusiva.
func (r *EquipmentRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Equipment, error) {
	return r.GetByID(ctx, id)
}

func (r *EquipmentRepo) GetManyForUpdate(_ context.Context, ids []int64) ([]*entity.Equipment, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := make([]*entity.Equipment, 0, len(sorted))
	var last int64
	for i, id := range sorted {
		if i > 0 && id == last {
			continue
		}
		last = id
		if e, ok := r.t.st.equipment[id]; ok {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (r *EquipmentRepo) Update(_ context.Context, e *entity.Equipment) error {
	cur, ok := r.t.st.equipment[e.ID]
	if !ok {
		return domain.NotFoundf("equipo", e.ID)
	}
	if cur.Version != e.Version {
		return &domain.VersionConflictError{Entity: "equipo", ID: e.ID, Expected: e.Version, Actual: cur.Version}
	}
	e.Version = cur.Version + 1
	e.CreatedAt = cur.CreatedAt
	e.UpdatedAt = r.t.now
	r.t.st.equipment[e.ID] = e.Clone()
	r.t.touch()
	return nil
}

func (r *EquipmentRepo) FindByIdentifier(_ context.Context, field entity.IdentifierField, value string) (*entity.Equipment, error) {
	if value == "" {
		return nil, nil
	}
	for _, e := range r.sorted() {
		if e.Identifiers()[field] == value {
			return e.Clone(), nil
		}
	}
	return nil, nil
}

func (r *EquipmentRepo) List(_ context.Context, f entity.EquipmentFilter) ([]*entity.Equipment, int, error) {
	q := strings.ToUpper(strings.TrimSpace(f.Search))
	var matched []*entity.Equipment
	for _, e := range r.sorted() {
		if f.State != "" && e.State != f.State {
			continue
		}
		if f.ModelID != 0 && e.ModelID != f.ModelID {
			continue
		}
		if f.BatchID != 0 && e.BatchID != f.BatchID {
			continue
		}
		if f.WarehouseID != 0 && e.WarehouseID != f.WarehouseID {
			continue
		}
		if f.DeliveryID != 0 && (e.DeliveryID == nil || *e.DeliveryID != f.DeliveryID) {
			continue
		}
		if q != "" && !matchesSearch(e, q) {
			continue
		}
		matched = append(matched, e.Clone())
	}
	return paginate(matched, f.Limit, f.Offset), len(matched), nil
}

func matchesSearch(e *entity.Equipment, q string) bool {
	for _, v := range []string{e.Code, e.MAC, strings.ReplaceAll(e.MAC, ":", ""), e.GPONSerial, e.ManufacturerSerial} {
		if v != "" && strings.Contains(v, q) {
			return true
		}
	}
	return false
}

func (r *EquipmentRepo) CountByDelivery(ctx context.Context, deliveryID int64) (int, error) {
	items, err := r.ListByDelivery(ctx, deliveryID, 0)
	return len(items), err
}

func (r *EquipmentRepo) ListByDelivery(_ context.Context, deliveryID int64, limit int) ([]*entity.Equipment, error) {
	var out []*entity.Equipment
	for _, e := range r.sorted() {
		if e.DeliveryID != nil && *e.DeliveryID == deliveryID {
			out = append(out, e.Clone())
		}
	}
	return paginate(out, limit, 0), nil
}

func (r *EquipmentRepo) DetachDelivery(_ context.Context, deliveryID int64) (int, error) {
	n := 0
	for _, e := range r.t.st.equipment {
		if e.DeliveryID != nil && *e.DeliveryID == deliveryID {
			e.DeliveryID = nil
			e.Version++
			e.UpdatedAt = r.t.now
			n++
		}
	}
	if n > 0 {
		r.t.touch()
	}
	return n, nil
}

func (r *EquipmentRepo) CountByBatch(ctx context.Context, batchID int64) (int, error) {
	items, err := r.ListByBatch(ctx, batchID, 0)
	return len(items), err
}

func (r *EquipmentRepo) ListByBatch(_ context.Context, batchID int64, limit int) ([]*entity.Equipment, error) {
	var out []*entity.Equipment
	for _, e := range r.sorted() {
		if e.BatchID == batchID {
			out = append(out, e.Clone())
		}
	}
	return paginate(out, limit, 0), nil
}

func (r *EquipmentRepo) CountUnassigned(_ context.Context, batchID int64) (int, error) {
	n := 0
	for _, e := range r.t.st.equipment {
		if e.BatchID == batchID && e.DeliveryID == nil {
			n++
		}
	}
	return n, nil
}

func (r *EquipmentRepo) Delete(_ context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	gone := make(map[int64]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
		delete(r.t.st.equipment, id)
	}
	st := r.t.st
	st.history = keep(st.history, func(c *entity.StateChange) bool { return !gone[c.EquipmentID] })
	st.inspections = keep(st.inspections, func(c *entity.InspectionRecord) bool { return !gone[c.EquipmentID] })
	st.sectorReturns = keep(st.sectorReturns, func(c *entity.SectorReturn) bool { return !gone[c.EquipmentID] })
	r.t.touch()
	return nil
}

func (r *EquipmentRepo) sorted() []*entity.Equipment {
	out := make([]*entity.Equipment, 0, len(r.t.st.equipment))
	for _, e := range r.t.st.equipment {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func keep[T any](items []T, pred func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// HistoryRepo implementa repository.HistoryRepository.
type HistoryRepo struct{ t *tx }

func (r *HistoryRepo) Append(_ context.Context, c *entity.StateChange) error {
	c.ID = r.t.nextID()
	c.CreatedAt = r.t.now
	cp := *c
	r.t.st.history = append(r.t.st.history, &cp)
	r.t.touch()
	return nil
}

func (r *HistoryRepo) ListByEquipment(_ context.Context, equipmentID int64) ([]*entity.StateChange, error) {
	var out []*entity.StateChange
	for _, c := range r.t.st.history {
		if c.EquipmentID == equipmentID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// RetiredRepo implementa repository.RetiredIdentifierRepository.
type RetiredRepo struct{ t *tx }

func (r *RetiredRepo) Retire(_ context.Context, ids []entity.RetiredIdentifier) error {
	for _, id := range ids {
		key := retiredKey{id.Field, id.Value}
		if _, ok := r.t.st.retired[key]; ok {
			return &domain.DuplicateIdentifierError{Field: string(id.Field), Value: id.Value}
		}
		id.RetiredAt = r.t.now
		cp := id
		r.t.st.retired[key] = &cp
	}
	r.t.touch()
	return nil
}

func (r *RetiredRepo) Get(_ context.Context, field entity.IdentifierField, value string) (*entity.RetiredIdentifier, error) {
	ri, ok := r.t.st.retired[retiredKey{field, value}]
	if !ok {
		return nil, nil
	}
	cp := *ri
	return &cp, nil
}
