package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
)

var (
	_ repository.InspectionRepository   = (*InspectionRepo)(nil)
	_ repository.SectorReturnRepository = (*SectorReturnRepo)(nil)
	_ repository.WarehouseRepository    = (*WarehouseRepo)(nil)
	_ repository.ModelRepository        = (*ModelRepo)(nil)
)

// InspectionRepo implementa repository.InspectionRepository.
type InspectionRepo struct{ t *tx }

func (r *InspectionRepo) Create(_ context.Context, rec *entity.InspectionRecord) error {
	rec.ID = r.t.nextID()
	rec.CreatedAt = r.t.now
	r.t.st.inspections = append(r.t.st.inspections, rec.Clone())
	r.t.touch()
	return nil
}

func (r *InspectionRepo) ListByEquipment(_ context.Context, equipmentID int64) ([]*entity.InspectionRecord, error) {
	var out []*entity.InspectionRecord
	for _, rec := range r.t.st.inspections {
		if rec.EquipmentID == equipmentID {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

// SectorReturnRepo implementa repository.SectorReturnRepository.
type SectorReturnRepo struct{ t *tx }

func (r *SectorReturnRepo) Create(_ context.Context, sr *entity.SectorReturn) error {
	sr.ID = r.t.nextID()
	sr.CreatedAt = r.t.now
	cp := *sr
	r.t.st.sectorReturns = append(r.t.st.sectorReturns, &cp)
	r.t.touch()
	return nil
}

func (r *SectorReturnRepo) ListByEquipment(_ context.Context, equipmentID int64) ([]*entity.SectorReturn, error) {
	var out []*entity.SectorReturn
	for _, sr := range r.t.st.sectorReturns {
		if sr.EquipmentID == equipmentID {
			cp := *sr
			out = append(out, &cp)
		}
	}
	return out, nil
}

// WarehouseRepo implementa repository.WarehouseRepository.
type WarehouseRepo struct{ t *tx }

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	w.ID = r.t.nextID()
	w.CreatedAt = r.t.now
	w.UpdatedAt = r.t.now
	cp := *w
	r.t.st.warehouses[w.ID] = &cp
	r.t.touch()
	return nil
}

func (r *WarehouseRepo) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	w, ok := r.t.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	cur, ok := r.t.st.warehouses[w.ID]
	if !ok {
		return domain.NotFoundf("bodega", w.ID)
	}
	w.CreatedAt = cur.CreatedAt
	w.UpdatedAt = r.t.now
	cp := *w
	r.t.st.warehouses[w.ID] = &cp
	r.t.touch()
	return nil
}

func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	out := make([]*entity.Warehouse, 0, len(r.t.st.warehouses))
	for _, w := range r.t.st.warehouses {
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), nil
}

// ModelRepo implementa repository.ModelRepository.
type ModelRepo struct{ t *tx }

func (r *ModelRepo) Create(_ context.Context, m *entity.EquipmentModel) error {
	for _, other := range r.t.st.models {
		if other.ItemCode == m.ItemCode {
			return &domain.DuplicateIdentifierError{Field: "item_code", Value: m.ItemCode}
		}
	}
	m.ID = r.t.nextID()
	m.CreatedAt = r.t.now
	cp := *m
	r.t.st.models[m.ID] = &cp
	r.t.touch()
	return nil
}

func (r *ModelRepo) GetByID(_ context.Context, id int64) (*entity.EquipmentModel, error) {
	m, ok := r.t.st.models[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *ModelRepo) GetByItemCode(_ context.Context, itemCode string) (*entity.EquipmentModel, error) {
	for _, m := range r.t.st.models {
		if m.ItemCode == itemCode {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ModelRepo) List(_ context.Context, limit, offset int) ([]*entity.EquipmentModel, error) {
	out := make([]*entity.EquipmentModel, 0, len(r.t.st.models))
	for _, m := range r.t.st.models {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}
