package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo implementa repository.ReturnRepository.
type ReturnRepo struct{ t *tx }

func (r *ReturnRepo) Create(_ context.Context, vr *entity.VendorReturn) error {
	for _, other := range r.t.st.returns {
		if other.Number == vr.Number {
			return &domain.DuplicateIdentifierError{Field: "return_number", Value: vr.Number}
		}
	}
	vr.ID = r.t.nextID()
	vr.Version = 1
	vr.CreatedAt = r.t.now
	vr.UpdatedAt = r.t.now
	r.t.st.returns[vr.ID] = vr.Clone()
	r.t.touch()
	return nil
}

func (r *ReturnRepo) GetByID(_ context.Context, id int64) (*entity.VendorReturn, error) {
	return r.t.st.returns[id].Clone(), nil
}

func (r *ReturnRepo) GetForUpdate(ctx context.Context, id int64) (*entity.VendorReturn, error) {
	return r.GetByID(ctx, id)
}

func (r *ReturnRepo) GetByNumber(_ context.Context, number string) (*entity.VendorReturn, error) {
	for _, vr := range r.t.st.returns {
		if vr.Number == number {
			return vr.Clone(), nil
		}
	}
	return nil, nil
}

// List más recientes primero.
func (r *ReturnRepo) List(_ context.Context, f entity.ReturnFilter) ([]*entity.VendorReturn, int, error) {
	var out []*entity.VendorReturn
	for _, vr := range r.t.st.returns {
		if f.State != "" && vr.State != f.State {
			continue
		}
		if f.BatchID != 0 && vr.BatchID != f.BatchID {
			continue
		}
		out = append(out, vr.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (r *ReturnRepo) Update(_ context.Context, vr *entity.VendorReturn) error {
	cur, ok := r.t.st.returns[vr.ID]
	if !ok {
		return domain.NotFoundf("devolución", vr.ID)
	}
	if cur.Version != vr.Version {
		return &domain.VersionConflictError{Entity: "devolución", ID: vr.ID, Expected: vr.Version, Actual: cur.Version}
	}
	vr.Version = cur.Version + 1
	vr.CreatedAt = cur.CreatedAt
	vr.UpdatedAt = r.t.now
	stored := vr.Clone()
	stored.Items = cur.Items
	r.t.st.returns[vr.ID] = stored
	r.t.touch()
	return nil
}

func (r *ReturnRepo) UpdateItem(_ context.Context, returnID int64, item entity.ReturnItem) error {
	cur, ok := r.t.st.returns[returnID]
	if !ok {
		return domain.NotFoundf("devolución", returnID)
	}
	it := cur.Item(item.EquipmentID)
	if it == nil {
		return domain.NotFoundf("ítem de devolución", item.EquipmentID)
	}
	cp := item
	if item.ReplacementID != nil {
		v := *item.ReplacementID
		cp.ReplacementID = &v
	}
	if item.ReplacedAt != nil {
		v := *item.ReplacedAt
		cp.ReplacedAt = &v
	}
	*it = cp
	cur.Version++
	cur.UpdatedAt = r.t.now
	r.t.touch()
	return nil
}

func (r *ReturnRepo) FindByEquipment(_ context.Context, equipmentIDs []int64) ([]*entity.VendorReturn, error) {
	wanted := make(map[int64]bool, len(equipmentIDs))
	for _, id := range equipmentIDs {
		wanted[id] = true
	}
	var out []*entity.VendorReturn
	for _, vr := range r.t.st.returns {
		for _, it := range vr.Items {
			if wanted[it.EquipmentID] {
				out = append(out, vr.Clone())
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ReturnRepo) CountByBatch(_ context.Context, batchID int64) (int, error) {
	n := 0
	for _, vr := range r.t.st.returns {
		if vr.BatchID == batchID {
			n++
		}
	}
	return n, nil
}

func (r *ReturnRepo) NextSequence(_ context.Context, prefix string) (int, error) {
	top := 0
	for _, vr := range r.t.st.returns {
		if !strings.HasPrefix(vr.Number, prefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(vr.Number, prefix)); err == nil && n > top {
			top = n
		}
	}
	return top + 1, nil
}
