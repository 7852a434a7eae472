package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
)

var (
	_ repository.BatchRepository    = (*BatchRepo)(nil)
	_ repository.DeliveryRepository = (*DeliveryRepo)(nil)
)

// BatchRepo implementa repository.BatchRepository.
type BatchRepo struct{ t *tx }

func (r *BatchRepo) Create(_ context.Context, b *entity.Batch) error {
	for _, other := range r.t.st.batches {
		if other.Code == b.Code {
			return &domain.DuplicateIdentifierError{Field: "batch_code", Value: b.Code}
		}
	}
	b.ID = r.t.nextID()
	b.Version = 1
	b.CreatedAt = r.t.now
	b.UpdatedAt = r.t.now
	cp := *b
	r.t.st.batches[b.ID] = &cp
	r.t.touch()
	return nil
}

func (r *BatchRepo) GetByID(_ context.Context, id int64) (*entity.Batch, error) {
	b, ok := r.t.st.batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *BatchRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Batch, error) {
	return r.GetByID(ctx, id)
}

func (r *BatchRepo) GetByCode(_ context.Context, code string) (*entity.Batch, error) {
	for _, b := range r.t.st.batches {
		if b.Code == code {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *BatchRepo) List(_ context.Context, limit, offset int) ([]*entity.Batch, int, error) {
	out := make([]*entity.Batch, 0, len(r.t.st.batches))
	for _, b := range r.t.st.batches {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), len(out), nil
}

func (r *BatchRepo) Delete(_ context.Context, id int64) error {
	delete(r.t.st.batches, id)
	r.t.touch()
	return nil
}

// DeliveryRepo implementa repository.DeliveryRepository.
type DeliveryRepo struct{ t *tx }

func (r *DeliveryRepo) Create(_ context.Context, d *entity.PartialDelivery) error {
	for _, other := range r.t.st.deliveries {
		if other.BatchID == d.BatchID && other.Number == d.Number {
			return domain.Conflictf("la entrega #%d ya existe en el lote %d", d.Number, d.BatchID)
		}
	}
	d.ID = r.t.nextID()
	d.Version = 1
	d.CreatedAt = r.t.now
	d.UpdatedAt = r.t.now
	d.EquipmentCount = 0
	cp := *d
	r.t.st.deliveries[d.ID] = &cp
	r.t.touch()
	return nil
}

func (r *DeliveryRepo) withCount(d *entity.PartialDelivery) *entity.PartialDelivery {
	cp := *d
	cp.EquipmentCount = 0
	for _, e := range r.t.st.equipment {
		if e.DeliveryID != nil && *e.DeliveryID == d.ID {
			cp.EquipmentCount++
		}
	}
	return &cp
}

func (r *DeliveryRepo) GetByID(_ context.Context, id int64) (*entity.PartialDelivery, error) {
	d, ok := r.t.st.deliveries[id]
	if !ok {
		return nil, nil
	}
	return r.withCount(d), nil
}

func (r *DeliveryRepo) GetByNumber(_ context.Context, batchID int64, number int) (*entity.PartialDelivery, error) {
	for _, d := range r.t.st.deliveries {
		if d.BatchID == batchID && d.Number == number {
			return r.withCount(d), nil
		}
	}
	return nil, nil
}

func (r *DeliveryRepo) ListByBatch(_ context.Context, batchID int64) ([]*entity.PartialDelivery, error) {
	var out []*entity.PartialDelivery
	for _, d := range r.t.st.deliveries {
		if d.BatchID == batchID {
			out = append(out, r.withCount(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *DeliveryRepo) UpdateNumber(_ context.Context, id int64, number int) error {
	d, ok := r.t.st.deliveries[id]
	if !ok {
		return domain.NotFoundf("entrega", id)
	}
	d.Number = number
	d.Version++
	d.UpdatedAt = r.t.now
	r.t.touch()
	return nil
}

func (r *DeliveryRepo) Delete(_ context.Context, id int64) error {
	delete(r.t.st.deliveries, id)
	r.t.touch()
	return nil
}

func (r *DeliveryRepo) DeleteByBatch(_ context.Context, batchID int64) (int, error) {
	n := 0
	for id, d := range r.t.st.deliveries {
		if d.BatchID == batchID {
			delete(r.t.st.deliveries, id)
			n++
		}
	}
	r.t.touch()
	return n, nil
}
