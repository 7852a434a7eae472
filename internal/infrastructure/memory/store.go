// Package memory implementa los repositorios sobre un estado en memoria.
// Cada transacción trabaja sobre una copia del estado que reemplaza al vigente solo si
// la función termina sin error; un mutex global serializa las transacciones.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/onu-almacen-api/internal/application/ports"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

// Snapshot representación serializable del estado.
type Snapshot struct {
	Seq           int64                       `json:"seq"`
	Equipment     []*entity.Equipment         `json:"equipment"`
	History       []*entity.StateChange       `json:"history"`
	Retired       []*entity.RetiredIdentifier `json:"retired"`
	Batches       []*entity.Batch             `json:"batches"`
	Deliveries    []*entity.PartialDelivery   `json:"deliveries"`
	Returns       []*entity.VendorReturn      `json:"returns"`
	Inspections   []*entity.InspectionRecord  `json:"inspections"`
	SectorReturns []*entity.SectorReturn      `json:"sector_returns"`
	Warehouses    []*entity.Warehouse         `json:"warehouses"`
	Models        []*entity.EquipmentModel    `json:"models"`
}

type retiredKey struct {
	field entity.IdentifierField
	value string
}

type state struct {
	seq           int64
	equipment     map[int64]*entity.Equipment
	history       []*entity.StateChange
	retired       map[retiredKey]*entity.RetiredIdentifier
	batches       map[int64]*entity.Batch
	deliveries    map[int64]*entity.PartialDelivery
	returns       map[int64]*entity.VendorReturn
	inspections   []*entity.InspectionRecord
	sectorReturns []*entity.SectorReturn
	warehouses    map[int64]*entity.Warehouse
	models        map[int64]*entity.EquipmentModel
}

func newState() *state {
	return &state{
		equipment:  map[int64]*entity.Equipment{},
		retired:    map[retiredKey]*entity.RetiredIdentifier{},
		batches:    map[int64]*entity.Batch{},
		deliveries: map[int64]*entity.PartialDelivery{},
		returns:    map[int64]*entity.VendorReturn{},
		warehouses: map[int64]*entity.Warehouse{},
		models:     map[int64]*entity.EquipmentModel{},
	}
}

func (s *state) snapshot() Snapshot {
	out := Snapshot{Seq: s.seq}
	for _, e := range s.equipment {
		out.Equipment = append(out.Equipment, e.Clone())
	}
	sort.Slice(out.Equipment, func(i, j int) bool { return out.Equipment[i].ID < out.Equipment[j].ID })
	for _, h := range s.history {
		c := *h
		out.History = append(out.History, &c)
	}
	for _, r := range s.retired {
		c := *r
		out.Retired = append(out.Retired, &c)
	}
	sort.Slice(out.Retired, func(i, j int) bool {
		if out.Retired[i].Field != out.Retired[j].Field {
			return out.Retired[i].Field < out.Retired[j].Field
		}
		return out.Retired[i].Value < out.Retired[j].Value
	})
	for _, b := range s.batches {
		c := *b
		out.Batches = append(out.Batches, &c)
	}
	sort.Slice(out.Batches, func(i, j int) bool { return out.Batches[i].ID < out.Batches[j].ID })
	for _, d := range s.deliveries {
		c := *d
		out.Deliveries = append(out.Deliveries, &c)
	}
	sort.Slice(out.Deliveries, func(i, j int) bool { return out.Deliveries[i].ID < out.Deliveries[j].ID })
	for _, r := range s.returns {
		out.Returns = append(out.Returns, r.Clone())
	}
	sort.Slice(out.Returns, func(i, j int) bool { return out.Returns[i].ID < out.Returns[j].ID })
	for _, r := range s.inspections {
		out.Inspections = append(out.Inspections, r.Clone())
	}
	for _, r := range s.sectorReturns {
		c := *r
		out.SectorReturns = append(out.SectorReturns, &c)
	}
	for _, w := range s.warehouses {
		c := *w
		out.Warehouses = append(out.Warehouses, &c)
	}
	sort.Slice(out.Warehouses, func(i, j int) bool { return out.Warehouses[i].ID < out.Warehouses[j].ID })
	for _, m := range s.models {
		c := *m
		out.Models = append(out.Models, &c)
	}
	sort.Slice(out.Models, func(i, j int) bool { return out.Models[i].ID < out.Models[j].ID })
	return out
}

func stateFromSnapshot(snap Snapshot) *state {
	s := newState()
	s.seq = snap.Seq
	for _, e := range snap.Equipment {
		s.equipment[e.ID] = e.Clone()
	}
	for _, h := range snap.History {
		c := *h
		s.history = append(s.history, &c)
	}
	for _, r := range snap.Retired {
		c := *r
		s.retired[retiredKey{r.Field, r.Value}] = &c
	}
	for _, b := range snap.Batches {
		c := *b
		s.batches[b.ID] = &c
	}
	for _, d := range snap.Deliveries {
		c := *d
		s.deliveries[d.ID] = &c
	}
	for _, r := range snap.Returns {
		s.returns[r.ID] = r.Clone()
	}
	for _, r := range snap.Inspections {
		s.inspections = append(s.inspections, r.Clone())
	}
	for _, r := range snap.SectorReturns {
		c := *r
		s.sectorReturns = append(s.sectorReturns, &c)
	}
	for _, w := range snap.Warehouses {
		c := *w
		s.warehouses[w.ID] = &c
	}
	for _, m := range snap.Models {
		c := *m
		s.models[m.ID] = &c
	}
	return s
}

func (s *state) clone() *state { return stateFromSnapshot(s.snapshot()) }

// Store estado en memoria con transacciones serializadas.
type Store struct {
	mu       sync.Mutex
	st       *state
	now      func() time.Time
	onCommit func(Snapshot) error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// NewStoreFromSnapshot crea un store con el estado dado (ej. leído de disco).
func NewStoreFromSnapshot(snap Snapshot) *Store {
	return &Store{st: stateFromSnapshot(snap), now: time.Now}
}

// SetClock reemplaza el reloj usado para timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// OnCommit registra fn, llamada con el nuevo estado antes de publicarlo.
// Si fn falla la transacción se descarta.
func (s *Store) OnCommit(fn func(Snapshot) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = fn
}

// Snapshot copia del estado vigente.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.snapshot()
}

// Run ejecuta fn sobre una copia del estado y la publica si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Set) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	t := &tx{st: s.st.clone(), now: s.now().UTC()}
	if err := fn(t.set()); err != nil {
		return err
	}
	if !t.dirty {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.onCommit != nil {
		if err := s.onCommit(t.st.snapshot()); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	s.st = t.st
	return nil
}

// tx estado de trabajo de una transacción.
type tx struct {
	st    *state
	now   time.Time
	dirty bool
}

func (t *tx) nextID() int64 {
	t.st.seq++
	return t.st.seq
}

func (t *tx) touch() { t.dirty = true }

func (t *tx) set() repository.Set {
	return repository.Set{
		Equipment:     &EquipmentRepo{t: t},
		History:       &HistoryRepo{t: t},
		Retired:       &RetiredRepo{t: t},
		Batches:       &BatchRepo{t: t},
		Deliveries:    &DeliveryRepo{t: t},
		Returns:       &ReturnRepo{t: t},
		Inspections:   &InspectionRepo{t: t},
		SectorReturns: &SectorReturnRepo{t: t},
		Warehouses:    &WarehouseRepo{t: t},
		Models:        &ModelRepo{t: t},
	}
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
