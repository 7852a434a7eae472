// Package testutil datos de prueba sobre el almacén en memoria.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/equipment"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
	"github.com/jhoicas/onu-almacen-api/internal/infrastructure/memory"
)

// Now reloj fijo de las pruebas.
var Now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// Fixture almacén en memoria con una bodega y un modelo.
type Fixture struct {
	Store       *memory.Store
	WarehouseID int64
	ModelID     int64
	seq         int
}

// NewFixture crea el almacén y el catálogo base.
func NewFixture(t testing.TB) *Fixture {
	t.Helper()
	f := &Fixture{Store: memory.NewStore()}
	f.Store.SetClock(func() time.Time { return Now })
	f.run(t, func(ctx context.Context, repos repository.Set) error {
		w := &entity.Warehouse{Name: "Bodega Central", Address: "Calle 10 # 4-21"}
		if err := repos.Warehouses.Create(ctx, w); err != nil {
			return err
		}
		m := &entity.EquipmentModel{Brand: "Huawei", Name: "HG8145V5", ItemCode: "ONT-HG8145"}
		if err := repos.Models.Create(ctx, m); err != nil {
			return err
		}
		f.WarehouseID, f.ModelID = w.ID, m.ID
		return nil
	})
	return f
}

func (f *Fixture) run(t testing.TB, fn func(ctx context.Context, repos repository.Set) error) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.Store.Run(ctx, func(repos repository.Set) error {
		return fn(ctx, repos)
	}))
}

// Batch crea un lote.
func (f *Fixture) Batch(t testing.TB, code, vendor string, expected int) *entity.Batch {
	t.Helper()
	b := &entity.Batch{
		Code: code, Vendor: vendor, ExpectedQuantity: expected,
		WarehouseID: f.WarehouseID, ModelID: f.ModelID, CreatedBy: "seed",
	}
	f.run(t, func(ctx context.Context, repos repository.Set) error {
		return repos.Batches.Create(ctx, b)
	})
	return b
}

// Delivery agrega la siguiente entrega del lote.
func (f *Fixture) Delivery(t testing.TB, batchID int64, quantity int) *entity.PartialDelivery {
	t.Helper()
	d := &entity.PartialDelivery{
		BatchID: batchID, DeliveryDate: Now, DeclaredQuantity: quantity,
		State: entity.DeliveryPartial, CreatedBy: "seed",
	}
	f.run(t, func(ctx context.Context, repos repository.Set) error {
		list, err := repos.Deliveries.ListByBatch(ctx, batchID)
		if err != nil {
			return err
		}
		d.Number = len(list) + 1
		return repos.Deliveries.Create(ctx, d)
	})
	return d
}

// Equipment crea un equipo con identificadores únicos en el estado indicado.
// delivery puede ser nil.
func (f *Fixture) Equipment(t testing.TB, b *entity.Batch, delivery *entity.PartialDelivery, state entity.EquipmentState) *entity.Equipment {
	t.Helper()
	f.seq++
	mac := fmt.Sprintf("48:57:02:00:%02X:%02X", f.seq/256, f.seq%256)
	e := &entity.Equipment{
		Code:        equipment.BuildCode("ONT-HG8145", mac),
		ItemCode:    "ONT-HG8145",
		MAC:         mac,
		GPONSerial:  fmt.Sprintf("HWTC%08X", f.seq),
		State:       state,
		BatchID:     b.ID,
		ModelID:     b.ModelID,
		WarehouseID: b.WarehouseID,
	}
	if delivery != nil {
		id := delivery.ID
		e.DeliveryID = &id
	}
	f.run(t, func(ctx context.Context, repos repository.Set) error {
		return repos.Equipment.Create(ctx, e)
	})
	return e
}

// Get lee un equipo fuera de cualquier caso de uso.
func (f *Fixture) Get(t testing.TB, id int64) *entity.Equipment {
	t.Helper()
	var e *entity.Equipment
	f.run(t, func(ctx context.Context, repos repository.Set) error {
		var err error
		e, err = repos.Equipment.GetByID(ctx, id)
		return err
	})
	return e
}

// History historial de un equipo.
func (f *Fixture) History(t testing.TB, id int64) []*entity.StateChange {
	t.Helper()
	var out []*entity.StateChange
	f.run(t, func(ctx context.Context, repos repository.Set) error {
		var err error
		out, err = repos.History.ListByEquipment(ctx, id)
		return err
	})
	return out
}
