package delivery_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onu-almacen-api/internal/application/delivery"
	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
	"github.com/jhoicas/onu-almacen-api/internal/testutil"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

const actor = "bodega@onu.local"

var remito int

func add(t *testing.T, uc *delivery.UseCase, batchID int64, qty int) *dto.DeliveryResponse {
	t.Helper()
	remito++
	out, err := uc.Add(context.Background(), batchID, actor, dto.CreateDeliveryRequest{
		DeliveryDate: "2026-03-01", Quantity: qty, State: "partial", Notes: fmt.Sprintf("remito %d", remito),
	})
	require.NoError(t, err)
	return out
}

func numbers(t *testing.T, uc *delivery.UseCase, batchID int64) []int {
	t.Helper()
	list, err := uc.List(context.Background(), batchID)
	require.NoError(t, err)
	out := make([]int, 0, len(list.Items))
	for _, d := range list.Items {
		out = append(out, d.Number)
	}
	return out
}

func TestAdd_NumeraConsecutivamente(t *testing.T) {
	fx := testutil.NewFixture(t)
	b := fx.Batch(t, "L-1", "ZTE", 100)
	uc := delivery.NewUseCase(fx.Store, logger.Nop(), delivery.Options{})

	for i := 1; i <= 3; i++ {
		d := add(t, uc, b.ID, 10)
		assert.Equal(t, i, d.Number)
	}
	assert.Equal(t, []int{1, 2, 3}, numbers(t, uc, b.ID))
}

func TestAdd_Validaciones(t *testing.T) {
	fx := testutil.NewFixture(t)
	b := fx.Batch(t, "L-1", "ZTE", 100)
	uc := delivery.NewUseCase(fx.Store, logger.Nop(), delivery.Options{})
	ctx := context.Background()

	_, err := uc.Add(ctx, b.ID, actor, dto.CreateDeliveryRequest{DeliveryDate: "2026-03-01", Quantity: 0, State: "PARTIAL"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = uc.Add(ctx, b.ID, actor, dto.CreateDeliveryRequest{DeliveryDate: "01/03/2026", Quantity: 1, State: "PARTIAL"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Add(ctx, b.ID, actor, dto.CreateDeliveryRequest{DeliveryDate: "2026-03-01", Quantity: 1, State: "LOST"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Add(ctx, 999, actor, dto.CreateDeliveryRequest{DeliveryDate: "2026-03-01", Quantity: 1, State: "PARTIAL"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdd_ReintentoConNumeroExplicito(t *testing.T) {
	fx := testutil.NewFixture(t)
	b := fx.Batch(t, "L-1", "ZTE", 100)
	uc := delivery.NewUseCase(fx.Store, logger.Nop(), delivery.Options{})
	ctx := context.Background()
	req := dto.CreateDeliveryRequest{DeliveryDate: "2026-03-01", Quantity: 5, State: "COMPLETE", Number: 1}

	first, err := uc.Add(ctx, b.ID, actor, req)
	require.NoError(t, err)
	again, err := uc.Add(ctx, b.ID, actor, req)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.ID, again.ID)

	req.Quantity = 6
	_, err = uc.Add(ctx, b.ID, actor, req)
	assert.ErrorIs(t, err, domain.ErrConflict)

	req.Number = 5
	_, err = uc.Add(ctx, b.ID, actor, req)
	assert.ErrorIs(t, err, domain.ErrConflict, "el número debe ser el siguiente")
}

func TestAdd_ReintentoSinNumeroNoDuplica(t *testing.T) {
	fx := testutil.NewFixture(t)
	b := fx.Batch(t, "L-1", "ZTE", 100)
	uc := delivery.NewUseCase(fx.Store, logger.Nop(), delivery.Options{})
	ctx := context.Background()
	req := dto.CreateDeliveryRequest{DeliveryDate: "2026-03-01", Quantity: 5, State: "PARTIAL", Notes: "x"}

	first, err := uc.Add(ctx, b.ID, actor, req)
	require.NoError(t, err)
	again, err := uc.Add(ctx, b.ID, actor, req)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, []int{1}, numbers(t, uc, b.ID))

	// otro actor con el mismo contenido es una entrega nueva
	other, err := uc.Add(ctx, b.ID, "otra@onu.local", req)
	require.NoError(t, err)
	assert.False(t, other.Replayed)
	assert.Equal(t, 2, other.Number)

	// una segunda entrega idéntica se registra con número explícito
	req.Number = 3
	third, err := uc.Add(ctx, b.ID, actor, req)
	require.NoError(t, err)
	assert.False(t, third.Replayed)
	assert.Equal(t, []int{1, 2, 3}, numbers(t, uc, b.ID))
}

func TestRemove_RenumeraLasSiguientes(t *testing.T) {
	fx := testutil.NewFixture(t)
	b := fx.Batch(t, "L-1", "ZTE", 100)
	uc := delivery.NewUseCase(fx.Store, logger.Nop(), delivery.Options{})
	ctx := context.Background()
	var ids []int64
	for i := 0; i < 4; i++ {
		ids = append(ids, add(t, uc, b.ID, 10).ID)
	}

	out, err := uc.Remove(ctx, ids[2], actor, dto.DeleteRequest{})
	require.NoError(t, err)
	assert.True(t, out.Deleted)
	assert.Equal(t, []int{1, 2, 3}, numbers(t, uc, b.ID))

	_, err = uc.Remove(ctx, ids[0], actor, dto.DeleteRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, numbers(t, uc, b.ID))

	list, err := uc.List(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, ids[1], list.Items[0].ID)
	assert.Equal(t, ids[3], list.Items[1].ID)
}

func TestRemove_SinForzarSoloPideConfirmacion(t *testing.T) {
	fx := testutil.NewFixture(t)
	b := fx.Batch(t, "L-1", "ZTE", 100)
	d := fx.Delivery(t, b.ID, 10)
	for i := 0; i < 7; i++ {
		fx.Equipment(t, b, d, entity.StateNew)
	}
	uc := delivery.NewUseCase(fx.Store, logger.Nop(), delivery.Options{SampleSize: 3})
	before := fx.Store.Snapshot()

	out, err := uc.Remove(context.Background(), d.ID, actor, dto.DeleteRequest{Strategy: "detach"})
	require.NoError(t, err)
	assert.False(t, out.Deleted)
	assert.True(t, out.RequiresConfirmation)
	assert.Equal(t, 7, out.DependentCount)
	assert.Len(t, out.Sample, 3)
	assert.ElementsMatch(t, []string{"detach", "purge"}, out.Strategies)
	assert.Equal(t, before, fx.Store.Snapshot())

	_, err = uc.Remove(context.Background(), d.ID, actor, dto.DeleteRequest{Force: true})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "force sin estrategia")
}

func TestRemove_DetachDejaEquiposSinEntrega(t *testing.T) {
	fx := testutil.NewFixture(t)
	b := fx.Batch(t, "L-1", "ZTE", 10)
	d := fx.Delivery(t, b.ID, 4)
	e := fx.Equipment(t, b, d, entity.StateNew)
	fx.Equipment(t, b, d, entity.StateAvailable)
	uc := delivery.NewUseCase(fx.Store, logger.Nop(), delivery.Options{})

	list, err := uc.List(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Progress.Received)
	assert.Equal(t, 8, list.Progress.Pending)
	assert.True(t, decimal.NewFromInt(20).Equal(list.Progress.Percent))

	out, err := uc.Remove(context.Background(), d.ID, actor, dto.DeleteRequest{Strategy: "detach", Force: true})
	require.NoError(t, err)
	assert.True(t, out.Deleted)
	assert.Equal(t, 2, out.Affected)

	got := fx.Get(t, e.ID)
	require.NotNil(t, got)
	assert.Nil(t, got.DeliveryID)

	list, err = uc.List(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Progress.Received)
	assert.Equal(t, 2, list.Progress.Unassigned)
}

func TestRemove_PurgeRechazadoSiHayDevolucion(t *testing.T) {
	fx := testutil.NewFixture(t)
	b := fx.Batch(t, "L-1", "ZTE", 10)
	d := fx.Delivery(t, b.ID, 4)
	e := fx.Equipment(t, b, d, entity.StateDefective)
	require.NoError(t, fx.Store.Run(context.Background(), func(repos repository.Set) error {
		return repos.Returns.Create(context.Background(), &entity.VendorReturn{
			Number: "DEV-2026-00001", BatchID: b.ID, State: entity.ReturnPending,
			Items: []entity.ReturnItem{{EquipmentID: e.ID}},
		})
	}))
	uc := delivery.NewUseCase(fx.Store, logger.Nop(), delivery.Options{})

	_, err := uc.Remove(context.Background(), d.ID, actor, dto.DeleteRequest{Strategy: "purge", Force: true})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotNil(t, fx.Get(t, e.ID))
	assert.Equal(t, []int{1}, numbers(t, uc, b.ID))
}

func TestRemove_PurgeConservaIdentificadoresRetirados(t *testing.T) {
	fx := testutil.NewFixture(t)
	b := fx.Batch(t, "L-1", "ZTE", 10)
	d := fx.Delivery(t, b.ID, 4)
	e := fx.Equipment(t, b, d, entity.StateNew)
	ctx := context.Background()
	require.NoError(t, fx.Store.Run(ctx, func(repos repository.Set) error {
		return repos.Retired.Retire(ctx, []entity.RetiredIdentifier{{Field: entity.FieldMAC, Value: e.MAC, EquipmentID: e.ID}})
	}))
	uc := delivery.NewUseCase(fx.Store, logger.Nop(), delivery.Options{})

	out, err := uc.Remove(ctx, d.ID, actor, dto.DeleteRequest{Strategy: "purge", Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Affected)
	assert.Nil(t, fx.Get(t, e.ID))
	assert.Empty(t, fx.History(t, e.ID))

	require.NoError(t, fx.Store.Run(ctx, func(repos repository.Set) error {
		ri, err := repos.Retired.Get(ctx, entity.FieldMAC, e.MAC)
		assert.NotNil(t, ri)
		return err
	}))
}
