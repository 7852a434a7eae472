package sectorreturn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/sectorreturn"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/testutil"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

func TestRegister_EnviaALaboratorio(t *testing.T) {
	for _, from := range []entity.EquipmentState{entity.StateReserved, entity.StateAssigned, entity.StateInstalled} {
		t.Run(string(from), func(t *testing.T) {
			fx := testutil.NewFixture(t)
			b := fx.Batch(t, "L-1", "ZTE", 5)
			e := fx.Equipment(t, b, nil, from)
			uc := sectorreturn.NewUseCase(fx.Store, logger.Nop())

			out, err := uc.Register(context.Background(), "lab@onu.local", dto.SectorReturnRequest{
				EquipmentID: e.ID, Sector: "Instalaciones Norte", Reason: "cliente reporta cortes",
			})
			require.NoError(t, err)
			assert.Equal(t, string(from), out.FromState)
			assert.Equal(t, entity.StateInLab, fx.Get(t, e.ID).State)

			list, err := uc.ListByEquipment(context.Background(), e.ID)
			require.NoError(t, err)
			assert.Len(t, list, 1)
			h := fx.History(t, e.ID)
			require.Len(t, h, 1)
			assert.Equal(t, entity.TriggerSectorReturn, h[0].Trigger)
		})
	}
}

func TestRegister_EstadoNoDevolvible(t *testing.T) {
	fx := testutil.NewFixture(t)
	b := fx.Batch(t, "L-1", "ZTE", 5)
	e := fx.Equipment(t, b, nil, entity.StateAvailable)
	uc := sectorreturn.NewUseCase(fx.Store, logger.Nop())

	_, err := uc.Register(context.Background(), "lab@onu.local", dto.SectorReturnRequest{
		EquipmentID: e.ID, Sector: "Norte", Reason: "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = uc.Register(context.Background(), "lab@onu.local", dto.SectorReturnRequest{EquipmentID: e.ID, Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrMissingField)
}
