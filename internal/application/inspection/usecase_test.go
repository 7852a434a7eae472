package inspection_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/inspection"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/testutil"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

const technician = "lab@onu.local"

func request(equipmentID int64, results ...bool) dto.CreateInspectionRequest {
	ptr := func(b bool) *bool { return &b }
	return dto.CreateInspectionRequest{
		EquipmentID:        equipmentID,
		LogicalSerialMatch: ptr(results[0]),
		WiFi24GHz:          ptr(results[1]),
		WiFi5GHz:           ptr(results[2]),
		EthernetPort:       ptr(results[3]),
		LANPort:            ptr(results[4]),
		DurationSeconds:    90,
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		results  []bool
		approved entity.EquipmentState
		want     entity.EquipmentState
		faults   []string
	}{
		{"todo pasa", []bool{true, true, true, true, true}, "", entity.StateAvailable, []string{}},
		{"falla wifi 5", []bool{true, true, false, true, true}, "", entity.StateDefective, []string{"WIFI_5GHZ"}},
		{"varias fallas en orden", []bool{false, true, true, true, false}, "", entity.StateDefective, []string{"LOGICAL_SERIAL", "LAN_PORT"}},
		{"estado aprobado inalcanzable", []bool{true, true, true, true, true}, entity.StateInstalled, entity.StateAvailable, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := testutil.NewFixture(t)
			b := fx.Batch(t, "L-1", "ZTE", 5)
			e := fx.Equipment(t, b, nil, entity.StateInLab)
			uc := inspection.NewUseCase(fx.Store, logger.Nop(), inspection.Options{ApprovedState: tt.approved})

			out, err := uc.Register(context.Background(), technician, request(e.ID, tt.results...))
			require.NoError(t, err)
			assert.Equal(t, tt.want == entity.StateAvailable, out.Approved)
			assert.ElementsMatch(t, tt.faults, out.Faults)
			if len(tt.faults) > 1 {
				assert.Equal(t, tt.faults, out.Faults)
			}
			assert.Equal(t, string(tt.want), out.ResultingState)
			assert.Equal(t, 90, out.DurationSeconds)

			assert.Equal(t, tt.want, fx.Get(t, e.ID).State)
			h := fx.History(t, e.ID)
			require.NotEmpty(t, h)
			assert.Equal(t, entity.TriggerInspection, h[len(h)-1].Trigger)
			assert.Equal(t, technician, h[len(h)-1].Actor)
		})
	}
}

func TestRegister_SoloDesdeLaboratorio(t *testing.T) {
	fx := testutil.NewFixture(t)
	b := fx.Batch(t, "L-1", "ZTE", 5)
	e := fx.Equipment(t, b, nil, entity.StateAvailable)
	uc := inspection.NewUseCase(fx.Store, logger.Nop(), inspection.Options{})

	_, err := uc.Register(context.Background(), technician, request(e.ID, true, true, true, true, true))
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	list, err := uc.ListByEquipment(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "un rechazo no deja registro")
}

func TestRegister_PruebasObligatorias(t *testing.T) {
	fx := testutil.NewFixture(t)
	b := fx.Batch(t, "L-1", "ZTE", 5)
	e := fx.Equipment(t, b, nil, entity.StateInLab)
	uc := inspection.NewUseCase(fx.Store, logger.Nop(), inspection.Options{})

	req := request(e.ID, true, true, true, true, true)
	req.LANPort = nil
	_, err := uc.Register(context.Background(), technician, req)
	var fe *domain.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "lan_port", fe.Field)
	assert.ErrorIs(t, err, domain.ErrMissingField)
	assert.Equal(t, entity.StateInLab, fx.Get(t, e.ID).State)
}
