package returns_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/returns"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/testutil"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

const actor = "bodega@onu.local"

type scenario struct {
	fx      *testutil.Fixture
	uc      *returns.UseCase
	batch   *entity.Batch
	faulty  []*entity.Equipment
	healthy *entity.Equipment
}

func newScenario(t *testing.T, opts returns.Options) *scenario {
	t.Helper()
	fx := testutil.NewFixture(t)
	b := fx.Batch(t, "L-2026-001", "Huawei Colombia", 10)
	d := fx.Delivery(t, b.ID, 10)
	return &scenario{
		fx:    fx,
		uc:    returns.NewUseCase(fx.Store, logger.Nop(), opts),
		batch: b,
		faulty: []*entity.Equipment{
			fx.Equipment(t, b, d, entity.StateDefective),
			fx.Equipment(t, b, d, entity.StateDefective),
		},
		healthy: fx.Equipment(t, b, d, entity.StateAvailable),
	}
}

func (s *scenario) create(t *testing.T) *dto.ReturnResponse {
	t.Helper()
	out, err := s.uc.Create(context.Background(), actor, dto.CreateReturnRequest{
		BatchID:         s.batch.ID,
		Reason:          "no enciende",
		LabReportNumber: "LAB-77",
		EquipmentIDs:    []int64{s.faulty[0].ID, s.faulty[1].ID},
	})
	require.NoError(t, err)
	return out
}

func TestCreate_QuedaPendienteSinTocarEquipos(t *testing.T) {
	s := newScenario(t, returns.Options{})
	out := s.create(t)

	assert.Equal(t, string(entity.ReturnPending), out.State)
	assert.True(t, strings.HasPrefix(out.Number, "DEV-"))
	assert.Equal(t, "Huawei Colombia", out.Vendor)
	assert.True(t, out.Capabilities.CanSend)
	assert.False(t, out.Capabilities.CanConfirm)
	assert.False(t, out.Completed)
	for _, e := range s.faulty {
		assert.Equal(t, entity.StateDefective, s.fx.Get(t, e.ID).State)
	}
}

func TestCreate_RechazaEquiposNoDefectuosos(t *testing.T) {
	s := newScenario(t, returns.Options{})
	_, err := s.uc.Create(context.Background(), actor, dto.CreateReturnRequest{
		BatchID: s.batch.ID, Reason: "x", LabReportNumber: "LAB-1",
		EquipmentIDs: []int64{s.faulty[0].ID, s.healthy.ID},
	})
	var nd *domain.NotDefectiveError
	require.ErrorAs(t, err, &nd)
	require.Len(t, nd.Offenders, 1)
	assert.Equal(t, s.healthy.ID, nd.Offenders[0].EquipmentID)
	assert.Equal(t, string(entity.StateAvailable), nd.Offenders[0].State)
}

func TestCreate_Validaciones(t *testing.T) {
	s := newScenario(t, returns.Options{})
	ctx := context.Background()

	_, err := s.uc.Create(ctx, actor, dto.CreateReturnRequest{BatchID: s.batch.ID, Reason: "x", LabReportNumber: "L"})
	assert.ErrorIs(t, err, domain.ErrEmptySelection)

	_, err = s.uc.Create(ctx, actor, dto.CreateReturnRequest{
		BatchID: s.batch.ID, Reason: "x", LabReportNumber: "L", EquipmentIDs: []int64{9999},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.uc.Create(ctx, "", dto.CreateReturnRequest{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreate_EquipoYaEnDevolucionAbierta(t *testing.T) {
	s := newScenario(t, returns.Options{})
	s.create(t)
	_, err := s.uc.Create(context.Background(), actor, dto.CreateReturnRequest{
		BatchID: s.batch.ID, Reason: "otra", LabReportNumber: "LAB-78",
		EquipmentIDs: []int64{s.faulty[1].ID},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreate_ReintentoConMismoNumero(t *testing.T) {
	s := newScenario(t, returns.Options{})
	ctx := context.Background()
	req := dto.CreateReturnRequest{
		BatchID: s.batch.ID, Reason: "no enciende", LabReportNumber: "LAB-77",
		EquipmentIDs: []int64{s.faulty[0].ID}, ReturnNumber: "dev-manual-1",
	}
	first, err := s.uc.Create(ctx, actor, req)
	require.NoError(t, err)
	assert.Equal(t, "DEV-MANUAL-1", first.Number)

	again, err := s.uc.Create(ctx, actor, req)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.ID, again.ID)

	req.EquipmentIDs = []int64{s.faulty[1].ID}
	_, err = s.uc.Create(ctx, actor, req)
	var dup *domain.DuplicateIdentifierError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "return_number", dup.Field)
}

func TestSend_PasaEquiposARetornadoAProveedor(t *testing.T) {
	s := newScenario(t, returns.Options{})
	created := s.create(t)

	sent, err := s.uc.Send(context.Background(), created.ID, actor, dto.SendReturnRequest{Notes: "guía 123"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReturnSent), sent.State)
	assert.NotNil(t, sent.SentAt)
	assert.True(t, sent.Capabilities.CanConfirm)
	for _, e := range s.faulty {
		got := s.fx.Get(t, e.ID)
		assert.Equal(t, entity.StateReturnedToVendor, got.State)
		h := s.fx.History(t, e.ID)
		require.NotEmpty(t, h)
		assert.Equal(t, entity.TriggerVendorReturn, h[len(h)-1].Trigger)
	}

	_, err = s.uc.Send(context.Background(), created.ID, actor, dto.SendReturnRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestConfirm_DesdePendienteEsInvalido(t *testing.T) {
	s := newScenario(t, returns.Options{})
	created := s.create(t)
	_, err := s.uc.Confirm(context.Background(), created.ID, actor, dto.ConfirmReturnRequest{ResponseCode: "REPLACEMENT"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = s.uc.Confirm(context.Background(), created.ID, actor, dto.ConfirmReturnRequest{ResponseCode: "MAYBE"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReplacement_ConNotaCreditoEsInvalido(t *testing.T) {
	s := newScenario(t, returns.Options{})
	ctx := context.Background()
	created := s.create(t)
	_, err := s.uc.Send(ctx, created.ID, actor, dto.SendReturnRequest{})
	require.NoError(t, err)
	confirmed, err := s.uc.Confirm(ctx, created.ID, actor, dto.ConfirmReturnRequest{ResponseCode: "credit"})
	require.NoError(t, err)
	assert.True(t, confirmed.Completed)
	assert.False(t, confirmed.Capabilities.CanRegisterReplacement)

	_, err = s.uc.RegisterReplacement(ctx, created.ID, actor, dto.RegisterReplacementRequest{
		OriginalEquipmentID: s.faulty[0].ID, MAC: "AA:BB:CC:00:00:01", GPONSerial: "ZTEG00000001",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func confirmedReplacement(t *testing.T, s *scenario) *dto.ReturnResponse {
	t.Helper()
	ctx := context.Background()
	created := s.create(t)
	_, err := s.uc.Send(ctx, created.ID, actor, dto.SendReturnRequest{})
	require.NoError(t, err)
	out, err := s.uc.Confirm(ctx, created.ID, actor, dto.ConfirmReturnRequest{ResponseCode: "REPLACEMENT"})
	require.NoError(t, err)
	return out
}

func TestRegisterReplacement_FlujoCompleto(t *testing.T) {
	s := newScenario(t, returns.Options{})
	ctx := context.Background()
	vr := confirmedReplacement(t, s)
	require.True(t, vr.Capabilities.CanRegisterReplacement)

	out, err := s.uc.RegisterReplacement(ctx, vr.ID, actor, dto.RegisterReplacementRequest{
		OriginalEquipmentID: s.faulty[0].ID, MAC: "aa-bb-cc-00-00-01", GPONSerial: "zteg00000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "AA:BB:CC:00:00:01", out.Replacement.MAC)
	assert.Equal(t, string(entity.StateAvailable), out.Replacement.State)
	require.NotNil(t, out.Replacement.ReplacesID)
	assert.Equal(t, s.faulty[0].ID, *out.Replacement.ReplacesID)
	assert.False(t, out.Return.Completed, "queda un ítem pendiente")
	assert.Equal(t, entity.StateReEntered, s.fx.Get(t, s.faulty[0].ID).State)

	// el original conserva sus identificadores pero quedan retirados
	_, err = s.uc.RegisterReplacement(ctx, vr.ID, actor, dto.RegisterReplacementRequest{
		OriginalEquipmentID: s.faulty[1].ID, MAC: s.faulty[0].MAC, GPONSerial: "ZTEG00000002",
	})
	var dup *domain.DuplicateIdentifierError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "mac", dup.Field)

	last, err := s.uc.RegisterReplacement(ctx, vr.ID, actor, dto.RegisterReplacementRequest{
		OriginalEquipmentID: s.faulty[1].ID, MAC: "AA:BB:CC:00:00:02", GPONSerial: "ZTEG00000002",
	})
	require.NoError(t, err)
	assert.True(t, last.Return.Completed)
	assert.False(t, last.Return.Capabilities.CanRegisterReplacement)
}

func TestRegisterReplacement_GPONRetiradoEnFormaHex(t *testing.T) {
	s := newScenario(t, returns.Options{})
	ctx := context.Background()
	vr := confirmedReplacement(t, s)

	_, err := s.uc.RegisterReplacement(ctx, vr.ID, actor, dto.RegisterReplacementRequest{
		OriginalEquipmentID: s.faulty[0].ID, MAC: "AA:BB:CC:00:00:01", GPONSerial: "ZTEG00000001",
	})
	require.NoError(t, err)

	// HWTC = 48575443: la serie retirada del original escrita en 16 hex
	require.True(t, strings.HasPrefix(s.faulty[0].GPONSerial, "HWTC"))
	hexForm := "48575443" + s.faulty[0].GPONSerial[4:]
	_, err = s.uc.RegisterReplacement(ctx, vr.ID, actor, dto.RegisterReplacementRequest{
		OriginalEquipmentID: s.faulty[1].ID, MAC: "AA:BB:CC:00:00:02", GPONSerial: hexForm,
	})
	var dup *domain.DuplicateIdentifierError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "gpon_serial", dup.Field)
}

func TestRegisterReplacement_ReintentoYSegundoReemplazo(t *testing.T) {
	s := newScenario(t, returns.Options{ReplacementRequiresInspection: true})
	ctx := context.Background()
	vr := confirmedReplacement(t, s)
	req := dto.RegisterReplacementRequest{
		OriginalEquipmentID: s.faulty[0].ID, MAC: "AA:BB:CC:00:00:01", GPONSerial: "ZTEG00000001",
	}
	first, err := s.uc.RegisterReplacement(ctx, vr.ID, actor, req)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StateInLab), first.Replacement.State)

	again, err := s.uc.RegisterReplacement(ctx, vr.ID, actor, req)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.Replacement.ID, again.Replacement.ID)

	req.MAC = "AA:BB:CC:00:00:09"
	req.GPONSerial = "ZTEG00000009"
	_, err = s.uc.RegisterReplacement(ctx, vr.ID, actor, req)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRegisterReplacement_ConcurrenteMismaMAC(t *testing.T) {
	s := newScenario(t, returns.Options{})
	vr := confirmedReplacement(t, s)

	var wg sync.WaitGroup
	errs := make([]error, len(s.faulty))
	for i, orig := range s.faulty {
		wg.Add(1)
		go func(i int, origID int64) {
			defer wg.Done()
			_, errs[i] = s.uc.RegisterReplacement(context.Background(), vr.ID, actor, dto.RegisterReplacementRequest{
				OriginalEquipmentID: origID,
				MAC:                 "AA:BB:CC:DD:EE:FF",
				GPONSerial:          "ZTEG0000000" + string(rune('1'+i)),
			})
		}(i, orig.ID)
	}
	wg.Wait()

	ok, dups := 0, 0
	for _, err := range errs {
		var dup *domain.DuplicateIdentifierError
		switch {
		case err == nil:
			ok++
		case assert.ErrorAs(t, err, &dup):
			assert.Equal(t, "mac", dup.Field)
			dups++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dups)
}

func TestRegisterReplacement_EquipoAjeno(t *testing.T) {
	s := newScenario(t, returns.Options{})
	vr := confirmedReplacement(t, s)
	_, err := s.uc.RegisterReplacement(context.Background(), vr.ID, actor, dto.RegisterReplacementRequest{
		OriginalEquipmentID: s.healthy.ID, MAC: "AA:BB:CC:00:00:01", GPONSerial: "ZTEG00000001",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestList_FiltraPorEstado(t *testing.T) {
	s := newScenario(t, returns.Options{})
	created := s.create(t)
	list, err := s.uc.List(context.Background(), dto.ReturnFilterRequest{State: "pending"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.ID, list.Items[0].ID)

	list, err = s.uc.List(context.Background(), dto.ReturnFilterRequest{State: "SENT"})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}
