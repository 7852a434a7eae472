package returns

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/equipment"
	"github.com/jhoicas/onu-almacen-api/internal/application/ports"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	domainequipment "github.com/jhoicas/onu-almacen-api/internal/domain/equipment"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
	"github.com/jhoicas/onu-almacen-api/internal/domain/returns"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

// Options parámetros del flujo de devoluciones.
type Options struct {
	// ReplacementRequiresInspection el equipo de reemplazo entra a EN_LAB en vez de AVAILABLE.
	ReplacementRequiresInspection bool
}

// UseCase controlador del flujo de devolución a proveedor (PENDING -> SENT -> CONFIRMED).
type UseCase struct {
	txRunner ports.TxRunner
	log      *logger.Logger
	opts     Options
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, log *logger.Logger, opts Options) *UseCase {
	return &UseCase{txRunner: txRunner, log: log.Component("returns"), opts: opts, now: time.Now}
}

// Create registra una devolución PENDING con equipos DEFECTIVE del lote. No modifica los equipos.
// Reintentar con el mismo número y el mismo contenido devuelve la devolución existente.
func (uc *UseCase) Create(ctx context.Context, actor string, in dto.CreateReturnRequest) (*dto.ReturnResponse, error) {
	if actor == "" {
		return nil, domain.ErrUnauthorized
	}
	ids := uniqueIDs(in.EquipmentIDs)
	reason := strings.TrimSpace(in.Reason)
	labReport := strings.TrimSpace(in.LabReportNumber)
	number := strings.ToUpper(strings.TrimSpace(in.ReturnNumber))
	switch {
	case len(ids) == 0:
		return nil, domain.ErrEmptySelection
	case in.BatchID <= 0:
		return nil, domain.Missing("batch_id")
	case reason == "":
		return nil, domain.Missing("reason")
	case labReport == "":
		return nil, domain.Missing("lab_report_number")
	}

	var out *dto.ReturnResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		if number != "" {
			existing, err := repos.Returns.GetByNumber(ctx, number)
			if err != nil {
				return err
			}
			if existing != nil {
				if existing.BatchID != in.BatchID || !sameIDs(existing.EquipmentIDs(), ids) {
					return &domain.DuplicateIdentifierError{Field: "return_number", Value: number}
				}
				out, err = uc.response(ctx, repos, existing)
				if out != nil {
					out.Replayed = true
				}
				return err
			}
		}

		batch, err := repos.Batches.GetByID(ctx, in.BatchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.NotFoundf("lote", in.BatchID)
		}

		items, err := repos.Equipment.GetManyForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if len(items) != len(ids) {
			return domain.NotFoundf("equipo", missingID(ids, items))
		}
		var offenders []domain.Offender
		for _, e := range items {
			if e.BatchID != batch.ID {
				return domain.Invalid("equipment_ids", fmt.Sprintf("el equipo %d no pertenece al lote %s", e.ID, batch.Code))
			}
			if e.State != entity.StateDefective {
				offenders = append(offenders, domain.Offender{EquipmentID: e.ID, State: string(e.State)})
			}
		}
		if len(offenders) > 0 {
			return &domain.NotDefectiveError{Offenders: offenders}
		}

		held, err := repos.Returns.FindByEquipment(ctx, ids)
		if err != nil {
			return err
		}
		for _, r := range held {
			if returns.IsOpen(r) {
				return domain.Conflictf("hay equipos incluidos en la devolución abierta %s", r.Number)
			}
		}

		if number == "" {
			prefix := fmt.Sprintf("DEV-%d-", uc.now().Year())
			seq, err := repos.Returns.NextSequence(ctx, prefix)
			if err != nil {
				return err
			}
			number = fmt.Sprintf("%s%05d", prefix, seq)
		}
		vr := &entity.VendorReturn{
			Number:          number,
			BatchID:         batch.ID,
			Vendor:          batch.Vendor,
			Reason:          reason,
			LabReportNumber: labReport,
			State:           entity.ReturnPending,
			CreatedBy:       actor,
		}
		for _, id := range ids {
			vr.Items = append(vr.Items, entity.ReturnItem{EquipmentID: id})
		}
		if err := repos.Returns.Create(ctx, vr); err != nil {
			return err
		}
		out, err = uc.response(ctx, repos, vr)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !out.Replayed {
		uc.log.Info().
			Int64("return_id", out.ID).
			Str("number", out.Number).
			Int("items", len(out.Items)).
			Str("actor", actor).
			Msg("devolución creada")
	}
	return out, nil
}

// Send marca la devolución como enviada y pasa sus equipos a RETURNED_TO_VENDOR.
func (uc *UseCase) Send(ctx context.Context, id int64, actor string, in dto.SendReturnRequest) (*dto.ReturnResponse, error) {
	if actor == "" {
		return nil, domain.ErrUnauthorized
	}
	var out *dto.ReturnResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		vr, err := uc.lock(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := returns.CheckSend(vr); err != nil {
			return err
		}
		items, err := repos.Equipment.GetManyForUpdate(ctx, vr.EquipmentIDs())
		if err != nil {
			return err
		}
		for _, e := range items {
			if err := equipment.ApplyTransition(ctx, repos, e, entity.StateReturnedToVendor,
				entity.TriggerVendorReturn, actor, "devolución "+vr.Number); err != nil {
				return err
			}
		}
		now := uc.now().UTC()
		vr.State = entity.ReturnSent
		vr.SentAt = &now
		vr.SentNotes = strings.TrimSpace(in.Notes)
		if err := repos.Returns.Update(ctx, vr); err != nil {
			return err
		}
		out, err = uc.response(ctx, repos, vr)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("return_id", id).Str("actor", actor).Msg("devolución enviada al proveedor")
	return out, nil
}

// Confirm registra la respuesta del proveedor.
func (uc *UseCase) Confirm(ctx context.Context, id int64, actor string, in dto.ConfirmReturnRequest) (*dto.ReturnResponse, error) {
	if actor == "" {
		return nil, domain.ErrUnauthorized
	}
	code, err := returns.ParseResponseCode(in.ResponseCode)
	if err != nil {
		return nil, err
	}
	var out *dto.ReturnResponse
	err = uc.txRunner.Run(ctx, func(repos repository.Set) error {
		vr, err := uc.lock(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := returns.CheckConfirm(vr); err != nil {
			return err
		}
		now := uc.now().UTC()
		vr.State = entity.ReturnConfirmed
		vr.ResponseCode = code
		vr.ConfirmedAt = &now
		vr.ResponseNotes = strings.TrimSpace(in.Notes)
		if err := repos.Returns.Update(ctx, vr); err != nil {
			return err
		}
		out, err = uc.response(ctx, repos, vr)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("return_id", id).Str("response_code", string(code)).Str("actor", actor).Msg("respuesta de proveedor confirmada")
	return out, nil
}

// RegisterReplacement da de alta el equipo de reemplazo de un ítem, retira los identificadores
// del original y lo pasa a RE_ENTERED. Todo en una transacción.
func (uc *UseCase) RegisterReplacement(ctx context.Context, id int64, actor string, in dto.RegisterReplacementRequest) (*dto.ReplacementResponse, error) {
	if actor == "" {
		return nil, domain.ErrUnauthorized
	}
	if in.OriginalEquipmentID <= 0 {
		return nil, domain.Missing("original_equipment_id")
	}
	ids, err := domainequipment.Identifiers{
		MAC:                in.MAC,
		GPONSerial:         in.GPONSerial,
		ManufacturerSerial: in.ManufacturerSerial,
	}.Normalize()
	if err != nil {
		return nil, err
	}

	var out *dto.ReplacementResponse
	err = uc.txRunner.Run(ctx, func(repos repository.Set) error {
		vr, err := uc.lock(ctx, repos, id)
		if err != nil {
			return err
		}
		item, err := returns.CheckReplacement(vr, in.OriginalEquipmentID)
		if err != nil {
			return err
		}
		if item.ReplacementID != nil {
			prev, err := repos.Equipment.GetByID(ctx, *item.ReplacementID)
			if err != nil {
				return err
			}
			if prev == nil || !sameIdentifiers(prev, ids) {
				return &domain.StateError{Entity: "ítem", ID: item.EquipmentID, State: "REEMPLAZADO", Operation: "registrar otro reemplazo"}
			}
			resp, err := uc.response(ctx, repos, vr)
			if err != nil {
				return err
			}
			out = &dto.ReplacementResponse{Return: *resp, Replacement: *equipment.ToResponse(prev), Replayed: true}
			return nil
		}

		original, err := repos.Equipment.GetForUpdate(ctx, in.OriginalEquipmentID)
		if err != nil {
			return err
		}
		if original == nil {
			return domain.NotFoundf("equipo", in.OriginalEquipmentID)
		}
		if err := equipment.CheckAvailable(ctx, repos, ids); err != nil {
			return err
		}

		initial := entity.StateAvailable
		if uc.opts.ReplacementRequiresInspection {
			initial = entity.StateInLab
		}
		replacesID := original.ID
		rep := &entity.Equipment{
			Code:               domainequipment.BuildCode(original.ItemCode, ids.MAC),
			ItemCode:           original.ItemCode,
			MAC:                ids.MAC,
			GPONSerial:         ids.GPONSerial,
			ManufacturerSerial: ids.ManufacturerSerial,
			State:              initial,
			BatchID:            original.BatchID,
			ModelID:            original.ModelID,
			WarehouseID:        original.WarehouseID,
			ReplacesID:         &replacesID,
		}
		if err := repos.Equipment.Create(ctx, rep); err != nil {
			return err
		}
		if err := repos.History.Append(ctx, &entity.StateChange{
			EquipmentID: rep.ID,
			To:          initial,
			Trigger:     entity.TriggerReplacement,
			Actor:       actor,
			Reason:      "reemplazo de " + original.Code,
		}); err != nil {
			return err
		}

		retired := make([]entity.RetiredIdentifier, 0, 3)
		for _, field := range entity.IdentifierFields {
			if v, ok := original.Identifiers()[field]; ok {
				retired = append(retired, entity.RetiredIdentifier{Field: field, Value: v, EquipmentID: original.ID})
			}
		}
		if err := repos.Retired.Retire(ctx, retired); err != nil {
			return err
		}
		if err := equipment.ApplyTransition(ctx, repos, original, entity.StateReEntered,
			entity.TriggerReplacement, actor, "reemplazado por "+rep.Code); err != nil {
			return err
		}

		now := uc.now().UTC()
		item.ReplacementID = &rep.ID
		item.ReplacedAt = &now
		if err := repos.Returns.UpdateItem(ctx, vr.ID, *item); err != nil {
			return err
		}
		resp, err := uc.response(ctx, repos, vr)
		if err != nil {
			return err
		}
		out = &dto.ReplacementResponse{Return: *resp, Replacement: *equipment.ToResponse(rep)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !out.Replayed {
		uc.log.Info().
			Int64("return_id", id).
			Int64("original_id", in.OriginalEquipmentID).
			Int64("replacement_id", out.Replacement.ID).
			Str("actor", actor).
			Msg("reemplazo registrado")
	}
	return out, nil
}

// Get devolución con ítems y capacidades.
func (uc *UseCase) Get(ctx context.Context, id int64) (*dto.ReturnResponse, error) {
	var out *dto.ReturnResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		vr, err := repos.Returns.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if vr == nil {
			return domain.NotFoundf("devolución", id)
		}
		out, err = uc.response(ctx, repos, vr)
		return err
	})
	return out, err
}

// List devoluciones por estado/lote, más recientes primero.
func (uc *UseCase) List(ctx context.Context, in dto.ReturnFilterRequest) (*dto.ReturnListResponse, error) {
	in.DefaultPage()
	f := entity.ReturnFilter{BatchID: in.BatchID, Limit: in.Limit, Offset: in.Offset}
	if in.State != "" {
		s := entity.ReturnState(strings.ToUpper(strings.TrimSpace(in.State)))
		if !returns.IsValidState(s) {
			return nil, domain.Invalid("state", "use PENDING, SENT o CONFIRMED")
		}
		f.State = s
	}
	var out *dto.ReturnListResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		list, total, err := repos.Returns.List(ctx, f)
		if err != nil {
			return err
		}
		items := make([]dto.ReturnResponse, 0, len(list))
		for _, vr := range list {
			r, err := uc.response(ctx, repos, vr)
			if err != nil {
				return err
			}
			items = append(items, *r)
		}
		out = &dto.ReturnListResponse{Items: items, Page: in.Page(total)}
		return nil
	})
	return out, err
}

func (uc *UseCase) lock(ctx context.Context, repos repository.Set, id int64) (*entity.VendorReturn, error) {
	vr, err := repos.Returns.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if vr == nil {
		return nil, domain.NotFoundf("devolución", id)
	}
	return vr, nil
}

func (uc *UseCase) response(ctx context.Context, repos repository.Set, vr *entity.VendorReturn) (*dto.ReturnResponse, error) {
	caps := returns.CapabilitiesOf(vr)
	out := &dto.ReturnResponse{
		ID:              vr.ID,
		Number:          vr.Number,
		BatchID:         vr.BatchID,
		Vendor:          vr.Vendor,
		Reason:          vr.Reason,
		LabReportNumber: vr.LabReportNumber,
		State:           string(vr.State),
		ResponseCode:    string(vr.ResponseCode),
		SentAt:          vr.SentAt,
		SentNotes:       vr.SentNotes,
		ConfirmedAt:     vr.ConfirmedAt,
		ResponseNotes:   vr.ResponseNotes,
		CreatedBy:       vr.CreatedBy,
		Items:           make([]dto.ReturnItemResponse, 0, len(vr.Items)),
		Capabilities: dto.CapabilitiesResponse{
			CanSend:                caps.CanSend,
			CanConfirm:             caps.CanConfirm,
			CanRegisterReplacement: caps.CanRegisterReplacement,
		},
		Completed: returns.IsCompleted(vr),
		CreatedAt: vr.CreatedAt,
		UpdatedAt: vr.UpdatedAt,
	}
	for _, it := range vr.Items {
		item := dto.ReturnItemResponse{EquipmentID: it.EquipmentID, ReplacementID: it.ReplacementID, ReplacedAt: it.ReplacedAt}
		e, err := repos.Equipment.GetByID(ctx, it.EquipmentID)
		if err != nil {
			return nil, err
		}
		if e != nil {
			item.Code, item.MAC, item.State = e.Code, e.MAC, string(e.State)
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func sameIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]int64(nil), a...)
	y := append([]int64(nil), b...)
	sort.Slice(x, func(i, j int) bool { return x[i] < x[j] })
	sort.Slice(y, func(i, j int) bool { return y[i] < y[j] })
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func missingID(ids []int64, found []*entity.Equipment) int64 {
	present := make(map[int64]bool, len(found))
	for _, e := range found {
		present[e.ID] = true
	}
	for _, id := range ids {
		if !present[id] {
			return id
		}
	}
	return 0
}

func sameIdentifiers(e *entity.Equipment, ids domainequipment.Identifiers) bool {
	return e.MAC == ids.MAC && e.GPONSerial == ids.GPONSerial && e.ManufacturerSerial == ids.ManufacturerSerial
}
