package equipment

import (
	"context"
	"strings"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/ports"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/equipment"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

// UseCase consultas y transiciones manuales del registro de equipos.
type UseCase struct {
	txRunner ports.TxRunner
	log      *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, log: log.Component("equipment")}
}

// ApplyTransition valida y aplica target sobre e dentro de la transacción de repos,
// y agrega la entrada de historial. e debe venir de GetForUpdate.
func ApplyTransition(
	ctx context.Context,
	repos repository.Set,
	e *entity.Equipment,
	target entity.EquipmentState,
	trigger entity.Trigger,
	actor, reason string,
) error {
	if err := equipment.Validate(e, target, trigger); err != nil {
		return err
	}
	from := e.State
	e.State = target
	if err := repos.Equipment.Update(ctx, e); err != nil {
		e.State = from
		return err
	}
	return repos.History.Append(ctx, &entity.StateChange{
		EquipmentID: e.ID,
		From:        from,
		To:          target,
		Trigger:     trigger,
		Actor:       actor,
		Reason:      reason,
	})
}

// ParseState normaliza y valida un nombre de estado.
func ParseState(raw string) (entity.EquipmentState, error) {
	s := entity.EquipmentState(strings.ToUpper(strings.TrimSpace(raw)))
	if s == "" {
		return "", domain.Missing("state")
	}
	if !equipment.IsValidState(s) {
		return "", domain.Invalid("state", "estado desconocido: "+string(s))
	}
	return s, nil
}

// ChangeState transición manual. Un reintento de una transición ya aplicada se rechaza
// como transición inválida (el estado actual ya no la permite).
func (uc *UseCase) ChangeState(ctx context.Context, id int64, actor string, in dto.ChangeStateRequest) (*dto.EquipmentResponse, error) {
	target, err := ParseState(in.State)
	if err != nil {
		return nil, err
	}
	if actor == "" {
		return nil, domain.ErrUnauthorized
	}

	var out *entity.Equipment
	var from entity.EquipmentState
	err = uc.txRunner.Run(ctx, func(repos repository.Set) error {
		e, err := repos.Equipment.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.NotFoundf("equipo", id)
		}
		if in.ExpectedVersion != nil && *in.ExpectedVersion != e.Version {
			return &domain.VersionConflictError{Entity: "equipo", ID: id, Expected: *in.ExpectedVersion, Actual: e.Version}
		}
		from = e.State
		if err := ApplyTransition(ctx, repos, e, target, entity.TriggerManual, actor, strings.TrimSpace(in.Reason)); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int64("equipment_id", id).
		Str("from", string(from)).
		Str("to", string(target)).
		Str("actor", actor).
		Msg("estado de equipo actualizado")
	return ToResponse(out), nil
}

// List lista equipos con filtros y paginación.
func (uc *UseCase) List(ctx context.Context, in dto.EquipmentFilterRequest) (*dto.EquipmentListResponse, error) {
	in.DefaultPage()
	f := entity.EquipmentFilter{
		ModelID:     in.ModelID,
		BatchID:     in.BatchID,
		WarehouseID: in.WarehouseID,
		DeliveryID:  in.DeliveryID,
		Search:      strings.TrimSpace(in.Search),
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	if in.State != "" {
		s, err := ParseState(in.State)
		if err != nil {
			return nil, err
		}
		f.State = s
	}

	var list []*entity.Equipment
	var total int
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		var err error
		list, total, err = repos.Equipment.List(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.EquipmentResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *ToResponse(e))
	}
	return &dto.EquipmentListResponse{
		Items: items,
		Page:  in.Page(total),
	}, nil
}

// Get detalle del equipo con modelo, bodega, lote, número de entrega, historial e inspecciones.
func (uc *UseCase) Get(ctx context.Context, id int64) (*dto.EquipmentDetailResponse, error) {
	var out *dto.EquipmentDetailResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		e, err := repos.Equipment.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.NotFoundf("equipo", id)
		}
		d := &dto.EquipmentDetailResponse{EquipmentResponse: *ToResponse(e)}

		if m, err := repos.Models.GetByID(ctx, e.ModelID); err != nil {
			return err
		} else if m != nil {
			d.Model = &dto.ModelResponse{ID: m.ID, Brand: m.Brand, Name: m.Name, ItemCode: m.ItemCode, CreatedAt: m.CreatedAt}
		}
		if w, err := repos.Warehouses.GetByID(ctx, e.WarehouseID); err != nil {
			return err
		} else if w != nil {
			d.Warehouse = &dto.WarehouseResponse{ID: w.ID, Name: w.Name, Address: w.Address, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt}
		}
		if b, err := repos.Batches.GetByID(ctx, e.BatchID); err != nil {
			return err
		} else if b != nil {
			d.BatchCode, d.Vendor = b.Code, b.Vendor
		}
		if e.DeliveryID != nil {
			del, err := repos.Deliveries.GetByID(ctx, *e.DeliveryID)
			if err != nil {
				return err
			}
			if del != nil {
				n := del.Number
				d.DeliveryNumber = &n
			}
		}

		d.AllowedStates = make([]string, 0)
		for _, s := range equipment.AllowedTargets(e.State, entity.TriggerManual) {
			d.AllowedStates = append(d.AllowedStates, string(s))
		}

		history, err := repos.History.ListByEquipment(ctx, id)
		if err != nil {
			return err
		}
		d.History = ToHistoryResponse(history)

		records, err := repos.Inspections.ListByEquipment(ctx, id)
		if err != nil {
			return err
		}
		d.Inspections = make([]dto.InspectionResponse, 0, len(records))
		for _, r := range records {
			d.Inspections = append(d.Inspections, ToInspectionResponse(r, ""))
		}

		sectorReturns, err := repos.SectorReturns.ListByEquipment(ctx, id)
		if err != nil {
			return err
		}
		d.SectorReturns = ToSectorReturnsResponse(sectorReturns)
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// History historial de estados del equipo, en orden cronológico.
func (uc *UseCase) History(ctx context.Context, id int64) ([]dto.StateChangeResponse, error) {
	var out []dto.StateChangeResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		e, err := repos.Equipment.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.NotFoundf("equipo", id)
		}
		history, err := repos.History.ListByEquipment(ctx, id)
		if err != nil {
			return err
		}
		out = ToHistoryResponse(history)
		return nil
	})
	return out, err
}

// CheckAvailable verifica los identificadores contra equipos existentes y el registro de retirados.
func CheckAvailable(ctx context.Context, repos repository.Set, ids equipment.Identifiers) error {
	for _, fv := range ids.Values() {
		e, err := repos.Equipment.FindByIdentifier(ctx, fv.Field, fv.Value)
		if err != nil {
			return err
		}
		if e != nil {
			return &domain.DuplicateIdentifierError{Field: string(fv.Field), Value: fv.Value}
		}
		ri, err := repos.Retired.Get(ctx, fv.Field, fv.Value)
		if err != nil {
			return err
		}
		if ri != nil {
			return &domain.DuplicateIdentifierError{Field: string(fv.Field), Value: fv.Value}
		}
	}
	return nil
}
