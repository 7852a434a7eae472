package inspection

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/equipment"
	"github.com/jhoicas/onu-almacen-api/internal/application/ports"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	domainequipment "github.com/jhoicas/onu-almacen-api/internal/domain/equipment"
	"github.com/jhoicas/onu-almacen-api/internal/domain/inspection"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

// Options parámetros del flujo de laboratorio.
type Options struct {
	// ApprovedState estado tras una inspección aprobada; debe ser alcanzable desde EN_LAB.
	ApprovedState entity.EquipmentState
}

// UseCase registro de inspecciones de laboratorio.
type UseCase struct {
	txRunner      ports.TxRunner
	log           *logger.Logger
	approvedState entity.EquipmentState
}

// NewUseCase construye el caso de uso. Un ApprovedState no alcanzable desde EN_LAB se reemplaza por AVAILABLE.
func NewUseCase(txRunner ports.TxRunner, log *logger.Logger, opts Options) *UseCase {
	approved := opts.ApprovedState
	if approved == entity.StateDefective || !domainequipment.CanTransition(entity.StateInLab, approved) {
		approved = entity.StateAvailable
	}
	return &UseCase{txRunner: txRunner, log: log.Component("inspection"), approvedState: approved}
}

// Register guarda el resultado y mueve el equipo según el veredicto, en una sola transacción.
func (uc *UseCase) Register(ctx context.Context, technician string, in dto.CreateInspectionRequest) (*dto.InspectionResponse, error) {
	if technician == "" {
		return nil, domain.ErrUnauthorized
	}
	results, err := parseResults(in)
	if err != nil {
		return nil, err
	}
	if in.DurationSeconds < 0 {
		return nil, domain.Invalid("duration_seconds", "no puede ser negativa")
	}

	verdict := inspection.Evaluate(results)
	target := inspection.TargetState(verdict, uc.approvedState)
	reason := "inspección aprobada"
	if !verdict.Approved {
		reason = "fallas: " + strings.Join(verdict.Faults, ", ")
	}

	var rec *entity.InspectionRecord
	err = uc.txRunner.Run(ctx, func(repos repository.Set) error {
		e, err := repos.Equipment.GetForUpdate(ctx, in.EquipmentID)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.NotFoundf("equipo", in.EquipmentID)
		}
		if e.State != entity.StateInLab {
			return &domain.StateError{Entity: "equipo", ID: e.ID, State: string(e.State), Operation: "registrar inspección"}
		}
		rec = &entity.InspectionRecord{
			EquipmentID: e.ID,
			Results:     results,
			Approved:    verdict.Approved,
			Faults:      verdict.Faults,
			Notes:       strings.TrimSpace(in.Notes),
			Technician:  technician,
			Duration:    time.Duration(in.DurationSeconds) * time.Second,
		}
		if err := repos.Inspections.Create(ctx, rec); err != nil {
			return err
		}
		return equipment.ApplyTransition(ctx, repos, e, target, entity.TriggerInspection, technician, reason)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("equipment_id", in.EquipmentID).
		Bool("approved", verdict.Approved).
		Strs("faults", verdict.Faults).
		Str("actor", technician).
		Msg("inspección registrada")
	out := equipment.ToInspectionResponse(rec, target)
	return &out, nil
}

// ListByEquipment inspecciones del equipo en orden cronológico.
func (uc *UseCase) ListByEquipment(ctx context.Context, equipmentID int64) ([]dto.InspectionResponse, error) {
	var out []dto.InspectionResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		e, err := repos.Equipment.GetByID(ctx, equipmentID)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.NotFoundf("equipo", equipmentID)
		}
		list, err := repos.Inspections.ListByEquipment(ctx, equipmentID)
		if err != nil {
			return err
		}
		out = make([]dto.InspectionResponse, 0, len(list))
		for _, r := range list {
			out = append(out, equipment.ToInspectionResponse(r, ""))
		}
		return nil
	})
	return out, err
}

func parseResults(in dto.CreateInspectionRequest) (entity.TestResults, error) {
	if in.EquipmentID <= 0 {
		return entity.TestResults{}, domain.Missing("equipment_id")
	}
	fields := []struct {
		name string
		v    *bool
	}{
		{"logical_serial_match", in.LogicalSerialMatch},
		{"wifi_2_4ghz", in.WiFi24GHz},
		{"wifi_5ghz", in.WiFi5GHz},
		{"ethernet_port", in.EthernetPort},
		{"lan_port", in.LANPort},
	}
	for _, f := range fields {
		if f.v == nil {
			return entity.TestResults{}, domain.Missing(f.name)
		}
	}
	return entity.TestResults{
		LogicalSerialMatch: *in.LogicalSerialMatch,
		WiFi24GHz:          *in.WiFi24GHz,
		WiFi5GHz:           *in.WiFi5GHz,
		EthernetPort:       *in.EthernetPort,
		LANPort:            *in.LANPort,
	}, nil
}
