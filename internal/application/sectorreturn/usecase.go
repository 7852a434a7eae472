// Package sectorreturn implementa la devolución de equipos por parte del sector solicitante:
// un equipo reservado, asignado o instalado vuelve al laboratorio para reinspección.
// Es un flujo distinto de la devolución a proveedor.
package sectorreturn

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/equipment"
	"github.com/jhoicas/onu-almacen-api/internal/application/ports"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

var returnable = map[entity.EquipmentState]bool{
	entity.StateReserved:  true,
	entity.StateAssigned:  true,
	entity.StateInstalled: true,
}

// UseCase devoluciones de sector.
type UseCase struct {
	txRunner ports.TxRunner
	log      *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, log: log.Component("sectorreturn")}
}

// Register recibe el equipo en laboratorio (EN_LAB) y guarda el registro.
func (uc *UseCase) Register(ctx context.Context, actor string, in dto.SectorReturnRequest) (*dto.SectorReturnResponse, error) {
	if actor == "" {
		return nil, domain.ErrUnauthorized
	}
	sector := strings.TrimSpace(in.Sector)
	reason := strings.TrimSpace(in.Reason)
	switch {
	case in.EquipmentID <= 0:
		return nil, domain.Missing("equipment_id")
	case sector == "":
		return nil, domain.Missing("sector")
	case reason == "":
		return nil, domain.Missing("reason")
	}

	var rec *entity.SectorReturn
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		e, err := repos.Equipment.GetForUpdate(ctx, in.EquipmentID)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.NotFoundf("equipo", in.EquipmentID)
		}
		if !returnable[e.State] {
			return &domain.StateError{Entity: "equipo", ID: e.ID, State: string(e.State), Operation: "devolución de sector"}
		}
		rec = &entity.SectorReturn{
			EquipmentID: e.ID,
			Sector:      sector,
			Reason:      reason,
			FromState:   e.State,
			ReceivedBy:  actor,
		}
		note := fmt.Sprintf("devolución de %s: %s", sector, reason)
		if err := equipment.ApplyTransition(ctx, repos, e, entity.StateInLab, entity.TriggerSectorReturn, actor, note); err != nil {
			return err
		}
		return repos.SectorReturns.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int64("equipment_id", rec.EquipmentID).
		Str("sector", sector).
		Str("from", string(rec.FromState)).
		Str("actor", actor).
		Msg("equipo devuelto por sector")
	out := equipment.ToSectorReturnResponse(rec)
	return &out, nil
}

// ListByEquipment devoluciones de sector del equipo.
func (uc *UseCase) ListByEquipment(ctx context.Context, equipmentID int64) ([]dto.SectorReturnResponse, error) {
	var out []dto.SectorReturnResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		e, err := repos.Equipment.GetByID(ctx, equipmentID)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.NotFoundf("equipo", equipmentID)
		}
		list, err := repos.SectorReturns.ListByEquipment(ctx, equipmentID)
		if err != nil {
			return err
		}
		out = equipment.ToSectorReturnsResponse(list)
		return nil
	})
	return out, err
}
