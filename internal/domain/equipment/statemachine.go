// Package equipment contiene la máquina de estados del registro de equipos y la
// normalización de identificadores (MAC, serie GPON, serie de fabricante).
package equipment

import (
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
)

// transitions tabla única de transiciones permitidas (origen -> destinos).
var transitions = map[entity.EquipmentState][]entity.EquipmentState{
	entity.StateNew:              {entity.StateAvailable, entity.StateInLab, entity.StateDefective, entity.StateDecommissioned},
	entity.StateAvailable:        {entity.StateReserved, entity.StateInLab, entity.StateDefective, entity.StateDecommissioned},
	entity.StateReserved:         {entity.StateAssigned, entity.StateAvailable, entity.StateInLab, entity.StateDefective},
	entity.StateAssigned:         {entity.StateInstalled, entity.StateAvailable, entity.StateInLab, entity.StateDefective},
	entity.StateInstalled:        {entity.StateAvailable, entity.StateInLab, entity.StateDefective, entity.StateDecommissioned},
	entity.StateInLab:            {entity.StateAvailable, entity.StateDefective},
	entity.StateDefective:        {entity.StateInLab, entity.StateReturnedToVendor, entity.StateDecommissioned},
	entity.StateReturnedToVendor: {entity.StateReEntered},
}

// Destinos que solo el flujo de devoluciones puede aplicar.
var workflowOnly = map[entity.EquipmentState]entity.Trigger{
	entity.StateReturnedToVendor: entity.TriggerVendorReturn,
	entity.StateReEntered:        entity.TriggerReplacement,
}

// CanTransition indica si el par (from -> to) está en la tabla.
func CanTransition(from, to entity.EquipmentState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTargets destinos permitidos desde un estado. Los destinos exclusivos del flujo
// de devoluciones solo se incluyen si trigger es el que los habilita.
func AllowedTargets(from entity.EquipmentState, trigger entity.Trigger) []entity.EquipmentState {
	out := make([]entity.EquipmentState, 0, len(transitions[from]))
	for _, s := range transitions[from] {
		if t, ok := workflowOnly[s]; ok && t != trigger {
			continue
		}
		out = append(out, s)
	}
	return out
}

// IsTerminal true si no hay transiciones de salida.
func IsTerminal(s entity.EquipmentState) bool {
	return len(transitions[s]) == 0
}

// IsValidState true si s es uno de los estados conocidos.
func IsValidState(s entity.EquipmentState) bool {
	for _, v := range entity.AllEquipmentStates {
		if v == s {
			return true
		}
	}
	return false
}

// Validate comprueba que el equipo pueda pasar a target con el trigger dado.
// Nunca corrige la solicitud: un par fuera de la tabla (incluido el mismo estado) es TransitionError.
func Validate(e *entity.Equipment, target entity.EquipmentState, trigger entity.Trigger) error {
	if !CanTransition(e.State, target) {
		return &domain.TransitionError{EquipmentID: e.ID, From: string(e.State), To: string(target)}
	}
	if t, ok := workflowOnly[target]; ok && t != trigger {
		return &domain.TransitionError{EquipmentID: e.ID, From: string(e.State), To: string(target)}
	}
	return nil
}
