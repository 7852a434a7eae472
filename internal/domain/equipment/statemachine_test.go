package equipment_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/equipment"
)

// Tabla esperada escrita a mano para detectar cambios accidentales en la definición.
var expected = map[entity.EquipmentState][]entity.EquipmentState{
	entity.StateNew:              {entity.StateAvailable, entity.StateInLab, entity.StateDefective, entity.StateDecommissioned},
	entity.StateAvailable:        {entity.StateReserved, entity.StateInLab, entity.StateDefective, entity.StateDecommissioned},
	entity.StateReserved:         {entity.StateAssigned, entity.StateAvailable, entity.StateInLab, entity.StateDefective},
	entity.StateAssigned:         {entity.StateInstalled, entity.StateAvailable, entity.StateInLab, entity.StateDefective},
	entity.StateInstalled:        {entity.StateAvailable, entity.StateInLab, entity.StateDefective, entity.StateDecommissioned},
	entity.StateInLab:            {entity.StateAvailable, entity.StateDefective},
	entity.StateDefective:        {entity.StateInLab, entity.StateReturnedToVendor, entity.StateDecommissioned},
	entity.StateReturnedToVendor: {entity.StateReEntered},
}

func inExpected(from, to entity.EquipmentState) bool {
	for _, s := range expected[from] {
		if s == to {
			return true
		}
	}
	return false
}

func triggerFor(to entity.EquipmentState) entity.Trigger {
	switch to {
	case entity.StateReturnedToVendor:
		return entity.TriggerVendorReturn
	case entity.StateReEntered:
		return entity.TriggerReplacement
	default:
		return entity.TriggerManual
	}
}

func TestValidate_TodosLosPares(t *testing.T) {
	for _, from := range entity.AllEquipmentStates {
		for _, to := range entity.AllEquipmentStates {
			e := &entity.Equipment{ID: 7, State: from}
			err := equipment.Validate(e, to, triggerFor(to))
			if inExpected(from, to) {
				assert.NoError(t, err, "%s -> %s debe estar permitido", from, to)
				continue
			}
			require.Error(t, err, "%s -> %s no debe estar permitido", from, to)
			assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
			var te *domain.TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, string(from), te.From)
			assert.Equal(t, string(to), te.To)
			assert.Equal(t, from, e.State, "el estado no debe cambiar")
		}
	}
}

func TestValidate_DestinosDeFlujoRechazanTriggerManual(t *testing.T) {
	e := &entity.Equipment{ID: 1, State: entity.StateDefective}
	err := equipment.Validate(e, entity.StateReturnedToVendor, entity.TriggerManual)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	e = &entity.Equipment{ID: 1, State: entity.StateReturnedToVendor}
	err = equipment.Validate(e, entity.StateReEntered, entity.TriggerManual)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestValidate_DefectuosoDesdeCualquierEstadoNoTerminal(t *testing.T) {
	for _, from := range []entity.EquipmentState{
		entity.StateNew, entity.StateAvailable, entity.StateReserved,
		entity.StateAssigned, entity.StateInstalled, entity.StateInLab,
	} {
		e := &entity.Equipment{State: from}
		assert.NoError(t, equipment.Validate(e, entity.StateDefective, entity.TriggerInspection), "desde %s", from)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, equipment.IsTerminal(entity.StateReEntered))
	assert.True(t, equipment.IsTerminal(entity.StateDecommissioned))
	assert.False(t, equipment.IsTerminal(entity.StateDefective))
}

func TestAllowedTargets_OcultaDestinosDeFlujo(t *testing.T) {
	manual := equipment.AllowedTargets(entity.StateDefective, entity.TriggerManual)
	assert.ElementsMatch(t, []entity.EquipmentState{entity.StateInLab, entity.StateDecommissioned}, manual)

	workflow := equipment.AllowedTargets(entity.StateDefective, entity.TriggerVendorReturn)
	assert.Contains(t, workflow, entity.StateReturnedToVendor)
}

func TestIsValidState(t *testing.T) {
	assert.True(t, equipment.IsValidState(entity.StateInLab))
	assert.False(t, equipment.IsValidState("EN_BODEGA"))
}
