package inspection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/inspection"
)

func fromBits(mask int) entity.TestResults {
	return entity.TestResults{
		LogicalSerialMatch: mask&1 != 0,
		WiFi24GHz:          mask&2 != 0,
		WiFi5GHz:           mask&4 != 0,
		EthernetPort:       mask&8 != 0,
		LANPort:            mask&16 != 0,
	}
}

// Las 32 combinaciones: aprobado == todas las pruebas; fallas en orden fijo.
func TestEvaluate_TodasLasCombinaciones(t *testing.T) {
	for mask := 0; mask < 32; mask++ {
		v := inspection.Evaluate(fromBits(mask))
		assert.Equal(t, mask == 31, v.Approved, "mask=%05b", mask)

		var want []string
		for i, name := range inspection.FaultOrder {
			if mask&(1<<i) == 0 {
				want = append(want, name)
			}
		}
		if want == nil {
			assert.Empty(t, v.Faults)
		} else {
			assert.Equal(t, want, v.Faults, "mask=%05b", mask)
		}
	}
}

// Voltear una sola prueba a false con las demás en true agrega exactamente esa falla.
func TestEvaluate_UnaSolaFalla(t *testing.T) {
	for i, name := range inspection.FaultOrder {
		v := inspection.Evaluate(fromBits(31 &^ (1 << i)))
		assert.False(t, v.Approved)
		assert.Equal(t, []string{name}, v.Faults)
	}
}

func TestTargetState(t *testing.T) {
	assert.Equal(t, entity.StateAvailable, inspection.TargetState(inspection.Verdict{Approved: true}, ""))
	assert.Equal(t, entity.StateInLab, inspection.TargetState(inspection.Verdict{Approved: true}, entity.StateInLab))
	assert.Equal(t, entity.StateDefective,
		inspection.TargetState(inspection.Verdict{Faults: []string{inspection.FaultLANPort}}, entity.StateAvailable))
}
