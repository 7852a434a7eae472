// Package inspection convierte los resultados de las pruebas de laboratorio en un veredicto.
package inspection

import "github.com/jhoicas/onu-almacen-api/internal/domain/entity"

// Nombres de falla, en el orden fijo de evaluación.
const (
	FaultLogicalSerial = "LOGICAL_SERIAL"
	FaultWiFi24GHz     = "WIFI_2_4GHZ"
	FaultWiFi5GHz      = "WIFI_5GHZ"
	FaultEthernetPort  = "ETHERNET_PORT"
	FaultLANPort       = "LAN_PORT"
)

// FaultOrder orden en que se reportan las fallas.
var FaultOrder = []string{FaultLogicalSerial, FaultWiFi24GHz, FaultWiFi5GHz, FaultEthernetPort, FaultLANPort}

// Verdict resultado derivado de una inspección.
type Verdict struct {
	Approved bool
	Faults   []string
}

// Evaluate función pura y total: aprobado = AND de las cinco pruebas; una sola falla rechaza.
func Evaluate(r entity.TestResults) Verdict {
	checks := [...]struct {
		ok   bool
		name string
	}{
		{r.LogicalSerialMatch, FaultLogicalSerial},
		{r.WiFi24GHz, FaultWiFi24GHz},
		{r.WiFi5GHz, FaultWiFi5GHz},
		{r.EthernetPort, FaultEthernetPort},
		{r.LANPort, FaultLANPort},
	}
	faults := make([]string, 0, len(checks))
	for _, c := range checks {
		if !c.ok {
			faults = append(faults, c.name)
		}
	}
	return Verdict{Approved: len(faults) == 0, Faults: faults}
}

// TargetState estado del equipo tras la inspección. approvedState lo define el flujo
// (por defecto AVAILABLE); un rechazo siempre lleva a DEFECTIVE.
func TargetState(v Verdict, approvedState entity.EquipmentState) entity.EquipmentState {
	if !v.Approved {
		return entity.StateDefective
	}
	if approvedState == "" {
		return entity.StateAvailable
	}
	return approvedState
}
