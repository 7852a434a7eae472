// Package returns define la máquina de estados de la devolución a proveedor
// (PENDING -> SENT -> CONFIRMED) y las capacidades derivadas de cada devolución.
package returns

import (
	"strings"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
)

// Capabilities acciones disponibles sobre una devolución. Se derivan en cada lectura; nunca se guardan.
type Capabilities struct {
	CanSend                bool
	CanConfirm             bool
	CanRegisterReplacement bool
}

// CapabilitiesOf única fuente de verdad de "qué se puede hacer" con una devolución.
func CapabilitiesOf(r *entity.VendorReturn) Capabilities {
	return Capabilities{
		CanSend:                r.State == entity.ReturnPending,
		CanConfirm:             r.State == entity.ReturnSent,
		CanRegisterReplacement: replacementAuthorized(r) && PendingReplacements(r) > 0,
	}
}

func replacementAuthorized(r *entity.VendorReturn) bool {
	return r.State == entity.ReturnConfirmed && r.ResponseCode == entity.ResponseReplacement
}

// PendingReplacements ítems sin reemplazo registrado.
func PendingReplacements(r *entity.VendorReturn) int {
	n := 0
	for _, it := range r.Items {
		if it.ReplacementID == nil {
			n++
		}
	}
	return n
}

// IsCompleted true cuando la devolución llegó a su estado final: confirmada y, si hubo
// reemplazo autorizado, con todos los reemplazos registrados.
func IsCompleted(r *entity.VendorReturn) bool {
	if r.State != entity.ReturnConfirmed {
		return false
	}
	if r.ResponseCode != entity.ResponseReplacement {
		return true
	}
	return PendingReplacements(r) == 0
}

// IsOpen una devolución abierta retiene a sus equipos: no pueden incluirse en otra.
func IsOpen(r *entity.VendorReturn) bool {
	return !IsCompleted(r)
}

// CheckSend sendToVendor solo desde PENDING.
func CheckSend(r *entity.VendorReturn) error {
	if r.State != entity.ReturnPending {
		return stateError(r, "enviar al proveedor")
	}
	return nil
}

// CheckConfirm confirmVendorResponse solo desde SENT.
func CheckConfirm(r *entity.VendorReturn) error {
	if r.State != entity.ReturnSent {
		return stateError(r, "confirmar respuesta del proveedor")
	}
	return nil
}

// CheckReplacement registerReplacement solo con CONFIRMED + REPLACEMENT, y para un equipo de la devolución.
func CheckReplacement(r *entity.VendorReturn, originalID int64) (*entity.ReturnItem, error) {
	if !replacementAuthorized(r) {
		return nil, stateError(r, "registrar reemplazo")
	}
	item := r.Item(originalID)
	if item == nil {
		return nil, domain.Invalid("original_equipment_id", "el equipo no pertenece a la devolución")
	}
	return item, nil
}

// ParseResponseCode acepta los códigos del proveedor (sin distinguir mayúsculas).
func ParseResponseCode(raw string) (entity.ResponseCode, error) {
	code := entity.ResponseCode(strings.ToUpper(strings.TrimSpace(raw)))
	switch code {
	case entity.ResponseReplacement, entity.ResponseCredit, entity.ResponseRejected:
		return code, nil
	case "":
		return "", domain.Missing("response_code")
	}
	return "", domain.Invalid("response_code", "use REPLACEMENT, CREDIT o REJECTED")
}

// IsValidState true si s es un estado de devolución conocido.
func IsValidState(s entity.ReturnState) bool {
	switch s {
	case entity.ReturnPending, entity.ReturnSent, entity.ReturnConfirmed:
		return true
	}
	return false
}

func stateError(r *entity.VendorReturn, op string) error {
	state := string(r.State)
	if r.ResponseCode != "" {
		state += "/" + string(r.ResponseCode)
	}
	return &domain.StateError{Entity: "devolución", ID: r.ID, State: state, Operation: op}
}
