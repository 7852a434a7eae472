package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrMissingField        = errors.New("campo requerido")
	ErrInvalidQuantity     = errors.New("cantidad inválida")
	ErrEmptySelection      = errors.New("no se seleccionó ningún equipo")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrDuplicateIdentifier = errors.New("identificador duplicado")
	ErrInvalidTransition   = errors.New("transición de estado no permitida")
	ErrInvalidState        = errors.New("operación no permitida en el estado actual")
	ErrNotDefective        = errors.New("equipo no se encuentra en estado DEFECTIVE")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
)

// FieldError error de validación asociado a un campo de entrada.
type FieldError struct {
	Field  string
	Err    error
	Detail string
}

func (e *FieldError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Field, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Field)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Missing construye un FieldError de campo requerido.
func Missing(field string) error {
	return &FieldError{Field: field, Err: ErrMissingField}
}

// Invalid construye un FieldError de entrada inválida con detalle.
func Invalid(field, detail string) error {
	return &FieldError{Field: field, Err: ErrInvalidInput, Detail: detail}
}

// DuplicateIdentifierError indica qué identificador colisionó (mac, gpon_serial, manufacturer_serial, ...).
type DuplicateIdentifierError struct {
	Field string
	Value string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("identificador duplicado: %s=%s", e.Field, e.Value)
}

func (e *DuplicateIdentifierError) Unwrap() error { return ErrDuplicateIdentifier }

// TransitionError transición de estado de equipo fuera de la tabla permitida.
type TransitionError struct {
	EquipmentID int64
	From        string
	To          string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("equipo %d: transición %s -> %s no permitida", e.EquipmentID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// StateError operación intentada desde un estado que no la permite.
type StateError struct {
	Entity    string
	ID        int64
	State     string
	Operation string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %d en estado %s: no se permite %s", e.Entity, e.ID, e.State, e.Operation)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// Offender equipo que impide una operación y el estado en que se encuentra.
type Offender struct {
	EquipmentID int64  `json:"equipment_id"`
	State       string `json:"state"`
}

// NotDefectiveError lista los equipos que no están en DEFECTIVE.
type NotDefectiveError struct {
	Offenders []Offender
}

func (e *NotDefectiveError) Error() string {
	parts := make([]string, 0, len(e.Offenders))
	for _, o := range e.Offenders {
		parts = append(parts, fmt.Sprintf("%d(%s)", o.EquipmentID, o.State))
	}
	return fmt.Sprintf("equipos no defectuosos: %s", strings.Join(parts, ", "))
}

func (e *NotDefectiveError) Unwrap() error { return ErrNotDefective }

// VersionConflictError conflicto de concurrencia optimista.
type VersionConflictError struct {
	Entity   string
	ID       int64
	Expected int64
	Actual   int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s %d: versión esperada %d, actual %d", e.Entity, e.ID, e.Expected, e.Actual)
}

func (e *VersionConflictError) Unwrap() error { return ErrConflict }

// NotFoundf envuelve ErrNotFound con el recurso y su ID.
func NotFoundf(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// Conflictf envuelve ErrConflict con un mensaje.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}
