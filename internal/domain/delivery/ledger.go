// Package delivery contiene las reglas del libro de entregas parciales de un lote:
// numeración densa 1..N, renumeración tras borrado y progreso derivado.
package delivery

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
)

// Input datos de una entrega nueva.
type Input struct {
	DeliveryDate     time.Time
	DeclaredQuantity int
	State            entity.DeliveryState
	Notes            string
	Number           int // opcional: número esperado, para reintentos idempotentes
}

// ParseState acepta PARTIAL, COMPLETE o PENDING (sin distinguir mayúsculas).
func ParseState(raw string) (entity.DeliveryState, error) {
	s := entity.DeliveryState(strings.ToUpper(strings.TrimSpace(raw)))
	if s == "" {
		return "", domain.Missing("state")
	}
	for _, v := range entity.ValidDeliveryStates {
		if v == s {
			return s, nil
		}
	}
	return "", domain.Invalid("state", "use PARTIAL, COMPLETE o PENDING")
}

// Validate reglas previas a cualquier transacción.
func (in Input) Validate() error {
	if in.DeclaredQuantity <= 0 {
		return &domain.FieldError{Field: "quantity", Err: domain.ErrInvalidQuantity, Detail: "debe ser mayor a cero"}
	}
	if in.DeliveryDate.IsZero() {
		return domain.Missing("delivery_date")
	}
	if _, err := ParseState(string(in.State)); err != nil {
		return err
	}
	if in.Number < 0 {
		return domain.Invalid("number", "debe ser positivo")
	}
	return nil
}

// SameContent true si d registra la misma entrega que in (reintento).
func SameContent(d *entity.PartialDelivery, in Input) bool {
	return d.DeliveryDate.Equal(in.DeliveryDate) &&
		d.DeclaredQuantity == in.DeclaredQuantity &&
		d.State == in.State &&
		d.Notes == in.Notes
}

// LastRetry devuelve la última entrega del lote si la registró el mismo actor con el
// mismo contenido: un reintento sin número explícito. nil si no aplica.
func LastRetry(existing []*entity.PartialDelivery, actor string, in Input) *entity.PartialDelivery {
	var last *entity.PartialDelivery
	for _, d := range existing {
		if last == nil || d.Number > last.Number {
			last = d
		}
	}
	if last == nil || last.CreatedBy != actor || !SameContent(last, in) {
		return nil
	}
	return last
}

// NextNumber max+1; 1 para la primera entrega.
func NextNumber(existing []*entity.PartialDelivery) int {
	top := 0
	for _, d := range existing {
		if d.Number > top {
			top = d.Number
		}
	}
	return top + 1
}

// Renumbering nuevo número de una entrega tras un borrado.
type Renumbering struct {
	DeliveryID int64
	From       int
	To         int
}

// Renumber entregas con número mayor al borrado bajan en uno, en orden ascendente.
func Renumber(remaining []*entity.PartialDelivery, deleted int) []Renumbering {
	var out []Renumbering
	for _, d := range remaining {
		if d.Number > deleted {
			out = append(out, Renumbering{DeliveryID: d.ID, From: d.Number, To: d.Number - 1})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

var hundred = decimal.NewFromInt(100)

// Progress agregados del lote a partir de lo recibido; nunca se almacenan.
func Progress(expected, received, unassigned int) entity.BatchProgress {
	p := entity.BatchProgress{
		Expected:   expected,
		Received:   received,
		Unassigned: unassigned,
		Percent:    decimal.Zero,
	}
	if pending := expected - received; pending > 0 {
		p.Pending = pending
	}
	if expected > 0 {
		p.Percent = decimal.NewFromInt(int64(received)).
			Mul(hundred).
			Div(decimal.NewFromInt(int64(expected))).
			Round(2)
	}
	return p
}
