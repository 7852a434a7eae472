// Package deletion implementa la política de borrado en dos fases compartida por entregas y lotes:
// sin dependientes se borra; con dependientes se pide confirmación con conteo, muestra y estrategias;
// con force y una estrategia explícita se ejecuta.
package deletion

import (
	"context"
	"strings"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
)

// Strategy qué hacer con los equipos dependientes.
type Strategy string

const (
	// StrategyDetach desvincula los equipos (quedan en el lote sin entrega).
	StrategyDetach Strategy = "detach"
	// StrategyPurge borra los equipos junto con el registro.
	StrategyPurge Strategy = "purge"
)

// DefaultSampleSize cantidad de dependientes mostrados en la confirmación.
const DefaultSampleSize = 5

// Dependent equipo que depende del registro a borrar.
type Dependent struct {
	ID   int64
	Code string
	MAC  string
}

// Confirmation respuesta "requiere confirmación": nada fue modificado.
type Confirmation struct {
	DependentCount int
	Sample         []Dependent
	Strategies     []Strategy
}

// Outcome resultado de Resolve. Exactamente uno de Deleted o Confirmation.
type Outcome struct {
	Deleted      bool
	Strategy     Strategy
	Affected     int
	Confirmation *Confirmation
}

// RequiresConfirmation true si el borrado quedó pendiente de confirmación.
func (o Outcome) RequiresConfirmation() bool { return o.Confirmation != nil }

// Request intención del llamador.
type Request struct {
	Strategy Strategy
	Force    bool
}

// Target registro borrable. Sus métodos corren dentro de la transacción del llamador,
// de modo que el conteo y el borrado ven la misma instantánea.
type Target interface {
	// Dependents devuelve el total de dependientes y hasta limit de ellos como muestra.
	Dependents(ctx context.Context, limit int) (int, []Dependent, error)
	// Strategies estrategias que el registro ofrece cuando tiene dependientes.
	Strategies() []Strategy
	// Execute borra el registro; strategy es vacío cuando no hay dependientes.
	Execute(ctx context.Context, strategy Strategy) (int, error)
}

// ParseStrategy acepta "", "detach" o "purge".
func ParseStrategy(raw string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case "", StrategyDetach, StrategyPurge:
		return s, nil
	}
	return "", domain.Invalid("strategy", "use detach o purge")
}

// Validate rechaza force sin estrategia: la intención nunca se infiere.
func (r Request) Validate() error {
	if _, err := ParseStrategy(string(r.Strategy)); err != nil {
		return err
	}
	if r.Force && r.Strategy == "" {
		return domain.Invalid("strategy", "force requiere una estrategia explícita")
	}
	return nil
}

// Resolve aplica la política de dos fases sobre t.
func Resolve(ctx context.Context, t Target, req Request, sampleSize int) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return Outcome{}, err
	}
	if req.Strategy != "" && !offers(t.Strategies(), req.Strategy) {
		return Outcome{}, domain.Invalid("strategy", "estrategia no ofrecida: "+string(req.Strategy))
	}
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	count, sample, err := t.Dependents(ctx, sampleSize)
	if err != nil {
		return Outcome{}, err
	}
	if count == 0 {
		affected, err := t.Execute(ctx, "")
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Deleted: true, Affected: affected}, nil
	}
	if !req.Force {
		if len(sample) > sampleSize {
			sample = sample[:sampleSize]
		}
		return Outcome{Confirmation: &Confirmation{
			DependentCount: count,
			Sample:         sample,
			Strategies:     t.Strategies(),
		}}, nil
	}

	affected, err := t.Execute(ctx, req.Strategy)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Deleted: true, Strategy: req.Strategy, Affected: affected}, nil
}

func offers(list []Strategy, s Strategy) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
