package delivery

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/ports"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/deletion"
	"github.com/jhoicas/onu-almacen-api/internal/domain/delivery"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

// Options parámetros del libro de entregas.
type Options struct {
	SampleSize int // dependientes mostrados al pedir confirmación de borrado
}

// UseCase libro de entregas parciales de un lote.
type UseCase struct {
	txRunner ports.TxRunner
	log      *logger.Logger
	opts     Options
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, log *logger.Logger, opts Options) *UseCase {
	if opts.SampleSize <= 0 {
		opts.SampleSize = deletion.DefaultSampleSize
	}
	return &UseCase{txRunner: txRunner, log: log.Component("delivery"), opts: opts}
}

// ParseDate acepta YYYY-MM-DD o RFC3339. Vacío devuelve la fecha cero (el llamador lo reporta como faltante).
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, domain.Invalid("delivery_date", "use YYYY-MM-DD")
	}
	return t.UTC(), nil
}

// Add registra una entrega con número max+1 bajo bloqueo del lote.
// Un número explícito ya registrado con el mismo contenido se devuelve sin cambios.
// Sin número, si la última entrega del lote es del mismo actor con el mismo contenido
// se trata como reintento; dos entregas idénticas seguidas requieren number explícito.
func (uc *UseCase) Add(ctx context.Context, batchID int64, actor string, in dto.CreateDeliveryRequest) (*dto.DeliveryResponse, error) {
	if actor == "" {
		return nil, domain.ErrUnauthorized
	}
	date, err := ParseDate(in.DeliveryDate)
	if err != nil {
		return nil, err
	}
	input := delivery.Input{
		DeliveryDate:     date,
		DeclaredQuantity: in.Quantity,
		State:            entity.DeliveryState(strings.ToUpper(strings.TrimSpace(in.State))),
		Notes:            strings.TrimSpace(in.Notes),
		Number:           in.Number,
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var out *entity.PartialDelivery
	replayed := false
	err = uc.txRunner.Run(ctx, func(repos repository.Set) error {
		batch, err := repos.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.NotFoundf("lote", batchID)
		}
		existing, err := repos.Deliveries.ListByBatch(ctx, batchID)
		if err != nil {
			return err
		}
		next := delivery.NextNumber(existing)
		if input.Number > 0 {
			for _, d := range existing {
				if d.Number != input.Number {
					continue
				}
				if !delivery.SameContent(d, input) {
					return domain.Conflictf("la entrega #%d ya existe con otro contenido", input.Number)
				}
				out, replayed = d, true
				return nil
			}
			if input.Number != next {
				return domain.Conflictf("el número de entrega %d no es el siguiente (%d)", input.Number, next)
			}
		} else if last := delivery.LastRetry(existing, actor, input); last != nil {
			out, replayed = last, true
			return nil
		}
		d := &entity.PartialDelivery{
			BatchID:          batchID,
			Number:           next,
			DeliveryDate:     input.DeliveryDate,
			DeclaredQuantity: input.DeclaredQuantity,
			State:            input.State,
			Notes:            input.Notes,
			CreatedBy:        actor,
		}
		if err := repos.Deliveries.Create(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !replayed {
		uc.log.Info().Int64("batch_id", batchID).Int("number", out.Number).Str("actor", actor).Msg("entrega registrada")
	}
	resp := ToDeliveryResponse(out)
	resp.Replayed = replayed
	return &resp, nil
}

// List entregas del lote y su progreso, recalculados en cada lectura.
func (uc *UseCase) List(ctx context.Context, batchID int64) (*dto.DeliveryListResponse, error) {
	var out *dto.DeliveryListResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		batch, err := repos.Batches.GetByID(ctx, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.NotFoundf("lote", batchID)
		}
		list, err := repos.Deliveries.ListByBatch(ctx, batchID)
		if err != nil {
			return err
		}
		progress, err := Progress(ctx, repos, batch)
		if err != nil {
			return err
		}
		items := make([]dto.DeliveryResponse, 0, len(list))
		for _, d := range list {
			items = append(items, ToDeliveryResponse(d))
		}
		out = &dto.DeliveryListResponse{Items: items, Progress: ToProgressResponse(progress)}
		return nil
	})
	return out, err
}

// Remove borra una entrega con la política de dos fases y renumera las siguientes.
func (uc *UseCase) Remove(ctx context.Context, id int64, actor string, in dto.DeleteRequest) (*dto.DeletionResponse, error) {
	if actor == "" {
		return nil, domain.ErrUnauthorized
	}
	strategy, err := deletion.ParseStrategy(in.Strategy)
	if err != nil {
		return nil, err
	}
	req := deletion.Request{Strategy: strategy, Force: in.Force}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var outcome deletion.Outcome
	var batchID int64
	err = uc.txRunner.Run(ctx, func(repos repository.Set) error {
		d, err := repos.Deliveries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.NotFoundf("entrega", id)
		}
		batchID = d.BatchID
		if _, err := repos.Batches.GetForUpdate(ctx, d.BatchID); err != nil {
			return err
		}
		outcome, err = deletion.Resolve(ctx, &deliveryTarget{repos: repos, delivery: d}, req, uc.opts.SampleSize)
		return err
	})
	if err != nil {
		return nil, err
	}
	if outcome.Deleted {
		uc.log.Info().
			Int64("delivery_id", id).
			Int64("batch_id", batchID).
			Str("strategy", string(outcome.Strategy)).
			Int("affected", outcome.Affected).
			Str("actor", actor).
			Msg("entrega eliminada")
	}
	return ToDeletionResponse(outcome), nil
}

// deliveryTarget entrega como registro borrable; sus dependientes son los equipos vinculados.
type deliveryTarget struct {
	repos    repository.Set
	delivery *entity.PartialDelivery
}

func (t *deliveryTarget) Dependents(ctx context.Context, limit int) (int, []deletion.Dependent, error) {
	count, err := t.repos.Equipment.CountByDelivery(ctx, t.delivery.ID)
	if err != nil || count == 0 {
		return count, nil, err
	}
	sample, err := t.repos.Equipment.ListByDelivery(ctx, t.delivery.ID, limit)
	if err != nil {
		return 0, nil, err
	}
	return count, ToDependents(sample), nil
}

func (t *deliveryTarget) Strategies() []deletion.Strategy {
	return []deletion.Strategy{deletion.StrategyDetach, deletion.StrategyPurge}
}

func (t *deliveryTarget) Execute(ctx context.Context, strategy deletion.Strategy) (int, error) {
	affected := 0
	switch strategy {
	case deletion.StrategyDetach:
		n, err := t.repos.Equipment.DetachDelivery(ctx, t.delivery.ID)
		if err != nil {
			return 0, err
		}
		affected = n
	case deletion.StrategyPurge:
		items, err := t.repos.Equipment.ListByDelivery(ctx, t.delivery.ID, 0)
		if err != nil {
			return 0, err
		}
		n, err := Purge(ctx, t.repos, items)
		if err != nil {
			return 0, err
		}
		affected = n
	}
	if err := t.repos.Deliveries.Delete(ctx, t.delivery.ID); err != nil {
		return 0, err
	}
	remaining, err := t.repos.Deliveries.ListByBatch(ctx, t.delivery.BatchID)
	if err != nil {
		return 0, err
	}
	for _, r := range delivery.Renumber(remaining, t.delivery.Number) {
		if err := t.repos.Deliveries.UpdateNumber(ctx, r.DeliveryID, r.To); err != nil {
			return 0, err
		}
	}
	return affected, nil
}

// Purge borra equipos; se niega si alguno figura en una devolución a proveedor.
func Purge(ctx context.Context, repos repository.Set, items []*entity.Equipment) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	ids := make([]int64, 0, len(items))
	for _, e := range items {
		ids = append(ids, e.ID)
	}
	held, err := repos.Returns.FindByEquipment(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(held) > 0 {
		return 0, domain.Conflictf("hay equipos incluidos en la devolución %s; no se pueden eliminar", held[0].Number)
	}
	if err := repos.Equipment.Delete(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Progress agregados del lote: recibido = equipos vinculados a sus entregas.
func Progress(ctx context.Context, repos repository.Set, batch *entity.Batch) (entity.BatchProgress, error) {
	list, err := repos.Deliveries.ListByBatch(ctx, batch.ID)
	if err != nil {
		return entity.BatchProgress{}, err
	}
	received := 0
	for _, d := range list {
		received += d.EquipmentCount
	}
	unassigned, err := repos.Equipment.CountUnassigned(ctx, batch.ID)
	if err != nil {
		return entity.BatchProgress{}, err
	}
	return delivery.Progress(batch.ExpectedQuantity, received, unassigned), nil
}
