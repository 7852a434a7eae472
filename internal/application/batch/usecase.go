package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/onu-almacen-api/internal/application/delivery"
	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/ports"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/deletion"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/equipment"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

// Options parámetros del catálogo de lotes.
type Options struct {
	SampleSize    int
	MaxImportRows int // 0 = sin límite
}

// UseCase catálogo de lotes e importación de equipos.
type UseCase struct {
	txRunner ports.TxRunner
	reader   ports.RowReader
	log      *logger.Logger
	opts     Options
}

// NewUseCase construye el caso de uso. reader puede ser nil si no se importan archivos.
func NewUseCase(txRunner ports.TxRunner, reader ports.RowReader, log *logger.Logger, opts Options) *UseCase {
	if opts.SampleSize <= 0 {
		opts.SampleSize = deletion.DefaultSampleSize
	}
	return &UseCase{txRunner: txRunner, reader: reader, log: log.Component("batch"), opts: opts}
}

// Create registra un lote. El código es único.
func (uc *UseCase) Create(ctx context.Context, actor string, in dto.CreateBatchRequest) (*dto.BatchResponse, error) {
	if actor == "" {
		return nil, domain.ErrUnauthorized
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	vendor := strings.TrimSpace(in.Vendor)
	switch {
	case code == "":
		return nil, domain.Missing("code")
	case vendor == "":
		return nil, domain.Missing("vendor")
	case in.ExpectedQuantity <= 0:
		return nil, &domain.FieldError{Field: "expected_quantity", Err: domain.ErrInvalidQuantity}
	case in.WarehouseID <= 0:
		return nil, domain.Missing("warehouse_id")
	case in.ModelID <= 0:
		return nil, domain.Missing("model_id")
	case in.UnitCost.IsNegative():
		return nil, domain.Invalid("unit_cost", "no puede ser negativo")
	}

	b := &entity.Batch{
		Code:             code,
		Vendor:           vendor,
		ExpectedQuantity: in.ExpectedQuantity,
		WarehouseID:      in.WarehouseID,
		ModelID:          in.ModelID,
		UnitCost:         in.UnitCost,
		Notes:            strings.TrimSpace(in.Notes),
		CreatedBy:        actor,
	}
	var out *dto.BatchResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		w, err := repos.Warehouses.GetByID(ctx, b.WarehouseID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.NotFoundf("bodega", b.WarehouseID)
		}
		m, err := repos.Models.GetByID(ctx, b.ModelID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NotFoundf("modelo", b.ModelID)
		}
		if err := repos.Batches.Create(ctx, b); err != nil {
			return err
		}
		out, err = uc.response(ctx, repos, b)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("batch_id", b.ID).Str("code", b.Code).Str("actor", actor).Msg("lote registrado")
	return out, nil
}

// Get lote con progreso recalculado.
func (uc *UseCase) Get(ctx context.Context, id int64) (*dto.BatchResponse, error) {
	var out *dto.BatchResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		b, err := repos.Batches.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.NotFoundf("lote", id)
		}
		out, err = uc.response(ctx, repos, b)
		return err
	})
	return out, err
}

// List lotes paginados.
func (uc *UseCase) List(ctx context.Context, page dto.PageRequest) (*dto.BatchListResponse, error) {
	page.DefaultPage()
	var out *dto.BatchListResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		list, total, err := repos.Batches.List(ctx, page.Limit, page.Offset)
		if err != nil {
			return err
		}
		items := make([]dto.BatchResponse, 0, len(list))
		for _, b := range list {
			r, err := uc.response(ctx, repos, b)
			if err != nil {
				return err
			}
			items = append(items, *r)
		}
		out = &dto.BatchListResponse{
			Items: items,
			Page:  page.Page(total),
		}
		return nil
	})
	return out, err
}

// Delete borra un lote con la política de dos fases. Solo ofrece purge:
// sus equipos no pueden quedar sin lote.
func (uc *UseCase) Delete(ctx context.Context, id int64, actor string, in dto.DeleteRequest) (*dto.DeletionResponse, error) {
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
	err = uc.txRunner.Run(ctx, func(repos repository.Set) error {
		b, err := repos.Batches.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.NotFoundf("lote", id)
		}
		outcome, err = deletion.Resolve(ctx, &batchTarget{repos: repos, batch: b}, req, uc.opts.SampleSize)
		return err
	})
	if err != nil {
		return nil, err
	}
	if outcome.Deleted {
		uc.log.Info().
			Int64("batch_id", id).
			Str("strategy", string(outcome.Strategy)).
			Int("affected", outcome.Affected).
			Str("actor", actor).
			Msg("lote eliminado")
	}
	return delivery.ToDeletionResponse(outcome), nil
}

type batchTarget struct {
	repos repository.Set
	batch *entity.Batch
}

func (t *batchTarget) Dependents(ctx context.Context, limit int) (int, []deletion.Dependent, error) {
	count, err := t.repos.Equipment.CountByBatch(ctx, t.batch.ID)
	if err != nil || count == 0 {
		return count, nil, err
	}
	sample, err := t.repos.Equipment.ListByBatch(ctx, t.batch.ID, limit)
	if err != nil {
		return 0, nil, err
	}
	return count, delivery.ToDependents(sample), nil
}

func (t *batchTarget) Strategies() []deletion.Strategy {
	return []deletion.Strategy{deletion.StrategyPurge}
}

func (t *batchTarget) Execute(ctx context.Context, _ deletion.Strategy) (int, error) {
	held, err := t.repos.Returns.CountByBatch(ctx, t.batch.ID)
	if err != nil {
		return 0, err
	}
	if held > 0 {
		return 0, domain.Conflictf("el lote %s tiene %d devoluciones a proveedor", t.batch.Code, held)
	}
	items, err := t.repos.Equipment.ListByBatch(ctx, t.batch.ID, 0)
	if err != nil {
		return 0, err
	}
	n, err := delivery.Purge(ctx, t.repos, items)
	if err != nil {
		return 0, err
	}
	if _, err := t.repos.Deliveries.DeleteByBatch(ctx, t.batch.ID); err != nil {
		return 0, err
	}
	if err := t.repos.Batches.Delete(ctx, t.batch.ID); err != nil {
		return 0, err
	}
	return n, nil
}

// ImportFile lee las filas de un archivo y delega en Import.
func (uc *UseCase) ImportFile(ctx context.Context, batchID int64, actor string, in dto.ImportRequest, filename string, r io.Reader) (*dto.ImportResponse, error) {
	if uc.reader == nil {
		return nil, errors.New("import: no row reader configured")
	}
	rows, err := uc.reader.ReadRows(filename, r)
	if err != nil {
		return nil, err
	}
	in.Rows = rows
	return uc.Import(ctx, batchID, actor, in)
}

// Import crea equipos NEW vinculados a la entrega indicada. Las filas inválidas se reportan
// y no se crean; las válidas se crean en una sola transacción. Reenviar las mismas filas
// las reporta todas como duplicadas.
func (uc *UseCase) Import(ctx context.Context, batchID int64, actor string, in dto.ImportRequest) (*dto.ImportResponse, error) {
	if actor == "" {
		return nil, domain.ErrUnauthorized
	}
	if len(in.Rows) == 0 {
		return nil, domain.ErrEmptySelection
	}
	if uc.opts.MaxImportRows > 0 && len(in.Rows) > uc.opts.MaxImportRows {
		return nil, domain.Invalid("rows", fmt.Sprintf("máximo %d filas por importación", uc.opts.MaxImportRows))
	}
	if in.DeliveryNumber <= 0 {
		return nil, domain.Missing("delivery_number")
	}

	res := &dto.ImportResponse{DryRun: in.DryRun, Total: len(in.Rows), Errors: []dto.ImportRowError{}}
	errDryRun := errors.New("dry run")
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		b, err := repos.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.NotFoundf("lote", batchID)
		}
		d, err := repos.Deliveries.GetByNumber(ctx, batchID, in.DeliveryNumber)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("entrega #%d del lote %d: %w", in.DeliveryNumber, batchID, domain.ErrNotFound)
		}
		itemCode := strings.ToUpper(strings.TrimSpace(in.ItemCode))
		if itemCode == "" {
			m, err := repos.Models.GetByID(ctx, b.ModelID)
			if err != nil {
				return err
			}
			if m == nil {
				return domain.NotFoundf("modelo", b.ModelID)
			}
			itemCode = m.ItemCode
		}

		valid, err := uc.validateRows(ctx, repos, in.Rows, res)
		if err != nil {
			return err
		}
		res.Valid = len(valid)
		if d.EquipmentCount+len(valid) > d.DeclaredQuantity {
			return &domain.FieldError{
				Field:  "rows",
				Err:    domain.ErrInvalidQuantity,
				Detail: fmt.Sprintf("la entrega #%d declara %d equipos y ya tiene %d", d.Number, d.DeclaredQuantity, d.EquipmentCount),
			}
		}
		if in.DryRun || len(valid) == 0 {
			return errDryRun
		}

		deliveryID := d.ID
		for _, ids := range valid {
			e := &entity.Equipment{
				Code:               equipment.BuildCode(itemCode, ids.MAC),
				ItemCode:           itemCode,
				MAC:                ids.MAC,
				GPONSerial:         ids.GPONSerial,
				ManufacturerSerial: ids.ManufacturerSerial,
				State:              entity.StateNew,
				BatchID:            b.ID,
				DeliveryID:         &deliveryID,
				ModelID:            b.ModelID,
				WarehouseID:        b.WarehouseID,
			}
			if err := repos.Equipment.Create(ctx, e); err != nil {
				return err
			}
			if err := repos.History.Append(ctx, &entity.StateChange{
				EquipmentID: e.ID,
				To:          entity.StateNew,
				Trigger:     entity.TriggerImport,
				Actor:       actor,
				Reason:      fmt.Sprintf("importación lote %s entrega #%d", b.Code, d.Number),
			}); err != nil {
				return err
			}
			res.EquipmentIDs = append(res.EquipmentIDs, e.ID)
		}
		res.Created = len(res.EquipmentIDs)
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return nil, err
	}
	if res.Created > 0 {
		uc.log.Info().
			Int64("batch_id", batchID).
			Int("delivery_number", in.DeliveryNumber).
			Int("created", res.Created).
			Int("rejected", len(res.Errors)).
			Str("actor", actor).
			Msg("equipos importados")
	}
	return res, nil
}

// validateRows normaliza cada fila y detecta duplicados en el archivo, en la población
// y en el registro de retirados. Las filas se numeran desde 1.
func (uc *UseCase) validateRows(ctx context.Context, repos repository.Set, rows []dto.ImportRow, res *dto.ImportResponse) ([]equipment.Identifiers, error) {
	seen := map[entity.IdentifierField]map[string]int{}
	for _, f := range entity.IdentifierFields {
		seen[f] = map[string]int{}
	}
	var valid []equipment.Identifiers

rows:
	for i, row := range rows {
		n := i + 1
		ids, err := equipment.Identifiers{
			MAC:                row.MAC,
			GPONSerial:         row.GPONSerial,
			ManufacturerSerial: row.ManufacturerSerial,
		}.Normalize()
		if err != nil {
			res.Errors = append(res.Errors, rowError(n, err, row))
			continue
		}
		for _, fv := range ids.Values() {
			if first, dup := seen[fv.Field][fv.Value]; dup {
				res.Errors = append(res.Errors, dto.ImportRowError{
					Row: n, Field: string(fv.Field), Value: fv.Value,
					Message: fmt.Sprintf("repetido en el archivo (fila %d)", first),
				})
				continue rows
			}
		}
		for _, fv := range ids.Values() {
			seen[fv.Field][fv.Value] = n
		}
		for _, fv := range ids.Values() {
			e, err := repos.Equipment.FindByIdentifier(ctx, fv.Field, fv.Value)
			if err != nil {
				return nil, err
			}
			if e != nil {
				res.Errors = append(res.Errors, dto.ImportRowError{
					Row: n, Field: string(fv.Field), Value: fv.Value,
					Message: "ya registrado en el equipo " + e.Code,
				})
				continue rows
			}
			ri, err := repos.Retired.Get(ctx, fv.Field, fv.Value)
			if err != nil {
				return nil, err
			}
			if ri != nil {
				res.Errors = append(res.Errors, dto.ImportRowError{
					Row: n, Field: string(fv.Field), Value: fv.Value,
					Message: "identificador retirado por reemplazo",
				})
				continue rows
			}
		}
		valid = append(valid, ids)
	}
	return valid, nil
}

func rowError(n int, err error, row dto.ImportRow) dto.ImportRowError {
	out := dto.ImportRowError{Row: n, Message: err.Error()}
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		out.Field = fe.Field
		switch entity.IdentifierField(fe.Field) {
		case entity.FieldMAC:
			out.Value = row.MAC
		case entity.FieldGPONSerial:
			out.Value = row.GPONSerial
		case entity.FieldManufacturerSerial:
			out.Value = row.ManufacturerSerial
		}
	}
	return out
}

func (uc *UseCase) response(ctx context.Context, repos repository.Set, b *entity.Batch) (*dto.BatchResponse, error) {
	progress, err := delivery.Progress(ctx, repos, b)
	if err != nil {
		return nil, err
	}
	return &dto.BatchResponse{
		ID:               b.ID,
		Code:             b.Code,
		Vendor:           b.Vendor,
		ExpectedQuantity: b.ExpectedQuantity,
		WarehouseID:      b.WarehouseID,
		ModelID:          b.ModelID,
		UnitCost:         b.UnitCost,
		Notes:            b.Notes,
		CreatedBy:        b.CreatedBy,
		Progress:         delivery.ToProgressResponse(progress),
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}, nil
}
