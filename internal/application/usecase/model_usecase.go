package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/ports"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
)

// ModelUseCase catálogo de modelos de equipo. El código de ítem es único y forma
// el prefijo del código interno de cada equipo.
type ModelUseCase struct {
	txRunner ports.TxRunner
}

// NewModelUseCase construye el caso de uso.
func NewModelUseCase(txRunner ports.TxRunner) *ModelUseCase {
	return &ModelUseCase{txRunner: txRunner}
}

// Create registra un modelo.
func (uc *ModelUseCase) Create(ctx context.Context, in dto.CreateModelRequest) (*dto.ModelResponse, error) {
	m := &entity.EquipmentModel{
		Brand:    strings.TrimSpace(in.Brand),
		Name:     strings.TrimSpace(in.Name),
		ItemCode: strings.ToUpper(strings.TrimSpace(in.ItemCode)),
	}
	switch {
	case m.Brand == "":
		return nil, domain.Missing("brand")
	case m.Name == "":
		return nil, domain.Missing("name")
	case m.ItemCode == "":
		return nil, domain.Missing("item_code")
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		return repos.Models.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return toModelResponse(m), nil
}

// GetByID obtiene un modelo.
func (uc *ModelUseCase) GetByID(ctx context.Context, id int64) (*dto.ModelResponse, error) {
	var m *entity.EquipmentModel
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		var err error
		m, err = repos.Models.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFoundf("modelo", id)
	}
	return toModelResponse(m), nil
}

// List modelos paginados.
func (uc *ModelUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ModelListResponse, error) {
	page.DefaultPage()
	var list []*entity.EquipmentModel
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		var err error
		list, err = repos.Models.List(ctx, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ModelResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toModelResponse(m))
	}
	return &dto.ModelListResponse{
		Items: items,
		Page:  page.Page(0),
	}, nil
}

func toModelResponse(m *entity.EquipmentModel) *dto.ModelResponse {
	return &dto.ModelResponse{
		ID:        m.ID,
		Brand:     m.Brand,
		Name:      m.Name,
		ItemCode:  m.ItemCode,
		CreatedAt: m.CreatedAt,
	}
}
