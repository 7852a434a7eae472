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

// WarehouseUseCase casos de uso CRUD para bodegas.
type WarehouseUseCase struct {
	txRunner ports.TxRunner
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(txRunner ports.TxRunner) *WarehouseUseCase {
	return &WarehouseUseCase{txRunner: txRunner}
}

// Create crea una nueva bodega.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Missing("name")
	}
	warehouse := &entity.Warehouse{
		Name:    name,
		Address: strings.TrimSpace(in.Address),
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		return repos.Warehouses.Create(ctx, warehouse)
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id int64) (*dto.WarehouseResponse, error) {
	var warehouse *entity.Warehouse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		var err error
		warehouse, err = repos.Warehouses.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.NotFoundf("bodega", id)
	}
	return toWarehouseResponse(warehouse), nil
}

// Update actualiza una bodega.
func (uc *WarehouseUseCase) Update(ctx context.Context, id int64, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	var warehouse *entity.Warehouse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		var err error
		warehouse, err = repos.Warehouses.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if warehouse == nil {
			return domain.NotFoundf("bodega", id)
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.Missing("name")
			}
			warehouse.Name = name
		}
		if in.Address != nil {
			warehouse.Address = strings.TrimSpace(*in.Address)
		}
		return repos.Warehouses.Update(ctx, warehouse)
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	page.DefaultPage()
	var list []*entity.Warehouse
	err := uc.txRunner.Run(ctx, func(repos repository.Set) error {
		var err error
		list, err = repos.Warehouses.List(ctx, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  page.Page(0),
	}, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
