package memory_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
	"github.com/jhoicas/onu-almacen-api/internal/infrastructure/memory"
)

func unit(mac, gpon string) *entity.Equipment {
	return &entity.Equipment{
		Code: "ONT-" + mac, ItemCode: "ONT", MAC: mac, GPONSerial: gpon,
		State: entity.StateNew, BatchID: 1, ModelID: 1, WarehouseID: 1,
	}
}

func TestRun_RollbackDescartaCambios(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(repos repository.Set) error {
		require.NoError(t, repos.Equipment.Create(ctx, unit("AA:00:00:00:00:01", "HWTC00000001")))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s.Snapshot().Equipment)
}

func TestEquipmentCreate_UnicidadDeIdentificadores(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, s.Run(ctx, func(repos repository.Set) error {
		return repos.Equipment.Create(ctx, unit("AA:00:00:00:00:01", "HWTC00000001"))
	}))

	err := s.Run(ctx, func(repos repository.Set) error {
		e := unit("AA:00:00:00:00:02", "HWTC00000001")
		return repos.Equipment.Create(ctx, e)
	})
	var dup *domain.DuplicateIdentifierError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "gpon_serial", dup.Field)
}

func TestEquipmentUpdate_VersionOptimista(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	var id int64
	require.NoError(t, s.Run(ctx, func(repos repository.Set) error {
		e := unit("AA:00:00:00:00:01", "HWTC00000001")
		err := repos.Equipment.Create(ctx, e)
		id = e.ID
		return err
	}))

	err := s.Run(ctx, func(repos repository.Set) error {
		e, err := repos.Equipment.GetByID(ctx, id)
		require.NoError(t, err)
		e.Version = 7
		e.State = entity.StateAvailable
		return repos.Equipment.Update(ctx, e)
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSnapshot_RestauraEstado(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, s.Run(ctx, func(repos repository.Set) error {
		if err := repos.Equipment.Create(ctx, unit("AA:00:00:00:00:01", "HWTC00000001")); err != nil {
			return err
		}
		return repos.Retired.Retire(ctx, []entity.RetiredIdentifier{{Field: entity.FieldMAC, Value: "AA:00:00:00:00:09", EquipmentID: 1}})
	}))

	restored := memory.NewStoreFromSnapshot(s.Snapshot())
	require.NoError(t, restored.Run(ctx, func(repos repository.Set) error {
		e, err := repos.Equipment.FindByIdentifier(ctx, entity.FieldMAC, "AA:00:00:00:00:01")
		require.NoError(t, err)
		require.NotNil(t, e)
		ri, err := repos.Retired.Get(ctx, entity.FieldMAC, "AA:00:00:00:00:09")
		require.NoError(t, err)
		assert.NotNil(t, ri)

		// los IDs siguen siendo monótonos tras restaurar
		next := unit("AA:00:00:00:00:02", "HWTC00000002")
		require.NoError(t, repos.Equipment.Create(ctx, next))
		assert.Greater(t, next.ID, e.ID)
		return nil
	}))
}

func TestOnCommit_SoloConCambios(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	commits := 0
	s.OnCommit(func(memory.Snapshot) error { commits++; return nil })

	require.NoError(t, s.Run(ctx, func(repos repository.Set) error {
		_, err := repos.Equipment.GetByID(ctx, 1)
		return err
	}))
	assert.Equal(t, 0, commits)

	require.NoError(t, s.Run(ctx, func(repos repository.Set) error {
		return repos.Warehouses.Create(ctx, &entity.Warehouse{Name: "Central"})
	}))
	assert.Equal(t, 1, commits)
}

func TestUnicidad_SecuenciasAleatorias(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for step := 0; step < 300; step++ {
		_ = s.Run(ctx, func(repos repository.Set) error {
			if rng.Intn(4) == 0 {
				all, _, err := repos.Equipment.List(ctx, entity.EquipmentFilter{})
				if err != nil || len(all) == 0 {
					return err
				}
				return repos.Equipment.Delete(ctx, []int64{all[rng.Intn(len(all))].ID})
			}
			e := unit(fmt.Sprintf("AA:00:00:00:00:%02X", rng.Intn(8)), fmt.Sprintf("HWTC%08X", rng.Intn(8)))
			return repos.Equipment.Create(ctx, e)
		})

		macs, gpons := map[string]bool{}, map[string]bool{}
		for _, e := range s.Snapshot().Equipment {
			require.False(t, macs[e.MAC], "MAC repetida en el paso %d", step)
			require.False(t, gpons[e.GPONSerial], "GPON repetido en el paso %d", step)
			macs[e.MAC], gpons[e.GPONSerial] = true, true
		}
	}
}
