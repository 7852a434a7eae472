package deletion_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/deletion"
)

type fakeTarget struct {
	dependents []deletion.Dependent
	strategies []deletion.Strategy
	executed   []deletion.Strategy
	failWith   error
}

func (f *fakeTarget) Dependents(_ context.Context, limit int) (int, []deletion.Dependent, error) {
	sample := f.dependents
	if len(sample) > limit {
		sample = sample[:limit]
	}
	return len(f.dependents), sample, nil
}

func (f *fakeTarget) Strategies() []deletion.Strategy { return f.strategies }

func (f *fakeTarget) Execute(_ context.Context, s deletion.Strategy) (int, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.executed = append(f.executed, s)
	return len(f.dependents), nil
}

func withDependents(n int) *fakeTarget {
	f := &fakeTarget{strategies: []deletion.Strategy{deletion.StrategyDetach, deletion.StrategyPurge}}
	for i := 1; i <= n; i++ {
		f.dependents = append(f.dependents, deletion.Dependent{ID: int64(i), Code: "ONT-X", MAC: "AA:BB:CC:00:00:01"})
	}
	return f
}

func TestResolve_SinDependientesBorra(t *testing.T) {
	f := withDependents(0)
	out, err := deletion.Resolve(context.Background(), f, deletion.Request{}, 5)
	require.NoError(t, err)
	assert.True(t, out.Deleted)
	assert.False(t, out.RequiresConfirmation())
	assert.Equal(t, []deletion.Strategy{""}, f.executed)
}

func TestResolve_ConDependientesPideConfirmacion(t *testing.T) {
	f := withDependents(12)
	out, err := deletion.Resolve(context.Background(), f, deletion.Request{Strategy: deletion.StrategyPurge}, 5)
	require.NoError(t, err)
	require.True(t, out.RequiresConfirmation())
	assert.False(t, out.Deleted)
	assert.Equal(t, 12, out.Confirmation.DependentCount)
	assert.Len(t, out.Confirmation.Sample, 5)
	assert.Equal(t, []deletion.Strategy{deletion.StrategyDetach, deletion.StrategyPurge}, out.Confirmation.Strategies)
	assert.Empty(t, f.executed, "sin force no se modifica nada")
}

func TestResolve_ForceEjecutaEstrategia(t *testing.T) {
	f := withDependents(3)
	out, err := deletion.Resolve(context.Background(), f, deletion.Request{Strategy: deletion.StrategyDetach, Force: true}, 0)
	require.NoError(t, err)
	assert.True(t, out.Deleted)
	assert.Equal(t, deletion.StrategyDetach, out.Strategy)
	assert.Equal(t, 3, out.Affected)
	assert.Equal(t, []deletion.Strategy{deletion.StrategyDetach}, f.executed)
}

func TestResolve_ForceSinEstrategiaEsInvalido(t *testing.T) {
	f := withDependents(3)
	_, err := deletion.Resolve(context.Background(), f, deletion.Request{Force: true}, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.executed)
}

func TestResolve_EstrategiaNoOfrecida(t *testing.T) {
	f := withDependents(3)
	f.strategies = []deletion.Strategy{deletion.StrategyPurge}
	_, err := deletion.Resolve(context.Background(), f, deletion.Request{Strategy: deletion.StrategyDetach, Force: true}, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.executed)
}

func TestResolve_PropagaErrorDeEjecucion(t *testing.T) {
	f := withDependents(2)
	f.failWith = domain.Conflictf("equipos en devolución")
	_, err := deletion.Resolve(context.Background(), f, deletion.Request{Strategy: deletion.StrategyPurge, Force: true}, 5)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestParseStrategy(t *testing.T) {
	s, err := deletion.ParseStrategy(" PURGE ")
	require.NoError(t, err)
	assert.Equal(t, deletion.StrategyPurge, s)

	_, err = deletion.ParseStrategy("cascade")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
