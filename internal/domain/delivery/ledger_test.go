package delivery_test

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/delivery"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
)

func TestInputValidate(t *testing.T) {
	ok := delivery.Input{DeliveryDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), DeclaredQuantity: 10, State: entity.DeliveryPartial}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.DeclaredQuantity = 0
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidQuantity)

	bad = ok
	bad.DeliveryDate = time.Time{}
	assert.ErrorIs(t, bad.Validate(), domain.ErrMissingField)

	bad = ok
	bad.State = ""
	assert.ErrorIs(t, bad.Validate(), domain.ErrMissingField)

	bad = ok
	bad.State = "LOST"
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidInput)
}

func TestRenumber(t *testing.T) {
	three := func() []*entity.PartialDelivery {
		return []*entity.PartialDelivery{{ID: 10, Number: 1}, {ID: 11, Number: 2}, {ID: 12, Number: 3}}
	}

	// borrar la #3 de 3 no renumera nada
	assert.Empty(t, delivery.Renumber(three()[:2], 3))

	// borrar la #1 de 3: 2->1, 3->2
	got := delivery.Renumber(three()[1:], 1)
	assert.Equal(t, []delivery.Renumbering{
		{DeliveryID: 11, From: 2, To: 1},
		{DeliveryID: 12, From: 3, To: 2},
	}, got)
}

// Tras cualquier secuencia de altas y bajas los números son exactamente 1..N.
func TestNumeracionDensa_SecuenciasAleatorias(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		var ledger []*entity.PartialDelivery
		nextID := int64(1)
		for step := 0; step < 30; step++ {
			if len(ledger) == 0 || rng.Intn(3) > 0 {
				ledger = append(ledger, &entity.PartialDelivery{ID: nextID, Number: delivery.NextNumber(ledger)})
				nextID++
				continue
			}
			victim := rng.Intn(len(ledger))
			deleted := ledger[victim].Number
			ledger = append(ledger[:victim], ledger[victim+1:]...)
			byID := map[int64]*entity.PartialDelivery{}
			for _, d := range ledger {
				byID[d.ID] = d
			}
			for _, r := range delivery.Renumber(ledger, deleted) {
				byID[r.DeliveryID].Number = r.To
			}
		}
		numbers := make([]int, 0, len(ledger))
		for _, d := range ledger {
			numbers = append(numbers, d.Number)
		}
		sort.Ints(numbers)
		for i, n := range numbers {
			require.Equal(t, i+1, n, "ronda %d: %v", round, numbers)
		}
	}
}

func TestProgress(t *testing.T) {
	p := delivery.Progress(300, 100, 2)
	assert.Equal(t, 200, p.Pending)
	assert.Equal(t, "33.33", p.Percent.StringFixed(2))
	assert.Equal(t, 2, p.Unassigned)

	p = delivery.Progress(10, 12, 0)
	assert.Equal(t, 0, p.Pending, "pendiente nunca es negativo")
	assert.Equal(t, "120.00", p.Percent.StringFixed(2))
}

func TestSameContent(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d := &entity.PartialDelivery{DeliveryDate: date, DeclaredQuantity: 5, State: entity.DeliveryComplete}
	assert.True(t, delivery.SameContent(d, delivery.Input{DeliveryDate: date, DeclaredQuantity: 5, State: entity.DeliveryComplete}))
	assert.False(t, delivery.SameContent(d, delivery.Input{DeliveryDate: date, DeclaredQuantity: 6, State: entity.DeliveryComplete}))
}

func TestLastRetry(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	in := delivery.Input{DeliveryDate: date, DeclaredQuantity: 5, State: entity.DeliveryPartial, Notes: "x"}
	existing := []*entity.PartialDelivery{
		{Number: 2, DeliveryDate: date, DeclaredQuantity: 5, State: entity.DeliveryPartial, Notes: "x", CreatedBy: "ana"},
		{Number: 1, DeliveryDate: date, DeclaredQuantity: 9, State: entity.DeliveryPartial, CreatedBy: "ana"},
	}

	got := delivery.LastRetry(existing, "ana", in)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Number)

	assert.Nil(t, delivery.LastRetry(existing, "luis", in), "otro actor")
	in.DeclaredQuantity = 9
	assert.Nil(t, delivery.LastRetry(existing, "ana", in), "solo cuenta la última entrega")
	assert.Nil(t, delivery.LastRetry(nil, "ana", in))
}
