package ports

import (
	"context"

	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback y nada de lo escrito es visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Set) error) error
}
