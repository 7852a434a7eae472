package ports

import (
	"io"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
)

// RowReader extrae las filas de equipos de un archivo de importación (.xlsx, .csv).
type RowReader interface {
	ReadRows(filename string, r io.Reader) ([]dto.ImportRow, error)
}
