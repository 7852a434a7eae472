package spreadsheet_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/infrastructure/spreadsheet"
)

func TestReadRows_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	values := [][]string{
		{"Serie GPON", "MAC", "Serie Fabricante"},
		{"HWTC1A2B3C4D", "AA:BB:CC:00:11:22", "SN-001"},
		{"", "", ""},
		{"HWTC1A2B3C4E", "AA:BB:CC:00:11:23", ""},
	}
	for r, row := range values {
		for c, v := range row {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellName, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := spreadsheet.NewReader(0).ReadRows("lote.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "AA:BB:CC:00:11:22", rows[0].MAC)
	assert.Equal(t, "HWTC1A2B3C4D", rows[0].GPONSerial)
	assert.Equal(t, "SN-001", rows[0].ManufacturerSerial)
	assert.Empty(t, rows[1].ManufacturerSerial)
}

func TestReadRows_CSVConPuntoYComa(t *testing.T) {
	data := "\xef\xbb\xbfDirección MAC;serie_gpon\naabbcc001122;hwtc1a2b3c4d\n"
	rows, err := spreadsheet.NewReader(0).ReadRows("lote.CSV", strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "aabbcc001122", rows[0].MAC)
	assert.Equal(t, "hwtc1a2b3c4d", rows[0].GPONSerial)
}

func TestReadRows_Errores(t *testing.T) {
	rd := spreadsheet.NewReader(1)

	_, err := rd.ReadRows("lote.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = rd.ReadRows("lote.csv", strings.NewReader("serial,gpon\nX,Y\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin columna mac")

	_, err = rd.ReadRows("lote.csv", strings.NewReader("mac,gpon\nA,B\nC,D\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "supera el máximo de filas")
}
