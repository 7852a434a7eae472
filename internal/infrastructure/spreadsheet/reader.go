// Package spreadsheet lee archivos de importación de equipos (.xlsx con excelize, .csv).
// La primera fila no vacía es el encabezado; las columnas se reconocen por nombre.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/ports"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
)

var _ ports.RowReader = (*Reader)(nil)

// Alias de encabezado aceptados por columna (ya normalizados).
var (
	macHeaders    = []string{"mac", "direccion_mac", "mac_address"}
	gponHeaders   = []string{"gpon_serial", "serie_gpon", "gpon", "sn_gpon"}
	serialHeaders = []string{"serial", "serie_fabricante", "manufacturer_serial", "serie"}
)

// Reader implementa ports.RowReader.
type Reader struct {
	MaxRows int // 0 = sin límite
}

// NewReader construye el lector.
func NewReader(maxRows int) *Reader {
	return &Reader{MaxRows: maxRows}
}

// ReadRows detecta el formato por extensión.
func (rd *Reader) ReadRows(filename string, r io.Reader) ([]dto.ImportRow, error) {
	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		records, err = readXLSX(r)
	case ".csv", ".txt":
		records, err = readCSV(r)
	default:
		return nil, domain.Invalid("file", "formato no soportado: use .xlsx o .csv")
	}
	if err != nil {
		return nil, err
	}
	rows, err := mapRecords(records)
	if err != nil {
		return nil, err
	}
	if rd.MaxRows > 0 && len(rows) > rd.MaxRows {
		return nil, domain.Invalid("file", fmt.Sprintf("máximo %d filas por archivo", rd.MaxRows))
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.Invalid("file", "no es un archivo .xlsx válido")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.Invalid("file", "el libro no tiene hojas")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// readCSV acepta coma o punto y coma (exportaciones de Excel en español).
func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		cr.Comma = ';'
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, domain.Invalid("file", "csv inválido: "+err.Error())
	}
	return records, nil
}

func mapRecords(records [][]string) ([]dto.ImportRow, error) {
	header := -1
	for i, rec := range records {
		if !blank(rec) {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, domain.Invalid("file", "archivo vacío")
	}

	cols := map[string]int{}
	for i, name := range records[header] {
		cols[normalizeHeader(name)] = i
	}
	macCol := column(cols, macHeaders)
	gponCol := column(cols, gponHeaders)
	serialCol := column(cols, serialHeaders)
	if macCol < 0 {
		return nil, domain.Invalid("file", "falta la columna mac")
	}
	if gponCol < 0 {
		return nil, domain.Invalid("file", "falta la columna gpon_serial")
	}

	var rows []dto.ImportRow
	for _, rec := range records[header+1:] {
		if blank(rec) {
			continue
		}
		rows = append(rows, dto.ImportRow{
			MAC:                cell(rec, macCol),
			GPONSerial:         cell(rec, gponCol),
			ManufacturerSerial: cell(rec, serialCol),
		})
	}
	if len(rows) == 0 {
		return nil, domain.Invalid("file", "el archivo no tiene filas de datos")
	}
	return rows, nil
}

// normalizeHeader "Serie GPON" -> "serie_gpon", "Dirección MAC" -> "direccion_mac".
func normalizeHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	clean, _, err := transform.String(t, s)
	if err != nil {
		clean = s
	}
	clean = strings.ToLower(strings.TrimSpace(clean))
	return strings.NewReplacer(" ", "_", "-", "_", ".", "").Replace(clean)
}

func column(cols map[string]int, aliases []string) int {
	for _, a := range aliases {
		if i, ok := cols[a]; ok {
			return i
		}
	}
	return -1
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
