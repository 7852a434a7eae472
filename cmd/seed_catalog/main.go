// seed_catalog genera un script SQL para poblar el catálogo de modelos de equipo
// a partir del CSV que entrega el área de compras (Latin-1, separado por ';').
//
// Uso: go run ./cmd/seed_catalog [ruta/modelos.csv]
// Por defecto busca modelos.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/seed/equipment_models.sql
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type model struct {
	Brand    string
	Name     string
	ItemCode string
}

func main() {
	csvPath := "modelos.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	models, skipped, err := parseModels(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	outDir := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "seed")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	outPath := filepath.Join(outDir, "equipment_models.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, models); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d modelos, %d filas omitidas\n", outPath, len(models), skipped)
}

// parseModels decodifica el CSV en ISO-8859-1. Filas incompletas se omiten;
// si un código de ítem se repite gana la última fila.
func parseModels(r io.Reader) ([]model, int, error) {
	cr := csv.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	byCode := make(map[string]model)
	skipped := 0
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, err
		}
		if first {
			first = false
			if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "marca") {
				continue
			}
		}
		if len(rec) < 3 {
			skipped++
			continue
		}
		m := model{
			Brand:    strings.TrimSpace(rec[0]),
			Name:     strings.TrimSpace(rec[1]),
			ItemCode: strings.ToUpper(strings.TrimSpace(rec[2])),
		}
		if m.Brand == "" || m.Name == "" || m.ItemCode == "" {
			skipped++
			continue
		}
		byCode[m.ItemCode] = m
	}

	out := make([]model, 0, len(byCode))
	for _, m := range byCode {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemCode < out[j].ItemCode })
	return out, skipped, nil
}

func writeSQL(w io.Writer, models []model) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de modelos de equipo ONU\n")
	b.WriteString("-- Generado por cmd/seed_catalog\n\n")
	if len(models) == 0 {
		b.WriteString("-- sin modelos\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	b.WriteString("INSERT INTO equipment_models (brand, name, item_code) VALUES\n")
	for i, m := range models {
		fmt.Fprintf(&b, "  ('%s', '%s', '%s')", escapeSQL(m.Brand), escapeSQL(m.Name), escapeSQL(m.ItemCode))
		if i < len(models)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString("ON CONFLICT (item_code) DO UPDATE SET brand = EXCLUDED.brand, name = EXCLUDED.name;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
