package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
)

// Campo de identificador por constraint único.
var uniqueFields = map[string]string{
	"equipment_mac_key":                 "mac",
	"equipment_gpon_serial_key":         "gpon_serial",
	"equipment_manufacturer_serial_key": "manufacturer_serial",
	"equipment_code_key":                "code",
	"vendor_returns_number_key":         "return_number",
	"batches_code_key":                  "batch_code",
	"equipment_models_item_code_key":    "item_code",
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// mapWriteError traduce violaciones de unicidad y fallas de serialización a errores de dominio.
// Cualquier otro error se devuelve tal cual para que el llamador lo envuelva.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		if pgErr.ConstraintName == "partial_deliveries_batch_number_key" {
			return domain.Conflictf("número de entrega duplicado en el lote")
		}
		if pgErr.ConstraintName == "retired_identifiers_pkey" {
			field, value := splitKey(pgErr.Detail)
			return &domain.DuplicateIdentifierError{Field: field, Value: value}
		}
		if field, ok := uniqueFields[pgErr.ConstraintName]; ok {
			_, value := splitKey(pgErr.Detail)
			if value == "" {
				value = keyValue(pgErr.Detail)
			}
			return &domain.DuplicateIdentifierError{Field: field, Value: value}
		}
		return domain.Conflictf("%s", pgErr.Message)
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return domain.Conflictf("transacción concurrente, reintente")
	}
	return err
}

// keyValue extrae el valor de "Key (mac)=(AA:BB:...) already exists.".
func keyValue(detail string) string {
	start := strings.Index(detail, ")=(")
	if start < 0 {
		return ""
	}
	rest := detail[start+3:]
	end := strings.LastIndex(rest, ")")
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// splitKey para claves compuestas "Key (field, value)=(mac, AA:BB:...)".
func splitKey(detail string) (string, string) {
	v := keyValue(detail)
	field, value, ok := strings.Cut(v, ", ")
	if !ok {
		return "", ""
	}
	return field, value
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
