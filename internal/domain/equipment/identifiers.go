package equipment

import (
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
)

var (
	hex12      = regexp.MustCompile(`^[0-9A-F]{12}$`)
	gponVendor = regexp.MustCompile(`^[A-Z]{4}[0-9A-F]{8}$`)
	gponHex    = regexp.MustCompile(`^[0-9A-F]{16}$`)
	serialRe   = regexp.MustCompile(`^[0-9A-Z\-_/.]{1,64}$`)
)

// Identifiers identificadores únicos de un equipo tal como llegan del usuario o de un archivo.
type Identifiers struct {
	MAC                string
	GPONSerial         string
	ManufacturerSerial string
}

// NormalizeMAC acepta AA:BB:CC:DD:EE:FF, AA-BB-..., AABB.CCDD.EEFF o 12 hex y devuelve AA:BB:CC:DD:EE:FF.
func NormalizeMAC(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", domain.Missing(string(entity.FieldMAC))
	}
	s = strings.NewReplacer(":", "", "-", "", ".", "", " ", "").Replace(s)
	if !hex12.MatchString(s) {
		return "", domain.Invalid(string(entity.FieldMAC), "formato de MAC inválido")
	}
	var b strings.Builder
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(s[i : i+2])
	}
	return b.String(), nil
}

// CompactMAC MAC normalizada sin separadores.
func CompactMAC(mac string) string {
	return strings.ReplaceAll(mac, ":", "")
}

// NormalizeGPONSerial acepta HWTC1A2B3C4D (vendor + 8 hex) o la forma de 16 hex.
// La forma canónica es vendor + 8 hex: 485754431A2B3C4D se guarda como HWTC1A2B3C4D.
// Solo queda en 16 hex un serial cuyo vendor no son cuatro letras A-Z.
func NormalizeGPONSerial(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", domain.Missing(string(entity.FieldGPONSerial))
	}
	s = strings.ReplaceAll(s, "-", "")
	if !gponVendor.MatchString(s) && !gponHex.MatchString(s) {
		return "", domain.Invalid(string(entity.FieldGPONSerial), "formato de serie GPON inválido")
	}
	if gponHex.MatchString(s) {
		if vendor, ok := vendorID(s[:8]); ok {
			return vendor + s[8:], nil
		}
	}
	return s, nil
}

// vendorID decodifica 8 hex a los cuatro caracteres del vendor si son letras A-Z.
func vendorID(h string) (string, bool) {
	b, err := hex.DecodeString(h)
	if err != nil {
		return "", false
	}
	for _, c := range b {
		if c < 'A' || c > 'Z' {
			return "", false
		}
	}
	return string(b), true
}

// NormalizeSerial serie de fabricante opcional; vacío es válido.
func NormalizeSerial(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", nil
	}
	if !serialRe.MatchString(s) {
		return "", domain.Invalid(string(entity.FieldManufacturerSerial), "serie de fabricante inválida")
	}
	return s, nil
}

// Normalize valida y normaliza los tres identificadores. Devuelve el primer error de campo.
func (ids Identifiers) Normalize() (Identifiers, error) {
	mac, err := NormalizeMAC(ids.MAC)
	if err != nil {
		return Identifiers{}, err
	}
	gpon, err := NormalizeGPONSerial(ids.GPONSerial)
	if err != nil {
		return Identifiers{}, err
	}
	serial, err := NormalizeSerial(ids.ManufacturerSerial)
	if err != nil {
		return Identifiers{}, err
	}
	return Identifiers{MAC: mac, GPONSerial: gpon, ManufacturerSerial: serial}, nil
}

// Values identificadores no vacíos por campo, en orden de verificación.
func (ids Identifiers) Values() []FieldValue {
	out := []FieldValue{
		{Field: entity.FieldMAC, Value: ids.MAC},
		{Field: entity.FieldGPONSerial, Value: ids.GPONSerial},
	}
	if ids.ManufacturerSerial != "" {
		out = append(out, FieldValue{Field: entity.FieldManufacturerSerial, Value: ids.ManufacturerSerial})
	}
	return out
}

// FieldValue par campo/valor de un identificador.
type FieldValue struct {
	Field entity.IdentifierField
	Value string
}

// BuildCode código interno del equipo.
func BuildCode(itemCode, mac string) string {
	return strings.ToUpper(strings.TrimSpace(itemCode)) + "-" + CompactMAC(mac)
}
