package dto

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación para listados de equipos, lotes, devoluciones y catálogos.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage limita Limit a [1, MaxPageLimit] (0 o negativo = DefaultPageLimit) y Offset a >= 0.
func (p *PageRequest) DefaultPage() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Page arma los metadatos de respuesta para esta petición.
func (p PageRequest) Page(total int) PageResponse {
	return PageResponse{Limit: p.Limit, Offset: p.Offset, Total: total}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP: {code, message, details?}.
// details lleva el campo y valor duplicados, los equipos no defectuosos
// o la confirmación de borrado según el código.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
