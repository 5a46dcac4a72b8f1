package dto

// Límites de página para listados de catálogo.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// Normalize lleva Limit a [1, MaxPageLimit] (cero toma DefaultPageLimit) y Offset a >= 0.
func (p *PageRequest) Normalize() {
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

// PageResponse metadatos de página en respuestas. HasMore indica que existe
// al menos un registro después de esta página.
type PageResponse struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Count   int  `json:"count"`
	HasMore bool `json:"has_more"`
}

// NewPage arma los metadatos a partir de n filas leídas pidiendo Limit+1.
func NewPage(p PageRequest, n int) PageResponse {
	page := PageResponse{Limit: p.Limit, Offset: p.Offset, Count: n}
	if n > p.Limit {
		page.Count, page.HasMore = p.Limit, true
	}
	return page
}

// FieldError campo rechazado por la validación del cuerpo o la query.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. Fields solo aparece en errores de validación.
type ErrorResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}
