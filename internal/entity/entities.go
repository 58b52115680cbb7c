package entity

import "github.com/legajo/docsync/constants"

// Entities is the fixed-shape classification map stored with each analyzed
// version. List order carries no meaning; empty lists are kept so the JSON
// shape is stable for consumers.
type Entities struct {
	Personas           []Person         `json:"personas"`
	Fechas             []DateEntity     `json:"fechas"`
	Organizaciones     []Organization   `json:"organizaciones"`
	Ubicaciones        []Location       `json:"ubicaciones"`
	ReferenciasLegales []LegalReference `json:"referencias_legales"`
	TerminosClave      []Keyword        `json:"terminos_clave"`
}

// NewEntities returns an Entities value with every list allocated empty.
func NewEntities() Entities {
	return Entities{
		Personas:           []Person{},
		Fechas:             []DateEntity{},
		Organizaciones:     []Organization{},
		Ubicaciones:        []Location{},
		ReferenciasLegales: []LegalReference{},
		TerminosClave:      []Keyword{},
	}
}

// Counts reports how many entities each category holds, keyed by the
// category strings from the constants package.
func (e Entities) Counts() map[string]int {
	return map[string]int{
		constants.CategoryPersonas:           len(e.Personas),
		constants.CategoryFechas:             len(e.Fechas),
		constants.CategoryOrganizaciones:     len(e.Organizaciones),
		constants.CategoryUbicaciones:        len(e.Ubicaciones),
		constants.CategoryReferenciasLegales: len(e.ReferenciasLegales),
		constants.CategoryTerminosClave:      len(e.TerminosClave),
	}
}

// Person is a classified person mention. Role is "NO" when no legal-role
// keyword was found in the surrounding context, in which case CompleteRole
// is just the bare name.
type Person struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	Tipo         string `json:"tipo"`
	CompleteRole string `json:"complete_role"`
}

// DateEntity is a parsed date mention. Fecha is ISO (YYYY-MM-DD) when
// IsValid, empty otherwise.
type DateEntity struct {
	Fecha   string `json:"fecha"`
	Evento  string `json:"evento"`
	IsValid bool   `json:"is_valid"`
}

type Organization struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Location struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// LegalReference covers both statute references ("Artículo 123") and
// document codes ("ABC-2023-001"); exactly one of Articulo or Codigo is set.
type LegalReference struct {
	Ley      string `json:"ley"`
	Articulo string `json:"articulo,omitempty"`
	Codigo   string `json:"codigo,omitempty"`
}

type Keyword struct {
	Text string `json:"text"`
}
