package constants

// Entity category keys as stored in analyzed_content.entities. API
// consumers depend on these exact strings.
const (
	CategoryPersonas           = "personas"
	CategoryFechas             = "fechas"
	CategoryOrganizaciones     = "organizaciones"
	CategoryUbicaciones        = "ubicaciones"
	CategoryReferenciasLegales = "referencias_legales"
	CategoryTerminosClave      = "terminos_clave"
)
