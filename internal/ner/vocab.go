package ner

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// PatternConfig is the externally swappable matcher table: the domain
// vocabulary lives here as data, not code, so it can be extended without
// touching pipeline logic.
type PatternConfig struct {
	PersonRoles     []RolePattern `yaml:"person_roles"`
	OrgTypes        []TypePattern `yaml:"org_types"`
	Keywords        []string      `yaml:"keywords"`
	LegalReferences []string      `yaml:"legal_references"`
	DocumentCodes   []string      `yaml:"document_codes"`
	RoleWords       []string      `yaml:"role_words"`
}

type RolePattern struct {
	Role    string `yaml:"role"`
	Pattern string `yaml:"pattern"`
}

type TypePattern struct {
	Type    string `yaml:"type"`
	Pattern string `yaml:"pattern"`
}

// LoadPatternConfig reads a YAML pattern table; empty sections fall back to
// the built-in defaults.
func LoadPatternConfig(path string) (PatternConfig, error) {
	cfg := DefaultPatternConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read pattern config %s: %w", path, err)
	}
	var over PatternConfig
	if err := yaml.Unmarshal(b, &over); err != nil {
		return cfg, fmt.Errorf("parse pattern config %s: %w", path, err)
	}
	if len(over.PersonRoles) > 0 {
		cfg.PersonRoles = over.PersonRoles
	}
	if len(over.OrgTypes) > 0 {
		cfg.OrgTypes = over.OrgTypes
	}
	if len(over.Keywords) > 0 {
		cfg.Keywords = over.Keywords
	}
	if len(over.LegalReferences) > 0 {
		cfg.LegalReferences = over.LegalReferences
	}
	if len(over.DocumentCodes) > 0 {
		cfg.DocumentCodes = over.DocumentCodes
	}
	if len(over.RoleWords) > 0 {
		cfg.RoleWords = over.RoleWords
	}
	return cfg, nil
}

// word wraps alternatives in a unicode-aware boundary. Go's \b is ASCII
// only, which mishandles words that start or end with accented letters.
func word(alts string) string {
	return `(?i)(?:^|[^\p{L}\p{N}])(?:` + alts + `)(?:$|[^\p{L}\p{N}])`
}

// DefaultPatternConfig is the curated Spanish legal vocabulary.
func DefaultPatternConfig() PatternConfig {
	return PatternConfig{
		PersonRoles: []RolePattern{
			{"demandante", word(`demandante|actor|querellante|quejoso`)},
			{"abogado", word(`abogado|letrado|defensor|consultor jurídico`)},
			{"juez", word(`juez|magistrado|jueza|presidente de tribunal`)},
			{"secretario", word(`secretario|actuario|oficial judicial`)},
			{"notario", word(`notario|corredor público`)},
			{"perito_traductor", word(`perito traductor|traductor oficial|intérprete`)},
			{"perito", word(`perito|experto forense|ingeniero`)},
			{"testigo", word(`testigo`)},
			{"demandado", word(`demandado|acusado|procesado|imputado`)},
			{"fiscal", word(`fiscal|ministerio público|procurador`)},
			{"autoridad", word(`autoridad|funcionario|servidor público`)},
			{"víctima", word(`víctima|ofendido|agraviado`)},
			{"asesor", word(`asesor|consultor|consejero legal`)},
			{"apoderado", word(`apoderado|representante legal|mandatario`)},
			{"mediador", word(`mediador|conciliador|árbitro`)},
			{"procurador", word(`procurador|gestor judicial`)},
			{"tercero", word(`tercero interesado|tercero perjudicado|tercero coadyuvante`)},
		},
		OrgTypes: []TypePattern{
			{"empresa", word(`s\.?a\.?|s\.?r\.?l\.?|corporación|empresa|sa de cv|s\.?c\.?|sociedad anónima|sociedad limitada|compañía|firma|grupo empresarial|holding|consorcio|comercial|industrial|corporativo`)},
			{"gobierno", word(`gobierno|secretaría|ministerio|instituto|dirección general|subsecretaría|delegación|coordinación|dependencia|organismo público|ayuntamiento|municipalidad|alcaldía|comisión nacional|agencia estatal`)},
			{"educativa", word(`universidad|escuela|colegio|facultad|instituto tecnológico|centro educativo|academia|preparatoria|bachillerato|conservatorio|seminario|campus|politécnico|centro de estudios`)},
			{"judicial", word(`juzgado|tribunal|consejo de la judicatura|corte|sala|órgano jurisdiccional|suprema corte|audiencia|fiscalía general|procuraduría general|defensoría pública|ministerio público|magistratura|fiscalía|procuraduría`)},
			{"salud", word(`hospital|clínica|centro de salud|sanatorio|instituto médico|centro médico|unidad médica|dispensario|policlínica|laboratorio clínico|centro de diagnóstico|centro de rehabilitación|consultorio médico`)},
			{"fundación", word(`fundación|asociación civil|ong|organización no gubernamental|institución de asistencia privada|asociación de beneficencia|organización sin fines de lucro|asociación benéfica`)},
			{"financiera", word(`banco|casa de bolsa|aseguradora|financiera|casa de cambio|sociedad financiera|cooperativa de ahorro|afore|institución de crédito|fondo de inversión|institución bancaria`)},
			{"religiosa", word(`iglesia|parroquia|diócesis|arquidiócesis|congregación|orden religiosa|templo|santuario|monasterio|convento`)},
			{"deportiva", word(`club deportivo|federación deportiva|asociación deportiva|liga|equipo|centro deportivo|complejo deportivo|unidad deportiva`)},
			{"cultural", word(`museo|teatro|centro cultural|galería|biblioteca|casa de cultura|instituto cultural|centro de artes|auditorio|filmoteca|cineteca`)},
			{"comercial", word(`cámara de comercio|asociación comercial|centro comercial|plaza comercial|mercado|tienda departamental|cadena comercial|franquicia`)},
			{"sindical", word(`sindicato|unión de trabajadores|federación sindical|confederación laboral|gremio|asociación gremial|central obrera`)},
			{"investigación", word(`centro de investigación|instituto de investigación|laboratorio de investigación|centro de desarrollo|centro de innovación|parque tecnológico`)},
			{"cooperativa", word(`cooperativa|sociedad cooperativa|unión de cooperativas|caja popular|sociedad mutualista|colectivo`)},
			{"internacional", word(`organismo internacional|organización internacional|agencia internacional|comisión internacional|misión diplomática|embajada|consulado`)},
		},
		Keywords: []string{
			"indemnización", "cláusula", "amparo", "sentencia", "recurso", "contrato",
			"incumplimiento", "arrendatario", "garantía", "litigio", "notificación", "propiedad",
			"herencia", "bienes", "delito", "acusado", "licencia", "apelación", "defensa",
			"arbitraje", "prueba", "ejecución", "resolución", "demanda", "procedimiento", "dictamen",
		},
		LegalReferences: []string{
			`(?i)\b(?:Art(?:[íi]culo)?\.?|Ley|Código|Decreto|Norma|Acuerdo)\s*[.:]?\s*(?:No\.?\s*)?\d+[A-Za-z]?(?:\s*(?:bis|ter))?(?:[-/]\d+)?`,
		},
		DocumentCodes: []string{
			`\b[A-Z]{3}-\d{4}-\d{3}\b`,
			`\b[A-Z]{3}\d{6}\b`,
			`\b[A-Z]{3}-\d{2}[A-Z]\d-\d{3}\b`,
		},
		RoleWords: []string{
			"secretario", "juez", "fiscal", "notario", "magistrado", "actuario",
			"testigo", "arrendatario", "deudor", "acreedor", "demandante", "abogado",
			"perito", "procurador", "mediador", "asesor", "apoderado", "defensor",
			"letrado", "querellante",
		},
	}
}

// Vocabulary is the compiled form of a PatternConfig.
type Vocabulary struct {
	roles        []compiledRole
	orgTypes     []compiledType
	keywords     []compiledKeyword
	refPatterns  []*regexp.Regexp
	codePatterns []*regexp.Regexp
	roleName     *regexp.Regexp

	reArticle *regexp.Regexp
}

type compiledRole struct {
	role string
	re   *regexp.Regexp
}

type compiledType struct {
	typ string
	re  *regexp.Regexp
}

type compiledKeyword struct {
	keyword string
	re      *regexp.Regexp
}

// Compile builds the runtime vocabulary, failing on any invalid pattern so
// a broken override file is caught at startup rather than mid-sync.
func (c PatternConfig) Compile() (*Vocabulary, error) {
	v := &Vocabulary{
		reArticle: regexp.MustCompile(`(?i)\b(?:el|la)\s+(\p{L}+)`),
	}
	for _, rp := range c.PersonRoles {
		re, err := regexp.Compile(rp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("person role %q: %w", rp.Role, err)
		}
		v.roles = append(v.roles, compiledRole{rp.Role, re})
	}
	for _, tp := range c.OrgTypes {
		re, err := regexp.Compile(tp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("org type %q: %w", tp.Type, err)
		}
		v.orgTypes = append(v.orgTypes, compiledType{tp.Type, re})
	}
	for _, kw := range c.Keywords {
		re, err := regexp.Compile(word(regexp.QuoteMeta(kw)))
		if err != nil {
			return nil, fmt.Errorf("keyword %q: %w", kw, err)
		}
		v.keywords = append(v.keywords, compiledKeyword{kw, re})
	}
	for _, p := range c.LegalReferences {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("legal reference pattern %q: %w", p, err)
		}
		v.refPatterns = append(v.refPatterns, re)
	}
	for _, p := range c.DocumentCodes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("document code pattern %q: %w", p, err)
		}
		v.codePatterns = append(v.codePatterns, re)
	}
	if len(c.RoleWords) > 0 {
		alts := strings.Join(c.RoleWords, "|")
		// Case folding stays scoped to the role word so the name part
		// still requires capitalized tokens.
		re, err := regexp.Compile(`\b(?i:` + alts + `)\s+\p{Lu}\p{L}*(?:\s+\p{Lu}\p{L}*)*`)
		if err != nil {
			return nil, fmt.Errorf("role words: %w", err)
		}
		v.roleName = re
	}
	return v, nil
}

// MustDefaultVocabulary compiles the built-in tables; the defaults are
// covered by tests, so a panic here means a broken build.
func MustDefaultVocabulary() *Vocabulary {
	v, err := DefaultPatternConfig().Compile()
	if err != nil {
		panic(err)
	}
	return v
}

const roleUnknown = "desconocido"

// DetectRole scans a context window for a legal-role match. The curated
// table wins; a bare "el/la <word>" article construction is the structural
// fallback; otherwise "desconocido".
func (v *Vocabulary) DetectRole(context string) string {
	text := strings.ToLower(strings.Join(strings.Fields(context), " "))

	if strings.Contains(text, "mediante la presente") {
		return "otorgante"
	}
	if strings.Contains(text, "confiero poder a") {
		return "apoderado"
	}
	for _, r := range v.roles {
		if r.re.MatchString(text) {
			return r.role
		}
	}
	if m := v.reArticle.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return roleUnknown
}

// OrgType classifies an organization name against the category table,
// defaulting to "otro".
func (v *Vocabulary) OrgType(name string) string {
	lower := strings.ToLower(name)
	for _, t := range v.orgTypes {
		if t.re.MatchString(lower) {
			return t.typ
		}
	}
	return "otro"
}

// MatchKeyword returns the curated keyword contained in text, or "".
func (v *Vocabulary) MatchKeyword(text string) string {
	lower := strings.ToLower(text)
	for _, k := range v.keywords {
		if k.re.MatchString(lower) {
			return k.keyword
		}
	}
	return ""
}

// IsLegalRef reports whether text contains a statute-reference pattern.
func (v *Vocabulary) IsLegalRef(text string) bool {
	for _, re := range v.refPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsDocumentCode reports whether text contains a document-code pattern.
func (v *Vocabulary) IsDocumentCode(text string) bool {
	for _, re := range v.codePatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
