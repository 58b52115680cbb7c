package ner

import (
	"regexp"
	"strings"

	"github.com/legajo/docsync/internal/entity"
)

var (
	reValidName = regexp.MustCompile(`^[\p{L}][\p{L}\s.'-]*$`)
	reRefNumber = regexp.MustCompile(`\d+[A-Za-z]?(?:\s*(?:bis|ter))?(?:[-/]\d+)?`)
)

// classifier turns resolved spans into the structured entity payloads.
type classifier struct {
	text   string
	tokens []token
	vocab  *Vocabulary
}

func (c *classifier) classify(spans []RawSpan, out *entity.Entities) {
	for _, s := range spans {
		switch coarseCategory(s.Label) {
		case catPerson:
			if p, ok := c.person(s); ok {
				out.Personas = append(out.Personas, p)
			}
		case catDate:
			c.date(s, out)
		case catOrg:
			name := strings.TrimSpace(s.Text)
			if name == "" {
				continue
			}
			out.Organizaciones = append(out.Organizaciones, entity.Organization{
				Name: name,
				Type: c.vocab.OrgType(name),
			})
		case catLocation:
			name := strings.TrimSpace(s.Text)
			if name == "" {
				continue
			}
			out.Ubicaciones = append(out.Ubicaciones, entity.Location{
				Name: name,
				Kind: c.locationKind(s),
			})
		case catLegalRef:
			out.ReferenciasLegales = append(out.ReferenciasLegales, parseLegalRef(s.Text))
		case catLegalDoc:
			out.ReferenciasLegales = append(out.ReferenciasLegales, entity.LegalReference{
				Codigo: strings.TrimSpace(s.Text),
			})
		case catKeyword:
			if kw := c.vocab.MatchKeyword(s.Text); kw != "" {
				out.TerminosClave = append(out.TerminosClave, entity.Keyword{Text: kw})
			}
		}
	}
}

// person cleans a model prediction down to a plausible proper name and
// resolves the subject's legal role from the surrounding tokens.
func (c *classifier) person(s RawSpan) (entity.Person, bool) {
	name, role := s.Text, ""

	// Role-qualified pattern matches carry the role word as their prefix.
	if strings.EqualFold(s.Label, "PERSON_W_ROLE") {
		fields := strings.Fields(s.Text)
		if len(fields) >= 2 {
			role = strings.ToLower(fields[0])
			name = strings.Join(fields[1:], " ")
		}
	}

	name = cleanPersonName(name)
	if name == "" || !reValidName.MatchString(name) {
		return entity.Person{}, false
	}

	if role == "" {
		role = c.vocab.DetectRole(c.context(s, 5))
	}
	// With no role match the complete form is just the bare name.
	complete := name
	if role == roleUnknown {
		role = "NO"
	} else {
		complete = role + " " + name
	}
	return entity.Person{
		Name:         name,
		Role:         role,
		Tipo:         "física",
		CompleteRole: complete,
	}, true
}

// cleanPersonName keeps the leading run of capitalized tokens, dropping
// trailing lowercase words the model pulled in from the sentence.
func cleanPersonName(raw string) string {
	var kept []string
	for _, f := range strings.Fields(raw) {
		if !startsUpper(f) {
			break
		}
		kept = append(kept, strings.Trim(f, ".,;:"))
	}
	return strings.Join(kept, " ")
}

func (c *classifier) date(s RawSpan, out *entity.Entities) {
	iso := ParseSpanishDate(s.Text)
	if iso != InvalidDate {
		// Evento stays empty; the calendar generator supplies the
		// document-derived description.
		out.Fechas = append(out.Fechas, entity.DateEntity{
			Fecha:   iso,
			IsValid: true,
		})
		return
	}

	// The model flags statute references and file codes as dates often
	// enough that an unparseable one is worth a second look.
	switch {
	case c.vocab.IsLegalRef(s.Text):
		out.ReferenciasLegales = append(out.ReferenciasLegales, parseLegalRef(s.Text))
	case c.vocab.IsDocumentCode(s.Text):
		out.ReferenciasLegales = append(out.ReferenciasLegales, entity.LegalReference{
			Codigo: strings.TrimSpace(s.Text),
		})
	case c.vocab.MatchKeyword(s.Text) != "":
		out.TerminosClave = append(out.TerminosClave, entity.Keyword{Text: c.vocab.MatchKeyword(s.Text)})
	}
}

// locationKind applies the toponym heuristics: digits point at street-level
// addresses, known administrative words pick the level, short spans without
// other signals default to city.
func (c *classifier) locationKind(s RawSpan) string {
	lower := strings.ToLower(s.Text)
	hasDigit := strings.ContainsAny(lower, "0123456789")

	if hasDigit {
		switch {
		case containsAny(lower, "juzgado", "calle", "avenida", "av.", "blvd", "boulevard"):
			return "direccion"
		case containsAny(lower, "colonia", "col.", "fraccionamiento", "fracc"):
			return "colonia"
		case containsAny(lower, "zona", "norte", "sur", "oriente", "poniente", "centro"):
			return "zona"
		}
		return "direccion"
	}

	switch {
	case containsAny(lower, "estado", "provincia", "entidad federativa"):
		return "estado"
	case containsAny(lower, "ciudad", "pueblo", "municipio", "localidad"):
		return "ciudad"
	case containsAny(lower, "país", "pais", "república", "republica", "nación"):
		return "pais"
	}

	context := strings.ToLower(c.context(s, 3))
	switch {
	case containsAny(context, "estado de", "provincia de"):
		return "estado"
	case containsAny(context, "ciudad de", "municipio de", "pueblo de"):
		return "ciudad"
	case containsAny(context, "país de", "república de"):
		return "pais"
	case containsAny(context, "calle", "avenida", "colonia", "domicilio"):
		return "direccion"
	}

	if len(strings.Fields(s.Text)) <= 2 {
		return "ciudad"
	}
	return "otro"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// context returns the text window n tokens either side of the span.
func (c *classifier) context(s RawSpan, n int) string {
	return contextWindow(c.text, c.tokens, s.Start, s.End, n)
}

// parseLegalRef splits a statute citation into its law, article and code
// parts based on the leading keyword.
func parseLegalRef(text string) entity.LegalReference {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	number := reRefNumber.FindString(trimmed)

	ref := entity.LegalReference{}
	switch {
	case strings.HasPrefix(lower, "art"):
		ref.Articulo = number
		if ref.Articulo == "" {
			ref.Articulo = trimmed
		}
	case strings.HasPrefix(lower, "código") || strings.HasPrefix(lower, "codigo"):
		ref.Codigo = trimmed
	default:
		ref.Ley = trimmed
	}
	return ref
}
