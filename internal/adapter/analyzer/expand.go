package analyzer

import "strings"

// synonymMap lists Spanish synonym variants used for rule-based query
// expansion. No LLM involved; recall only, never precision.
var synonymMap = map[string][]string{
	// Academic terms
	"licenciatura": {"carrera", "grado", "titulo", "estudios"},
	"carrera":      {"licenciatura", "programa", "estudios"},
	"materia":      {"asignatura", "curso", "modulo"},
	"asignatura":   {"materia", "curso", "modulo"},
	"profesor":     {"docente", "catedratico", "maestro"},
	"alumno":       {"estudiante", "cursante"},
	"examen":       {"evaluacion", "prueba", "test"},
	"calificacion": {"nota", "puntuacion"},
	// Document terms
	"capitulo": {"seccion", "unidad", "parte"},
	"pagina":   {"hoja", "folio"},
	// Banking terms
	"cuenta":        {"deposito", "producto"},
	"transferencia": {"envio", "movimiento", "traspaso"},
	"prestamo":      {"credito", "financiamiento"},
	"tarjeta":       {"plastico"},
	"saldo":         {"balance", "disponible"},
	"interes":       {"tasa", "rendimiento"},
	// General terms
	"procedimiento": {"proceso", "tramite", "metodo"},
	"requisitos":    {"requerimientos", "condiciones"},
	"beneficios":    {"ventajas", "bondades"},
}

const maxVariants = 4

// SearchVariants generates alternate phrasings of the query for improved
// recall: the original, a keywords-only form, and up to two synonym
// substitutions. The original is always first.
func SearchVariants(query string) []string {
	variants := []string{query}

	keywords := ExtractKeywords(query)
	if len(keywords) >= 2 {
		kwQuery := strings.Join(limit(keywords, 8), " ")
		if kwQuery != strings.ToLower(query) {
			variants = append(variants, kwQuery)
		}
	}

	queryLower := strings.ToLower(query)
	for _, kw := range keywords {
		syns, ok := synonymMap[kw]
		if !ok {
			continue
		}
		for _, syn := range limit(syns, 2) {
			variant := strings.ReplaceAll(queryLower, kw, syn)
			if variant == queryLower || contains(variants, variant) {
				continue
			}
			variants = append(variants, variant)
			if len(variants) >= maxVariants {
				return variants
			}
		}
	}

	return variants
}

func limit(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
