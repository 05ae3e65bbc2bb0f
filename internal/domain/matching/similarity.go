// Package matching contiene el algoritmo único de similitud de descripciones usado por la
// conciliación de facturas contra el catálogo.
package matching

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold umbral mínimo de similitud para aceptar una coincidencia por descripción.
const DefaultThreshold = 0.80

// Normalize pasa a minúsculas, elimina acentos y puntuación, colapsa espacios
// y ordena los términos para que el orden de las palabras no afecte la comparación.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

// Similarity devuelve un puntaje en [0,1]: 1 - distancia de Levenshtein / longitud mayor,
// calculado sobre las descripciones normalizadas.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	la, lb := len([]rune(na)), len([]rune(nb))
	longest := la
	if lb > longest {
		longest = lb
	}
	dist := levenshtein.ComputeDistance(na, nb)
	return 1 - float64(dist)/float64(longest)
}

// Candidate descripción candidata identificada por clave.
type Candidate struct {
	Key          string
	Descriptions []string
}

// Scored resultado de comparar una descripción con un candidato.
type Scored struct {
	Key   string
	Score float64
}

// Rank puntúa cada candidato (máximo entre sus descripciones) y los devuelve de mayor a menor.
// En empate se conserva el orden de entrada.
func Rank(description string, candidates []Candidate) []Scored {
	out := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		best := 0.0
		for _, desc := range c.Descriptions {
			if s := Similarity(description, desc); s > best {
				best = s
			}
		}
		out = append(out, Scored{Key: c.Key, Score: best})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
