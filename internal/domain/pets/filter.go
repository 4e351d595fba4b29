package pets

import (
	"sort"
	"strconv"
	"strings"

	"pet-adoption-portal/internal/catalog"
	"pet-adoption-portal/internal/platform/textnorm"
)

// SearchParams son los parámetros crudos del listado público (todos opcionales).
type SearchParams struct {
	Query    string `json:"q,omitempty"`
	Species  string `json:"tipo,omitempty"`
	Sex      string `json:"sexo,omitempty"`
	AgeRange string `json:"edad,omitempty"` // índice en catalog.AgeBands
	Region   string `json:"region,omitempty"`
	City     string `json:"ciudad,omitempty"`
	Location string `json:"ubic,omitempty"` // filtro legacy por substring
}

// Filter es la forma resuelta de SearchParams. Los términos de ubicación ya vienen plegados.
// El store en memoria usa Matches; Postgres traduce los mismos campos a SQL.
type Filter struct {
	Text    string
	Species string
	Sex     string

	Age *catalog.AgeBand

	City         string
	RegionTerms  []string
	RegionCities []string
	Location     string

	// Vacío = cualquier estado.
	Statuses []Status
}

// Engine resuelve parámetros contra el catálogo del proceso.
type Engine struct {
	cat *catalog.Catalog
}

func NewEngine(cat *catalog.Catalog) *Engine {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Engine{cat: cat}
}

func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Resolve nunca falla: un parámetro vacío o inválido simplemente no filtra.
func (e *Engine) Resolve(p SearchParams) Filter {
	f := Filter{
		Text:     strings.TrimSpace(p.Query),
		Species:  strings.TrimSpace(p.Species),
		Sex:      strings.TrimSpace(p.Sex),
		Location: textnorm.Fold(p.Location),
	}

	if raw := strings.TrimSpace(p.AgeRange); raw != "" {
		if idx, err := strconv.Atoi(raw); err == nil {
			if band, ok := e.cat.AgeBand(idx); ok {
				f.Age = &band
			}
		}
	}

	// La ciudad exacta manda; la región solo aplica si no hay ciudad.
	if city := textnorm.Fold(p.City); city != "" {
		f.City = city
		return f
	}

	region := textnorm.Fold(p.Region)
	if region == "" {
		return f
	}
	f.RegionTerms = []string{region}
	if r, ok := e.cat.FindRegion(region); ok {
		f.RegionTerms = appendUnique(f.RegionTerms, textnorm.Fold(r.Key), textnorm.Fold(r.Name))
		for _, c := range r.Cities {
			f.RegionCities = appendUnique(f.RegionCities, textnorm.Fold(c))
		}
	}
	return f
}

// Matches aplica el filtro a una mascota (todas las condiciones con AND).
func (f Filter) Matches(p Pet) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, p.Status) {
		return false
	}

	if f.Text != "" {
		q := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Breed), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!strings.Contains(strings.ToLower(p.Location), q) {
			return false
		}
	}

	if f.Species != "" && p.Species != f.Species {
		return false
	}
	if f.Sex != "" && p.Sex != f.Sex {
		return false
	}

	if f.Age != nil && (p.AgeMonths < f.Age.Min || p.AgeMonths > f.Age.Max) {
		return false
	}

	loc := textnorm.Fold(p.Location)

	if f.City != "" {
		if textnorm.Fold(p.City) != f.City && !strings.Contains(loc, f.City) {
			return false
		}
	} else if len(f.RegionTerms) > 0 && !f.matchesRegion(p, loc) {
		return false
	}

	if f.Location != "" && !strings.Contains(loc, f.Location) {
		return false
	}

	return true
}

func (f Filter) matchesRegion(p Pet, loc string) bool {
	region := textnorm.Fold(p.Region)
	for _, t := range f.RegionTerms {
		if region == t {
			return true
		}
	}
	city := textnorm.Fold(p.City)
	for _, c := range f.RegionCities {
		if city == c || strings.Contains(loc, c) {
			return true
		}
	}
	return false
}

// SortNewestFirst ordena por CreatedAt desc; empate por ID para que sea estable.
func SortNewestFirst(items []Pet) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func containsStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, d := range dst {
			if d == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
