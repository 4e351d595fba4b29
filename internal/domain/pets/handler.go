package pets

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-adoption-portal/internal/catalog"
	"pet-adoption-portal/internal/middleware"
	"pet-adoption-portal/internal/ports/capabilities"
)

func RegisterRoutes(r chi.Router, svc *Service, caps capabilities.CapabilitiesResolver) {
	// Listado público con filtros
	r.Get("/", listPetsHandler(svc))
	r.Get("/catalogo/", catalogHandler(svc))

	r.Route("/mascotas", func(pr chi.Router) {
		pr.Get("/mias/", listMyPetsHandler(svc))
		pr.Get("/{petID}/", getPetHandler(svc, caps))
		pr.Post("/{petID}/estado/", changeStatusHandler(svc, caps))
	})

	// Moderación
	r.Group(func(mr chi.Router) {
		mr.Use(middleware.RequireCapability(caps, capabilities.CapabilityModerate))
		mr.Get("/moderacion/mascotas.csv", exportCSVHandler(svc))
		mr.Post("/moderacion/mascotas/", createPetHandler(svc))
	})
}

type createPetRequest struct {
	OwnerUserID string `json:"owner_user_id"` // opcional; default = moderador que crea
	Name        string `json:"name"`
	Species     string `json:"species"`
	Breed       string `json:"breed"`
	AgeMonths   int    `json:"age_months"`
	Sex         string `json:"sex"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Region      string `json:"region"`
	City        string `json:"city"`
	PhotoKey    string `json:"photo_key"`
}

type petResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Breed       string    `json:"breed"`
	AgeMonths   int       `json:"age_months"`
	Sex         string    `json:"sex"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Region      string    `json:"region,omitempty"`
	City        string    `json:"city,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type listResponse struct {
	Filters SearchParams  `json:"filters"`
	Count   int           `json:"count"`
	Items   []petResponse `json:"items"`
}

type catalogResponse struct {
	*catalog.Catalog
	Locations []string `json:"locations"`
}

// ParseSearchParams lee los alias del listado (q|query|s, ubic|ubicacion).
func ParseSearchParams(r *http.Request) SearchParams {
	q := r.URL.Query()
	return SearchParams{
		Query:    firstNonEmpty(q.Get("q"), q.Get("query"), q.Get("s")),
		Species:  q.Get("tipo"),
		Sex:      q.Get("sexo"),
		AgeRange: q.Get("edad"),
		Region:   q.Get("region"),
		City:     q.Get("ciudad"),
		Location: firstNonEmpty(q.Get("ubic"), q.Get("ubicacion")),
	}
}

// @Summary Listado público de mascotas
// @Description Mascotas disponibles, más recientes primero. Parámetros vacíos o inválidos no filtran.
// @Tags pets
// @Produce json
// @Param q query string false "Texto libre (alias: query, s) sobre nombre, raza, descripción y ubicación"
// @Param tipo query string false "Especie (clave del catálogo)"
// @Param sexo query string false "macho | hembra"
// @Param edad query int false "Índice del rango de edad del catálogo"
// @Param region query string false "Región (clave o nombre, sin importar tildes)"
// @Param ciudad query string false "Ciudad; si viene, manda sobre región"
// @Param ubic query string false "Substring de ubicación libre"
// @Success 200 {object} listResponse
// @Router / [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := ParseSearchParams(r)

		items, err := svc.Search(r.Context(), params)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, listResponse{
			Filters: params,
			Count:   len(items),
			Items:   toPetResponses(items),
		})
	}
}

func catalogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locs, err := svc.Locations(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, catalogResponse{Catalog: svc.Engine().Catalog(), Locations: locs})
	}
}

func listMyPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponses(items))
	}
}

// @Summary Detalle de mascota
// @Description Una mascota no disponible solo la ven su responsable y moderación.
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 404 {string} string "pet not found"
// @Router /mascotas/{petID}/ [get]
func getPetHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetVisible(r.Context(), actorFrom(r, caps), chi.URLParam(r, "petID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func changeStatusHandler(svc *Service, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		to, ok := ParseStatus(strings.TrimSpace(r.FormValue("estado")))
		if !ok {
			http.Error(w, "estado must be disponible|reservado|adoptado", http.StatusBadRequest)
			return
		}

		p, err := svc.ChangeStatus(r.Context(), actorFrom(r, caps), chi.URLParam(r, "petID"), to)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		owner := strings.TrimSpace(req.OwnerUserID)
		if owner == "" {
			owner = claims.UserID
		}

		p, err := svc.Create(r.Context(), owner, CreateInput{
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			AgeMonths:   req.AgeMonths,
			Sex:         req.Sex,
			Description: req.Description,
			Location:    req.Location,
			Region:      req.Region,
			City:        req.City,
			PhotoKey:    req.PhotoKey,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func exportCSVHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := fmt.Sprintf("mascotas-%s.csv", svc.now().UTC().Format("20060102-150405"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)

		// Los errores a mitad de escritura ya no pueden cambiar el status.
		if _, err := svc.ExportCSV(r.Context(), ParseSearchParams(r), w); err != nil {
			svc.log.Error("csv export failed", map[string]any{"err": err})
		}
	}
}

func actorFrom(r *http.Request, caps capabilities.CapabilitiesResolver) Actor {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		return Actor{}
	}
	return Actor{
		UserID:    claims.UserID,
		Moderator: middleware.HasCapability(r.Context(), caps, claims, capabilities.CapabilityModerate),
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toPetResponses(items []Pet) []petResponse {
	out := make([]petResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPetResponse(p))
	}
	return out
}

func toPetResponse(p Pet) petResponse {
	resp := petResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		AgeMonths:   p.AgeMonths,
		Sex:         p.Sex,
		Description: p.Description,
		Location:    p.Location,
		Region:      p.Region,
		City:        p.City,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.PhotoKey != "" {
		resp.PhotoURL = "/media/" + p.PhotoKey
	}
	return resp
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// writeJSON está duplicado en cada módulo (pets/adoptions/publications/accounts)
// para no crear un paquete de helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
