package adoptions

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-adoption-portal/internal/domain/pets"
	"pet-adoption-portal/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/solicitudes", func(sr chi.Router) {
		sr.Get("/", listOwnHandler(svc))
		sr.Get("/recibidas/", listReceivedHandler(svc))
		sr.Post("/rapida/{petID}/", quickCreateHandler(svc))

		sr.Get("/{requestID}/", detailHandler(svc))
		sr.Get("/{requestID}/responder/", responderViewHandler(svc))
		sr.Post("/{requestID}/responder/", respondHandler(svc))
		sr.Post("/{requestID}/cancelar/", cancelHandler(svc))
	})
}

type requestResponse struct {
	ID          string     `json:"id"`
	RequesterID string     `json:"requester_id"`
	PetID       string     `json:"pet_id"`
	Message     string     `json:"message,omitempty"`
	Status      Status     `json:"status"`
	Response    string     `json:"response,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// outcomeResponse acompaña las mutaciones con un mensaje para mostrar al usuario.
type outcomeResponse struct {
	Request requestResponse `json:"request"`
	Changed bool            `json:"changed"`
	Message string          `json:"message"`
}

type responderView struct {
	Request requestResponse `json:"request"`
	Pet     petSummary      `json:"pet"`
}

type petSummary struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Status pets.Status `json:"status"`
}

// @Summary Solicitud rápida de adopción
// @Description Crea una solicitud pendiente sobre una mascota disponible. Si ya existe una pendiente del mismo usuario para la misma mascota responde 200 con un mensaje informativo en vez de duplicarla.
// @Tags adoptions
// @Accept x-www-form-urlencoded
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param petID path string true "ID de la mascota"
// @Param mensaje formData string false "Mensaje para el responsable"
// @Success 201 {object} outcomeResponse
// @Success 200 {object} outcomeResponse "ya existía una solicitud pendiente"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "no puedes solicitar tu propia mascota"
// @Failure 404 {string} string "mascota no encontrada o no disponible"
// @Router /solicitudes/rapida/{petID}/ [post]
func quickCreateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := svc.Create(r.Context(), claims.UserID, chi.URLParam(r, "petID"), r.FormValue("mensaje"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if res.AlreadyPending {
			writeJSON(w, http.StatusOK, outcomeResponse{
				Request: toRequestResponse(res.Request),
				Message: "Ya tienes una solicitud pendiente para esta mascota.",
			})
			return
		}
		writeJSON(w, http.StatusCreated, outcomeResponse{
			Request: toRequestResponse(res.Request),
			Changed: true,
			Message: "¡Solicitud enviada con éxito!",
		})
	}
}

// @Summary Mis solicitudes de adopción
// @Tags adoptions
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Success 200 {array} requestResponse
// @Failure 401 {string} string "unauthorized"
// @Router /solicitudes/ [get]
func listOwnHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		items, err := svc.ListOwn(r.Context(), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRequestResponses(items))
	}
}

func listReceivedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		items, err := svc.ListReceived(r.Context(), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRequestResponses(items))
	}
}

// @Summary Detalle de mi solicitud
// @Description Solo el solicitante la ve; para cualquier otro usuario responde 404.
// @Tags adoptions
// @Produce json
// @Param requestID path string true "ID de la solicitud"
// @Success 200 {object} requestResponse
// @Failure 404 {string} string "not found"
// @Router /solicitudes/{requestID}/ [get]
func detailHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		req, err := svc.GetDetail(r.Context(), claims.UserID, chi.URLParam(r, "requestID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRequestResponse(req))
	}
}

func responderViewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		req, p, err := svc.GetForResponder(r.Context(), claims.UserID, chi.URLParam(r, "requestID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, responderView{
			Request: toRequestResponse(req),
			Pet:     petSummary{ID: p.ID, Name: p.Name, Status: p.Status},
		})
	}
}

// @Summary Responder solicitud
// @Description El responsable aprueba o rechaza. Aprobar marca la mascota como adoptada en la misma transacción. Un estado distinto de aprobada/rechazada no cambia nada (changed=false).
// @Tags adoptions
// @Accept x-www-form-urlencoded
// @Produce json
// @Param requestID path string true "ID de la solicitud"
// @Param estado formData string true "aprobada | rechazada"
// @Param respuesta formData string false "Respuesta para el solicitante"
// @Success 200 {object} outcomeResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /solicitudes/{requestID}/responder/ [post]
func respondHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := svc.Respond(r.Context(), claims.UserID, chi.URLParam(r, "requestID"), r.FormValue("estado"), r.FormValue("respuesta"))
		switch {
		case err == nil:
		case errors.Is(err, ErrAlreadyResolved):
			writeJSON(w, http.StatusOK, outcomeResponse{
				Request: toRequestResponse(res.Request),
				Message: "La solicitud ya fue respondida.",
			})
			return
		case errors.Is(err, ErrPetUnavailable):
			writeJSON(w, http.StatusConflict, outcomeResponse{
				Request: toRequestResponse(res.Request),
				Message: "La mascota ya no está disponible.",
			})
			return
		default:
			writeServiceError(w, err)
			return
		}

		msg := "Sin cambios: estado debe ser aprobada o rechazada."
		if res.Changed {
			msg = "Solicitud " + string(res.Request.Status) + " correctamente."
		}
		writeJSON(w, http.StatusOK, outcomeResponse{
			Request: toRequestResponse(res.Request),
			Changed: res.Changed,
			Message: msg,
		})
	}
}

func cancelHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		req, err := svc.Cancel(r.Context(), claims.UserID, chi.URLParam(r, "requestID"))
		if err != nil {
			if errors.Is(err, ErrAlreadyResolved) {
				writeJSON(w, http.StatusOK, outcomeResponse{Request: toRequestResponse(req), Message: "La solicitud ya no estaba pendiente."})
				return
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, outcomeResponse{Request: toRequestResponse(req), Changed: true, Message: "Solicitud cancelada."})
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toRequestResponses(items []Request) []requestResponse {
	out := make([]requestResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toRequestResponse(it))
	}
	return out
}

func toRequestResponse(r Request) requestResponse {
	return requestResponse{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		PetID:       r.PetID,
		Message:     r.Message,
		Status:      r.Status,
		Response:    r.Response,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		ResolvedAt:  r.ResolvedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
