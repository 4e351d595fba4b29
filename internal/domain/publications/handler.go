package publications

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-adoption-portal/internal/catalog"
	"pet-adoption-portal/internal/middleware"
	"pet-adoption-portal/internal/platform/blob"
	"pet-adoption-portal/internal/platform/logger"
	"pet-adoption-portal/internal/ports/capabilities"
)

const defaultMaxUpload = 8 << 20

type HandlerOptions struct {
	Photos         blob.Store
	Capabilities   capabilities.CapabilitiesResolver
	MaxUploadBytes int64
	Logger         logger.Logger
}

func RegisterRoutes(r chi.Router, svc *Service, opts HandlerOptions) {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	r.Route("/publicar", func(pr chi.Router) {
		pr.Get("/", formHandler(svc))
		pr.Post("/", submitHandler(svc, opts))
		pr.Get("/mis-publicaciones/", listOwnHandler(svc))
		pr.Post("/{requestID}/cancelar/", cancelHandler(svc))
	})

	r.Group(func(mr chi.Router) {
		mr.Use(middleware.RequireCapability(opts.Capabilities, capabilities.CapabilityModerate))
		mr.Route("/moderacion/publicaciones", func(mod chi.Router) {
			mod.Get("/", listByStatusHandler(svc))
			mod.Post("/aprobar/", approveManyHandler(svc))
			mod.Post("/rechazar/", rejectManyHandler(svc))
			mod.Post("/{requestID}/aprobar/", approveHandler(svc))
			mod.Post("/{requestID}/rechazar/", rejectHandler(svc))
		})
	})
}

type publishResponse struct {
	ID              string     `json:"id"`
	SubmitterID     string     `json:"submitter_id"`
	Name            string     `json:"name"`
	Species         string     `json:"species"`
	Breed           string     `json:"breed"`
	AgeMonths       int        `json:"age_months"`
	Sex             string     `json:"sex"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	Region          string     `json:"region,omitempty"`
	City            string     `json:"city,omitempty"`
	PhotoURL        string     `json:"photo_url,omitempty"`
	ContactName     string     `json:"contact_name"`
	ContactEmail    string     `json:"contact_email"`
	ContactAddress  string     `json:"contact_address"`
	ContactPhone    string     `json:"contact_phone"`
	Status          Status     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ApprovalMessage string     `json:"approval_message,omitempty"`
	PetID           string     `json:"pet_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

type formResponse struct {
	Mode    string           `json:"mode"`
	Fields  []string         `json:"fields"`
	Catalog *catalog.Catalog `json:"catalog"`
}

type validationResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

type messageResponse struct {
	Request *publishResponse `json:"request,omitempty"`
	Result  *BulkResult      `json:"result,omitempty"`
	Message string           `json:"message"`
}

var formFields = []string{
	"nombre", "tipo", "sexo", "raza", "edad", "ubicacion", "region", "ciudad", "descripcion", "foto",
	"contacto_nombre", "contacto_email", "contacto_direccion", "contacto_telefono", "acepta_declaracion",
}

// formHandler: sin sesión redirige al login con retorno al formulario.
func formHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); !ok {
			next := r.URL.RequestURI()
			http.Redirect(w, r, "/accounts/login/?next="+url.QueryEscape(next), http.StatusFound)
			return
		}
		mode := r.URL.Query().Get("modo")
		if mode == "" {
			mode = "form"
		}
		writeJSON(w, http.StatusOK, formResponse{Mode: mode, Fields: formFields, Catalog: svc.Catalog()})
	}
}

// @Summary Enviar solicitud de publicación
// @Description Multipart con los datos de la mascota, la foto (campo foto) y el contacto. Queda pendiente hasta que moderación la apruebe.
// @Tags publications
// @Accept multipart/form-data
// @Produce json
// @Param foto formData file true "Foto de la mascota"
// @Success 201 {object} publishResponse
// @Failure 400 {object} validationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /publicar/ [post]
func submitHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, opts.MaxUploadBytes)
		if err := r.ParseMultipartForm(opts.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			writeJSON(w, http.StatusBadRequest, validationResponse{
				Message: "No pudimos leer el formulario.",
				Fields:  map[string]string{"foto": "El archivo supera el tamaño permitido."},
			})
			return
		}

		in := SubmitInput{
			Name:           r.FormValue("nombre"),
			Species:        r.FormValue("tipo"),
			Breed:          r.FormValue("raza"),
			Age:            r.FormValue("edad"),
			Sex:            r.FormValue("sexo"),
			Description:    r.FormValue("descripcion"),
			Location:       r.FormValue("ubicacion"),
			Region:         r.FormValue("region"),
			City:           r.FormValue("ciudad"),
			ContactName:    r.FormValue("contacto_nombre"),
			ContactEmail:   r.FormValue("contacto_email"),
			ContactAddress: r.FormValue("contacto_direccion"),
			ContactPhone:   r.FormValue("contacto_telefono"),
			Consent:        isChecked(r.FormValue("acepta_declaracion")),
		}

		uploaded := ""
		if opts.Photos != nil {
			if file, header, err := r.FormFile("foto"); err == nil {
				defer file.Close()
				ct, err := sniffImage(file, header.Header.Get("Content-Type"))
				if err != nil {
					http.Error(w, "invalid photo", http.StatusBadRequest)
					return
				}
				in.PhotoContentType = ct
				if strings.HasPrefix(ct, "image/") {
					key := blob.NewPhotoKey(header.Filename)
					if _, err := opts.Photos.Put(r.Context(), key, file, blob.PutOptions{ContentType: ct}); err != nil {
						opts.Logger.Error("photo upload failed", map[string]any{"err": err})
						http.Error(w, "internal error", http.StatusInternalServerError)
						return
					}
					in.PhotoKey = key
					uploaded = key
				} else {
					in.PhotoNotImage = true
				}
			}
		}

		req, err := svc.Submit(r.Context(), claims.UserID, in)
		if err != nil {
			// La solicitud no se guardó: la foto queda huérfana.
			if uploaded != "" {
				if _, derr := opts.Photos.Delete(r.Context(), uploaded); derr != nil {
					opts.Logger.Warn("orphan photo not deleted", map[string]any{"key": uploaded, "err": derr})
				}
			}
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPublishResponse(req))
	}
}

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
		writeJSON(w, http.StatusOK, toPublishResponses(items))
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
		writeOutcome(w, req, err, "Solicitud cancelada.")
	}
}

func listByStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := StatusPending
		if raw := strings.TrimSpace(r.URL.Query().Get("estado")); raw != "" {
			if raw == "todas" || raw == "all" {
				status = ""
			} else if s, ok := ParseStatus(raw); ok {
				status = s
			} else {
				http.Error(w, "estado inválido", http.StatusBadRequest)
				return
			}
		}

		items, err := svc.ListByStatus(r.Context(), status)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPublishResponses(items))
	}
}

// @Summary Aprobar publicación
// @Description Crea la mascota disponible a nombre de quien envió la solicitud. Si ya estaba procesada responde 200 con un mensaje informativo.
// @Tags moderation
// @Produce json
// @Param requestID path string true "ID de la solicitud"
// @Success 200 {object} messageResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /moderacion/publicaciones/{requestID}/aprobar/ [post]
func approveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		req, err := svc.Approve(r.Context(), claims.UserID, chi.URLParam(r, "requestID"))
		writeOutcome(w, req, err, "Solicitud aceptada y convertida en mascota.")
	}
}

func rejectHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		req, err := svc.Reject(r.Context(), claims.UserID, chi.URLParam(r, "requestID"), r.FormValue("motivo"))
		writeOutcome(w, req, err, "Solicitud rechazada.")
	}
}

// @Summary Aprobar publicaciones en lote
// @Tags moderation
// @Accept x-www-form-urlencoded
// @Produce json
// @Param ids formData []string true "IDs de solicitudes (repetido o separado por comas)"
// @Success 200 {object} messageResponse
// @Router /moderacion/publicaciones/aprobar/ [post]
func approveManyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		res, err := svc.ApproveMany(r.Context(), claims.UserID, formIDs(r))
		writeBulk(w, res, err, "aceptada(s)")
	}
}

// @Summary Rechazar publicaciones en lote
// @Description Un único motivo para todas. Sin motivo no se rechaza ninguna.
// @Tags moderation
// @Accept x-www-form-urlencoded
// @Produce json
// @Param ids formData []string true "IDs de solicitudes"
// @Param motivo formData string true "Motivo del rechazo"
// @Success 200 {object} messageResponse
// @Failure 400 {object} validationResponse
// @Router /moderacion/publicaciones/rechazar/ [post]
func rejectManyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		res, err := svc.RejectMany(r.Context(), claims.UserID, formIDs(r), r.FormValue("motivo"))
		writeBulk(w, res, err, "rechazada(s)")
	}
}

func writeOutcome(w http.ResponseWriter, req Request, err error, okMsg string) {
	if err != nil {
		if errors.Is(err, ErrNotPending) {
			resp := toPublishResponse(req)
			writeJSON(w, http.StatusOK, messageResponse{Request: &resp, Message: "La solicitud ya estaba procesada."})
			return
		}
		writeServiceError(w, err)
		return
	}
	resp := toPublishResponse(req)
	writeJSON(w, http.StatusOK, messageResponse{Request: &resp, Message: okMsg})
}

func writeBulk(w http.ResponseWriter, res BulkResult, err error, verb string) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	msg := "No había solicitudes pendientes para procesar."
	if res.Processed > 0 {
		msg = strconv.Itoa(res.Processed) + " solicitud(es) " + verb + "."
	}
	if res.AlreadyProcessed > 0 {
		msg += " " + strconv.Itoa(res.AlreadyProcessed) + " ya estaban procesadas."
	}
	writeJSON(w, http.StatusOK, messageResponse{Result: &res, Message: msg})
}

func writeServiceError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, validationResponse{Message: "Revisa los campos marcados.", Fields: verr.Fields})
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// formIDs acepta ids repetidos (ids=a&ids=b) o separados por comas.
func formIDs(r *http.Request) []string {
	_ = r.ParseForm()
	var out []string
	for _, v := range r.Form["ids"] {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "si", "sí", "yes":
		return true
	}
	return false
}

func toPublishResponses(items []Request) []publishResponse {
	out := make([]publishResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toPublishResponse(it))
	}
	return out
}

func toPublishResponse(req Request) publishResponse {
	resp := publishResponse{
		ID:              req.ID,
		SubmitterID:     req.SubmitterID,
		Name:            req.Pet.Name,
		Species:         req.Pet.Species,
		Breed:           req.Pet.Breed,
		AgeMonths:       req.Pet.AgeMonths,
		Sex:             req.Pet.Sex,
		Description:     req.Pet.Description,
		Location:        req.Pet.Location,
		Region:          req.Pet.Region,
		City:            req.Pet.City,
		ContactName:     req.Contact.Name,
		ContactEmail:    req.Contact.Email,
		ContactAddress:  req.Contact.Address,
		ContactPhone:    req.Contact.Phone,
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
		ApprovalMessage: req.ApprovalMessage,
		PetID:           req.PetID,
		CreatedAt:       req.CreatedAt,
		ResolvedAt:      req.ResolvedAt,
	}
	if req.Pet.PhotoKey != "" {
		resp.PhotoURL = "/media/" + req.Pet.PhotoKey
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sniffImage decide el tipo por los primeros 512 bytes y deja el archivo al inicio.
// El Content-Type del cliente solo cuenta si el contenido no se reconoce.
func sniffImage(file multipart.File, declared string) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	ct := http.DetectContentType(head[:n])
	if ct == "application/octet-stream" {
		if d := strings.TrimSpace(declared); strings.HasPrefix(d, "image/") {
			return d, nil
		}
	}
	return ct, nil
}
