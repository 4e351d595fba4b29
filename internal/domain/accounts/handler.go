package accounts

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-adoption-portal/internal/middleware"
)

type HandlerOptions struct {
	CookieName   string
	CookieSecure bool
}

func RegisterRoutes(r chi.Router, svc *Service, opts HandlerOptions) {
	if opts.CookieName == "" {
		opts.CookieName = "sessionid"
	}

	r.Route("/accounts", func(ar chi.Router) {
		ar.Get("/login/", loginFormHandler())
		ar.Post("/login/", loginHandler(svc, opts))
		ar.Post("/logout/", logoutHandler(opts))
		ar.Get("/logout/", logoutHandler(opts))
		ar.Get("/register/", registerFormHandler())
		ar.Post("/register/", registerHandler(svc))
		ar.Get("/profile/", profileHandler(svc))
	})
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Staff     bool      `json:"staff"`
	CreatedAt time.Time `json:"created_at"`
}

type formResponse struct {
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
	Next   string   `json:"next,omitempty"`
}

type errorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func loginFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		writeJSON(w, http.StatusOK, formResponse{
			Title:  "Iniciar Sesión",
			Fields: []string{"usuario_o_email", "password", "next"},
			Next:   safeNext(r.URL.Query().Get("next")),
		})
	}
}

// @Summary Iniciar sesión
// @Description Acepta usuario o correo. Fija la cookie de sesión y redirige a next (o a /).
// @Tags accounts
// @Accept x-www-form-urlencoded
// @Param usuario_o_email formData string true "Usuario o correo"
// @Param password formData string true "Contraseña"
// @Param next formData string false "Ruta de retorno"
// @Success 302
// @Failure 400 {object} errorResponse
// @Failure 429 {object} errorResponse
// @Router /accounts/login/ [post]
func loginHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident := r.FormValue("usuario_o_email")
		if ident == "" {
			ident = r.FormValue("username")
		}

		sess, err := svc.Login(r.Context(), LoginInput{
			Identifier: ident,
			Password:   r.FormValue("password"),
			ClientIP:   clientIP(r),
		})
		switch {
		case err == nil:
		case errors.Is(err, ErrRateLimited):
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Message: "Demasiados intentos. Espera un momento."})
			return
		case errors.Is(err, ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Por favor, completa todos los campos."})
			return
		case errors.Is(err, ErrInvalidCredentials):
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Usuario/Correo o contraseña inválidos."})
			return
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     opts.CookieName,
			Value:    sess.Token,
			Path:     "/",
			Expires:  sess.ExpiresAt,
			HttpOnly: true,
			Secure:   opts.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})

		next := safeNext(r.FormValue("next"))
		if next == "" {
			next = "/"
		}
		http.Redirect(w, r, next, http.StatusFound)
	}
}

func logoutHandler(opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     opts.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   opts.CookieSecure,
		})
		http.Redirect(w, r, "/accounts/login/", http.StatusFound)
	}
}

func registerFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, formResponse{
			Title:  "Registrarse",
			Fields: []string{"username", "email", "password1", "password2"},
		})
	}
}

// @Summary Registrar usuario
// @Tags accounts
// @Accept x-www-form-urlencoded
// @Param username formData string true "Usuario"
// @Param email formData string true "Correo"
// @Param password1 formData string true "Contraseña (mínimo 8)"
// @Param password2 formData string true "Confirmación"
// @Success 302
// @Failure 400 {object} errorResponse
// @Router /accounts/register/ [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := svc.Register(r.Context(), RegisterInput{
			Username:  r.FormValue("username"),
			Email:     r.FormValue("email"),
			Password1: r.FormValue("password1"),
			Password2: r.FormValue("password2"),
			ClientIP:  clientIP(r),
		})

		var verr *ValidationError
		switch {
		case err == nil:
			http.Redirect(w, r, "/accounts/login/", http.StatusFound)
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Revisa los campos marcados.", Fields: verr.Fields})
		case errors.Is(err, ErrRateLimited):
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Message: "Demasiados intentos. Espera un momento."})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Error al crear la cuenta. Inténtalo de nuevo."})
		}
	}
}

func profileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Redirect(w, r, "/accounts/login/?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, userResponse{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Staff:     u.Staff,
			CreatedAt: u.CreatedAt,
		})
	}
}

// safeNext solo admite rutas locales ("/..." pero no "//host").
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
