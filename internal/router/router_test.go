package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"pet-adoption-portal/internal/config"
	"pet-adoption-portal/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Auth.DevHeaders = true
	cfg.Auth.ModeratorIDs = []string{"mod-1"}
	cfg.Auth.AttemptsPerMinute = 0

	ts := httptest.NewServer(router.NewRouter(router.Options{Config: cfg}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_AdoptionFlow(t *testing.T) {
	ts := newTestServer(t)

	ownerID := "owner-1"
	adopterID := "adopter-1"

	// 1) Moderación da de alta una mascota a nombre del responsable
	petID := createPet(t, ts.URL, "mod-1", map[string]any{
		"owner_user_id": ownerID,
		"name":          "Milo",
		"species":       "perro",
		"breed":         "Criollo",
		"age_months":    10,
		"sex":           "macho",
		"description":   "Juguetón",
		"location":      "Chapinero, Bogotá",
		"city":          "Bogotá",
	})

	// 2) Aparece en el listado público filtrando por región sin tildes
	{
		st, body := doReq(t, ts.URL, "GET", "/?region=cundinamarca&tipo=perro&edad=1", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing, got %d body=%s", st, string(body))
		}
		if ids := listedIDs(t, body); len(ids) != 1 || ids[0] != petID {
			t.Fatalf("expected only %s listed, got %v", petID, ids)
		}
	}

	// 3) El responsable no puede pedir su propia mascota
	{
		st, _ := doForm(t, ts.URL, "/solicitudes/rapida/"+petID+"/", ownerID, url.Values{"mensaje": {"yo"}})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 on own pet, got %d", st)
		}
	}

	// 4) Solicitud del adoptante; la segunda es informativa
	var requestID string
	{
		st, body := doForm(t, ts.URL, "/solicitudes/rapida/"+petID+"/", adopterID, url.Values{"mensaje": {"Tengo patio"}})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 creating request, got %d body=%s", st, string(body))
		}
		requestID = decodeOutcomeID(t, body)

		st, body = doForm(t, ts.URL, "/solicitudes/rapida/"+petID+"/", adopterID, url.Values{"mensaje": {"otra vez"}})
		if st != http.StatusOK {
			t.Fatalf("expected 200 already pending, got %d body=%s", st, string(body))
		}
		if got := decodeOutcomeID(t, body); got != requestID {
			t.Fatalf("expected existing request %s, got %s", requestID, got)
		}
	}

	// 5) Solo el solicitante ve el detalle
	{
		st, _ := doReq(t, ts.URL, "GET", "/solicitudes/"+requestID+"/", "stranger", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for stranger, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/solicitudes/"+requestID+"/", adopterID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 for requester, got %d", st)
		}
	}

	// 6) Solo el responsable responde
	{
		st, _ := doForm(t, ts.URL, "/solicitudes/"+requestID+"/responder/", adopterID, url.Values{"estado": {"aprobada"}})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for non-owner respond, got %d", st)
		}
		st, body := doForm(t, ts.URL, "/solicitudes/"+requestID+"/responder/", ownerID, url.Values{"estado": {"aprobada"}, "respuesta": {"¡Es tuyo!"}})
		if st != http.StatusOK {
			t.Fatalf("expected 200 approving, got %d body=%s", st, string(body))
		}
	}

	// 7) La mascota adoptada ya no sale en el listado
	{
		st, body := doReq(t, ts.URL, "GET", "/", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing, got %d", st)
		}
		if ids := listedIDs(t, body); len(ids) != 0 {
			t.Fatalf("adopted pet must not be listed, got %v", ids)
		}
	}

	// 8) Métricas del flujo
	{
		st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
		if st != http.StatusOK || !strings.Contains(string(body), `portal_workflow_outcomes_total{outcome="created",workflow="adoption"} 1`) {
			t.Fatalf("expected adoption metric, got %d body=%s", st, string(body))
		}
	}
}

func TestHTTP_EndToEnd_PublishFlow(t *testing.T) {
	ts := newTestServer(t)
	userID := "user-2"

	// Sin sesión el formulario redirige al login
	{
		client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
		res, err := client.Get(ts.URL + "/publicar/?modo=form")
		if err != nil {
			t.Fatalf("get form: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusFound || !strings.HasPrefix(res.Header.Get("Location"), "/accounts/login/?next=") {
			t.Fatalf("expected redirect to login, got %d %q", res.StatusCode, res.Header.Get("Location"))
		}
	}

	// Envío con foto
	var requestID, photoURL string
	{
		st, body := doMultipart(t, ts.URL, "/publicar/", userID, map[string]string{
			"nombre":             "Luna",
			"tipo":               "gato",
			"raza":               "Criolla",
			"edad":               "5",
			"sexo":               "hembra",
			"descripcion":        "Muy tranquila",
			"ubicacion":          "Envigado",
			"region":             "antioquia",
			"contacto_nombre":    "Ana",
			"contacto_email":     "ana@example.com",
			"contacto_direccion": "Calle 10",
			"contacto_telefono":  "300 123 4567",
			"acepta_declaracion": "on",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 submit, got %d body=%s", st, string(body))
		}
		var out struct {
			ID       string `json:"id"`
			PhotoURL string `json:"photo_url"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decode submit: %v", err)
		}
		requestID, photoURL = out.ID, out.PhotoURL
	}

	// La foto se sirve desde /media/
	{
		st, body := doReq(t, ts.URL, "GET", photoURL, "", nil)
		if st != http.StatusOK || !bytes.Equal(body, jpegPhoto) {
			t.Fatalf("expected stored photo, got %d %q", st, string(body))
		}
	}

	// Un usuario cualquiera no modera
	{
		st, _ := doForm(t, ts.URL, "/moderacion/publicaciones/"+requestID+"/aprobar/", userID, url.Values{})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for non-moderator, got %d", st)
		}
	}

	// Aprobación por moderación: la mascota queda publicada
	{
		st, body := doForm(t, ts.URL, "/moderacion/publicaciones/"+requestID+"/aprobar/", "mod-1", url.Values{})
		if st != http.StatusOK {
			t.Fatalf("expected 200 approve, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "GET", "/?region=Antioquia", "", nil)
		if st != http.StatusOK || len(listedIDs(t, body)) != 1 {
			t.Fatalf("expected approved pet listed, got %d body=%s", st, string(body))
		}
	}

	// Mis publicaciones muestra el mensaje de aprobación
	{
		st, body := doReq(t, ts.URL, "GET", "/publicar/mis-publicaciones/", userID, nil)
		if st != http.StatusOK || !strings.Contains(string(body), "approved") {
			t.Fatalf("expected approved publication, got %d body=%s", st, string(body))
		}
	}
}

func TestHTTP_AccountsSessionCookie(t *testing.T) {
	ts := newTestServer(t)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar}

	post := func(path string, form url.Values) *http.Response {
		res, err := client.PostForm(ts.URL+path, form)
		if err != nil {
			t.Fatalf("post %s: %v", path, err)
		}
		res.Body.Close()
		return res
	}

	res := post("/accounts/register/", url.Values{
		"username":  {"ana"},
		"email":     {"ana@example.com"},
		"password1": {"clave-segura"},
		"password2": {"clave-segura"},
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected register to land on login form, got %d", res.StatusCode)
	}

	res = post("/accounts/login/", url.Values{
		"usuario_o_email": {"ANA@example.com"},
		"password":        {"clave-segura"},
		"next":            {"/accounts/profile/"},
	})
	if res.StatusCode != http.StatusOK || res.Request.URL.Path != "/accounts/profile/" {
		t.Fatalf("expected redirect to profile, got %d %s", res.StatusCode, res.Request.URL.Path)
	}

	// Con la cookie de sesión ya hay usuario en /solicitudes/
	r, err := client.Get(ts.URL + "/solicitudes/")
	if err != nil {
		t.Fatalf("get solicitudes: %v", err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with session cookie, got %d", r.StatusCode)
	}
}

func TestHTTP_Health(t *testing.T) {
	ts := newTestServer(t)
	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected ok, got %d %q", st, string(body))
	}
}

// -------------------------
// Helpers
// -------------------------

func createPet(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/moderacion/mascotas/", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode pet: %v", err)
	}
	return out.ID
}

func listedIDs(t *testing.T, body []byte) []string {
	t.Helper()
	var out struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	ids := make([]string, 0, len(out.Items))
	for _, it := range out.Items {
		ids = append(ids, it.ID)
	}
	return ids
}

// jpegPhoto empieza con la firma JPEG para que el contenido se reconozca como imagen.
var jpegPhoto = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00fake-jpeg")

func decodeOutcomeID(t *testing.T, body []byte) string {
	t.Helper()
	var out struct {
		Request struct {
			ID string `json:"id"`
		} `json:"request"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	return out.Request.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return send(t, req, debugUserID)
}

func doForm(t *testing.T, baseURL, path, debugUserID string, form url.Values) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return send(t, req, debugUserID)
}

func doMultipart(t *testing.T, baseURL, path, debugUserID string, fields map[string]string) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="foto"; filename="luna.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(jpegPhoto)
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return send(t, req, debugUserID)
}

func send(t *testing.T, req *http.Request, debugUserID string) (int, []byte) {
	t.Helper()
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
