package publications

import (
	"net/mail"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"pet-adoption-portal/internal/catalog"
)

// ValidationError junta los mensajes por campo (nombres del formulario).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) empty() bool { return len(e.Fields) == 0 }

var phonePattern = regexp.MustCompile(`^[0-9+\-\s()]{7,20}$`)

// SubmitInput son los campos crudos del formulario de publicación.
type SubmitInput struct {
	Name        string
	Species     string
	Breed       string
	Age         string // meses, entero >= 0
	Sex         string
	Description string
	Location    string
	Region      string
	City        string

	PhotoKey         string
	PhotoContentType string
	// PhotoNotImage marca un archivo recibido que no es imagen (no se guardó).
	PhotoNotImage bool

	ContactName    string
	ContactEmail   string
	ContactAddress string
	ContactPhone   string

	Consent bool
}

func validate(in SubmitInput, cat *catalog.Catalog) (int, *ValidationError) {
	verr := &ValidationError{}

	if in.PhotoNotImage {
		verr.add("foto", "La foto debe ser una imagen.")
	}

	required := []struct {
		field, value, label string
	}{
		{"nombre", in.Name, "Nombre"},
		{"tipo", in.Species, "Tipo"},
		{"raza", in.Breed, "Raza"},
		{"edad", in.Age, "Edad"},
		{"sexo", in.Sex, "Sexo"},
		{"descripcion", in.Description, "Descripción"},
		{"ubicacion", in.Location, "Ubicación"},
		{"foto", in.PhotoKey, "Foto"},
		{"contacto_nombre", in.ContactName, "Nombre de contacto"},
		{"contacto_email", in.ContactEmail, "Correo de contacto"},
		{"contacto_direccion", in.ContactAddress, "Dirección"},
		{"contacto_telefono", in.ContactPhone, "Teléfono"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			verr.add(r.field, "Falta rellenar el campo: "+r.label+".")
		}
	}

	if s := strings.TrimSpace(in.Species); s != "" && !cat.HasSpecies(s) {
		verr.add("tipo", "Tipo de mascota no válido.")
	}
	if s := strings.TrimSpace(in.Sex); s != "" && !cat.HasSex(s) {
		verr.add("sexo", "Sexo no válido.")
	}

	age := 0
	if raw := strings.TrimSpace(in.Age); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			verr.add("edad", "La edad debe ser un número entero de meses (0 o más).")
		}
		age = n
	}

	if ct := strings.TrimSpace(in.PhotoContentType); in.PhotoKey != "" && !strings.HasPrefix(ct, "image/") {
		verr.add("foto", "La foto debe ser una imagen.")
	}

	if e := strings.TrimSpace(in.ContactEmail); e != "" {
		if addr, err := mail.ParseAddress(e); err != nil || addr.Address != e {
			verr.add("contacto_email", "Correo de contacto no válido.")
		}
	}
	if p := strings.TrimSpace(in.ContactPhone); p != "" && !phonePattern.MatchString(p) {
		verr.add("contacto_telefono", "Teléfono no válido (7 a 20 caracteres: dígitos, +, -, espacios, paréntesis).")
	}

	if !in.Consent {
		verr.add("acepta_declaracion", "Debes aceptar la declaración.")
	}

	if verr.empty() {
		return age, nil
	}
	return 0, verr
}
