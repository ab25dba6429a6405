package http

import (
	"embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/xeipuuv/gojsonschema"

	"github.com/jhoicas/nordiqua-api/internal/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// rootField contexto que gojsonschema usa para el objeto raíz.
const rootField = "(root)"

// IDs de los esquemas de petición (nombre del archivo sin extensión).
const (
	SchemaLogin         = "login"
	SchemaRegister      = "register"
	SchemaProfile       = "profile"
	SchemaClient        = "client"
	SchemaInvoice       = "invoice"
	SchemaProductCreate = "product-create"
	SchemaProductUpdate = "product-update"
	SchemaRole          = "role"
)

// Validator valida cuerpos JSON contra los esquemas embebidos y los decodifica.
// La forma del cuerpo (tipos, requeridos, longitudes, enums) la cubre el esquema;
// las reglas que JSON Schema no expresa quedan en los casos de uso.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compila todos los esquemas de schemas/.
func NewValidator() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("validación: leer esquemas: %w", err)
	}
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(entries))}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("validación: leer %s: %w", e.Name(), err)
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("validación: compilar %s: %w", id, err)
		}
		v.schemas[id] = schema
	}
	return v, nil
}

// MustValidator como NewValidator pero entra en pánico si un esquema no compila.
func MustValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate comprueba body contra schemaID. Devuelve *domain.ValidationError con un campo por violación.
func (v *Validator) Validate(schemaID string, body []byte) error {
	schema, ok := v.schemas[schemaID]
	if !ok {
		return fmt.Errorf("validación: esquema desconocido %q", schemaID)
	}
	if len(body) == 0 {
		return domain.NewValidationError(domain.FieldError{Field: "body", Message: "cuerpo vacío"})
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return domain.NewValidationError(domain.FieldError{Field: "body", Message: "JSON mal formado"})
	}
	if result.Valid() {
		return nil
	}
	verr := domain.NewValidationError()
	for _, re := range result.Errors() {
		verr.Add(fieldName(re), re.Description())
	}
	return verr
}

// Bind valida el cuerpo de la petición contra schemaID y lo decodifica en out.
func (v *Validator) Bind(c *fiber.Ctx, schemaID string, out any) error {
	body := c.Body()
	if err := v.Validate(schemaID, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.NewValidationError(domain.FieldError{Field: "body", Message: "cuerpo inválido"})
	}
	return nil
}

// fieldName convierte la ruta de gojsonschema ("items.0.price", "(root)") al estilo de la API ("items[0].price").
func fieldName(re gojsonschema.ResultError) string {
	field := re.Field()
	if re.Type() == "required" {
		if prop, ok := re.Details()["property"].(string); ok {
			if field == rootField || field == "" {
				field = prop
			} else {
				field = field + "." + prop
			}
		}
	}
	if field == rootField || field == "" {
		return "body"
	}
	parts := strings.Split(field, ".")
	var b strings.Builder
	for i, p := range parts {
		if _, err := strconv.Atoi(p); err == nil && i > 0 {
			b.WriteString("[" + p + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}
