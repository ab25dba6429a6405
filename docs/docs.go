// Package docs registra la especificación OpenAPI de la API en swag.
// swagger.json se regenera con: swag init -g cmd/api/main.go -o docs --outputTypes json
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var doc string

// FilePath ruta de swagger.json relativa a la raíz del repositorio (middleware de Swagger UI).
const FilePath = "./docs/swagger.json"

type openAPIDoc struct{}

func (openAPIDoc) ReadDoc() string { return doc }

func init() {
	swag.Register(swag.Name, openAPIDoc{})
}
