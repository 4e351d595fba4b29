// Package docs registra el documento OpenAPI servido en /swagger/.
// Las rutas siguen las anotaciones @Router de los handlers (ver docs_test.go).
// Regenerar con: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "pets"
                ],
                "summary": "Listado público de mascotas",
                "description": "Mascotas disponibles, más recientes primero. Parámetros vacíos o inválidos no filtran.",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Texto libre (alias: query, s) sobre nombre, raza, descripción y ubicación",
                        "name": "q",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Especie (clave del catálogo)",
                        "name": "tipo",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "macho | hembra",
                        "name": "sexo",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Índice del rango de edad del catálogo",
                        "name": "edad",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Región (clave o nombre, sin importar tildes)",
                        "name": "region",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Ciudad; si viene, manda sobre región",
                        "name": "ciudad",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Substring de ubicación libre",
                        "name": "ubic",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/accounts/login/": {
            "post": {
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "tags": [
                    "accounts"
                ],
                "summary": "Iniciar sesión",
                "description": "Acepta usuario o correo. Fija la cookie de sesión y redirige a next (o a /).",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Usuario o correo",
                        "name": "usuario_o_email",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Contraseña",
                        "name": "password",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Ruta de retorno",
                        "name": "next",
                        "in": "formData"
                    }
                ],
                "responses": {
                    "302": {
                        "description": "Found"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "429": {
                        "description": "Too Many Requests"
                    }
                }
            }
        },
        "/accounts/register/": {
            "post": {
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "tags": [
                    "accounts"
                ],
                "summary": "Registrar usuario",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Usuario",
                        "name": "username",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Correo",
                        "name": "email",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Contraseña (mínimo 8)",
                        "name": "password1",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Confirmación",
                        "name": "password2",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "302": {
                        "description": "Found"
                    },
                    "400": {
                        "description": "Bad Request"
                    }
                }
            }
        },
        "/mascotas/{petID}/": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "pets"
                ],
                "summary": "Detalle de mascota",
                "description": "Una mascota no disponible solo la ven su responsable y moderación.",
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID de la mascota",
                        "name": "petID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "pet not found"
                    }
                }
            }
        },
        "/moderacion/publicaciones/aprobar/": {
            "post": {
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "moderation"
                ],
                "summary": "Aprobar publicaciones en lote",
                "parameters": [
                    {
                        "type": "array",
                        "description": "IDs de solicitudes (repetido o separado por comas)",
                        "name": "ids",
                        "in": "formData",
                        "required": true,
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/moderacion/publicaciones/rechazar/": {
            "post": {
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "moderation"
                ],
                "summary": "Rechazar publicaciones en lote",
                "description": "Un único motivo para todas. Sin motivo no se rechaza ninguna.",
                "parameters": [
                    {
                        "type": "array",
                        "description": "IDs de solicitudes",
                        "name": "ids",
                        "in": "formData",
                        "required": true,
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi"
                    },
                    {
                        "type": "string",
                        "description": "Motivo del rechazo",
                        "name": "motivo",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    }
                }
            }
        },
        "/moderacion/publicaciones/{requestID}/aprobar/": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "moderation"
                ],
                "summary": "Aprobar publicación",
                "description": "Crea la mascota disponible a nombre de quien envió la solicitud. Si ya estaba procesada responde 200 con un mensaje informativo.",
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID de la solicitud",
                        "name": "requestID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "forbidden"
                    },
                    "404": {
                        "description": "not found"
                    }
                }
            }
        },
        "/publicar/": {
            "post": {
                "consumes": [
                    "multipart/form-data"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "publications"
                ],
                "summary": "Enviar solicitud de publicación",
                "description": "Multipart con los datos de la mascota, la foto (campo foto) y el contacto. Queda pendiente hasta que moderación la apruebe.",
                "parameters": [
                    {
                        "type": "file",
                        "description": "Foto de la mascota",
                        "name": "foto",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "401": {
                        "description": "unauthorized"
                    }
                }
            }
        },
        "/solicitudes/": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "adoptions"
                ],
                "summary": "Mis solicitudes de adopción",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthorized"
                    }
                }
            }
        },
        "/solicitudes/rapida/{petID}/": {
            "post": {
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "adoptions"
                ],
                "summary": "Solicitud rápida de adopción",
                "description": "Crea una solicitud pendiente sobre una mascota disponible. Si ya existe una pendiente del mismo usuario para la misma mascota responde 200 con un mensaje informativo en vez de duplicarla.",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "ID de la mascota",
                        "name": "petID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Mensaje para el responsable",
                        "name": "mensaje",
                        "in": "formData"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "ya existía una solicitud pendiente"
                    },
                    "201": {
                        "description": "Created"
                    },
                    "401": {
                        "description": "unauthorized"
                    },
                    "403": {
                        "description": "no puedes solicitar tu propia mascota"
                    },
                    "404": {
                        "description": "mascota no encontrada o no disponible"
                    }
                }
            }
        },
        "/solicitudes/{requestID}/": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "adoptions"
                ],
                "summary": "Detalle de mi solicitud",
                "description": "Solo el solicitante la ve; para cualquier otro usuario responde 404.",
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID de la solicitud",
                        "name": "requestID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "not found"
                    }
                }
            }
        },
        "/solicitudes/{requestID}/responder/": {
            "post": {
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "adoptions"
                ],
                "summary": "Responder solicitud",
                "description": "El responsable aprueba o rechaza. Aprobar marca la mascota como adoptada en la misma transacción. Un estado distinto de aprobada/rechazada no cambia nada (changed=false).",
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID de la solicitud",
                        "name": "requestID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "aprobada | rechazada",
                        "name": "estado",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Respuesta para el solicitante",
                        "name": "respuesta",
                        "in": "formData"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "forbidden"
                    },
                    "404": {
                        "description": "not found"
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Portal de adopción de mascotas",
	Description:      "Búsqueda de mascotas, solicitudes de adopción y moderación de publicaciones.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
