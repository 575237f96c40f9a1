// Package docs registra el spec OpenAPI para http-swagger.
// Regenerar con: swag init -g cmd/api/main.go -o internal/docs
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
    "securityDefinitions": {
        "TokenAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Bearer <jwt> o Token <jwt>"
        }
    },
    "paths": {
        "/register": {
            "post": {
                "tags": ["users"],
                "summary": "Registrar usuario",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/users.registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/users.registerResponse"}},
                    "400": {"description": "errores por campo", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["users"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/users.loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/users.loginResponse"}},
                    "400": {"description": "invalid credentials", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/accounts": {
            "get": {
                "security": [{"TokenAuth": []}],
                "tags": ["users"],
                "summary": "Listar cuentas",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/accounts/{userID}": {
            "get": {
                "security": [{"TokenAuth": []}],
                "tags": ["users"],
                "summary": "Detalle de cuenta",
                "parameters": [{"type": "string", "name": "userID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "patch": {
                "security": [{"TokenAuth": []}],
                "tags": ["users"],
                "summary": "Cambiar rol o flags (solo admin)",
                "parameters": [{"type": "string", "name": "userID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        },
        "/user-profiles": {
            "get": {
                "security": [{"TokenAuth": []}],
                "tags": ["profiles"],
                "summary": "Listar perfiles de usuario (solo admin)",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}
            }
        },
        "/user-profiles/{profileID}": {
            "get": {
                "security": [{"TokenAuth": []}],
                "tags": ["profiles"],
                "summary": "Detalle de perfil (solo admin)",
                "parameters": [{"type": "string", "name": "profileID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            },
            "patch": {
                "security": [{"TokenAuth": []}],
                "tags": ["profiles"],
                "summary": "Actualizar perfil ajeno (merge, solo admin)",
                "parameters": [{"type": "string", "name": "profileID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "errores por campo"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/user-profile": {
            "get": {
                "security": [{"TokenAuth": []}],
                "tags": ["profiles"],
                "summary": "Perfil del usuario (se crea si no existe)",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            },
            "put": {
                "security": [{"TokenAuth": []}],
                "tags": ["profiles"],
                "summary": "Actualizar perfil (merge)",
                "responses": {"200": {"description": "OK"}, "400": {"description": "errores por campo"}}
            },
            "patch": {
                "security": [{"TokenAuth": []}],
                "tags": ["profiles"],
                "summary": "Actualizar perfil (merge)",
                "responses": {"200": {"description": "OK"}, "400": {"description": "errores por campo"}}
            }
        },
        "/profile": {
            "get": {
                "security": [{"TokenAuth": []}],
                "tags": ["profiles"],
                "summary": "Perfil foster (se crea si no existe)",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            },
            "put": {
                "security": [{"TokenAuth": []}],
                "tags": ["profiles"],
                "summary": "Reemplazar perfil foster y sus mascotas",
                "responses": {"200": {"description": "OK"}, "400": {"description": "errores por campo"}}
            },
            "patch": {
                "security": [{"TokenAuth": []}],
                "tags": ["profiles"],
                "summary": "Actualizar perfil foster",
                "responses": {"200": {"description": "OK"}, "400": {"description": "errores por campo"}}
            }
        },
        "/pets": {
            "get": {
                "tags": ["pets"],
                "summary": "Listar mascotas",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "type", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"TokenAuth": []}],
                "tags": ["pets"],
                "summary": "Crear mascota",
                "consumes": ["application/json", "multipart/form-data"],
                "responses": {"201": {"description": "Created"}, "400": {"description": "errores por campo"}}
            }
        },
        "/pets/{petID}": {
            "get": {
                "tags": ["pets"],
                "summary": "Detalle de mascota",
                "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"TokenAuth": []}],
                "tags": ["pets"],
                "summary": "Reemplazar mascota",
                "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "errores por campo"}}
            },
            "patch": {
                "security": [{"TokenAuth": []}],
                "tags": ["pets"],
                "summary": "Actualizar mascota",
                "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "errores por campo"}}
            },
            "delete": {
                "security": [{"TokenAuth": []}],
                "tags": ["pets"],
                "summary": "Borrar mascota y sus solicitudes",
                "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/applications": {
            "get": {
                "tags": ["adoptions"],
                "summary": "Listar solicitudes de adopción",
                "parameters": [
                    {"type": "string", "name": "requester_name", "in": "query"},
                    {"type": "string", "name": "email", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["adoptions"],
                "summary": "Crear solicitud de adopción",
                "responses": {"201": {"description": "Created"}, "400": {"description": "errores por campo"}}
            },
            "delete": {
                "tags": ["adoptions"],
                "summary": "Borrado masivo de solicitudes",
                "parameters": [
                    {"type": "string", "name": "requester_name", "in": "query"},
                    {"type": "string", "name": "email", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/applications/{requestID}": {
            "get": {
                "tags": ["adoptions"],
                "summary": "Detalle de solicitud",
                "parameters": [{"type": "string", "name": "requestID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "tags": ["adoptions"],
                "summary": "Reemplazar solicitud",
                "parameters": [{"type": "string", "name": "requestID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "errores por campo"}}
            },
            "patch": {
                "tags": ["adoptions"],
                "summary": "Actualizar solicitud",
                "parameters": [{"type": "string", "name": "requestID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "errores por campo"}}
            },
            "delete": {
                "tags": ["adoptions"],
                "summary": "Borrar solicitud",
                "parameters": [{"type": "string", "name": "requestID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        }
    },
    "definitions": {
        "httpx.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "users.registerRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "first_name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "adopter", "poster", "foster"]}
            }
        },
        "users.loginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "users.registerResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "first_name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "users.loginResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "first_name": {"type": "string"},
                "role": {"type": "string"},
                "token": {"type": "string"},
                "expires_at": {"type": "string"}
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
	Title:            "Pet Adoption API",
	Description:      "Catálogo de mascotas, solicitudes de adopción, cuentas y perfiles.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
