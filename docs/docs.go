// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/health": {"get": {"tags": ["system"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}},
        "/lesson": {"get": {"tags": ["lesson"], "summary": "Lesson content", "responses": {"200": {"description": "OK"}}}},
        "/sessions": {"post": {"tags": ["sessions"], "summary": "Start a lab session", "responses": {"201": {"description": "Created"}}}},
        "/ws": {"get": {"tags": ["sessions"], "summary": "Stream session state", "parameters": [
            {"type": "string", "name": "token", "in": "query", "required": true},
            {"type": "string", "name": "interval", "in": "query"},
            {"type": "integer", "name": "interval_ms", "in": "query"}
        ], "responses": {"101": {"description": "Switching Protocols"}, "401": {"description": "Unauthorized"}}}},
        "/api/v1/ohm": {"get": {"tags": ["lab"], "summary": "Ohm's law calculator", "parameters": [
            {"type": "number", "name": "voltage", "in": "query", "required": true},
            {"type": "number", "name": "resistance", "in": "query", "required": true}
        ], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/v1/session": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "Get session state", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "End the lab session", "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/session/section": {"put": {"security": [{"BearerAuth": []}], "tags": ["lab"], "summary": "Select lesson section", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/v1/circuit": {"put": {"security": [{"BearerAuth": []}], "tags": ["lab"], "summary": "Set voltage and resistance", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/v1/circuit/chart.svg": {"get": {"security": [{"BearerAuth": []}], "tags": ["lab"], "summary": "I-U chart", "produces": ["image/svg+xml"], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/short-circuit/trigger": {"post": {"security": [{"BearerAuth": []}], "tags": ["lab"], "summary": "Trigger short circuit", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/api/v1/short-circuit/reset": {"post": {"security": [{"BearerAuth": []}], "tags": ["lab"], "summary": "Replace the fuse", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/api/v1/quiz/{id}/toggle": {"post": {"security": [{"BearerAuth": []}], "tags": ["lab"], "summary": "Show or hide a quiz answer", "parameters": [
            {"type": "string", "name": "id", "in": "path", "required": true}
        ], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/v1/narration": {"post": {"security": [{"BearerAuth": []}], "tags": ["narration"], "summary": "Narrate", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/api/v1/logs": {"get": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "List the session's activity log", "parameters": [
            {"type": "string", "name": "from", "in": "query"},
            {"type": "string", "name": "to", "in": "query"},
            {"type": "string", "name": "type", "in": "query"}
        ], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Ohm's Lab API",
	Description:      "Interactive Ohm's law lesson: circuit lab, short-circuit demonstration, quiz and narration.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
