// Package docs holds the OpenAPI description served at /swagger/*.
//
// Regenerate with: swag init -g internal/cmd/serve.go -o docs
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
        "/api/session": {
            "get": {"tags": ["session"], "summary": "Current session", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionView"}}}}
        },
        "/api/session/login": {
            "post": {"tags": ["session"], "summary": "Sign in", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.sessionView"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }}
        },
        "/api/session/logout": {
            "post": {"tags": ["session"], "summary": "Sign out", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionView"}}}}
        },
        "/api/session/error": {
            "delete": {"tags": ["session"], "summary": "Dismiss the session error", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionView"}}}}
        },
        "/api/session/can": {
            "get": {"tags": ["session"], "summary": "Check a permission", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "resource:action", "name": "permission", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.canResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }}
        },
        "/api/navigation": {
            "get": {"tags": ["console"], "summary": "Sidebar entries", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.navItem"}}}}}
        },
        "/login": {
            "get": {"tags": ["console"], "summary": "Sign-in page", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "page to return to", "name": "from", "in": "query"}],
                "responses": {"200": {"description": "OK"}, "302": {"description": "Found"}}}
        },
        "/unauthorized": {
            "get": {"tags": ["console"], "summary": "Access denied page", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "page that was refused", "name": "from", "in": "query"}],
                "responses": {"403": {"description": "Forbidden"}}}
        },
        "/idp/auth/register": {
            "post": {"tags": ["directory"], "summary": "Register an operator", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/idp/auth/login": {
            "post": {"tags": ["directory"], "summary": "Login", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/idp/auth/verify-email": {
            "get": {"tags": ["directory"], "summary": "Verify an email address", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "token", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/idp/auth/resend-verification": {
            "post": {"tags": ["directory"], "summary": "Resend verification", "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/idp/auth/profile": {
            "get": {"tags": ["directory"], "summary": "Current operator profile", "produces": ["application/json"], "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/idp/admin/users": {
            "get": {"tags": ["directory"], "summary": "List operators", "produces": ["application/json"], "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/health": {
            "get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/health/ready": {
            "get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        }
    },
    "definitions": {
        "handler.errorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "handler.loginRequest": {"type": "object", "properties": {
            "method": {"type": "string", "enum": ["email", "federated"]},
            "email": {"type": "string"},
            "password": {"type": "string"},
            "idToken": {"type": "string"},
            "deviceInfo": {"type": "object", "properties": {
                "userAgent": {"type": "string"}, "platform": {"type": "string"},
                "language": {"type": "string"}, "timezone": {"type": "string"}}}
        }},
        "handler.sessionView": {"type": "object", "properties": {
            "isAuthenticated": {"type": "boolean"},
            "loading": {"type": "boolean"},
            "user": {"type": "object"},
            "error": {"type": "string"},
            "tokenIssuedAt": {"type": "integer"},
            "tokenExpiresAt": {"type": "integer"},
            "expiresInSeconds": {"type": "integer"},
            "expired": {"type": "boolean"}
        }},
        "handler.canResponse": {"type": "object", "properties": {"permission": {"type": "string"}, "allowed": {"type": "boolean"}}},
        "handler.navItem": {"type": "object", "properties": {"title": {"type": "string"}, "href": {"type": "string"}}},
        "handler.registerRequest": {"type": "object", "required": ["email", "password", "firstName", "lastName", "role"], "properties": {
            "email": {"type": "string"}, "password": {"type": "string"},
            "firstName": {"type": "string"}, "lastName": {"type": "string"},
            "phone": {"type": "string"}, "role": {"type": "string"}
        }}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ISP OMS Console API",
	Description:      "Console session, route guard and bundled identity directory.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
