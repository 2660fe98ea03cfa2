// Package swagger holds the OpenAPI document served at /swagger/index.html.
package swagger

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
        "/auth/signup": {
            "post": {
                "description": "Creates an account. Name must be 5-16 characters, password 6-10.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Signup payload", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Authenticates by login and password, returning an access and a refresh token",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login user",
                "parameters": [
                    {"type": "string", "description": "Login", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/auth/refresh_token": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Rotates both tokens. The bearer token must be the current refresh token; a stale one revokes the session.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Refresh token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/receipt/receipt": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Computes line totals, total and change, then stores the receipt with its items",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["receipts"],
                "summary": "Create a receipt",
                "parameters": [
                    {"description": "Products and payment", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.CreateReceiptRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/receipt/receipts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Lists the caller's receipts, newest first",
                "produces": ["application/json"],
                "tags": ["receipts"],
                "summary": "List receipts",
                "parameters": [
                    {"type": "string", "description": "Created at or after (RFC3339)", "name": "start_date", "in": "query"},
                    {"type": "string", "description": "Created at or before (RFC3339)", "name": "end_date", "in": "query"},
                    {"type": "string", "description": "Minimum total", "name": "min_total", "in": "query"},
                    {"type": "string", "description": "cash or card", "name": "payment_type", "in": "query"},
                    {"type": "integer", "description": "Page size (default 10)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Rows to skip", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/receipt/receipts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["receipts"],
                "summary": "Get a receipt",
                "parameters": [
                    {"type": "string", "description": "Receipt ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/receipt/public/{id}/view": {
            "get": {
                "description": "Serves the text ticket or its QR code inline, generating both on first request. No auth.",
                "produces": ["text/plain", "image/png"],
                "tags": ["receipts"],
                "summary": "View a receipt artifact",
                "parameters": [
                    {"type": "string", "description": "Receipt ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "default": "txt", "description": "txt or qr", "name": "file_type", "in": "query"},
                    {"type": "integer", "default": 40, "maximum": 200, "description": "Ticket width", "name": "line_length", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/receipt/statistics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Receipt count, turnover, per payment type totals and top 5 products for the caller",
                "produces": ["application/json"],
                "tags": ["Statistics"],
                "summary": "Get receipt statistics",
                "parameters": [
                    {"type": "string", "description": "Start Date (RFC3339)", "name": "start_date", "in": "query"},
                    {"type": "string", "description": "End Date (RFC3339)", "name": "end_date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/health": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/health/db": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Database probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        }
    },
    "definitions": {
        "response.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "status": {"type": "string"},
                "status_code": {"type": "integer"}
            }
        },
        "service.SignupRequest": {
            "type": "object",
            "required": ["login", "name", "password"],
            "properties": {
                "login": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "service.ProductRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "price": {"type": "string", "example": "9.99"},
                "quantity": {"type": "integer", "example": 3}
            }
        },
        "service.PaymentRequest": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "type": {"type": "string", "example": "cash"},
                "amount": {"type": "string", "example": "40.00"}
            }
        },
        "service.CreateReceiptRequest": {
            "type": "object",
            "required": ["payment", "products"],
            "properties": {
                "payment": {"$ref": "#/definitions/service.PaymentRequest"},
                "products": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/service.ProductRequest"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Receipts API",
	Description:      "Receipts backend: accounts, receipt calculation and printable artifacts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
