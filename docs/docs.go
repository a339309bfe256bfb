// Package docs holds the OpenAPI document served at /swagger. Regenerate with
// `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/responses": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Compose a prompt from the inputs and optional attachment, call the model (or serve the cached answer) and project the configured output fields",
                "consumes": ["application/json"],
                "produces": ["application/json", "text/csv"],
                "tags": ["responses"],
                "summary": "Get a structured response",
                "parameters": [
                    {
                        "description": "Inputs and optional attachment",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.ResponseRequest"}
                    },
                    {
                        "type": "string",
                        "description": "Set to csv to download the rows as CSV",
                        "name": "format",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Projected rows",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/handler.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/handler.ResponseData"}}}
                            ]
                        }
                    },
                    "400": {"description": "Invalid request or attachment", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "413": {"description": "Attachment or image too large", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "422": {"description": "Attachment could not be decoded", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "502": {"description": "Model endpoint call failed", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/cache": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Remove every cached answer of this broker instance",
                "produces": ["application/json"],
                "tags": ["cache"],
                "summary": "Invalidate the response cache",
                "responses": {
                    "200": {"description": "Cache cleared", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "403": {"description": "Admin role required", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "500": {"description": "Cache store error", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/schema": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Declared input fields, output paths, list mode and model",
                "produces": ["application/json"],
                "tags": ["schema"],
                "summary": "Describe the broker schema",
                "responses": {
                    "200": {
                        "description": "Broker schema",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/handler.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/handler.SchemaData"}}}
                            ]
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.ResponseRow": {
            "type": "object",
            "properties": {
                "full_response": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handler.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.AttachmentRequest": {
            "type": "object",
            "properties": {
                "filename": {"type": "string", "example": "invoice.pdf"},
                "content": {"type": "string", "example": "JVBERi0xLjQK..."}
            }
        },
        "handler.ResponseRequest": {
            "type": "object",
            "properties": {
                "inputs": {"type": "object", "additionalProperties": {"type": "string"}},
                "attachment": {"$ref": "#/definitions/handler.AttachmentRequest"},
                "refresh_cache": {"type": "boolean", "example": false}
            }
        },
        "handler.ResponseData": {
            "type": "object",
            "properties": {
                "rows": {"type": "array", "items": {"$ref": "#/definitions/domain.ResponseRow"}},
                "cache_hit": {"type": "boolean", "example": false},
                "estimated_tokens": {"type": "integer", "example": 1240},
                "model": {"type": "string", "example": "gpt-4o-mini"}
            }
        },
        "handler.SchemaData": {
            "type": "object",
            "properties": {
                "input_fields": {"type": "array", "items": {"type": "string"}},
                "output_fields": {"type": "array", "items": {"type": "string"}},
                "list_mode": {"type": "boolean", "example": false},
                "model": {"type": "string", "example": "gpt-4o-mini"},
                "cache_enabled": {"type": "boolean", "example": true}
            }
        },
        "handler.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "data": {}
            }
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {"$ref": "#/definitions/handler.APIError"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "llmbroker API",
	Description:      "Turns input fields and an optional attachment into an LLM request and returns structured rows projected from the answer.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
