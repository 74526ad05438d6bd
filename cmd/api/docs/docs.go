// Package docs registers the Swagger spec for the public API.
// Regenerate with:
// swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
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
        "/api/ask": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Ask a budget question",
                "parameters": [
                    {
                        "description": "question",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.AskRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/answer.Answer"}},
                    "400": {"description": "bad request", "schema": {"type": "string"}}
                }
            }
        },
        "/api/documents": {
            "get": {
                "produces": ["application/json"],
                "summary": "List registered documents",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/document.Record"}}
                    }
                }
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "summary": "Upload a document",
                "parameters": [
                    {"type": "file", "description": "document file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "duplicate upload", "schema": {"$ref": "#/definitions/document.Record"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/document.Record"}},
                    "400": {"description": "bad request", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "answer.Answer": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"},
                "numbers": {"type": "object", "additionalProperties": true},
                "citations": {"type": "array", "items": {"$ref": "#/definitions/answer.Citation"}},
                "confidence": {"type": "number"}
            }
        },
        "answer.Citation": {
            "type": "object",
            "properties": {
                "document": {"type": "string"},
                "page": {"type": "integer"},
                "snippet": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "document.Record": {
            "type": "object",
            "properties": {
                "file_hash": {"type": "string"},
                "filename": {"type": "string"},
                "name": {"type": "string"},
                "original_url": {"type": "string"},
                "document_type": {"type": "string"},
                "fiscal_year": {"type": "string"},
                "file_size": {"type": "integer"},
                "registered_at": {"type": "string"},
                "extraction_status": {"type": "string"},
                "chunk_count": {"type": "integer"},
                "embedding_status": {"type": "string"},
                "embedded_at": {"type": "string"},
                "embedding_count": {"type": "integer"}
            }
        },
        "handlers.AskRequest": {
            "type": "object",
            "properties": {
                "question": {"type": "string"},
                "fiscal_year": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Bahamas Open Data API",
	Description:      "Government budget document ingestion and question answering",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
