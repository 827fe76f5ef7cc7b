package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Peer Assist API",
        "description": "Assistant roster reconciliation and availability service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and identity"},
        {"name": "Roster", "description": "Assistant course assignments and availability"},
        {"name": "Courses", "description": "Course catalog lookups"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/assistants/{assistantId}/roster": {
            "get": {
                "tags": ["Roster"],
                "summary": "List assistant roster",
                "parameters": [
                    {"name": "assistantId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Assistant not found"}
                }
            },
            "post": {
                "tags": ["Roster"],
                "summary": "Reconcile assistant roster",
                "parameters": [
                    {"name": "assistantId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReconcileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "403": {"description": "User is not an assistant"},
                    "404": {"description": "Assistant or course not found"}
                }
            }
        },
        "/assistants/{assistantId}/roster/{courseRef}": {
            "get": {
                "tags": ["Roster"],
                "summary": "Get one assignment",
                "parameters": [
                    {"name": "assistantId", "in": "path", "required": true, "type": "integer"},
                    {"name": "courseRef", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Assignment not found"}
                }
            }
        },
        "/assistants/{assistantId}/schedule/export": {
            "get": {
                "tags": ["Roster"],
                "summary": "Export assistant schedule",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "assistantId", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Rendered schedule file"},
                    "400": {"description": "Unsupported format"}
                }
            }
        },
        "/courses/{courseRef}/assistants": {
            "get": {
                "tags": ["Courses"],
                "summary": "List assistants for a course",
                "parameters": [
                    {"name": "courseRef", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course not found"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "AvailabilitySpec": {
            "type": "object",
            "properties": {
                "days": {"type": "array", "items": {"type": "string"}},
                "start_time": {"type": "string", "example": "14:00"},
                "end_time": {"type": "string", "example": "16:00"}
            }
        },
        "AvailabilityUpdate": {
            "type": "object",
            "required": ["course_code"],
            "properties": {
                "course_code": {"type": "string"},
                "availability": {"$ref": "#/definitions/AvailabilitySpec"}
            }
        },
        "ReconcileRequest": {
            "type": "object",
            "properties": {
                "course_ids": {"type": "array", "items": {"type": "string"}},
                "special_course_codes": {"type": "array", "items": {"type": "string"}},
                "availability_updates": {"type": "array", "items": {"$ref": "#/definitions/AvailabilityUpdate"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
