package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Schedule Desk API",
        "description": "Gateway serving the university scheduling dashboard",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Session", "description": "Login and session state"},
        {"name": "Board", "description": "Calendar board projection and lesson interactions"},
        {"name": "Summary", "description": "Conflicts, workload warnings and schedule health"},
        {"name": "Export", "description": "Schedule downloads"},
        {"name": "ViewState", "description": "Persisted per-user table state"},
        {"name": "Filters", "description": "Resolved filter schemas"},
        {"name": "Entities", "description": "Generic entity proxy"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Session"],
                "summary": "Log in against the university API",
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
                "tags": ["Session"],
                "summary": "Describe the current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Session"],
                "summary": "Log out the current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/board": {
            "get": {
                "tags": ["Board"],
                "summary": "Project a schedule window onto the grouped board",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "schedule_id", "in": "query", "type": "integer", "required": true},
                    {"name": "date", "in": "query", "type": "string", "required": true},
                    {"name": "view", "in": "query", "type": "string", "enum": ["day", "week"]},
                    {"name": "group_by", "in": "query", "type": "string", "enum": ["none", "group", "professor", "room"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/board/lessons/move": {
            "post": {
                "tags": ["Board"],
                "summary": "Commit a lesson drag",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveLessonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Target lane rejected"}
                }
            }
        },
        "/board/lessons/resize": {
            "post": {
                "tags": ["Board"],
                "summary": "Commit a lesson duration change",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/board/navigate": {
            "post": {
                "tags": ["Summary"],
                "summary": "Resolve the calendar jump target for flagged lessons",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}/conflicts": {
            "get": {
                "tags": ["Summary"],
                "summary": "Conflict summary of a schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}/warnings": {
            "get": {
                "tags": ["Summary"],
                "summary": "Workload overrun warnings local to a schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}/groups": {
            "get": {
                "tags": ["Summary"],
                "summary": "Groups involved in a schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}/health": {
            "get": {
                "tags": ["Summary"],
                "summary": "Combined issue snapshot of a schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export": {
            "post": {
                "tags": ["Export"],
                "summary": "Download a rendered schedule",
                "description": "With open issues and confirmed=false the call answers 409 with the issues instead of a file.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "409": {"description": "Confirmation required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}/report": {
            "get": {
                "tags": ["Export"],
                "summary": "Render a board window locally",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "date", "in": "query", "type": "string", "required": true},
                    {"name": "view", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["excel", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/view-states": {
            "get": {
                "tags": ["ViewState"],
                "summary": "List every stored table state of the current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/view-states/{tableKey}": {
            "get": {
                "tags": ["ViewState"],
                "summary": "Load one table's stored state",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "tableKey", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["ViewState"],
                "summary": "Store one table's state",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "tableKey", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "204": {"description": "Stored"}
                }
            },
            "delete": {
                "tags": ["ViewState"],
                "summary": "Drop one table's stored state",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "tableKey", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "204": {"description": "Dropped"}
                }
            }
        },
        "/filters": {
            "get": {
                "tags": ["Filters"],
                "summary": "List tables with a filter set",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/filters/{tableKey}": {
            "get": {
                "tags": ["Filters"],
                "summary": "Resolve the filter schema of a table",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "tableKey", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/entities/{entity}": {
            "get": {
                "tags": ["Entities"],
                "summary": "List an upstream entity collection",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "entity", "in": "path", "type": "string", "required": true},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"},
                    {"name": "sort_by", "in": "query", "type": "string"},
                    {"name": "desc", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Entities"],
                "summary": "Create an upstream entity",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "entity", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/entities/{entity}/{id}": {
            "get": {
                "tags": ["Entities"],
                "summary": "Fetch one upstream entity",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "entity", "in": "path", "type": "string", "required": true},
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Entities"],
                "summary": "Update an upstream entity",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "entity", "in": "path", "type": "string", "required": true},
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Entities"],
                "summary": "Delete an upstream entity",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "entity", "in": "path", "type": "string", "required": true},
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "MoveLessonRequest": {
            "type": "object",
            "required": ["lesson_id", "date", "start_time", "end_time"],
            "properties": {
                "lesson_id": {"type": "integer"},
                "date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "group_by": {"type": "string"},
                "target_resource_id": {"type": "string"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["schedule_id"],
            "properties": {
                "schedule_id": {"type": "integer"},
                "format": {"type": "string", "enum": ["excel", "pdf"]},
                "group_ids": {"type": "array", "items": {"type": "integer"}},
                "filename": {"type": "string"},
                "confirmed": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
