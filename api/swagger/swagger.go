package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Planner API",
        "description": "Department exam scheduling and seat placement",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedule", "description": "Timetable runs, listing and export"},
        {"name": "Seating", "description": "Seat charts per scheduled exam"},
        {"name": "Catalog", "description": "Rooms and courses"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/schedule/runs": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Build the exam timetable for one exam type",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleRunRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List the scheduled exams of one exam type",
                "parameters": [
                    {"name": "examType", "in": "query", "type": "string", "required": true},
                    {"name": "departmentId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedule/export": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Download the timetable as CSV or PDF",
                "parameters": [
                    {"name": "examType", "in": "query", "type": "string", "required": true},
                    {"name": "departmentId", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/api/v1/exams": {
            "get": {
                "tags": ["Seating"],
                "summary": "List scheduled exams with assigned room codes",
                "parameters": [
                    {"name": "examType", "in": "query", "type": "string"},
                    {"name": "departmentId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/exams/{id}/seating": {
            "get": {
                "tags": ["Seating"],
                "summary": "Generate the seat chart for one exam",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Exam not found"}
                }
            }
        },
        "/api/v1/exams/{id}/seating/export": {
            "get": {
                "tags": ["Seating"],
                "summary": "Download the seat chart as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/api/v1/rooms": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List rooms",
                "parameters": [
                    {"name": "departmentId", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List courses",
                "parameters": [
                    {"name": "departmentId", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/demand": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List courses with enrolled-student counts",
                "parameters": [
                    {"name": "departmentId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ScheduleRunRequest": {
            "type": "object",
            "required": ["examType", "startDate", "endDate"],
            "properties": {
                "examType": {"type": "string"},
                "departmentId": {"type": "string"},
                "startDate": {"type": "string", "example": "2026-01-12"},
                "endDate": {"type": "string", "example": "2026-01-23"},
                "dailyStartTime": {"type": "string", "example": "09:00"},
                "dailyEndTime": {"type": "string", "example": "17:00"},
                "defaultDurationMin": {"type": "integer"},
                "durationOverrides": {"type": "object", "additionalProperties": {"type": "integer"}},
                "excludedWeekdays": {"type": "array", "items": {"type": "integer"}},
                "minGapMin": {"type": "integer"},
                "singleExamAtATime": {"type": "boolean"},
                "roomIds": {"type": "array", "items": {"type": "string"}},
                "courseIds": {"type": "array", "items": {"type": "string"}}
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
