package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Edu Schedule API",
        "description": "Recurring lesson generation and schedule conflict detection",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Lessons", "description": "Lesson generation, preview and clean-up"},
        {"name": "Enrollments", "description": "Timetable checks before bulk enrollment"}
    ],
    "paths": {
        "/groups/{id}/lessons/generate": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Generate lessons from the group's recurrence pattern",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/GenerateLessonsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Lessons created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "200": {"description": "Nothing generated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Rejected because of conflicts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Group schedule settings incomplete", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "423": {"description": "Schedule resources locked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/groups/lessons/bulk-generate": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Generate lessons for several groups",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkGenerateLessonsRequest"}}
                ],
                "responses": {"200": {"description": "Per-group results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/groups/{id}/lessons/preview": {
            "get": {
                "tags": ["Lessons"],
                "summary": "Preview the lessons a generation would create",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"},
                    {"name": "exclude", "in": "query", "type": "string"},
                    {"name": "check_students", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"description": "Proposed dates", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/groups/{id}/lessons/available-dates": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List conflict-free dates",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"},
                    {"name": "exclude", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "Available dates", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/groups/{id}/lessons": {
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete a group's lessons in a date range",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "Deleted count", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/groups/{id}/lessons/export": {
            "get": {
                "tags": ["Lessons"],
                "summary": "Export a group's lessons",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "Rendered file", "schema": {"type": "file"}}}
            }
        },
        "/schedule/availability": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Check an ad-hoc weekly pattern for conflicts",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AvailabilityCheckRequest"}}
                ],
                "responses": {"200": {"description": "Availability report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/groups/{id}/enrollments/conflicts": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Check students' timetables before enrolling them",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentConflictRequest"}}
                ],
                "responses": {"200": {"description": "Per-student verdicts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "GenerateLessonsRequest": {
            "type": "object",
            "properties": {
                "from": {"type": "string", "format": "date"},
                "to": {"type": "string", "format": "date"},
                "exclude_dates": {"type": "array", "items": {"type": "string", "format": "date"}},
                "skip_conflicts": {"type": "boolean"},
                "force": {"type": "boolean"},
                "max_lessons": {"type": "integer"},
                "check_group_conflict": {"type": "boolean"},
                "check_student_conflict": {"type": "boolean"},
                "complete_past_lessons": {"type": "boolean"}
            }
        },
        "BulkGenerateLessonsRequest": {
            "type": "object",
            "required": ["group_ids"],
            "properties": {
                "group_ids": {"type": "array", "items": {"type": "string"}},
                "from": {"type": "string", "format": "date"},
                "to": {"type": "string", "format": "date"},
                "exclude_dates": {"type": "array", "items": {"type": "string", "format": "date"}},
                "skip_conflicts": {"type": "boolean"}
            }
        },
        "AvailabilityCheckRequest": {
            "type": "object",
            "required": ["weekdays", "start_time", "duration_minutes", "teacher_id", "from", "to"],
            "properties": {
                "weekdays": {"type": "array", "items": {"type": "string"}},
                "start_time": {"type": "string", "example": "09:00"},
                "duration_minutes": {"type": "integer"},
                "teacher_id": {"type": "string"},
                "room_id": {"type": "string"},
                "group_id": {"type": "string"},
                "from": {"type": "string", "format": "date"},
                "to": {"type": "string", "format": "date"},
                "exclude_dates": {"type": "array", "items": {"type": "string", "format": "date"}},
                "check_group_conflict": {"type": "boolean"},
                "check_student_conflict": {"type": "boolean"}
            }
        },
        "EnrollmentConflictRequest": {
            "type": "object",
            "required": ["student_ids"],
            "properties": {
                "student_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "array", "items": {"type": "string"}}
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
