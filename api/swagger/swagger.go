package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TA Proctoring API",
        "description": "Constraint-based proctor assignment for exams",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Exams", "description": "Exam request management"},
        {"name": "Proctoring", "description": "Candidate pools, override ladder, confirmation"},
        {"name": "Assignments", "description": "Roster listings and export"},
        {"name": "Swaps", "description": "Post-assignment reassignment workflow"},
        {"name": "TAs", "description": "TA roster, schedules, leaves, allocations"},
        {"name": "Staff", "description": "Instructor directory"},
        {"name": "Settings", "description": "Global configuration"},
        {"name": "Notifications", "description": "User notification feed"}
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
        "/exams": {
            "get": {
                "tags": ["Exams"],
                "summary": "List exams",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Exams"],
                "summary": "Create an exam request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExamRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{id}": {
            "get": {
                "tags": ["Exams"],
                "summary": "Get exam",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Exams"],
                "summary": "Delete exam and release workload",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/exams/{id}/candidates": {
            "get": {
                "tags": ["Proctoring"],
                "summary": "List candidate TAs with exclusion reasons",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{id}/proposal": {
            "post": {
                "tags": ["Proctoring"],
                "summary": "Run the override ladder and propose a proctor list",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{id}/assignments": {
            "post": {
                "tags": ["Proctoring"],
                "summary": "Confirm a proctor list",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConfirmAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List the proctoring roster",
                "parameters": [
                    {"name": "order", "in": "query", "type": "string", "enum": ["date", "course"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/mine": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List the requesting TA's assignments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/export": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Export roster as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "order", "in": "query", "type": "string", "enum": ["date", "course"]}
                ],
                "responses": {
                    "200": {"description": "CSV payload"}
                }
            }
        },
        "/assignments/{id}/swap-candidates": {
            "get": {
                "tags": ["Swaps"],
                "summary": "List swap candidates for an assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}/reassign": {
            "post": {
                "tags": ["Swaps"],
                "summary": "Reassign an assignment directly",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StaffReassignRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/swaps": {
            "get": {
                "tags": ["Swaps"],
                "summary": "List the requesting TA's swaps",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Swaps"],
                "summary": "Request a swap",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSwapRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/swaps/{id}/respond": {
            "post": {
                "tags": ["Swaps"],
                "summary": "Accept or reject a pending swap",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RespondSwapRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/swaps/{id}/cancel": {
            "post": {
                "tags": ["Swaps"],
                "summary": "Withdraw a pending swap",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/tas": {
            "get": {
                "tags": ["TAs"],
                "summary": "List TAs",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["TAs"],
                "summary": "Register a TA",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTARequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tas/{email}": {
            "get": {
                "tags": ["TAs"],
                "summary": "Get TA",
                "parameters": [
                    {"name": "email", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tas/{email}/department": {
            "get": {
                "tags": ["TAs"],
                "summary": "Resolve a TA's department",
                "parameters": [
                    {"name": "email", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tas/{email}/schedule": {
            "get": {
                "tags": ["TAs"],
                "summary": "Get weekly schedule",
                "parameters": [
                    {"name": "email", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["TAs"],
                "summary": "Replace weekly schedule",
                "parameters": [
                    {"name": "email", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceScheduleRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/tas/{email}/leaves": {
            "get": {
                "tags": ["TAs"],
                "summary": "List leave intervals",
                "parameters": [
                    {"name": "email", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["TAs"],
                "summary": "File a leave interval",
                "parameters": [
                    {"name": "email", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LeaveRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tas/{email}/allocations": {
            "post": {
                "tags": ["TAs"],
                "summary": "Allocate a TA to a course",
                "parameters": [
                    {"name": "email", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocationRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/leaves/{id}/review": {
            "post": {
                "tags": ["TAs"],
                "summary": "Approve or reject a leave interval",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "decision", "in": "query", "required": true, "type": "string", "enum": ["approve", "reject"]}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/staff": {
            "get": {
                "tags": ["Staff"],
                "summary": "List staff of a department",
                "parameters": [
                    {"name": "department", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Staff"],
                "summary": "Register an instructor",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStaffRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get global settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Update global settings",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List notifications",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "CreateExamRequest": {
            "type": "object",
            "required": ["course_codes", "date", "start_time", "end_time", "num_proctors"],
            "properties": {
                "course_codes": {"type": "array", "items": {"type": "string"}},
                "dean": {"type": "boolean"},
                "date": {"type": "string", "example": "2026-01-15"},
                "start_time": {"type": "string", "example": "09:00"},
                "end_time": {"type": "string", "example": "11:00"},
                "num_proctors": {"type": "integer"},
                "student_count": {"type": "integer"},
                "classrooms": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ConfirmAssignmentRequest": {
            "type": "object",
            "required": ["ta_emails"],
            "properties": {
                "ta_emails": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CreateSwapRequest": {
            "type": "object",
            "required": ["assignment_id", "requested_to"],
            "properties": {
                "assignment_id": {"type": "string"},
                "requested_to": {"type": "string"}
            }
        },
        "RespondSwapRequest": {
            "type": "object",
            "required": ["accept"],
            "properties": {
                "accept": {"type": "boolean"}
            }
        },
        "StaffReassignRequest": {
            "type": "object",
            "required": ["ta_email"],
            "properties": {
                "ta_email": {"type": "string"}
            }
        },
        "CreateTARequest": {
            "type": "object",
            "required": ["email", "full_name", "program"],
            "properties": {
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "advisor": {"type": "string"},
                "program": {"type": "string", "enum": ["MS", "PhD"]},
                "workload": {"type": "integer"}
            }
        },
        "ReplaceScheduleRequest": {
            "type": "object",
            "properties": {
                "slots": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "day": {"type": "string", "example": "MON"},
                            "time_slot": {"type": "string", "example": "09:00-10:30"},
                            "course": {"type": "string"}
                        }
                    }
                }
            }
        },
        "LeaveRequest": {
            "type": "object",
            "required": ["start_date", "end_date", "leave_type"],
            "properties": {
                "start_date": {"type": "string", "example": "2026-01-10"},
                "end_date": {"type": "string", "example": "2026-01-12"},
                "leave_type": {"type": "string"}
            }
        },
        "AllocationRequest": {
            "type": "object",
            "required": ["course_code"],
            "properties": {
                "course_code": {"type": "string"}
            }
        },
        "CreateStaffRequest": {
            "type": "object",
            "required": ["email", "full_name", "department"],
            "properties": {
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "department": {"type": "string"}
            }
        },
        "UpdateSettingsRequest": {
            "type": "object",
            "required": ["current_semester"],
            "properties": {
                "current_semester": {"type": "string"},
                "max_ta_workload": {"type": "integer"}
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
