package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Training Center Evaluation API",
        "description": "Dynamic evaluation criteria and student scoring",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Criteria", "description": "Evaluation criteria definitions"},
        {"name": "Evaluations", "description": "Student session evaluations"},
        {"name": "Analytics", "description": "Aggregated statistics"},
        {"name": "Reports", "description": "Report exports"}
    ],
    "paths": {
        "/criteria": {
            "get": {
                "tags": ["Criteria"],
                "summary": "List evaluation criteria",
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "groupId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Criteria"],
                "summary": "Create criteria definition",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCriteriaRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/criteria/{id}": {
            "get": {
                "tags": ["Criteria"],
                "summary": "Get criteria definition",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Criteria"],
                "summary": "Update criteria definition",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCriteriaRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Criteria archived", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/criteria/{id}/status": {
            "patch": {
                "tags": ["Criteria"],
                "summary": "Update criteria lifecycle status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"status": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/criteria/{id}/archive": {
            "post": {
                "tags": ["Criteria"],
                "summary": "Archive criteria definition",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/criteria/validate-weights": {
            "post": {
                "tags": ["Criteria"],
                "summary": "Validate parameter weights without saving",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateWeightsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid weights", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/groups/{groupId}/criteria": {
            "get": {
                "tags": ["Criteria"],
                "summary": "Resolve the criteria in force for a group",
                "parameters": [
                    {"name": "groupId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Group missing or no criteria configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/evaluations": {
            "get": {
                "tags": ["Evaluations"],
                "summary": "List evaluations",
                "parameters": [
                    {"name": "groupId", "in": "query", "type": "string"},
                    {"name": "trainerId", "in": "query", "type": "string"},
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "sessionId", "in": "query", "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Evaluations"],
                "summary": "Record a student evaluation",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEvaluationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Student already evaluated for session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/evaluations/{id}": {
            "get": {
                "tags": ["Evaluations"],
                "summary": "Get an evaluation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Evaluations"],
                "summary": "Update an evaluation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEvaluationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Evaluation belongs to another trainer", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/evaluations/{id}/share": {
            "post": {
                "tags": ["Evaluations"],
                "summary": "Share an evaluation with its audiences",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"with_student": {"type": "boolean"}, "with_parent": {"type": "boolean"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/groups/{groupId}/evaluations": {
            "delete": {
                "tags": ["Evaluations"],
                "summary": "Delete all evaluations of a group",
                "parameters": [
                    {"name": "groupId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/groups/{groupId}/report": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export a group evaluation report",
                "parameters": [
                    {"name": "groupId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "csv"]}
                ],
                "responses": {
                    "200": {"description": "Rendered report"}
                }
            }
        },
        "/analytics/evaluations": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Aggregated evaluation statistics",
                "parameters": [
                    {"name": "groupId", "in": "query", "type": "string"},
                    {"name": "trainerId", "in": "query", "type": "string"},
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "sessionId", "in": "query", "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/system": {
            "get": {
                "tags": ["Analytics"],
                "summary": "System instrumentation snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ParameterSpec": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["rating", "percentage", "grade", "boolean", "text"]},
                "min_rating": {"type": "integer"},
                "max_rating": {"type": "integer"},
                "weight": {"type": "number"},
                "required": {"type": "boolean"},
                "order": {"type": "integer"}
            }
        },
        "CreateCriteriaRequest": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string"},
                "scope": {"type": "string", "enum": ["course", "groups"]},
                "group_ids": {"type": "array", "items": {"type": "string"}},
                "name": {"type": "string"},
                "parameters": {"type": "array", "items": {"$ref": "#/definitions/ParameterSpec"}},
                "overall_rating_enabled": {"type": "boolean"},
                "overall_rating_scale": {"type": "integer"},
                "comments_enabled": {"type": "boolean"},
                "comments_required": {"type": "boolean"}
            }
        },
        "UpdateCriteriaRequest": {
            "type": "object",
            "properties": {
                "scope": {"type": "string", "enum": ["course", "groups"]},
                "group_ids": {"type": "array", "items": {"type": "string"}},
                "name": {"type": "string"},
                "parameters": {"type": "array", "items": {"$ref": "#/definitions/ParameterSpec"}},
                "overall_rating_enabled": {"type": "boolean"},
                "overall_rating_scale": {"type": "integer"},
                "comments_enabled": {"type": "boolean"},
                "comments_required": {"type": "boolean"}
            }
        },
        "ValidateWeightsRequest": {
            "type": "object",
            "properties": {
                "parameters": {"type": "array", "items": {"$ref": "#/definitions/ParameterSpec"}}
            }
        },
        "CreateEvaluationRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "session_id": {"type": "string"},
                "group_id": {"type": "string"},
                "overall_rating": {"type": "integer"},
                "parameters": {"type": "object"},
                "skill_ratings": {"type": "object"},
                "attendance_status": {"type": "string"},
                "participation_level": {"type": "string"},
                "contribution_quality": {"type": "string"},
                "engagement_level": {"type": "string"},
                "comprehension_level": {"type": "string"},
                "behavior": {"type": "object"},
                "trainer_notes": {"type": "string"},
                "achievements": {"type": "array", "items": {"type": "string"}},
                "improvements": {"type": "array", "items": {"type": "string"}},
                "parent_contact_needed": {"type": "boolean"}
            }
        },
        "UpdateEvaluationRequest": {
            "type": "object",
            "properties": {
                "overall_rating": {"type": "integer"},
                "parameters": {"type": "object"},
                "skill_ratings": {"type": "object"},
                "attendance_status": {"type": "string"},
                "participation_level": {"type": "string"},
                "contribution_quality": {"type": "string"},
                "engagement_level": {"type": "string"},
                "comprehension_level": {"type": "string"},
                "behavior": {"type": "object"},
                "trainer_notes": {"type": "string"},
                "achievements": {"type": "array", "items": {"type": "string"}},
                "improvements": {"type": "array", "items": {"type": "string"}},
                "needs_attention": {"type": "boolean"},
                "at_risk": {"type": "boolean"},
                "excelling": {"type": "boolean"},
                "parent_contact_needed": {"type": "boolean"}
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
