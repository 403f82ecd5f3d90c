// Package docs holds the OpenAPI document served at /docs. Keep it in step
// with the handler annotations in internal/server when routes change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/trends": {
            "get": {
                "produces": ["application/json"],
                "tags": ["trends"],
                "summary": "Current trends",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TrendsResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "parameters": [
                    {"type": "integer", "description": "Page size (max 100)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.UserResponse"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create user",
                "parameters": [
                    {"description": "User", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UserCreate"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.UserWithPreferences"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get user with preferences",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.UserWithPreferences"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["users"],
                "summary": "Delete user and everything they own",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update user",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UserUpdate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.UserResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/preferences": {
            "get": {
                "produces": ["application/json"],
                "tags": ["preferences"],
                "summary": "Get preferences",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PreferencesResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["preferences"],
                "summary": "Update preferences",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.PreferencesUpdate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PreferencesResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/style-profile": {
            "get": {
                "produces": ["application/json"],
                "tags": ["style"],
                "summary": "Get style profile",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StyleProfileResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/style-profile/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["style"],
                "summary": "Recompute style profile",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StyleProfileResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/style-profile/summary": {
            "get": {
                "produces": ["application/json"],
                "tags": ["style"],
                "summary": "Get style summary",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StyleProfileSummary"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/tweets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tweets"],
                "summary": "List tweet history",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Page size (max 100)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.TweetListResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tweets"],
                "summary": "Import one tweet",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Tweet", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.TweetCreate"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.TweetResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/tweets/generate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generation"],
                "summary": "Generate tweet suggestions",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Generation request", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/models.TweetGenerationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TweetGenerationResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "429": {"description": "Too Many Requests"},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/tweets/import": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tweets"],
                "summary": "Bulk import tweet history",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Tweets", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.TweetBulkImport"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TweetImportResult"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/tweets/import/x": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tweets"],
                "summary": "Import recent public tweets of an X handle",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Handle and limit", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.XImportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TweetImportResult"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "models.GeneratedTweet": {
            "type": "object",
            "properties": {
                "confidence": {"type": "number"},
                "content": {"type": "string"},
                "tone_applied": {"type": "string"},
                "trend_used": {"type": "string"}
            }
        },
        "models.PreferencesResponse": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "interests": {"type": "array", "items": {"type": "string"}},
                "llm_provider": {"type": "string", "enum": ["claude", "openai"]},
                "tone": {"type": "string", "enum": ["casual", "sarcastic", "serious", "humorous", "controversial", "informative"]},
                "updated_at": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "models.PreferencesUpdate": {
            "type": "object",
            "properties": {
                "interests": {"type": "array", "items": {"type": "string"}},
                "llm_provider": {"type": "string"},
                "tone": {"type": "string"}
            }
        },
        "models.StyleProfileResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "profile": {"type": "object"},
                "tweet_count": {"type": "integer"},
                "updated_at": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "models.StyleProfileSummary": {
            "type": "object",
            "properties": {
                "avg_tweet_length": {"type": "number"},
                "emoji_usage": {"type": "string"},
                "has_profile": {"type": "boolean"},
                "humor_level": {"type": "string"},
                "top_themes": {"type": "array", "items": {"type": "string"}},
                "tweet_count": {"type": "integer"}
            }
        },
        "models.TrendsResponse": {
            "type": "object",
            "properties": {
                "trends": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.TweetBulkImport": {
            "type": "object",
            "properties": {
                "tweets": {"type": "array", "items": {"$ref": "#/definitions/models.TweetCreate"}}
            }
        },
        "models.TweetCreate": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "metadata": {"type": "object"},
                "tweet_id": {"type": "string"},
                "tweeted_at": {"type": "string"}
            }
        },
        "models.TweetGenerationRequest": {
            "type": "object",
            "properties": {
                "count": {"type": "integer", "maximum": 10, "minimum": 1},
                "trends": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.TweetGenerationResponse": {
            "type": "object",
            "properties": {
                "style_profile_used": {"type": "boolean"},
                "suggestions": {"type": "array", "items": {"$ref": "#/definitions/models.GeneratedTweet"}},
                "trends_used": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.TweetImportResult": {
            "type": "object",
            "properties": {
                "imported": {"type": "integer"},
                "skipped": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "models.TweetResponse": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "metadata": {"type": "object"},
                "tweet_id": {"type": "string"},
                "tweeted_at": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "models.UserCreate": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "models.UserResponse": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "string"},
                "updated_at": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "models.UserUpdate": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "models.UserWithPreferences": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "string"},
                "preferences": {"$ref": "#/definitions/models.PreferencesResponse"},
                "updated_at": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "models.XImportRequest": {
            "type": "object",
            "properties": {
                "handle": {"type": "string"},
                "limit": {"type": "integer", "maximum": 100, "minimum": 1}
            }
        },
        "server.TweetListResponse": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "total": {"type": "integer"},
                "tweets": {"type": "array", "items": {"$ref": "#/definitions/models.TweetResponse"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8000",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Vibe Tweet API",
	Description:      "Learns a user's writing style from their tweet history and generates new tweets in that voice.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
