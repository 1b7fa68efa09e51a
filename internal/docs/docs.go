// Package docs holds the OpenAPI description served at /swagger when
// SWAGGER_ENABLED is set. Regenerate with `swag init -g cmd/server/main.go -o internal/docs`.
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
		"/discover": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Discovery"
				],
				"summary": "List discovery candidates",
				"operationId": "listCandidates",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"description": "Theriotype substring (case and accent insensitive)",
						"name": "theriotype",
						"in": "query"
					},
					{
						"maximum": 150,
						"minimum": 0,
						"type": "integer",
						"description": "Minimum age",
						"name": "minAge",
						"in": "query"
					},
					{
						"maximum": 150,
						"minimum": 0,
						"type": "integer",
						"description": "Maximum age",
						"name": "maxAge",
						"in": "query"
					},
					{
						"type": "number",
						"description": "Maximum distance in km",
						"name": "maxDistance",
						"in": "query"
					},
					{
						"maximum": 50,
						"minimum": 1,
						"type": "integer",
						"default": 20,
						"description": "Page size",
						"name": "limit",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/domain.User"
							}
						}
					},
					"401": {
						"description": "Unauthenticated",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"503": {
						"description": "Storage timeout",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/discover/swipe-count": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Discovery"
				],
				"summary": "Today's swipe allowance",
				"operationId": "swipeQuota",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/services.Quota"
						}
					},
					"401": {
						"description": "Unauthenticated",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/discover/swipe": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Discovery"
				],
				"summary": "Record a swipe",
				"operationId": "swipe",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"description": "Idempotency key for safe retries",
						"name": "Idempotency-Key",
						"in": "header"
					},
					{
						"description": "Swipe",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.SwipeRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/services.SwipeResult"
						}
					},
					"400": {
						"description": "Invalid type or self swipe",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Target not found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"429": {
						"description": "Daily limit reached",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/matches": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Matches"
				],
				"summary": "List matches",
				"operationId": "listMatches",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"description": "ETag from a previous response",
						"name": "If-None-Match",
						"in": "header"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/services.MatchSummary"
							}
						}
					},
					"304": {
						"description": "Not modified"
					},
					"401": {
						"description": "Unauthenticated",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/matches/{id}": {
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Matches"
				],
				"summary": "Unmatch",
				"operationId": "unmatch",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"format": "uuid",
						"description": "Match ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "Deleted"
					},
					"403": {
						"description": "Not a participant",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Match not found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/matches/{id}/messages": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Messages"
				],
				"summary": "List messages in a match",
				"operationId": "listMessages",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"format": "uuid",
						"description": "Match ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "Message ID to page before",
						"name": "cursor",
						"in": "query"
					},
					{
						"maximum": 100,
						"minimum": 1,
						"type": "integer",
						"default": 50,
						"description": "Page size",
						"name": "limit",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/domain.Message"
							}
						}
					},
					"400": {
						"description": "Invalid cursor",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Not a participant",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Match not found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Messages"
				],
				"summary": "Send a message",
				"operationId": "sendMessage",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"description": "Idempotency key for safe retries",
						"name": "Idempotency-Key",
						"in": "header"
					},
					{
						"type": "string",
						"format": "uuid",
						"description": "Match ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Message",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.SendMessageRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/domain.Message"
						}
					},
					"400": {
						"description": "Empty or too long",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Not a participant",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Match not found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/matches/{id}/messages/read": {
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Messages"
				],
				"summary": "Mark messages read",
				"operationId": "markRead",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"format": "uuid",
						"description": "Match ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.MarkReadResponse"
						}
					},
					"403": {
						"description": "Not a participant",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Match not found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/blocks": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Blocks"
				],
				"summary": "List blocked users",
				"operationId": "listBlocks",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/services.BlockEntry"
							}
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Blocks"
				],
				"summary": "Block a user",
				"operationId": "blockUser",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					},
					{
						"description": "Target",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.BlockRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handlers.SuccessResponse"
						}
					},
					"400": {
						"description": "Self block",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Target not found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"409": {
						"description": "Already blocked",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/blocks/{targetId}": {
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Blocks"
				],
				"summary": "Unblock a user",
				"operationId": "unblockUser",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"description": "Blocked user id",
						"name": "targetId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "Unblocked"
					},
					"404": {
						"description": "Block not found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/reports": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Reports"
				],
				"summary": "Report a user",
				"operationId": "fileReport",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					},
					{
						"description": "Report",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.ReportRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handlers.ReportResponse"
						}
					},
					"400": {
						"description": "Invalid reason, details too long or self report",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Target not found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/notifications/register-token": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Notifications"
				],
				"summary": "Register a push token",
				"operationId": "registerPushToken",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					},
					{
						"description": "Device",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.RegisterTokenRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.SuccessResponse"
						}
					},
					"400": {
						"description": "Missing token or invalid platform",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/notifications/remove-token": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Notifications"
				],
				"summary": "Remove a push token",
				"operationId": "removePushToken",
				"parameters": [
					{
						"type": "string",
						"description": "Authenticated user id",
						"name": "X-User-ID",
						"in": "header",
						"required": true
					},
					{
						"description": "Device",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.RemoveTokenRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.SuccessResponse"
						}
					},
					"400": {
						"description": "Missing token",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		}
	},
	"definitions": {
		"domain.Message": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"matchId": {
					"type": "string"
				},
				"senderId": {
					"type": "string"
				},
				"content": {
					"type": "string"
				},
				"readAt": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				}
			}
		},
		"domain.Photo": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"url": {
					"type": "string"
				},
				"position": {
					"type": "integer"
				},
				"createdAt": {
					"type": "string"
				}
			}
		},
		"domain.Theriotype": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"species": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				}
			}
		},
		"domain.User": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"username": {
					"type": "string"
				},
				"displayName": {
					"type": "string"
				},
				"bio": {
					"type": "string"
				},
				"birthDate": {
					"type": "string"
				},
				"latitude": {
					"type": "number"
				},
				"longitude": {
					"type": "number"
				},
				"createdAt": {
					"type": "string"
				},
				"updatedAt": {
					"type": "string"
				},
				"theriotypes": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/domain.Theriotype"
					}
				},
				"photos": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/domain.Photo"
					}
				}
			}
		},
		"handlers.BlockRequest": {
			"type": "object",
			"required": [
				"targetId"
			],
			"properties": {
				"targetId": {
					"type": "string",
					"example": "0b8f6c1e-3a4d-4f7e-9c2b-5d6e7f8a9b0c"
				}
			}
		},
		"handlers.ErrorResponse": {
			"type": "object",
			"properties": {
				"request_id": {
					"type": "string",
					"example": "123e4567-e89b-12d3-a456-426614174000"
				},
				"code": {
					"type": "string",
					"example": "not_found"
				},
				"message": {
					"type": "string",
					"example": "resource not found"
				}
			}
		},
		"handlers.MarkReadResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean",
					"example": true
				},
				"count": {
					"type": "integer",
					"example": 3
				}
			}
		},
		"handlers.RegisterTokenRequest": {
			"type": "object",
			"required": [
				"platform",
				"token"
			],
			"properties": {
				"token": {
					"type": "string"
				},
				"platform": {
					"type": "string",
					"example": "ios"
				}
			}
		},
		"handlers.RemoveTokenRequest": {
			"type": "object",
			"required": [
				"token"
			],
			"properties": {
				"token": {
					"type": "string"
				}
			}
		},
		"handlers.ReportRequest": {
			"type": "object",
			"required": [
				"reason",
				"targetId"
			],
			"properties": {
				"targetId": {
					"type": "string"
				},
				"reason": {
					"type": "string",
					"example": "harassment"
				},
				"details": {
					"type": "string",
					"example": "Sent abusive messages"
				}
			}
		},
		"handlers.ReportResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean",
					"example": true
				},
				"id": {
					"type": "string"
				}
			}
		},
		"handlers.SendMessageRequest": {
			"type": "object",
			"required": [
				"content"
			],
			"properties": {
				"content": {
					"type": "string",
					"example": "Hey! I saw you're a wolf too."
				}
			}
		},
		"handlers.SuccessResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean",
					"example": true
				}
			}
		},
		"handlers.SwipeRequest": {
			"type": "object",
			"required": [
				"targetId",
				"type"
			],
			"properties": {
				"targetId": {
					"type": "string"
				},
				"type": {
					"type": "string",
					"example": "like"
				}
			}
		},
		"services.BlockEntry": {
			"type": "object",
			"properties": {
				"userId": {
					"type": "string"
				},
				"username": {
					"type": "string"
				},
				"displayName": {
					"type": "string"
				},
				"blockedAt": {
					"type": "string"
				}
			}
		},
		"services.MatchSummary": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				},
				"otherUser": {
					"$ref": "#/definitions/domain.User"
				},
				"lastMessage": {
					"$ref": "#/definitions/domain.Message"
				},
				"unreadCount": {
					"type": "integer"
				}
			}
		},
		"services.Quota": {
			"type": "object",
			"properties": {
				"used": {
					"type": "integer"
				},
				"remaining": {
					"type": "integer"
				},
				"limit": {
					"type": "integer"
				}
			}
		},
		"services.SwipeResult": {
			"type": "object",
			"properties": {
				"matched": {
					"type": "boolean"
				},
				"matchId": {
					"type": "string"
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Match API",
	Description:      "Candidate discovery, swipes, matches, messaging, blocks, reports and push tokens.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
