// Package docs registers the swagger document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/validate-key": {
            "post": {
                "description": "Reports whether the key exists and still has uses left. Always answers 200; the verdict is in the body.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["keys"],
                "summary": "Check an access key",
                "parameters": [
                    {
                        "description": "Key payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.KeyRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ValidationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/get-code": {
            "post": {
                "description": "Issues the current TOTP code for the key and consumes one of its uses.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["keys"],
                "summary": "Retrieve the current code for a key",
                "parameters": [
                    {
                        "description": "Key payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.KeyRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CodeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.CodeResponse"}},
                    "403": {"description": "Unknown key or usage limit reached", "schema": {"$ref": "#/definitions/dto.CodeResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.CodeResponse"}}
                }
            }
        },
        "/key-info": {
            "post": {
                "description": "Returns limits, usage and timestamps of an existing key.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["keys"],
                "summary": "Describe a key",
                "parameters": [
                    {
                        "description": "Key payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.KeyRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.KeyInfoResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "dto.KeyRequest": {
            "type": "object",
            "properties": {"key": {"type": "string"}}
        },
        "dto.UsageInfo": {
            "type": "object",
            "properties": {
                "max_uses": {"type": "integer"},
                "usage_count": {"type": "integer"},
                "remaining_uses": {"description": "number, or \"unlimited\""}
            }
        },
        "dto.ValidationResponse": {
            "type": "object",
            "properties": {
                "valid": {"type": "boolean"},
                "message": {"type": "string"},
                "usage_info": {"$ref": "#/definitions/dto.UsageInfo"}
            }
        },
        "dto.CodeResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "code": {"type": "string"},
                "error": {"type": "string"},
                "usage_info": {"$ref": "#/definitions/dto.UsageInfo"}
            }
        },
        "dto.KeyInfoResponse": {
            "type": "object",
            "properties": {
                "exists": {"type": "boolean"},
                "max_uses": {"type": "integer"},
                "usage_count": {"type": "integer"},
                "remaining_uses": {"description": "number, or \"unlimited\""},
                "is_valid": {"type": "boolean"},
                "status": {"type": "string", "enum": ["active", "low", "depleted", "unlimited"]},
                "last_used": {"type": "string", "format": "date-time"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Key Portal API",
	Description:      "Validates access keys and hands out their current TOTP codes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
