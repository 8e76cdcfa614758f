// Package docs registers the swagger document served under /swagger. It is
// maintained by hand alongside the @Router annotations on the handlers.
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
        "/": {
            "get": {
                "produces": ["text/html"],
                "tags": ["pages"],
                "summary": "Landing page",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/signup": {
            "get": {
                "produces": ["text/html"],
                "tags": ["auth"],
                "summary": "Registration form",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/submitUser": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["text/html"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"type": "string", "description": "Alphanumeric, at most 20 characters", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "Email address", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "description": "At most 20 characters", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "302": {"description": "Redirect to /member"},
                    "400": {"description": "Missing or invalid field"},
                    "409": {"description": "Email or username already exists"},
                    "500": {"description": "Store failure"}
                }
            }
        },
        "/login": {
            "get": {
                "produces": ["text/html"],
                "tags": ["auth"],
                "summary": "Login form",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/loggingIn": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["text/html"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"type": "string", "description": "At most 20 characters", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "302": {"description": "Redirect to /member"},
                    "400": {"description": "Missing email"},
                    "401": {"description": "Incorrect email/password combination"},
                    "404": {"description": "User does not exist"},
                    "500": {"description": "Store failure"}
                }
            }
        },
        "/logout": {
            "get": {
                "tags": ["auth"],
                "summary": "Log out",
                "responses": {"302": {"description": "Redirect to /"}}
            }
        },
        "/member": {
            "get": {
                "produces": ["text/html"],
                "tags": ["pages"],
                "summary": "Members area",
                "responses": {
                    "200": {"description": "OK"},
                    "302": {"description": "Redirect to /login when not authenticated"}
                }
            }
        },
        "/admin": {
            "get": {
                "produces": ["text/html"],
                "tags": ["admin"],
                "summary": "User administration",
                "responses": {
                    "200": {"description": "OK"},
                    "302": {"description": "Redirect to /login when not authenticated"},
                    "403": {"description": "Not Authorized"}
                }
            }
        },
        "/promote/{username}": {
            "get": {
                "tags": ["admin"],
                "summary": "Promote a user to admin",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "302": {"description": "Redirect to /admin"},
                    "403": {"description": "Not Authorized"},
                    "404": {"description": "Error updating user"},
                    "500": {"description": "Error updating user"}
                }
            }
        },
        "/demote/{username}": {
            "get": {
                "tags": ["admin"],
                "summary": "Demote a user to user",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "302": {"description": "Redirect to /admin"},
                    "403": {"description": "Not Authorized"},
                    "404": {"description": "Error updating user"},
                    "500": {"description": "Error updating user"}
                }
            }
        },
        "/nosql-injection": {
            "get": {
                "produces": ["text/html"],
                "tags": ["pages"],
                "summary": "Username lookup demo",
                "parameters": [
                    {"type": "string", "description": "Username, at most 20 characters", "name": "user", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "302": {"description": "Redirect to /login on operator-shaped input"}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "dependencies": {
                    "type": "object",
                    "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}
                },
                "status": {"type": "string"}
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
	Title:            "Members Portal",
	Description:      "Server-rendered registration, login and role administration backed by MongoDB.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
