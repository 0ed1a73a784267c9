// Package docs provides the OpenAPI definition served at /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "summary": "Service liveness and metrics snapshot",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/repos/{owner}/{repo}/analyze": {
            "post": {
                "produces": ["application/json"],
                "summary": "Sync a repository from GitHub and run the full contributor health pipeline",
                "parameters": [
                    {"type": "string", "name": "owner", "in": "path", "required": true},
                    {"type": "string", "name": "repo", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Batch result with snapshots, insight count, trend and per-contributor errors"},
                    "404": {"description": "Repository has no contributors"},
                    "429": {"description": "Analysis rate limit exceeded"},
                    "502": {"description": "GitHub API failure"}
                }
            }
        },
        "/api/repos/{owner}/{repo}/health": {
            "get": {
                "produces": ["application/json"],
                "summary": "Dashboard payload: aggregates, distribution, trend, snapshots, insights",
                "parameters": [
                    {"type": "string", "name": "owner", "in": "path", "required": true},
                    {"type": "string", "name": "repo", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Repository health payload"},
                    "404": {"description": "Repository has not been analyzed"}
                }
            }
        },
        "/api/repos/{owner}/{repo}/insights": {
            "get": {
                "produces": ["application/json"],
                "summary": "Active insights for a repository, newest first",
                "parameters": [
                    {"type": "string", "name": "owner", "in": "path", "required": true},
                    {"type": "string", "name": "repo", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Active insights"}
                }
            }
        },
        "/api/contributors/{login}/metrics": {
            "get": {
                "produces": ["application/json"],
                "summary": "Per-day derived metrics for one contributor",
                "parameters": [
                    {"type": "string", "name": "login", "in": "path", "required": true},
                    {"type": "integer", "name": "days", "in": "query", "required": false}
                ],
                "responses": {
                    "200": {"description": "Daily metrics, oldest first"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Maintainer Dashboard API",
	Description:      "Contributor health analytics for GitHub repositories",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
