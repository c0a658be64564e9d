// Package docs holds the Swagger description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {"get": {"tags": ["Health"], "summary": "API information", "responses": {"200": {"description": "OK"}}}},
        "/auth/register": {"post": {"tags": ["Auth"], "summary": "Register new user", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}, "429": {"description": "Too Many Requests"}}}},
        "/auth/login": {"post": {"tags": ["Auth"], "summary": "Login user", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "429": {"description": "Too Many Requests"}}}},
        "/auth/refresh": {"post": {"tags": ["Auth"], "summary": "Refresh access token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/logout": {"post": {"tags": ["Auth"], "summary": "Logout user", "responses": {"200": {"description": "OK"}}}},
        "/auth/logout-all": {"post": {"tags": ["Auth"], "summary": "Logout from all devices", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/me": {"get": {"tags": ["Auth"], "summary": "Get current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/profile": {
            "get": {"tags": ["Profile"], "summary": "Get own profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}},
            "put": {"tags": ["Profile"], "summary": "Update own profile", "security": [{"BearerAuth": []}], "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/profile/password": {"put": {"tags": ["Profile"], "summary": "Change password", "security": [{"BearerAuth": []}], "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/users": {"get": {"tags": ["Users"], "summary": "List users", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}},
        "/users/{id}": {
            "get": {"tags": ["Users"], "summary": "Get user by ID", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Users"], "summary": "Update user", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Users"], "summary": "Delete user", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/members": {
            "get": {"tags": ["Members"], "summary": "List members", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}, {"type": "string", "name": "sort", "in": "query", "description": "name, joinDate, missed or lastPayment; prefix - for descending"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Members"], "summary": "Create member", "security": [{"BearerAuth": []}], "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/members/active": {"get": {"tags": ["Members"], "summary": "List active members", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/members/inactive": {"get": {"tags": ["Members"], "summary": "List inactive members", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/members/overdue/{months}": {"get": {"tags": ["Members"], "summary": "List members with missed months", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "months", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/members/without-recent-payment/{months}": {"get": {"tags": ["Members"], "summary": "List members without a recent payment", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "months", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/members/export.csv": {"get": {"tags": ["Members"], "summary": "Export members as CSV", "produces": ["text/csv"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/members/{id}": {
            "get": {"tags": ["Members"], "summary": "Get member by ID", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Members"], "summary": "Update member", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Members"], "summary": "Delete member", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}
        },
        "/members/{id}/payment-status": {"get": {"tags": ["Members"], "summary": "Get member payment status", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/members/{id}/activate": {"post": {"tags": ["Members"], "summary": "Activate member", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/members/{id}/deactivate": {"post": {"tags": ["Members"], "summary": "Deactivate member", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/payments": {
            "get": {"tags": ["Payments"], "summary": "List payments", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}, {"type": "string", "name": "sort", "in": "query", "description": "paymentDate, period or amount; prefix - for descending"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Payments"], "summary": "Create payment", "security": [{"BearerAuth": []}], "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}
        },
        "/payments/record": {"post": {"tags": ["Payments"], "summary": "Record payment", "security": [{"BearerAuth": []}], "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/payments/reactivate": {"post": {"tags": ["Payments"], "summary": "Record payment with reactivation", "security": [{"BearerAuth": []}], "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/payments/methods": {"get": {"tags": ["Payments"], "summary": "List payment methods", "responses": {"200": {"description": "OK"}}}},
        "/payments/export.csv": {"get": {"tags": ["Payments"], "summary": "Export payments as CSV", "produces": ["text/csv"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/payments/member/{memberId}": {"get": {"tags": ["Payments"], "summary": "List a member's payments", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "memberId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/payments/{id}": {"get": {"tags": ["Payments"], "summary": "Get payment by ID", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/communications": {
            "get": {"tags": ["Communications"], "summary": "List communications", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "type", "in": "query", "description": "ANNOUNCEMENT, REMINDER or PERSONAL"}, {"type": "string", "name": "from", "in": "query", "description": "YYYY-MM-DD"}, {"type": "string", "name": "to", "in": "query", "description": "YYYY-MM-DD"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}},
            "post": {"tags": ["Communications"], "summary": "Create communication", "security": [{"BearerAuth": []}], "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/communications/send": {"post": {"tags": ["Communications"], "summary": "Send communication to members", "security": [{"BearerAuth": []}], "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/communications/send-to-all": {"post": {"tags": ["Communications"], "summary": "Send communication to all members", "security": [{"BearerAuth": []}], "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}, "429": {"description": "Too Many Requests"}}}},
        "/communications/send-to-overdue/{months}": {"post": {"tags": ["Communications"], "summary": "Send communication to overdue members", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "months", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}, "429": {"description": "Too Many Requests"}}}},
        "/communications/{id}": {"get": {"tags": ["Communications"], "summary": "Get communication by ID", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/communications/{id}/deliveries": {"get": {"tags": ["Communications"], "summary": "List deliveries of a communication", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/dashboard/stats": {"get": {"tags": ["Dashboard"], "summary": "Dashboard statistics", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/dashboard/recent-payments": {"get": {"tags": ["Dashboard"], "summary": "Recent payments", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/dashboard/overdue-members": {"get": {"tags": ["Dashboard"], "summary": "Overdue members", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/dashboard/recent-activities": {"get": {"tags": ["Dashboard"], "summary": "Recent activities", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/admin/jobs": {"get": {"tags": ["Admin"], "summary": "List scheduled jobs", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/admin/jobs/{name}/run": {"post": {"tags": ["Admin"], "summary": "Run a scheduled job", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "429": {"description": "Too Many Requests"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Member Tracker API",
	Description:      "Membership payment tracking and member communications API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
