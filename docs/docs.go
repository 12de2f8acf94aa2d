package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/test": {
            "get": {
                "tags": ["system"],
                "summary": "Liveness ping",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PingResponse"}}
                }
            }
        },
        "/lunches": {
            "get": {
                "tags": ["lunches"],
                "summary": "List lunches",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Lunch"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "post": {
                "tags": ["lunches"],
                "summary": "Create a lunch",
                "description": "imagen may be a base64 data URI; it is stored under /uploads/lunches",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/CreateLunchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/LunchCreatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/lunches/{id}": {
            "get": {
                "tags": ["lunches"],
                "summary": "Get lunch by ID",
                "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Lunch"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "put": {
                "tags": ["lunches"],
                "summary": "Update a lunch",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/Lunch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UpdatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["lunches"],
                "summary": "Delete a lunch",
                "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/OKResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/orders": {
            "get": {
                "tags": ["orders"],
                "summary": "List orders",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Order"}}}
                }
            },
            "post": {
                "tags": ["orders"],
                "summary": "Place an order",
                "description": "A missing total is computed as the sum of price times quantity",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/Order"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/OrderCreatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "tags": ["orders"],
                "summary": "Get order by ID",
                "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Order"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "put": {
                "tags": ["orders"],
                "summary": "Update an order",
                "description": "The total is recomputed from the merged items unless supplied",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/Order"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UpdatedResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["orders"],
                "summary": "Delete an order",
                "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/OKResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/expenses": {
            "get": {
                "tags": ["expenses"],
                "summary": "List expenses",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Expense"}}}
                }
            },
            "post": {
                "tags": ["expenses"],
                "summary": "Record an expense",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/Expense"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ExpenseCreatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/expenses/{id}": {
            "get": {
                "tags": ["expenses"],
                "summary": "Get expense by ID",
                "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Expense"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "put": {
                "tags": ["expenses"],
                "summary": "Update an expense",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/Expense"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UpdatedResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["expenses"],
                "summary": "Delete an expense",
                "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/OKResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/backups/{collection}": {
            "get": {
                "tags": ["backups"],
                "summary": "List snapshots of a collection",
                "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "collection", "type": "string", "enum": ["lunches", "orders", "expenses"], "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Snapshot"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/backups/{collection}/restore": {
            "post": {
                "tags": ["backups"],
                "summary": "Restore a collection from a snapshot",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "collection", "type": "string", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {"name": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/OKResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/backups/{collection}/prune": {
            "post": {
                "tags": ["backups"],
                "summary": "Remove old snapshots",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "collection", "type": "string", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {"keep": {"type": "integer", "minimum": 1}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"removed": {"type": "array", "items": {"type": "string"}}}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/backups/{collection}/{name}/verify": {
            "get": {
                "tags": ["backups"],
                "summary": "Check that every row of a snapshot decodes",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "collection", "type": "string", "required": true},
                    {"in": "path", "name": "name", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"ok": {"type": "boolean"}, "name": {"type": "string"}, "rows": {"type": "integer"}}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/reports/export.xlsx": {
            "get": {
                "tags": ["reports"],
                "summary": "Download all collections as an xlsx workbook",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "Lunch": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "imagen": {"type": "string"},
                "price": {"type": "number"},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CreateLunchRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "imagen": {"type": "string", "example": "data:image/png;base64,..."},
                "price": {"type": "number", "minimum": 0},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "PayMethod": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "label": {"type": "string"},
                "image": {"type": "string"}
            }
        },
        "OrderItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "imagen": {"type": "string"},
                "price": {"type": "number"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "quantity": {"type": "integer"}
            }
        },
        "Order": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "towerNum": {"type": "string"},
                "apto": {"type": "integer"},
                "customer": {"type": "string"},
                "phoneNum": {"type": "integer"},
                "payMethod": {"$ref": "#/definitions/PayMethod"},
                "lunch": {"type": "array", "items": {"$ref": "#/definitions/OrderItem"}},
                "details": {"type": "string"},
                "time": {"type": "string"},
                "date": {"type": "string"},
                "orderState": {"type": "string", "enum": ["pendiente", "pagado"]},
                "total": {"type": "number"}
            }
        },
        "Expense": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string", "enum": ["purchase", "third-party"]},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "amount": {"type": "number"},
                "time": {"type": "string"},
                "date": {"type": "string"}
            }
        },
        "Snapshot": {
            "type": "object",
            "properties": {
                "collection": {"type": "string"},
                "name": {"type": "string", "example": "lunches-20240301-120000.csv"},
                "time": {"type": "string", "format": "date-time"},
                "size": {"type": "integer"}
            }
        },
        "PingResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "LunchCreatedResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "lunch": {"$ref": "#/definitions/Lunch"}
            }
        },
        "OrderCreatedResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "order": {"$ref": "#/definitions/Order"}
            }
        },
        "ExpenseCreatedResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "expense": {"$ref": "#/definitions/Expense"}
            }
        },
        "UpdatedResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "updated": {"type": "object"}
            }
        },
        "OKResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:4000",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "LunchDesk API",
	Description:      "Lunch menu, orders and expenses backed by CSV files",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
