// Package docs holds the OpenAPI description served at /swagger.
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
        "/api/v1/conversions": {
            "post": {
                "description": "Uploads a Trading 212 CSV export, extracts the sell trades and computes the K4 totals. The result is kept in memory for SESSION_TTL.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["conversions"],
                "summary": "Convert a Trading 212 export",
                "parameters": [
                    {"type": "file", "description": "Trading 212 CSV export", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.ConversionResponse"}},
                    "400": {"description": "Malformed upload", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "415": {"description": "Not a CSV file", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "No sell transactions", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/conversions/{id}": {
            "get": {
                "description": "Returns the totals, preview and artifact links of a conversion that has not expired yet.",
                "produces": ["application/json"],
                "tags": ["conversions"],
                "summary": "Get a conversion",
                "parameters": [
                    {"type": "string", "description": "Conversion id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Success", "schema": {"$ref": "#/definitions/dto.ConversionResponse"}},
                    "404": {"description": "Unknown or expired", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Removes the conversion from memory before it expires.",
                "tags": ["conversions"],
                "summary": "Discard a conversion",
                "parameters": [
                    {"type": "string", "description": "Conversion id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Unknown or expired", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/conversions/{id}/artifacts/{kind}/{format}": {
            "get": {
                "description": "Renders the K4 workbook or the trade statement of a conversion in the requested format.",
                "produces": [
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
                    "text/csv",
                    "application/pdf"
                ],
                "tags": ["conversions"],
                "summary": "Download an artifact",
                "parameters": [
                    {"type": "string", "description": "Conversion id", "name": "id", "in": "path", "required": true},
                    {"enum": ["k4", "statement"], "type": "string", "description": "Artifact kind", "name": "kind", "in": "path", "required": true},
                    {"enum": ["xlsx", "csv", "pdf"], "type": "string", "description": "Output format", "name": "format", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Artifact", "schema": {"type": "file"}},
                    "400": {"description": "Unknown kind or format", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Unknown or expired", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Renderer unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "description": "Always returns OK if the service is running",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Returns ready if the conversion log database is reachable",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        }
    },
    "definitions": {
        "dto.ArtifactLink": {
            "type": "object",
            "properties": {
                "filename": {"type": "string", "example": "2024_K4_Statement.xlsx"},
                "format": {"type": "string", "example": "xlsx"},
                "kind": {"type": "string", "example": "k4"},
                "url": {"type": "string", "example": "/api/v1/conversions/3f0c5a6e-7f1e-4a53-9e0c-2c1e0f7b9a10/artifacts/k4/xlsx"}
            }
        },
        "dto.ConversionResponse": {
            "type": "object",
            "properties": {
                "artifacts": {"type": "array", "items": {"$ref": "#/definitions/dto.ArtifactLink"}},
                "created_at": {"type": "string"},
                "expires_at": {"type": "string"},
                "id": {"type": "string", "example": "3f0c5a6e-7f1e-4a53-9e0c-2c1e0f7b9a10"},
                "preview": {"type": "array", "items": {"$ref": "#/definitions/dto.PreviewRowResponse"}},
                "source_filename": {"type": "string", "example": "from_2024-01-01_to_2024-12-31.csv"},
                "tax_year": {"type": "string", "example": "2024"},
                "totals": {"$ref": "#/definitions/dto.TotalsResponse"},
                "transaction_count": {"type": "integer", "example": 2},
                "unique_security_count": {"type": "integer", "example": 1}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "no sell transactions found"},
                "message": {"type": "string", "example": "No sell transactions found in this CSV file. Please upload a file containing sell trades."},
                "timestamp": {"type": "string"}
            }
        },
        "dto.PreviewRowResponse": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "15.03.2024"},
                "instrument": {"type": "string", "example": "AAPL"},
                "isin": {"type": "string", "example": "US0378331005"},
                "label": {"type": "string", "example": "... 25 more transactions ..."},
                "profit_loss": {"type": "string", "example": "14,25 kr"},
                "quantity": {"type": "string", "example": "1.000000"},
                "separator": {"type": "boolean"},
                "total_sek": {"type": "string", "example": "150,00 kr"}
            }
        },
        "dto.TotalsResponse": {
            "type": "object",
            "properties": {
                "estimated_tax": {"type": "string", "example": "15.68"},
                "gains": {"type": "string", "example": "52.25"},
                "losses": {"type": "string", "example": "0.00"},
                "net": {"type": "string", "example": "52.25"},
                "total_acquisition_cost": {"type": "string", "example": "55.00"},
                "total_proceeds": {"type": "string", "example": "550.00"}
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
	Title:            "k4bridge API",
	Description:      "Converts Trading 212 CSV exports into Swedish K4 (Bilaga B) statements.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
