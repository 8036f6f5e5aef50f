package api_test

import (
	"context"
	"encoding/json"
	"net"

	"github.com/9seconds/geovisits/enrichlib"
	"github.com/qri-io/jsonschema"
	"github.com/stretchr/testify/mock"
)

type GeoLookupClientMock struct {
	mock.Mock
}

func (m *GeoLookupClientMock) Lookup(ctx context.Context, ip net.IP) (enrichlib.GeoRecord, error) {
	args := m.Called(ctx, ip)

	return args.Get(0).(enrichlib.GeoRecord), args.Error(1)
}

func (m *GeoLookupClientMock) Name() string {
	return m.Called().String(0)
}

func parseSchema(data string) *jsonschema.Schema {
	rv := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}

var (
	jsonSchemaError = parseSchema(`{
      "type": "object",
      "required": [
        "error"
      ],
      "additionalProperties": false,
      "properties": {
        "error": {
          "type": "object",
          "required": [
            "message",
            "context"
          ],
          "additionalProperties": false,
          "properties": {
            "message": {
              "type": "string",
              "minLength": 1
            },
            "context": {
              "type": "string"
            },
            "missing_columns": {
              "type": "array",
              "minItems": 1,
              "items": {
                "type": "string",
                "minLength": 1
              }
            }
          }
        }
      }
    }`)

	jsonSchemaStats = parseSchema(`{
      "type": "object",
      "required": [
        "results"
      ],
      "additionalProperties": false,
      "properties": {
        "results": {
          "type": "array",
          "items": {
            "type": "object",
            "required": [
              "name",
              "last_used",
              "runs_count",
              "success_count",
              "failure_count",
              "failure_by_kind"
            ],
            "additionalProperties": false,
            "properties": {
              "name": {
                "type": "string",
                "minLength": 1
              },
              "last_used": {
                "type": "integer",
                "minimum": 0
              },
              "runs_count": {
                "type": "integer",
                "minimum": 0
              },
              "success_count": {
                "type": "integer",
                "minimum": 0
              },
              "failure_count": {
                "type": "integer",
                "minimum": 0
              },
              "failure_by_kind": {
                "type": "object"
              }
            }
          }
        }
      }
    }`)

	jsonSchemaEnrich = parseSchema(`{
      "type": "object",
      "required": [
        "results",
        "pages",
        "summary",
        "metrics"
      ],
      "additionalProperties": false,
      "properties": {
        "results": {
          "type": "array",
          "items": {
            "type": "object",
            "required": [
              "ip",
              "page_visited",
              "country_name",
              "city",
              "latitude",
              "longitude",
              "connection_type",
              "is_eu"
            ],
            "additionalProperties": false,
            "properties": {
              "ip": {
                "type": "string",
                "minLength": 2
              },
              "page_visited": {
                "type": "string"
              },
              "country_name": {
                "type": ["string", "null"]
              },
              "city": {
                "type": ["string", "null"]
              },
              "latitude": {
                "type": ["number", "null"]
              },
              "longitude": {
                "type": ["number", "null"]
              },
              "connection_type": {
                "type": ["string", "null"]
              },
              "is_eu": {
                "type": ["boolean", "null"]
              }
            }
          }
        },
        "pages": {
          "type": "integer",
          "minimum": 0
        },
        "summary": {
          "type": "object",
          "required": [
            "records",
            "unique_ips",
            "invalid_ips",
            "lookups",
            "succeeded",
            "failed",
            "enriched"
          ]
        },
        "metrics": {
          "type": "object",
          "required": [
            "total_visits",
            "unique_pages",
            "countries",
            "connection_types",
            "eu_traffic_percent",
            "top_pages",
            "top_countries",
            "top_cities",
            "connection_type_hits",
            "map"
          ]
        }
      }
    }`)
)
