package main

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Simplici0/staffquote/internal/pricing"
)

const codeSchema = "SCHEMA_VIOLATION"

// proposalSchema checks the shape of a proposal request. Semantic checks
// (weekday names, clock format, grades) are left to pricing.Validate so every
// issue carries its specific code.
const proposalSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["positions"],
  "properties": {
    "title": {"type": "string", "maxLength": 200},
    "client": {"type": "string", "maxLength": 200},
    "save": {"type": "boolean"},
    "positions": {
      "type": "array",
      "maxItems": 200,
      "items": {
        "type": "object",
        "properties": {
          "function": {"type": "string"},
          "state": {"type": "string"},
          "city": {"type": "string"},
          "role": {"type": "string"},
          "workDays": {"type": "array", "items": {"type": "string"}},
          "startTime": {"type": "string"},
          "endTime": {"type": "string"},
          "headcount": {"type": "integer"},
          "suppressMealBreak": {"type": "boolean"},
          "materialCost": {"type": "number"},
          "pantry": {"type": "boolean"},
          "pantryAmount": {"type": "number"},
          "unhealthy": {"type": "boolean"},
          "unhealthyGrade": {"type": "integer"},
          "unhealthyBasis": {"type": "string"},
          "hazard": {"type": "boolean"}
        }
      }
    },
    "rules": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "function"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "state": {"type": "string"},
          "city": {"type": "string"},
          "function": {"type": "string", "minLength": 1},
          "wageFloor": {"type": "number", "minimum": 0},
          "additionalPay": {
            "type": "object",
            "properties": {
              "unhealthy": {"type": "boolean"},
              "unhealthyGrade": {"enum": [0, 10, 20, 40]},
              "hazard": {"type": "boolean"},
              "basis": {"enum": ["", "MINIMUM_WAGE", "ROLE_WAGE"]}
            }
          },
          "roles": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name"],
              "properties": {"name": {"type": "string", "minLength": 1}}
            }
          }
        }
      }
    },
    "defaults": {"type": ["object", "null"]}
  }
}`

func compileProposalSchema() (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(proposalSchema))
	if err != nil {
		return nil, fmt.Errorf("compile proposal schema: %w", err)
	}
	return schema, nil
}

// checkSchema returns a *pricing.ValidationError listing schema violations,
// or a plain error when the body is not JSON at all.
func checkSchema(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]pricing.Issue, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		issues = append(issues, pricing.Issue{
			Field:   e.Field(),
			Code:    codeSchema,
			Message: e.Description(),
		})
	}
	return &pricing.ValidationError{Issues: issues}
}
