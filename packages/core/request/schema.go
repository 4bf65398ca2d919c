package request

// fileSchema describes the structure of a request file. Unknown keys are
// allowed so newer files still load.
const fileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "method":   {"type": "string", "minLength": 1},
    "resource": {"type": "string"},
    "uri":      {"type": "string"},
    "endpoint": {"type": "string"},
    "body":     {"type": ["string", "object", "array", "number", "boolean", "null"]},
    "headers": {
      "oneOf": [
        {"type": "null"},
        {"type": "object", "additionalProperties": {"type": ["string", "number", "boolean", "null"]}},
        {"type": "array", "items": {
          "oneOf": [
            {"type": "string"},
            {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}, "value": {"type": ["string", "number", "boolean", "null"]}}}
          ]
        }}
      ]
    }
  },
  "required": ["method"],
  "anyOf": [
    {"required": ["resource"]},
    {"required": ["uri"]}
  ]
}`
