package schema

// The slot vocabulary is closed: extractor output may only name these keys.
// Date and time values are free-form here; the extractor normalises them to
// ISO date / 24h HH:MM after validation ("mañana", "3pm" are model-legal).
const extractorV1Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["intent", "confidence", "slots"],
  "properties": {
    "intent": {
      "enum": ["greeting", "info_services", "info_prices", "info_hours",
               "book", "cancel", "reschedule", "chitchat", "other"]
    },
    "confidence": { "type": "number", "minimum": 0, "maximum": 1 },
    "slots": {
      "type": "object",
      "properties": {
        "service_type":   { "type": "string", "minLength": 1 },
        "preferred_date": { "type": "string", "minLength": 1 },
        "preferred_time": { "type": "string", "minLength": 1 },
        "client_name":    { "type": "string", "minLength": 1 },
        "client_email":   { "type": "string", "minLength": 3 },
        "client_phone":   { "type": "string", "minLength": 5 },
        "staff_name":     { "type": "string", "minLength": 1 },
        "booking_id":     { "type": "string", "minLength": 1 }
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

// Plans carry structured calls only, no free-text fields anywhere.
const plannerV1Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["tool_calls", "missing_slots"],
  "properties": {
    "tool_calls": {
      "type": "array",
      "maxItems": 3,
      "items": {
        "type": "object",
        "required": ["tool", "args"],
        "properties": {
          "tool": { "type": "string", "minLength": 1 },
          "args": { "type": "object" }
        },
        "additionalProperties": false
      }
    },
    "missing_slots": {
      "type": "array",
      "items": {
        "enum": ["service_type", "preferred_date", "preferred_time",
                 "client_name", "client_email", "client_phone",
                 "staff_name", "booking_id"]
      },
      "uniqueItems": true
    }
  },
  "additionalProperties": false
}`

const responseV1Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["assistant", "tool_calls", "patch", "telemetry"],
  "properties": {
    "assistant": {
      "type": "object",
      "required": ["text", "suggested_replies"],
      "properties": {
        "text": { "type": "string", "minLength": 1, "maxLength": 600 },
        "suggested_replies": {
          "type": "array",
          "maxItems": 5,
          "items": { "type": "string" }
        }
      },
      "additionalProperties": false
    },
    "tool_calls": { "type": "array", "maxItems": 3 },
    "patch": {
      "type": "object",
      "required": ["set", "remove", "cache_invalidation_keys"],
      "properties": {
        "set":    { "type": "object" },
        "remove": { "type": "array", "items": { "type": "string" } },
        "cache_invalidation_keys": { "type": "array", "items": { "type": "string" } }
      },
      "additionalProperties": false
    },
    "telemetry": {
      "type": "object",
      "required": ["route", "total_ms"],
      "properties": {
        "route": { "enum": ["legacy", "slm_pipeline"] },
        "total_ms": { "type": "number", "minimum": 0 }
      }
    }
  },
  "additionalProperties": false
}`
