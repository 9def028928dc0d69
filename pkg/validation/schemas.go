package validation

// delaySchema bounds delays to mock.MaxDelayMs.
const delaySchema = `{"type": ["integer", "null"], "minimum": 0, "maximum": 86400000}`

const routeSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"method": {
			"oneOf": [
				{"enum": ["GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS", "TRACE", "*"]},
				{
					"type": "array",
					"minItems": 1,
					"uniqueItems": true,
					"items": {"enum": ["GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS", "TRACE"]}
				}
			]
		},
		"path": {
			"oneOf": [
				{"type": "string", "minLength": 1},
				{
					"type": "object",
					"properties": {"regexp": {"type": "string", "minLength": 1, "format": "regex"}},
					"required": ["regexp"],
					"additionalProperties": false
				}
			]
		},
		"delay": ` + delaySchema + `
	},
	"required": ["id", "method", "path"]
}`

const variantSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"handlerType": {"type": "string"},
		"disabled": {"type": "boolean"},
		"delay": ` + delaySchema + `,
		"options": {}
	},
	"required": ["id"]
}`

const collectionSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"from": {"type": "string", "minLength": 1},
		"routes": {"type": "array", "items": {"type": "string"}},
		"routeVariants": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["id"],
	"anyOf": [
		{"required": ["routes"]},
		{"required": ["routeVariants"]}
	]
}`
