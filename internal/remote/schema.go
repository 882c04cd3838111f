package remote

import jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

const itemSchemaJSON = `{
  "type": "object",
  "required": ["id", "todo", "completed"],
  "properties": {
    "id": {"type": "integer"},
    "todo": {"type": "string"},
    "completed": {"type": "boolean"},
    "userId": {"type": "integer"}
  }
}`

const listSchemaJSON = `{
  "type": "object",
  "required": ["todos"],
  "properties": {
    "todos": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "todo", "completed"],
        "properties": {
          "id": {"type": "integer"},
          "todo": {"type": "string"},
          "completed": {"type": "boolean"},
          "userId": {"type": "integer"}
        }
      }
    }
  }
}`

var (
	itemSchema = jsonschema.MustCompileString("item.json", itemSchemaJSON)
	listSchema = jsonschema.MustCompileString("list.json", listSchemaJSON)
)
