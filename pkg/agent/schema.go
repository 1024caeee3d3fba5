package agent

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// MetadataSchema returns the JSON Schema describing the agent frontmatter,
// suitable for editor-side validation of agent markdown files.
func MetadataSchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	return reflector.Reflect(&Metadata{})
}

// MetadataSchemaJSON returns the frontmatter schema as indented JSON.
func MetadataSchemaJSON() (string, error) {
	schema := MetadataSchema()
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal frontmatter schema")
	}
	return string(out), nil
}
