package handoff

import (
	"bytes"
	"text/template"

	"github.com/pkg/errors"
)

// RenderPrompt fills a hand-off prompt template with the context payload.
// Rendering is deterministic: the same template and payload always produce
// the same output. Unknown payload keys in the template are an error so that
// authoring mistakes fail loudly instead of producing half-rendered prompts.
func RenderPrompt(promptTemplate string, payload map[string]string) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(promptTemplate)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse prompt template")
	}

	if payload == nil {
		payload = map[string]string{}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, payload); err != nil {
		return "", errors.Wrap(err, "failed to execute prompt template")
	}

	return buf.String(), nil
}

// ParsePrompt checks that a prompt template parses without rendering it.
// Used by the validation pass.
func ParsePrompt(promptTemplate string) error {
	_, err := template.New("prompt").Parse(promptTemplate)
	return errors.Wrap(err, "invalid prompt template")
}
