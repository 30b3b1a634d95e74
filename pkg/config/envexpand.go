package config

import (
	"bytes"
	"os"
	"text/template"
)

// ExpandEnv expands environment references in YAML content using Go template
// syntax: {{.WORKSPACE_DEMO_ID}} becomes the value of that variable. Template
// syntax is used instead of $VAR so literal dollar signs in tool arguments
// and regex-like values pass through untouched. Missing variables expand to
// the empty string; validation catches required fields left empty.
func ExpandEnv(data []byte) []byte {
	tmpl, err := template.New("catalog").Option("missingkey=zero").Parse(string(data))
	if err != nil {
		// Content without template syntax passes through unchanged.
		return data
	}

	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if idx := bytes.IndexByte([]byte(kv), '='); idx > 0 {
			env[kv[:idx]] = kv[idx+1:]
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, env); err != nil {
		return data
	}
	return buf.Bytes()
}
