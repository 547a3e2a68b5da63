package petrel

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/Dockerfile.tmpl
var defaultDockerfileTemplate string

// RenderTemplate renders a Dockerfile template with sprig's function set.
// A nil context means "the host environment", so templates can reference
// arbitrary env vars the way the shell would.
func RenderTemplate(text string, context map[string]string) (string, error) {
	if context == nil {
		context = envMap()
	}
	tmpl, err := template.New("dockerfile").Funcs(sprig.FuncMap()).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, context); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return b.String(), nil
}

// RenderTemplateFile renders the template at path, or the built-in template
// when path is empty.
func RenderTemplateFile(path string, context map[string]string) (string, error) {
	text := defaultDockerfileTemplate
	if path != "" {
		data, err := os.ReadFile(expandUser(path))
		if err != nil {
			return "", fmt.Errorf("read template: %w", err)
		}
		text = string(data)
	}
	return RenderTemplate(text, context)
}

func envMap() map[string]string {
	m := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}
