// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Template names. Each is loaded from <dir>/<name>.tmpl.
const (
	TemplateYear   = "year.html"
	TemplateEntry  = "entry.html"
	TemplateCSS    = "bib.css"
	TemplateJS     = "bib.js"
	TemplateFooter = "footer.html"
)

// templateNames lists every template the renderer needs.
var templateNames = []string{TemplateYear, TemplateEntry, TemplateCSS, TemplateJS, TemplateFooter}

// TemplateRenderer expands a named template with a key/value context.
type TemplateRenderer interface {
	Render(name string, data map[string]any) (string, error)
}

// Templates is a TemplateRenderer backed by text/template files.
type Templates struct {
	set map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

// LoadTemplates parses the fragment templates in dir. Every template in
// templateNames must be present.
func LoadTemplates(dir string) (*Templates, error) {
	t := &Templates{set: make(map[string]*template.Template, len(templateNames))}
	for _, name := range templateNames {
		path := filepath.Join(dir, name+".tmpl")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", name, err)
		}
		tmpl, err := template.New(name).Funcs(templateFuncs).Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.set[name] = tmpl
	}
	return t, nil
}

// Render executes the named template.
func (t *Templates) Render(name string, data map[string]any) (string, error) {
	tmpl, ok := t.set[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}
	return b.String(), nil
}
