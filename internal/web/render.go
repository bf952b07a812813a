// Package web holds the HTML templates of the browser and their gin renderer
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templateFS embed.FS

const baseTemplate = "templates/base.html"

// Renderer implements gin's render.HTMLRender over the embedded pages.
// Every page is parsed together with base.html and executed as "base".
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// NewRenderer parses every page template
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		if file == baseTemplate {
			continue
		}
		name := path.Base(file)
		tmpl, err := template.New(name).Funcs(Funcs()).ParseFS(templateFS, baseTemplate, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Instance returns the render for one page
func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.pages[name]
	if !ok {
		tmpl = r.pages["error.html"]
		data = map[string]any{"Message": "unknown page " + name}
	}
	return render.HTML{Template: tmpl, Name: "base", Data: data}
}

// Pages lists the parsed page names
func (r *Renderer) Pages() []string {
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	return names
}
