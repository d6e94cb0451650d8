package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"time"

	"github.com/gymops/gymops/internal/navigation"
	"github.com/gymops/gymops/internal/shared"
	"github.com/gymops/gymops/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Role        string
	RoleLabel   string
	Menu        []navigation.MenuSection
	Data        any
}

// Frame is one rendered level of a composed page.
type Frame struct {
	Template  string
	Component string
	Title     string
	Props     map[string]string
}

// FrameData is what a frame template receives. Content holds the already
// rendered inner frame and is empty for the page itself.
type FrameData struct {
	TemplateData
	Frame   Frame
	Content template.HTML
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"sortedProps": sortedProps,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders into a buffer first so a template error never leaves a
// half written response behind.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	return write(w, status, buf.Bytes())
}

// RenderFrames renders frames innermost first, feeding each result into the
// Content of the frame wrapping it. frames are ordered outermost first.
func (e *Engine) RenderFrames(w http.ResponseWriter, frames []Frame, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	if len(frames) == 0 {
		return fmt.Errorf("view: nothing to render")
	}
	var content template.HTML
	for i := len(frames) - 1; i >= 0; i-- {
		var buf bytes.Buffer
		fd := FrameData{TemplateData: data, Frame: frames[i], Content: content}
		if err := e.templates.ExecuteTemplate(&buf, frames[i].Template, fd); err != nil {
			return fmt.Errorf("view: %s: %w", frames[i].Component, err)
		}
		content = template.HTML(buf.String())
	}
	return write(w, http.StatusOK, []byte(content))
}

func write(w http.ResponseWriter, status int, body []byte) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(body)
	return err
}

type prop struct {
	Name  string
	Value string
}

func sortedProps(props map[string]string) []prop {
	out := make([]prop, 0, len(props))
	for k, v := range props {
		out = append(out, prop{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
