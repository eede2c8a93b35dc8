// Package prompts loads the text templates used for the system preamble and
// for the notices the control loop feeds back to the model.
//
// Templates are Go text/template files addressed by file name and rendered
// with a map of named values, e.g.
//
//	loader.Render(prompts.ToolResponse, map[string]any{
//		"tool_name":     "call_subordinate",
//		"tool_response": answer,
//	})
//
// A built-in set is embedded in the binary; NewDirLoader overlays a directory
// on top of it so single files can be customized.
package prompts

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"text/template"
)

// Template names.
const (
	AgentSystem  = "agent.system.md"
	AgentTools   = "agent.tools.md"
	Error        = "fw.error.md"
	Intervention = "fw.intervention.md"
	Repeat       = "fw.msg_repeat.md"
	Cleanup      = "fw.msg_cleanup.md"
	ToolResponse = "fw.tool_response.md"
	ToolNotFound = "fw.tool_not_found.md"
)

//go:embed defaults/*.md
var embedded embed.FS

// Loader renders a named template with substitution values.
type Loader interface {
	Render(name string, vars map[string]any) (string, error)
}

// FSLoader renders templates read from an fs.FS. Parsed templates are cached;
// FSLoader is safe for concurrent use.
type FSLoader struct {
	fsys  fs.FS
	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewFSLoader creates a loader over fsys.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys, cache: map[string]*template.Template{}}
}

// NewDefaultLoader returns a loader over the embedded templates.
func NewDefaultLoader() *FSLoader {
	sub, err := fs.Sub(embedded, "defaults")
	if err != nil {
		panic(fmt.Sprintf("prompts: embedded defaults: %v", err))
	}
	return NewFSLoader(sub)
}

// NewDirLoader returns a loader that prefers files in dir and falls back to
// the embedded templates for anything dir does not provide.
func NewDirLoader(dir string) Loader {
	if dir == "" {
		return NewDefaultLoader()
	}
	return Chain{NewFSLoader(os.DirFS(dir)), NewDefaultLoader()}
}

// Render implements Loader.
func (l *FSLoader) Render(name string, vars map[string]any) (string, error) {
	tmpl, err := l.lookup(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

func (l *FSLoader) lookup(name string) (*template.Template, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tmpl, ok := l.cache[name]; ok {
		return tmpl, nil
	}

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read prompt %s: %w", name, err)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Funcs(funcs).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", name, err)
	}

	l.cache[name] = tmpl

	return tmpl, nil
}

var funcs = template.FuncMap{
	"default": func(defaultVal any, val any) any {
		if val == nil || val == "" {
			return defaultVal
		}
		return val
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"json":  toJSON,
}

// toJSON renders v as a JSON value for the ~~~json blocks of the notices.
// HTML characters are left alone so tool markup stays readable.
func toJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Chain tries each loader in order and returns the first template that exists.
type Chain []Loader

// Render implements Loader.
func (c Chain) Render(name string, vars map[string]any) (string, error) {
	var firstErr error
	for _, l := range c {
		out, err := l.Render(name, vars)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		firstErr = fmt.Errorf("prompt %s: no loaders configured", name)
	}

	return "", firstErr
}

// Static is an in-memory Loader, handy for tests and embedding callers.
type Static map[string]string

// Render implements Loader.
func (s Static) Render(name string, vars map[string]any) (string, error) {
	text, ok := s[name]
	if !ok {
		return "", fmt.Errorf("read prompt %s: %w", name, fs.ErrNotExist)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Funcs(funcs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse prompt %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}

	return buf.String(), nil
}
