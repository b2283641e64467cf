package models

import (
	"fmt"
	"maps"
	"strings"

	"github.com/tiendc/go-deepcopy"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/macros"
)

// Description is the document metadata block of a report.
type Description struct {
	Company     Expression `json:"company,omitempty"`
	Category    Expression `json:"category,omitempty"`
	Application Expression `json:"application,omitempty"`
	Author      Expression `json:"author,omitempty"`
	Version     Expression `json:"version,omitempty"`
	Title       Expression `json:"title,omitempty"`
	Subject     Expression `json:"subject,omitempty"`
	Comments    Expression `json:"comments,omitempty"`
}

// Report is the compiled structure of a report. It is read-only once
// compiled; CloneWithID derives independent variants.
type Report struct {
	// ID is the report identifier.
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	// User and Password are protection credentials.
	User     Expression `json:"user,omitempty"`
	Password Expression `json:"password,omitempty"`
	// PreserveTemplate is the declared preserveTemplate flag.
	PreserveTemplate bool `json:"preserve_template"`
	// Template is the reconstructed template container with all sheets
	// removed; nil unless the template was preserved.
	Template    []byte      `json:"template,omitempty"`
	Description Description `json:"description"`
	// TemplateProperties are the summary properties of the template file.
	TemplateProperties map[string]string `json:"template_properties,omitempty"`
	Sheets             []*Sheet          `json:"sheets"`
	Palette            *Palette          `json:"palette"`
	Listeners          []Listener        `json:"listeners,omitempty"`
	// Providers maps provider id to its definition.
	Providers map[string]*DataProvider `json:"providers"`

	// Macros is the report-local macro table; it overrides Registry.
	Macros map[string]macros.Func `json:"-" copy:"-"`
	// Registry is the process-wide macro registry.
	Registry *macros.Registry `json:"-" copy:"-"`
}

// NewReport returns an empty report with the given id.
func NewReport(id string) *Report {
	return &Report{
		ID:        id,
		Palette:   NewPalette(),
		Providers: make(map[string]*DataProvider),
		Macros:    make(map[string]macros.Func),
	}
}

// FindSheet returns the sheet with the given id.
func (r *Report) FindSheet(id string) *Sheet {
	for _, s := range r.Sheets {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// FindSection searches every sheet depth-first for a section id.
func (r *Report) FindSection(id string) *Section {
	for _, s := range r.Sheets {
		if found := s.FindSection(id); found != nil {
			return found
		}
	}
	return nil
}

// Provider returns the provider with the given id.
func (r *Report) Provider(id string) (*DataProvider, bool) {
	p, ok := r.Providers[id]
	return p, ok
}

// RegisterMacro adds a report-local macro.
func (r *Report) RegisterMacro(name string, fn macros.Func) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || fn == nil {
		return fmt.Errorf("%w: %q", macros.ErrInvalidName, name)
	}
	if r.Macros == nil {
		r.Macros = make(map[string]macros.Func)
	}
	r.Macros[key] = fn
	return nil
}

// Macro looks a macro up in the local table, then in the registry.
func (r *Report) Macro(name string) (macros.Func, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if fn, ok := r.Macros[key]; ok {
		return fn, true
	}
	return r.Registry.Lookup(key)
}

// CloneWithID returns a deep copy of the report carrying a new id. An empty
// id keeps the current one. The local macro table is copied; the registry
// is shared.
func (r *Report) CloneWithID(id string) (*Report, error) {
	clone := &Report{}
	if err := deepcopy.Copy(clone, *r); err != nil {
		return nil, fmt.Errorf("clone report %q: %w", r.ID, err)
	}
	if id = strings.TrimSpace(id); id != "" {
		clone.ID = id
	}
	if clone.Palette != nil {
		clone.Palette.index = nil
	}
	clone.Macros = maps.Clone(r.Macros)
	if clone.Macros == nil {
		clone.Macros = make(map[string]macros.Func)
	}
	clone.Registry = r.Registry
	return clone, nil
}

// Walk calls fn for every section of every sheet in document order.
func (r *Report) Walk(fn func(*Sheet, *Section)) {
	for _, sh := range r.Sheets {
		sh.Walk(func(s *Section) { fn(sh, s) })
	}
}
