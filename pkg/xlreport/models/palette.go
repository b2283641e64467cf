package models

import (
	"encoding/json"

	"github.com/xuri/excelize/v2"
)

// Palette is the report-scoped registry of cell formatting definitions.
// Equal definitions share one id.
type Palette struct {
	// Styles holds the definitions; a style id is an index into it.
	Styles []excelize.Style `json:"styles"`

	index map[string]int
}

// NewPalette returns an empty palette.
func NewPalette() *Palette {
	return &Palette{index: make(map[string]int)}
}

// Register returns the id of an equal definition, adding the style when it
// is new.
func (p *Palette) Register(style excelize.Style) int {
	p.reindex()
	key := styleKey(style)
	if id, ok := p.index[key]; ok {
		return id
	}
	id := len(p.Styles)
	p.Styles = append(p.Styles, style)
	p.index[key] = id
	return id
}

// Style returns the definition with the given id.
func (p *Palette) Style(id int) (excelize.Style, bool) {
	if p == nil || id < 0 || id >= len(p.Styles) {
		return excelize.Style{}, false
	}
	return p.Styles[id], true
}

// Len returns the number of registered definitions.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Styles)
}

// reindex rebuilds the lookup index after the palette was copied or
// decoded.
func (p *Palette) reindex() {
	if p.index != nil && len(p.index) == len(p.Styles) {
		return
	}
	p.index = make(map[string]int, len(p.Styles))
	for id, s := range p.Styles {
		key := styleKey(s)
		if _, ok := p.index[key]; !ok {
			p.index[key] = id
		}
	}
}

func styleKey(style excelize.Style) string {
	b, err := json.Marshal(style)
	if err != nil {
		// excelize.Style holds plain data only
		panic(err)
	}
	return string(b)
}
