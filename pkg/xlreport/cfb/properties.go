package cfb

import (
	"bytes"
	"fmt"

	"github.com/richardlehane/msoleps"
)

// Properties decodes the root-level property set streams
// ("\x05SummaryInformation", "\x05DocumentSummaryInformation", ...) and
// returns their named properties as text.
func (c *Container) Properties() (map[string]string, error) {
	result := make(map[string]string)
	props := msoleps.New()
	for _, e := range c.Root.Children {
		if e.Storage || len(e.Name) == 0 || len(e.Data) == 0 {
			continue
		}
		if !msoleps.IsMSOLEPS(uint16(e.Name[0])) {
			continue
		}
		if err := props.Reset(bytes.NewReader(e.Data)); err != nil {
			return nil, fmt.Errorf("property set %q: %w", e.Name[1:], err)
		}
		for _, p := range props.Property {
			if p == nil || p.Name == "" {
				continue
			}
			if v := p.String(); v != "" {
				result[p.Name] = v
			}
		}
	}
	return result, nil
}
