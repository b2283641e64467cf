// Package output serializes compiled report models.
package output

import (
	"encoding/json"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/models"
)

// ToJSON serializes a report to JSON.
func ToJSON(r *models.Report, pretty bool) ([]byte, error) {
	return marshal(r, pretty)
}

// SheetToJSON serializes a single sheet to JSON.
func SheetToJSON(s *models.Sheet, pretty bool) ([]byte, error) {
	return marshal(s, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
