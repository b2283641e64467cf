package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/models"
)

// ParseColumnGroups parses a group-columns value such as "B-D,F-G" into
// zero-based column ranges. Blank tokens are skipped.
func ParseColumnGroups(value string) ([]models.ColumnGroup, error) {
	var groups []models.ColumnGroup
	for _, token := range strings.Split(value, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		// Each token is <col>-<col>
		names := strings.Split(token, "-")
		if len(names) != 2 || strings.TrimSpace(names[0]) == "" || strings.TrimSpace(names[1]) == "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidColumnGroup, value)
		}

		first, err := columnIndex(names[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidColumnGroup, value)
		}
		last, err := columnIndex(names[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidColumnGroup, value)
		}
		groups = append(groups, models.ColumnGroup{First: first, Last: last})
	}
	return groups, nil
}

// columnIndex converts column letters to a zero-based index (A=0).
func columnIndex(name string) (int, error) {
	n, err := excelize.ColumnNameToNumber(strings.TrimSpace(name))
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}
