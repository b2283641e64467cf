package parser

import (
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/xls"
)

// printAreaRefs converts template print ranges to absolute A1 references
// such as "$A$1:$D$10". A single-cell range yields "$A$1".
func printAreaRefs(ranges []xls.CellRange) ([]string, error) {
	var refs []string
	for _, r := range ranges {
		first, err := excelize.CoordinatesToCellName(r.FirstCol+1, r.FirstRow+1, true)
		if err != nil {
			return nil, err
		}
		if r.FirstRow == r.LastRow && r.FirstCol == r.LastCol {
			refs = append(refs, first)
			continue
		}
		last, err := excelize.CoordinatesToCellName(r.LastCol+1, r.LastRow+1, true)
		if err != nil {
			return nil, err
		}
		refs = append(refs, first+":"+last)
	}
	return refs, nil
}
