package xlreport

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/cfb"
	"github.com/ukaji3/xlreport-go/pkg/xlreport/xls"
)

// trimmedStreams are removed from the container before the sheet-less
// workbook stream is written back.
var trimmedStreams = []string{
	"Workbook",
	"WORKBOOK",
	"\x05SummaryInformation",
	"\x05DocumentSummaryInformation",
}

// preserveTemplate replaces the workbook stream of the container with a copy
// of the workbook that has no sheets and drops the summary property sets.
// All other streams and storages are written back unchanged.
func preserveTemplate(c *cfb.Container, wb *xls.Workbook, log logrus.FieldLogger) ([]byte, error) {
	skeleton := wb.WithoutSheets().Bytes()

	for _, name := range trimmedStreams {
		if err := c.Remove(name); err != nil {
			if errors.Is(err, cfb.ErrNotFound) {
				log.WithField("stream", name).Debug("stream not present in template")
				continue
			}
			return nil, err
		}
	}
	c.Put(workbookStream, skeleton)

	return c.Bytes()
}
