package parser

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/models"
	"github.com/ukaji3/xlreport-go/pkg/xlreport/xls"
)

func (b *builder) parseSheet(n *Node) (*models.Sheet, error) {
	var attrs sheetAttrs
	if err := bindAttrs(n, &attrs); err != nil {
		return nil, err
	}
	tpl, ok := b.wb.Sheet(attrs.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, attrs.ID)
	}
	log := b.log.WithField("sheet", attrs.ID)
	log.Debug("compiling sheet")

	zoom, err := intOr(attrs.Zoom, 100)
	if err != nil {
		return nil, err
	}
	groups, err := ParseColumnGroups(attrs.GroupColumns)
	if err != nil {
		return nil, err
	}

	sheet := &models.Sheet{
		ID:           attrs.ID,
		Title:        models.Expression(attrs.Title),
		Hidden:       boolOr(attrs.Hidden, false),
		Rendered:     boolOr(attrs.Rendered, true),
		Protected:    boolOr(attrs.Protected, false),
		Zoom:         zoom,
		ColumnGroups: groups,
		Header: models.HeaderFooter{
			Left:   tpl.Header.Left,
			Center: tpl.Header.Center,
			Right:  tpl.Header.Center,
		},
		Footer: models.HeaderFooter{
			Left:   tpl.Footer.Left,
			Center: tpl.Footer.Center,
			Right:  tpl.Footer.Right,
		},
		PrintSetup: convertPrintSetup(tpl.PrintSetup),
	}
	if sheet.PrintAreas, err = printAreaRefs(tpl.PrintAreas); err != nil {
		return nil, err
	}
	if b.opts.CopyRightHeader {
		sheet.Header.Right = tpl.Header.Right
	}

	res := NewResolver(b.wb, tpl, b.report.Palette)
	sections, err := b.parseSheetSections(n.Children, res)
	if err != nil {
		return nil, err
	}
	sheet.Sections = sections

	columns := res.Columns()
	for _, g := range groups {
		columns = max(columns, g.Last+1, g.First+1)
	}
	sheet.ColumnWidths = make([]int, columns)
	sheet.ColumnHidden = make([]bool, columns)
	for i := 0; i < columns; i++ {
		sheet.ColumnWidths[i] = tpl.ColumnWidth(i)
		sheet.ColumnHidden[i] = tpl.ColumnHidden(i)
	}

	log.WithFields(logrus.Fields{
		"sections":      len(sections),
		"template_rows": res.Rows(),
	}).Debug("sheet compiled")
	return sheet, nil
}

func convertPrintSetup(ps xls.PrintSetup) models.PrintSetup {
	return models.PrintSetup{
		PaperSize:     ps.PaperSize,
		Scale:         ps.Scale,
		PageStart:     ps.PageStart,
		FitWidth:      ps.FitWidth,
		FitHeight:     ps.FitHeight,
		HeaderMargin:  ps.HeaderMargin,
		FooterMargin:  ps.FooterMargin,
		Landscape:     ps.Options&xls.SetupPortrait == 0,
		LeftToRight:   ps.Options&xls.SetupLeftToRight != 0,
		NoColor:       ps.Options&xls.SetupNoColor != 0,
		Draft:         ps.Options&xls.SetupDraft != 0,
		Notes:         ps.Options&xls.SetupNotes != 0,
		NoOrientation: ps.Options&xls.SetupNoOrientation != 0,
		UsePage:       ps.Options&xls.SetupUsePage != 0,
		ValidSettings: ps.Options&xls.SetupNoPrinterData == 0,
		Options:       ps.Options,
		HResolution:   ps.HResolution,
		VResolution:   ps.VResolution,
		Copies:        ps.Copies,
	}
}
