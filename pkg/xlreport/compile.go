package xlreport

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/cfb"
	"github.com/ukaji3/xlreport-go/pkg/xlreport/models"
	"github.com/ukaji3/xlreport-go/pkg/xlreport/parser"
	"github.com/ukaji3/xlreport-go/pkg/xlreport/xls"
)

// workbookStream is the stream holding a BIFF8 workbook.
const workbookStream = "Workbook"

// Compile reads a template (a BIFF8 workbook inside a compound document) and
// a structure description and returns the compiled report. Both inputs are
// read completely before compiling. Every failure is a *CompileError.
func Compile(template, structure io.Reader, opts Options) (*models.Report, error) {
	log := opts.logger()

	tplData, err := io.ReadAll(template)
	if err != nil {
		return nil, NewCompileError("", fmt.Errorf("read template: %w", err))
	}
	xmlData, err := io.ReadAll(structure)
	if err != nil {
		return nil, NewCompileError("", fmt.Errorf("read structure: %w", err))
	}

	root, err := parser.ParseXML(bytes.NewReader(xmlData))
	if err != nil {
		return nil, NewCompileError("", err)
	}
	id := root.Attr("id")
	log = log.WithField("report", id)

	container, err := cfb.Read(bytes.NewReader(tplData))
	if err != nil {
		return nil, NewCompileError(id, fmt.Errorf("%w: %w", ErrMalformedTemplate, err))
	}
	stream, ok := container.Stream(workbookStream)
	if !ok {
		return nil, NewCompileError(id, fmt.Errorf("%w: no %s stream", ErrMalformedTemplate, workbookStream))
	}
	wb, err := xls.Parse(stream)
	if err != nil {
		return nil, NewCompileError(id, fmt.Errorf("%w: %w", ErrMalformedTemplate, err))
	}
	log.WithField("sheets", wb.SheetNames()).Debug("template loaded")

	report, err := parser.Build(wb, root, parser.BuildOptions{
		Logger:            log,
		Registry:          opts.registry(),
		CopyRightHeader:   opts.CopyRightHeader,
		StrictExpressions: opts.StrictExpressions,
	})
	if err != nil {
		return nil, NewCompileError(id, err)
	}

	props, err := container.Properties()
	if err != nil {
		log.WithError(err).Warn("template properties not readable")
	} else if len(props) > 0 {
		report.TemplateProperties = props
	}

	if opts.ShouldPreserveTemplate(report.PreserveTemplate) {
		data, err := preserveTemplate(container, wb, log)
		if err != nil {
			return nil, NewCompileError(id, err)
		}
		report.Template = data
	}

	log.WithFields(logrus.Fields{
		"sheets":    len(report.Sheets),
		"providers": len(report.Providers),
		"styles":    report.Palette.Len(),
	}).Info("report compiled")
	return report, nil
}

// CompileFiles compiles a template file and a structure file.
func CompileFiles(templatePath, structurePath string, opts Options) (*models.Report, error) {
	tpl, err := os.Open(templatePath)
	if err != nil {
		return nil, NewCompileError("", err)
	}
	defer tpl.Close()

	structure, err := os.Open(structurePath)
	if err != nil {
		return nil, NewCompileError("", err)
	}
	defer structure.Close()

	return Compile(tpl, structure, opts)
}
