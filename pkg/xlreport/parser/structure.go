package parser

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/macros"
	"github.com/ukaji3/xlreport-go/pkg/xlreport/models"
	"github.com/ukaji3/xlreport-go/pkg/xlreport/xls"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// Logger receives debug output; nil discards it.
	Logger logrus.FieldLogger
	// Registry is attached to the report as its process-wide macro registry.
	Registry *macros.Registry
	// CopyRightHeader copies the template's right header into the sheet's
	// right header. By default the center header is copied there.
	CopyRightHeader bool
	// StrictExpressions compiles every ${...} placeholder and rejects
	// syntax errors.
	StrictExpressions bool
}

type builder struct {
	wb     *xls.Workbook
	report *models.Report
	opts   BuildOptions
	log    logrus.FieldLogger
}

// Build compiles the structure document rooted at root against the template
// workbook. No partial report is returned on error.
func Build(wb *xls.Workbook, root *Node, opts BuildOptions) (*models.Report, error) {
	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	if root.Name != "report" {
		return nil, elementError(root, fmt.Errorf("%w: %s", ErrUnknownElement, root.Name))
	}
	var attrs reportAttrs
	if err := bindAttrs(root, &attrs); err != nil {
		return nil, elementError(root, err)
	}

	b := &builder{
		wb:     wb,
		report: models.NewReport(attrs.ID),
		opts:   opts,
		log:    log.WithField("report", attrs.ID),
	}
	r := b.report
	r.Title = attrs.Title
	r.User = models.Expression(attrs.User)
	if r.User.IsEmpty() {
		r.User = "user"
	}
	r.Password = models.Expression(attrs.Password)
	r.PreserveTemplate = boolOr(attrs.PreserveTemplate, false)
	r.Registry = opts.Registry

	// Providers, listeners and the description are registered before any
	// sheet so that sections may reference providers declared later.
	var sheets []*Node
	for _, n := range root.Children {
		var err error
		switch n.Name {
		case "description":
			err = b.parseDescription(n)
		case "filtered-data-provider", "list-data-provider", "sql-data-provider", "class-data-provider":
			err = b.parseProvider(n)
		case "report-listener":
			var l models.Listener
			if l, err = parseListener(n); err == nil {
				r.Listeners = append(r.Listeners, l)
			}
		case "sheet":
			sheets = append(sheets, n)
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownElement, n.Name)
		}
		if err != nil {
			return nil, elementError(n, err)
		}
	}

	for _, n := range sheets {
		sheet, err := b.parseSheet(n)
		if err != nil {
			return nil, elementError(n, err)
		}
		if r.FindSheet(sheet.ID) != nil {
			return nil, elementError(n, fmt.Errorf("%w: sheet %s already exists in report %s", ErrDuplicateSheet, sheet.ID, r.ID))
		}
		r.Sheets = append(r.Sheets, sheet)
	}

	if err := b.link(); err != nil {
		return nil, err
	}
	if opts.StrictExpressions {
		if err := checkExpressions(r); err != nil {
			return nil, err
		}
	}

	b.log.WithField("sheets", len(r.Sheets)).Debug("structure compiled")
	return r, nil
}

// link resolves every section's provider reference.
func (b *builder) link() error {
	var err error
	b.report.Walk(func(sh *models.Sheet, s *models.Section) {
		if err != nil || s.ProviderID == "" {
			return
		}
		if _, ok := b.report.Provider(s.ProviderID); !ok {
			err = fmt.Errorf("%w: %q referenced by section %s of sheet %s", ErrUnknownProvider, s.ProviderID, s.ID, sh.ID)
		}
	})
	return err
}

func (b *builder) parseDescription(n *Node) error {
	d := &b.report.Description
	for _, c := range n.Children {
		value := models.Expression(c.Text)
		switch c.Name {
		case "company":
			d.Company = value
		case "category":
			d.Category = value
		case "application":
			d.Application = value
		case "author":
			d.Author = value
		case "version":
			d.Version = value
		case "title":
			d.Title = value
		case "subject":
			d.Subject = value
		case "comments":
			d.Comments = value
		default:
			return elementError(c, fmt.Errorf("%w: %s", ErrUnknownElement, c.Name))
		}
	}
	return nil
}

func parseListener(n *Node) (models.Listener, error) {
	var attrs listenerAttrs
	if err := bindAttrs(n, &attrs); err != nil {
		return models.Listener{}, err
	}
	return models.Listener{
		Class:    models.Expression(attrs.Class),
		Instance: models.Expression(attrs.Instance),
	}, nil
}
