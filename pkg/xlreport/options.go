// Package xlreport compiles a BIFF8 report template and an XML structure
// description into an immutable report model.
package xlreport

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/macros"
)

// Options configures compilation.
type Options struct {
	// Logger receives compile progress. If nil, a logger writing warnings to
	// stderr is used.
	Logger logrus.FieldLogger
	// Macros is the process-wide macro registry attached to the report.
	// If nil, macros.Default() is used.
	Macros *macros.Registry
	// PreserveTemplate overrides the structure's preserveTemplate attribute.
	// If nil, the attribute decides.
	PreserveTemplate *bool
	// StrictExpressions rejects expressions whose placeholders do not
	// compile.
	StrictExpressions bool
	// CopyRightHeader copies the template's right header into each sheet's
	// right header instead of its center header.
	CopyRightHeader bool
}

// DefaultOptions returns default compile options.
func DefaultOptions() Options {
	return Options{}
}

// ShouldPreserveTemplate returns whether the trimmed template is embedded
// in the report, given the declared attribute.
func (o Options) ShouldPreserveTemplate(declared bool) bool {
	if o.PreserveTemplate != nil {
		return *o.PreserveTemplate
	}
	return declared
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

func (o Options) registry() *macros.Registry {
	if o.Macros != nil {
		return o.Macros
	}
	return macros.Default()
}
