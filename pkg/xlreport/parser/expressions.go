package parser

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/models"
)

// labeledExpression is an expression with the location it was declared at.
type labeledExpression struct {
	where string
	expr  models.Expression
}

// checkExpressions compiles every placeholder of the report. Macros of the
// report replace expr builtins of the same name; any other identifier is an
// untyped variable.
func checkExpressions(r *models.Report) error {
	var opts []expr.Option
	for _, name := range macroNames(r) {
		fn, _ := r.Macro(name)
		opts = append(opts, expr.DisableBuiltin(name), expr.Function(name, fn))
	}

	for _, le := range collectExpressions(r) {
		bodies, err := le.expr.Placeholders()
		if err != nil {
			return fmt.Errorf("%w: %s: %q: %v", ErrInvalidExpression, le.where, le.expr, err)
		}
		for _, body := range bodies {
			if _, err := expr.Compile(body, opts...); err != nil {
				return fmt.Errorf("%w: %s: %q: %v", ErrInvalidExpression, le.where, body, err)
			}
		}
	}
	return nil
}

func macroNames(r *models.Report) []string {
	seen := make(map[string]bool)
	var names []string
	if r.Registry != nil {
		for _, name := range r.Registry.Names() {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range r.Macros {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func collectExpressions(r *models.Report) []labeledExpression {
	var out []labeledExpression
	add := func(where string, exprs ...models.Expression) {
		for _, e := range exprs {
			if !e.IsEmpty() {
				out = append(out, labeledExpression{where: where, expr: e})
			}
		}
	}
	listeners := func(where string, ls []models.Listener) {
		for _, l := range ls {
			add(where, l.Class, l.Instance)
		}
	}

	add("report "+r.ID, r.User, r.Password)
	d := r.Description
	add("description", d.Company, d.Category, d.Application, d.Author, d.Version, d.Title, d.Subject, d.Comments)
	listeners("report-listener", r.Listeners)

	ids := make([]string, 0, len(r.Providers))
	for id := range r.Providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := r.Providers[id]
		where := "provider " + id
		add(where, p.Predicate, p.Data, p.DataSource, p.Processor, p.SQL, p.SQLRef, p.Object, p.Method, p.Filter, p.ParamsMap)
		for _, param := range p.Params {
			add(where, param.Name, param.Value)
		}
	}

	for _, sh := range r.Sheets {
		add("sheet "+sh.ID, sh.Title)
		for _, sec := range sh.Sections {
			for _, area := range sec.Areas() {
				for i, row := range area.Rows {
					for _, c := range row.Cells {
						if c.Kind != models.CellText || models.Expression(c.Text).IsConstant() {
							continue
						}
						where := fmt.Sprintf("sheet %s cell R%dC%d", sh.ID, area.Row+i+1, c.Column+1)
						add(where, models.Expression(c.Text))
					}
				}
			}
		}
	}
	r.Walk(func(sh *models.Sheet, s *models.Section) {
		where := "section " + s.ID
		listeners(where, s.SectionListeners)
		listeners(where, s.CellListeners)
	})
	return out
}
