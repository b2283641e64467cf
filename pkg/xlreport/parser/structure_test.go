package parser

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/macros"
	"github.com/ukaji3/xlreport-go/pkg/xlreport/models"
	"github.com/ukaji3/xlreport-go/pkg/xlreport/xls"
	"github.com/ukaji3/xlreport-go/pkg/xlreport/xls/xlstest"
)

func templateBook() xlstest.Book {
	return xlstest.Book{
		Fonts: []xlstest.Font{{Name: "Arial", Height: 200}, {Name: "Arial", Height: 200, Bold: true}},
		XFs:   []xlstest.XF{{}, {Font: 1}},
		Sheets: []xlstest.Sheet{
			{
				Name: "Main",
				Rows: 12,
				Cells: []xlstest.Cell{
					{Row: 0, Col: 0, Value: "Title", XF: 1},
					{Row: 0, Col: 1, Value: "${report.date}", XF: 1},
					{Row: 1, Col: 0, Value: "${row.name}"},
					{Row: 1, Col: 2, Value: 10},
					{Row: 2, Col: 0, Value: "${row.total}", XF: 1},
				},
				Header:     "&LL&CC&RR",
				Columns:    []xlstest.Column{{First: 0, Last: 0, Width: 5000}},
				Merged:     [][4]int{{0, 1, 0, 2}},
				PrintAreas: [][4]int{{0, 11, 0, 2}},
			},
			{Name: "Other", Rows: 2},
		},
	}
}

func compile(t *testing.T, structure string, opts BuildOptions) (*models.Report, error) {
	t.Helper()
	wb, err := xls.Parse(templateBook().Stream())
	require.NoError(t, err)
	root, err := ParseXML(strings.NewReader(structure))
	require.NoError(t, err)
	return Build(wb, root, opts)
}

const layoutStructure = `<?xml version="1.0"?>
<report id="orders" title="Orders" preserveTemplate="true">
  <description>
    <company>ACME</company>
  </description>
  <sheet id="main" zoom="75" group-columns="B-C">
    <plain-section id="header" height="1" provider="late"/>
    <grouping-section id="body" provider="all" indentColumns="A, B">
      <group discriminatorField="region" levelField="lvl" height="2">
        <group-style level="0" default="true"/>
        <group-style level="1"/>
      </group>
      <section-listener class="com.acme.Listener"/>
    </grouping-section>
    <composite-section id="footer" provider-usage="declared">
      <plain-section id="header" height="2"/>
      <group/>
      <grouping-section id="inner" rowHeight="2"/>
    </composite-section>
  </sheet>
  <list-data-provider id="all" data="${orders}">
    <filter>${row.active}</filter>
    <param name="limit" value="10"/>
  </list-data-provider>
  <filtered-data-provider id="late" predicate="${row.late}"/>
</report>`

func TestBuildLayoutIsContiguous(t *testing.T) {
	r, err := compile(t, layoutStructure, BuildOptions{})
	require.NoError(t, err)

	require.Equal(t, "orders", r.ID)
	require.Equal(t, models.Expression("user"), r.User)
	require.True(t, r.PreserveTemplate)
	require.Equal(t, models.Expression("ACME"), r.Description.Company)
	require.Len(t, r.Providers, 2)
	require.Equal(t, []models.Param{{Name: "limit", Value: "10"}}, r.Providers["all"].Params)
	require.Equal(t, models.Expression("${row.active}"), r.Providers["all"].Filter)

	sheet := r.FindSheet("main")
	require.NotNil(t, sheet)
	require.Equal(t, 75, sheet.Zoom)
	require.Equal(t, []models.ColumnGroup{{First: 1, Last: 2}}, sheet.ColumnGroups)
	require.Len(t, sheet.Sections, 3)

	header := sheet.Sections[0]
	require.Equal(t, 0, header.Template.Row)
	require.Equal(t, 1, header.Template.Height)
	require.Equal(t, "late", header.ProviderID)

	body := sheet.Sections[1]
	require.Equal(t, models.SectionGrouping, body.Kind)
	require.Equal(t, []string{"A", "B"}, body.IndentColumns)
	require.Len(t, body.Groups, 1)
	g := body.Groups[0]
	require.Equal(t, 2, g.RowsCount)
	require.True(t, g.Collapsible)
	require.Equal(t, 4, g.Height())
	require.Equal(t, 1, g.Styles[0].Template.Row)
	require.Equal(t, 3, g.Styles[1].Template.Row)
	require.Equal(t, 5, body.RowTemplate.Row)
	require.Equal(t, 1, body.RowTemplate.Height)
	require.Equal(t, 5, body.TemplateRowsCount())
	require.Len(t, body.SectionListeners, 1)

	footer := sheet.Sections[2]
	require.Equal(t, "DECLARED", footer.ProviderUsage)
	require.Equal(t, 6, footer.Template.Row)
	require.Equal(t, 6, footer.Sections[0].Template.Row)
	require.Equal(t, 2, footer.Sections[0].Template.Height)
	require.Len(t, footer.Groups, 1)
	require.Equal(t, 8, footer.Groups[0].Styles[0].Template.Row)
	inner := footer.Sections[1]
	require.Equal(t, 9, inner.RowTemplate.Row)
	require.Equal(t, 2, inner.RowTemplate.Height)
	require.Equal(t, 5, footer.TemplateRowsCount())

	// every area of the sheet follows its predecessor without gaps
	next := 0
	for _, sec := range sheet.Sections {
		for _, area := range sec.Areas() {
			require.Equal(t, next, area.Row, "area %s", area.Ref())
			next = area.End()
		}
	}
	require.Equal(t, 11, next)
}

func TestBuildSynthesizesDefaultGroupStyle(t *testing.T) {
	r, err := compile(t, `<report id="r"><sheet id="Main">
	  <grouping-section id="g"><group height="3" hidden="true"/></grouping-section>
	</sheet></report>`, BuildOptions{})
	require.NoError(t, err)

	g := r.FindSection("g").Groups[0]
	require.Len(t, g.Styles, 1)
	style := g.Styles[0]
	require.Equal(t, 0, style.Level)
	require.True(t, style.Default)
	require.Equal(t, 0, style.Template.Row)
	require.Equal(t, 3, style.Template.Height)
	require.True(t, style.Template.Hidden)
	require.Equal(t, 3, r.FindSection("g").RowTemplate.Row)
}

func TestBuildCapturesTemplate(t *testing.T) {
	r, err := compile(t, `<report id="r"><sheet id="Main">
	  <plain-section id="a" height="2" hidden="true"/>
	  <plain-section id="b"/>
	</sheet></report>`, BuildOptions{})
	require.NoError(t, err)

	sheet := r.Sheets[0]
	require.Equal(t, "Main", sheet.ID)
	require.Equal(t, "L", sheet.Header.Left)
	require.Equal(t, "C", sheet.Header.Center)
	require.Equal(t, "C", sheet.Header.Right)
	require.Equal(t, []int{5000, 2048, 2048}, sheet.ColumnWidths)
	require.True(t, sheet.PrintSetup.ValidSettings)
	require.False(t, sheet.PrintSetup.Landscape)

	a := r.FindSection("a").Template
	require.True(t, a.Hidden)
	require.Equal(t, "A1:C2", a.Ref())
	require.Len(t, a.Rows, 2)
	require.Equal(t, 15.0, a.Rows[0].Height)
	require.Equal(t, "${report.date}", a.Rows[0].Cells[1].Text)
	require.Equal(t, a.Rows[0].Cells[0].Style, a.Rows[0].Cells[1].Style)
	require.NotEqual(t, a.Rows[0].Cells[0].Style, a.Rows[1].Cells[0].Style)
	require.Equal(t, models.CellNumber, a.Rows[1].Cells[1].Kind)
	require.Equal(t, []models.CellRange{{FirstRow: 0, LastRow: 1, FirstCol: 0, LastCol: 2}}, a.Merged)
	require.Equal(t, 2, r.Palette.Len())

	b := r.FindSection("b").Template
	require.Equal(t, 2, b.Row)
	require.Empty(t, b.Merged)
	require.Equal(t, a.Rows[0].Cells[0].Style, b.Rows[0].Cells[0].Style)
}

func TestBuildPrintAreas(t *testing.T) {
	r, err := compile(t, `<report id="r"><sheet id="Main"/><sheet id="Other"/></report>`, BuildOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"$A$1:$C$12"}, r.Sheets[0].PrintAreas)
	require.Empty(t, r.Sheets[1].PrintAreas)
}

func TestBuildCopyRightHeader(t *testing.T) {
	r, err := compile(t, `<report id="r"><sheet id="Main"/></report>`, BuildOptions{CopyRightHeader: true})
	require.NoError(t, err)
	require.Equal(t, "R", r.Sheets[0].Header.Right)
}

func TestBuildIsDeterministic(t *testing.T) {
	first, err := compile(t, layoutStructure, BuildOptions{})
	require.NoError(t, err)
	second, err := compile(t, layoutStructure, BuildOptions{})
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name      string
		structure string
		expected  error
	}{
		{
			name:      "missing report id",
			structure: `<report title="x"/>`,
			expected:  ErrMissingAttribute,
		},
		{
			name:      "unknown root element",
			structure: `<not-a-report id="r"><sheet id="Main"/></not-a-report>`,
			expected:  ErrUnknownElement,
		},
		{
			name:      "unknown root child",
			structure: `<report id="r"><chart/></report>`,
			expected:  ErrUnknownElement,
		},
		{
			name:      "unknown section child",
			structure: `<report id="r"><sheet id="Main"><plain-section id="a"><cell/></plain-section></sheet></report>`,
			expected:  ErrUnknownElement,
		},
		{
			name:      "unknown description child",
			structure: `<report id="r"><description><colour/></description></report>`,
			expected:  ErrUnknownElement,
		},
		{
			name:      "section without id",
			structure: `<report id="r"><sheet id="Main"><plain-section/></sheet></report>`,
			expected:  ErrMissingAttribute,
		},
		{
			name:      "sql provider without datasource",
			structure: `<report id="r"><sql-data-provider id="p" processor="x"/></report>`,
			expected:  ErrMissingAttribute,
		},
		{
			name:      "listener without class or instance",
			structure: `<report id="r"><report-listener/></report>`,
			expected:  ErrMissingAttribute,
		},
		{
			name:      "param without name",
			structure: `<report id="r"><class-data-provider id="p" object="o" method="m"><param value="1"/></class-data-provider></report>`,
			expected:  ErrMissingAttribute,
		},
		{
			name:      "malformed boolean",
			structure: `<report id="r"><sheet id="Main" hidden="maybe"/></report>`,
			expected:  ErrInvalidAttribute,
		},
		{
			name:      "negative height",
			structure: `<report id="r"><sheet id="Main"><plain-section id="a" height="-1"/></sheet></report>`,
			expected:  ErrInvalidAttribute,
		},
		{
			name:      "duplicate sheet",
			structure: `<report id="r"><sheet id="Main"/><sheet id="Main"/></report>`,
			expected:  ErrDuplicateSheet,
		},
		{
			name:      "duplicate section",
			structure: `<report id="r"><sheet id="Main"><plain-section id="a"/><plain-section id="a"/></sheet></report>`,
			expected:  ErrDuplicateSection,
		},
		{
			name:      "duplicate nested section",
			structure: `<report id="r"><sheet id="Main"><composite-section id="c"><plain-section id="a"/><plain-section id="a"/></composite-section></sheet></report>`,
			expected:  ErrDuplicateSection,
		},
		{
			name:      "duplicate provider",
			structure: `<report id="r"><list-data-provider id="p" data="x"/><filtered-data-provider id="p" predicate="y"/></report>`,
			expected:  ErrDuplicateProvider,
		},
		{
			name:      "unknown provider",
			structure: `<report id="r"><sheet id="Main"><plain-section id="a" provider="nope"/></sheet></report>`,
			expected:  ErrUnknownProvider,
		},
		{
			name:      "sheet not in template",
			structure: `<report id="r"><sheet id="Missing"/></report>`,
			expected:  ErrSheetNotFound,
		},
		{
			name:      "malformed group-columns",
			structure: `<report id="r"><sheet id="Main" group-columns="A-B-C"/></report>`,
			expected:  ErrInvalidColumnGroup,
		},
		{
			name:      "area beyond template rows",
			structure: `<report id="r"><sheet id="Other"><plain-section id="a" height="3"/></sheet></report>`,
			expected:  ErrLayoutOverflow,
		},
		{
			name:      "unknown group child",
			structure: `<report id="r"><sheet id="Main"><grouping-section id="g"><group><style/></group></grouping-section></sheet></report>`,
			expected:  ErrUnknownElement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := compile(t, tt.structure, BuildOptions{})
			require.ErrorIs(t, err, tt.expected)
			require.Nil(t, r)
		})
	}
}

func TestBuildErrorNamesElementAndLine(t *testing.T) {
	_, err := compile(t, "<report id=\"r\">\n<sheet id=\"Main\">\n<plain-section/>\n</sheet>\n</report>", BuildOptions{})

	var ee *ElementError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "plain-section", ee.Element)
	require.Equal(t, 3, ee.Line)
	require.Contains(t, err.Error(), "line 3")
}

func TestParseXMLLineNumbers(t *testing.T) {
	doc := "<?xml version=\"1.0\"?>\n<report id=\"r\">\n\n  <sheet id=\"Main\"><plain-section id=\"a\"/>\n    <plain-section id=\"b\"\n      height=\"2\"/>\n  </sheet>\n</report>\n"
	root, err := ParseXML(strings.NewReader(doc))
	require.NoError(t, err)

	require.Equal(t, 2, root.Line)
	sheet := root.Children[0]
	require.Equal(t, 4, sheet.Line)
	require.Equal(t, 4, sheet.Children[0].Line)
	require.Equal(t, 5, sheet.Children[1].Line)
}

func TestBuildLogsSheetSummary(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	_, err := compile(t, `<report id="r"><sheet id="Main"><plain-section id="a" height="2"/></sheet></report>`,
		BuildOptions{Logger: logger})
	require.NoError(t, err)

	var summary *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "sheet compiled" {
			summary = e
		}
	}
	require.NotNil(t, summary)
	require.Equal(t, "Main", summary.Data["sheet"])
	require.Equal(t, 1, summary.Data["sections"])
	require.Equal(t, 12, summary.Data["template_rows"])
}

func TestParseXMLRejectsMalformedDocuments(t *testing.T) {
	for _, doc := range []string{"", "<report>", "<report></sheet>", "<a/><b/>"} {
		_, err := ParseXML(strings.NewReader(doc))
		require.ErrorIs(t, err, ErrMalformedStructure, "document %q", doc)
	}
}

func TestStrictExpressions(t *testing.T) {
	registry := macros.Default()

	_, err := compile(t, `<report id="r" password="${upper(secret)}">
	  <list-data-provider id="p" data="${customer.name + ' ' + trim(customer.city)}"/>
	  <sheet id="Main"><plain-section id="a" height="3"/></sheet>
	</report>`, BuildOptions{StrictExpressions: true, Registry: registry})
	require.NoError(t, err)

	_, err = compile(t, `<report id="r"><list-data-provider id="p" data="${orders +}"/></report>`,
		BuildOptions{StrictExpressions: true, Registry: registry})
	require.ErrorIs(t, err, ErrInvalidExpression)

	_, err = compile(t, `<report id="r"><list-data-provider id="p" data="${orders"/></report>`,
		BuildOptions{StrictExpressions: true, Registry: registry})
	require.ErrorIs(t, err, ErrInvalidExpression)

	// unchecked without the option
	_, err = compile(t, `<report id="r"><list-data-provider id="p" data="${orders +}"/></report>`, BuildOptions{})
	require.NoError(t, err)
}
