package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/models"
)

func area(row, height int) models.Area {
	return models.Area{Sheet: "Main", Row: row, Height: height, Columns: 3}
}

func sampleReport() *models.Report {
	r := models.NewReport("orders")
	r.Title = "Orders"
	r.Description.Author = "${user}"
	r.Palette.Register(excelize.Style{})
	r.Palette.Register(excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	r.Providers["rows"] = &models.DataProvider{ID: "rows", Kind: models.ProviderList, Data: "${orders}"}

	rowTemplate := area(4, 1)
	r.Sheets = []*models.Sheet{
		{
			ID:       "Main",
			Rendered: true,
			Sections: []*models.Section{
				{ID: "title", Kind: models.SectionPlain, Rendered: true, Template: area(0, 1)},
				{
					ID:         "body",
					Kind:       models.SectionGrouping,
					Rendered:   true,
					ProviderID: "rows",
					Template:   area(1, 4),
					Groups: []*models.GroupModel{{
						RowsCount: 1,
						Styles: []*models.GroupStyle{
							{Level: 0, Default: true, Template: area(1, 1)},
							{Level: 1, Template: area(2, 1)},
							{Level: 2, Template: area(3, 1)},
						},
					}},
					RowTemplate: &rowTemplate,
				},
				{
					ID:       "footer",
					Kind:     models.SectionComposite,
					Rendered: true,
					Template: area(5, 2),
					Sections: []*models.Section{
						{ID: "totals", Kind: models.SectionPlain, Template: area(5, 2)},
					},
				},
			},
		},
		{ID: "Empty", Rendered: true},
	}
	return r
}

func TestToJSON(t *testing.T) {
	r := sampleReport()

	compact, err := ToJSON(r, false)
	require.NoError(t, err)
	require.NotContains(t, string(compact), "\n")

	pretty, err := ToJSON(r, true)
	require.NoError(t, err)
	require.Contains(t, string(pretty), "\n  \"id\": \"orders\"")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(compact, &decoded))
	require.Equal(t, "orders", decoded["id"])
	require.NotContains(t, decoded, "Macros")
	require.Len(t, decoded["sheets"], 2)

	sheet, err := SheetToJSON(r.Sheets[0], false)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(sheet), `{"id":"Main"`))
}

func TestToYAMLKeepsKeyOrder(t *testing.T) {
	data, err := ToYAML(sampleReport())
	require.NoError(t, err)
	text := string(data)

	id := strings.Index(text, "id: orders")
	desc := strings.Index(text, "description:")
	sheets := strings.Index(text, "sheets:")
	require.True(t, id >= 0 && desc > id && sheets > desc, text)
	require.NotContains(t, text, "{\"")

	var decoded struct {
		ID          string `yaml:"id"`
		Description struct {
			Author string `yaml:"author"`
		} `yaml:"description"`
		Sheets []struct {
			ID string `yaml:"id"`
		} `yaml:"sheets"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Equal(t, "orders", decoded.ID)
	require.Equal(t, "${user}", decoded.Description.Author)
	require.Len(t, decoded.Sheets, 2)
	require.Equal(t, "Empty", decoded.Sheets[1].ID)
}

func TestSheetToYAMLQuotesAmbiguousStrings(t *testing.T) {
	data, err := SheetToYAML(&models.Sheet{ID: "2024", Title: "true", Rendered: true})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Equal(t, "2024", decoded["id"])
	require.Equal(t, "true", decoded["title"])
	require.Equal(t, true, decoded["rendered"])
}

func TestSheetLayout(t *testing.T) {
	rows := SheetLayout(sampleReport().Sheets[0])

	var got []string
	for _, row := range rows {
		got = append(got, row.Path+" "+row.Label)
	}
	require.Equal(t, []string{
		"title template",
		"body group 0 level 0 (default)",
		"body group 0 level 1",
		"body group 0 level 2",
		"body row",
		"footer/totals template",
	}, got)
	require.Equal(t, "rows", rows[1].Provider)
	require.Equal(t, models.SectionGrouping, rows[4].Kind)
}

func TestLayoutWorkbook(t *testing.T) {
	f, err := LayoutWorkbook(sampleReport())
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Main", "Empty", PaletteSheet}, f.GetSheetList())

	rows, err := f.GetRows("Main")
	require.NoError(t, err)
	require.Len(t, rows, 7)
	require.Equal(t, []string{"Section", "Kind", "Area", "Provider", "First Row", "Rows", "Range", "Hidden"}, rows[0])
	require.Equal(t, []string{"body", "grouping", "row", "rows", "5", "1", "A5:C5"}, rows[5][:7])
	require.Equal(t, "footer/totals", rows[6][0])
	require.Equal(t, "A6:C7", rows[6][6])

	empty, err := f.GetRows("Empty")
	require.NoError(t, err)
	require.Len(t, empty, 1)

	palette, err := f.GetRows(PaletteSheet)
	require.NoError(t, err)
	require.Len(t, palette, 3)
	require.Equal(t, "1", palette[2][0])

	styleID, err := f.GetCellStyle(PaletteSheet, "B3")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.True(t, style.Font.Bold)
}

func TestLayoutWorkbookAvoidsPaletteNameClash(t *testing.T) {
	r := models.NewReport("r")
	r.Sheets = []*models.Sheet{{ID: PaletteSheet}}

	f, err := LayoutWorkbook(r)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{PaletteSheet, PaletteSheet + "_"}, f.GetSheetList())
}

func TestLayoutWorkbookWithoutSheets(t *testing.T) {
	f, err := LayoutWorkbook(models.NewReport("r"))
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{PaletteSheet}, f.GetSheetList())
}
