package models

// ColumnGroup is an inclusive range of zero-based column indexes.
type ColumnGroup struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// HeaderFooter holds the three sections of a page header or footer.
type HeaderFooter struct {
	Left   string `json:"left,omitempty"`
	Center string `json:"center,omitempty"`
	Right  string `json:"right,omitempty"`
}

// PrintSetup is a snapshot of the template sheet's page setup.
type PrintSetup struct {
	PaperSize     int     `json:"paper_size"`
	Scale         int     `json:"scale"`
	PageStart     int     `json:"page_start"`
	FitWidth      int     `json:"fit_width"`
	FitHeight     int     `json:"fit_height"`
	HeaderMargin  float64 `json:"header_margin"`
	FooterMargin  float64 `json:"footer_margin"`
	Landscape     bool    `json:"landscape"`
	LeftToRight   bool    `json:"left_to_right"`
	NoColor       bool    `json:"no_color"`
	Draft         bool    `json:"draft"`
	Notes         bool    `json:"notes"`
	NoOrientation bool    `json:"no_orientation"`
	UsePage       bool    `json:"use_page"`
	ValidSettings bool    `json:"valid_settings"`
	// Options holds the raw option bits.
	Options     int `json:"options"`
	HResolution int `json:"h_resolution"`
	VResolution int `json:"v_resolution"`
	Copies      int `json:"copies"`
}

// Sheet is one report sheet bound to a template sheet of the same name.
type Sheet struct {
	ID        string     `json:"id"`
	Title     Expression `json:"title,omitempty"`
	Hidden    bool       `json:"hidden"`
	Rendered  bool       `json:"rendered"`
	Protected bool       `json:"protected"`
	// Zoom is a percentage.
	Zoom         int           `json:"zoom"`
	ColumnGroups []ColumnGroup `json:"column_groups,omitempty"`
	Header       HeaderFooter  `json:"header"`
	Footer       HeaderFooter  `json:"footer"`
	PrintSetup   PrintSetup    `json:"print_setup"`
	// PrintAreas are the template's print ranges as absolute A1 references.
	PrintAreas []string `json:"print_areas,omitempty"`
	// ColumnWidths are in 1/256 of a character, one per template column.
	ColumnWidths []int      `json:"column_widths"`
	ColumnHidden []bool     `json:"column_hidden"`
	Sections     []*Section `json:"sections"`
}

// ColumnsCount returns the number of template columns the sheet uses.
func (s *Sheet) ColumnsCount() int {
	return len(s.ColumnWidths)
}

// FindSection finds a section by id anywhere in the sheet.
func (s *Sheet) FindSection(id string) *Section {
	for _, sec := range s.Sections {
		if sec.ID == id {
			return sec
		}
		if found := sec.FindSection(id); found != nil {
			return found
		}
	}
	return nil
}

// Walk calls fn for every section of the sheet in document order.
func (s *Sheet) Walk(fn func(*Section)) {
	for _, sec := range s.Sections {
		sec.Walk(fn)
	}
}
