package builder

import (
	"github.com/xuri/excelize/v2"

	"github.com/aurea33/forge-go/pkg/forge/models"
	"github.com/aurea33/forge-go/pkg/forge/theme"
)

// Number formats by declared column type. Text columns get none.
var numFmtByType = map[string]string{
	models.TypeDate:     "yyyy-mm-dd",
	models.TypeCurrency: `"$"#,##0.00;[Red]-"$"#,##0.00`,
	models.TypePercent:  "0.00%",
	models.TypeNumber:   "#,##0.00",
}

// styleKey enumerates every cell-style variant a sheet can need. excelize
// style IDs are per-workbook, so the stylist caches one ID per variant.
type styleKey struct {
	numFmt string
	header bool
	zebra  bool
	bold   bool
	accent bool
	title  bool
	warn   bool
}

type stylist struct {
	f     *excelize.File
	pal   theme.Palette
	cache map[styleKey]int
}

func newStylist(f *excelize.File, pal theme.Palette) *stylist {
	return &stylist{f: f, pal: pal, cache: make(map[styleKey]int)}
}

func (s *stylist) id(k styleKey) (int, error) {
	if id, ok := s.cache[k]; ok {
		return id, nil
	}

	st := &excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: s.pal.Grid, Style: 1},
			{Type: "right", Color: s.pal.Grid, Style: 1},
			{Type: "top", Color: s.pal.Grid, Style: 1},
			{Type: "bottom", Color: s.pal.Grid, Style: 1},
		},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "left", WrapText: true},
		Font:      &excelize.Font{Color: s.pal.Text},
	}

	switch {
	case k.title:
		st.Font = &excelize.Font{Bold: true, Size: 16, Color: s.pal.HeaderText}
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.pal.HeaderBg}}
		st.Alignment = &excelize.Alignment{Vertical: "center", Horizontal: "center"}
	case k.header:
		st.Font = &excelize.Font{Bold: true, Color: s.pal.HeaderText}
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.pal.HeaderBg}}
		st.Alignment = &excelize.Alignment{Vertical: "center", Horizontal: "center"}
	case k.warn:
		st.Font = &excelize.Font{Bold: true, Color: s.pal.Accent}
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.pal.Zebra}}
	default:
		if k.zebra {
			st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.pal.Zebra}}
		}
		if k.bold {
			st.Font.Bold = true
		}
		if k.accent {
			st.Font = &excelize.Font{Bold: true, Size: 15, Color: s.pal.Accent}
		}
	}

	if k.numFmt != "" {
		nf := k.numFmt
		st.CustomNumFmt = &nf
	}

	id, err := s.f.NewStyle(st)
	if err != nil {
		return 0, err
	}
	s.cache[k] = id
	return id, nil
}

// set styles one cell; errors surface because a broken style pass means a
// broken document, not a cosmetic glitch.
func (s *stylist) set(sheet, cell string, k styleKey) error {
	id, err := s.id(k)
	if err != nil {
		return err
	}
	return s.f.SetCellStyle(sheet, cell, cell, id)
}
