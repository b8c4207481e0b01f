// Package theme resolves free-text theme hints to fixed color palettes.
package theme

import "strings"

// Key identifies one of the named palettes.
type Key string

const (
	KeyDarkGold    Key = "dark-gold"
	KeyGreenBlue   Key = "green-blue"
	KeyBlackSilver Key = "black-silver"
	KeyBlue        Key = "blue"
	KeyLight       Key = "light"
)

// Palette is the 7-color set driving all styling decisions. Colors are RGB
// hex without alpha, as excelize expects.
type Palette struct {
	Background string
	HeaderBg   string
	HeaderText string
	Text       string
	Grid       string
	Accent     string
	Zebra      string
}

// Resolve maps a free-text hint to a palette key. First-match-wins substring
// search in fixed priority order; anything unmatched falls back to dark-gold.
func Resolve(hint string) Key {
	t := strings.ToLower(hint)
	switch {
	case containsAny(t, "dark", "gold", "dorado"):
		return KeyDarkGold
	case containsAny(t, "verde", "green"):
		return KeyGreenBlue
	case containsAny(t, "blanco", "light"):
		return KeyLight
	case containsAny(t, "plata", "silver"):
		return KeyBlackSilver
	case containsAny(t, "azul", "blue"):
		return KeyBlue
	}
	return KeyDarkGold
}

// PaletteFor returns the palette for a key. Unknown keys get dark-gold.
func PaletteFor(key Key) Palette {
	switch key {
	case KeyLight:
		return Palette{
			Background: "FFFFFF",
			HeaderBg:   "111827",
			HeaderText: "FFFFFF",
			Text:       "111827",
			Grid:       "E5E7EB",
			Accent:     "2563EB",
			Zebra:      "F3F4F6",
		}
	case KeyGreenBlue:
		return Palette{
			Background: "0B1020",
			HeaderBg:   "0F172A",
			HeaderText: "FFFFFF",
			Text:       "F9FAFB",
			Grid:       "1F2937",
			Accent:     "22C55E",
			Zebra:      "0C1326",
		}
	case KeyBlackSilver:
		return Palette{
			Background: "070707",
			HeaderBg:   "0F0F0F",
			HeaderText: "FFFFFF",
			Text:       "F9FAFB",
			Grid:       "2A2A2A",
			Accent:     "94A3B8",
			Zebra:      "0B0B0B",
		}
	case KeyBlue:
		return Palette{
			Background: "0A1128",
			HeaderBg:   "14213D",
			HeaderText: "FFFFFF",
			Text:       "F9FAFB",
			Grid:       "1E293B",
			Accent:     "2563EB",
			Zebra:      "0D1530",
		}
	default:
		return Palette{
			Background: "07060A",
			HeaderBg:   "111827",
			HeaderText: "FFD166",
			Text:       "F9FAFB",
			Grid:       "2A2A2A",
			Accent:     "FFD166",
			Zebra:      "0B0A10",
		}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
