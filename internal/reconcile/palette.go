package reconcile

import "math/rand"

// Color is a named display colour for calendar rendering.
type Color struct {
	Name string
	Hex  string
}

// Palette is the fixed set colours are drawn from. Collisions between
// records are allowed.
var Palette = []Color{
	{Name: "coral", Hex: "#FF6B6B"},
	{Name: "turquoise", Hex: "#4ECDC4"},
	{Name: "sky", Hex: "#45B7D1"},
	{Name: "salmon", Hex: "#FFA07A"},
	{Name: "mint", Hex: "#98D8C8"},
	{Name: "pink", Hex: "#F06292"},
	{Name: "lime", Hex: "#AED581"},
	{Name: "amber", Hex: "#FFD54F"},
	{Name: "teal", Hex: "#4DB6AC"},
	{Name: "lavender", Hex: "#9575CD"},
}

// IsPaletteColor reports whether hex is one of the palette colours.
func IsPaletteColor(hex string) bool {
	for _, c := range Palette {
		if c.Hex == hex {
			return true
		}
	}
	return false
}

func randomIndex(n int) int { return rand.Intn(n) }
