// Package menu holds the fixed pizza catalog offered on the phone line.
package menu

import "html"

const (
	Pepperoni  = "pepperoni"
	Hawaiian   = "hawaiian"
	Margherita = "margherita"
)

var catalog = map[string]string{
	"1": Pepperoni,
	"2": Hawaiian,
	"3": Margherita,
}

// phonetic holds SSML renderings for names the speech engine gets wrong.
var phonetic = map[string]string{
	Margherita: "<phoneme alphabet='ipa' ph='mɑr gəˈri tə;'>margherita</phoneme>",
}

// Lookup maps a keypad digit to a pizza name.
func Lookup(digit string) (string, bool) {
	pizza, ok := catalog[digit]
	return pizza, ok
}

// Pronounce returns the SSML fragment to speak for a pizza name. Names
// without a phonetic rendering are escaped so they read as plain text.
func Pronounce(name string) string {
	if p, ok := phonetic[name]; ok {
		return p
	}
	return html.EscapeString(name)
}
