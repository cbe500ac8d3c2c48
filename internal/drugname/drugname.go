// Package drugname cleans OCR-extracted drug names into the canonical form
// used for registry lookup, storage and display.
package drugname

import (
	"net/url"
	"strings"
)

// SearchBaseURL is the public MFDS drug search page.
const SearchBaseURL = "https://nedrug.mfds.go.kr/searchDrug"

// Normalize trims raw and cuts it at the first "(", so "세레온캡슐(100mg)"
// becomes "세레온캡슐". Callers that need the raw spelling must keep it.
func Normalize(raw string) string {
	name := strings.TrimSpace(raw)
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	return name
}

// SearchURL returns the public registry search link for a drug name.
func SearchURL(name string) string {
	return SearchBaseURL + "?itemName=" + url.QueryEscape(Normalize(name))
}
