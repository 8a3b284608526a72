package dataset

import "strings"

// naTokens are cell values treated as missing in addition to blank cells.
var naTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a raw cell is a null value.
func IsMissing(cell string) bool {
	s := strings.TrimSpace(cell)
	if s == "" {
		return true
	}
	_, ok := naTokens[s]
	return ok
}
