package schema

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the classification of a column.
type Kind int

const (
	// Categorical columns hold text labels.
	Categorical Kind = iota
	// Numeric columns hold numbers in every non-missing cell.
	Numeric
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "categorical"
}

// Dtype returns the dataframe-style dtype label used in info blocks. A
// numeric column is int64 only when every cell is an integer literal; any
// missing cell makes it float64.
func (k Kind) Dtype(integral bool) string {
	switch {
	case k != Numeric:
		return "object"
	case integral:
		return "int64"
	default:
		return "float64"
	}
}

// Value is a cell resolved to exactly one variant: Numeric, Categorical or missing.
type Value struct {
	kind    Kind
	missing bool
	num     float64
	text    string
}

// NumericValue returns a numeric value.
func NumericValue(f float64) Value { return Value{kind: Numeric, num: f} }

// CategoricalValue returns a text value.
func CategoricalValue(s string) Value { return Value{kind: Categorical, text: s} }

// Missing returns a null value of kind k.
func Missing(k Kind) Value { return Value{kind: k, missing: true} }

// Kind returns the variant.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the value is null.
func (v Value) IsMissing() bool { return v.missing }

// Float returns the numeric payload and whether v is a present numeric value.
func (v Value) Float() (float64, bool) {
	if v.missing || v.kind != Numeric {
		return 0, false
	}
	return v.num, true
}

// Text returns the text payload and whether v is a present categorical value.
func (v Value) Text() (string, bool) {
	if v.missing || v.kind != Categorical {
		return "", false
	}
	return v.text, true
}

// String renders numbers in their shortest exact form and text verbatim.
func (v Value) String() string {
	if v.missing {
		return ""
	}
	if v.kind == Numeric {
		return FormatFloat(v.num)
	}
	return v.text
}

// Equal reports variant and payload equality. Missing values are never equal.
func (v Value) Equal(o Value) bool {
	if v.missing || o.missing || v.kind != o.kind {
		return false
	}
	if v.kind == Numeric {
		return v.num == o.num
	}
	return v.text == o.text
}

// FormatFloat prints integral values without a fractional part.
func FormatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParseFloat parses a trimmed cell as a number.
func ParseFloat(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
