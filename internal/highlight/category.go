package highlight

// Category is a lexical class used purely for display coloring.
// The declared order is the pooling order: when two matches start at the
// same offset with the same length, the earlier category wins the sweep.
type Category int

const (
	CategoryPlain Category = iota
	CategoryBlockComment
	CategoryLineComment
	CategoryString
	CategoryNumber
	CategoryKeyword
	CategoryType
	CategoryError
)

var categoryNames = map[Category]string{
	CategoryPlain:        "plain",
	CategoryBlockComment: "blockComment",
	CategoryLineComment:  "lineComment",
	CategoryString:       "string",
	CategoryNumber:       "number",
	CategoryKeyword:      "keyword",
	CategoryType:         "type",
	CategoryError:        "error",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "plain"
}

// MarshalJSON encodes the category by name so the mobile renderer does not
// depend on enum ordering.
func (c Category) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// MarshalText covers map keys, so the palette serializes by name too.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Palette maps each category to the hex color the renderer applies.
// Plain text carries no color and uses the theme default.
var Palette = map[Category]string{
	CategoryBlockComment: "#6a9955",
	CategoryLineComment:  "#6a9955",
	CategoryString:       "#ce9178",
	CategoryNumber:       "#b5cea8",
	CategoryKeyword:      "#569cd6",
	CategoryType:         "#4ec9b0",
	CategoryError:        "#f44747",
}

// Color returns the display color for the category, or "" for plain text.
func (c Category) Color() string {
	return Palette[c]
}
