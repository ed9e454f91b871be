package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Paren is either '(' or ')'; Text tells which.
	Paren
	// Number is a run of ASCII digits.
	Number
	// String is the contents of a double-quoted literal.
	String
	// Name is a run of ASCII letters.
	Name
)

var kindNames = [...]string{
	Invalid: "invalid",
	EOF:     "eof",
	Paren:   "paren",
	Number:  "number",
	String:  "string",
	Name:    "name",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsEOF reports whether k marks the end of input.
func (k Kind) IsEOF() bool { return k == EOF }
