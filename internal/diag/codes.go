package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002

	// syntax
	SynUnexpectedToken Code = 2001
	SynExpectName      Code = 2002
	SynUnclosedParen   Code = 2003
	SynUnbalancedParen Code = 2004
	SynNestingTooDeep  Code = 2005

	// io / project
	IOLoadFileError Code = 4001
	ProjManifestBad Code = 5001
	ProjNoSources   Code = 5002

	// internal consistency: a pipeline defect, never bad input
	IntUnknownNode Code = 9001
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	LexUnknownChar:        "Unrecognized character",
	LexUnterminatedString: "Unterminated string literal",
	SynUnexpectedToken:    "Unexpected token",
	SynExpectName:         "Expected a name after '('",
	SynUnclosedParen:      "Unclosed parenthesis",
	SynUnbalancedParen:    "Unbalanced closing parenthesis",
	SynNestingTooDeep:     "Call nesting too deep",
	IOLoadFileError:       "Failed to load file",
	ProjManifestBad:       "Invalid project manifest",
	ProjNoSources:         "No source files found",
	IntUnknownNode:        "Unknown node kind (internal error)",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("INT%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
