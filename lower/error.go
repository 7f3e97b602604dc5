package lower

import "fmt"

// Kind distinguishes the categories of lowering failure.
type Kind int

const (
	// ParseFailure wraps an ast.Error node reaching the lowering pass: a
	// lex or parse failure already collapsed the whole compile unit
	// upstream, and Lower just surfaces that message.
	ParseFailure Kind = iota
	UnknownSymbol
	UnknownFunction
	ArityMismatch
	BadAssignment
	AlreadyDefined
	VerifierError
)

var kindNames = map[Kind]string{
	ParseFailure:    "ParseFailure",
	UnknownSymbol:   "UnknownSymbol",
	UnknownFunction: "UnknownFunction",
	ArityMismatch:   "ArityMismatch",
	BadAssignment:   "BadAssignment",
	AlreadyDefined:  "AlreadyDefined",
	VerifierError:   "VerifierError",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "LowerError"
}

// Error is a lowering failure. Func is the name of the top-level function
// being lowered when the failure occurred (empty for a failure that
// aborts the whole compile unit, such as a parse-level Error node).
type Error struct {
	Kind    Kind
	Func    string
	Message string
}

func (e *Error) Error() string {
	if e.Func == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: in %s: %s", e.Kind, e.Func, e.Message)
}
