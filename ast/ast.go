/*
Package ast defines the abstract syntax tree produced by the parser and
consumed by the lowering pass.

Following the teacher's Visitor pattern (parser/node.go's NodeVisitor),
but collapsed to open recursion over a closed sum type rather than a
double-dispatch interface per node: each Node implements Accept, and a
Visitor has one method per node kind. There is no separate "statement vs
expression" interface split — every top-level construct (Function,
Extern, or a bare expression) is a Node, and every expression is also a
Node, matching spec.md §3's flat node set.
*/
package ast

// Node is the closed sum type every AST value belongs to.
type Node interface {
	// Accept dispatches to the matching method of v.
	Accept(v Visitor)
	node()
}

// Visitor receives exactly one call per node, dispatched by Accept. The
// lowering pass is the only production implementation; tests may swap in
// a recording visitor the way the teacher's test_visitor.go does.
type Visitor interface {
	VisitVariable(n *Variable)
	VisitLiteral(n *Literal)
	VisitUnaryExpr(n *UnaryExpr)
	VisitBinExpr(n *BinExpr)
	VisitCallExpr(n *CallExpr)
	VisitConditionalExpr(n *ConditionalExpr)
	VisitForExpr(n *ForExpr)
	VisitLetExpr(n *LetExpr)
	VisitPrototype(n *Prototype)
	VisitFunction(n *Function)
	VisitExtern(n *Extern)
	VisitError(n *Error)
}

// Expr is any Node that yields a value when lowered. It is a pure marker
// — every expression node also satisfies Node — but keeps parser
// signatures from having to say `ast.Node` when only a value-producing
// subtree is legal (e.g. a BinExpr's operands).
type Expr interface {
	Node
	expr()
}

// Variable is a reference to a named value: a parameter, a let binding,
// or a for-loop induction variable.
type Variable struct {
	Name string
}

func (*Variable) node() {}
func (*Variable) expr() {}
func (n *Variable) Accept(v Visitor) { v.VisitVariable(n) }

// Literal is a bare f64 constant.
type Literal struct {
	Value float64
}

func (*Literal) node() {}
func (*Literal) expr() {}
func (n *Literal) Accept(v Visitor) { v.VisitLiteral(n) }

// UnaryExpr applies a user-declared prefix operator to one operand.
type UnaryExpr struct {
	Op      string
	Operand Expr
}

func (*UnaryExpr) node() {}
func (*UnaryExpr) expr() {}
func (n *UnaryExpr) Accept(v Visitor) { v.VisitUnaryExpr(n) }

// BinExpr applies an infix operator — built-in (+, -, *, <, =) or
// user-declared — to two operands.
type BinExpr struct {
	Op  string
	LHS Expr
	RHS Expr
}

func (*BinExpr) node() {}
func (*BinExpr) expr() {}
func (n *BinExpr) Accept(v Visitor) { v.VisitBinExpr(n) }

// CallExpr invokes a declared function by name with positional args.
type CallExpr struct {
	Callee string
	Args   []Expr
}

func (*CallExpr) node() {}
func (*CallExpr) expr() {}
func (n *CallExpr) Accept(v Visitor) { v.VisitCallExpr(n) }

// ConditionalExpr is `if (Cond) then Then else Else`; both arms are
// required and the node always yields a value.
type ConditionalExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (*ConditionalExpr) node() {}
func (*ConditionalExpr) expr() {}
func (n *ConditionalExpr) Accept(v Visitor) { v.VisitConditionalExpr(n) }

// ForExpr is a counted loop: `for Name = Init, Cond [, Step] in Body`.
// Step is nil when omitted; lowering defaults it to 1.0.
type ForExpr struct {
	Name string
	Init Expr
	Cond Expr
	Step Expr // nil means the default step of 1.0
	Body Expr
}

func (*ForExpr) node() {}
func (*ForExpr) expr() {}
func (n *ForExpr) Accept(v Visitor) { v.VisitForExpr(n) }

// Binding is one name/initializer pair inside a LetExpr. Init is nil when
// omitted; lowering defaults it to 0.0.
type Binding struct {
	Name string
	Init Expr // nil means the default initializer of 0.0
}

// LetExpr introduces one or more shadowed bindings visible in Body.
type LetExpr struct {
	Bindings []Binding
	Body     Expr
}

func (*LetExpr) node() {}
func (*LetExpr) expr() {}
func (n *LetExpr) Accept(v Visitor) { v.VisitLetExpr(n) }

// Prototype is a function signature: a name and its parameter names.
// Name may be a plain identifier or a user-operator spelling (see
// Prototype.Precedence, set only for operator declarations).
type Prototype struct {
	Name       string
	Params     []string
	IsOperator bool
	// Precedence is only meaningful when IsOperator is true and
	// len(Params) == 2 (an infix declaration); it is installed into the
	// operator table before the function body is parsed.
	Precedence int64
}

func (*Prototype) node() {}
func (n *Prototype) Accept(v Visitor) { v.VisitPrototype(n) }

// Function is a `def` with a body.
type Function struct {
	Proto *Prototype
	Body  Expr
}

func (*Function) node() {}
func (n *Function) Accept(v Visitor) { v.VisitFunction(n) }

// Extern is a prototype-only declaration; its body is supplied by
// linkage and is out of the core's scope.
type Extern struct {
	Proto *Prototype
}

func (*Extern) node() {}
func (n *Extern) Accept(v Visitor) { v.VisitExtern(n) }

// Error replaces an entire top-level item when it could not be parsed.
// It carries the diagnostic that explains why.
type Error struct {
	Message string
}

func (*Error) node() {}
func (n *Error) Accept(v Visitor) { v.VisitError(n) }
