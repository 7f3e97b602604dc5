/*
Package parser implements a Pratt parser (top-down operator precedence
parser) for the Kaleidoscope-family surface syntax.

It follows the teacher's structure (parser/parser.go's Parser struct,
advance/expectAdvance/expectNext helpers, collected Errors) but drives a
one-token lookahead instead of two, since Lexer only needs to expose
Current/Next, and dispatches on the operator-precedence Table (package
operator) instead of a fixed switch, since this language's infix/prefix
operator set is user-extensible mid-parse.

Grammar:

	top        := (def | extern | expr)*
	def        := 'def' proto expr
	extern     := 'extern' proto
	proto      := (identifier | 'operator' spelling [number]) '(' ident (',' ident)* ')'
	expr       := unary (binop unary)*              -- Pratt precedence
	unary      := PUNCT unary | primary
	primary    := '(' expr ')' | number | identifier ['(' arglist? ')']
	            | 'if' '(' expr ')' 'then' expr 'else' expr
	            | 'for' identifier '=' expr ',' expr [',' expr] 'in' expr
	            | 'let' (identifier ['=' expr])+ 'in' expr
	arglist    := expr (',' expr)*
*/
package parser

import (
	"fmt"

	"github.com/kale-lang/kalc/ast"
	"github.com/kale-lang/kalc/lexer"
	"github.com/kale-lang/kalc/operator"
	"github.com/kale-lang/kalc/token"
)

// Parser drives a Lexer and an operator.Table to produce a forest of
// top-level AST nodes.
type Parser struct {
	lex *lexer.Lexer
	ops *operator.Table
	cur token.Token

	errors []string
}

// New creates a Parser over src with a fresh, pre-seeded operator table.
func New(src string) *Parser {
	return NewWithTable(src, operator.New())
}

// NewWithTable creates a Parser over src using an existing operator
// table (e.g. to continue parsing with operators a previous compile unit
// installed).
func NewWithTable(src string, ops *operator.Table) *Parser {
	p := &Parser{
		lex: lexer.New(src),
		ops: ops,
	}
	p.cur = p.lex.Current()
	return p
}

// Operators returns the table the parser consults and mutates. Passing
// it to a later parser (see NewWithTable) keeps the precedences and
// prefix operators installed so far; the lowering pass does not read it.
func (p *Parser) Operators() *operator.Table {
	return p.ops
}

// Errors returns every diagnostic recorded while parsing.
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) advance() {
	p.cur = p.lex.Next()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf("[%d:%d] %s", p.cur.Line, p.cur.Column, fmt.Sprintf(format, args...))
	p.errors = append(p.errors, msg)
}

func (p *Parser) isPunct(lit string) bool {
	return p.cur.Kind == token.Punct && p.cur.Literal == lit
}

// expectPunct records an error and returns false unless the current
// token is the punctuation lit.
func (p *Parser) expectPunct(lit string) bool {
	if !p.isPunct(lit) {
		p.errorf("expected %q, got %s", lit, p.cur)
		return false
	}
	return true
}

// Parse consumes the whole token stream and returns the top-level node
// forest. On the first production that fails — a malformed token or an
// unrecoverable grammar error — every accumulated node is discarded and
// a single Error node is returned instead. This core deliberately fails
// the whole compile unit rather than attempting partial recovery.
func (p *Parser) Parse() []ast.Node {
	var out []ast.Node
	for p.cur.Kind != token.Empty {
		if p.cur.Kind == token.Invalid {
			p.errorf("%s", p.cur.Literal)
			return []ast.Node{&ast.Error{Message: p.lastError()}}
		}

		var node ast.Node
		switch p.cur.Kind {
		case token.Def:
			node = p.parseDef()
		case token.Extern:
			node = p.parseExtern()
		default:
			node = p.parseTopLevelExpr()
		}

		if node == nil {
			return []ast.Node{&ast.Error{Message: p.lastError()}}
		}
		out = append(out, node)
	}
	return out
}

func (p *Parser) lastError() string {
	if len(p.errors) == 0 {
		return "parse error"
	}
	return p.errors[len(p.errors)-1]
}

// parseDef handles `'def' proto expr`.
func (p *Parser) parseDef() ast.Node {
	p.advance() // consume 'def'
	proto := p.parseProto()
	if proto == nil {
		return nil
	}
	body := p.parseExpr()
	if body == nil {
		return nil
	}
	return &ast.Function{Proto: proto, Body: body}
}

// parseExtern handles `'extern' proto`.
func (p *Parser) parseExtern() ast.Node {
	p.advance() // consume 'extern'
	proto := p.parseProto()
	if proto == nil {
		return nil
	}
	return &ast.Extern{Proto: proto}
}

// parseProto handles `(identifier | 'operator' spelling [number]) '(' ident (',' ident)* ')'`.
// A user-operator prototype installs its precedence/prefix status into
// the operator table here, before its body (if any) is parsed — this is
// what lets `def operator&100(l,r) if(l) then r else 0` use `&` as soon
// as the token after its closing paren is reached.
func (p *Parser) parseProto() *ast.Prototype {
	var name string
	isOperator := false
	var precedence int64

	switch p.cur.Kind {
	case token.Identifier:
		name = p.cur.Literal
		p.advance()
	case token.Operator:
		isOperator = true
		name = p.cur.Literal
		p.advance()
		if p.cur.Kind == token.Number {
			precedence = int64(p.cur.Value)
			p.advance()
		}
	default:
		p.errorf("expected function name or operator declaration, got %s", p.cur)
		return nil
	}

	if !p.expectPunct("(") {
		return nil
	}
	p.advance()

	var params []string
	for p.cur.Kind == token.Identifier {
		params = append(params, p.cur.Literal)
		p.advance()
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}

	if !p.expectPunct(")") {
		return nil
	}
	p.advance()

	if isOperator {
		switch len(params) {
		case 1:
			p.ops.InstallPrefix(name)
		case 2:
			p.ops.Install(name, precedence)
		default:
			p.errorf("operator %q prototype must take 1 or 2 parameters, got %d", name, len(params))
			return nil
		}
	}

	return &ast.Prototype{Name: name, Params: params, IsOperator: isOperator, Precedence: precedence}
}

// parseTopLevelExpr parses a bare top-level expression.
func (p *Parser) parseTopLevelExpr() ast.Node {
	e := p.parseExpr()
	if e == nil {
		return nil
	}
	return e
}

// parseExpr parses `unary (binop unary)*` starting at minimum precedence.
func (p *Parser) parseExpr() ast.Expr {
	lhs := p.parseUnary()
	if lhs == nil {
		return nil
	}
	return p.parseBinRHS(0, lhs)
}

// parseBinRHS implements the classic Pratt loop:
//
//  1. Look up the current token's precedence; stop if it is absent or
//     below minPrec.
//  2. Consume the operator, parse its right operand as a unary.
//  3. If the next operator binds tighter, recurse to let it claim the
//     right operand first.
//  4. Fold into a BinExpr and loop.
func (p *Parser) parseBinRHS(minPrec int64, lhs ast.Expr) ast.Expr {
	for {
		spelling := p.cur.Spelling()
		prec, ok := p.ops.Lookup(spelling)
		if !ok || prec < minPrec {
			return lhs
		}

		op := spelling
		p.advance()

		rhs := p.parseUnary()
		if rhs == nil {
			return nil
		}

		nextPrec, nextOk := p.ops.Lookup(p.cur.Spelling())
		if nextOk && nextPrec > prec {
			rhs = p.parseBinRHS(prec+1, rhs)
			if rhs == nil {
				return nil
			}
		}

		lhs = &ast.BinExpr{Op: op, LHS: lhs, RHS: rhs}
	}
}

// parseUnary implements `unary := PUNCT unary | primary`. A leading
// punctuation byte is a prefix operator application only if it was
// installed via a `def operator SPELLING(v) ...` / `extern operator
// SPELLING(v)` prototype (p.ops.IsPrefix); anything else, including an
// undeclared punctuation byte, falls through to primary and is reported
// there as an unexpected token.
func (p *Parser) parseUnary() ast.Expr {
	if p.cur.Kind == token.Punct && p.ops.IsPrefix(p.cur.Literal) {
		op := p.cur.Literal
		p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{Op: op, Operand: operand}
	}
	return p.parsePrimary()
}

// parsePrimary implements the `primary` production.
func (p *Parser) parsePrimary() ast.Expr {
	switch {
	case p.cur.Kind == token.Invalid:
		p.errorf("%s", p.cur.Literal)
		return nil

	case p.isPunct("("):
		return p.parseParenExpr()

	case p.cur.Kind == token.Number:
		v := p.cur.Value
		p.advance()
		return &ast.Literal{Value: v}

	case p.cur.Kind == token.Identifier:
		return p.parseIdentifierExpr()

	case p.cur.Kind == token.If:
		return p.parseConditionalExpr()

	case p.cur.Kind == token.For:
		return p.parseForExpr()

	case p.cur.Kind == token.Let:
		return p.parseLetExpr()

	default:
		p.errorf("unexpected token %s", p.cur)
		return nil
	}
}

// parseParenExpr implements `'(' expr ')'`.
func (p *Parser) parseParenExpr() ast.Expr {
	p.advance() // consume '('
	inner := p.parseExpr()
	if inner == nil {
		return nil
	}
	if !p.expectPunct(")") {
		return nil
	}
	p.advance()
	return inner
}

// parseIdentifierExpr implements `identifier ['(' arglist? ')']`.
func (p *Parser) parseIdentifierExpr() ast.Expr {
	name := p.cur.Literal
	p.advance()

	if !p.isPunct("(") {
		return &ast.Variable{Name: name}
	}
	p.advance() // consume '('

	var args []ast.Expr
	if !p.isPunct(")") {
		for {
			arg := p.parseExpr()
			if arg == nil {
				return nil
			}
			args = append(args, arg)
			if p.isPunct(",") {
				p.advance()
				continue
			}
			break
		}
	}

	if !p.expectPunct(")") {
		return nil
	}
	p.advance()

	return &ast.CallExpr{Callee: name, Args: args}
}

// parseConditionalExpr implements `'if' '(' expr ')' 'then' expr 'else' expr`.
func (p *Parser) parseConditionalExpr() ast.Expr {
	p.advance() // consume 'if'
	if !p.expectPunct("(") {
		return nil
	}
	p.advance()

	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	if !p.expectPunct(")") {
		return nil
	}
	p.advance()

	if p.cur.Kind != token.Then {
		p.errorf("expected 'then', got %s", p.cur)
		return nil
	}
	p.advance()

	thenArm := p.parseExpr()
	if thenArm == nil {
		return nil
	}

	if p.cur.Kind != token.Else {
		p.errorf("expected 'else', got %s", p.cur)
		return nil
	}
	p.advance()

	elseArm := p.parseExpr()
	if elseArm == nil {
		return nil
	}

	return &ast.ConditionalExpr{Cond: cond, Then: thenArm, Else: elseArm}
}

// parseForExpr implements `'for' identifier '=' expr ',' expr [',' expr] 'in' expr`.
func (p *Parser) parseForExpr() ast.Expr {
	p.advance() // consume 'for'

	if p.cur.Kind != token.Identifier {
		p.errorf("expected induction variable name, got %s", p.cur)
		return nil
	}
	name := p.cur.Literal
	p.advance()

	if !p.expectPunct("=") {
		return nil
	}
	p.advance()

	init := p.parseExpr()
	if init == nil {
		return nil
	}

	if !p.expectPunct(",") {
		return nil
	}
	p.advance()

	cond := p.parseExpr()
	if cond == nil {
		return nil
	}

	var step ast.Expr
	if p.isPunct(",") {
		p.advance()
		step = p.parseExpr()
		if step == nil {
			return nil
		}
	}

	if p.cur.Kind != token.In {
		p.errorf("expected 'in', got %s", p.cur)
		return nil
	}
	p.advance()

	body := p.parseExpr()
	if body == nil {
		return nil
	}

	return &ast.ForExpr{Name: name, Init: init, Cond: cond, Step: step, Body: body}
}

// parseLetExpr implements `'let' (identifier ['=' expr])+ 'in' expr`.
// Bindings are consumed greedily, with an optional comma between them.
func (p *Parser) parseLetExpr() ast.Expr {
	p.advance() // consume 'let'

	var bindings []ast.Binding
	for p.cur.Kind == token.Identifier {
		name := p.cur.Literal
		p.advance()

		var init ast.Expr
		if p.isPunct("=") {
			p.advance()
			init = p.parseExpr()
			if init == nil {
				return nil
			}
		}
		bindings = append(bindings, ast.Binding{Name: name, Init: init})

		if p.isPunct(",") {
			p.advance()
		}
	}

	if len(bindings) == 0 {
		p.errorf("expected identifier in let binding, got %s", p.cur)
		return nil
	}

	if p.cur.Kind != token.In {
		p.errorf("expected 'in', got %s", p.cur)
		return nil
	}
	p.advance()

	body := p.parseExpr()
	if body == nil {
		return nil
	}

	return &ast.LetExpr{Bindings: bindings, Body: body}
}
