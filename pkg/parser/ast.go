package parser

import (
	"strings"

	"jsbi2bigint/pkg/lexer"
	"jsbi2bigint/pkg/source"
)

// --- Interfaces ---

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string // Returns the literal value of the token associated with the node
	String() string       // Returns the node printed as JavaScript (for debugging)
}

// Statement represents a statement node in the AST.
type Statement interface {
	Node
	statementNode()
}

// Expression represents an expression node in the AST.
type Expression interface {
	Node
	expressionNode()
}

// --- Program Node ---

// Program is the root node of the AST: one compilation unit.
type Program struct {
	Statements []Statement
	Source     *source.SourceFile
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	return NewJSEmitter().Emit(p)
}

// --- Module Statements ---

// ImportSpecifier is one binding introduced by an import declaration.
type ImportSpecifier interface {
	Node
	importSpecifierNode()
	LocalName() *Identifier
}

// ImportDeclaration represents `import <Specifiers> from <Source>` or a bare `import <Source>`.
type ImportDeclaration struct {
	Token      lexer.Token // The 'import' token
	Specifiers []ImportSpecifier
	Source     *StringLiteral
}

func (id *ImportDeclaration) statementNode()       {}
func (id *ImportDeclaration) TokenLiteral() string { return id.Token.Literal }
func (id *ImportDeclaration) String() string       { return statementString(id) }

// ImportDefaultSpecifier represents `import Local from ...`.
type ImportDefaultSpecifier struct {
	Token lexer.Token
	Local *Identifier
}

func (s *ImportDefaultSpecifier) importSpecifierNode()   {}
func (s *ImportDefaultSpecifier) TokenLiteral() string   { return s.Token.Literal }
func (s *ImportDefaultSpecifier) String() string         { return s.Local.Value }
func (s *ImportDefaultSpecifier) LocalName() *Identifier { return s.Local }

// ImportNamedSpecifier represents `{ Imported as Local }`.
type ImportNamedSpecifier struct {
	Token    lexer.Token
	Imported *Identifier
	Local    *Identifier
}

func (s *ImportNamedSpecifier) importSpecifierNode()   {}
func (s *ImportNamedSpecifier) TokenLiteral() string   { return s.Token.Literal }
func (s *ImportNamedSpecifier) LocalName() *Identifier { return s.Local }
func (s *ImportNamedSpecifier) String() string {
	if s.Imported.Value == s.Local.Value {
		return s.Local.Value
	}
	return s.Imported.Value + " as " + s.Local.Value
}

// ImportNamespaceSpecifier represents `* as Local`.
type ImportNamespaceSpecifier struct {
	Token lexer.Token
	Local *Identifier
}

func (s *ImportNamespaceSpecifier) importSpecifierNode()   {}
func (s *ImportNamespaceSpecifier) TokenLiteral() string   { return s.Token.Literal }
func (s *ImportNamespaceSpecifier) String() string         { return "* as " + s.Local.Value }
func (s *ImportNamespaceSpecifier) LocalName() *Identifier { return s.Local }

// ExportNamedDeclaration represents `export <Declaration>`, `export { a as b }` and
// `export { a } from "mod"`.
type ExportNamedDeclaration struct {
	Token       lexer.Token // The 'export' token
	Declaration Statement   // *VariableDeclaration or *FunctionDeclaration, or nil
	Specifiers  []*ExportSpecifier
	Source      *StringLiteral // nil unless re-exporting
}

func (ed *ExportNamedDeclaration) statementNode()       {}
func (ed *ExportNamedDeclaration) TokenLiteral() string { return ed.Token.Literal }
func (ed *ExportNamedDeclaration) String() string       { return statementString(ed) }

// ExportSpecifier is one `Local as Exported` entry of an export clause.
type ExportSpecifier struct {
	Token    lexer.Token
	Local    *Identifier
	Exported *Identifier
}

func (es *ExportSpecifier) TokenLiteral() string { return es.Token.Literal }
func (es *ExportSpecifier) String() string {
	if es.Local.Value == es.Exported.Value {
		return es.Local.Value
	}
	return es.Local.Value + " as " + es.Exported.Value
}

// ExportDefaultDeclaration represents `export default <Expression>`.
type ExportDefaultDeclaration struct {
	Token      lexer.Token
	Expression Expression
}

func (ed *ExportDefaultDeclaration) statementNode()       {}
func (ed *ExportDefaultDeclaration) TokenLiteral() string { return ed.Token.Literal }
func (ed *ExportDefaultDeclaration) String() string       { return statementString(ed) }

// --- Statement Nodes ---

// VariableDeclaration represents `var`, `let` or `const` with one or more declarators.
type VariableDeclaration struct {
	Token       lexer.Token // The VAR, LET or CONST token
	Kind        string      // "var", "let" or "const"
	Declarators []*VariableDeclarator
}

func (vd *VariableDeclaration) statementNode()       {}
func (vd *VariableDeclaration) TokenLiteral() string { return vd.Token.Literal }
func (vd *VariableDeclaration) String() string       { return statementString(vd) }

// VariableDeclarator is one `Name = Value` entry of a declaration. Value may be nil.
type VariableDeclarator struct {
	Token lexer.Token // The name token
	Name  *Identifier
	Value Expression
}

func (d *VariableDeclarator) TokenLiteral() string { return d.Token.Literal }
func (d *VariableDeclarator) String() string {
	if d.Value == nil {
		return d.Name.Value
	}
	return d.Name.Value + " = " + d.Value.String()
}

// FunctionDeclaration represents a named `function` statement.
type FunctionDeclaration struct {
	Token    lexer.Token
	Function *FunctionLiteral
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) String() string       { return statementString(fd) }

// ExpressionStatement represents a statement consisting of a single expression.
type ExpressionStatement struct {
	Token      lexer.Token // The first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string       { return statementString(es) }

// BlockStatement represents a sequence of statements enclosed in braces.
type BlockStatement struct {
	Token      lexer.Token // The '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string       { return statementString(bs) }

// IfStatement represents `if (Condition) Consequence else Alternative`.
type IfStatement struct {
	Token       lexer.Token
	Condition   Expression
	Consequence Statement
	Alternative Statement // may be nil
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string       { return statementString(is) }

// WhileStatement represents a 'while (condition) body' statement.
type WhileStatement struct {
	Token     lexer.Token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) String() string       { return statementString(ws) }

// ForStatement represents a C-style 'for (Init; Condition; Update) Body' statement.
// Init is a *VariableDeclaration, an *ExpressionStatement, or nil.
type ForStatement struct {
	Token     lexer.Token
	Init      Statement
	Condition Expression
	Update    Expression
	Body      Statement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) String() string       { return statementString(fs) }

// ReturnStatement represents `return <ReturnValue>;`.
type ReturnStatement struct {
	Token       lexer.Token
	ReturnValue Expression // may be nil
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string       { return statementString(rs) }

// ThrowStatement represents `throw <Value>;`.
type ThrowStatement struct {
	Token lexer.Token
	Value Expression
}

func (ts *ThrowStatement) statementNode()       {}
func (ts *ThrowStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *ThrowStatement) String() string       { return statementString(ts) }

type BreakStatement struct {
	Token lexer.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) String() string       { return "break;" }

type ContinueStatement struct {
	Token lexer.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) String() string       { return "continue;" }

// EmptyStatement represents a lone ';'.
type EmptyStatement struct {
	Token lexer.Token
}

func (es *EmptyStatement) statementNode()       {}
func (es *EmptyStatement) TokenLiteral() string { return es.Token.Literal }
func (es *EmptyStatement) String() string       { return ";" }

// --- Expression Nodes ---

// Identifier represents an identifier in the source code.
type Identifier struct {
	Token lexer.Token
	Value string // The name of the identifier
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// NumberLiteral represents numeric literals. The source text is kept in Token.Literal.
type NumberLiteral struct {
	Token lexer.Token
	Value float64
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) String() string       { return expressionString(n) }

// BigIntLiteral represents a native BigInt literal such as 42n.
// Value holds the digits without the 'n' suffix and without separators.
type BigIntLiteral struct {
	Token lexer.Token
	Value string
}

func (b *BigIntLiteral) expressionNode()      {}
func (b *BigIntLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BigIntLiteral) String() string       { return expressionString(b) }

// StringLiteral represents string literals. Value is the decoded string.
type StringLiteral struct {
	Token lexer.Token
	Value string
	Quote byte // '\'' or '"'; zero means double quotes
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) String() string       { return quoteString(s.Value, s.Quote) }

// BooleanLiteral represents `true` or `false`.
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BooleanLiteral) String() string       { return b.Token.Literal }

// NullLiteral represents the `null` keyword.
type NullLiteral struct {
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "null" }

// ThisExpression represents the `this` keyword.
type ThisExpression struct {
	Token lexer.Token
}

func (te *ThisExpression) expressionNode()      {}
func (te *ThisExpression) TokenLiteral() string { return te.Token.Literal }
func (te *ThisExpression) String() string       { return "this" }

// ArrayLiteral represents an array literal expression (e.g., [1, "two"]).
type ArrayLiteral struct {
	Token    lexer.Token // The '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) String() string       { return expressionString(al) }

// ObjectProperty is one entry of an object literal.
// Key is an *Identifier, *StringLiteral or *NumberLiteral unless Computed.
// Spread entries have a nil Key and the spread operand in Value.
type ObjectProperty struct {
	Key       Expression
	Value     Expression
	Computed  bool
	Shorthand bool
	Method    bool // Value is a *FunctionLiteral printed as key(params) { ... }
	Spread    bool
}

// ObjectLiteral represents `{ key: value, ... }`.
type ObjectLiteral struct {
	Token      lexer.Token // The '{' token
	Properties []*ObjectProperty
}

func (ol *ObjectLiteral) expressionNode()      {}
func (ol *ObjectLiteral) TokenLiteral() string { return ol.Token.Literal }
func (ol *ObjectLiteral) String() string       { return expressionString(ol) }

// FunctionLiteral represents a function definition.
// function <Name>(<Parameters>) { <Body> }
type FunctionLiteral struct {
	Token      lexer.Token // The 'function' token
	Name       *Identifier // Optional function name
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) String() string       { return expressionString(fl) }

// ArrowFunctionLiteral represents (<Parameters>) => <Body>.
// Body is either an Expression or a *BlockStatement.
type ArrowFunctionLiteral struct {
	Token      lexer.Token // The '=>' token
	Parameters []*Identifier
	Body       Node
}

func (afl *ArrowFunctionLiteral) expressionNode()      {}
func (afl *ArrowFunctionLiteral) TokenLiteral() string { return afl.Token.Literal }
func (afl *ArrowFunctionLiteral) String() string       { return expressionString(afl) }

// PrefixExpression represents a prefix operator expression.
// <operator><Right>, e.g. !ok, -15, ~mask, void 0, delete o.k
type PrefixExpression struct {
	Token    lexer.Token // The prefix token, e.g. !
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string       { return expressionString(pe) }

// TypeofExpression represents a typeof operator expression.
type TypeofExpression struct {
	Token   lexer.Token // The 'typeof' token
	Operand Expression
}

func (te *TypeofExpression) expressionNode()      {}
func (te *TypeofExpression) TokenLiteral() string { return te.Token.Literal }
func (te *TypeofExpression) String() string       { return expressionString(te) }

// UpdateExpression represents prefix or postfix increment/decrement (e.g., ++x, x--).
type UpdateExpression struct {
	Token    lexer.Token
	Operator string // "++" or "--"
	Prefix   bool
	Argument Expression
}

func (ue *UpdateExpression) expressionNode()      {}
func (ue *UpdateExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UpdateExpression) String() string       { return expressionString(ue) }

// InfixExpression represents an infix operator expression.
// <Left> <operator> <Right>, e.g. 5 + 5, x instanceof Y
type InfixExpression struct {
	Token    lexer.Token // The operator token
	Operator string
	Left     Expression
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string       { return expressionString(ie) }

// AssignmentExpression represents plain or compound assignment (e.g., x = 5, y **= 2).
type AssignmentExpression struct {
	Token    lexer.Token // The assignment operator token
	Operator string
	Left     Expression
	Value    Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) String() string       { return expressionString(ae) }

// TernaryExpression represents a conditional (ternary) expression.
type TernaryExpression struct {
	Token       lexer.Token // The '?' token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (te *TernaryExpression) expressionNode()      {}
func (te *TernaryExpression) TokenLiteral() string { return te.Token.Literal }
func (te *TernaryExpression) String() string       { return expressionString(te) }

// CallExpression represents a function call.
// <Function>(<Arguments>), or <Function>?.(<Arguments>) when Optional.
type CallExpression struct {
	Token     lexer.Token // The '(' token
	Function  Expression
	Arguments []Expression
	Optional  bool
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string       { return expressionString(ce) }

// NewExpression represents a constructor call with the `new` keyword.
type NewExpression struct {
	Token       lexer.Token // The 'new' token
	Constructor Expression
	Arguments   []Expression
}

func (ne *NewExpression) expressionNode()      {}
func (ne *NewExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NewExpression) String() string       { return expressionString(ne) }

// MemberExpression represents accessing a property (e.g., object.property, object?.property).
type MemberExpression struct {
	Token    lexer.Token // The '.' or '?.' token
	Object   Expression
	Property *Identifier
	Optional bool
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) String() string       { return expressionString(me) }

// IndexExpression represents computed access (e.g., obj[key], obj?.[key]).
type IndexExpression struct {
	Token    lexer.Token // The '[' token
	Left     Expression
	Index    Expression
	Optional bool
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string       { return expressionString(ie) }

// SpreadElement represents `...Argument` in calls and array literals.
type SpreadElement struct {
	Token    lexer.Token // The '...' token
	Argument Expression
}

func (se *SpreadElement) expressionNode()      {}
func (se *SpreadElement) TokenLiteral() string { return se.Token.Literal }
func (se *SpreadElement) String() string       { return "..." + se.Argument.String() }

// --- Helpers ---

func statementString(s Statement) string {
	e := NewJSEmitter()
	e.emitStatement(s)
	return strings.TrimSuffix(e.buffer.String(), "\n")
}

func expressionString(x Expression) string {
	e := NewJSEmitter()
	e.emitExpression(x)
	return e.buffer.String()
}

// StartToken returns the first source token of a node, used to position diagnostics.
func StartToken(n Node) lexer.Token {
	switch n := n.(type) {
	case *CallExpression:
		return StartToken(n.Function)
	case *MemberExpression:
		return StartToken(n.Object)
	case *IndexExpression:
		return StartToken(n.Left)
	case *InfixExpression:
		return StartToken(n.Left)
	case *AssignmentExpression:
		return StartToken(n.Left)
	case *TernaryExpression:
		return StartToken(n.Condition)
	case *UpdateExpression:
		if !n.Prefix {
			return StartToken(n.Argument)
		}
		return n.Token
	case *ArrowFunctionLiteral:
		if len(n.Parameters) > 0 {
			return n.Parameters[0].Token
		}
		return n.Token
	case *Identifier:
		return n.Token
	case *NumberLiteral:
		return n.Token
	case *BigIntLiteral:
		return n.Token
	case *StringLiteral:
		return n.Token
	case *BooleanLiteral:
		return n.Token
	case *NullLiteral:
		return n.Token
	case *ThisExpression:
		return n.Token
	case *ArrayLiteral:
		return n.Token
	case *ObjectLiteral:
		return n.Token
	case *FunctionLiteral:
		return n.Token
	case *PrefixExpression:
		return n.Token
	case *TypeofExpression:
		return n.Token
	case *NewExpression:
		return n.Token
	case *SpreadElement:
		return n.Token
	case *VariableDeclarator:
		return n.Token
	case *VariableDeclaration:
		return n.Token
	case *ImportDeclaration:
		return n.Token
	case *ExpressionStatement:
		return n.Token
	}
	return lexer.Token{}
}
