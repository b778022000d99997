package parser

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"jsbi2bigint/pkg/lexer"
)

// JSEmitter is responsible for transforming AST nodes into JavaScript code
type JSEmitter struct {
	indentLevel int
	buffer      bytes.Buffer
}

// NewJSEmitter creates a new JavaScript emitter
func NewJSEmitter() *JSEmitter {
	return &JSEmitter{
		indentLevel: 0,
	}
}

// Emit converts a program AST to JavaScript code
func (e *JSEmitter) Emit(program *Program) string {
	e.buffer.Reset()
	e.indentLevel = 0

	for _, stmt := range program.Statements {
		e.emitStatement(stmt)
	}

	return e.buffer.String()
}

// Helper methods

func (e *JSEmitter) indent() {
	e.indentLevel++
}

func (e *JSEmitter) dedent() {
	if e.indentLevel > 0 {
		e.indentLevel--
	}
}

func (e *JSEmitter) writeIndent() {
	for i := 0; i < e.indentLevel; i++ {
		e.buffer.WriteString("  ")
	}
}

func (e *JSEmitter) write(format string, args ...interface{}) {
	fmt.Fprintf(&e.buffer, format, args...)
}

func (e *JSEmitter) writeString(s string) {
	e.buffer.WriteString(s)
}

// --- Statements ---

// emitStatement writes one indented statement followed by a newline.
func (e *JSEmitter) emitStatement(stmt Statement) {
	e.writeIndent()
	e.emitStatementInline(stmt)
	e.writeString("\n")
}

// emitStatementInline writes a statement at the current position without the trailing newline.
// Nested lines are indented relative to the current indent level.
func (e *JSEmitter) emitStatementInline(stmt Statement) {
	switch s := stmt.(type) {
	case *VariableDeclaration:
		e.emitVariableDeclaration(s)
		e.writeString(";")
	case *FunctionDeclaration:
		e.emitFunctionLiteral(s.Function)
	case *ExpressionStatement:
		if startsAmbiguously(s.Expression) {
			e.writeString("(")
			e.emitExpression(s.Expression)
			e.writeString(");")
		} else {
			e.emitExpression(s.Expression)
			e.writeString(";")
		}
	case *BlockStatement:
		e.emitBlockStatement(s)
	case *IfStatement:
		e.emitIfStatement(s)
	case *WhileStatement:
		e.writeString("while (")
		e.emitExpression(s.Condition)
		e.writeString(") ")
		e.emitStatementInline(s.Body)
	case *ForStatement:
		e.emitForStatement(s)
	case *ReturnStatement:
		if s.ReturnValue == nil {
			e.writeString("return;")
			return
		}
		e.writeString("return ")
		e.emitExpression(s.ReturnValue)
		e.writeString(";")
	case *ThrowStatement:
		e.writeString("throw ")
		e.emitExpression(s.Value)
		e.writeString(";")
	case *BreakStatement:
		e.writeString("break;")
	case *ContinueStatement:
		e.writeString("continue;")
	case *EmptyStatement:
		e.writeString(";")
	case *ImportDeclaration:
		e.emitImportDeclaration(s)
	case *ExportNamedDeclaration:
		e.emitExportNamedDeclaration(s)
	case *ExportDefaultDeclaration:
		e.writeString("export default ")
		e.emitExpressionAt(s.Expression, ASSIGNMENT)
		if _, isFn := s.Expression.(*FunctionLiteral); !isFn {
			e.writeString(";")
		}
	default:
		e.write("/* Unsupported statement type: %T */", s)
	}
}

func (e *JSEmitter) emitVariableDeclaration(decl *VariableDeclaration) {
	e.writeString(decl.Kind)
	e.writeString(" ")
	for i, d := range decl.Declarators {
		if i > 0 {
			e.writeString(", ")
		}
		e.writeString(d.Name.Value)
		if d.Value != nil {
			e.writeString(" = ")
			e.emitExpressionAt(d.Value, ASSIGNMENT)
		}
	}
}

func (e *JSEmitter) emitBlockStatement(block *BlockStatement) {
	if len(block.Statements) == 0 {
		e.writeString("{}")
		return
	}
	e.writeString("{\n")
	e.indent()
	for _, stmt := range block.Statements {
		e.emitStatement(stmt)
	}
	e.dedent()
	e.writeIndent()
	e.writeString("}")
}

func (e *JSEmitter) emitIfStatement(stmt *IfStatement) {
	e.writeString("if (")
	e.emitExpression(stmt.Condition)
	e.writeString(") ")
	e.emitStatementInline(stmt.Consequence)
	if stmt.Alternative == nil {
		return
	}
	if _, isBlock := stmt.Consequence.(*BlockStatement); isBlock {
		e.writeString(" else ")
	} else {
		e.writeString("\n")
		e.writeIndent()
		e.writeString("else ")
	}
	e.emitStatementInline(stmt.Alternative)
}

func (e *JSEmitter) emitForStatement(stmt *ForStatement) {
	e.writeString("for (")
	switch init := stmt.Init.(type) {
	case *VariableDeclaration:
		e.emitVariableDeclaration(init)
	case *ExpressionStatement:
		e.emitExpression(init.Expression)
	}
	e.writeString(";")
	if stmt.Condition != nil {
		e.writeString(" ")
		e.emitExpression(stmt.Condition)
	}
	e.writeString(";")
	if stmt.Update != nil {
		e.writeString(" ")
		e.emitExpression(stmt.Update)
	}
	e.writeString(") ")
	e.emitStatementInline(stmt.Body)
}

func (e *JSEmitter) emitImportDeclaration(decl *ImportDeclaration) {
	e.writeString("import ")
	if len(decl.Specifiers) > 0 {
		var named []string
		wrote := false
		for _, spec := range decl.Specifiers {
			switch spec := spec.(type) {
			case *ImportDefaultSpecifier, *ImportNamespaceSpecifier:
				if wrote {
					e.writeString(", ")
				}
				e.writeString(spec.String())
				wrote = true
			case *ImportNamedSpecifier:
				named = append(named, spec.String())
			}
		}
		if len(named) > 0 {
			if wrote {
				e.writeString(", ")
			}
			e.writeString("{ " + strings.Join(named, ", ") + " }")
		}
		e.writeString(" from ")
	}
	e.writeString(decl.Source.String())
	e.writeString(";")
}

func (e *JSEmitter) emitExportNamedDeclaration(decl *ExportNamedDeclaration) {
	e.writeString("export ")
	if decl.Declaration != nil {
		e.emitStatementInline(decl.Declaration)
		return
	}
	if len(decl.Specifiers) == 0 {
		e.writeString("{}")
	} else {
		specs := make([]string, len(decl.Specifiers))
		for i, spec := range decl.Specifiers {
			specs[i] = spec.String()
		}
		e.writeString("{ " + strings.Join(specs, ", ") + " }")
	}
	if decl.Source != nil {
		e.writeString(" from ")
		e.writeString(decl.Source.String())
	}
	e.writeString(";")
}

// --- Expressions ---

// primary is the precedence of literals, identifiers and other self-delimiting expressions.
const primary = MEMBER + 1

// emitterPrecedence returns the binding strength of an expression as it will be printed.
func emitterPrecedence(x Expression) int {
	switch x := x.(type) {
	case *AssignmentExpression, *ArrowFunctionLiteral, *SpreadElement:
		return ASSIGNMENT
	case *TernaryExpression:
		return TERNARY
	case *InfixExpression:
		return operatorPrecedence(x.Operator)
	case *PrefixExpression, *TypeofExpression:
		return PREFIX
	case *UpdateExpression:
		if x.Prefix {
			return PREFIX
		}
		return POSTFIX
	case *CallExpression, *NewExpression, *MemberExpression, *IndexExpression:
		return MEMBER
	}
	return primary
}

// binaryPrecedences maps binary operators, spelled as in source, to their precedence.
var binaryPrecedences = map[string]int{
	"??":         COALESCE,
	"||":         LOGICAL_OR,
	"&&":         LOGICAL_AND,
	"|":          BITWISE_OR,
	"^":          BITWISE_XOR,
	"&":          BITWISE_AND,
	"==":         EQUALS,
	"!=":         EQUALS,
	"===":        EQUALS,
	"!==":        EQUALS,
	"<":          LESSGREATER,
	">":          LESSGREATER,
	"<=":         LESSGREATER,
	">=":         LESSGREATER,
	"in":         LESSGREATER,
	"instanceof": LESSGREATER,
	"<<":         SHIFT,
	">>":         SHIFT,
	">>>":        SHIFT,
	"+":          SUM,
	"-":          SUM,
	"*":          PRODUCT,
	"/":          PRODUCT,
	"%":          PRODUCT,
	"**":         POWER,
}

// operatorPrecedence returns the precedence of a binary operator spelled as in source.
func operatorPrecedence(op string) int {
	if prec, ok := binaryPrecedences[op]; ok {
		return prec
	}
	return LOWEST
}

// emitExpressionAt writes x, wrapping it in parentheses when it binds looser than minPrec.
func (e *JSEmitter) emitExpressionAt(x Expression, minPrec int) {
	if emitterPrecedence(x) < minPrec {
		e.writeString("(")
		e.emitExpression(x)
		e.writeString(")")
		return
	}
	e.emitExpression(x)
}

func (e *JSEmitter) emitExpression(expr Expression) {
	switch x := expr.(type) {
	case *Identifier:
		e.writeString(x.Value)
	case *NumberLiteral:
		if x.Token.Type == lexer.NUMBER && x.Token.Literal != "" {
			e.writeString(x.Token.Literal)
		} else {
			e.writeString(formatNumber(x.Value))
		}
	case *BigIntLiteral:
		if x.Token.Type == lexer.BIGINT && x.Token.Literal != "" {
			e.writeString(x.Token.Literal)
		} else {
			e.writeString(x.Value + "n")
		}
	case *StringLiteral:
		e.writeString(quoteString(x.Value, x.Quote))
	case *BooleanLiteral:
		e.writeString(strconv.FormatBool(x.Value))
	case *NullLiteral:
		e.writeString("null")
	case *ThisExpression:
		e.writeString("this")
	case *ArrayLiteral:
		e.writeString("[")
		e.emitExpressionList(x.Elements)
		e.writeString("]")
	case *ObjectLiteral:
		e.emitObjectLiteral(x)
	case *FunctionLiteral:
		e.emitFunctionLiteral(x)
	case *ArrowFunctionLiteral:
		e.emitArrowFunction(x)
	case *PrefixExpression:
		e.emitPrefixExpression(x)
	case *TypeofExpression:
		e.writeString("typeof ")
		e.emitExpressionAt(x.Operand, PREFIX)
	case *UpdateExpression:
		if x.Prefix {
			e.writeString(x.Operator)
			e.emitExpressionAt(x.Argument, MEMBER)
		} else {
			e.emitExpressionAt(x.Argument, MEMBER)
			e.writeString(x.Operator)
		}
	case *InfixExpression:
		e.emitInfixExpression(x)
	case *AssignmentExpression:
		e.emitExpressionAt(x.Left, MEMBER)
		e.write(" %s ", x.Operator)
		e.emitExpressionAt(x.Value, ASSIGNMENT)
	case *TernaryExpression:
		e.emitExpressionAt(x.Condition, COALESCE)
		e.writeString(" ? ")
		e.emitExpressionAt(x.Consequence, ASSIGNMENT)
		e.writeString(" : ")
		e.emitExpressionAt(x.Alternative, ASSIGNMENT)
	case *CallExpression:
		e.emitExpressionAt(x.Function, MEMBER)
		if x.Optional {
			e.writeString("?.")
		}
		e.writeString("(")
		e.emitExpressionList(x.Arguments)
		e.writeString(")")
	case *NewExpression:
		e.writeString("new ")
		if containsCall(x.Constructor) {
			e.writeString("(")
			e.emitExpression(x.Constructor)
			e.writeString(")")
		} else {
			e.emitExpressionAt(x.Constructor, MEMBER)
		}
		e.writeString("(")
		e.emitExpressionList(x.Arguments)
		e.writeString(")")
	case *MemberExpression:
		e.emitMemberObject(x.Object)
		if x.Optional {
			e.writeString("?.")
		} else {
			e.writeString(".")
		}
		e.writeString(x.Property.Value)
	case *IndexExpression:
		e.emitMemberObject(x.Left)
		if x.Optional {
			e.writeString("?.")
		}
		e.writeString("[")
		e.emitExpression(x.Index)
		e.writeString("]")
	case *SpreadElement:
		e.writeString("...")
		e.emitExpressionAt(x.Argument, ASSIGNMENT)
	case nil:
		e.writeString("/* nil */")
	default:
		e.write("/* Unsupported expression type: %T */", x)
	}
}

// emitMemberObject writes the object of a member or index access. Number literals are
// parenthesized so that the '.' is not read as a decimal point.
func (e *JSEmitter) emitMemberObject(obj Expression) {
	if _, isNum := obj.(*NumberLiteral); isNum {
		e.writeString("(")
		e.emitExpression(obj)
		e.writeString(")")
		return
	}
	e.emitExpressionAt(obj, MEMBER)
}

func (e *JSEmitter) emitExpressionList(list []Expression) {
	for i, item := range list {
		if i > 0 {
			e.writeString(", ")
		}
		e.emitExpressionAt(item, ASSIGNMENT)
	}
}

func (e *JSEmitter) emitInfixExpression(x *InfixExpression) {
	prec := operatorPrecedence(x.Operator)

	leftMin, rightMin := prec, prec+1
	if x.Operator == "**" {
		leftMin, rightMin = prec+1, prec
	}

	if needsMixedParens(x.Operator, x.Left) || (x.Operator == "**" && isUnary(x.Left)) {
		e.writeString("(")
		e.emitExpression(x.Left)
		e.writeString(")")
	} else {
		e.emitExpressionAt(x.Left, leftMin)
	}

	e.write(" %s ", x.Operator)

	if needsMixedParens(x.Operator, x.Right) {
		e.writeString("(")
		e.emitExpression(x.Right)
		e.writeString(")")
	} else {
		e.emitExpressionAt(x.Right, rightMin)
	}
}

// needsMixedParens reports whether operand must be parenthesized because ?? cannot be mixed
// with && or || without explicit grouping.
func needsMixedParens(op string, operand Expression) bool {
	inner, ok := operand.(*InfixExpression)
	if !ok {
		return false
	}
	switch op {
	case "??":
		return inner.Operator == "||" || inner.Operator == "&&"
	case "||", "&&":
		return inner.Operator == "??"
	}
	return false
}

// isUnary reports whether x is a unary expression, which may not appear as the base of **.
func isUnary(x Expression) bool {
	switch x := x.(type) {
	case *PrefixExpression, *TypeofExpression:
		return true
	case *UpdateExpression:
		return x.Prefix
	}
	return false
}

func (e *JSEmitter) emitPrefixExpression(x *PrefixExpression) {
	switch x.Operator {
	case "void", "delete":
		e.writeString(x.Operator + " ")
		e.emitExpressionAt(x.Right, PREFIX)
		return
	}

	e.writeString(x.Operator)

	operand := NewJSEmitter()
	operand.indentLevel = e.indentLevel
	operand.emitExpressionAt(x.Right, PREFIX)
	text := operand.buffer.String()

	// -(-a) and +(+a) must not collapse into -- or ++
	if (x.Operator == "-" || x.Operator == "+") && strings.HasPrefix(text, x.Operator) {
		e.writeString("(" + text + ")")
		return
	}
	e.writeString(text)
}

func (e *JSEmitter) emitFunctionLiteral(fn *FunctionLiteral) {
	e.writeString("function ")
	if fn.Name != nil {
		e.writeString(fn.Name.Value)
	}
	e.emitParameters(fn.Parameters)
	e.writeString(" ")
	e.emitBlockStatement(fn.Body)
}

func (e *JSEmitter) emitParameters(params []*Identifier) {
	names := make([]string, len(params))
	for i, param := range params {
		names[i] = param.Value
	}
	e.writeString("(" + strings.Join(names, ", ") + ")")
}

func (e *JSEmitter) emitArrowFunction(fn *ArrowFunctionLiteral) {
	if len(fn.Parameters) == 1 {
		e.writeString(fn.Parameters[0].Value)
	} else {
		e.emitParameters(fn.Parameters)
	}
	e.writeString(" => ")
	switch body := fn.Body.(type) {
	case *BlockStatement:
		e.emitBlockStatement(body)
	case Expression:
		if startsWithObject(body) {
			e.writeString("(")
			e.emitExpression(body)
			e.writeString(")")
		} else {
			e.emitExpressionAt(body, ASSIGNMENT)
		}
	}
}

func (e *JSEmitter) emitObjectLiteral(obj *ObjectLiteral) {
	if len(obj.Properties) == 0 {
		e.writeString("{}")
		return
	}
	e.writeString("{ ")
	for i, prop := range obj.Properties {
		if i > 0 {
			e.writeString(", ")
		}
		e.emitObjectProperty(prop)
	}
	e.writeString(" }")
}

func (e *JSEmitter) emitObjectProperty(prop *ObjectProperty) {
	if prop.Spread {
		e.writeString("...")
		e.emitExpressionAt(prop.Value, ASSIGNMENT)
		return
	}
	if prop.Computed {
		e.writeString("[")
		e.emitExpressionAt(prop.Key, ASSIGNMENT)
		e.writeString("]")
	} else {
		e.emitExpression(prop.Key)
	}
	if prop.Shorthand {
		return
	}
	if fn, ok := prop.Value.(*FunctionLiteral); ok && prop.Method {
		e.emitParameters(fn.Parameters)
		e.writeString(" ")
		e.emitBlockStatement(fn.Body)
		return
	}
	e.writeString(": ")
	e.emitExpressionAt(prop.Value, ASSIGNMENT)
}

// --- Helpers ---

// leftmost returns the expression printed first when x is emitted without parentheses.
func leftmost(x Expression) Expression {
	for {
		switch n := x.(type) {
		case *CallExpression:
			x = n.Function
		case *MemberExpression:
			x = n.Object
		case *IndexExpression:
			x = n.Left
		case *InfixExpression:
			x = n.Left
		case *AssignmentExpression:
			x = n.Left
		case *TernaryExpression:
			x = n.Condition
		case *UpdateExpression:
			if n.Prefix {
				return x
			}
			x = n.Argument
		default:
			return x
		}
	}
}

// startsAmbiguously reports whether an expression statement would begin with '{' or 'function'.
func startsAmbiguously(x Expression) bool {
	switch leftmost(x).(type) {
	case *ObjectLiteral, *FunctionLiteral:
		return true
	}
	return false
}

func startsWithObject(x Expression) bool {
	_, isObj := leftmost(x).(*ObjectLiteral)
	return isObj
}

// containsCall reports whether a `new` callee has a call in its member chain, in which case
// the call's argument list would otherwise be taken as the constructor arguments.
func containsCall(x Expression) bool {
	for {
		switch n := x.(type) {
		case *CallExpression:
			return true
		case *MemberExpression:
			x = n.Object
		case *IndexExpression:
			x = n.Left
		default:
			return false
		}
	}
}

// formatNumber prints a synthesized number literal in a form JavaScript reads back exactly.
func formatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsNaN(v):
		return "NaN"
	case v == math.Trunc(v) && math.Abs(v) < 1e21:
		return new(big.Float).SetFloat64(v).Text('f', 0)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// quoteString renders s as a JavaScript string literal using quote, or '"' when quote is zero.
func quoteString(s string, quote byte) string {
	if quote == 0 {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for i, r := range s {
		switch r {
		case rune(quote):
			b.WriteByte('\\')
			b.WriteByte(quote)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case 0:
			if i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
				b.WriteString(`\x00`)
			} else {
				b.WriteString(`\0`)
			}
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte(quote)
	return b.String()
}
