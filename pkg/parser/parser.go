package parser

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"jsbi2bigint/pkg/errors"
	"jsbi2bigint/pkg/lexer"
	"jsbi2bigint/pkg/source"
)

// --- Debug Flag ---
const debugParser = false

func debugPrint(format string, args ...interface{}) {
	if debugParser {
		fmt.Printf("[Parser Debug] "+format+"\n", args...)
	}
}

// --- End Debug Flag ---

// Parser takes a lexer and builds an AST.
type Parser struct {
	l      *lexer.Lexer
	source *source.SourceFile // cached from lexer
	errors []errors.Diagnostic

	curToken  lexer.Token
	peekToken lexer.Token
	pending   []lexer.Token // tokens read past peekToken by lookAhead

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// Parsing functions types for Pratt parser
type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression // Arg is the left side expression
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // =, +=, -=, *=, /=, %=, **=, &=, |=, ^=, <<=, >>=, >>>=, &&=, ||=, ??=
	TERNARY     // ?:
	COALESCE    // ??
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	BITWISE_OR  // |
	BITWISE_XOR // ^
	BITWISE_AND // &
	EQUALS      // ==, !=, ===, !==
	LESSGREATER // >, <, >=, <=, in, instanceof
	SHIFT       // <<, >>, >>>
	SUM         // + or -
	PRODUCT     // * or / or %
	POWER       // ** (right-associative)
	PREFIX      // -X or !X or ++X or --X or ~X
	POSTFIX     // X++ or X--
	CALL        // myFunction(X)
	MEMBER      // object.property, array[index]
)

// precedences maps operator tokens to their precedence.
var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:                      ASSIGNMENT,
	lexer.PLUS_ASSIGN:                 ASSIGNMENT,
	lexer.MINUS_ASSIGN:                ASSIGNMENT,
	lexer.ASTERISK_ASSIGN:             ASSIGNMENT,
	lexer.SLASH_ASSIGN:                ASSIGNMENT,
	lexer.REMAINDER_ASSIGN:            ASSIGNMENT,
	lexer.EXPONENT_ASSIGN:             ASSIGNMENT,
	lexer.BITWISE_AND_ASSIGN:          ASSIGNMENT,
	lexer.BITWISE_OR_ASSIGN:           ASSIGNMENT,
	lexer.BITWISE_XOR_ASSIGN:          ASSIGNMENT,
	lexer.LEFT_SHIFT_ASSIGN:           ASSIGNMENT,
	lexer.RIGHT_SHIFT_ASSIGN:          ASSIGNMENT,
	lexer.UNSIGNED_RIGHT_SHIFT_ASSIGN: ASSIGNMENT,
	lexer.LOGICAL_AND_ASSIGN:          ASSIGNMENT,
	lexer.LOGICAL_OR_ASSIGN:           ASSIGNMENT,
	lexer.COALESCE_ASSIGN:             ASSIGNMENT,
	lexer.QUESTION:                    TERNARY,
	lexer.COALESCE:                    COALESCE,
	lexer.LOGICAL_OR:                  LOGICAL_OR,
	lexer.LOGICAL_AND:                 LOGICAL_AND,
	lexer.PIPE:                        BITWISE_OR,
	lexer.BITWISE_XOR:                 BITWISE_XOR,
	lexer.BITWISE_AND:                 BITWISE_AND,
	lexer.EQ:                          EQUALS,
	lexer.NOT_EQ:                      EQUALS,
	lexer.STRICT_EQ:                   EQUALS,
	lexer.STRICT_NOT_EQ:               EQUALS,
	lexer.LT:                          LESSGREATER,
	lexer.GT:                          LESSGREATER,
	lexer.LE:                          LESSGREATER,
	lexer.GE:                          LESSGREATER,
	lexer.IN:                          LESSGREATER,
	lexer.INSTANCEOF:                  LESSGREATER,
	lexer.LEFT_SHIFT:                  SHIFT,
	lexer.RIGHT_SHIFT:                 SHIFT,
	lexer.UNSIGNED_RIGHT_SHIFT:        SHIFT,
	lexer.PLUS:                        SUM,
	lexer.MINUS:                       SUM,
	lexer.ASTERISK:                    PRODUCT,
	lexer.SLASH:                       PRODUCT,
	lexer.REMAINDER:                   PRODUCT,
	lexer.EXPONENT:                    POWER,
	lexer.INC:                         POSTFIX,
	lexer.DEC:                         POSTFIX,
	lexer.LPAREN:                      CALL,
	lexer.DOT:                         MEMBER,
	lexer.LBRACKET:                    MEMBER,
	lexer.OPTIONAL_CHAINING:           MEMBER,
}

// NewParser creates a new Parser.
func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		source: l.GetSource(),
		errors: []errors.Diagnostic{},
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.BIGINT, p.parseBigIntLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.NULL, p.parseNullLiteral)
	p.registerPrefix(lexer.THIS, p.parseThisExpression)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.PLUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.BITWISE_NOT, p.parsePrefixExpression)
	p.registerPrefix(lexer.VOID, p.parsePrefixExpression)
	p.registerPrefix(lexer.DELETE, p.parsePrefixExpression)
	p.registerPrefix(lexer.TYPEOF, p.parseTypeofExpression)
	p.registerPrefix(lexer.INC, p.parsePrefixUpdateExpression)
	p.registerPrefix(lexer.DEC, p.parsePrefixUpdateExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedOrArrow)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(lexer.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(lexer.NEW, p.parseNewExpression)
	p.registerPrefix(lexer.ILLEGAL, p.parseIllegal)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tok := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH, lexer.REMAINDER, lexer.EXPONENT,
		lexer.EQ, lexer.NOT_EQ, lexer.STRICT_EQ, lexer.STRICT_NOT_EQ,
		lexer.LT, lexer.GT, lexer.LE, lexer.GE, lexer.IN, lexer.INSTANCEOF,
		lexer.LEFT_SHIFT, lexer.RIGHT_SHIFT, lexer.UNSIGNED_RIGHT_SHIFT,
		lexer.BITWISE_AND, lexer.PIPE, lexer.BITWISE_XOR,
		lexer.LOGICAL_AND, lexer.LOGICAL_OR, lexer.COALESCE,
	} {
		p.registerInfix(tok, p.parseInfixExpression)
	}
	for tok, prec := range precedences {
		if prec == ASSIGNMENT {
			p.registerInfix(tok, p.parseAssignmentExpression)
		}
	}
	p.registerInfix(lexer.QUESTION, p.parseTernaryExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.DOT, p.parseMemberExpression)
	p.registerInfix(lexer.OPTIONAL_CHAINING, p.parseOptionalChain)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.INC, p.parsePostfixUpdateExpression)
	p.registerInfix(lexer.DEC, p.parsePostfixUpdateExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns the list of parsing errors.
func (p *Parser) Errors() []errors.Diagnostic {
	return p.errors
}

// nextToken advances the current and peek tokens.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if len(p.pending) > 0 {
		p.peekToken = p.pending[0]
		p.pending = p.pending[1:]
	} else {
		p.peekToken = p.l.NextToken()
	}
	debugPrint("nextToken(): cur='%s' (%s), peek='%s' (%s)", p.curToken.Literal, p.curToken.Type, p.peekToken.Literal, p.peekToken.Type)
}

// lookAhead returns the token at position 'pos' ahead of peekToken.
// pos=0 returns peekToken, pos=1 returns the token after peekToken, etc.
func (p *Parser) lookAhead(pos int) lexer.Token {
	if pos == 0 {
		return p.peekToken
	}
	for len(p.pending) < pos {
		tok := p.l.NextToken()
		p.pending = append(p.pending, tok)
		if tok.Type == lexer.EOF {
			return tok
		}
	}
	return p.pending[pos-1]
}

// ParseProgram parses the entire input and returns the root Program node and any errors.
func (p *Parser) ParseProgram() (*Program, []errors.Diagnostic) {
	program := &Program{Source: p.source}
	program.Statements = []Statement{}

	for p.curToken.Type != lexer.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program, p.errors
}

// --- Statement Parsing ---

// parseStatement parses one statement starting at curToken and leaves curToken on its last token.
func (p *Parser) parseStatement() Statement {
	debugPrint("parseStatement: cur='%s' (%s)", p.curToken.Literal, p.curToken.Type)
	switch p.curToken.Type {
	case lexer.VAR, lexer.LET, lexer.CONST:
		decl := p.parseVariableDeclaration()
		if decl == nil {
			return nil
		}
		p.consumeSemicolon()
		return decl
	case lexer.FUNCTION:
		if p.peekTokenIs(lexer.IDENT) {
			return p.parseFunctionDeclaration()
		}
		return p.parseExpressionStatement()
	case lexer.IMPORT:
		return p.parseImportDeclaration()
	case lexer.EXPORT:
		return p.parseExportDeclaration()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.THROW:
		return p.parseThrowStatement()
	case lexer.BREAK:
		stmt := &BreakStatement{Token: p.curToken}
		p.consumeSemicolon()
		return stmt
	case lexer.CONTINUE:
		stmt := &ContinueStatement{Token: p.curToken}
		p.consumeSemicolon()
		return stmt
	case lexer.LBRACE:
		if block := p.parseBlockStatement(); block != nil {
			return block
		}
		return nil
	case lexer.SEMICOLON:
		return &EmptyStatement{Token: p.curToken}
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) consumeSemicolon() {
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
}

// parseVariableDeclaration parses `var|let|const a = 1, b` without the trailing semicolon.
func (p *Parser) parseVariableDeclaration() *VariableDeclaration {
	decl := &VariableDeclaration{Token: p.curToken, Kind: p.curToken.Literal}

	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		d := &VariableDeclarator{
			Token: p.curToken,
			Name:  &Identifier{Token: p.curToken, Value: p.curToken.Literal},
		}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken() // '='
			p.nextToken()
			d.Value = p.parseExpression(LOWEST)
			if d.Value == nil {
				return nil
			}
		} else if decl.Kind == "const" {
			p.addError(d.Token, "missing initializer in const declaration")
		}
		decl.Declarators = append(decl.Declarators, d)

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken() // ','
	}
	return decl
}

func (p *Parser) parseFunctionDeclaration() Statement {
	stmt := &FunctionDeclaration{Token: p.curToken}
	fn, ok := p.parseFunctionLiteral().(*FunctionLiteral)
	if !ok || fn == nil {
		return nil
	}
	stmt.Function = fn
	return stmt
}

func (p *Parser) parseExpressionStatement() Statement {
	stmt := &ExpressionStatement{Token: p.curToken}

	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}

	// Optional semicolon - consume if next
	p.consumeSemicolon()

	return stmt
}

// parseBlockStatement expects curToken on '{' and leaves it on the matching '}'.
func (p *Parser) parseBlockStatement() *BlockStatement {
	block := &BlockStatement{Token: p.curToken}
	block.Statements = []Statement{}

	p.nextToken() // Consume '{'

	for !p.curTokenIs(lexer.RBRACE) {
		if p.curTokenIs(lexer.EOF) {
			p.addError(p.curToken, "expected '}' to close block")
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil && len(p.errors) > 0 {
			return nil
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	return block
}

func (p *Parser) parseIfStatement() Statement {
	stmt := &IfStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Consequence = p.parseStatement()
	if stmt.Consequence == nil {
		return nil
	}

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken() // 'else'
		p.nextToken()
		stmt.Alternative = p.parseStatement()
		if stmt.Alternative == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() Statement {
	stmt := &WhileStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseForStatement() Statement {
	stmt := &ForStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}

	// Initializer
	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		switch p.curToken.Type {
		case lexer.VAR, lexer.LET, lexer.CONST:
			decl := p.parseVariableDeclaration()
			if decl == nil {
				return nil
			}
			stmt.Init = decl
		default:
			init := &ExpressionStatement{Token: p.curToken}
			init.Expression = p.parseExpression(LOWEST)
			if init.Expression == nil {
				return nil
			}
			stmt.Init = init
		}
	}
	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}

	// Condition
	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		stmt.Condition = p.parseExpression(LOWEST)
		if stmt.Condition == nil {
			return nil
		}
	}
	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}

	// Update
	if !p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		stmt.Update = p.parseExpression(LOWEST)
		if stmt.Update == nil {
			return nil
		}
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() Statement {
	stmt := &ReturnStatement{Token: p.curToken}

	switch {
	case p.peekTokenIs(lexer.SEMICOLON):
		p.nextToken()
		return stmt
	case p.peekTokenIs(lexer.RBRACE), p.peekTokenIs(lexer.EOF), p.peekToken.Line > p.curToken.Line:
		// A line break after 'return' ends the statement.
		return stmt
	}

	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil {
		return nil
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseThrowStatement() Statement {
	stmt := &ThrowStatement{Token: p.curToken}
	if p.peekToken.Line > p.curToken.Line {
		p.addError(p.peekToken, "illegal newline after throw")
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	p.consumeSemicolon()
	return stmt
}

// --- Module Parsing ---

// parseImportDeclaration handles every import form:
//
//	import "mod"
//	import X from "mod"
//	import * as X from "mod"
//	import { a, b as c } from "mod"
//	import X, { a } from "mod"
//	import X, * as Y from "mod"
func (p *Parser) parseImportDeclaration() Statement {
	decl := &ImportDeclaration{Token: p.curToken}

	if p.peekTokenIs(lexer.STRING) {
		p.nextToken()
		decl.Source = p.stringLiteralFromToken(p.curToken)
		p.consumeSemicolon()
		return decl
	}

	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		local := &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		decl.Specifiers = append(decl.Specifiers, &ImportDefaultSpecifier{Token: p.curToken, Local: local})
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			if !p.peekTokenIs(lexer.LBRACE) && !p.peekTokenIs(lexer.ASTERISK) {
				p.addError(p.peekToken, fmt.Sprintf("expected '{' or '*' after ',' in import, got %s", p.peekToken.Type))
				return nil
			}
		}
	}

	switch {
	case p.peekTokenIs(lexer.ASTERISK):
		p.nextToken()
		starTok := p.curToken
		if !p.expectContextual("as") || !p.expectPeek(lexer.IDENT) {
			return nil
		}
		local := &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		decl.Specifiers = append(decl.Specifiers, &ImportNamespaceSpecifier{Token: starTok, Local: local})
	case p.peekTokenIs(lexer.LBRACE):
		p.nextToken()
		specs := p.parseImportNamedSpecifiers()
		if specs == nil {
			return nil
		}
		decl.Specifiers = append(decl.Specifiers, specs...)
	}

	if len(decl.Specifiers) == 0 {
		p.addError(p.peekToken, fmt.Sprintf("unexpected %s in import declaration", p.peekToken.Type))
		return nil
	}
	if !p.expectContextual("from") || !p.expectPeek(lexer.STRING) {
		return nil
	}
	decl.Source = p.stringLiteralFromToken(p.curToken)
	p.consumeSemicolon()
	return decl
}

// parseImportNamedSpecifiers expects curToken on '{' and leaves it on '}'.
// An empty clause returns a non-nil empty slice.
func (p *Parser) parseImportNamedSpecifiers() []ImportSpecifier {
	specs := []ImportSpecifier{}
	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		if !p.curTokenIs(lexer.IDENT) && !lexer.IsKeyword(p.curToken.Type) {
			p.addError(p.curToken, fmt.Sprintf("expected imported name, got %s", p.curToken.Type))
			return nil
		}
		spec := &ImportNamedSpecifier{Token: p.curToken}
		spec.Imported = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		if p.peekContextualIs("as") {
			p.nextToken()
			if !p.expectPeek(lexer.IDENT) {
				return nil
			}
			spec.Local = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		} else {
			if !p.curTokenIs(lexer.IDENT) {
				p.addError(p.curToken, fmt.Sprintf("'%s' cannot be imported without a local name", p.curToken.Literal))
				return nil
			}
			spec.Local = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		}
		specs = append(specs, spec)

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return specs
}

// parseExportDeclaration handles `export default`, `export <declaration>` and export clauses.
func (p *Parser) parseExportDeclaration() Statement {
	exportTok := p.curToken

	switch {
	case p.peekTokenIs(lexer.DEFAULT):
		p.nextToken()
		stmt := &ExportDefaultDeclaration{Token: exportTok}
		p.nextToken()
		stmt.Expression = p.parseExpression(LOWEST)
		if stmt.Expression == nil {
			return nil
		}
		if _, isFn := stmt.Expression.(*FunctionLiteral); !isFn {
			p.consumeSemicolon()
		}
		return stmt

	case p.peekTokenIs(lexer.VAR), p.peekTokenIs(lexer.LET), p.peekTokenIs(lexer.CONST):
		p.nextToken()
		decl := p.parseVariableDeclaration()
		if decl == nil {
			return nil
		}
		p.consumeSemicolon()
		return &ExportNamedDeclaration{Token: exportTok, Declaration: decl}

	case p.peekTokenIs(lexer.FUNCTION):
		p.nextToken()
		if !p.peekTokenIs(lexer.IDENT) {
			p.addError(p.peekToken, "exported function declarations require a name")
			return nil
		}
		decl := p.parseFunctionDeclaration()
		if decl == nil {
			return nil
		}
		return &ExportNamedDeclaration{Token: exportTok, Declaration: decl}

	case p.peekTokenIs(lexer.LBRACE):
		p.nextToken()
		stmt := &ExportNamedDeclaration{Token: exportTok, Specifiers: []*ExportSpecifier{}}
		for !p.peekTokenIs(lexer.RBRACE) {
			if !p.expectPeek(lexer.IDENT) {
				return nil
			}
			spec := &ExportSpecifier{Token: p.curToken}
			spec.Local = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
			spec.Exported = spec.Local
			if p.peekContextualIs("as") {
				p.nextToken()
				p.nextToken()
				if !p.curTokenIs(lexer.IDENT) && !lexer.IsKeyword(p.curToken.Type) {
					p.addError(p.curToken, fmt.Sprintf("expected exported name, got %s", p.curToken.Type))
					return nil
				}
				spec.Exported = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
			}
			stmt.Specifiers = append(stmt.Specifiers, spec)
			if !p.peekTokenIs(lexer.COMMA) {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(lexer.RBRACE) {
			return nil
		}
		if p.peekContextualIs("from") {
			p.nextToken()
			if !p.expectPeek(lexer.STRING) {
				return nil
			}
			stmt.Source = p.stringLiteralFromToken(p.curToken)
		}
		p.consumeSemicolon()
		return stmt
	}

	p.addError(p.peekToken, fmt.Sprintf("unsupported export form starting with %s", p.peekToken.Type))
	return nil
}

// --- Expression Parsing (Pratt Parser) ---

func (p *Parser) parseExpression(precedence int) Expression {
	debugPrint("parseExpression(prec=%d): cur='%s' (%s)", precedence, p.curToken.Literal, p.curToken.Type)
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil // Prefix parsing failed, propagate nil
	}

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		// `a\n++b` is two statements
		if (p.peekTokenIs(lexer.INC) || p.peekTokenIs(lexer.DEC)) && p.peekToken.Line > p.curToken.Line {
			return leftExp
		}
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()

		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

// -- Prefix Parse Functions --

func (p *Parser) parseIdentifier() Expression {
	ident := &Identifier{Token: p.curToken, Value: p.curToken.Literal}

	// Shorthand arrow function `ident => body`
	if p.peekTokenIs(lexer.ARROW) {
		p.nextToken() // cur is now '=>'
		return p.parseArrowFunctionBody([]*Identifier{ident})
	}
	return ident
}

func (p *Parser) parseNumberLiteral() Expression {
	lit := &NumberLiteral{Token: p.curToken}

	raw := strings.ReplaceAll(p.curToken.Literal, "_", "")
	if len(raw) > 1 && raw[0] == '0' && raw[1] >= '0' && raw[1] <= '9' {
		p.addError(p.curToken, fmt.Sprintf("legacy octal literal %q is not supported", p.curToken.Literal))
		return nil
	}

	if base, digits := splitRadix(raw); base != 10 {
		n, ok := new(big.Int).SetString(digits, base)
		if !ok {
			p.addError(p.curToken, fmt.Sprintf("could not parse %q as number", p.curToken.Literal))
			return nil
		}
		lit.Value, _ = new(big.Float).SetInt(n).Float64()
		return lit
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// ParseFloat reports overflow as an error but still yields ±Inf, which matches JS.
		if numErr, ok := err.(*strconv.NumError); !ok || numErr.Err != strconv.ErrRange {
			p.addError(p.curToken, fmt.Sprintf("could not parse %q as number", p.curToken.Literal))
			return nil
		}
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseBigIntLiteral() Expression {
	lit := &BigIntLiteral{Token: p.curToken}

	raw := strings.ReplaceAll(strings.TrimSuffix(p.curToken.Literal, "n"), "_", "")
	base, digits := splitRadix(raw)
	if base == 10 && len(digits) > 1 && digits[0] == '0' {
		p.addError(p.curToken, fmt.Sprintf("invalid BigInt literal %q", p.curToken.Literal))
		return nil
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		p.addError(p.curToken, fmt.Sprintf("invalid BigInt literal %q", p.curToken.Literal))
		return nil
	}
	lit.Value = n.String()
	return lit
}

// splitRadix separates a 0x/0o/0b prefix from the digits of a numeric literal.
func splitRadix(raw string) (int, string) {
	if len(raw) > 2 && raw[0] == '0' {
		switch raw[1] {
		case 'x', 'X':
			return 16, raw[2:]
		case 'o', 'O':
			return 8, raw[2:]
		case 'b', 'B':
			return 2, raw[2:]
		}
	}
	return 10, raw
}

func (p *Parser) parseStringLiteral() Expression {
	return p.stringLiteralFromToken(p.curToken)
}

func (p *Parser) stringLiteralFromToken(tok lexer.Token) *StringLiteral {
	return &StringLiteral{Token: tok, Value: tok.Literal, Quote: tok.Quote}
}

func (p *Parser) parseBooleanLiteral() Expression {
	return &BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNullLiteral() Expression {
	return &NullLiteral{Token: p.curToken}
}

func (p *Parser) parseThisExpression() Expression {
	return &ThisExpression{Token: p.curToken}
}

func (p *Parser) parseIllegal() Expression {
	p.addError(p.curToken, p.curToken.Literal)
	return nil
}

// parsePrefixExpression handles expressions like !expr, -expr, void expr
func (p *Parser) parsePrefixExpression() Expression {
	expression := &PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseTypeofExpression() Expression {
	expression := &TypeofExpression{Token: p.curToken}
	p.nextToken()
	expression.Operand = p.parseExpression(PREFIX)
	if expression.Operand == nil {
		return nil
	}
	return expression
}

func (p *Parser) parsePrefixUpdateExpression() Expression {
	expression := &UpdateExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Prefix:   true,
	}
	p.nextToken()
	expression.Argument = p.parseExpression(PREFIX)
	if expression.Argument == nil {
		return nil
	}
	if !isAssignmentTarget(expression.Argument) {
		p.addError(expression.Token, "invalid operand for "+expression.Operator)
		return nil
	}
	return expression
}

// parseGroupedOrArrow handles `(expr)` and `(a, b) => body`. Grouping parentheses are not kept
// in the AST; the emitter re-derives them from precedence.
func (p *Parser) parseGroupedOrArrow() Expression {
	if p.isArrowParameterList() {
		params := p.parseParameters()
		if params == nil {
			return nil
		}
		if !p.expectPeek(lexer.ARROW) {
			return nil
		}
		return p.parseArrowFunctionBody(params)
	}

	p.nextToken() // Consume '('
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return exp
}

// isArrowParameterList reports whether the '(' at curToken opens an arrow function's parameters,
// by finding the matching ')' and checking for a following '=>'.
func (p *Parser) isArrowParameterList() bool {
	depth := 0
	for i := 0; ; i++ {
		tok := p.lookAhead(i)
		switch tok.Type {
		case lexer.EOF:
			return false
		case lexer.LPAREN, lexer.LBRACKET, lexer.LBRACE:
			depth++
		case lexer.RBRACKET, lexer.RBRACE:
			depth--
		case lexer.RPAREN:
			if depth == 0 {
				return p.lookAhead(i+1).Type == lexer.ARROW
			}
			depth--
		}
	}
}

// parseArrowFunctionBody expects curToken on '=>'.
func (p *Parser) parseArrowFunctionBody(params []*Identifier) Expression {
	arrow := &ArrowFunctionLiteral{Token: p.curToken, Parameters: params}
	if p.peekTokenIs(lexer.LBRACE) {
		p.nextToken()
		body := p.parseBlockStatement()
		if body == nil {
			return nil
		}
		arrow.Body = body
		return arrow
	}
	p.nextToken()
	body := p.parseExpression(LOWEST)
	if body == nil {
		return nil
	}
	arrow.Body = body
	return arrow
}

// parseParameters expects curToken on '(' and leaves it on ')'.
func (p *Parser) parseParameters() []*Identifier {
	params := []*Identifier{}
	for !p.peekTokenIs(lexer.RPAREN) {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		params = append(params, &Identifier{Token: p.curToken, Value: p.curToken.Literal})
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseArrayLiteral() Expression {
	array := &ArrayLiteral{Token: p.curToken}
	array.Elements = p.parseExpressionList(lexer.RBRACKET)
	if array.Elements == nil {
		return nil
	}
	return array
}

// parseObjectLiteral expects curToken on '{' and leaves it on '}'.
func (p *Parser) parseObjectLiteral() Expression {
	obj := &ObjectLiteral{Token: p.curToken, Properties: []*ObjectProperty{}}

	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		prop := p.parseObjectProperty()
		if prop == nil {
			return nil
		}
		obj.Properties = append(obj.Properties, prop)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return obj
}

func (p *Parser) parseObjectProperty() *ObjectProperty {
	prop := &ObjectProperty{}

	switch {
	case p.curTokenIs(lexer.SPREAD):
		p.nextToken()
		prop.Spread = true
		prop.Value = p.parseExpression(LOWEST)
		if prop.Value == nil {
			return nil
		}
		return prop
	case p.curTokenIs(lexer.LBRACKET):
		p.nextToken()
		prop.Computed = true
		prop.Key = p.parseExpression(LOWEST)
		if prop.Key == nil || !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
	case p.curTokenIs(lexer.STRING):
		prop.Key = p.stringLiteralFromToken(p.curToken)
	case p.curTokenIs(lexer.NUMBER):
		prop.Key = p.parseNumberLiteral()
		if prop.Key == nil {
			return nil
		}
	case p.curTokenIs(lexer.IDENT) || lexer.IsKeyword(p.curToken.Type):
		key := &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		prop.Key = key
		if p.curTokenIs(lexer.IDENT) && (p.peekTokenIs(lexer.COMMA) || p.peekTokenIs(lexer.RBRACE)) {
			prop.Shorthand = true
			prop.Value = &Identifier{Token: key.Token, Value: key.Value}
			return prop
		}
	default:
		p.addError(p.curToken, fmt.Sprintf("unexpected %s in object literal", p.curToken.Type))
		return nil
	}

	// Method shorthand: key(params) { body }
	if p.peekTokenIs(lexer.LPAREN) {
		fn := &FunctionLiteral{Token: p.peekToken}
		p.nextToken()
		fn.Parameters = p.parseParameters()
		if fn.Parameters == nil || !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		fn.Body = p.parseBlockStatement()
		if fn.Body == nil {
			return nil
		}
		prop.Method = true
		prop.Value = fn
		return prop
	}

	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	prop.Value = p.parseExpression(LOWEST)
	if prop.Value == nil {
		return nil
	}
	return prop
}

// parseFunctionLiteral expects curToken on 'function' and leaves it on the closing '}'.
func (p *Parser) parseFunctionLiteral() Expression {
	lit := &FunctionLiteral{Token: p.curToken}

	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		lit.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	lit.Parameters = p.parseParameters()
	if lit.Parameters == nil {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	lit.Body = p.parseBlockStatement()
	if lit.Body == nil {
		return nil
	}
	return lit
}

// parseNewExpression handles `new Callee(args)` and `new Callee`.
func (p *Parser) parseNewExpression() Expression {
	ne := &NewExpression{Token: p.curToken}
	p.nextToken()
	// Member accesses bind to the constructor, the first argument list belongs to `new`.
	ne.Constructor = p.parseExpression(CALL)
	if ne.Constructor == nil {
		return nil
	}
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		ne.Arguments = p.parseExpressionList(lexer.RPAREN)
		if ne.Arguments == nil {
			return nil
		}
	} else {
		ne.Arguments = []Expression{}
	}
	return ne
}

// -- Infix Parse Functions --

func (p *Parser) parseInfixExpression(left Expression) Expression {
	expression := &InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	if expression.Operator == "**" {
		precedence-- // right-associative
	}
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseAssignmentExpression(left Expression) Expression {
	expression := &AssignmentExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	if !isAssignmentTarget(left) {
		p.addError(p.curToken, "invalid assignment target")
		return nil
	}
	p.nextToken()
	// LOWEST keeps assignment right-associative: a = b = c
	expression.Value = p.parseExpression(LOWEST)
	if expression.Value == nil {
		return nil
	}
	return expression
}

func isAssignmentTarget(e Expression) bool {
	switch e := e.(type) {
	case *Identifier:
		return true
	case *MemberExpression:
		return !e.Optional
	case *IndexExpression:
		return !e.Optional
	}
	return false
}

func (p *Parser) parseTernaryExpression(condition Expression) Expression {
	expression := &TernaryExpression{Token: p.curToken, Condition: condition}

	p.nextToken()
	expression.Consequence = p.parseExpression(LOWEST)
	if expression.Consequence == nil || !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	expression.Alternative = p.parseExpression(LOWEST)
	if expression.Alternative == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseCallExpression(function Expression) Expression {
	exp := &CallExpression{Token: p.curToken, Function: function}
	exp.Arguments = p.parseExpressionList(lexer.RPAREN)
	if exp.Arguments == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseMemberExpression(object Expression) Expression {
	exp := &MemberExpression{Token: p.curToken, Object: object}
	property := p.parsePropertyName()
	if property == nil {
		return nil
	}
	exp.Property = property
	return exp
}

// parsePropertyName consumes the name after '.' or '?.'; reserved words are allowed.
func (p *Parser) parsePropertyName() *Identifier {
	if !p.peekTokenIs(lexer.IDENT) && !lexer.IsKeyword(p.peekToken.Type) {
		p.addError(p.peekToken, fmt.Sprintf("expected property name after '%s', got %s", p.curToken.Literal, p.peekToken.Type))
		return nil
	}
	p.nextToken()
	return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

// parseOptionalChain handles `a?.b`, `a?.[i]` and `a?.(args)`.
func (p *Parser) parseOptionalChain(left Expression) Expression {
	optTok := p.curToken
	switch {
	case p.peekTokenIs(lexer.LPAREN):
		p.nextToken()
		call := &CallExpression{Token: p.curToken, Function: left, Optional: true}
		call.Arguments = p.parseExpressionList(lexer.RPAREN)
		if call.Arguments == nil {
			return nil
		}
		return call
	case p.peekTokenIs(lexer.LBRACKET):
		p.nextToken()
		idx := &IndexExpression{Token: p.curToken, Left: left, Optional: true}
		p.nextToken()
		idx.Index = p.parseExpression(LOWEST)
		if idx.Index == nil || !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
		return idx
	}
	exp := &MemberExpression{Token: optTok, Object: left, Optional: true}
	exp.Property = p.parsePropertyName()
	if exp.Property == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseIndexExpression(left Expression) Expression {
	exp := &IndexExpression{Token: p.curToken, Left: left}

	p.nextToken() // Consume '['
	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil || !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return exp
}

func (p *Parser) parsePostfixUpdateExpression(left Expression) Expression {
	if !isAssignmentTarget(left) {
		p.addError(p.curToken, "invalid operand for "+p.curToken.Literal)
		return nil
	}
	return &UpdateExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Argument: left,
	}
}

// parseExpressionList parses comma separated arguments or array elements, allowing spread
// and a trailing comma. It expects curToken on the opening delimiter and leaves it on end.
func (p *Parser) parseExpressionList(end lexer.TokenType) []Expression {
	list := []Expression{}

	for !p.peekTokenIs(end) {
		p.nextToken()
		var item Expression
		if p.curTokenIs(lexer.SPREAD) {
			spread := &SpreadElement{Token: p.curToken}
			p.nextToken()
			spread.Argument = p.parseExpression(LOWEST)
			if spread.Argument == nil {
				return nil
			}
			item = spread
		} else {
			item = p.parseExpression(LOWEST)
			if item == nil {
				return nil
			}
		}
		list = append(list, item)

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

// --- Helper Methods ---

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

// peekContextualIs reports whether peekToken is the contextual keyword word ("as", "from").
func (p *Parser) peekContextualIs(word string) bool {
	return p.peekToken.Type == lexer.IDENT && p.peekToken.Literal == word
}

// expectContextual advances past a contextual keyword or records an error.
func (p *Parser) expectContextual(word string) bool {
	if p.peekContextualIs(word) {
		p.nextToken()
		return true
	}
	p.addError(p.peekToken, fmt.Sprintf("expected '%s', got %s instead", word, p.peekToken.Type))
	return false
}

// expectPeek checks the type of the next token and advances if it matches.
// If it doesn't match, it adds an error.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// --- Error Handling ---

func (p *Parser) peekError(t lexer.TokenType) {
	if p.peekToken.Type == lexer.ILLEGAL {
		p.addError(p.peekToken, p.peekToken.Literal)
		return
	}
	msg := fmt.Sprintf("expected next token to be %s, got %s instead",
		t, p.peekToken.Type)
	p.addError(p.peekToken, msg)
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	msg := fmt.Sprintf("unexpected token %s", tok.Type)
	if tok.Type == lexer.EOF {
		msg = "unexpected end of input"
	}
	p.addError(tok, msg)
}

// --- Precedence Helper ---
func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

// addError creates a SyntaxError and appends it to the parser's error list.
// Limits the number of errors to prevent memory exhaustion from infinite parsing loops.
func (p *Parser) addError(tok lexer.Token, msg string) {
	const maxErrors = 1000
	if len(p.errors) >= maxErrors {
		if len(p.errors) == maxErrors {
			p.errors = append(p.errors, &errors.SyntaxError{
				Position: p.position(tok),
				Msg:      fmt.Sprintf("too many parse errors (limit: %d), stopping parser", maxErrors),
			})
		}
		return
	}

	p.errors = append(p.errors, &errors.SyntaxError{
		Position: p.position(tok),
		Msg:      msg,
	})
	debugPrint("addError: %s at %d:%d", msg, tok.Line, tok.Column)
}

func (p *Parser) position(tok lexer.Token) errors.Position {
	return errors.Position{
		Line:     tok.Line,
		Column:   tok.Column,
		StartPos: tok.StartPos,
		EndPos:   tok.EndPos,
		Source:   p.source,
	}
}

// ParseSource lexes and parses src in one step.
func ParseSource(src *source.SourceFile) (*Program, []errors.Diagnostic) {
	return NewParser(lexer.NewLexerWithSource(src)).ParseProgram()
}
