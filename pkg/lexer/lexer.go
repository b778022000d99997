package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"jsbi2bigint/pkg/source"
)

// TokenType represents the type of a token.
type TokenType string

// Token represents a lexical token.
type Token struct {
	Type     TokenType
	Literal  string // Lexeme, or the decoded value for strings
	Line     int    // 1-based line number where the token starts
	Column   int    // 1-based column number where the token starts
	StartPos int    // 0-based byte offset where the token starts
	EndPos   int    // 0-based byte offset after the token ends
	Quote    byte   // Opening quote for STRING tokens
}

// --- Token Types ---
const (
	// Special
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers + Literals
	IDENT  TokenType = "IDENT"
	NUMBER TokenType = "NUMBER" // 123, 0x1f, 1_000, 4.5e3
	BIGINT TokenType = "BIGINT" // 123n
	STRING TokenType = "STRING"

	// Operators
	ASSIGN               TokenType = "="
	PLUS                 TokenType = "+"
	MINUS                TokenType = "-"
	BANG                 TokenType = "!"
	ASTERISK             TokenType = "*"
	SLASH                TokenType = "/"
	REMAINDER            TokenType = "%"
	EXPONENT             TokenType = "**"
	LT                   TokenType = "<"
	GT                   TokenType = ">"
	LE                   TokenType = "<="
	GE                   TokenType = ">="
	EQ                   TokenType = "=="
	NOT_EQ               TokenType = "!="
	STRICT_EQ            TokenType = "==="
	STRICT_NOT_EQ        TokenType = "!=="
	BITWISE_AND          TokenType = "&"
	PIPE                 TokenType = "|"
	BITWISE_XOR          TokenType = "^"
	BITWISE_NOT          TokenType = "~"
	LEFT_SHIFT           TokenType = "<<"
	RIGHT_SHIFT          TokenType = ">>"
	UNSIGNED_RIGHT_SHIFT TokenType = ">>>"
	LOGICAL_AND          TokenType = "&&"
	LOGICAL_OR           TokenType = "||"
	COALESCE             TokenType = "??"
	INC                  TokenType = "++"
	DEC                  TokenType = "--"
	DOT                  TokenType = "."
	SPREAD               TokenType = "..."
	OPTIONAL_CHAINING    TokenType = "?."
	QUESTION             TokenType = "?"
	ARROW                TokenType = "=>"

	// Compound Assignment
	PLUS_ASSIGN                 TokenType = "+="
	MINUS_ASSIGN                TokenType = "-="
	ASTERISK_ASSIGN             TokenType = "*="
	SLASH_ASSIGN                TokenType = "/="
	REMAINDER_ASSIGN            TokenType = "%="
	EXPONENT_ASSIGN             TokenType = "**="
	BITWISE_AND_ASSIGN          TokenType = "&="
	BITWISE_OR_ASSIGN           TokenType = "|="
	BITWISE_XOR_ASSIGN          TokenType = "^="
	LEFT_SHIFT_ASSIGN           TokenType = "<<="
	RIGHT_SHIFT_ASSIGN          TokenType = ">>="
	UNSIGNED_RIGHT_SHIFT_ASSIGN TokenType = ">>>="
	LOGICAL_AND_ASSIGN          TokenType = "&&="
	LOGICAL_OR_ASSIGN           TokenType = "||="
	COALESCE_ASSIGN             TokenType = "??="

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"

	// Keywords
	FUNCTION   TokenType = "FUNCTION"
	VAR        TokenType = "VAR"
	LET        TokenType = "LET"
	CONST      TokenType = "CONST"
	TRUE       TokenType = "TRUE"
	FALSE      TokenType = "FALSE"
	NULL       TokenType = "NULL"
	THIS       TokenType = "THIS"
	IF         TokenType = "IF"
	ELSE       TokenType = "ELSE"
	RETURN     TokenType = "RETURN"
	WHILE      TokenType = "WHILE"
	FOR        TokenType = "FOR"
	BREAK      TokenType = "BREAK"
	CONTINUE   TokenType = "CONTINUE"
	THROW      TokenType = "THROW"
	NEW        TokenType = "NEW"
	TYPEOF     TokenType = "TYPEOF"
	VOID       TokenType = "VOID"
	DELETE     TokenType = "DELETE"
	INSTANCEOF TokenType = "INSTANCEOF"
	IN         TokenType = "IN"
	IMPORT     TokenType = "IMPORT"
	EXPORT     TokenType = "EXPORT"
	DEFAULT    TokenType = "DEFAULT"
)

var keywords = map[string]TokenType{
	"function":   FUNCTION,
	"var":        VAR,
	"let":        LET,
	"const":      CONST,
	"true":       TRUE,
	"false":      FALSE,
	"null":       NULL,
	"this":       THIS,
	"if":         IF,
	"else":       ELSE,
	"return":     RETURN,
	"while":      WHILE,
	"for":        FOR,
	"break":      BREAK,
	"continue":   CONTINUE,
	"throw":      THROW,
	"new":        NEW,
	"typeof":     TYPEOF,
	"void":       VOID,
	"delete":     DELETE,
	"instanceof": INSTANCEOF,
	"in":         IN,
	"import":     IMPORT,
	"export":     EXPORT,
	"default":    DEFAULT,
}

// punctuators is ordered longest first so that scanning is maximal munch.
var punctuators = []TokenType{
	UNSIGNED_RIGHT_SHIFT_ASSIGN,
	STRICT_EQ, STRICT_NOT_EQ, UNSIGNED_RIGHT_SHIFT, EXPONENT_ASSIGN, LEFT_SHIFT_ASSIGN,
	RIGHT_SHIFT_ASSIGN, LOGICAL_AND_ASSIGN, LOGICAL_OR_ASSIGN, COALESCE_ASSIGN, SPREAD,
	EQ, NOT_EQ, LE, GE, EXPONENT, LEFT_SHIFT, RIGHT_SHIFT, LOGICAL_AND, LOGICAL_OR, COALESCE,
	INC, DEC, ARROW, OPTIONAL_CHAINING, PLUS_ASSIGN, MINUS_ASSIGN, ASTERISK_ASSIGN, SLASH_ASSIGN,
	REMAINDER_ASSIGN, BITWISE_AND_ASSIGN, BITWISE_OR_ASSIGN, BITWISE_XOR_ASSIGN,
	ASSIGN, PLUS, MINUS, BANG, ASTERISK, SLASH, REMAINDER, LT, GT, BITWISE_AND, PIPE, BITWISE_XOR,
	BITWISE_NOT, DOT, QUESTION, COMMA, SEMICOLON, COLON, LPAREN, RPAREN, LBRACE, RBRACE,
	LBRACKET, RBRACKET,
}

// LookupIdent checks the keywords table for an identifier.
func LookupIdent(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return IDENT
}

// IsKeyword reports whether t is a reserved word token.
// Reserved words are still valid property names after '.'.
func IsKeyword(t TokenType) bool {
	for _, kw := range keywords {
		if kw == t {
			return true
		}
	}
	return false
}

// Lexer holds the state of the scanner.
type Lexer struct {
	input        string
	source       *source.SourceFile
	position     int  // current position in input (points to current char's byte offset)
	readPosition int  // current reading position in input (byte offset after current char)
	ch           byte // current char under examination
	line         int  // current 1-based line number
	column       int  // current 1-based column number
}

// NewLexer creates a new Lexer over anonymous input.
func NewLexer(input string) *Lexer {
	return NewLexerWithSource(source.NewEvalSource(input))
}

// NewLexerWithSource creates a new Lexer that remembers the file it reads from.
func NewLexerWithSource(src *source.SourceFile) *Lexer {
	l := &Lexer{input: src.Content, source: src, line: 1}
	l.readChar()
	return l
}

// GetSource returns the source file being scanned.
func (l *Lexer) GetSource() *source.SourceFile {
	return l.source
}

// readChar gives us the next character and advances our position in the input string.
// It also updates the line and column count.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) peekCharAt(offset int) byte {
	if l.position+offset >= len(l.input) {
		return 0
	}
	return l.input[l.position+offset]
}

// skipWhitespaceAndComments consumes whitespace, line comments and block comments.
// It returns false when a block comment is left unterminated.
func (l *Lexer) skipWhitespaceAndComments() bool {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' || l.ch == '\v':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar() // '/'
			l.readChar() // '*'
			for !(l.ch == '*' && l.peekChar() == '/') {
				if l.ch == 0 {
					return false
				}
				l.readChar()
			}
			l.readChar() // '*'
			l.readChar() // '/'
		case l.ch == 0xEF && strings.HasPrefix(l.input[l.position:], "\uFEFF"):
			l.readChar()
			l.readChar()
			l.readChar()
		default:
			return true
		}
	}
}

// NextToken scans the input and returns the next token.
func (l *Lexer) NextToken() Token {
	startLine, startCol, startPos := l.line, l.column, l.position
	if !l.skipWhitespaceAndComments() {
		return Token{Type: ILLEGAL, Literal: "unterminated multiline comment", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	}

	// Capture token start position *after* skipping whitespace
	startLine, startCol, startPos = l.line, l.column, l.position
	tok := Token{Line: startLine, Column: startCol, StartPos: startPos}

	switch {
	case l.ch == 0:
		tok.Type = EOF
		tok.EndPos = startPos
		return tok
	case l.ch == '"' || l.ch == '\'':
		quote := l.ch
		value, err := l.readString(quote)
		tok.EndPos = l.position
		if err != nil {
			tok.Type = ILLEGAL
			tok.Literal = err.Error()
			return tok
		}
		tok.Type = STRING
		tok.Literal = value
		tok.Quote = quote
		return tok
	case l.ch == '`':
		l.readChar()
		tok.Type = ILLEGAL
		tok.Literal = "template literals are not supported"
		tok.EndPos = l.position
		return tok
	case isLetter(l.ch):
		tok.Literal = l.readIdentifier()
		tok.Type = LookupIdent(tok.Literal)
		tok.EndPos = l.position
		return tok
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		tok.Literal = l.readNumber()
		tok.Type = NUMBER
		if l.ch == 'n' {
			l.readChar()
			tok.Literal += "n"
			tok.Type = BIGINT
		}
		if isLetter(l.ch) || isDigit(l.ch) {
			// e.g. "3in" or "1_": identifier start directly after a numeric literal
			for isLetter(l.ch) || isDigit(l.ch) {
				l.readChar()
			}
			tok.Type = ILLEGAL
			tok.Literal = fmt.Sprintf("invalid numeric literal %q", l.input[startPos:l.position])
		}
		tok.EndPos = l.position
		return tok
	}

	for _, punct := range punctuators {
		lit := string(punct)
		if !strings.HasPrefix(l.input[l.position:], lit) {
			continue
		}
		// `a?.5:b` is a conditional, not optional chaining
		if punct == OPTIONAL_CHAINING && isDigit(l.peekCharAt(2)) {
			continue
		}
		for i := 0; i < len(lit); i++ {
			l.readChar()
		}
		tok.Type = punct
		tok.Literal = lit
		tok.EndPos = l.position
		return tok
	}

	// Illegal character
	r, size := utf8.DecodeRuneInString(l.input[l.position:])
	for i := 0; i < size; i++ {
		l.readChar()
	}
	tok.Type = ILLEGAL
	tok.Literal = fmt.Sprintf("unexpected character %q", r)
	tok.EndPos = l.position
	return tok
}

// readIdentifier reads an identifier (letters, digits, _, $) and advances the lexer's position.
func (l *Lexer) readIdentifier() string {
	startPos := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[startPos:l.position]
}

// readNumber reads a number literal (decimal with optional fraction/exponent, or 0x/0o/0b)
// including numeric separators, and returns the raw text.
func (l *Lexer) readNumber() string {
	startPos := l.position
	base := 10
	if l.ch == '0' {
		switch l.peekChar() {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			l.readChar()
			l.readChar()
		}
	}

	l.readDigits(base)
	if base == 10 {
		if l.ch == '.' {
			l.readChar()
			l.readDigits(10)
		}
		if l.ch == 'e' || l.ch == 'E' {
			next := l.peekChar()
			if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekCharAt(2))) {
				l.readChar()
				if l.ch == '+' || l.ch == '-' {
					l.readChar()
				}
				l.readDigits(10)
			}
		}
	}
	return l.input[startPos:l.position]
}

// readDigits consumes digits valid for base; a '_' separator must sit between two digits.
func (l *Lexer) readDigits(base int) {
	for {
		if isDigitForBase(l.ch, base) {
			l.readChar()
		} else if l.ch == '_' && isDigitForBase(l.peekChar(), base) && l.position > 0 && isDigitForBase(l.input[l.position-1], base) {
			l.readChar()
		} else {
			return
		}
	}
}

// readString reads a string literal enclosed in the given quote character and returns its
// decoded value. The lexer ends positioned after the closing quote.
func (l *Lexer) readString(quote byte) (string, error) {
	var builder strings.Builder
	l.readChar() // opening quote

	for {
		switch l.ch {
		case quote:
			l.readChar()
			return builder.String(), nil
		case 0:
			return "", fmt.Errorf("unterminated string literal")
		case '\n', '\r':
			return "", fmt.Errorf("unterminated string literal")
		case '\\':
			l.readChar()
			if err := l.readEscape(&builder); err != nil {
				return "", err
			}
			continue
		default:
			builder.WriteByte(l.ch)
		}
		l.readChar()
	}
}

// readEscape decodes the escape sequence whose first character (after the backslash) is
// current, leaving the lexer on the character after the sequence.
func (l *Lexer) readEscape(b *strings.Builder) error {
	switch l.ch {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		if isDigit(l.peekChar()) {
			return fmt.Errorf("octal escape sequences are not supported")
		}
		b.WriteByte(0)
	case '\r':
		// line continuation, optionally \r\n
		if l.peekChar() == '\n' {
			l.readChar()
		}
	case '\n':
		// line continuation
	case 'x':
		hex := l.input[min(l.readPosition, len(l.input)):min(l.readPosition+2, len(l.input))]
		v, err := strconv.ParseUint(hex, 16, 8)
		if err != nil || len(hex) != 2 {
			return fmt.Errorf("invalid hexadecimal escape sequence")
		}
		b.WriteRune(rune(v))
		l.readChar()
		l.readChar()
	case 'u':
		r, err := l.readUnicodeEscape()
		if err != nil {
			return err
		}
		b.WriteRune(r)
	case 0:
		return fmt.Errorf("unterminated string literal")
	default:
		// Identity escape: \' \" \\ and any other character stand for themselves.
		b.WriteByte(l.ch)
	}
	l.readChar()
	return nil
}

// readUnicodeEscape handles \uXXXX and \u{X...}; current char is 'u'.
// It leaves the lexer on the last character of the sequence.
func (l *Lexer) readUnicodeEscape() (rune, error) {
	if l.peekChar() == '{' {
		l.readChar() // 'u'
		start := l.readPosition
		end := strings.IndexByte(l.input[start:], '}')
		if end <= 0 {
			return 0, fmt.Errorf("invalid unicode escape sequence")
		}
		v, err := strconv.ParseUint(l.input[start:start+end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, fmt.Errorf("invalid unicode escape sequence")
		}
		for i := 0; i < end+1; i++ {
			l.readChar()
		}
		return rune(v), nil
	}
	if l.readPosition+4 > len(l.input) {
		return 0, fmt.Errorf("invalid unicode escape sequence")
	}
	v, err := strconv.ParseUint(l.input[l.readPosition:l.readPosition+4], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid unicode escape sequence")
	}
	for i := 0; i < 4; i++ {
		l.readChar()
	}
	return rune(v), nil
}

// isLetter checks if the character may start an identifier. Bytes of multi-byte UTF-8
// sequences are accepted so non-ASCII identifiers pass through unchanged.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$' || ch >= utf8.RuneSelf
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// isDigitForBase checks if the character is a valid digit for the given base.
func isDigitForBase(ch byte, base int) bool {
	switch base {
	case 16:
		return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
	case 10:
		return isDigit(ch)
	case 8:
		return '0' <= ch && ch <= '7'
	case 2:
		return ch == '0' || ch == '1'
	default:
		return false
	}
}
