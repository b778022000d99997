package rewrite

import "jsbi2bigint/pkg/lexer"

// Names of the namespace members with a dedicated rewrite.
const (
	constructorName = "BigInt"
	conversionName  = "toNumber"
)

// operator is a native operator with the token type the parser gives it.
type operator struct {
	tok  lexer.TokenType
	text string
}

// binaryOperators maps JSBI binary functions to the native operator they become.
var binaryOperators = map[string]operator{
	"add":                {lexer.PLUS, "+"},
	"subtract":           {lexer.MINUS, "-"},
	"multiply":           {lexer.ASTERISK, "*"},
	"divide":             {lexer.SLASH, "/"},
	"remainder":          {lexer.REMAINDER, "%"},
	"exponentiate":       {lexer.EXPONENT, "**"},
	"leftShift":          {lexer.LEFT_SHIFT, "<<"},
	"signedRightShift":   {lexer.RIGHT_SHIFT, ">>"},
	"bitwiseAnd":         {lexer.BITWISE_AND, "&"},
	"bitwiseOr":          {lexer.PIPE, "|"},
	"bitwiseXor":         {lexer.BITWISE_XOR, "^"},
	"equal":              {lexer.STRICT_EQ, "==="},
	"notEqual":           {lexer.STRICT_NOT_EQ, "!=="},
	"lessThan":           {lexer.LT, "<"},
	"lessThanOrEqual":    {lexer.LE, "<="},
	"greaterThan":        {lexer.GT, ">"},
	"greaterThanOrEqual": {lexer.GE, ">="},

	// Mixed BigInt/Number comparisons and addition.
	"EQ":  {lexer.EQ, "=="},
	"NE":  {lexer.NOT_EQ, "!="},
	"LT":  {lexer.LT, "<"},
	"LE":  {lexer.LE, "<="},
	"GT":  {lexer.GT, ">"},
	"GE":  {lexer.GE, ">="},
	"ADD": {lexer.PLUS, "+"},
}

var unaryOperators = map[string]operator{
	"unaryMinus": {lexer.MINUS, "-"},
	"bitwiseNot": {lexer.BITWISE_NOT, "~"},
}

// staticMethods are kept as calls on the native BigInt constructor.
var staticMethods = map[string]bool{
	"asIntN":  true,
	"asUintN": true,
}

// OperationKind classifies a namespace member name.
type OperationKind int

const (
	OpUnknown OperationKind = iota
	OpConstructor
	OpConversion
	OpBinary
	OpUnary
	OpStatic
)

func (k OperationKind) String() string {
	switch k {
	case OpConstructor:
		return "constructor"
	case OpConversion:
		return "conversion"
	case OpBinary:
		return "binary"
	case OpUnary:
		return "unary"
	case OpStatic:
		return "static"
	default:
		return "unknown"
	}
}

// Classify reports which rewrite applies to the namespace member name.
func Classify(name string) OperationKind {
	switch {
	case name == constructorName:
		return OpConstructor
	case name == conversionName:
		return OpConversion
	}
	if _, ok := binaryOperators[name]; ok {
		return OpBinary
	}
	if _, ok := unaryOperators[name]; ok {
		return OpUnary
	}
	if staticMethods[name] {
		return OpStatic
	}
	return OpUnknown
}
