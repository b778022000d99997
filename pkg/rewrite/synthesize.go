package rewrite

import (
	"fmt"
	"math"
	"math/big"

	"github.com/dlclark/regexp2"

	"jsbi2bigint/pkg/errors"
	"jsbi2bigint/pkg/lexer"
	"jsbi2bigint/pkg/parser"
)

// canonicalInteger matches decimal strings that BigInt() parses to the same digits.
var canonicalInteger = regexp2.MustCompile(`^(?:0|[1-9][0-9]*)$`, regexp2.None)

// synthesize builds the native replacement for a call of the namespace member name.
// It only looks at the arguments it is given; site positions the result and any error.
func synthesize(name string, args []parser.Expression, site parser.Node) (parser.Expression, error) {
	at := parser.StartToken(site)

	switch Classify(name) {
	case OpConstructor:
		if len(args) == 1 {
			if lit, ok := foldLiteral(args[0], at); ok {
				return lit, nil
			}
		}
		return &parser.CallExpression{
			Token:     synthToken(at, lexer.LPAREN, "("),
			Function:  &parser.Identifier{Token: synthToken(at, lexer.IDENT, "BigInt"), Value: "BigInt"},
			Arguments: args,
		}, nil

	case OpBinary:
		if len(args) != 2 {
			return nil, rewriteError(at, "Binary operators must have exactly two arguments")
		}
		if err := rejectSpread(args); err != nil {
			return nil, err
		}
		op := binaryOperators[name]
		return &parser.InfixExpression{
			Token:    synthToken(at, op.tok, op.text),
			Operator: op.text,
			Left:     args[0],
			Right:    args[1],
		}, nil

	case OpUnary:
		if len(args) != 1 {
			return nil, rewriteError(at, "Unary operators must have exactly one argument")
		}
		if err := rejectSpread(args); err != nil {
			return nil, err
		}
		op := unaryOperators[name]
		return &parser.PrefixExpression{
			Token:    synthToken(at, op.tok, op.text),
			Operator: op.text,
			Right:    args[0],
		}, nil

	case OpStatic:
		if len(args) != 2 {
			return nil, rewriteError(at, "Static methods must have exactly two arguments")
		}
		return &parser.CallExpression{
			Token: synthToken(at, lexer.LPAREN, "("),
			Function: &parser.MemberExpression{
				Token:    synthToken(at, lexer.DOT, "."),
				Object:   &parser.Identifier{Token: synthToken(at, lexer.IDENT, "BigInt"), Value: "BigInt"},
				Property: &parser.Identifier{Token: synthToken(at, lexer.IDENT, name), Value: name},
			},
			Arguments: args,
		}, nil

	case OpConversion:
		if len(args) != 1 {
			return nil, rewriteError(at, "toNumber must have exactly one argument")
		}
		return &parser.CallExpression{
			Token:     synthToken(at, lexer.LPAREN, "("),
			Function:  &parser.Identifier{Token: synthToken(at, lexer.IDENT, "Number"), Value: "Number"},
			Arguments: args,
		}, nil
	}

	return nil, rewriteError(at, "Unknown JSBI function '%s'", name)
}

// foldLiteral turns a numeric or string literal holding a non-negative integer into a
// BigInt literal with the same value.
func foldLiteral(arg parser.Expression, at lexer.Token) (*parser.BigIntLiteral, bool) {
	var digits string
	switch lit := arg.(type) {
	case *parser.NumberLiteral:
		v := lit.Value
		if math.IsInf(v, 0) || math.IsNaN(v) || v < 0 || v != math.Trunc(v) {
			return nil, false
		}
		// A float64 integer converts exactly.
		digits = new(big.Float).SetFloat64(v).Text('f', 0)
	case *parser.StringLiteral:
		ok, err := canonicalInteger.MatchString(lit.Value)
		if err != nil || !ok {
			return nil, false
		}
		digits = lit.Value
	default:
		return nil, false
	}
	return &parser.BigIntLiteral{Token: synthToken(at, lexer.BIGINT, digits+"n"), Value: digits}, true
}

func rejectSpread(args []parser.Expression) error {
	for _, arg := range args {
		if spread, ok := arg.(*parser.SpreadElement); ok {
			return rewriteError(spread.Token, "Spread arguments cannot be rewritten into operators")
		}
	}
	return nil
}

// synthToken makes a token for a generated node, positioned at the node it replaces.
func synthToken(at lexer.Token, typ lexer.TokenType, literal string) lexer.Token {
	return lexer.Token{
		Type:     typ,
		Literal:  literal,
		Line:     at.Line,
		Column:   at.Column,
		StartPos: at.StartPos,
		EndPos:   at.EndPos,
	}
}

// rewriteError builds a RewriteError at tok. The source file is attached by Process.
func rewriteError(tok lexer.Token, format string, args ...any) *errors.RewriteError {
	return &errors.RewriteError{
		Position: errors.Position{
			Line:     tok.Line,
			Column:   tok.Column,
			StartPos: tok.StartPos,
			EndPos:   tok.EndPos,
		},
		Msg: fmt.Sprintf(format, args...),
	}
}
