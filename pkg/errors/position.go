package errors

import (
	"fmt"

	"jsbi2bigint/pkg/source"
)

// Position represents a specific location in the source code.
// Line and Column are 1-based; StartPos and EndPos are 0-based byte offsets.
type Position struct {
	Line     int
	Column   int
	StartPos int
	EndPos   int                // exclusive
	Source   *source.SourceFile // may be nil for synthesized input
}

// String formats the position as file:line:col, omitting the file when unknown.
func (p Position) String() string {
	if p.Source != nil {
		return fmt.Sprintf("%s:%d:%d", p.Source.DisplayPath(), p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
