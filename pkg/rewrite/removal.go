package rewrite

import "jsbi2bigint/pkg/parser"

// removals collects nodes to delete during the walk and deletes them all afterwards,
// so the tree is never mutated structurally while it is being traversed.
type removals struct {
	order     []parser.Node
	scheduled map[parser.Node]bool
	committed bool
}

func newRemovals() *removals {
	return &removals{scheduled: make(map[parser.Node]bool)}
}

// schedule queues an *parser.ImportDeclaration or *parser.VariableDeclarator for deletion.
// Scheduling a node twice has no further effect.
func (r *removals) schedule(n parser.Node) {
	if r.committed {
		panic("rewrite: schedule after commit")
	}
	if r.scheduled[n] {
		return
	}
	r.scheduled[n] = true
	r.order = append(r.order, n)
}

// nodes returns the scheduled nodes in scheduling order.
func (r *removals) nodes() []parser.Node {
	return r.order
}

// commit deletes every scheduled node from program. It may run only once.
//
// A declaration left without declarators is deleted as a whole, together with an
// export wrapper. In a for head the initializer is cleared instead, and a single
// statement body becomes an empty statement.
func (r *removals) commit(program *parser.Program) {
	if r.committed {
		panic("rewrite: removals committed twice")
	}
	r.committed = true
	if len(r.order) == 0 {
		return
	}

	program.Statements = r.pruneList(program.Statements)
	parser.Inspect(program, func(n parser.Node) bool {
		switch s := n.(type) {
		case *parser.BlockStatement:
			s.Statements = r.pruneList(s.Statements)
		case *parser.IfStatement:
			s.Consequence = r.pruneSlot(s.Consequence)
			if s.Alternative != nil {
				s.Alternative = r.pruneSlot(s.Alternative)
			}
		case *parser.WhileStatement:
			s.Body = r.pruneSlot(s.Body)
		case *parser.ForStatement:
			if s.Init != nil {
				if init, keep := r.prune(s.Init); keep {
					s.Init = init
				} else {
					s.Init = nil
				}
			}
			s.Body = r.pruneSlot(s.Body)
		}
		return true
	})
}

func (r *removals) pruneList(stmts []parser.Statement) []parser.Statement {
	kept := stmts[:0]
	for _, stmt := range stmts {
		if s, keep := r.prune(stmt); keep {
			kept = append(kept, s)
		}
	}
	return kept
}

// pruneSlot prunes a statement that cannot be dropped from its parent.
func (r *removals) pruneSlot(stmt parser.Statement) parser.Statement {
	if s, keep := r.prune(stmt); keep {
		return s
	}
	return &parser.EmptyStatement{Token: parser.StartToken(stmt)}
}

// prune applies the scheduled removals to one statement and reports whether anything
// of it remains.
func (r *removals) prune(stmt parser.Statement) (parser.Statement, bool) {
	switch s := stmt.(type) {
	case *parser.ImportDeclaration:
		return s, !r.scheduled[s]
	case *parser.VariableDeclaration:
		kept := s.Declarators[:0]
		for _, d := range s.Declarators {
			if !r.scheduled[d] {
				kept = append(kept, d)
			}
		}
		s.Declarators = kept
		return s, len(kept) > 0
	case *parser.ExportNamedDeclaration:
		if s.Declaration == nil {
			return s, true
		}
		_, keep := r.prune(s.Declaration)
		return s, keep
	}
	return stmt, true
}
