package rewrite

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
)

// ModuleMatcher recognizes import sources that refer to the polyfill module.
//
// A source matches when it equals the module name, or when it ends with a path separator
// followed by the module file name. Both comparisons ignore case. Any directory prefix
// is accepted, so "./vendor/jsbi.mjs" and "..\\lib\\JSBI.MJS" both match.
type ModuleMatcher struct {
	module string // case folded
	suffix *regexp2.Regexp
}

// NewModuleMatcher returns a matcher for module (e.g. "jsbi") with file extension ext (e.g. ".mjs").
func NewModuleMatcher(module, ext string) (*ModuleMatcher, error) {
	if module == "" {
		return nil, fmt.Errorf("module name must not be empty")
	}
	suffix, err := regexp2.Compile(`[/\\]`+regexp2.Escape(module+ext)+`$`, regexp2.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("compiling module pattern: %w", err)
	}
	return &ModuleMatcher{module: fold(module), suffix: suffix}, nil
}

// Match reports whether an import source refers to the module.
func (m *ModuleMatcher) Match(source string) bool {
	if fold(source) == m.module {
		return true
	}
	ok, err := m.suffix.MatchString(source)
	return err == nil && ok
}

// fold case-folds s. A Caser keeps state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
