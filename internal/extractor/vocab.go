package extractor

import "regexp"

// Vocabulary is a named, pluggable word list backing a detection heuristic.
// The lists are explicitly imprecise: false negatives are expected, and a
// match is never treated as a soundness guarantee.
type Vocabulary struct {
	Name  string
	Words []string

	set map[string]bool
}

// NewVocabulary builds a vocabulary from a word list.
func NewVocabulary(name string, words ...string) Vocabulary {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return Vocabulary{Name: name, Words: words, set: set}
}

// Contains reports whether the word is in the vocabulary.
func (v Vocabulary) Contains(word string) bool {
	return v.set[word]
}

// setterPattern matches state-mutation setter calls like setCount or setUser.
var setterPattern = regexp.MustCompile(`^set[A-Z]`)

// IsSetterCall reports whether a call target looks like a state setter.
func IsSetterCall(name string) bool {
	return setterPattern.MatchString(name)
}

// DefaultSideEffectCalls lists call roots treated as side-effecting:
// debug/alert-style calls and UI-surface mutations.
func DefaultSideEffectCalls() Vocabulary {
	return NewVocabulary("side-effect-calls",
		"console", "alert", "confirm", "prompt",
		"document", "window", "localStorage", "sessionStorage",
		"fetch", "dispatch",
	)
}

// DefaultRegistrations lists call targets that register a reactive callback:
// a function run on external state or lifecycle change, with no declared name.
func DefaultRegistrations() Vocabulary {
	return NewVocabulary("reactive-registrations",
		"useEffect", "useLayoutEffect", "useMemo", "useCallback",
		"watch", "watchEffect", "subscribe", "addEventListener",
	)
}

// DefaultValidationGuards lists the words whose presence in a conditional
// guard marks it as validation logic.
func DefaultValidationGuards() Vocabulary {
	return NewVocabulary("validation-guards",
		"required", "valid", "validate", "length",
	)
}

// DefaultStateDeclarators lists the declaration calls that introduce reactive
// state bindings, with their declaration kind.
var DefaultStateDeclarators = map[string]string{
	"useState":   "simple",
	"useReducer": "reducer",
	"ref":        "simple",
	"reactive":   "simple",
}
