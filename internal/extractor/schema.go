package extractor

// UnitKind classifies how a semantic unit is declared.
type UnitKind string

const (
	KindFunction UnitKind = "function" // top-level named function declaration
	KindBound    UnitKind = "bound"    // function bound to a local variable
	KindMethod   UnitKind = "method"   // method of a class or object literal
	KindCallback UnitKind = "callback" // anonymous reactive-callback registration
)

// Param represents a single parameter of a semantic unit.
type Param struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Optional bool   `json:"optional,omitempty"`
	Default  string `json:"default,omitempty"`
}

// SourceUnit is a named or positionally-identified block of executable logic.
// All metric fields are heuristics computed from the parse tree, not proofs.
type SourceUnit struct {
	Name           string   `json:"name"`
	Kind           UnitKind `json:"kind"`
	Signature      string   `json:"signature"`
	Parameters     []Param  `json:"parameters"`
	ReturnType     string   `json:"return_type,omitempty"`
	Complexity     int      `json:"complexity"`
	Dependencies   []string `json:"dependencies,omitempty"`
	HasSideEffects bool     `json:"has_side_effects"`
	ContentHash    string   `json:"content_hash"`

	// Enclosing is the path of the unit this one is nested in ("" at top level).
	// CallbackIndex is the positional index among callbacks passed to the same
	// registration word inside the same enclosing unit; -1 for named units.
	Enclosing     string `json:"enclosing,omitempty"`
	CallbackIndex int    `json:"callback_index,omitempty"`
	Anonymous     bool   `json:"anonymous,omitempty"`

	Exported  bool `json:"exported,omitempty"`
	StartLine int  `json:"start_line"`
	EndLine   int  `json:"end_line"`
}

// DependsOn reports whether the unit references the given external symbol.
func (u *SourceUnit) DependsOn(symbol string) bool {
	for _, d := range u.Dependencies {
		if d == symbol {
			return true
		}
	}
	return false
}

// ProgramRepresentation is the structured form of one artifact, built fresh
// per verification call from immutable source text. Units keep declaration
// order; nested named units carry the enclosing path in their name, anonymous
// callbacks are keyed by (enclosing unit, registration word, positional
// index).
type ProgramRepresentation struct {
	ArtifactID string        `json:"artifact_id"`
	Units      []*SourceUnit `json:"units"`
	Imports    []string      `json:"imports,omitempty"`
	// ImportedNames are the local bindings introduced by imports; the
	// dependency-resolvability rule treats them as resolvable symbols.
	ImportedNames []string `json:"imported_names,omitempty"`
	Exports       []string `json:"exports,omitempty"`

	index map[string][]*SourceUnit
}

// AddUnit appends a unit and indexes it by name. Duplicate names are kept in
// declaration order rather than silently overwritten.
func (p *ProgramRepresentation) AddUnit(u *SourceUnit) {
	if u == nil {
		return
	}
	if p.index == nil {
		p.index = make(map[string][]*SourceUnit)
	}
	p.Units = append(p.Units, u)
	p.index[u.Name] = append(p.index[u.Name], u)
}

// Unit returns the first unit with the given name, or nil.
func (p *ProgramRepresentation) Unit(name string) *SourceUnit {
	if us := p.index[name]; len(us) > 0 {
		return us[0]
	}
	return nil
}

// UnitsNamed returns every unit sharing a name, in declaration order.
func (p *ProgramRepresentation) UnitsNamed(name string) []*SourceUnit {
	return p.index[name]
}

// NamedUnits returns the units that carry a declared name.
func (p *ProgramRepresentation) NamedUnits() []*SourceUnit {
	var out []*SourceUnit
	for _, u := range p.Units {
		if !u.Anonymous {
			out = append(out, u)
		}
	}
	return out
}

// CallbacksIn returns the anonymous callbacks registered inside the given
// enclosing unit, ordered by positional index.
func (p *ProgramRepresentation) CallbacksIn(enclosing string) []*SourceUnit {
	var out []*SourceUnit
	for _, u := range p.Units {
		if u.Anonymous && u.Enclosing == enclosing {
			out = append(out, u)
		}
	}
	return out
}

// HasExport reports whether a name is exported by the artifact.
func (p *ProgramRepresentation) HasExport(name string) bool {
	for _, e := range p.Exports {
		if e == name {
			return true
		}
	}
	return false
}
