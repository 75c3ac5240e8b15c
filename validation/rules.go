package validation

import (
	"maps"
	"slices"
)

// Kind identifies a rule modifier.
type Kind int

const (
	KindRequired Kind = iota
	KindSometimes
	KindNullable
	KindConfirmed
	KindString
	KindEmail
	KindInteger
	KindMin
	KindMax
	KindIn
	KindUnique
	KindPassword
	KindMaxBytes
)

var kindNames = map[Kind]string{
	KindRequired:  "required",
	KindSometimes: "sometimes",
	KindNullable:  "nullable",
	KindConfirmed: "confirmed",
	KindString:    "string",
	KindEmail:     "email",
	KindInteger:   "integer",
	KindMin:       "min",
	KindMax:       "max",
	KindIn:        "in",
	KindUnique:    "unique",
	KindPassword:  "password",
	KindMaxBytes:  "max_bytes",
}

func (k Kind) String() string { return kindNames[k] }

// Rule is one modifier of a field rule.
type Rule struct {
	Kind Kind
	// N is the bound for KindMin, KindMax and KindMaxBytes.
	N int
	// Values is the closed set for KindIn.
	Values []string
	// Column is the persisted column checked by KindUnique.
	Column string
	// IgnoreTarget scopes KindUnique to rows other than the target resource.
	IgnoreTarget bool
	// Password holds the strength requirements for KindPassword.
	Password PasswordRule
}

func Required() Rule  { return Rule{Kind: KindRequired} }
func Sometimes() Rule { return Rule{Kind: KindSometimes} }
func Nullable() Rule  { return Rule{Kind: KindNullable} }
func Confirmed() Rule { return Rule{Kind: KindConfirmed} }
func String() Rule    { return Rule{Kind: KindString} }
func Email() Rule     { return Rule{Kind: KindEmail} }
func Integer() Rule   { return Rule{Kind: KindInteger} }
func Min(n int) Rule  { return Rule{Kind: KindMin, N: n} }
func Max(n int) Rule  { return Rule{Kind: KindMax, N: n} }

// MaxBytes bounds the encoded length of a string, unlike Max which counts
// characters.
func MaxBytes(n int) Rule { return Rule{Kind: KindMaxBytes, N: n} }

// In restricts a value to values.
func In(values ...string) Rule {
	return Rule{Kind: KindIn, Values: slices.Clone(values)}
}

// Unique requires that no stored row already holds the value in column.
func Unique(column string) Rule {
	return Rule{Kind: KindUnique, Column: column}
}

// UniqueIgnoringTarget is Unique scoped to exclude the resource being updated.
func UniqueIgnoringTarget(column string) Rule {
	return Rule{Kind: KindUnique, Column: column, IgnoreTarget: true}
}

// Password applies the strength requirements in p.
func Password(p PasswordRule) Rule {
	return Rule{Kind: KindPassword, Password: p}
}

// Field is the ordered rule list of one field plus its default value.
// Default is applied when the field is absent from the input.
type Field struct {
	Rules   []Rule
	Default any
}

// Has reports whether the field carries any rule of the given kinds.
func (f Field) Has(kinds ...Kind) bool {
	for _, r := range f.Rules {
		if slices.Contains(kinds, r.Kind) {
			return true
		}
	}
	return false
}

// RuleSet maps field names to their rules. It is immutable once built.
type RuleSet struct {
	fields map[string]Field
}

// NewRuleSet copies fields into a RuleSet.
func NewRuleSet(fields map[string]Field) RuleSet {
	rs := RuleSet{fields: make(map[string]Field, len(fields))}
	for name, f := range fields {
		rs.fields[name] = Field{Rules: cloneRules(f.Rules), Default: f.Default}
	}
	return rs
}

// Field returns the rules of name.
func (rs RuleSet) Field(name string) (Field, bool) {
	f, ok := rs.fields[name]
	if !ok {
		return Field{}, false
	}
	f.Rules = cloneRules(f.Rules)
	return f, true
}

func cloneRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		r.Values = slices.Clone(r.Values)
		out[i] = r
	}
	return out
}

// Names returns the field names, sorted.
func (rs RuleSet) Names() []string {
	return slices.Sorted(maps.Keys(rs.fields))
}

// Len returns the number of fields with rules.
func (rs RuleSet) Len() int { return len(rs.fields) }
