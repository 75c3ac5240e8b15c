package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/diewo77/go-users/i18n"
)

// Lookup answers uniqueness questions against the persistence store.
type Lookup interface {
	// ExistsByField reports whether a stored row has value in column,
	// ignoring the row whose id is excludeID when it is non-nil.
	ExistsByField(ctx context.Context, column string, value any, excludeID *uint) (bool, error)
}

// BreachChecker reports whether a plaintext password is known to be leaked.
type BreachChecker interface {
	IsCompromised(ctx context.Context, plaintext string) (bool, error)
}

// Options carries the collaborators and scope of one Shape call.
type Options struct {
	// ExcludeID is the target resource id used by UniqueIgnoringTarget rules.
	ExcludeID *uint
	Lookup    Lookup
	// Breach is consulted by password rules with Uncompromised set. A nil
	// checker disables the check.
	Breach BreachChecker
}

// Shape validates input against rs and returns the persistence-ready payload.
// Every field is checked before reporting; a failed validation returns *Error.
// Other errors come from the Lookup or BreachChecker collaborators.
func Shape(ctx context.Context, rs RuleSet, input map[string]any, opts Options) (map[string]any, error) {
	v := make(Violations)
	validated := make(map[string]any, rs.Len())

	for _, name := range rs.Names() {
		field, _ := rs.Field(name)
		value, present := input[name]
		if !present {
			if field.Default != nil {
				validated[name] = field.Default
			}
			if field.Has(KindSometimes) {
				continue
			}
		}
		if err := checkField(ctx, name, field, value, input, opts, v); err != nil {
			return nil, err
		}
		if present {
			validated[name] = value
		}
	}

	if !v.Empty() {
		return nil, &Error{Violations: v}
	}
	return Filter(rs, validated), nil
}

// Filter applies the inclusion predicate: a field without rules passes
// through, a field marked required or sometimes is dropped when its value
// is not filled.
func Filter(rs RuleSet, data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, val := range data {
		if f, ok := rs.Field(k); ok && f.Has(KindRequired, KindSometimes) && !Filled(val) {
			continue
		}
		out[k] = val
	}
	return out
}

// Output shapes data for a response: every field passes through except
// password and the extra hidden keys.
func Output(data map[string]any, hidden ...string) map[string]any {
	out := Filter(RuleSet{}, data)
	delete(out, "password")
	for _, h := range hidden {
		delete(out, h)
	}
	return out
}

// Filled reports whether value carries content: nil, blank strings and
// empty collections are not filled.
func Filled(value any) bool {
	switch t := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case *string:
		return t != nil && strings.TrimSpace(*t) != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func checkField(ctx context.Context, name string, field Field, value any, input map[string]any, opts Options, v Violations) error {
	if !Filled(value) {
		if field.Has(KindRequired) {
			v.Add(name, i18n.Tc(ctx, "required"))
		}
		// empty optional values skip the remaining rules
		return nil
	}

	numeric := field.Has(KindInteger)
	for _, r := range field.Rules {
		switch r.Kind {
		case KindRequired, KindSometimes, KindNullable:
		case KindConfirmed:
			if conf, ok := input[name+"_confirmation"]; !ok || !sameScalar(conf, value) {
				v.Add(name, i18n.Tc(ctx, "confirmed"))
			}
		case KindString:
			if _, ok := value.(string); !ok {
				v.Add(name, i18n.Tc(ctx, "string"))
			}
		case KindEmail:
			if !isEmail(value) {
				v.Add(name, i18n.Tc(ctx, "email"))
			}
		case KindInteger:
			if _, ok := Int(value); !ok {
				v.Add(name, i18n.Tc(ctx, "integer"))
			}
		case KindMin:
			if size, ok := sizeOf(value, numeric); ok && size < float64(r.N) {
				v.Add(name, i18n.Tc(ctx, "min."+sizeKind(numeric), r.N))
			}
		case KindMax:
			if size, ok := sizeOf(value, numeric); ok && size > float64(r.N) {
				v.Add(name, i18n.Tc(ctx, "max."+sizeKind(numeric), r.N))
			}
		case KindMaxBytes:
			if s, ok := value.(string); ok && len(s) > r.N {
				v.Add(name, i18n.Tc(ctx, "max.bytes", r.N))
			}
		case KindIn:
			if s, ok := value.(string); !ok || !slices.Contains(r.Values, s) {
				v.Add(name, i18n.Tc(ctx, "in"))
			}
		case KindUnique:
			// a malformed value has already failed and cannot be looked up
			if len(v[name]) > 0 || !isScalar(value) {
				continue
			}
			if opts.Lookup == nil {
				return fmt.Errorf("validation: unique rule on %q without lookup", name)
			}
			var exclude *uint
			if r.IgnoreTarget {
				exclude = opts.ExcludeID
			}
			exists, err := opts.Lookup.ExistsByField(ctx, r.Column, value, exclude)
			if err != nil {
				return fmt.Errorf("validation: unique %s: %w", r.Column, err)
			}
			if exists {
				v.Add(name, i18n.Tc(ctx, "unique"))
			}
		case KindPassword:
			s, ok := value.(string)
			if !ok {
				v.Add(name, i18n.Tc(ctx, "string"))
				continue
			}
			if err := r.Password.check(ctx, name, s, opts.Breach, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func isScalar(value any) bool {
	switch value.(type) {
	case string, json.Number:
		return true
	}
	return false
}

// sameScalar compares two payload values of the same scalar type.
func sameScalar(a, b any) bool {
	if !isScalar(a) || !isScalar(b) {
		return false
	}
	return a == b
}

func sizeKind(numeric bool) string {
	if numeric {
		return "numeric"
	}
	return "string"
}

func sizeOf(value any, numeric bool) (float64, bool) {
	if numeric {
		n, ok := Int(value)
		return float64(n), ok
	}
	s, ok := value.(string)
	if !ok {
		return 0, false
	}
	return float64(utf8.RuneCountInString(s)), true
}

func isEmail(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && at < len(s)-1
}

// Int converts a decoded JSON or query-string value to an int.
func Int(value any) (int, bool) {
	switch t := value.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := strconv.Atoi(t.String())
		return n, err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		return 0, false
	}
}
