package users

import (
	"github.com/diewo77/go-users/internal/models"
	"github.com/diewo77/go-users/validation"
)

// Pagination bounds of the list endpoint.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// DefaultPasswordRule is the strength policy applied on create.
var DefaultPasswordRule = validation.PasswordRule{
	Min:       8,
	MixedCase: true,
	Numbers:   true,
	Symbols:   true,
}

func statusRule() validation.Rule {
	return validation.In(models.StatusValues()...)
}

// CreateRules returns the rules of the create payload.
func CreateRules(pw validation.PasswordRule) validation.RuleSet {
	return validation.NewRuleSet(map[string]validation.Field{
		"username": {Rules: []validation.Rule{
			validation.Required(), validation.String(), validation.Max(40), validation.Unique("username"),
		}},
		"email": {Rules: []validation.Rule{
			validation.Required(), validation.Email(), validation.Unique("email"),
		}},
		"password": {Rules: []validation.Rule{
			validation.Required(), validation.Confirmed(), validation.MaxBytes(MaxPasswordBytes), validation.Password(pw),
		}},
		"status": {
			Rules:   []validation.Rule{validation.Sometimes(), validation.Required(), statusRule()},
			Default: string(models.DefaultStatus),
		},
	})
}

// UpdateRules returns the rules of the update payload. Uniqueness ignores
// the user being updated.
func UpdateRules() validation.RuleSet {
	return validation.NewRuleSet(map[string]validation.Field{
		"username": {Rules: []validation.Rule{
			validation.Required(), validation.String(), validation.Max(40), validation.UniqueIgnoringTarget("username"),
		}},
		"email": {Rules: []validation.Rule{
			validation.Required(), validation.Email(), validation.Max(255), validation.UniqueIgnoringTarget("email"),
		}},
		"password": {Rules: []validation.Rule{
			validation.Sometimes(), validation.Nullable(), validation.String(), validation.Min(8), validation.Max(255),
			validation.MaxBytes(MaxPasswordBytes),
		}},
		"status": {Rules: []validation.Rule{
			validation.Sometimes(), validation.Required(), statusRule(),
		}},
	})
}

// ListRules returns the rules of the list query string.
func ListRules() validation.RuleSet {
	return validation.NewRuleSet(map[string]validation.Field{
		"username": {Rules: []validation.Rule{
			validation.Sometimes(), validation.Required(), validation.String(), validation.Max(40),
		}},
		"email": {Rules: []validation.Rule{
			validation.Sometimes(), validation.Required(), validation.String(), validation.Max(255),
		}},
		"status": {Rules: []validation.Rule{
			validation.Sometimes(), validation.Required(), statusRule(),
		}},
		"per_page": {
			Rules:   []validation.Rule{validation.Sometimes(), validation.Required(), validation.Integer(), validation.Min(1), validation.Max(MaxPerPage)},
			Default: DefaultPerPage,
		},
		"page": {
			Rules:   []validation.Rule{validation.Sometimes(), validation.Required(), validation.Integer(), validation.Min(1)},
			Default: 1,
		},
	})
}

// LoginRules returns the rules of the login payload.
func LoginRules() validation.RuleSet {
	return validation.NewRuleSet(map[string]validation.Field{
		"login":    {Rules: []validation.Rule{validation.Required(), validation.String(), validation.Max(255)}},
		"password": {Rules: []validation.Rule{validation.Required(), validation.String()}},
	})
}
