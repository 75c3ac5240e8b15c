package models

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
	StatusPending   UserStatus = "pending"
)

// DefaultStatus is assigned to users created without an explicit status.
const DefaultStatus = StatusActive

var statuses = []UserStatus{StatusActive, StatusInactive, StatusSuspended, StatusPending}

// Statuses returns every status in display order.
func Statuses() []UserStatus {
	return append([]UserStatus(nil), statuses...)
}

// StatusValues returns the raw values, for validation rules.
func StatusValues() []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusPending:
		return true
	}
	return false
}

// Label returns the English display name.
func (s UserStatus) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusInactive:
		return "Inactive"
	case StatusSuspended:
		return "Suspended"
	case StatusPending:
		return "Pending"
	}
	return string(s)
}

// Color returns the badge color used by clients.
func (s UserStatus) Color() string {
	switch s {
	case StatusActive:
		return "green"
	case StatusInactive:
		return "gray"
	case StatusSuspended:
		return "red"
	case StatusPending:
		return "yellow"
	}
	return "gray"
}

// LabelKey is the i18n code of the status label.
func (s UserStatus) LabelKey() string { return "status." + string(s) }
