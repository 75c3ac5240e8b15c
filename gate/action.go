package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionViewAny      Action = "viewAny"
	ActionView         Action = "view"
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionUpdateStatus Action = "updateStatus"
	ActionDelete       Action = "delete"
	ActionRestore      Action = "restore"
	ActionForceDelete  Action = "forceDelete"
)

// Actions lists every action a policy is expected to answer for.
var Actions = []Action{
	ActionViewAny,
	ActionView,
	ActionCreate,
	ActionUpdate,
	ActionUpdateStatus,
	ActionDelete,
	ActionRestore,
	ActionForceDelete,
}
