package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionManage covers operations that are neither CRUD nor reads, such
	// as balance adjustments and factory reset.
	ActionManage Action = "manage"
)
