package gate

import "context"

// Policy narrows a profile permission for one resource type. It is only
// consulted when a concrete resource is passed to Authorize.
// U is the user/subject type (e.g., string user ids).
type Policy[U any] interface {
	// Can returns true if user may perform action on resource.
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) bool

func (f PolicyFunc[U]) Can(ctx context.Context, user U, action Action, resource any) bool {
	return f(ctx, user, action, resource)
}
