package middlewares

const (
	CtxRequestID = "request_id"

	ctxUsernameKey = "auth.username"
	ctxRoleKey     = "auth.role"
)
