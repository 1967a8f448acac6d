package common

// ContextKey is the type used for values stored in request locals.
type ContextKey string

const (
	RequestIDContextKey ContextKey = "request_id"
	PolicyContextKey    ContextKey = "endpoint_policy"
	SkipContextKey      ContextKey = "admission_skip"
	IdentityContextKey  ContextKey = "client_identity"
	ClaimsContextKey    ContextKey = "auth_claims"
	PrincipalContextKey ContextKey = "principal_id"
	RoleContextKey      ContextKey = "principal_role"
)
