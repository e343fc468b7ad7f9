package contexthelpers

type contextKey string

const (
	CurrentPathContextKey = contextKey("currentPath")
	CspNonceContextKey    = contextKey("cspNonce")
	SavedProgramsKey      = contextKey("savedPrograms")
)
