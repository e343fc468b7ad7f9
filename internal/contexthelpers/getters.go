package contexthelpers

import (
	"context"
)

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(CurrentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}

func CSPNonce(ctx context.Context) string {
	cspNonce, ok := ctx.Value(CspNonceContextKey).(string)
	if !ok {
		return ""
	}

	return cspNonce
}

// SavedProgramCount returns how many programs the visitor has saved in their session.
func SavedProgramCount(ctx context.Context) int {
	n, ok := ctx.Value(SavedProgramsKey).(int)
	if !ok {
		return 0
	}
	return n
}
