package scanner

import "github.com/fazecat/squeezescope/Internal/types"

// Normalize flattens a list payload into rows. The returned slice aliases
// the payload's rows; callers must not mutate it.
func Normalize(payload types.RowsPayload) []types.Row {
	if payload.Kind == types.PayloadAbsent || payload.Rows == nil {
		return []types.Row{}
	}
	return payload.Rows
}
