package quota

import (
	"errors"
	"fmt"
)

// TotalLimitName is the limit name reported when the overall ceiling is hit.
const TotalLimitName = "totalUsageLimit"

// LimitError reports a quota ceiling that blocked a track call. It always
// carries the limit value and the current used count so callers can render
// remaining quota.
type LimitError struct {
	LimitName string
	Limit     int
	Used      int
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("quota: %s reached (limit=%d used=%d)", e.LimitName, e.Limit, e.Used)
}

// AsLimitError unwraps a LimitError if err carries one.
func AsLimitError(err error) (*LimitError, bool) {
	var limitErr *LimitError
	if errors.As(err, &limitErr) {
		return limitErr, true
	}
	return nil, false
}
