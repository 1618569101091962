package rt

import "fmt"

// ErrorCode identifies a runtime invariant violation.
type ErrorCode int

// Stable error codes - do not change values.
const (
	ErrInvalidStablePointer ErrorCode = 1001 // RT1001: unknown or disposed stable pointer
	ErrUseAfterFree         ErrorCode = 1002 // RT1002: reference to a collected object
	ErrTypeMismatch         ErrorCode = 1003 // RT1003: value of the wrong kind
	ErrMissingMethod        ErrorCode = 1004 // RT1004: callee symbol not registered
	ErrNotInitialized       ErrorCode = 1005 // RT1005: runtime used before init
	ErrWrongThreadState     ErrorCode = 1006 // RT1006: managed access from native state
	ErrFrameMismatch        ErrorCode = 1007 // RT1007: frames left out of order
)

// String returns the code as "RT1001" format.
func (c ErrorCode) String() string {
	return fmt.Sprintf("RT%d", c)
}

// Error is raised (as a Go panic) when adapter code breaks a runtime
// invariant. It is never a managed exception and is never contained.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("runtime error %s: %s", e.Code, e.Message)
}

func fail(code ErrorCode, format string, args ...any) {
	panic(&Error{Code: code, Message: fmt.Sprintf(format, args...)})
}
