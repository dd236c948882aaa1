package mock

import "fmt"

// MissingScalarOverrideError reports a scalar registered with
// WithScalarValue whose value is nil.
type MissingScalarOverrideError struct {
	Scalar string
	Path   string
}

func (e *MissingScalarOverrideError) Error() string {
	return fmt.Sprintf("value registered for scalar %q is nil (at %s)", e.Scalar, e.Path)
}

// UnresolvableScalarError reports a custom scalar that has neither a
// registered value nor a kind.
type UnresolvableScalarError struct {
	Scalar string
	Path   string
}

func (e *UnresolvableScalarError) Error() string {
	return fmt.Sprintf("no default for scalar %q (at %s): register a value or kind for it", e.Scalar, e.Path)
}

type DepthLimitError struct {
	Limit int
	Path  string
}

func (e *DepthLimitError) Error() string {
	return fmt.Sprintf("mock value exceeds maximum depth %d at %s", e.Limit, e.Path)
}
