package stock

import "fmt"

// ValidationError reports input outside the allowed domain: a missing required
// field, a destination not in the fixed location set, an empty VIN batch.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NotFoundError reports an absent record.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// PermissionError reports a role lacking access to an action.
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role not permitted to %s", e.Action)
}

// RemoteStoreError wraps a database failure at the read or write boundary.
// These surface as a generic failure notice; there is no automatic retry.
type RemoteStoreError struct {
	Op  string
	Err error
}

func (e *RemoteStoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *RemoteStoreError) Unwrap() error { return e.Err }
