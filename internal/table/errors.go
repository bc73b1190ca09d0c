package table

// Error kinds returned by table operations. Callers match them with errors.As.
type (
	// NotFoundError indicates a named header does not exist where one is required
	NotFoundError struct{ Message string }
	// InvalidArgumentError indicates a malformed call-time argument
	InvalidArgumentError struct{ Message string }
	// EmptySchemaError indicates a header reduction left no columns
	EmptySchemaError struct{ Message string }
)

func (e NotFoundError) Error() string        { return e.Message }
func (e InvalidArgumentError) Error() string { return e.Message }
func (e EmptySchemaError) Error() string     { return e.Message }
