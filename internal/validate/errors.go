package validate

// EnvironmentError reports a failure to read the dataset itself, as opposed
// to a problem with its content. It aborts the run.
type EnvironmentError struct {
	Op   string
	Path string
	Err  error
}

// Error returns the formatted error string with context.
func (e *EnvironmentError) Error() string {
	if e.Path != "" && e.Path != "." {
		return e.Op + ": " + e.Path + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *EnvironmentError) Unwrap() error {
	return e.Err
}
