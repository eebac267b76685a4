package loader

import "fmt"

// ConfigError reports a structural problem with the module tree or the load
// request itself: no path, an empty tree, a recognized key carrying a value of
// the wrong shape, or a tree that never populates a root operation type.
type ConfigError struct {
	msg string
}

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	return "loader: " + e.msg
}

// SchemaError wraps a schema parse failure with the tree path of the fragment
// that failed, e.g. "Book/Query/books".
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("loader: parse schema at %s: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// FactoryError reports a context-bound factory that failed during
// realization. Kind is "loader" or "middleware".
type FactoryError struct {
	Kind string
	Name string
	Err  error
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("loader: realize %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *FactoryError) Unwrap() error {
	return e.Err
}
