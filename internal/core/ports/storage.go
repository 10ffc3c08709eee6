package ports

// OptionStore persists named option values as JSON documents. It is the
// narrow contract this client requires from the host platform's settings
// storage: get, set, and delete by option name.
type OptionStore interface {
	// Get unmarshals the named option into out. It returns false with a nil
	// error when the option does not exist.
	Get(name string, out any) (bool, error)

	// Set persists the value under the given name, replacing any previous
	// value wholesale.
	Set(name string, value any) error

	// Delete removes the named option. Deleting a missing option is not an
	// error.
	Delete(name string) error
}
