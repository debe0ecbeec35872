package fsops

// Remover abstracts filesystem unlink operations performed after a
// successful shred. Enables mocking in tests to prove dry-run and
// shred-only modes never delete anything.
type Remover interface {
	Remove(path string) error
}
