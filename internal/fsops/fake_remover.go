package fsops

// FakeRemover implements Remover for testing
// Records all remove calls without performing actual unlinks
type FakeRemover struct {
	Calls []string
	Err   error
}

func (f *FakeRemover) Remove(path string) error {
	f.Calls = append(f.Calls, path)
	return f.Err
}
