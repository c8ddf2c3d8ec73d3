package drop

import "github.com/atotto/clipboard"

// Clipboard reads the system clipboard. Tests swap in a fake.
type Clipboard interface {
	ReadAll() (string, error)
}

// SystemClipboard is the OS-backed [Clipboard].
type SystemClipboard struct{}

func (SystemClipboard) ReadAll() (string, error) {
	return clipboard.ReadAll()
}
