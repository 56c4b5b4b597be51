package driven

import "context"

// ObjectStore keeps the original bytes of uploaded files.
type ObjectStore interface {
	// Put stores content under a name derived from name and returns a reference
	// that can later locate the object.
	Put(ctx context.Context, content []byte, name string) (string, error)
}
