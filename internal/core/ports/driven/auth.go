package driven

import "context"

// AuthProvider validates an external identity token and returns the user it names.
// Callers depend only on this interface, never on a concrete token format.
type AuthProvider interface {
	// Authenticate returns the user ID for token.
	// Returns domain.ErrUnauthenticated if the token is missing or invalid.
	Authenticate(ctx context.Context, token string) (string, error)
}
