// Package auth provides identity providers that turn a caller token into an owner ID.
package auth

import (
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// NewProvider creates the AuthProvider selected by settings.
func NewProvider(settings domain.AuthSettings) (driven.AuthProvider, error) {
	switch settings.Mode {
	case domain.AuthModeStatic, "":
		return NewStaticProvider(settings.StaticUser)
	case domain.AuthModeJWT:
		return NewJWTProvider(settings.JWTSecret, settings.JWTIssuer)
	default:
		return nil, fmt.Errorf("%w: unknown auth mode %q", domain.ErrConfiguration, settings.Mode)
	}
}
