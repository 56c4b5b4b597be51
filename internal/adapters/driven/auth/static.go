package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.AuthProvider = (*StaticProvider)(nil)

// StaticProvider maps every caller to one configured user. Meant for
// single-user local installs where the token is ignored.
type StaticProvider struct {
	userID string
}

// NewStaticProvider creates a provider that always returns userID.
func NewStaticProvider(userID string) (*StaticProvider, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: static auth requires a user", domain.ErrConfiguration)
	}
	return &StaticProvider{userID: userID}, nil
}

// Authenticate ignores token and returns the configured user.
func (p *StaticProvider) Authenticate(_ context.Context, _ string) (string, error) {
	return p.userID, nil
}
