package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/auth"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestOpenStores(t *testing.T) {
	st, err := openStores(context.Background(), domain.StorageSettings{Driver: domain.StorageDriverMemory})
	require.NoError(t, err)
	defer st.close()
	assert.NotNil(t, st.documents)
	assert.NotNil(t, st.history)

	st, err = openStores(context.Background(), domain.StorageSettings{Driver: domain.StorageDriverSQLite, DataDir: t.TempDir()})
	require.NoError(t, err)
	st.close()

	_, err = openStores(context.Background(), domain.StorageSettings{Driver: "mongo"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestBuildServices(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Storage = domain.StorageSettings{Driver: domain.StorageDriverMemory, ObjectDir: t.TempDir()}

	st, err := openStores(context.Background(), settings.Storage)
	require.NoError(t, err)

	svc, err := buildServices(&settings, st, &ai.Services{})
	require.NoError(t, err)
	assert.NotNil(t, svc.Ingest)
	assert.NotNil(t, svc.Ask)
	assert.NotNil(t, svc.Metrics)
	assert.Nil(t, svc.Tokens)

	owner, err := svc.Auth.Authenticate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, settings.Auth.StaticUser, owner)

	// Unconfigured providers surface on use, not at wiring time.
	_, err = svc.Ingest.Ingest(context.Background(), owner, "some text", "a.txt")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestBuildServices_JWTIssuesTokens(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Storage = domain.StorageSettings{Driver: domain.StorageDriverMemory, ObjectDir: t.TempDir()}
	settings.Auth = domain.AuthSettings{Mode: domain.AuthModeJWT, JWTSecret: "test-secret", JWTIssuer: "docqa"}

	st, err := openStores(context.Background(), settings.Storage)
	require.NoError(t, err)

	svc, err := buildServices(&settings, st, &ai.Services{})
	require.NoError(t, err)
	require.NotNil(t, svc.Tokens)
	assert.IsType(t, &auth.JWTProvider{}, svc.Tokens)
}

func TestBuildServices_InvalidChunking(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Storage.ObjectDir = t.TempDir()
	settings.Chunking.Overlap = settings.Chunking.Size

	_, err := buildServices(&settings, &stores{}, &ai.Services{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
