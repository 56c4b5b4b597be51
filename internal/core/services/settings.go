package services

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMMaxTokens   = "llm.max_tokens"
	keyChunkSize      = "chunking.size"
	keyChunkOverlap   = "chunking.overlap"
	keyTopK           = "retrieval.top_k"
	keyMaxContext     = "retrieval.max_context_chars"
	keyStorageDriver  = "storage.driver"
	keyStorageDataDir = "storage.data_dir"
	keyStorageDSN     = "storage.dsn"
	keyStorageObjects = "storage.object_dir"
	keyAuthMode       = "auth.mode"
	keyAuthJWTSecret  = "auth.jwt_secret"
	keyAuthJWTIssuer  = "auth.jwt_issuer"
	keyAuthStaticUser = "auth.static_user"
	keyRateLimitRPS   = "rate_limit.requests_per_second"
	keyRateLimitBurst = "rate_limit.burst"
)

const defaultOllamaURL = "http://localhost:11434"

// Environment variables read on top of the config file.
const (
	envOpenAIKey    = "OPENAI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
	envDatabaseURL  = "DATABASE_URL"
)

// envOverrides maps config keys to DOCQA_* variables. Environment values
// win over the config file and are never written back to it.
var envOverrides = map[string]string{
	keyEmbedProvider:  "DOCQA_EMBEDDING_PROVIDER",
	keyEmbedModel:     "DOCQA_EMBEDDING_MODEL",
	keyEmbedBaseURL:   "DOCQA_EMBEDDING_BASE_URL",
	keyLLMProvider:    "DOCQA_LLM_PROVIDER",
	keyLLMModel:       "DOCQA_LLM_MODEL",
	keyLLMBaseURL:     "DOCQA_LLM_BASE_URL",
	keyLLMMaxTokens:   "DOCQA_LLM_MAX_TOKENS",
	keyChunkSize:      "DOCQA_CHUNK_SIZE",
	keyChunkOverlap:   "DOCQA_CHUNK_OVERLAP",
	keyTopK:           "DOCQA_TOP_K",
	keyStorageDriver:  "DOCQA_STORAGE_DRIVER",
	keyStorageDataDir: "DOCQA_DATA_DIR",
	keyStorageDSN:     "DOCQA_DSN",
	keyStorageObjects: "DOCQA_OBJECT_DIR",
	keyAuthMode:       "DOCQA_AUTH_MODE",
	keyAuthJWTSecret:  "DOCQA_JWT_SECRET",
	keyAuthJWTIssuer:  "DOCQA_JWT_ISSUER",
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// The aiValidator parameter is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment source. Passing nil disables overrides.
func (s *SettingsService) SetEnvLookup(fn func(string) (string, bool)) {
	if fn == nil {
		fn = func(string) (string, bool) { return "", false }
	}
	s.lookupEnv = fn
}

// Get retrieves current application settings, environment overrides included.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	s.applyEnv(settings)
	return settings, nil
}

// stored reads the config file on top of the defaults, without environment overrides.
func (s *SettingsService) stored() *domain.AppSettings {
	d := domain.DefaultAppSettings()

	return &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:  s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:     s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:   s.configStore.GetString(keyLLMBaseURL),
			APIKey:    s.configStore.GetString(keyLLMAPIKey),
			MaxTokens: s.getInt(keyLLMMaxTokens, d.LLM.MaxTokens),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, d.Chunking.Size),
			Overlap: s.getIntAllowZero(keyChunkOverlap, d.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:            s.getInt(keyTopK, d.Retrieval.TopK),
			MaxContextChars: s.getIntAllowZero(keyMaxContext, d.Retrieval.MaxContextChars),
		},
		Storage: domain.StorageSettings{
			Driver:    s.getStorageDriver(d.Storage.Driver),
			DataDir:   s.getString(keyStorageDataDir, d.Storage.DataDir),
			DSN:       s.configStore.GetString(keyStorageDSN),
			ObjectDir: s.getString(keyStorageObjects, d.Storage.ObjectDir),
		},
		Auth: domain.AuthSettings{
			Mode:       s.getAuthMode(d.Auth.Mode),
			JWTSecret:  s.configStore.GetString(keyAuthJWTSecret),
			JWTIssuer:  s.getString(keyAuthJWTIssuer, d.Auth.JWTIssuer),
			StaticUser: s.getString(keyAuthStaticUser, d.Auth.StaticUser),
		},
		RateLimit: domain.RateLimitSettings{
			RequestsPerSecond: s.configStore.GetFloat(keyRateLimitRPS),
			Burst:             s.configStore.GetInt(keyRateLimitBurst),
		},
	}
}

// applyEnv overlays DOCQA_* variables and provider API keys.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	str := func(key string) (string, bool) {
		v, ok := s.lookupEnv(envOverrides[key])
		return v, ok && v != ""
	}
	num := func(key string, dst *int) {
		if v, ok := str(key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	if v, ok := str(keyEmbedProvider); ok && domain.AIProvider(v).IsValid() {
		settings.Embedding.Provider = domain.AIProvider(v)
	}
	if v, ok := str(keyEmbedModel); ok {
		settings.Embedding.Model = v
	}
	if v, ok := str(keyEmbedBaseURL); ok {
		settings.Embedding.BaseURL = v
	}
	if v, ok := str(keyLLMProvider); ok && domain.AIProvider(v).IsValid() {
		settings.LLM.Provider = domain.AIProvider(v)
	}
	if v, ok := str(keyLLMModel); ok {
		settings.LLM.Model = v
	}
	if v, ok := str(keyLLMBaseURL); ok {
		settings.LLM.BaseURL = v
	}
	num(keyLLMMaxTokens, &settings.LLM.MaxTokens)
	num(keyChunkSize, &settings.Chunking.Size)
	num(keyChunkOverlap, &settings.Chunking.Overlap)
	num(keyTopK, &settings.Retrieval.TopK)
	if v, ok := str(keyStorageDriver); ok && domain.StorageDriver(v).IsValid() {
		settings.Storage.Driver = domain.StorageDriver(v)
	}
	if v, ok := str(keyStorageDataDir); ok {
		settings.Storage.DataDir = v
	}
	if v, ok := str(keyStorageDSN); ok {
		settings.Storage.DSN = v
	} else if v, ok := s.lookupEnv(envDatabaseURL); ok && settings.Storage.DSN == "" {
		settings.Storage.DSN = v
	}
	if v, ok := str(keyStorageObjects); ok {
		settings.Storage.ObjectDir = v
	}
	if v, ok := str(keyAuthMode); ok {
		settings.Auth.Mode = domain.AuthMode(v)
	}
	if v, ok := str(keyAuthJWTSecret); ok {
		settings.Auth.JWTSecret = v
	}
	if v, ok := str(keyAuthJWTIssuer); ok {
		settings.Auth.JWTIssuer = v
	}

	// Provider keys fill in only what the config file left empty.
	providerKey := func(p domain.AIProvider) string {
		name := envOpenAIKey
		if p == domain.AIProviderAnthropic {
			name = envAnthropicKey
		} else if p != domain.AIProviderOpenAI {
			return ""
		}
		v, _ := s.lookupEnv(name)
		return v
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = providerKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = providerKey(settings.LLM.Provider)
	}
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == ""},
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{keyLLMMaxTokens, settings.LLM.MaxTokens, false},
		{keyChunkSize, settings.Chunking.Size, false},
		{keyChunkOverlap, settings.Chunking.Overlap, false},
		{keyTopK, settings.Retrieval.TopK, false},
		{keyMaxContext, settings.Retrieval.MaxContextChars, false},
		{keyStorageDriver, string(settings.Storage.Driver), false},
		{keyStorageDataDir, settings.Storage.DataDir, settings.Storage.DataDir == ""},
		{keyStorageDSN, settings.Storage.DSN, settings.Storage.DSN == ""},
		{keyStorageObjects, settings.Storage.ObjectDir, settings.Storage.ObjectDir == ""},
		{keyAuthMode, string(settings.Auth.Mode), false},
		{keyAuthJWTSecret, settings.Auth.JWTSecret, settings.Auth.JWTSecret == ""},
		{keyAuthJWTIssuer, settings.Auth.JWTIssuer, false},
		{keyAuthStaticUser, settings.Auth.StaticUser, false},
		{keyRateLimitRPS, settings.RateLimit.RequestsPerSecond, settings.RateLimit.RequestsPerSecond == 0},
		{keyRateLimitBurst, settings.RateLimit.Burst, settings.RateLimit.Burst == 0},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrConfiguration, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrConfiguration, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings := s.stored()
	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrConfiguration, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings := s.stored()
	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetChunking configures chunk size and overlap.
// Only documents ingested afterwards are affected.
func (s *SettingsService) SetChunking(size, overlap int) error {
	chunking := domain.ChunkingSettings{Size: size, Overlap: overlap}
	if err := chunking.Validate(); err != nil {
		return err
	}

	settings := s.stored()
	settings.Chunking = chunking
	return s.Save(settings)
}

// Validate checks that the settings allow ingest and ask to run.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: %w: provider %s is not configured",
			domain.ErrConfiguration, domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: %w: provider %s is not configured",
			domain.ErrConfiguration, domain.ErrLLMUnavailable, settings.LLM.Provider)
	}
	if err := settings.Chunking.Validate(); err != nil {
		return err
	}
	if settings.Retrieval.TopK < 0 || settings.Retrieval.MaxContextChars < 0 {
		return fmt.Errorf("%w: retrieval settings must not be negative", domain.ErrConfiguration)
	}
	if !settings.Storage.Driver.IsValid() {
		return fmt.Errorf("%w: unknown storage driver %q", domain.ErrConfiguration, settings.Storage.Driver)
	}
	if settings.Storage.Driver == domain.StorageDriverPostgres && settings.Storage.DSN == "" {
		return fmt.Errorf("%w: postgres storage requires %s", domain.ErrConfiguration, keyStorageDSN)
	}
	switch settings.Auth.Mode {
	case domain.AuthModeStatic:
		if settings.Auth.StaticUser == "" {
			return fmt.Errorf("%w: static auth requires %s", domain.ErrConfiguration, keyAuthStaticUser)
		}
	case domain.AuthModeJWT:
		if settings.Auth.JWTSecret == "" {
			return fmt.Errorf("%w: jwt auth requires %s", domain.ErrConfiguration, keyAuthJWTSecret)
		}
	default:
		return fmt.Errorf("%w: unknown auth mode %q", domain.ErrConfiguration, settings.Auth.Mode)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(ctx, &settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(ctx, &settings.LLM)
}

func modelOrDefault(model, def string) string {
	if model != "" {
		return model
	}
	return def
}

// baseURLFor keeps a local provider's existing URL and clears it for cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero treats an explicit 0 as a value rather than "unset".
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStorageDriver(defaultVal domain.StorageDriver) domain.StorageDriver {
	driver := domain.StorageDriver(s.configStore.GetString(keyStorageDriver))
	if !driver.IsValid() {
		return defaultVal
	}
	return driver
}

func (s *SettingsService) getAuthMode(defaultVal domain.AuthMode) domain.AuthMode {
	switch mode := domain.AuthMode(s.configStore.GetString(keyAuthMode)); mode {
	case domain.AuthModeStatic, domain.AuthModeJWT:
		return mode
	default:
		return defaultVal
	}
}
