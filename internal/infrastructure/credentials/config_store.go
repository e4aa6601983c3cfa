package credentials

import (
	"context"
	"errors"
	"strings"

	"modbridge/internal/bootstrap/config"
	"modbridge/internal/ports"
)

// ConfigStore serves tenant labeler credentials from application config.
// It stands in for the platform credential service and is read-through:
// every Get re-reads the loaded config, no caching.
type ConfigStore struct {
	tenants []config.TenantCredentialConfig
}

func NewConfigStore(cfg config.Config) *ConfigStore {
	return &ConfigStore{tenants: cfg.Tenants}
}

func (s *ConfigStore) Get(ctx context.Context, tenantID string) (*ports.TenantCredential, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, t := range s.tenants {
		if t.TenantID != tenantID {
			continue
		}
		if strings.TrimSpace(t.ServiceURL) == "" || strings.TrimSpace(t.DID) == "" || strings.TrimSpace(t.SigningKey) == "" {
			// Partially filled entries count as unconfigured.
			return nil, nil
		}
		return &ports.TenantCredential{
			TenantID:      t.TenantID,
			ServiceURL:    t.ServiceURL,
			DID:           t.DID,
			SigningKeyHex: t.SigningKey,
			Handle:        t.Handle,
		}, nil
	}
	return nil, nil
}
