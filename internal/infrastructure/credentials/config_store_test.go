package credentials

import (
	"context"
	"testing"

	"modbridge/internal/bootstrap/config"
)

func TestConfigStoreGet(t *testing.T) {
	store := NewConfigStore(config.Config{Tenants: []config.TenantCredentialConfig{
		{
			TenantID:   "acme",
			ServiceURL: "https://ozone.acme.example",
			DID:        "did:plc:acmesvc",
			SigningKey: "0xabc123",
			Handle:     "acme-moderation",
		},
		{TenantID: "half-configured", ServiceURL: "https://ozone.example"},
	}})
	ctx := context.Background()

	cred, err := store.Get(ctx, "acme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cred == nil {
		t.Fatal("Get(acme) = nil, want credential")
	}
	if cred.DID != "did:plc:acmesvc" || cred.SigningKeyHex != "0xabc123" {
		t.Fatalf("credential = %+v", cred)
	}

	cred, err = store.Get(ctx, "missing")
	if err != nil || cred != nil {
		t.Fatalf("Get(missing) = %v, %v, want nil, nil", cred, err)
	}

	cred, err = store.Get(ctx, "half-configured")
	if err != nil || cred != nil {
		t.Fatalf("Get(half-configured) = %v, %v, want nil, nil", cred, err)
	}
}
