package ports

import "context"

// TenantCredential is the per-tenant identity for the external labeler.
// SigningKeyHex carries a raw secp256k1 private scalar as lowercase hex,
// optionally 0x-prefixed.
type TenantCredential struct {
	TenantID      string
	ServiceURL    string
	DID           string
	SigningKeyHex string
	Handle        string
}

// CredentialStore is the read-through adapter over the platform credential
// service. Get returns (nil, nil) when the tenant is unconfigured; callers
// must tolerate repeated invocations.
type CredentialStore interface {
	Get(ctx context.Context, tenantID string) (*TenantCredential, error)
}
