package ozone

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/golang-jwt/jwt/v5"

	"modbridge/internal/domain/bridge"
	"modbridge/internal/ports"
)

// tokenTTL bounds service-token validity. The labeler rejects anything much
// longer, so keep mint-to-use latency in mind before raising it.
const tokenTTL = 60 * time.Second

// serviceTokenClaims keeps aud a plain string: the labeler expects
// "did:web:<host>", not a single-element array.
type serviceTokenClaims struct {
	jwt.RegisteredClaims
	Aud string `json:"aud"`
}

// MintToken produces a short-lived ES256K service JWT for one credential.
// now is read exactly once; the minter holds no state.
func MintToken(cred ports.TenantCredential, now time.Time) (string, error) {
	scalar, err := decodeSigningKey(cred.SigningKeyHex)
	if err != nil {
		return "", err
	}
	defer zeroBytes(scalar)

	// Round-trip through the PKCS8 envelope so the stored hex, the PEM form
	// handed to operators, and the signing key can never drift apart.
	pemKey, err := EncodePKCS8PEM(scalar)
	if err != nil {
		return "", fmt.Errorf("%w: %v", bridge.ErrInvalidCredential, err)
	}
	raw, err := parsePKCS8PEM(pemKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", bridge.ErrInvalidCredential, err)
	}
	defer zeroBytes(raw)

	priv := secp256k1.PrivKeyFromBytes(raw)
	defer priv.Zero()

	audience, err := audienceFor(cred.ServiceURL)
	if err != nil {
		return "", err
	}

	claims := serviceTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cred.DID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Aud: audience,
	}

	token, err := jwt.NewWithClaims(SigningMethodES256K, claims).SignedString(priv)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	return token, nil
}

// decodeSigningKey validates and decodes the hex-encoded secp256k1 scalar.
// An optional 0x prefix is tolerated.
func decodeSigningKey(keyHex string) ([]byte, error) {
	trimmed := strings.TrimSpace(keyHex)
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		trimmed = trimmed[2:]
	}
	if trimmed == "" {
		return nil, fmt.Errorf("%w: signing key is empty", bridge.ErrInvalidCredential)
	}

	scalar, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: signing key is not valid hex", bridge.ErrInvalidCredential)
	}
	if len(scalar) != 32 {
		return nil, fmt.Errorf("%w: signing key decodes to %d bytes, want 32", bridge.ErrInvalidCredential, len(scalar))
	}
	return scalar, nil
}

func audienceFor(serviceURL string) (string, error) {
	u, err := url.Parse(serviceURL)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("%w: service url %q has no hostname", bridge.ErrInvalidCredential, serviceURL)
	}
	return "did:web:" + u.Hostname(), nil
}
