package ozone

import (
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/golang-jwt/jwt/v5"
)

// signingMethodES256K implements jwt.SigningMethod for ECDSA over secp256k1
// with SHA-256 and the 64-byte R||S signature encoding JWS requires.
type signingMethodES256K struct{}

// SigningMethodES256K signs with deterministic (RFC 6979) ECDSA, so a given
// key and signing string always produce the same token.
var SigningMethodES256K = &signingMethodES256K{}

func init() {
	jwt.RegisterSigningMethod(SigningMethodES256K.Alg(), func() jwt.SigningMethod {
		return SigningMethodES256K
	})
}

func (m *signingMethodES256K) Alg() string { return "ES256K" }

func (m *signingMethodES256K) Sign(signingString string, key any) ([]byte, error) {
	priv, ok := key.(*secp256k1.PrivateKey)
	if !ok {
		return nil, jwt.ErrInvalidKeyType
	}

	digest := sha256.Sum256([]byte(signingString))
	// SignCompact yields [recovery][R 32][S 32]; JWS wants plain R||S.
	compact := ecdsa.SignCompact(priv, digest[:], false)
	return compact[1:], nil
}

func (m *signingMethodES256K) Verify(signingString string, sig []byte, key any) error {
	var pub *secp256k1.PublicKey
	switch k := key.(type) {
	case *secp256k1.PublicKey:
		pub = k
	case *secp256k1.PrivateKey:
		pub = k.PubKey()
	default:
		return jwt.ErrInvalidKeyType
	}

	if len(sig) != 64 {
		return jwt.ErrSignatureInvalid
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return jwt.ErrSignatureInvalid
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow {
		return jwt.ErrSignatureInvalid
	}

	digest := sha256.Sum256([]byte(signingString))
	if !ecdsa.NewSignature(&r, &s).Verify(digest[:], pub) {
		return jwt.ErrSignatureInvalid
	}
	return nil
}
