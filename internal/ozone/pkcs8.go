package ozone

import (
	"bytes"
	"encoding/pem"
	"fmt"
)

// pkcs8Prefix is the fixed DER envelope for an EC private key on secp256k1
// (curve OID 1.3.132.0.10, algorithm ecPublicKey 1.2.840.10045.2.1). The raw
// 32-byte scalar is appended directly after it.
var pkcs8Prefix = []byte{
	0x30, 0x3e, 0x02, 0x01, 0x00, 0x30, 0x10, 0x06,
	0x07, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x02, 0x01,
	0x06, 0x05, 0x2b, 0x81, 0x04, 0x00, 0x0a, 0x04,
	0x27, 0x30, 0x25, 0x02, 0x01, 0x01, 0x04, 0x20,
}

const pemBlockType = "PRIVATE KEY"

// EncodePKCS8PEM wraps a raw secp256k1 private scalar in the PKCS8 envelope
// and returns it PEM-encoded.
func EncodePKCS8PEM(scalar []byte) ([]byte, error) {
	if len(scalar) != 32 {
		return nil, fmt.Errorf("signing key must be 32 bytes, got %d", len(scalar))
	}

	der := make([]byte, 0, len(pkcs8Prefix)+len(scalar))
	der = append(der, pkcs8Prefix...)
	der = append(der, scalar...)

	return pem.EncodeToMemory(&pem.Block{Type: pemBlockType, Bytes: der}), nil
}

// parsePKCS8PEM recovers the raw scalar from a PEM block produced by
// EncodePKCS8PEM.
func parsePKCS8PEM(data []byte) ([]byte, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	if block.Type != pemBlockType {
		return nil, fmt.Errorf("unexpected PEM block type %q", block.Type)
	}
	if len(block.Bytes) != len(pkcs8Prefix)+32 {
		return nil, fmt.Errorf("unexpected PKCS8 length %d", len(block.Bytes))
	}
	if !bytes.Equal(block.Bytes[:len(pkcs8Prefix)], pkcs8Prefix) {
		return nil, fmt.Errorf("unexpected PKCS8 envelope")
	}

	scalar := make([]byte, 32)
	copy(scalar, block.Bytes[len(pkcs8Prefix):])
	zeroBytes(block.Bytes)
	return scalar, nil
}

// zeroBytes clears key material in place.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
