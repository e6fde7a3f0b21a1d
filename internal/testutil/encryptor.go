package testutil

import (
	"koharu-go/internal/encryption"
	"koharu-go/internal/koharu"
)

// NewTestEncryptor returns a reversible encryptor that needs no keys.
func NewTestEncryptor() koharu.Encryptor {
	return encryption.NewMarkerEncryptor()
}
