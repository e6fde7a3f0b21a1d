package encryption

import (
	"fmt"

	"koharu-go/internal/config"
	"koharu-go/internal/koharu"
)

// NewEncryptorFromConfig returns the configured Encryptor, or nil when pushed
// archives are stored unencrypted.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (koharu.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewMarkerEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
