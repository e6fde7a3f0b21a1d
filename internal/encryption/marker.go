package encryption

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"koharu-go/internal/koharu"
)

var markerHeader = []byte("KOHARU-TEST-SEAL\n")

// ErrBadPassphrase is returned by MarkerEncryptor.Unlock for a passphrase
// other than the one given to Setup.
var ErrBadPassphrase = errors.New("incorrect passphrase")

// MarkerEncryptor is a deterministic stand-in for AgeEncryptor. Ciphertext is
// the plaintext behind a fixed header, so it differs from the input while
// staying trivially reversible.
type MarkerEncryptor struct {
	passphrase string
	configured bool
}

// NewMarkerEncryptor returns a MarkerEncryptor that accepts any passphrase
// until Setup is called.
func NewMarkerEncryptor() *MarkerEncryptor {
	return &MarkerEncryptor{configured: true}
}

func (e *MarkerEncryptor) Setup(passphrase string) error {
	e.passphrase = passphrase
	e.configured = true
	return nil
}

func (e *MarkerEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(markerHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	_, err := io.Copy(w, r)
	return err
}

func (e *MarkerEncryptor) Unlock(passphrase string) (koharu.DecryptionContext, error) {
	if e.passphrase != "" && passphrase != e.passphrase {
		return nil, ErrBadPassphrase
	}
	return markerSession{}, nil
}

func (e *MarkerEncryptor) IsConfigured() bool { return e.configured }

type markerSession struct{}

func (markerSession) Decrypt(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	header := make([]byte, len(markerHeader))
	if _, err := io.ReadFull(br, header); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Equal(header, markerHeader) {
		return errors.New("data was not sealed by MarkerEncryptor")
	}
	_, err := io.Copy(w, br)
	return err
}

var _ koharu.Encryptor = (*MarkerEncryptor)(nil)
