package koharu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Transfer copies archives between the backup directory and an off-site vault.
// When an encryptor is configured, archives are stored as "<name>.age".
type Transfer struct {
	backupDir string
	vault     Vault
	encryptor Encryptor
	logger    Logger
}

// NewTransfer creates a Transfer. encryptor may be nil to store archives as-is.
func NewTransfer(backupDir string, vault Vault, encryptor Encryptor, logger Logger) *Transfer {
	return &Transfer{backupDir: backupDir, vault: vault, encryptor: encryptor, logger: logger}
}

// Encrypted reports whether pushed archives are encrypted.
func (t *Transfer) Encrypted() bool {
	return t.encryptor != nil
}

// Push uploads the archive at archivePath and returns the name it was stored under.
func (t *Transfer) Push(ctx context.Context, archivePath string) (string, error) {
	name := filepath.Base(archivePath)
	if err := ValidateArchiveName(name); err != nil {
		return "", err
	}

	src, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer src.Close()

	upload := src
	if t.encryptor != nil {
		name += EncryptedSuffix
		tmp, err := os.CreateTemp("", "koharu-push-*")
		if err != nil {
			return "", fmt.Errorf("creating temp file: %w", err)
		}
		defer os.Remove(tmp.Name())
		defer tmp.Close()

		if err := t.encryptor.Encrypt(src, tmp); err != nil {
			return "", fmt.Errorf("encrypting archive: %w", err)
		}
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("rewinding temp file: %w", err)
		}
		upload = tmp
	}

	info, err := upload.Stat()
	if err != nil {
		return "", fmt.Errorf("stat upload: %w", err)
	}
	if err := t.vault.PutArchive(ctx, name, upload, info.Size()); err != nil {
		return "", fmt.Errorf("uploading archive: %w", err)
	}

	t.logger.Info("archive pushed", "name", name, "size", info.Size())
	return name, nil
}

// Remote lists the names stored in the vault, newest first.
func (t *Transfer) Remote(ctx context.Context) ([]string, error) {
	return t.vault.ListArchives(ctx)
}

// Pull downloads the stored archive name into the backup directory and returns
// the local path. Encrypted names require decryptCtx. An existing local archive
// is never overwritten.
func (t *Transfer) Pull(ctx context.Context, name string, decryptCtx DecryptionContext) (string, error) {
	if err := ValidateStoredName(name); err != nil {
		return "", err
	}

	encrypted := strings.HasSuffix(name, EncryptedSuffix)
	localName := strings.TrimSuffix(name, EncryptedSuffix)
	if encrypted && decryptCtx == nil {
		return "", fmt.Errorf("archive %s is encrypted but no passphrase was provided", name)
	}

	if err := os.MkdirAll(t.backupDir, 0755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	dst := filepath.Join(t.backupDir, localName)
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("archive already exists locally: %s", dst)
	}

	tmp, err := os.CreateTemp(t.backupDir, ".pull-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if encrypted {
		pr, pw := io.Pipe()
		vaultErrCh := make(chan error, 1)
		go func() {
			err := t.vault.GetArchive(ctx, name, pw)
			pw.CloseWithError(err)
			vaultErrCh <- err
		}()

		decryptErr := decryptCtx.Decrypt(pr, tmp)
		pr.CloseWithError(decryptErr)
		vaultErr := <-vaultErrCh

		// A failed decrypt closes the pipe, so the vault's write error is
		// only a symptom of it.
		closedByDecrypt := decryptErr != nil &&
			(errors.Is(vaultErr, decryptErr) || errors.Is(vaultErr, io.ErrClosedPipe))
		if vaultErr != nil && !closedByDecrypt {
			return "", fmt.Errorf("downloading archive: %w", vaultErr)
		}
		if decryptErr != nil {
			return "", fmt.Errorf("decrypting archive: %w", decryptErr)
		}
	} else if err := t.vault.GetArchive(ctx, name, tmp); err != nil {
		return "", fmt.Errorf("downloading archive: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	success = true

	t.logger.Info("archive pulled", "name", name, "path", dst)
	return dst, nil
}
