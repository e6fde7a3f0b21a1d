package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"koharu-go/internal/archive"
	"koharu-go/internal/config"
	"koharu-go/internal/database"
	"koharu-go/internal/encryption"
	kfs "koharu-go/internal/fs"
	"koharu-go/internal/git"
	"koharu-go/internal/install"
	"koharu-go/internal/koharu"
	"koharu-go/internal/releasenotes"
	"koharu-go/internal/update"
	"koharu-go/internal/vault"
)

// ErrNoVault is returned by vault commands when no vault is configured.
var ErrNoVault = errors.New("no vault configured; set [vault] in the config file")

// PassphraseFunc asks the user for the key passphrase.
type PassphraseFunc func() (string, error)

// App is the application layer between the CLI and the maintenance managers.
// It constructs every dependency from config, records mutating commands in the
// operation history and closes its resources on Close.
type App struct {
	cfg       *config.Config
	runID     string
	logger    koharu.Logger
	logFile   *os.File
	history   koharu.History
	archiver  koharu.Archiver
	ignore    *kfs.IgnoreMatcher
	encryptor koharu.Encryptor
	clock     koharu.Clock
	ids       koharu.IDGenerator
	vault     koharu.Vault
	vcs       update.VersionControl
	installer update.Installer
	notes     update.NotesFetcher
	logMirror io.Writer
}

// Option customises an App.
type Option func(*App)

// WithLogMirror copies Info and above to w in addition to the log file.
func WithLogMirror(w io.Writer) Option {
	return func(a *App) { a.logMirror = w }
}

// WithClock replaces the wall clock.
func WithClock(c koharu.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithIDGenerator replaces the source of run IDs.
func WithIDGenerator(g koharu.IDGenerator) Option {
	return func(a *App) { a.ids = g }
}

// WithHistory replaces the configured history database. App.Close closes it.
func WithHistory(h koharu.History) Option {
	return func(a *App) { a.history = h }
}

// WithVault replaces the configured vault.
func WithVault(v koharu.Vault) Option {
	return func(a *App) { a.vault = v }
}

// WithUpdateDeps replaces the git client, installer and release-notes source
// used by Update. notes may be nil.
func WithUpdateDeps(vcs update.VersionControl, installer update.Installer, notes update.NotesFetcher) Option {
	return func(a *App) {
		a.vcs = vcs
		a.installer = installer
		a.notes = notes
	}
}

// New creates a fully wired App. The caller must call Close when done.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{
		cfg:      cfg,
		archiver: archive.NewTarArchiver(""),
		clock:    koharu.RealClock{},
		ids:      koharu.UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.runID = a.ids.New()

	logger, logFile, err := newLogger(cfg.LogDir, a.runID, a.logMirror)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	a.logger = &slogAdapter{l: logger}
	a.logFile = logFile

	ignore, err := kfs.LoadIgnoreMatcher(cfg.ProjectRoot, cfg.Filesystem.Ignore)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}
	a.ignore = ignore

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	a.encryptor = enc

	if a.history == nil {
		history, err := database.NewHistoryFromConfig(cfg.Database)
		if err != nil {
			logFile.Close()
			return nil, fmt.Errorf("opening history: %w", err)
		}
		a.history = history
	}

	if a.vcs == nil {
		a.vcs = git.NewClient(cfg.ProjectRoot)
		a.installer = install.NewRunner(cfg.ProjectRoot, cfg.Install.Command)
		if cfg.Upstream.ReleaseRepo != "" {
			timeout := time.Duration(cfg.Upstream.ReleaseNotesTimeoutMS) * time.Millisecond
			a.notes = releasenotes.NewClient(cfg.Upstream.ReleaseRepo, cfg.Upstream.APIBaseURL, timeout)
		}
	}

	a.logger.Debug("app started", "project", cfg.ProjectRoot, "backup_dir", cfg.BackupDir)
	return a, nil
}

// Config returns the effective configuration.
func (a *App) Config() *config.Config { return a.cfg }

// RunID identifies this process in the log and the history.
func (a *App) RunID() string { return a.runID }

// Logger returns the application logger.
func (a *App) Logger() koharu.Logger { return a.logger }

func (a *App) layout() koharu.Layout {
	return koharu.Layout{ProjectRoot: a.cfg.ProjectRoot, BackupDir: a.cfg.BackupDir}
}

func (a *App) backupManager() *koharu.BackupManager {
	return koharu.NewBackupManager(a.layout(), koharu.DefaultItems, a.archiver, a.ignore, a.logger, a.clock)
}

func (a *App) restoreManager() *koharu.RestoreManager {
	return koharu.NewRestoreManager(a.layout(), koharu.DefaultItems, a.archiver, a.logger)
}

// Backup takes a snapshot of the content table.
func (a *App) Backup(ctx context.Context, full bool) (*koharu.BackupResult, error) {
	var res *koharu.BackupResult
	err := a.track(ctx, NewOperationRecord("backup", params("full", full)), func() error {
		var err error
		res, err = a.backupManager().Run(ctx, full)
		return err
	})
	return res, err
}

// Archives lists the local archives, newest first.
func (a *App) Archives(ctx context.Context) ([]koharu.ArchiveRecord, error) {
	return a.restoreManager().List(ctx)
}

// LatestArchive returns the newest local archive, or nil when there is none.
func (a *App) LatestArchive(ctx context.Context) (*koharu.ArchiveRecord, error) {
	return a.restoreManager().Latest(ctx)
}

// ResolveArchive validates a user supplied archive reference.
func (a *App) ResolveArchive(raw string) (string, error) {
	return koharu.ResolveArchivePath(a.cfg.BackupDir, raw)
}

// ReadManifest returns the manifest of a local archive, or nil if it has none.
func (a *App) ReadManifest(ctx context.Context, archivePath string) (*koharu.Manifest, error) {
	return a.restoreManager().ReadManifest(ctx, archivePath)
}

// PreviewRestore lists the project paths Restore would write.
func (a *App) PreviewRestore(ctx context.Context, archivePath string) ([]string, error) {
	return a.restoreManager().Preview(ctx, archivePath)
}

// Restore places the archive's contents over the project tree.
func (a *App) Restore(ctx context.Context, archivePath string) ([]string, error) {
	var restored []string
	rec := NewOperationRecord("restore", params("archive", filepath.Base(archivePath)))
	err := a.track(ctx, rec, func() error {
		var err error
		restored, err = a.restoreManager().Apply(ctx, archivePath)
		return err
	})
	return restored, err
}

func (a *App) retention() *koharu.RetentionManager {
	return koharu.NewRetentionManager(a.cfg.BackupDir, a.archiver, a.logger)
}

// PlanClean reports what Clean would delete.
func (a *App) PlanClean(keep int) (*koharu.CleanResult, error) {
	return a.retention().Plan(keep)
}

// Clean keeps the newest keep archives and deletes the rest.
func (a *App) Clean(ctx context.Context, keep int) (*koharu.CleanResult, error) {
	if err := koharu.ValidateKeep(keep); err != nil {
		return nil, err
	}
	var res *koharu.CleanResult
	err := a.track(ctx, NewOperationRecord("clean", params("keep", keep)), func() error {
		var err error
		res, err = a.retention().Clean(ctx, keep)
		return err
	})
	return res, err
}

// Update runs the self-update workflow with view as its user interface.
func (a *App) Update(ctx context.Context, opts update.Options, view update.View, interactive bool) (update.State, error) {
	runner := update.NewRunner(a.vcs, a.backupManager(), a.installer,
		update.Upstream{Remote: a.cfg.Upstream.Remote, Branch: a.cfg.Upstream.Branch}, a.logger)
	orch := update.NewOrchestrator(runner, view, a.notes, update.OrchestratorConfig{
		Interactive: interactive,
		ExitDelay:   time.Duration(a.cfg.AutoExitDelayMS) * time.Millisecond,
		NotesWait:   time.Duration(a.cfg.Upstream.ReleaseNotesTimeoutMS) * time.Millisecond,
	}, a.logger)

	rec := NewOperationRecord("update", params(
		"check_only", opts.CheckOnly, "skip_backup", opts.SkipBackup, "force", opts.Force, "tag", opts.TargetTag))

	var final update.State
	err := a.track(ctx, rec, func() error {
		var err error
		final, err = orch.Run(ctx, opts)
		switch {
		case err != nil:
		case final.Cancelled:
			rec.Status = koharu.StatusCancelled
		case update.ExitCode(final) != 0:
			rec.Status = koharu.StatusFailed
		}
		return err
	})
	return final, err
}

func (a *App) transfer() (*koharu.Transfer, error) {
	if a.vault == nil {
		if a.cfg.Vault.Type == "" {
			return nil, ErrNoVault
		}
		v, err := vault.NewVaultFromConfig(context.Background(), a.cfg.Vault)
		if err != nil {
			return nil, fmt.Errorf("creating vault: %w", err)
		}
		a.vault = v
	}
	return koharu.NewTransfer(a.cfg.BackupDir, a.vault, a.encryptor, a.logger), nil
}

// Push uploads a local archive to the vault and returns the stored name.
func (a *App) Push(ctx context.Context, archivePath string) (string, error) {
	t, err := a.transfer()
	if err != nil {
		return "", err
	}
	if a.encryptor != nil && !a.encryptor.IsConfigured() {
		return "", errors.New("encryption is enabled but no keys exist; run 'koharu keys init' first")
	}

	var stored string
	err = a.track(ctx, NewOperationRecord("push", params("archive", filepath.Base(archivePath))), func() error {
		var err error
		stored, err = t.Push(ctx, archivePath)
		return err
	})
	return stored, err
}

// RemoteArchives lists the names stored in the vault, newest first.
func (a *App) RemoteArchives(ctx context.Context) ([]string, error) {
	t, err := a.transfer()
	if err != nil {
		return nil, err
	}
	return t.Remote(ctx)
}

// Pull downloads a stored archive into the backup directory. passphrase is
// only consulted for encrypted archives.
func (a *App) Pull(ctx context.Context, name string, passphrase PassphraseFunc) (string, error) {
	t, err := a.transfer()
	if err != nil {
		return "", err
	}
	if err := koharu.ValidateStoredName(name); err != nil {
		return "", err
	}

	var local string
	err = a.track(ctx, NewOperationRecord("pull", params("archive", name)), func() error {
		var session koharu.DecryptionContext
		if strings.HasSuffix(name, koharu.EncryptedSuffix) {
			if a.encryptor == nil {
				return fmt.Errorf("archive %s is encrypted but encryption is not configured", name)
			}
			pass, err := passphrase()
			if err != nil {
				return err
			}
			session, err = a.encryptor.Unlock(pass)
			if err != nil {
				return err
			}
		}
		var err error
		local, err = t.Pull(ctx, name, session)
		return err
	})
	return local, err
}

// InitKeys generates the key pair used to encrypt pushed archives.
func (a *App) InitKeys(passphrase string) error {
	enc := a.encryptor
	if enc == nil {
		enc = encryption.NewAgeEncryptor(a.cfg.Encryption)
	}
	if err := enc.Setup(passphrase); err != nil {
		return err
	}
	a.logger.Info("encryption keys created", "public_key", a.cfg.Encryption.PublicKeyPath)
	return nil
}

// History returns up to limit recorded operations, newest first.
func (a *App) History(ctx context.Context, limit int) ([]koharu.Operation, error) {
	return a.history.ListOperations(ctx, limit)
}

// Close closes the history database and the log file.
func (a *App) Close() error {
	var firstErr error
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			firstErr = fmt.Errorf("closing history: %w", err)
		}
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
