package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"koharu-go/internal/app"
	"koharu-go/internal/config"
	"koharu-go/internal/shell"
	"koharu-go/internal/update"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// errUpdateFailed is returned when an update ends in the error or conflict
// state. The state itself has already been printed.
var errUpdateFailed = errors.New("update did not complete")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
func newApp(cmd *cobra.Command) (*app.App, error) {
	paths, err := app.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("resolving paths: %w", err)
	}

	cfg, err := config.Load(paths.ConfigPath, paths.ProjectRoot, paths.Home)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var opts []app.Option
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		opts = append(opts, app.WithLogMirror(os.Stderr))
	}

	a, err := app.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// interactive reports whether both ends of the session are a terminal.
func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

func newPrompter() shell.Prompter {
	return shell.NewSurveyPrompter(os.Stdin, os.Stdout)
}

var rootCmd = &cobra.Command{
	Use:          "koharu",
	Short:        "Maintenance tool for a koharu blog",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !interactive() {
			return cmd.Help()
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return newMenu(a, newPrompter()).Run(cmd.Context())
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.ResolvePaths()
		if err != nil {
			return fmt.Errorf("failed to resolve paths: %w", err)
		}

		cfg := config.NewConfig(paths.ProjectRoot, paths.Home)
		if err := config.Init(paths.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", paths.ConfigPath)
		fmt.Printf("Project:  %s\n", cfg.ProjectRoot)
		fmt.Printf("Backups:  %s\n", cfg.BackupDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.ResolvePaths()
		if err != nil {
			return fmt.Errorf("failed to resolve paths: %w", err)
		}

		cfg, err := config.Load(paths.ConfigPath, paths.ProjectRoot, paths.Home)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("# Effective configuration (%s)\n\n", paths.ConfigPath)
		return (&config.Manager{}).Write(os.Stdout, cfg)
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot site content into the backup directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		full, _ := cmd.Flags().GetBool("full")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return runBackup(cmd.Context(), a, full)
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore [FILE]",
	Short: "Restore a snapshot over the project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req restoreRequest
		req.Latest, _ = cmd.Flags().GetBool("latest")
		req.DryRun, _ = cmd.Flags().GetBool("dry-run")
		req.Force, _ = cmd.Flags().GetBool("force")
		if len(args) > 0 {
			req.File = args[0]
		}
		if req.File != "" && req.Latest {
			return errors.New("pass either a file or --latest, not both")
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var p shell.Prompter
		if interactive() {
			p = newPrompter()
		}
		return runRestore(cmd.Context(), a, p, req)
	},
}

// clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete all but the newest snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return runClean(cmd.Context(), a, keep, dryRun)
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return runList(cmd.Context(), a)
	},
}

// update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the site from the upstream template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts update.Options
		opts.CheckOnly, _ = cmd.Flags().GetBool("check-only")
		opts.SkipBackup, _ = cmd.Flags().GetBool("skip-backup")
		opts.Force, _ = cmd.Flags().GetBool("force")
		opts.TargetTag, _ = cmd.Flags().GetString("tag")

		scripted := opts.Force || opts.CheckOnly
		if !scripted && !interactive() {
			return errors.New("update needs a terminal to confirm; pass --force or --check-only")
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var p shell.Prompter
		if !scripted {
			p = newPrompter()
		}
		return runUpdate(cmd.Context(), a, p, opts, !scripted)
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return runHistory(cmd.Context(), a, limit)
	},
}

// push command
var pushCmd = &cobra.Command{
	Use:   "push [FILE]",
	Short: "Upload a snapshot to the vault",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		latest, _ := cmd.Flags().GetBool("latest")
		if len(args) == 0 && !latest {
			return errors.New("pass a file or --latest")
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		var archivePath string
		if len(args) > 0 {
			archivePath, err = a.ResolveArchive(args[0])
			if err != nil {
				return err
			}
		} else {
			rec, err := a.LatestArchive(ctx)
			if err != nil {
				return err
			}
			if rec == nil {
				return errors.New("no backups found")
			}
			archivePath = rec.Path
		}

		stored, err := a.Push(ctx, archivePath)
		if err != nil {
			return fmt.Errorf("push failed: %w", err)
		}
		fmt.Printf("Pushed %s\n", stored)
		return nil
	},
}

// pull command
var pullCmd = &cobra.Command{
	Use:   "pull [NAME]",
	Short: "Download a snapshot from the vault, or list the vault",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if len(args) == 0 {
			names, err := a.RemoteArchives(ctx)
			if err != nil {
				return err
			}
			fmt.Print(shell.RenderRemote(names))
			return nil
		}

		p := newPrompter()
		local, err := a.Pull(ctx, args[0], func() (string, error) {
			return p.Password("Passphrase:")
		})
		if err != nil {
			return fmt.Errorf("pull failed: %w", err)
		}
		fmt.Printf("Pulled %s\n", local)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage vault encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the key pair used for pushed snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		p := newPrompter()
		pass, err := p.Password("New passphrase:")
		if err != nil {
			return err
		}
		again, err := p.Password("Repeat passphrase:")
		if err != nil {
			return err
		}
		if pass != again {
			return errors.New("passphrases do not match")
		}

		if err := a.InitKeys(pass); err != nil {
			return fmt.Errorf("creating keys: %w", err)
		}
		enc := a.Config().Encryption
		fmt.Printf("Public key:  %s\n", enc.PublicKeyPath)
		fmt.Printf("Private key: %s\n", enc.PrivateKeyPath)
		if enc.Type != "age" {
			fmt.Println(`Set type = "age" under [encryption] to encrypt pushed snapshots.`)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Also print log messages to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().Bool("full", false, "Include images, favicon and generated data")
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().Bool("latest", false, "Restore the newest snapshot")
	restoreCmd.Flags().Bool("dry-run", false, "Show what would be restored without changing anything")
	restoreCmd.Flags().Bool("force", false, "Skip the confirmation")
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Int("keep", 0, "Number of newest snapshots to keep")
	cleanCmd.Flags().Bool("dry-run", false, "Show what would be deleted")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().Bool("check-only", false, "Only report whether an update is available")
	updateCmd.Flags().Bool("skip-backup", false, "Do not offer a backup before merging")
	updateCmd.Flags().Bool("force", false, "Update without asking, even with local changes")
	updateCmd.Flags().String("tag", "", "Update or downgrade to a tagged version")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().Bool("latest", false, "Push the newest snapshot")
	rootCmd.AddCommand(pullCmd)
}
