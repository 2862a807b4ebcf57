package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pennywyse/pennywyse/internal/categories"
	"github.com/pennywyse/pennywyse/internal/config"
	"github.com/pennywyse/pennywyse/internal/gitops"
	"github.com/pennywyse/pennywyse/internal/ingestlog"
	"github.com/pennywyse/pennywyse/internal/ledger"
)

func newInitCommand() *cobra.Command {
	var name string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new pennywyse project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, name, !noGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "whose ledger this is")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(out io.Writer, dir, name string, withGit bool) error {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already has a %s", dir, config.FileName)
	}

	cfg := config.Default(name)

	dirs := []string{
		filepath.Dir(cfg.Ledger.Path),
		filepath.Dir(cfg.Categories.Path),
		cfg.Import.Inbox,
		filepath.Join(cfg.Import.Inbox, "processed"),
		filepath.Dir(ingestlog.RelPath),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	svc := categories.NewService(categories.DefaultSet())
	if err := svc.Save(filepath.Join(dir, cfg.Categories.Path)); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}

	if err := ledger.NewStore(filepath.Join(dir, cfg.Ledger.Path)).Init(); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}

	// Statements and secrets stay out of history; the ledger is the record.
	gitignore := ".env\n*.lock\n" + cfg.Import.Inbox + "/\nexports/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if !withGit || !gitops.Available() {
		fmt.Fprintf(out, "Initialized pennywyse project at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir, io.Discard); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	msg := "init: pennywyse ledger"
	if name != "" {
		msg += " for " + name
	}
	hash, err := gitops.CommitAll(dir, msg, author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized pennywyse project at %s (%s)\n", dir, hash)
	return nil
}
