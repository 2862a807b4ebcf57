package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pennywyse/pennywyse/internal/config"
	"github.com/pennywyse/pennywyse/internal/extract"
	"github.com/pennywyse/pennywyse/internal/importer"
	"github.com/pennywyse/pennywyse/internal/logger"
	"github.com/pennywyse/pennywyse/internal/pipeline"
)

func newIngestCommand(repo *string) *cobra.Command {
	var dryRun bool
	var source string

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Add transactions from statement files (- reads CSV text from stdin)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			pl, err := p.pipeline()
			if err != nil {
				return err
			}
			ctx := logger.WithContext(cmd.Context(), p.log)
			ex := p.extractor()

			var failed int
			for _, arg := range args {
				var doc extract.Document
				if arg == "-" {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("reading stdin: %w", err)
					}
					doc = extract.Document{Name: "stdin", MIMEType: "text/csv", Data: data}
				} else {
					doc, err = extract.DocumentFromFile(arg)
					if err != nil {
						reportFailure(cmd.ErrOrStderr(), p.log, arg, err)
						failed++
						continue
					}
				}

				name := doc.Name
				if source != "" {
					name = source
				}
				r, err := ingestDocument(ctx, pl, ex, doc, name, dryRun)
				if err != nil {
					reportFailure(cmd.ErrOrStderr(), p.log, arg, err)
					failed++
					continue
				}
				printReport(cmd.OutOrStdout(), r)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be added without writing")
	cmd.Flags().StringVar(&source, "source", "", "source name recorded in the ingest log")

	return cmd
}

func newImportCommand(repo *string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Ingest every statement in the inbox and move it to inbox/processed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			pl, err := p.pipeline()
			if err != nil {
				return err
			}
			ctx := logger.WithContext(cmd.Context(), p.log)
			ex := p.extractor()

			inbox := config.Resolve(p.root, p.cfg.Import.Inbox)
			files, err := importer.Scan(inbox)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Inbox %s is empty\n", inbox)
				return nil
			}

			var failed int
			for _, f := range files {
				if f.Size == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: empty file, left in the inbox\n", f.Name)
					continue
				}
				p.log.Debug().Str("file", f.Name).Int64("bytes", f.Size).Msg("importing")
				doc, err := extract.DocumentFromFile(f.Path)
				if err != nil {
					reportFailure(cmd.ErrOrStderr(), p.log, f.Name, err)
					failed++
					continue
				}
				r, err := ingestDocument(ctx, pl, ex, doc, f.Name, dryRun)
				if err != nil {
					reportFailure(cmd.ErrOrStderr(), p.log, f.Name, err)
					failed++
					continue
				}
				printReport(cmd.OutOrStdout(), r)

				// Unreadable documents stay in the inbox to be fixed.
				if dryRun || r.Outcome == pipeline.OutcomeNothingToIngest {
					continue
				}
				if err := importer.MarkProcessed(inbox, f.Name); err != nil {
					return err
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(files))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be added without writing or moving files")

	return cmd
}

func ingestDocument(ctx context.Context, pl *pipeline.Pipeline, ex extract.Extractor, doc extract.Document, source string, dryRun bool) (pipeline.Report, error) {
	raw, err := ex.Extract(ctx, doc)
	if err != nil {
		return pipeline.Report{}, err
	}
	if dryRun {
		return pl.Preview(ctx, source, raw)
	}
	return pl.Ingest(ctx, source, raw)
}
