package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pennywyse/pennywyse/internal/categories"
	"github.com/pennywyse/pennywyse/internal/categorize"
	"github.com/pennywyse/pennywyse/internal/config"
	"github.com/pennywyse/pennywyse/internal/dedupe"
	"github.com/pennywyse/pennywyse/internal/extract"
	"github.com/pennywyse/pennywyse/internal/gitops"
	"github.com/pennywyse/pennywyse/internal/ledger"
	"github.com/pennywyse/pennywyse/internal/logger"
	"github.com/pennywyse/pennywyse/internal/pipeline"
)

// project is an opened pennywyse directory with its components wired.
type project struct {
	root       string
	cfg        *config.Config
	log        zerolog.Logger
	store      *ledger.Store
	categories *categories.Service
}

// openProject loads pennywyse.yaml and .env from repo. Diagnostics go to
// logOut.
func openProject(repo string, logOut io.Writer) (*project, error) {
	root, err := filepath.Abs(repo)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s is not a pennywyse project (no %s); run pennywyse init", root, config.FileName)
	}
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}

	store := ledger.NewStore(config.Resolve(root, cfg.Ledger.Path))
	store.LockTimeout = cfg.Ledger.LockTimeout

	p := &project{
		root:  root,
		cfg:   cfg,
		log:   log,
		store: store,
	}
	p.categories = p.loadCategories()
	return p, nil
}

// loadCategories reads the category file. A missing or unreadable file
// leaves an empty ruleset, so everything lands in Other.
func (p *project) loadCategories() *categories.Service {
	path := config.Resolve(p.root, p.cfg.Categories.Path)
	svc, err := categories.Load(path)
	if err != nil {
		p.log.Warn().Err(err).Str("path", path).Msg("no category rules, using Other for everything")
		return categories.NewService(nil)
	}
	return svc
}

func (p *project) categorizer() *categorize.Categorizer {
	return categorize.New(p.categories.Rules())
}

func (p *project) pipeline() (*pipeline.Pipeline, error) {
	strictness, err := dedupe.ParseStrictness(p.cfg.Dedupe.Strictness)
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Config{
		Store: p.store,
		Processor: pipeline.Processor{
			Categorizer: p.categorizer(),
			DateLayout:  p.cfg.Import.DateLayout,
			Strictness:  strictness,
		},
		Root:       p.root,
		AutoCommit: p.cfg.Git.AutoCommit,
		Author:     gitops.Author{Name: p.cfg.Git.AuthorName, Email: p.cfg.Git.AuthorEmail},
	}), nil
}

// extractor routes text files straight through and sends everything else to
// Gemini when an API key is configured.
func (p *project) extractor() extract.Extractor {
	var ai extract.Extractor
	if key := p.cfg.APIKey(); key != "" {
		ai = extract.NewGemini(key, p.cfg.Extraction.Model, p.cfg.Extraction.Timeout, p.cfg.Import.DateLayout)
	}
	return extract.Auto{AI: ai}
}
