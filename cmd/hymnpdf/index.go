package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	hymnpdf "github.com/alnah/go-hymnpdf"
)

// runIndexCmd rewrites the manifest of an output directory from the files
// it holds. It neither renders nor contacts the content source.
func runIndexCmd(args []string, env *Environment) int {
	flags, positional, err := parseIndexFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		printIndexUsage(env.Stderr)
		return ExitUsage
	}
	if len(positional) > 0 {
		fmt.Fprintf(env.Stderr, "error: %v: index takes no arguments\n", ErrUsage)
		return ExitUsage
	}

	cfg, err := loadSettings(flags.common, flags.source, env)
	if err == nil {
		if flags.output != "" {
			cfg.Output.Dir = flags.output
		}
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, cfg, flags.common.config))
		return exitCodeFor(err)
	}

	logger := newLogger(flags.common, env.Stderr)
	defer func() { _ = logger.Sync() }()

	dir, prefix := cfg.Output.Dir, cfg.Output.URLPrefix
	if flags.collections && cfg.Output.CollectionsSubdir != "" {
		dir = filepath.Join(dir, cfg.Output.CollectionsSubdir)
		prefix = strings.TrimRight(prefix, "/") + "/" + cfg.Output.CollectionsSubdir
	}

	opts := hymnpdf.ManifestOptions{
		URLPrefix: prefix,
		Complete:  flags.collections,
		Now:       env.Now,
	}

	// Collection ids are optional in the manifest; an unreadable catalog
	// only costs that column.
	store := hymnpdf.NewStore(cfg.Data.Dir, logger)
	if refs, err := store.LoadCatalog(context.Background()); err != nil {
		logger.Warn("indexing without collection ids", zap.Error(err))
	} else {
		opts.Collections = make(map[string]string, len(refs))
		for _, ref := range refs {
			opts.Collections[ref.Slug] = ref.ID
		}
	}

	m, err := hymnpdf.WriteManifest(dir, opts)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, cfg, flags.common.config))
		return exitCodeFor(err)
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Indexed %d artifacts: %s\n", m.Count, filepath.Join(dir, hymnpdf.ManifestFile))
	}
	return ExitSuccess
}
