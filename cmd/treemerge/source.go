package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"treemerge/internal/classify"
	"treemerge/internal/config"
	"treemerge/internal/errors"
	"treemerge/internal/sources/catalog"
	"treemerge/internal/sources/filesystem"
	"treemerge/internal/sources/snapshot"
	"treemerge/internal/tree"
)

// Source kinds accepted by --source.
const (
	sourceAuto     = "auto"
	sourceDir      = "dir"
	sourceSnapshot = "snapshot"
	sourceCatalog  = "catalog"
)

var catalogExts = []string{".db", ".sqlite", ".sqlite3"}

// sourceOptions selects and trims the tree a command works on.
type sourceOptions struct {
	kind     string
	treeName string
	exclude  []string
}

// detectSource guesses the source kind of path.
func detectSource(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrap(errors.SourceUnavailable, fmt.Sprintf("cannot open %s", path), err)
	}
	if info.IsDir() {
		return sourceDir, nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, c := range catalogExts {
		if ext == c {
			return sourceCatalog, nil
		}
	}
	return sourceSnapshot, nil
}

// openTree reads the tree at path.
func openTree(ctx context.Context, cfg *config.Config, path string, opts sourceOptions) (tree.Node, error) {
	kind := opts.kind
	if kind == "" || kind == sourceAuto {
		var err error
		if kind, err = detectSource(path); err != nil {
			return nil, err
		}
	}

	var (
		root tree.Node
		err  error
	)
	switch kind {
	case sourceDir:
		var src *filesystem.Source
		src, err = filesystem.Open(path,
			filesystem.WithIgnore(cfg.Source.Ignore...),
			filesystem.WithLogger(logger),
		)
		if err == nil {
			root = src.Root()
		}
	case sourceSnapshot:
		var doc *snapshot.Document
		if doc, err = snapshot.ReadFile(path); err == nil {
			root = doc.Tree()
		}
	case sourceCatalog:
		root, err = openCatalogTree(ctx, path, opts.treeName)
	default:
		return nil, errors.New(errors.UnsupportedFormat,
			fmt.Sprintf("unknown source kind %q (want auto, dir, snapshot or catalog)", kind))
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("Opened source", "path", path, "kind", kind, "root", root.Name())

	if len(opts.exclude) == 0 {
		return root, nil
	}
	keep, err := excludeFilter(opts.exclude)
	if err != nil {
		return nil, err
	}
	return tree.Filter(root, keep, true), nil
}

// openCatalogTree loads a tree from an existing catalog. Without a name
// the catalog must hold exactly one tree.
func openCatalogTree(ctx context.Context, path, name string) (tree.Node, error) {
	c, err := openExistingCatalog(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if name != "" {
		return c.Load(ctx, name)
	}

	roots, err := c.Roots(ctx)
	if err != nil {
		return nil, err
	}
	switch len(roots) {
	case 0:
		return nil, errors.New(errors.SourceUnavailable, fmt.Sprintf("catalog %s is empty", path))
	case 1:
		return c.LoadID(ctx, roots[0].ID)
	default:
		return nil, errors.New(errors.InvalidArgument,
			fmt.Sprintf("catalog %s holds %d trees; pick one with --tree", path, len(roots)))
	}
}

// openExistingCatalog opens path without creating a new database.
func openExistingCatalog(path string) (*catalog.Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.SourceUnavailable, fmt.Sprintf("cannot open catalog %s", path), err)
	}
	return catalog.Open(path, logger)
}

// excludeFilter rejects nodes whose name matches any glob.
func excludeFilter(patterns []string) (func(tree.Node) bool, error) {
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, errors.Wrap(errors.InvalidArgument, fmt.Sprintf("bad exclude pattern %q", p), err)
		}
	}
	return func(n tree.Node) bool {
		for _, p := range patterns {
			if ok, _ := filepath.Match(p, n.Name()); ok {
				return false
			}
		}
		return true
	}, nil
}

// loadClassifiers builds the classifier set from --profile or the config.
func loadClassifiers(cfg *config.Config, profilePath string) (classify.Profile, *tree.ClassifierSet, error) {
	var (
		profile classify.Profile
		err     error
	)
	if profilePath != "" {
		profile, err = classify.LoadProfile(profilePath)
		if err == nil && profile.FoldCacheSize == 0 {
			profile.FoldCacheSize = cfg.Profile.FoldCacheSize
		}
	} else {
		profile, err = cfg.ClassifierProfile()
	}
	if err != nil {
		return classify.Profile{}, nil, err
	}

	set, err := classify.Build(profile)
	if err != nil {
		return classify.Profile{}, nil, errors.Wrap(errors.InvalidConfig, fmt.Sprintf("profile %s", profile.Name), err)
	}
	if !set.HasCatchAll() {
		logger.Warn("Profile has no catch-all classifier; unmatched nodes are left out", "profile", profile.Name)
	}
	return profile, set, nil
}
