// Package catalog keeps node trees in a SQLite database. Several trees can
// share one catalog; each is found by the name of its root.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"treemerge/internal/errors"
	"treemerge/internal/slogutil"
	"treemerge/internal/tree"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id        INTEGER PRIMARY KEY,
	parent_id INTEGER REFERENCES entries(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	name      TEXT NOT NULL,
	is_dir    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_parent ON entries(parent_id, position);
CREATE INDEX IF NOT EXISTS idx_entries_root ON entries(name) WHERE parent_id IS NULL;
`

// Catalog is an open catalog database.
type Catalog struct {
	conn   *sql.DB
	logger *slog.Logger
	path   string
}

// Open opens or creates the catalog at path.
func Open(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(errors.SourceUnavailable, fmt.Sprintf("failed to create directory for %s", path), err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.SourceUnavailable, "failed to open catalog", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, errors.Wrap(errors.SourceUnavailable, "failed to set pragma", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, errors.Wrap(errors.SourceUnavailable, "failed to initialize schema", err)
	}

	logger.Debug("Opened catalog", "path", path)
	return &Catalog{conn: conn, logger: logger, path: path}, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// withTx runs fn in a transaction, rolling back when fn fails.
func (c *Catalog) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			c.logger.Error("Failed to roll back transaction", "error", err, "rollback_error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Store imports root and everything below it, returning the id of the
// stored root. An earlier tree with the same root name is kept; Load
// returns the newest one.
func (c *Catalog) Store(ctx context.Context, root tree.Node) (int64, error) {
	var rootID int64
	var stored int

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO entries (parent_id, position, name, is_dir) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		var insert func(n tree.Node, parent sql.NullInt64, position int) (int64, error)
		insert = func(n tree.Node, parent sql.NullInt64, position int) (int64, error) {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			res, err := stmt.ExecContext(ctx, parent, position, n.Name(), n.Kind() == tree.Parent)
			if err != nil {
				return 0, fmt.Errorf("failed to insert %s: %w", n.Name(), err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return 0, err
			}
			stored++

			children, err := n.Children()
			if err != nil {
				return 0, err
			}
			for i, child := range children {
				if _, err := insert(child, sql.NullInt64{Int64: id, Valid: true}, i); err != nil {
					return 0, err
				}
			}
			return id, nil
		}

		rootID, err = insert(root, sql.NullInt64{}, 0)
		return err
	})
	if err != nil {
		return 0, err
	}

	c.logger.Info("Stored tree", "root", root.Name(), "id", rootID, "entries", stored)
	return rootID, nil
}

// Root describes a stored tree.
type Root struct {
	ID      int64  `json:"id" yaml:"id" toml:"id"`
	Name    string `json:"name" yaml:"name" toml:"name"`
	Entries int    `json:"entries" yaml:"entries" toml:"entries"`
}

// Roots lists the stored trees, oldest first.
func (c *Catalog) Roots(ctx context.Context) ([]Root, error) {
	rows, err := c.conn.QueryContext(ctx, `
		WITH RECURSIVE sub(root_id, id) AS (
			SELECT id, id FROM entries WHERE parent_id IS NULL
			UNION ALL
			SELECT sub.root_id, e.id FROM entries e JOIN sub ON e.parent_id = sub.id
		)
		SELECT r.id, r.name, COUNT(*)
		FROM sub JOIN entries r ON r.id = sub.root_id
		GROUP BY r.id, r.name
		ORDER BY r.id`)
	if err != nil {
		return nil, errors.Wrap(errors.SourceRead, "failed to list catalog roots", err)
	}
	defer rows.Close()

	var roots []Root
	for rows.Next() {
		var r Root
		if err := rows.Scan(&r.ID, &r.Name, &r.Entries); err != nil {
			return nil, errors.Wrap(errors.SourceRead, "failed to scan catalog root", err)
		}
		roots = append(roots, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.SourceRead, "failed to list catalog roots", err)
	}
	return roots, nil
}

// Load rebuilds the newest tree whose root is named name.
func (c *Catalog) Load(ctx context.Context, name string) (tree.Node, error) {
	var id int64
	err := c.conn.QueryRowContext(ctx,
		`SELECT id FROM entries WHERE parent_id IS NULL AND name = ? ORDER BY id DESC LIMIT 1`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.SourceUnavailable, fmt.Sprintf("no tree named %q in catalog %s", name, c.path))
	}
	if err != nil {
		return nil, errors.Wrap(errors.SourceRead, "failed to look up tree", err)
	}
	return c.LoadID(ctx, id)
}

// LoadID rebuilds the tree stored with the given root id.
func (c *Catalog) LoadID(ctx context.Context, rootID int64) (tree.Node, error) {
	rows, err := c.conn.QueryContext(ctx, `
		WITH RECURSIVE sub(id) AS (
			SELECT id FROM entries WHERE id = ?
			UNION ALL
			SELECT e.id FROM entries e JOIN sub ON e.parent_id = sub.id
		)
		SELECT e.id, e.parent_id, e.name, e.is_dir
		FROM entries e JOIN sub ON e.id = sub.id
		ORDER BY e.parent_id IS NOT NULL, e.parent_id, e.position`, rootID)
	if err != nil {
		return nil, errors.Wrap(errors.SourceRead, "failed to load tree", err)
	}
	defer rows.Close()

	nodes := make(map[int64]*tree.Entry)
	var root *tree.Entry
	for rows.Next() {
		var (
			id       int64
			parentID sql.NullInt64
			name     string
			isDir    bool
		)
		if err := rows.Scan(&id, &parentID, &name, &isDir); err != nil {
			return nil, errors.Wrap(errors.SourceRead, "failed to scan entry", err)
		}

		var n *tree.Entry
		if isDir {
			n = tree.NewParent(name)
		} else {
			n = tree.NewLeaf(name)
		}
		nodes[id] = n

		if id == rootID {
			root = n
			continue
		}
		parent, ok := nodes[parentID.Int64]
		if !ok {
			return nil, errors.New(errors.SourceRead, fmt.Sprintf("entry %d listed before its parent %d", id, parentID.Int64))
		}
		parent.Add(n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.SourceRead, "failed to load tree", err)
	}
	if root == nil {
		return nil, errors.New(errors.SourceUnavailable, fmt.Sprintf("no tree with id %d", rootID))
	}

	c.logger.Debug("Loaded tree", "root", root.Name(), "id", rootID, "entries", len(nodes))
	return root, nil
}
