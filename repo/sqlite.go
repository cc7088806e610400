package repo

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/picn-go/icnfwd/defn"
)

// SQLiteIndex is a queryable catalog sitting alongside a blob Store: it
// tracks when each name was inserted, its payload size, and whether it
// is pinned (static), without itself holding the wire bytes. Operators
// use it to answer "what's in the repository" questions that a pure
// key-value blob store cannot.
type SQLiteIndex struct {
	db *sql.DB
}

// NewSQLiteIndex opens (or creates) a SQLite catalog at path.
func NewSQLiteIndex(path string) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS catalog (
		name       TEXT PRIMARY KEY,
		size       INTEGER NOT NULL,
		static     INTEGER NOT NULL,
		inserted   INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteIndex{db: db}, nil
}

// Record upserts the catalog entry for name.
func (idx *SQLiteIndex) Record(name defn.Name, size int, static bool) error {
	_, err := idx.db.Exec(
		`INSERT INTO catalog (name, size, static, inserted) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET size = excluded.size, static = excluded.static, inserted = excluded.inserted`,
		name.String(), size, static, time.Now().Unix(),
	)
	return err
}

// Forget removes the catalog entry for name, if present.
func (idx *SQLiteIndex) Forget(name defn.Name) error {
	_, err := idx.db.Exec(`DELETE FROM catalog WHERE name = ?`, name.String())
	return err
}

// CatalogEntry is one row of the catalog, as reported by List.
type CatalogEntry struct {
	Name     defn.Name
	Size     int
	Static   bool
	Inserted time.Time
}

// List returns every catalog entry whose name starts with prefix
// (pass the root name to list everything).
func (idx *SQLiteIndex) List(prefix defn.Name) ([]CatalogEntry, error) {
	rows, err := idx.db.Query(
		`SELECT name, size, static, inserted FROM catalog WHERE name LIKE ? || '%' ORDER BY name`,
		prefix.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CatalogEntry
	for rows.Next() {
		var name string
		var size int
		var static bool
		var inserted int64
		if err := rows.Scan(&name, &size, &static, &inserted); err != nil {
			return nil, err
		}
		out = append(out, CatalogEntry{
			Name:     defn.NameFromString(name),
			Size:     size,
			Static:   static,
			Inserted: time.Unix(inserted, 0),
		})
	}
	return out, rows.Err()
}

func (idx *SQLiteIndex) Close() error {
	return idx.db.Close()
}
