package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/geodrop-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id         TEXT PRIMARY KEY,
	text       TEXT NOT NULL DEFAULT '',
	image_url  TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	loves      INTEGER NOT NULL DEFAULT 0,
	latitude   REAL,
	longitude  REAL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at DESC);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, Migrate)
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema or seed rows.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate creates the posts table if it does not exist.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreatePost inserts a post.
func (s *SQLiteStore) CreatePost(ctx context.Context, post *store.Post) error {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	var lat, lng sql.NullFloat64
	if post.Location != nil {
		lat = sql.NullFloat64{Float64: post.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: post.Location.Longitude, Valid: true}
	}

	query := `
		INSERT INTO posts (id, text, image_url, tags, loves, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query,
		post.ID,
		post.Text,
		post.ImageURL,
		string(rawTags),
		post.Loves,
		lat,
		lng,
		post.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetPost retrieves a post by ID.
func (s *SQLiteStore) GetPost(ctx context.Context, id string) (*store.Post, error) {
	query := `
		SELECT id, text, image_url, tags, loves, latitude, longitude, created_at
		FROM posts
		WHERE id = ?
	`
	post, err := scanPost(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get post %s: %w", id, store.ErrPostNotFound)
		}
		return nil, fmt.Errorf("query post: %w", err)
	}
	return post, nil
}

// ListPosts returns all posts, newest first.
func (s *SQLiteStore) ListPosts(ctx context.Context) ([]*store.Post, error) {
	query := `
		SELECT id, text, image_url, tags, loves, latitude, longitude, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*store.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// IncrementLoves adds one love and returns the updated post.
func (s *SQLiteStore) IncrementLoves(ctx context.Context, id string) (*store.Post, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE posts SET loves = loves + 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("update loves: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("love post %s: %w", id, store.ErrPostNotFound)
	}
	return s.GetPost(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*store.Post, error) {
	var (
		post    store.Post
		rawTags string
		lat     sql.NullFloat64
		lng     sql.NullFloat64
	)
	if err := row.Scan(
		&post.ID,
		&post.Text,
		&post.ImageURL,
		&rawTags,
		&post.Loves,
		&lat,
		&lng,
		&post.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(rawTags), &post.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if lat.Valid && lng.Valid {
		post.Location = &store.Location{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	return &post, nil
}
