package database

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// CategoryAll is the sentinel category meaning "no filter".
const CategoryAll = "ALL"

const newsColumns = `id, title, category, importance, summary, content, image_url,
	reporter_name, reporter_email, tags, is_pinned, views,
	published_at, created_at, updated_at`

// NewsRepository handles database operations for articles
type newsRepository struct {
	db *DB
}

func NewNewsRepository(db *DB) NewsRepository {
	return &newsRepository{db: db}
}

func scanNews(row interface{ Scan(...any) error }) (*News, error) {
	var n News
	err := row.Scan(
		&n.ID, &n.Title, &n.Category, &n.Importance, &n.Summary, &n.Content,
		&n.ImageURL, &n.ReporterName, &n.ReporterEmail, &n.Tags, &n.IsPinned,
		&n.Views, &n.PublishedAt, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func collectNews(rows *sql.Rows) ([]News, error) {
	defer rows.Close()

	var list []News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news row: %w", err)
		}
		list = append(list, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating news rows: %w", err)
	}

	return list, nil
}

func (r *newsRepository) Get(id int) (*News, error) {
	n, err := scanNews(r.db.QueryRow(
		`SELECT `+newsColumns+` FROM news WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get news: %w", err)
	}
	return n, nil
}

// List runs the article listing query. The category filter is a
// case-insensitive substring match; ordering always carries an id
// tie-break so pagination is deterministic for equal timestamps.
func (r *newsRepository) List(opts ListOptions) ([]News, error) {
	q := sq.Select(newsColumns).From("news").PlaceholderFormat(sq.Dollar)

	if opts.Category != "" && opts.Category != CategoryAll {
		q = q.Where(sq.ILike{"category": "%" + opts.Category + "%"})
	}
	if opts.PublishedBefore != nil {
		q = q.Where(sq.LtOrEq{"published_at": *opts.PublishedBefore})
	}

	switch opts.Order {
	case OrderByCreatedAt:
		q = q.OrderBy("created_at DESC", "id DESC")
	default:
		q = q.OrderBy("published_at DESC", "id DESC")
	}

	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Offset(uint64(opts.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build listing query: %w", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}

	return collectNews(rows)
}

func (r *newsRepository) Search(query string) ([]News, error) {
	rows, err := r.db.Query(`
		SELECT `+newsColumns+`
		FROM news
		WHERE title ILIKE $1 OR summary ILIKE $1
		ORDER BY created_at DESC, id DESC
	`, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search news: %w", err)
	}

	return collectNews(rows)
}

func (r *newsRepository) Popular(limit int) ([]News, error) {
	rows, err := r.db.Query(`
		SELECT `+newsColumns+`
		FROM news
		ORDER BY views DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get popular news: %w", err)
	}

	return collectNews(rows)
}

func (r *newsRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM news").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get news count: %w", err)
	}
	return count, nil
}

func (r *newsRepository) SumViews() (int, error) {
	var sum int
	err := r.db.QueryRow("SELECT COALESCE(SUM(views), 0) FROM news").Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum views: %w", err)
	}
	return sum, nil
}

func (r *newsRepository) CountViewsSince(t time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM news_views WHERE created_at >= $1", t).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count views: %w", err)
	}
	return count, nil
}

func (r *newsRepository) Create(fields NewsFields) (int, error) {
	var id int
	err := r.db.QueryRow(`
		INSERT INTO news (
			title, category, importance, summary, content, image_url,
			reporter_name, reporter_email, tags, is_pinned, views, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11)
		RETURNING id
	`, fields.Title, fields.Category, fields.Importance, fields.Summary,
		fields.Content, fields.ImageURL, fields.ReporterName,
		fields.ReporterEmail, fields.Tags, fields.IsPinned,
		fields.PublishedAt).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create news: %w", err)
	}

	return id, nil
}

// Update overwrites all mutable fields of an article. The view counter is
// untouched.
func (r *newsRepository) Update(id int, fields NewsFields) error {
	result, err := r.db.Exec(`
		UPDATE news
		SET title = $2, category = $3, importance = $4, summary = $5,
		    content = $6, image_url = $7, reporter_name = $8,
		    reporter_email = $9, tags = $10, is_pinned = $11,
		    published_at = $12, updated_at = NOW()
		WHERE id = $1
	`, id, fields.Title, fields.Category, fields.Importance, fields.Summary,
		fields.Content, fields.ImageURL, fields.ReporterName,
		fields.ReporterEmail, fields.Tags, fields.IsPinned,
		fields.PublishedAt)

	if err != nil {
		return fmt.Errorf("failed to update news: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *newsRepository) Delete(id int) error {
	result, err := r.db.Exec("DELETE FROM news WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *newsRepository) SetPinned(id int, pinned bool) error {
	result, err := r.db.Exec(
		"UPDATE news SET is_pinned = $2, updated_at = NOW() WHERE id = $1",
		id, pinned)
	if err != nil {
		return fmt.Errorf("failed to set pinned flag: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// RecordView increments the denormalized view counter and appends one view
// event in a single transaction. A missing article rolls back both effects.
func (r *newsRepository) RecordView(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec("UPDATE news SET views = views + 1 WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to increment view counter: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec("INSERT INTO news_views (news_id) VALUES ($1)", id); err != nil {
		return fmt.Errorf("failed to insert view event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit view recording: %w", err)
	}

	return nil
}

func (r *newsRepository) ImageURLs() ([]string, error) {
	rows, err := r.db.Query("SELECT image_url FROM news WHERE image_url IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("failed to get image urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan image url: %w", err)
		}
		urls = append(urls, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating image url rows: %w", err)
	}

	return urls, nil
}
