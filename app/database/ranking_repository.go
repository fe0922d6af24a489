package database

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

type rankingRepository struct {
	db *DB
}

func NewRankingRepository(db *DB) RankingRepository {
	return &rankingRepository{db: db}
}

const rankingColumns = `id, platform, rank, title, publisher, icon_url, link, category, created_at`

func (r *rankingRepository) collect(query string, args ...any) ([]AppRanking, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings: %w", err)
	}
	defer rows.Close()

	var rankings []AppRanking
	for rows.Next() {
		var a AppRanking
		if err := rows.Scan(&a.ID, &a.Platform, &a.Rank, &a.Title, &a.Publisher,
			&a.IconURL, &a.Link, &a.Category, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", err)
		}
		rankings = append(rankings, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ranking rows: %w", err)
	}

	return rankings, nil
}

func (r *rankingRepository) List(platform string) ([]AppRanking, error) {
	return r.collect(`
		SELECT `+rankingColumns+`
		FROM app_rankings
		WHERE platform = $1
		ORDER BY rank ASC
	`, platform)
}

// ListFiltered returns ranking rows whose category contains any of the
// given labels. An empty label list means no category filter.
func (r *rankingRepository) ListFiltered(platform string, categories []string) ([]AppRanking, error) {
	q := sq.Select(rankingColumns).
		From("app_rankings").
		Where(sq.Eq{"platform": platform}).
		OrderBy("rank ASC").
		Limit(50).
		PlaceholderFormat(sq.Dollar)

	if len(categories) > 0 {
		or := sq.Or{}
		for _, c := range categories {
			or = append(or, sq.Like{"category": "%" + c + "%"})
		}
		q = q.Where(or)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ranking query: %w", err)
	}

	return r.collect(query, args...)
}

// Replace atomically swaps all ranking rows for a platform: a generation is
// total, there is no per-row lifecycle.
func (r *rankingRepository) Replace(platform string, entries []RankingEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM app_rankings WHERE platform = $1", platform); err != nil {
		return fmt.Errorf("failed to delete prior rankings: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO app_rankings (platform, rank, title, publisher, icon_url, link, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare ranking insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(platform, e.Rank, e.Title, e.Publisher,
			e.IconURL, e.Link, e.Category); err != nil {
			return fmt.Errorf("failed to insert ranking row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ranking replacement: %w", err)
	}

	return nil
}
