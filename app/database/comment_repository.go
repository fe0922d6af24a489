package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type commentRepository struct {
	db *DB
}

func NewCommentRepository(db *DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Get(id string) (*Comment, error) {
	var c Comment
	err := r.db.QueryRow(`
		SELECT id, news_id, nickname, password, content, created_at
		FROM comments
		WHERE id = $1
	`, id).Scan(&c.ID, &c.NewsID, &c.Nickname, &c.Password, &c.Content, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return &c, nil
}

func (r *commentRepository) ListForNews(newsID int) ([]Comment, error) {
	rows, err := r.db.Query(`
		SELECT id, news_id, nickname, password, content, created_at
		FROM comments
		WHERE news_id = $1
		ORDER BY created_at DESC, id DESC
	`, newsID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.NewsID, &c.Nickname, &c.Password,
			&c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}

	return comments, nil
}

// Recent returns the latest comments joined with their article references
// for the admin dashboard.
func (r *commentRepository) Recent(limit int) ([]CommentWithNews, error) {
	rows, err := r.db.Query(`
		SELECT c.id, c.news_id, c.nickname, c.password, c.content, c.created_at,
		       n.title, n.category
		FROM comments c
		JOIN news n ON n.id = c.news_id
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent comments: %w", err)
	}
	defer rows.Close()

	var comments []CommentWithNews
	for rows.Next() {
		var c CommentWithNews
		if err := rows.Scan(&c.ID, &c.NewsID, &c.Nickname, &c.Password,
			&c.Content, &c.CreatedAt, &c.NewsTitle, &c.NewsCategory); err != nil {
			return nil, fmt.Errorf("failed to scan recent comment row: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent comment rows: %w", err)
	}

	return comments, nil
}

func (r *commentRepository) Create(newsID int, nickname, password, content string) (*Comment, error) {
	id := uuid.NewString()

	var c Comment
	err := r.db.QueryRow(`
		INSERT INTO comments (id, news_id, nickname, password, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, news_id, nickname, password, content, created_at
	`, id, newsID, nickname, password, content).Scan(
		&c.ID, &c.NewsID, &c.Nickname, &c.Password, &c.Content, &c.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return &c, nil
}

func (r *commentRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}
