package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/inkwell-dev/inkwell/internal/domain"
	internal_errors "github.com/inkwell-dev/inkwell/internal/errors"
	"github.com/lib/pq"
)

const fileColumns = `
	f.id, f.filename, f.original_name, f.file_path, f.file_size, f.mime_type,
	f.image_width, f.image_height, f.post_id, f.uploaded_by, f.download_count,
	f.created_at, f.updated_at,
	u.username AS uploaded_by_name,
	p.title AS post_title, p.slug AS post_slug, p.status AS post_status`

const fileJoins = `
	FROM files f
	LEFT JOIN users u ON f.uploaded_by = u.id
	LEFT JOIN posts p ON f.post_id = p.id`

// =========================================================================
// Public Methods (satisfy the service.FileStorage interface)
// =========================================================================

func (s *Storage) SaveFile(file domain.File) (domain.FileId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.FileId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveFile(tx, file)
		return err
	})
	return id, err
}

func (s *Storage) File(id domain.FileId) (domain.File, error) {
	return s.file(s.db, id)
}

func (s *Storage) Files(postId *domain.PostId, page, limit int) ([]domain.File, int, error) {
	return s.files(s.db, postId, page, limit)
}

func (s *Storage) UpdateFilePost(id domain.FileId, postId *domain.PostId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.updateFilePost(tx, id, postId)
	})
}

func (s *Storage) DeleteFile(id domain.FileId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.deleteFile(tx, id)
	})
}

// IncrementDownloadCount bumps the counter atomically at the storage layer,
// so concurrent downloads never lose an increment.
func (s *Storage) IncrementDownloadCount(id domain.FileId) error {
	return s.incrementDownloadCount(s.db, id)
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) saveFile(q Querier, file domain.File) (domain.FileId, error) {
	var id domain.FileId
	err := q.QueryRow(`
	INSERT INTO files(filename, original_name, file_path, file_size, mime_type, image_width, image_height, post_id, uploaded_by)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id`,
		file.Filename, file.OriginalName, file.FilePath, file.FileSize, file.MimeType,
		file.ImageWidth, file.ImageHeight, file.PostId, file.UploadedBy).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return -1, &internal_errors.ErrorWithStatusCode{Message: "Post not found", StatusCode: http.StatusNotFound}
		}
		return -1, fmt.Errorf("failed to insert file: %w", err)
	}
	return id, nil
}

func (s *Storage) file(q Querier, id domain.FileId) (domain.File, error) {
	row := q.QueryRow(`SELECT `+fileColumns+fileJoins+` WHERE f.id = $1`, id)

	file, err := scanFile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.File{}, &internal_errors.ErrorWithStatusCode{Message: "File not found", StatusCode: http.StatusNotFound}
		}
		return domain.File{}, fmt.Errorf("failed to query file: %w", err)
	}
	return file, nil
}

func (s *Storage) files(q Querier, postId *domain.PostId, page, limit int) ([]domain.File, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if postId != nil {
		where = "f.post_id = $1"
		args = append(args, *postId)
	}

	var total int
	if err := q.QueryRow(`SELECT COUNT(*) FROM files f WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count files: %w", err)
	}

	offset := (page - 1) * limit
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY f.created_at DESC LIMIT $%d OFFSET $%d`,
		fileColumns, fileJoins, where, len(args)-1, len(args))

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	files := []domain.File{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}
	return files, total, rows.Err()
}

func (s *Storage) updateFilePost(q Querier, id domain.FileId, postId *domain.PostId) error {
	result, err := q.Exec(`
	UPDATE files SET post_id = $1, updated_at = CURRENT_TIMESTAMP
	WHERE id = $2`, postId, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return &internal_errors.ErrorWithStatusCode{Message: "Post not found", StatusCode: http.StatusNotFound}
		}
		return fmt.Errorf("failed to update file: %w", err)
	}
	return requireRowAffected(result, "File not found")
}

func (s *Storage) deleteFile(q Querier, id domain.FileId) error {
	result, err := q.Exec(`DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return requireRowAffected(result, "File not found")
}

func (s *Storage) incrementDownloadCount(q Querier, id domain.FileId) error {
	result, err := q.Exec(`UPDATE files SET download_count = download_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment download count: %w", err)
	}
	return requireRowAffected(result, "File not found")
}

// =========================================================================
// Helpers
// =========================================================================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFile(row rowScanner) (domain.File, error) {
	var file domain.File
	err := row.Scan(
		&file.Id, &file.Filename, &file.OriginalName, &file.FilePath, &file.FileSize, &file.MimeType,
		&file.ImageWidth, &file.ImageHeight, &file.PostId, &file.UploadedBy, &file.DownloadCount,
		&file.CreatedAt, &file.UpdatedAt,
		&file.UploadedByName,
		&file.PostTitle, &file.PostSlug, &file.PostStatus,
	)
	return file, err
}

func requireRowAffected(result sql.Result, notFoundMessage string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: notFoundMessage, StatusCode: http.StatusNotFound}
	}
	return nil
}
