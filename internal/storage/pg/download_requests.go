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

const requestColumns = `
	dr.id, dr.user_id, dr.file_id, dr.status, dr.notes,
	dr.request_date, dr.approved_date, dr.approved_by,
	f.original_name AS file_name, f.file_size, f.mime_type,
	p.title AS post_title, p.slug AS post_slug,
	u1.username AS requester_name,
	u2.username AS approver_name`

const requestJoins = `
	FROM download_requests dr
	LEFT JOIN files f ON dr.file_id = f.id
	LEFT JOIN posts p ON f.post_id = p.id
	LEFT JOIN users u1 ON dr.user_id = u1.id
	LEFT JOIN users u2 ON dr.approved_by = u2.id`

// =========================================================================
// Public Methods (satisfy the service.DownloadRequestStorage interface)
// =========================================================================

// SaveRequest inserts a new pending request. The partial unique index on
// (user_id, file_id) WHERE status = 'pending' is what enforces the
// one-pending-per-pair invariant: two concurrent inserts cannot both pass an
// application-level check, but they cannot both pass the index.
func (s *Storage) SaveRequest(userId domain.UserId, fileId domain.FileId, notes *string) (domain.RequestId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.RequestId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveRequest(tx, userId, fileId, notes)
		return err
	})
	return id, err
}

func (s *Storage) Request(id domain.RequestId) (domain.DownloadRequest, error) {
	return s.request(s.db, id)
}

func (s *Storage) LatestRequest(userId domain.UserId, fileId domain.FileId) (*domain.DownloadRequest, error) {
	return s.latestRequest(s.db, userId, fileId)
}

func (s *Storage) Requests(userId *domain.UserId, status *domain.RequestStatus, page, limit int) ([]domain.DownloadRequest, int, error) {
	return s.requests(s.db, userId, status, page, limit)
}

func (s *Storage) UpdateRequest(req domain.DownloadRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.updateRequest(tx, req)
	})
}

func (s *Storage) DeleteRequest(id domain.RequestId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.deleteRequest(tx, id)
	})
}

func (s *Storage) LedgerState(userId domain.UserId, fileId domain.FileId) (domain.LedgerState, error) {
	return s.ledgerState(s.db, userId, fileId)
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) saveRequest(q Querier, userId domain.UserId, fileId domain.FileId, notes *string) (domain.RequestId, error) {
	var id domain.RequestId
	err := q.QueryRow(`
	INSERT INTO download_requests(user_id, file_id, notes)
	VALUES($1, $2, $3)
	RETURNING id`,
		userId, fileId, notes).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case uniqueViolation:
				return -1, &internal_errors.ErrorWithStatusCode{Message: "You already have a pending request for this file", StatusCode: http.StatusBadRequest}
			case foreignKeyViolation:
				return -1, &internal_errors.ErrorWithStatusCode{Message: "File not found", StatusCode: http.StatusNotFound}
			}
		}
		return -1, fmt.Errorf("failed to insert download request: %w", err)
	}
	return id, nil
}

func (s *Storage) request(q Querier, id domain.RequestId) (domain.DownloadRequest, error) {
	row := q.QueryRow(`SELECT `+requestColumns+requestJoins+` WHERE dr.id = $1`, id)

	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DownloadRequest{}, &internal_errors.ErrorWithStatusCode{Message: "Download request not found", StatusCode: http.StatusNotFound}
		}
		return domain.DownloadRequest{}, fmt.Errorf("failed to query download request: %w", err)
	}
	return req, nil
}

func (s *Storage) latestRequest(q Querier, userId domain.UserId, fileId domain.FileId) (*domain.DownloadRequest, error) {
	row := q.QueryRow(`
	SELECT `+requestColumns+requestJoins+`
	WHERE dr.user_id = $1 AND dr.file_id = $2
	ORDER BY dr.request_date DESC, dr.id DESC
	LIMIT 1`, userId, fileId)

	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest download request: %w", err)
	}
	return &req, nil
}

func (s *Storage) requests(q Querier, userId *domain.UserId, status *domain.RequestStatus, page, limit int) ([]domain.DownloadRequest, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if userId != nil {
		args = append(args, *userId)
		where += fmt.Sprintf(" AND dr.user_id = $%d", len(args))
	}
	if status != nil {
		args = append(args, *status)
		where += fmt.Sprintf(" AND dr.status = $%d", len(args))
	}

	var total int
	if err := q.QueryRow(`SELECT COUNT(*) FROM download_requests dr WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count download requests: %w", err)
	}

	offset := (page - 1) * limit
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY dr.request_date DESC, dr.id DESC LIMIT $%d OFFSET $%d`,
		requestColumns, requestJoins, where, len(args)-1, len(args))

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query download requests: %w", err)
	}
	defer rows.Close()

	requests := []domain.DownloadRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan download request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, total, rows.Err()
}

func (s *Storage) updateRequest(q Querier, req domain.DownloadRequest) error {
	result, err := q.Exec(`
	UPDATE download_requests
	SET status = $1, notes = $2, approved_date = $3, approved_by = $4
	WHERE id = $5`,
		req.Status, req.Notes, req.ApprovedDate, req.ApprovedBy, req.Id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			// Reopening a request while another pending one exists for the
			// same pair would break the one-pending invariant.
			return &internal_errors.ErrorWithStatusCode{Message: "User already has a pending request for this file", StatusCode: http.StatusBadRequest}
		}
		return fmt.Errorf("failed to update download request: %w", err)
	}
	return requireRowAffected(result, "Download request not found")
}

func (s *Storage) deleteRequest(q Querier, id domain.RequestId) error {
	result, err := q.Exec(`DELETE FROM download_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete download request: %w", err)
	}
	return requireRowAffected(result, "Download request not found")
}

func (s *Storage) ledgerState(q Querier, userId domain.UserId, fileId domain.FileId) (domain.LedgerState, error) {
	var state domain.LedgerState
	err := q.QueryRow(`
	SELECT
		COALESCE(bool_or(status = 'approved'), FALSE),
		COALESCE(bool_or(status = 'pending'), FALSE)
	FROM download_requests
	WHERE user_id = $1 AND file_id = $2`,
		userId, fileId).Scan(&state.HasApproved, &state.HasPending)
	if err != nil {
		return domain.LedgerState{}, fmt.Errorf("failed to query ledger state: %w", err)
	}
	return state, nil
}

func scanRequest(row rowScanner) (domain.DownloadRequest, error) {
	var req domain.DownloadRequest
	err := row.Scan(
		&req.Id, &req.UserId, &req.FileId, &req.Status, &req.Notes,
		&req.RequestDate, &req.ApprovedDate, &req.ApprovedBy,
		&req.FileName, &req.FileSize, &req.MimeType,
		&req.PostTitle, &req.PostSlug,
		&req.RequesterName,
		&req.ApproverName,
	)
	return req, err
}
