package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestStatus(t *testing.T) {
	for _, valid := range []string{"pending", "approved", "rejected"} {
		status, err := ParseRequestStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, RequestStatus(valid), status)
	}

	for _, invalid := range []string{"", "Pending", "approve", "cancelled"} {
		_, err := ParseRequestStatus(invalid)
		assert.Error(t, err, "expected error for %q", invalid)
	}
}

func TestDownloadRequestTransition(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	adminId := UserId(42)

	t.Run("approve stamps approval fields", func(t *testing.T) {
		req := DownloadRequest{Status: StatusPending}

		err := req.Transition(StatusApproved, adminId, now)

		require.NoError(t, err)
		assert.Equal(t, StatusApproved, req.Status)
		require.NotNil(t, req.ApprovedDate)
		assert.Equal(t, now, *req.ApprovedDate)
		require.NotNil(t, req.ApprovedBy)
		assert.Equal(t, adminId, *req.ApprovedBy)
	})

	t.Run("reject stamps approval fields", func(t *testing.T) {
		req := DownloadRequest{Status: StatusPending}

		err := req.Transition(StatusRejected, adminId, now)

		require.NoError(t, err)
		assert.Equal(t, StatusRejected, req.Status)
		assert.NotNil(t, req.ApprovedDate)
		assert.NotNil(t, req.ApprovedBy)
	})

	t.Run("back to pending clears approval fields", func(t *testing.T) {
		date := now.Add(-time.Hour)
		approver := UserId(7)
		req := DownloadRequest{Status: StatusApproved, ApprovedDate: &date, ApprovedBy: &approver}

		err := req.Transition(StatusPending, adminId, now)

		require.NoError(t, err)
		assert.Equal(t, StatusPending, req.Status)
		assert.Nil(t, req.ApprovedDate)
		assert.Nil(t, req.ApprovedBy)
	})

	t.Run("re-finalizing overwrites approver and timestamp", func(t *testing.T) {
		date := now.Add(-time.Hour)
		approver := UserId(7)
		req := DownloadRequest{Status: StatusApproved, ApprovedDate: &date, ApprovedBy: &approver}

		err := req.Transition(StatusRejected, adminId, now)

		require.NoError(t, err)
		assert.Equal(t, StatusRejected, req.Status)
		assert.Equal(t, now, *req.ApprovedDate)
		assert.Equal(t, adminId, *req.ApprovedBy)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		req := DownloadRequest{Status: StatusPending}

		err := req.Transition(RequestStatus("cancelled"), adminId, now)

		assert.Error(t, err)
		assert.Equal(t, StatusPending, req.Status)
	})
}
