package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

func expectReviewLock(mock pgxmock.PgxPoolIface, reviewID string) {
	mock.ExpectQuery("SELECT id FROM commerce_reviews WHERE id = .+ FOR UPDATE").
		WithArgs(reviewID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(reviewID))
}

func expectRecount(mock pgxmock.PgxPoolIface, reviewID string, helpful, notHelpful int) {
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FILTER").
		WithArgs(domain.KindCommerce, reviewID).
		WillReturnRows(pgxmock.NewRows([]string{"helpful", "not_helpful"}).AddRow(helpful, notHelpful))
}

func expectCounterUpdate(mock pgxmock.PgxPoolIface, reviewID string) {
	mock.ExpectExec("UPDATE commerce_reviews SET helpful_count").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), reviewID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
}

func TestVoteRepository_Apply_RecordsNewVote(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewVoteRepository(mock)

	mock.ExpectBegin()
	expectReviewLock(mock, "review-1")
	mock.ExpectQuery("SELECT helpful FROM review_votes").
		WithArgs(domain.KindCommerce, "review-1", "user-1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO review_votes").
		WithArgs(domain.KindCommerce, "review-1", "user-1", true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	expectRecount(mock, "review-1", 1, 0)
	expectCounterUpdate(mock, "review-1")
	mock.ExpectCommit()

	result, err := repo.Apply(context.Background(), domain.KindCommerce, "review-1", "user-1", true)
	require.NoError(t, err)
	assert.Equal(t, domain.VoteActionRecorded, result.Action)
	assert.Equal(t, 1, result.HelpfulCount)
	assert.Equal(t, 0, result.NotHelpfulCount)
	assert.True(t, result.UserVote)
	assert.InDelta(t, 0.2065, result.WilsonScore, 0.0001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_Apply_RepeatVoteIsIdempotent(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewVoteRepository(mock)

	// Voting helpful twice keeps the ledger at one helpful vote.
	mock.ExpectBegin()
	expectReviewLock(mock, "review-1")
	mock.ExpectQuery("SELECT helpful FROM review_votes").
		WithArgs(domain.KindCommerce, "review-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"helpful"}).AddRow(true))
	mock.ExpectExec("UPDATE review_votes SET voted_at").
		WithArgs(pgxmock.AnyArg(), domain.KindCommerce, "review-1", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectRecount(mock, "review-1", 1, 0)
	expectCounterUpdate(mock, "review-1")
	mock.ExpectCommit()

	result, err := repo.Apply(context.Background(), domain.KindCommerce, "review-1", "user-1", true)
	require.NoError(t, err)
	assert.Equal(t, domain.VoteActionUnchanged, result.Action)
	assert.Equal(t, 1, result.HelpfulCount)
	assert.Equal(t, 0, result.NotHelpfulCount)
	assert.True(t, result.UserVote)
	assert.InDelta(t, 0.2065, result.WilsonScore, 0.0001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_Apply_OppositeVoteFlips(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewVoteRepository(mock)

	mock.ExpectBegin()
	expectReviewLock(mock, "review-1")
	mock.ExpectQuery("SELECT helpful FROM review_votes").
		WithArgs(domain.KindCommerce, "review-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"helpful"}).AddRow(true))
	mock.ExpectExec("UPDATE review_votes SET helpful").
		WithArgs(false, pgxmock.AnyArg(), domain.KindCommerce, "review-1", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectRecount(mock, "review-1", 0, 1)
	expectCounterUpdate(mock, "review-1")
	mock.ExpectCommit()

	result, err := repo.Apply(context.Background(), domain.KindCommerce, "review-1", "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, domain.VoteActionChanged, result.Action)
	assert.Equal(t, 0, result.HelpfulCount)
	assert.Equal(t, 1, result.NotHelpfulCount)
	assert.False(t, result.UserVote)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_Apply_ReviewNotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewVoteRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM commerce_reviews WHERE id = .+ FOR UPDATE").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	result, err := repo.Apply(context.Background(), domain.KindCommerce, "missing", "user-1", true)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_GetUserVote_Absent(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewVoteRepository(mock)

	mock.ExpectQuery("SELECT review_kind, review_id, user_id, helpful, voted_at FROM review_votes").
		WithArgs(domain.KindCommerce, "review-1", "user-2").
		WillReturnError(pgx.ErrNoRows)

	vote, err := repo.GetUserVote(context.Background(), domain.KindCommerce, "review-1", "user-2")
	require.NoError(t, err)
	assert.Nil(t, vote)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─────────────────────────────────────────────────────────────────────────────
// ReportRepository
// ─────────────────────────────────────────────────────────────────────────────

func sampleReport() domain.AbuseReport {
	return domain.AbuseReport{
		ID:         "report-1",
		ReviewKind: domain.KindCommerce,
		ReviewID:   "review-1",
		ReporterID: "user-2",
		Reason:     domain.ReasonSpam,
		Details:    "Repeated promotional links.",
		ReportedAt: now,
	}
}

func TestReportRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReportRepository(mock)

	rep := sampleReport()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO review_abuse_reports").
		WithArgs(rep.ID, rep.ReviewKind, rep.ReviewID, rep.ReporterID, rep.Reason, rep.Details, rep.ReportedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE commerce_reviews SET reported_count").
		WithArgs(rep.ReviewID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &rep)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_Create_DuplicateConflict(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReportRepository(mock)

	rep := sampleReport()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO review_abuse_reports").
		WithArgs(rep.ID, rep.ReviewKind, rep.ReviewID, rep.ReporterID, rep.Reason, rep.Details, rep.ReportedAt).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &rep)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_CountForReview(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReportRepository(mock)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM review_abuse_reports").
		WithArgs(domain.KindCommerce, "review-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountForReview(context.Background(), domain.KindCommerce, "review-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
