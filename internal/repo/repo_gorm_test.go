package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"freelance-market/internal/domain"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestFindByIDMissingIsNil(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "projects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	p, err := NewProjectRepo(db).FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDDriverErrorSurfaces(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "reviews"`).WillReturnError(errors.New("connection reset"))

	_, err := NewReviewRepo(db).FindByApplication(context.Background(), 3)
	assert.ErrorContains(t, err, "connection reset")
}

func TestCreateMapsUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`))

	err := NewUserRepo(db).Create(context.Background(), &domain.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateKeepsOtherErrors(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("disk full")
	mock.ExpectQuery(`INSERT INTO "applications"`).WillReturnError(boom)

	err := NewApplicationRepo(db).Create(context.Background(), &domain.Application{ProjectID: 1, FreelancerID: 2})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrDuplicate)
}

func TestProjectStatsScan(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS application_count`).
		WillReturnRows(sqlmock.NewRows([]string{"application_count", "avg_proposed_price"}).AddRow(3, 150.5))

	st, err := NewProjectRepo(db).Stats(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStats{ApplicationCount: 3, AvgProposedPrice: 150.5}, st)
}

func TestProjectDeleteCascades(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`DELETE FROM "reviews"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "applications"`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "projects"`).WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := NewProjectRepo(db).Delete(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`DELETE FROM "reviews"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "applications"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "projects"`).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := NewProjectRepo(db).Delete(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreTransactionRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	want := errors.New("nope")
	err := NewStore(db).Transaction(context.Background(), func(r domain.Repos) error {
		assert.NotNil(t, r.Projects())
		return want
	})
	assert.ErrorIs(t, err, want)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreTransactionCommits(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "status"}).AddRow(5, "e@example.com", "employer", "active"))
	mock.ExpectCommit()

	var got *domain.User
	err := NewStore(db).Transaction(context.Background(), func(r domain.Repos) error {
		var e error
		got, e = r.Users().FindByEmail(context.Background(), "e@example.com")
		return e
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint(5), got.ID)
	assert.Equal(t, domain.RoleEmployer, got.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDupKey(t *testing.T) {
	assert.True(t, isDupKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDupKey(errors.New("Error 1062 (23000): Duplicate entry 'a' for key 'users.email'")))
	assert.False(t, isDupKey(errors.New("syntax error")))
	assert.False(t, isDupKey(nil))
}

func TestUserFootprint(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT id FROM projects WHERE employer_id = \$1\s+UNION SELECT project_id FROM applications WHERE freelancer_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(8))
	mock.ExpectQuery(`SELECT "reviewed_id" FROM "user_reviews" WHERE reviewer_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"reviewed_id"}).AddRow(11))

	fp, err := NewUserRepo(db).Footprint(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 8}, fp.ProjectIDs)
	assert.Equal(t, []uint{11}, fp.ReviewedUserIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
