package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewClientWithDB(gdb), mock
}

func TestCheckAndUpdateCredits_Admitted(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewUserRepository(client)

	mock.ExpectExec("UPDATE users").
		WithArgs(10, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	admitted, err := repo.CheckAndUpdateCredits(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, admitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAndUpdateCredits_Denied(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewUserRepository(client)

	// 额度耗尽且当日已重置过，条件不命中任何行
	mock.ExpectExec("UPDATE users").
		WithArgs(10, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	admitted, err := repo.CheckAndUpdateCredits(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, admitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAndUpdateCredits_SingleStatement(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewUserRepository(client)

	// 检查与扣减必须是同一条语句，准入路径上不允许出现 SELECT
	mock.ExpectExec("UPDATE users").
		WithArgs(10, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := repo.CheckAndUpdateCredits(context.Background(), 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAndUpdateCredits_DBError(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewUserRepository(client)

	mock.ExpectExec("UPDATE users").
		WithArgs(10, int64(42)).
		WillReturnError(assert.AnError)

	admitted, err := repo.CheckAndUpdateCredits(context.Background(), 42)
	require.Error(t, err)
	assert.False(t, admitted)
}

func TestGetCredits(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewUserRepository(client)

	rows := sqlmock.NewRows([]string{"credits"}).AddRow(3)
	mock.ExpectQuery(`SELECT "credits" FROM "users"`).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	credits, err := repo.GetCredits(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 3, credits)
}
