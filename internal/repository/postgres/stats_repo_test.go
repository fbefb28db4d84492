package postgres

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func TestStatsRepo_Summary(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStatsRepo(db)

	mock.ExpectQuery(`SELECT \(SELECT count\(\*\) FROM users WHERE role='donor'\),`).
		WillReturnRows(pgxmock.NewRows([]string{"donors", "approved", "pending", "settled", "amount"}).
			AddRow(int64(12), int64(3), int64(2), int64(40), int64(125000)))

	s, err := r.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(12), s.Donors)
	require.Equal(t, int64(3), s.CharitiesApproved)
	require.Equal(t, int64(2), s.CharitiesPending)
	require.Equal(t, int64(40), s.DonationsSettled)
	require.Equal(t, int64(125000), s.AmountSettled)
}
