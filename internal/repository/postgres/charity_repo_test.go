package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/amolo254/pamoja/internal/errs"
	"github.com/amolo254/pamoja/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

const charityColsRe = `id, owner_id, name, description, status, created_at, reviewed_at`

func TestCharityRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCharityRepo(db)
	ctx := context.Background()
	c := &model.Charity{
		ID:          uuid.Must(uuid.NewV4()),
		OwnerID:     uuid.Must(uuid.NewV4()),
		Name:        "Maji Safi",
		Description: "clean water",
		Status:      model.CharityPending,
	}

	mock.ExpectExec(`INSERT INTO charities \(id, owner_id, name, description, status\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(c.ID, c.OwnerID, c.Name, c.Description, string(c.Status)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, c))

	// second application from the same owner
	mock.ExpectExec(`INSERT INTO charities \(id, owner_id, name, description, status\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(c.ID, c.OwnerID, c.Name, c.Description, string(c.Status)).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, c), errs.ErrAlreadyExists)
}

func TestCharityRepo_GetByOwner(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCharityRepo(db)
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT `+charityColsRe+` FROM charities WHERE owner_id=\$1`).
		WithArgs(ownerID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "name", "description", "status", "created_at", "reviewed_at"}).
			AddRow(id, ownerID, "Maji Safi", "", "approved", time.Now(), (*time.Time)(nil)))
	c, err := r.GetByOwner(ctx, ownerID)
	require.NoError(t, err)
	require.Equal(t, model.CharityApproved, c.Status)

	mock.ExpectQuery(`SELECT `+charityColsRe+` FROM charities WHERE owner_id=\$1`).
		WithArgs(ownerID).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByOwner(ctx, ownerID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCharityRepo_ListByStatus(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCharityRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT `+charityColsRe+` FROM charities WHERE status=\$1 ORDER BY created_at DESC`).
		WithArgs("pending").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "name", "description", "status", "created_at", "reviewed_at"}).
			AddRow(uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), "A", "", "pending", time.Now(), (*time.Time)(nil)).
			AddRow(uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), "B", "", "pending", time.Now(), (*time.Time)(nil)))
	cs, err := r.ListByStatus(ctx, model.CharityPending)
	require.NoError(t, err)
	require.Len(t, cs, 2)
}

func TestCharityRepo_SetStatus_PendingGuard(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCharityRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE charities SET status=\$2, reviewed_at=now\(\) WHERE id=\$1 AND status='pending'`).
		WithArgs(id, "approved").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.SetStatus(ctx, id, model.CharityApproved))

	// already reviewed (or unknown id) hits no row
	mock.ExpectExec(`UPDATE charities SET status=\$2, reviewed_at=now\(\) WHERE id=\$1 AND status='pending'`).
		WithArgs(id, "rejected").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.SetStatus(ctx, id, model.CharityRejected), errs.ErrNotFound)
}

func TestCharityRepo_Beneficiaries(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCharityRepo(db)
	ctx := context.Background()
	charityID := uuid.Must(uuid.NewV4())
	b := &model.Beneficiary{ID: uuid.Must(uuid.NewV4()), CharityID: charityID, Name: "School"}

	mock.ExpectExec(`INSERT INTO beneficiaries \(id, charity_id, name, description\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(b.ID, b.CharityID, b.Name, b.Description).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.AddBeneficiary(ctx, b))

	mock.ExpectExec(`DELETE FROM beneficiaries WHERE id=\$1 AND charity_id=\$2`).
		WithArgs(b.ID, charityID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.DeleteBeneficiary(ctx, charityID, b.ID), errs.ErrNotFound)
}

func TestCharityRepo_Stories(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCharityRepo(db)
	ctx := context.Background()
	charityID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, charity_id, title, body, created_at FROM stories WHERE charity_id=\$1 ORDER BY created_at DESC`).
		WithArgs(charityID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "charity_id", "title", "body", "created_at"}).
			AddRow(uuid.Must(uuid.NewV4()), charityID, "First well", "done", time.Now()))
	ss, err := r.ListStories(ctx, charityID)
	require.NoError(t, err)
	require.Len(t, ss, 1)
	require.Equal(t, "First well", ss[0].Title)
}
