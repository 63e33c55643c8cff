package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockTransitionStore(t *testing.T) (*GormTransitionStore, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormTransitionStore(gormDB, nil), mock, mockDB
}

func TestGormTransitionStore_Transition(t *testing.T) {
	t.Run("rejects unknown action before touching the database", func(t *testing.T) {
		store, mock, mockDB := newMockTransitionStore(t)
		defer mockDB.Close()

		result, err := store.Transition(context.Background(), uuid.New(), uuid.New(),
			contract.TransitionAction("LAUNCH"), nil)

		assert.Nil(t, result)
		var transitionErr *contract.TransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, "INVALID_ACTION", transitionErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing contract", func(t *testing.T) {
		store, mock, mockDB := newMockTransitionStore(t)
		defer mockDB.Close()

		companyID := uuid.New()
		contractID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE company_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(companyID, contractID, 1).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectRollback()

		result, err := store.Transition(context.Background(), companyID, contractID,
			contract.ActionForStatus(contract.StatusActive), contract.Payload{})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects an invalid edge without writing", func(t *testing.T) {
		store, mock, mockDB := newMockTransitionStore(t)
		defer mockDB.Close()

		companyID := uuid.New()
		contractID := uuid.New()

		contractRows := sqlmock.NewRows([]string{"id", "company_id", "title", "type", "status", "risk_level", "version"}).
			AddRow(contractID, companyID, "Supply Agreement", "SUPPLY", "DRAFT", "LOW", 1)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE company_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(companyID, contractID, 1).
			WillReturnRows(contractRows)
		mock.ExpectQuery(`SELECT \* FROM "contract_versions" WHERE contract_id = \$1 ORDER BY version_number ASC`).
			WithArgs(contractID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "contract_id", "version_number"}))
		mock.ExpectQuery(`SELECT \* FROM "approval_steps" WHERE contract_id = \$1 ORDER BY created_at ASC`).
			WithArgs(contractID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "contract_id", "approver_id", "status"}))
		mock.ExpectRollback()

		// A draft cannot be activated directly
		result, err := store.Transition(context.Background(), companyID, contractID,
			contract.ActionForStatus(contract.StatusActive), contract.Payload{})

		assert.Nil(t, result)
		var transitionErr *contract.TransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, contractID, transitionErr.ContractID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requires signing status payload for signing updates", func(t *testing.T) {
		store, mock, mockDB := newMockTransitionStore(t)
		defer mockDB.Close()

		companyID := uuid.New()
		contractID := uuid.New()

		contractRows := sqlmock.NewRows([]string{"id", "company_id", "title", "type", "status", "risk_level", "version"}).
			AddRow(contractID, companyID, "Supply Agreement", "SUPPLY", "SENT_FOR_SIGNATURE", "LOW", 3)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE company_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(companyID, contractID, 1).
			WillReturnRows(contractRows)
		mock.ExpectQuery(`SELECT \* FROM "contract_versions" WHERE contract_id = \$1 ORDER BY version_number ASC`).
			WithArgs(contractID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "contract_id", "version_number"}))
		mock.ExpectQuery(`SELECT \* FROM "approval_steps" WHERE contract_id = \$1 ORDER BY created_at ASC`).
			WithArgs(contractID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "contract_id", "approver_id", "status"}))
		mock.ExpectRollback()

		result, err := store.Transition(context.Background(), companyID, contractID,
			contract.ActionForStatus(contract.StatusSentForSignature), contract.Payload{})

		assert.Nil(t, result)
		var transitionErr *contract.TransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, "INVALID_PAYLOAD", transitionErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransitionStore_SupersessionCascade(t *testing.T) {
	t.Run("activating a successor supersedes the parent and closes its renewal request", func(t *testing.T) {
		store, mock, mockDB := newMockTransitionStore(t)
		defer mockDB.Close()

		companyID := uuid.New()
		successorID := uuid.New()
		parentID := uuid.New()
		requestID := uuid.New()
		ownerID := uuid.New()

		successorRows := sqlmock.NewRows([]string{"id", "company_id", "title", "type", "status", "risk_level", "version", "parent_contract_id"}).
			AddRow(successorID, companyID, "Supply Agreement 2025", "SUPPLY", "FULLY_EXECUTED", "LOW", 4, parentID)
		parentRows := sqlmock.NewRows([]string{"id", "company_id", "title", "type", "status", "risk_level", "version"}).
			AddRow(parentID, companyID, "Supply Agreement 2024", "SUPPLY", "ACTIVE", "LOW", 7)
		requestRows := sqlmock.NewRows([]string{"id", "contract_id", "status", "owner_id"}).
			AddRow(requestID, parentID, "IN_PROGRESS", ownerID)

		mock.ExpectBegin()
		// Successor's own transition to ACTIVE
		mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE company_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(companyID, successorID, 1).
			WillReturnRows(successorRows)
		mock.ExpectQuery(`SELECT \* FROM "contract_versions" WHERE contract_id = \$1 ORDER BY version_number ASC`).
			WithArgs(successorID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "contract_id", "version_number"}))
		mock.ExpectQuery(`SELECT \* FROM "approval_steps" WHERE contract_id = \$1 ORDER BY created_at ASC`).
			WithArgs(successorID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "contract_id", "approver_id", "status"}))
		mock.ExpectExec(`UPDATE "contracts" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "audit_entries"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Cascade under the savepoint: parent row, parent audit, renewal close
		mock.ExpectExec(`SAVEPOINT supersession_cascade`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE company_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(companyID, parentID, 1).
			WillReturnRows(parentRows)
		mock.ExpectQuery(`SELECT \* FROM "contract_versions" WHERE contract_id = \$1 ORDER BY version_number ASC`).
			WithArgs(parentID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "contract_id", "version_number"}))
		mock.ExpectQuery(`SELECT \* FROM "approval_steps" WHERE contract_id = \$1 ORDER BY created_at ASC`).
			WithArgs(parentID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "contract_id", "approver_id", "status"}))
		mock.ExpectExec(`UPDATE "contracts" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "audit_entries"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT \* FROM "renewal_requests" WHERE contract_id = \$1 AND status IN \(\$2,\$3\) ORDER BY created_at DESC`).
			WithArgs(parentID, "QUEUED", "IN_PROGRESS", 1).
			WillReturnRows(requestRows)
		mock.ExpectExec(`UPDATE "renewal_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := store.Transition(context.Background(), companyID, successorID,
			contract.ActionForStatus(contract.StatusActive), contract.Payload{})

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Nil(t, result.CascadeWarning)
		assert.Equal(t, contract.StatusActive, result.Contract.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cascade failure surfaces as a warning, not a rollback", func(t *testing.T) {
		store, mock, mockDB := newMockTransitionStore(t)
		defer mockDB.Close()

		companyID := uuid.New()
		successorID := uuid.New()
		parentID := uuid.New()

		successorRows := sqlmock.NewRows([]string{"id", "company_id", "title", "type", "status", "risk_level", "version", "parent_contract_id"}).
			AddRow(successorID, companyID, "Supply Agreement 2025", "SUPPLY", "FULLY_EXECUTED", "LOW", 4, parentID)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE company_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(companyID, successorID, 1).
			WillReturnRows(successorRows)
		mock.ExpectQuery(`SELECT \* FROM "contract_versions" WHERE contract_id = \$1 ORDER BY version_number ASC`).
			WithArgs(successorID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "contract_id", "version_number"}))
		mock.ExpectQuery(`SELECT \* FROM "approval_steps" WHERE contract_id = \$1 ORDER BY created_at ASC`).
			WithArgs(successorID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "contract_id", "approver_id", "status"}))
		mock.ExpectExec(`UPDATE "contracts" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "audit_entries"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Parent vanished between commits: the cascade rolls back to the
		// savepoint while the successor's transition stands
		mock.ExpectExec(`SAVEPOINT supersession_cascade`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE company_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(companyID, parentID, 1).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectExec(`ROLLBACK TO SAVEPOINT supersession_cascade`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		result, err := store.Transition(context.Background(), companyID, successorID,
			contract.ActionForStatus(contract.StatusActive), contract.Payload{})

		require.NoError(t, err)
		require.NotNil(t, result)
		require.NotNil(t, result.CascadeWarning)
		assert.Equal(t, successorID, result.CascadeWarning.SuccessorID)
		assert.Equal(t, parentID, result.CascadeWarning.PredecessorID)
		assert.Equal(t, contract.StatusActive, result.Contract.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAsTransitionError(t *testing.T) {
	t.Run("wraps domain errors with their code", func(t *testing.T) {
		contractID := uuid.New()
		err := asTransitionError(contractID, contract.ActionForStatus(contract.StatusTerminated),
			shared.NewDomainError("INVALID_TRANSITION", "Cannot terminate a draft"))

		var transitionErr *contract.TransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, "INVALID_TRANSITION", transitionErr.Code)
		assert.Equal(t, contractID, transitionErr.ContractID)
	})

	t.Run("passes through infrastructure errors unchanged", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := asTransitionError(uuid.New(), contract.ActionForStatus(contract.StatusActive), cause)

		assert.Equal(t, cause, err)
	})
}
