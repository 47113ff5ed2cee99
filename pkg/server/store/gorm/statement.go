package gorm

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bcgov/restoration-tracker/pkg/queries"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// exec runs a write statement and reports the rows it touched.
func exec(db *gorm.DB, stmt *queries.Statement) (int64, error) {
	tx := db.Exec(stmt.SQL, stmt.Args...)
	return tx.RowsAffected, tx.Error
}

// scan runs a query, or a write with RETURNING, into dest and reports how
// many rows were read.
func scan(db *gorm.DB, stmt *queries.Statement, dest interface{}) (int64, error) {
	tx := db.Raw(stmt.SQL, stmt.Args...).Scan(dest)
	return tx.RowsAffected, tx.Error
}

// lockProject takes a row lock on the project so that checks spanning its
// participations are serialized.
func lockProject(tx *gorm.DB, projectID int) error {
	var id int
	res := tx.Raw(`SELECT project_id FROM project WHERE project_id = ? FOR UPDATE`, projectID).Scan(&id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// isUniqueViolation reports a unique constraint failure from either driver;
// pgconn.PgError and pq.Error both expose SQLState.
func isUniqueViolation(err error) bool {
	var state interface{ SQLState() string }
	return errors.As(err, &state) && state.SQLState() == uniqueViolation
}
