// Package repository contains data access for the credential store.  Every
// method is a single statement (or an insert followed by its read-back) and
// takes the request context.  Driver errors are classified into the
// sentinels below so that higher layers never inspect driver types.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup by key yields no row.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a principal with the same email already
// exists in the same table.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicate is returned when an insert or update violates a unique key
// other than a principal email.
var ErrDuplicate = errors.New("duplicate value")

// ErrConstraint is returned when a write violates a foreign key or NOT NULL
// constraint, e.g. a booking referencing an unknown route.  It is caused by
// the caller's input rather than the store itself.
var ErrConstraint = errors.New("constraint violation")

// MySQL server error numbers.
const (
	mysqlDupEntry        = 1062
	mysqlBadNull         = 1048
	mysqlNoDefault       = 1364
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// classify maps driver errors onto ErrDuplicate and ErrConstraint.  Other
// errors are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDupEntry:
			return fmt.Errorf("%w: %s", ErrDuplicate, me.Message)
		case mysqlBadNull, mysqlNoDefault, mysqlRowIsReferenced, mysqlNoReferencedRow:
			return fmt.Errorf("%w: %s", ErrConstraint, me.Message)
		}
		return err
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", ErrDuplicate, se.Error())
		}
		return fmt.Errorf("%w: %s", ErrConstraint, se.Error())
	}
	return err
}
