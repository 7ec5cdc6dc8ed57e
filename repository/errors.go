package repository

import (
	"errors"
	"fmt"
)

// ErrDatabase marks failures coming from the relational store.
var ErrDatabase = errors.New("database error")

func dbErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrDatabase, err)
}
