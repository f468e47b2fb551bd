package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is checks against the typed errors below
var (
	ErrSchema          = errors.New("schema error")
	ErrParse           = errors.New("parse error")
	ErrEmptyDataset    = errors.New("empty dataset")
	ErrInvalidArgument = errors.New("invalid argument")
)

// SchemaError reports required fields that the source does not provide
type SchemaError struct {
	Missing []string
	Header  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required fields not found: %s", strings.Join(e.Missing, ", "))
}

// Is makes errors.Is(err, ErrSchema) succeed
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// ParseError is raised for a single row whose numeric or date field cannot be
// coerced. The loader recovers from it by dropping the row; it never reaches callers.
type ParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrParse) succeed
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// EmptyDatasetError is returned when statistics are requested over zero records
type EmptyDatasetError struct {
	Op string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("%s: dataset has no records", e.Op)
}

// Is makes errors.Is(err, ErrEmptyDataset) succeed
func (e *EmptyDatasetError) Is(target error) bool {
	return target == ErrEmptyDataset
}

// InvalidArgumentError reports a bad parameter passed to an aggregate
type InvalidArgumentError struct {
	Name   string
	Value  interface{}
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s=%v: %s", e.Name, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidArgument) succeed
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
