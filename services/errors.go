package services

import "fmt"

// FieldParseError records a raw record dropped because a required field
// could not be parsed. It is tallied, never fatal.
type FieldParseError struct {
	Index int // position in the raw input
	Name  string
	Field string
	Raw   string
}

func (e FieldParseError) Error() string {
	return fmt.Sprintf("record %d (%s): cannot parse %s from %q", e.Index, e.Name, e.Field, e.Raw)
}

// StockTextUnrecognized records availability text outside the stock vocabulary.
// The record is kept with in_stock=false.
type StockTextUnrecognized struct {
	Index int
	Name  string
	Raw   string
}

func (e StockTextUnrecognized) Error() string {
	return fmt.Sprintf("record %d (%s): unrecognized stock text %q", e.Index, e.Name, e.Raw)
}
