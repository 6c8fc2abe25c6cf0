package trc

import (
	"fmt"
	"strings"

	"cantrace/pkg/canlog"
)

// PlaceholderTime is written as the time of every PCAN row, since the simple
// dialects carry no timestamp.
const PlaceholderTime = "0.000"

// PCANFormatter re-tags simple dialect lines for PCAN-View:
//
//	0.000  123h  8  11 22 33 44 55 66 77 88
//
// Id, declared length and data are copied as written in the input.
type PCANFormatter struct{}

var _ Formatter = PCANFormatter{}

func (PCANFormatter) Check(canlog.Record) error { return nil }

func (PCANFormatter) Header(canlog.Normalized) string { return "" }

func (PCANFormatter) Row(n canlog.Normalized) string {
	return fmt.Sprintf("%s  %sh  %s  %s\n", PlaceholderTime, n.RawID, n.DeclaredLen, strings.Join(n.Data, " "))
}
