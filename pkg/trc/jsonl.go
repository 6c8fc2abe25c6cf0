package trc

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"cantrace/pkg/canlog"
)

// Message is one line of the JSONL format. Meta is the time since the
// previous message in milliseconds, which is what replay tools sleep for.
type Message struct {
	ID     string `json:"id"`
	Length int    `json:"length"`
	Data   string `json:"data"`
	Meta   int64  `json:"meta"`
}

// JSONLFormatter writes one JSON object per line.
type JSONLFormatter struct{}

var _ Formatter = JSONLFormatter{}

func (JSONLFormatter) Check(canlog.Record) error { return nil }

func (JSONLFormatter) Header(canlog.Normalized) string { return "" }

func (JSONLFormatter) Row(n canlog.Normalized) string {
	msg := Message{
		ID:     fmt.Sprintf("%X", n.ID),
		Length: n.Len(),
		Data:   strings.ToUpper(strings.Join(n.Data, "")),
		Meta:   int64(math.Round(n.Delta * 1000)),
	}
	// Message has only strings and integers, Marshal cannot fail.
	encoded, _ := json.Marshal(msg)
	return string(encoded) + "\n"
}
