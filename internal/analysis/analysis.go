// Package analysis counts frames per arbitration id and measures how often
// each id is sent.
package analysis

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"cantrace/pkg/canlog"
)

// IDStats describes the traffic of one arbitration id. Period values are in
// milliseconds and only set when the id was seen at least twice with
// timestamps.
type IDStats struct {
	ID           string
	Count        int
	Periods      int
	PeriodMean   float64
	PeriodStdDev float64
	PeriodMin    float64
	PeriodMax    float64
}

// Summary is the result of Collect.
type Summary struct {
	Lines   int
	Skipped int
	Frames  int
	Timed   bool
	IDs     []IDStats // sorted by numeric id
}

type idState struct {
	count   int
	last    float64
	seen    bool
	periods []float64
}

// Collect reads src until it is exhausted.
func Collect(src canlog.Source) (*Summary, error) {
	states := make(map[string]*idState)
	summary := &Summary{}

	for {
		record, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		summary.Frames++

		key := idKey(record)
		st, ok := states[key]
		if !ok {
			st = &idState{}
			states[key] = st
		}
		st.count++
		if record.HasTimestamp {
			summary.Timed = true
			if st.seen {
				st.periods = append(st.periods, (record.Timestamp-st.last)*1000)
			}
			st.last = record.Timestamp
			st.seen = true
		}
	}

	sourceStats := src.Stats()
	summary.Lines = sourceStats.Lines
	summary.Skipped = sourceStats.Skipped

	for key, st := range states {
		summary.IDs = append(summary.IDs, idStats(key, st))
	}
	sortIDs(summary.IDs)
	return summary, nil
}

func idStats(key string, st *idState) IDStats {
	result := IDStats{ID: key, Count: st.count, Periods: len(st.periods)}
	if len(st.periods) == 0 {
		return result
	}
	if len(st.periods) == 1 {
		result.PeriodMean = st.periods[0]
	} else {
		result.PeriodMean, result.PeriodStdDev = stat.MeanStdDev(st.periods, nil)
	}
	result.PeriodMin, result.PeriodMax = st.periods[0], st.periods[0]
	for _, p := range st.periods[1:] {
		result.PeriodMin = min(result.PeriodMin, p)
		result.PeriodMax = max(result.PeriodMax, p)
	}
	return result
}

// idKey prints parsed ids in upper case hex. Dialects that keep the id as
// written use the upper cased text, so leading zeros still tell ids apart.
func idKey(r canlog.Record) string {
	if r.HasTimestamp || r.RawID == "" {
		return fmt.Sprintf("%X", r.ID)
	}
	return strings.ToUpper(r.RawID)
}

// sortIDs orders ids by their hex value. Ids that are not hex go last, in
// string order.
func sortIDs(ids []IDStats) {
	sort.Slice(ids, func(i, j int) bool {
		iVal, iErr := strconv.ParseUint(ids[i].ID, 16, 64)
		jVal, jErr := strconv.ParseUint(ids[j].ID, 16, 64)
		switch {
		case iErr == nil && jErr == nil:
			if iVal != jVal {
				return iVal < jVal
			}
			return ids[i].ID < ids[j].ID
		case iErr == nil:
			return true
		case jErr == nil:
			return false
		default:
			return ids[i].ID < ids[j].ID
		}
	})
}
