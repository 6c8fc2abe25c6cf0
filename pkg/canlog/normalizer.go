package canlog

// Normalized is a Record placed in its run: a 1-based index and times
// relative to the first record.
type Normalized struct {
	Record
	Index    int
	Relative float64 // seconds since the first record of the run
	Delta    float64 // seconds since the previous record of the run
}

// Normalizer tracks the run state needed to normalize records. Use one
// Normalizer per conversion; the zero value is ready to use.
type Normalizer struct {
	started  bool
	first    float64
	previous float64
	count    int
}

// Observe assigns the next index to r and computes its relative time. first
// is true for the record that started the run. Records without a timestamp
// get a relative time of zero and do not start the clock.
func (n *Normalizer) Observe(r Record) (normalized Normalized, first bool) {
	n.count++
	normalized = Normalized{Record: r, Index: n.count}
	first = n.count == 1

	if !r.HasTimestamp {
		return normalized, first
	}
	if !n.started {
		n.started = true
		n.first = r.Timestamp
		n.previous = r.Timestamp
	}
	normalized.Relative = r.Timestamp - n.first
	normalized.Delta = r.Timestamp - n.previous
	n.previous = r.Timestamp
	return normalized, first
}

// Count returns the number of records observed.
func (n *Normalizer) Count() int {
	return n.count
}

// Start returns the timestamp of the first timed record and whether there
// was one.
func (n *Normalizer) Start() (float64, bool) {
	return n.first, n.started
}
