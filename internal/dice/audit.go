package dice

import "sync"

// Entry records one stochastic resolution: everything needed to replay the
// computation that produced an effect. Entries are append-only; the log
// assigns sequence numbers so a replayed tick produces an identical trail.
type Entry struct {
	Seq       int64          `json:"seq"`
	Day       int            `json:"day"`
	Part      string         `json:"part"`
	Subsystem string         `json:"subsystem"`
	Seed      string         `json:"seed"`
	Notation  string         `json:"notation"`
	Rolls     []int          `json:"rolls"`
	Total     int            `json:"total"`
	Fixed     bool           `json:"fixed,omitempty"`
	Modifiers map[string]int `json:"modifiers,omitempty"`
	Effect    string         `json:"effect"`
}

// Log is the append-only audit trail for a campaign. It is safe for
// concurrent readers; writes are serialized by the per-campaign tick owner
// but guarded anyway.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewLog() *Log {
	return &Log{}
}

// Append records an entry, assigning the next sequence number.
func (l *Log) Append(e Entry) Entry {
	l.mu.Lock()
	e.Seq = int64(len(l.entries)) + 1
	l.entries = append(l.entries, e)
	l.mu.Unlock()
	return e
}

// Since returns a copy of all entries from the given day onward.
func (l *Log) Since(day int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Day >= day {
			out = append(out, e)
		}
	}
	return out
}

// Len reports the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Recorder bundles a roll source with the audit log and current tick
// position so resolvers can draw and record in one step.
type Recorder struct {
	Src  Source
	Log  *Log
	Day  int
	Part string
}

// Roll draws via the source and appends an audit entry describing the draw
// and its effect.
func (r *Recorder) Roll(subsystem, context, notation string, fixed *int, modifiers map[string]int, effect string) (Roll, error) {
	seed := context
	roll, err := r.Src.Roll(seed, notation, fixed)
	if err != nil {
		return Roll{}, err
	}
	r.Log.Append(Entry{
		Day:       r.Day,
		Part:      r.Part,
		Subsystem: subsystem,
		Seed:      roll.Seed,
		Notation:  roll.Notation,
		Rolls:     roll.Rolls,
		Total:     roll.Total,
		Fixed:     roll.Fixed,
		Modifiers: modifiers,
		Effect:    effect,
	})
	return roll, nil
}

// Check draws a probability check via the source and appends an audit entry.
func (r *Recorder) Check(subsystem, context string, probability float64, notation string, fixed *int, effect string) (Check, error) {
	check, err := CheckSuccess(r.Src, context, probability, notation, fixed)
	if err != nil {
		return Check{}, err
	}
	r.Log.Append(Entry{
		Day:       r.Day,
		Part:      r.Part,
		Subsystem: subsystem,
		Seed:      check.Seed,
		Notation:  check.Notation,
		Rolls:     check.Rolls,
		Total:     check.Total,
		Fixed:     check.Fixed,
		Modifiers: map[string]int{"target": check.Target},
		Effect:    effect,
	})
	return check, nil
}
