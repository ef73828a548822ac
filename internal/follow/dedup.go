package follow

const (
	// seenCap bounds the dedup set; when exceeded the set is compacted to
	// the most recent half, accepting a small duplicate risk over
	// unbounded growth.
	seenCap     = 5000
	seenCompact = seenCap / 2
)

// Deduplicator suppresses trade events that were already processed.
// Not safe for concurrent use; the engine calls it from one goroutine.
type Deduplicator struct {
	seen  map[string]struct{}
	order []string
}

// NewDeduplicator returns an empty dedup set.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Seen records the id and reports whether it was already present.
func (d *Deduplicator) Seen(id string) bool {
	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}
	d.order = append(d.order, id)

	if len(d.order) > seenCap {
		keep := d.order[len(d.order)-seenCompact:]
		d.seen = make(map[string]struct{}, len(keep))
		for _, k := range keep {
			d.seen[k] = struct{}{}
		}
		d.order = append(d.order[:0], keep...)
	}
	return false
}

// Len returns the number of tracked ids.
func (d *Deduplicator) Len() int {
	return len(d.seen)
}
