package scan

// batcher lazily partitions the port range [start, end) into ascending
// batches of at most size ports. Batches never overlap and together cover the
// range exactly once. The last batch holds the remainder; no batch is empty
// unless the range itself is empty, in which case no batches are produced.
//
// Bounds are tracked as ints so a range ending at the top of the uint16 space
// cannot wrap.
type batcher struct {
	next int
	end  int
	size int
}

func newBatcher(start, end uint16, size int) *batcher {
	return &batcher{next: int(start), end: int(end), size: size}
}

// more reports whether at least one batch remains.
func (b *batcher) more() bool {
	return b.next < b.end
}

// nextBatch returns the next batch of ports in ascending order. It must only
// be called while more() reports true.
func (b *batcher) nextBatch() []uint16 {
	upper := b.next + b.size
	if upper > b.end {
		upper = b.end
	}
	batch := make([]uint16, 0, upper-b.next)
	for p := b.next; p < upper; p++ {
		batch = append(batch, uint16(p))
	}
	b.next = upper
	return batch
}
