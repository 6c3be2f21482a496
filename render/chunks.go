package render

// A Chunk is a contiguous range of sensing-element indices assigned to
// one worker as a unit of work. Elements inside a chunk are rendered
// to completion; a cancelled render never splits an element.
type Chunk struct {
	Index int

	// Element index range [Start, End).
	Start int
	End   int
}

// Elements returns the number of elements covered by the chunk.
func (c Chunk) Elements() int {
	return c.End - c.Start
}

// Split partitions elements into contiguous chunks of at most size
// elements each. The decomposition depends only on (elements, size),
// never on the worker count, so the per-chunk random streams line up
// between synchronous and parallel renders.
func Split(elements, size int) []Chunk {
	if elements <= 0 {
		return nil
	}
	if size <= 0 || size > elements {
		size = elements
	}

	chunks := make([]Chunk, 0, (elements+size-1)/size)
	for start := 0; start < elements; start += size {
		end := start + size
		if end > elements {
			end = elements
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Start: start, End: end})
	}
	return chunks
}
