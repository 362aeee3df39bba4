package mem

import "fmt"

// PagedCore tracks page placement for a sparse, paged memory; it holds no
// values itself.
type PagedCore struct {
	// PageSize specifies the length for newly allocated pages.
	PageSize uint

	// Limit, when non-zero, is the first address past which any load or
	// store fails with a LimitError.
	Limit uint

	bases []uint
	sizes []uint
}

// LimitError indicates that a load or store addressed memory at or beyond Limit.
type LimitError struct {
	Addr  uint
	Limit uint
	Op    string
}

func (lim LimitError) Error() string {
	return fmt.Sprintf("memory limit %v exceeded by %v @%v", lim.Limit, lim.Op, lim.Addr)
}

func (m *PagedCore) checkLimit(end uint, op string) error {
	if limit := m.Limit; limit != 0 && end > limit {
		return LimitError{Addr: end - 1, Limit: limit, Op: op}
	}
	return nil
}

// findPage returns the index of the last page whose base is <= addr, or 0.
func (m *PagedCore) findPage(addr uint) int {
	i, j := 0, len(m.bases)
	for i < j {
		h := int(uint(i+j)>>1) + 1
		if h < len(m.bases) && m.bases[h] <= addr {
			i = h
		} else {
			j = h - 1
		}
	}
	return i
}

// allocPage returns the page covering addr at or after pageID, inserting a
// new one if addr falls past the end or into a hole before pageID.
func (m *PagedCore) allocPage(pageID int, addr uint) (base, size uint, isNew bool) {
	if pageID == len(m.bases) {
		base = addr / m.PageSize * m.PageSize
		size = m.PageSize
		if i := len(m.bases) - 1; i >= 0 {
			if lastEnd := m.bases[i] + m.sizes[i]; base < lastEnd {
				size -= lastEnd - base
				base = lastEnd
			}
		}
		m.bases = append(m.bases, base)
		m.sizes = append(m.sizes, size)
		return base, size, true
	}

	base = m.bases[pageID]
	if addr < base {
		nextBase := base
		base = addr / m.PageSize * m.PageSize
		size = m.PageSize
		if pageID > 0 {
			if prevEnd := m.bases[pageID-1] + m.sizes[pageID-1]; base < prevEnd {
				size -= prevEnd - base
				base = prevEnd
			}
		}
		if gapSize := nextBase - base; size > gapSize {
			size = gapSize
		}
		m.bases = append(m.bases, 0)
		m.sizes = append(m.sizes, 0)
		copy(m.bases[pageID+1:], m.bases[pageID:])
		copy(m.sizes[pageID+1:], m.sizes[pageID:])
		m.bases[pageID] = base
		m.sizes[pageID] = size
		return base, size, true
	}

	return base, m.sizes[pageID], false
}
