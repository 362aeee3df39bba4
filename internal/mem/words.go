package mem

// DefaultPageSize provides a default for Words.PageSize.
const DefaultPageSize = 256

// Words implements a sparse, paged memory of signed 64-bit words.
// Every address reads as 0 until stored; pages are allocated on first store.
// Pages may not necessarily be the same size, but usually are in practice.
type Words struct {
	PagedCore
	pages [][]int64
}

// Size returns an address one position higher than the last position in the
// last page allocated so far.
func (m *Words) Size() uint {
	if i := len(m.bases) - 1; i >= 0 {
		return m.bases[i] + uint(len(m.pages[i]))
	}
	return 0
}

// Load returns a single value from the given address.
// Unallocated pages are left unallocated, resulting in implicit 0 values.
func (m *Words) Load(addr uint) (int64, error) {
	if err := m.checkLimit(addr+1, "load"); err != nil {
		return 0, err
	}
	if len(m.pages) == 0 {
		return 0, nil
	}
	pageID := m.findPage(addr)
	base := m.bases[pageID]
	page := m.pages[pageID]
	if addr >= base {
		if i := addr - base; i < uint(len(page)) {
			return page[i], nil
		}
	}
	return 0, nil
}

// LoadInto reads len(buf) words from memory starting at addr, zeroing any
// part of buf that falls into unallocated space.
// No partial load is done if the limit would be exceeded.
func (m *Words) LoadInto(addr uint, buf []int64) error {
	if len(buf) == 0 {
		return nil
	}

	end := addr + uint(len(buf))
	if err := m.checkLimit(end, "load"); err != nil {
		return err
	}

	for pageID := m.findPage(addr); addr < end && pageID < len(m.bases); pageID++ {
		base := m.bases[pageID]
		if base >= end {
			break
		}

		if skip := int(base) - int(addr); skip > 0 {
			for i := range buf[:skip] {
				buf[i] = 0
			}
			buf = buf[skip:]
			addr += uint(skip)
		}

		page := m.pages[pageID]
		if skip := addr - base; skip > 0 {
			if skip >= uint(len(page)) {
				continue
			}
			page = page[skip:]
		}

		n := copy(buf, page)
		buf = buf[n:]
		addr += uint(n)
	}

	for i := range buf {
		buf[i] = 0
	}
	return nil
}

// Stor stores values starting at addr, allocating pages as necessary.
// No partial store is done if the limit would be exceeded.
func (m *Words) Stor(addr uint, values ...int64) error {
	if len(values) == 0 {
		return nil
	}

	end := addr + uint(len(values))
	if err := m.checkLimit(end, "stor"); err != nil {
		return err
	}

	if m.PageSize == 0 {
		m.PageSize = DefaultPageSize
	}

	for pageID := m.findPage(addr); addr < end; pageID++ {
		base, size, page := m.allocPage(pageID, addr)
		if skip := addr - base; skip > 0 {
			if skip >= size {
				continue
			}
			page = page[skip:]
		}
		n := copy(page, values)
		values = values[n:]
		addr += uint(n)
	}

	return nil
}

// Grow ensures that pages are allocated for every address below size.
// Values already stored are kept; new space reads as 0.
func (m *Words) Grow(size uint) error {
	if err := m.checkLimit(size, "grow"); err != nil {
		return err
	}
	if m.PageSize == 0 {
		m.PageSize = DefaultPageSize
	}
	for addr := uint(0); addr < size; {
		pageID := m.findPage(addr)
		if pageID < len(m.bases) && m.bases[pageID] <= addr {
			if end := m.bases[pageID] + m.sizes[pageID]; addr < end {
				addr = end
				continue
			}
			pageID++
		}
		base, n, _ := m.allocPage(pageID, addr)
		addr = base + n
	}
	return nil
}

// EachPage calls f with the base address and contents of every allocated
// page, in address order, stopping at the first error.
func (m *Words) EachPage(f func(base uint, page []int64) error) error {
	for i, page := range m.pages {
		if err := f(m.bases[i], page); err != nil {
			return err
		}
	}
	return nil
}

func (m *Words) allocPage(pageID int, addr uint) (base, size uint, page []int64) {
	base, size, isNew := m.PagedCore.allocPage(pageID, addr)
	if !isNew {
		return base, size, m.pages[pageID]
	}
	page = make([]int64, size)
	if pageID == len(m.pages) {
		m.pages = append(m.pages, page)
	} else {
		m.pages = append(m.pages, nil)
		copy(m.pages[pageID+1:], m.pages[pageID:])
		m.pages[pageID] = page
	}
	return base, size, page
}
