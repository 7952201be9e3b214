package flow

// Pager is a step cursor over a fixed number of items shown size at a time.
type Pager struct {
	total int
	size  int
	step  int
}

// NewPager pages total items size at a time. size < 1 puts everything on
// one page.
func NewPager(total, size int) *Pager {
	if total < 0 {
		total = 0
	}
	if size < 1 {
		size = total
		if size == 0 {
			size = 1
		}
	}
	return &Pager{total: total, size: size}
}

// Pages returns ceil(total/size).
func (p *Pager) Pages() int {
	return (p.total + p.size - 1) / p.size
}

// Step returns the current page index.
func (p *Pager) Step() int {
	return p.step
}

// Size returns the page size.
func (p *Pager) Size() int {
	return p.size
}

// Bounds returns the half-open item range of the current page.
func (p *Pager) Bounds() (int, int) {
	start := p.step * p.size
	end := start + p.size
	if end > p.total {
		end = p.total
	}
	if start > end {
		start = end
	}
	return start, end
}

// IsLast reports whether the cursor sits on the final page.
func (p *Pager) IsLast() bool {
	return p.step >= p.Pages()-1
}

// Next advances one page and reports whether it moved.
func (p *Pager) Next() bool {
	if p.IsLast() {
		return false
	}
	p.step++
	return true
}

// Previous moves back one page and reports whether it moved.
func (p *Pager) Previous() bool {
	if p.step == 0 {
		return false
	}
	p.step--
	return true
}

// Seek places the cursor on step, clamped to the valid range.
func (p *Pager) Seek(step int) {
	last := p.Pages() - 1
	if last < 0 {
		last = 0
	}
	p.step = clamp(step, 0, last)
}

// Reset returns to the first page.
func (p *Pager) Reset() {
	p.step = 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
