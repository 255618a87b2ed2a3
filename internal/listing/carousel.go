package listing

// Carousel tracks the visible page of a paged rotation. The zero value is an
// empty carousel.
type Carousel struct {
	total   int
	perPage int
	page    int
}

// NewCarousel pages total items perPage at a time. perPage below one is
// treated as one.
func NewCarousel(total, perPage int) Carousel {
	if perPage < 1 {
		perPage = 1
	}
	if total < 0 {
		total = 0
	}
	return Carousel{total: total, perPage: perPage}
}

// Pages is the page count; zero when there are no items.
func (c Carousel) Pages() int {
	if c.total == 0 || c.perPage == 0 {
		return 0
	}
	return (c.total + c.perPage - 1) / c.perPage
}

// Page is the current zero-based page.
func (c Carousel) Page() int {
	return c.page
}

// Next advances one page, wrapping to the first.
func (c Carousel) Next() Carousel {
	if pages := c.Pages(); pages > 0 {
		c.page = (c.page + 1) % pages
	}
	return c
}

// Prev goes back one page, wrapping to the last.
func (c Carousel) Prev() Carousel {
	if pages := c.Pages(); pages > 0 {
		c.page = (c.page - 1 + pages) % pages
	}
	return c
}

// Resize keeps the current page when it still exists.
func (c Carousel) Resize(total int) Carousel {
	resized := NewCarousel(total, c.perPage)
	if pages := resized.Pages(); pages > 0 {
		resized.page = min(c.page, pages-1)
	}
	return resized
}

// Bounds returns the half-open item range of the current page.
func (c Carousel) Bounds() (start, end int) {
	if c.Pages() == 0 {
		return 0, 0
	}
	start = c.page * c.perPage
	end = min(start+c.perPage, c.total)
	return start, end
}

// PageItems slices items to the carousel's current page.
func PageItems[T any](items []T, c Carousel) []T {
	start, end := c.Bounds()
	if end > len(items) {
		end = len(items)
	}
	if start >= end {
		return nil
	}
	return items[start:end]
}
