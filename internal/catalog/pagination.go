package catalog

import "strconv"

// WindowSize is the number of numbered page buttons shown at once.
const WindowSize = 5

// ButtonKind distinguishes navigation buttons from numbered ones.
type ButtonKind string

const (
	ButtonFirst  ButtonKind = "first"
	ButtonPrev   ButtonKind = "prev"
	ButtonNumber ButtonKind = "number"
	ButtonNext   ButtonKind = "next"
	ButtonLast   ButtonKind = "last"
)

// Button is one control of the pagination bar. Target is the page it loads.
type Button struct {
	Kind     ButtonKind `json:"kind"`
	Label    string     `json:"label"`
	Target   int        `json:"target"`
	Current  bool       `json:"current,omitempty"`
	Disabled bool       `json:"disabled,omitempty"`
}

// Window returns the first and last numbered page to show around page.
// The window is centered, clamped to [1, pages], and slides left when it
// would run past the last page.
func Window(page, pages, size int) (start, end int) {
	if pages < 1 {
		pages = 1
	}
	if size < 1 {
		size = 1
	}
	start = max(1, page-size/2)
	end = min(pages, start+size-1)
	if end-start+1 < size {
		start = max(1, end-size+1)
	}
	return start, end
}

// Buttons builds the pagination bar for page out of pages. A single page needs
// no controls and yields nil.
func Buttons(page, pages int) []Button {
	if pages <= 1 {
		return nil
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	first := page <= 1
	last := page >= pages

	out := []Button{
		{Kind: ButtonFirst, Label: "First", Target: 1, Disabled: first},
		{Kind: ButtonPrev, Label: "◀", Target: max(1, page-1), Disabled: first},
	}

	start, end := Window(page, pages, WindowSize)
	for p := start; p <= end; p++ {
		out = append(out, Button{
			Kind:     ButtonNumber,
			Label:    strconv.Itoa(p),
			Target:   p,
			Current:  p == page,
			Disabled: p == page,
		})
	}

	return append(out,
		Button{Kind: ButtonNext, Label: "▶", Target: min(pages, page+1), Disabled: last},
		Button{Kind: ButtonLast, Label: "Last", Target: pages, Disabled: last},
	)
}
