package timefmt

import "time"

const displayLayout = "Mon, 02 Jan 2006 15:04"

// Formatter renders instants in the platform's display timezone.
type Formatter struct {
	loc *time.Location
}

// NewFormatter resolves the named timezone, falling back to UTC when the name
// is empty or unknown.
func NewFormatter(timezone string) *Formatter {
	if timezone == "" {
		return &Formatter{loc: time.UTC}
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return &Formatter{loc: time.UTC}
	}
	return &Formatter{loc: loc}
}

// Display converts the instant into the display timezone string.
func (f *Formatter) Display(t time.Time) string {
	return t.In(f.loc).Format(displayLayout)
}
