package ui

import (
	"fmt"
	"io"

	"github.com/brogergvhs/featsnap/internal/util"
)

// Stats summarises one pipeline run.
type Stats struct {
	Categories int
	Scenarios  int
	YearModels int
	Bytes      int64
	Partial    bool
}

func (s Stats) Print(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Statistics:")
	if s.Partial {
		_, _ = fmt.Fprintf(w, "  - %d categories (data might be dynamically loaded)\n", s.Categories)
	} else {
		_, _ = fmt.Fprintf(w, "  - %d categories\n", s.Categories)
	}
	_, _ = fmt.Fprintf(w, "  - %d total features\n", s.Scenarios)
	_, _ = fmt.Fprintf(w, "  - %d car model/year combinations\n", s.YearModels)
	if s.Bytes > 0 {
		_, _ = fmt.Fprintf(w, "  - %s of markup\n", util.Human(s.Bytes))
	}
}
