package seeding

import (
	"fmt"
	"io"
	"net/http"

	"github.com/alanyoungcy/seedconditions/internal/domain"
)

// Console prints the human-readable seeding report: progress to out and one
// line per failure to errOut.
type Console struct {
	out    io.Writer
	errOut io.Writer
}

// NewConsole returns a Console writing to out and errOut.
func NewConsole(out, errOut io.Writer) *Console {
	return &Console{out: out, errOut: errOut}
}

func (c *Console) Seeding(description string) {
	fmt.Fprintf(c.out, "Seeding: %s\n", description)
}

func (c *Console) ConditionID(id string) {
	fmt.Fprintf(c.out, "  condition_id: %s\n", id)
}

func (c *Console) Keysets(keysets domain.Keysets, order []string) {
	fmt.Fprintf(c.out, "  keysets: %s\n", keysets.Format(order))
}

// Failed prints the stage, HTTP status and raw body of a failed step.
func (c *Console) Failed(f domain.MarketFailure) {
	if f.Status == 0 {
		fmt.Fprintf(c.errOut, "  Failed to build %s: %s\n", f.Stage, f.Reason)
		return
	}
	fmt.Fprintf(c.errOut, "  Failed to register %s (%d %s): %s\n", f.Stage, f.Status, http.StatusText(f.Status), f.Body)
}

func (c *Console) Aborted(err error) {
	fmt.Fprintf(c.errOut, "Seeding aborted: %v\n", err)
}

func (c *Console) Complete() {
	fmt.Fprintln(c.out, "Seeding complete.")
}
