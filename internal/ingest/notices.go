package ingest

import (
	"fmt"
	"strings"
)

type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Notices summarizes a batch for the user. Rejections are reported once for
// the whole batch, never per file.
func (r Result) Notices() []Notice {
	var notices []Notice

	if len(r.Rejected) > 0 {
		notices = append(notices, Notice{
			Title:       "Invalid File Type",
			Description: fmt.Sprintf("The following files are not PDFs and were skipped: %s", strings.Join(r.Rejected, ", ")),
		})
	}

	if r.Total > 0 && len(r.Rejected) == r.Total {
		notices = append(notices, Notice{
			Title:       "No PDFs selected",
			Description: "Please select one or more PDF files.",
		})
	}

	if len(r.Failures) > 0 {
		names := make([]string, 0, len(r.Failures))
		for _, f := range r.Failures {
			names = append(names, f.Name)
		}
		notices = append(notices, Notice{
			Title:       "Upload Failed",
			Description: fmt.Sprintf("There was an error processing these files: %s", strings.Join(names, ", ")),
		})
	}

	return notices
}
