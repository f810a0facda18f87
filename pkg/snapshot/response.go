package snapshot

import (
	"fmt"
	"strings"
)

// Page is what the extension returned for one capture.
type Page struct {
	URL   string
	Title string
	// Snapshot is the accessibility tree text. When Structured is set the
	// extension sent something other than a string and Snapshot holds its
	// JSON text, which is passed through uncompressed.
	Snapshot   string
	Structured bool
}

const compressedNote = "💡 *This page was intelligently compressed to show the most relevant elements for your current task.*"

// TieredResponse renders the capture as the text block returned to the
// protocol client: status, page metadata, compression report and the
// compressed snapshot, plus a page summary for very large pages.
func TieredResponse(page Page, status string, cfg Config, opts Options) string {
	compressed, report := page.Snapshot, "No compression needed"
	var cls *Classified
	if !page.Structured {
		cls = Classify(page.Snapshot)
		c := Compress(page.Snapshot, cls, cfg, opts)
		compressed, report = c.Text(), c.Report
	}

	var b strings.Builder
	if status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n- Page URL: %s\n- Page Title: %s\n- Snapshot Mode: %s\n%s\n\n",
		page.URL, page.Title, strings.ToUpper(string(cfg.Mode)), report)
	b.WriteString("## Interactive Elements Snapshot\n```yaml\n")
	b.WriteString(compressed)
	b.WriteString("\n```")

	if cls != nil && charLen(page.Snapshot) > opts.SummaryThreshold {
		st := cls.Stats
		fmt.Fprintf(&b, "\n\n## Page Summary\n"+
			"- **Interactive Elements**: %d buttons, %d links, %d form inputs\n"+
			"- **Structure**: %d headings, %d navigation areas\n"+
			"- **Content**: %d content blocks\n"+
			"- **Optimization**: Showing most relevant elements for %s context\n\n%s",
			st.Buttons, st.Links, st.Inputs, st.Headings, st.Navigation, st.Content, cfg.Mode, compressedNote)
	}
	return b.String()
}
