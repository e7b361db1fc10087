package executors

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	uploadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	unmappedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
)

// Plan prints what Apply would do, grouped by account, without calling the
// uploader.
func (e *Executor) Plan(w io.Writer, report *Report) error {
	e.logger.Debug("processing plan report", "total", len(report.Items), "to_upload", report.UploadCount(), "unmapped", report.UnmappedCount())

	target := "upload"
	if e.uploader != nil {
		target = e.uploader.Name()
	}
	if _, err := fmt.Fprintln(w, headerStyle.Render("Dry run: "+target)); err != nil {
		return err
	}

	for _, g := range report.ByAccount() {
		style, prefix, dest := uploadStyle, "+", "asset "+g.AssetID
		if !g.Mapped() {
			style, prefix, dest = unmappedStyle, "-", "not mapped, skipped"
		}
		fmt.Fprintf(w, "\n%s -> %s (%d)\n", headerStyle.Render(g.Account), dest, len(g.Entries))
		for _, entry := range g.Entries {
			tx := entry.Transaction
			line := fmt.Sprintf("%s | %-40s | %12s", tx.DateString(), truncate(tx.Description(), 40), tx.Amount().StringFixed(2))
			fmt.Fprintln(w, style.Render(prefix+" "+line))
		}
	}

	summary := fmt.Sprintf("\nPlan: %d transaction(s) will be uploaded", report.UploadCount())
	if n := report.UnmappedCount(); n > 0 {
		summary += fmt.Sprintf(", %d skipped", n)
		fmt.Fprintln(w, summary)
		_, err := fmt.Fprintln(w, warnStyle.Render("Unmapped accounts: "+strings.Join(report.UnmappedAccounts(), ", ")))
		return err
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
