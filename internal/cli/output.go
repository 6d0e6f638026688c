package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/garyjia/approvals-console/internal/domain/entity"
)

const (
	columnGap      = 2
	maxDescription = 48
	timeFormat     = "2006-01-02 15:04"
)

// writeJSON writes v as indented JSON
func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable writes rows aligned on display width, so wide runes in
// account names keep the columns straight
func writeTable(out io.Writer, headers []string, rows [][]string) error {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	line := func(cells []string) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i == len(widths)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]+columnGap))
		}
		b.WriteString("\n")
	}

	line(headers)
	for _, row := range rows {
		line(row)
	}

	_, err := io.WriteString(out, b.String())
	return err
}

func approvalRows(approvals []*entity.Approval) [][]string {
	rows := make([][]string, 0, len(approvals))
	for _, a := range approvals {
		rows = append(rows, []string{
			a.ID,
			a.Category.String(),
			a.Status.String(),
			a.Username,
			a.Timestamp.Format(timeFormat),
			runewidth.Truncate(a.Description, maxDescription, "..."),
		})
	}
	return rows
}

// writeDetail prints one approval as label/value lines followed by its
// extracted fields
func writeDetail(out io.Writer, a *entity.Approval) error {
	rows := [][]string{
		{"ID", a.ID},
		{"Category", a.Category.String()},
		{"Status", a.Status.String()},
		{"Account", a.Username},
		{"Description", a.Description},
		{"Requested On", a.Timestamp.Format(timeFormat)},
	}
	if a.SubscriptionNumber != "" {
		rows = append(rows, []string{"Subscription", a.SubscriptionNumber})
	}
	if a.Category == entity.CategorySuspend {
		rows = append(rows,
			[]string{"Suspension Policy", a.SuspensionPolicy},
			[]string{"Execution Date", formatDate(a.ExecutionDate)},
		)
	}
	if a.Status == entity.StatusRejected {
		rows = append(rows, []string{"Rejection Reason", a.RejectionReason})
	}
	for _, f := range a.ExtraFields {
		rows = append(rows, []string{f.Label, f.Value})
	}

	width := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r[0]); w > width {
			width = w
		}
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(out, "%s  %s\n", runewidth.FillRight(r[0]+":", width+1), r[1]); err != nil {
			return err
		}
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
