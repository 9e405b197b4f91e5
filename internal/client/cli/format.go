package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dailyreflect/internal/models"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func syncMark(e models.Reflection) string {
	if e.Synced {
		return " "
	}
	return "*"
}

// formatSummary renders one list line: id, date, mood and the start of the
// gratitude text. Unsynced entries carry a star.
func formatSummary(e models.Reflection) string {
	mood := string(e.Mood)
	if mood == "" {
		mood = "-"
	}
	return fmt.Sprintf("%s %s %s %-6s %s", syncMark(e), shortID(e.ID), e.Date, mood, truncate(e.Gratitude, 40))
}

func formatEntry(e models.Reflection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:          %s\n", e.ID)
	fmt.Fprintf(&b, "Date:        %s\n", e.Date)
	if e.Mood != "" {
		fmt.Fprintf(&b, "Mood:        %s\n", e.Mood)
	}
	fmt.Fprintf(&b, "Gratitude:   %s\n", e.Gratitude)
	fmt.Fprintf(&b, "Achievement: %s\n", e.Achievement)
	fmt.Fprintf(&b, "Improvement: %s\n", e.Improvement)
	if e.Timestamp != nil {
		fmt.Fprintf(&b, "Written:     %s\n", e.Timestamp.Local().Format("2006-01-02 15:04"))
	}
	if e.Synced {
		b.WriteString("Synced:      yes")
	} else {
		b.WriteString("Synced:      no")
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// formatMonth renders a Monday-first month grid. Days with at least one
// entry are marked with a star.
func formatMonth(year int, month time.Month, marked map[int][]models.Reflection) string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	days := first.AddDate(0, 1, -1).Day()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", month, year)
	b.WriteString(" Mo  Tu  We  Th  Fr  Sa  Su\n")

	offset := (int(first.Weekday()) + 6) % 7
	b.WriteString(strings.Repeat("    ", offset))
	col := offset
	for d := 1; d <= days; d++ {
		mark := " "
		if len(marked[d]) > 0 {
			mark = "*"
		}
		fmt.Fprintf(&b, "%3d%s", d, mark)
		col++
		if col == 7 && d != days {
			b.WriteString("\n")
			col = 0
		}
	}
	lines := strings.Split(b.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}
