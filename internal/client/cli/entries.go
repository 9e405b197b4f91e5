package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/dailyreflect/internal/common"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
)

var (
	errAmbiguousID = errors.New("id prefix matches more than one entry")
	errCancelled   = errors.New("cancelled")
)

// List prints every entry, newest first.
func (a *App) List(ctx context.Context) error {
	entries := a.reflections.Entries()
	if len(entries) == 0 {
		a.println("No reflections yet. Type 'add' to write one.")
		return nil
	}
	for _, e := range entries {
		a.println(formatSummary(e))
	}
	return nil
}

// Show prints one entry in full.
func (a *App) Show(ctx context.Context, id string) error {
	e, err := a.resolve(id)
	if err != nil {
		a.reportEntryError(err)
		return err
	}
	a.println(formatEntry(e))
	return nil
}

// Add asks for each field and stores a new entry.
func (a *App) Add(ctx context.Context) error {
	var d models.Draft
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Date (YYYY-MM-DD or e.g. 'yesterday', empty for today)", &d.Date},
		{"What are you grateful for?", &d.Gratitude},
		{"What did you achieve?", &d.Achievement},
		{"What could be improved?", &d.Improvement},
		{"Mood (great, good, okay, bad, awful, optional)", &d.Mood},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	d.Date = resolveDate(d.Date, a.now())

	if err := d.Validate(); err != nil {
		a.reportEntryError(err)
		return err
	}

	e, err := a.reflections.AddEntry(ctx, d)
	if err != nil {
		a.reportEntryError(err)
		return err
	}
	a.printf("Saved %s for %s\n", shortID(e.ID), e.Date)
	return nil
}

// Edit walks through the fields showing their current value. An empty
// answer keeps it.
func (a *App) Edit(ctx context.Context, id string) error {
	e, err := a.resolve(id)
	if err != nil {
		a.reportEntryError(err)
		return err
	}

	var p models.Patch
	fields := []struct {
		name    string
		current string
		dst     **string
	}{
		{"Date", e.Date, &p.Date},
		{"Gratitude", e.Gratitude, &p.Gratitude},
		{"Achievement", e.Achievement, &p.Achievement},
		{"Improvement", e.Improvement, &p.Improvement},
		{"Mood", string(e.Mood), &p.Mood},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", f.name, f.current), a.out)
		if err != nil {
			return err
		}
		if v == "" {
			continue
		}
		if f.dst == &p.Date {
			v = resolveDate(v, a.now())
		}
		if v != f.current {
			*f.dst = &v
		}
	}

	if p.IsEmpty() {
		a.println("Nothing changed.")
		return nil
	}

	updated, err := a.reflections.UpdateEntry(ctx, e.ID, p)
	if err != nil {
		a.reportEntryError(err)
		return err
	}
	a.printf("Updated %s\n", shortID(updated.ID))
	return nil
}

// Delete removes an entry after confirmation.
func (a *App) Delete(ctx context.Context, id string) error {
	e, err := a.resolve(id)
	if err != nil {
		a.reportEntryError(err)
		return err
	}

	ok, err := GetConfirmation(a.reader, fmt.Sprintf("Delete reflection for %s?", e.Date), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Kept.")
		return errCancelled
	}

	if err := a.reflections.DeleteEntry(ctx, e.ID); err != nil {
		a.reportEntryError(err)
		return err
	}
	a.printf("Deleted %s\n", shortID(e.ID))
	return nil
}

// resolve finds the entry whose id equals or starts with prefix.
func (a *App) resolve(prefix string) (models.Reflection, error) {
	if e, err := a.reflections.Get(prefix); err == nil {
		return e, nil
	}

	var found []models.Reflection
	for _, e := range a.reflections.Entries() {
		if strings.HasPrefix(e.ID, prefix) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return models.Reflection{}, fmt.Errorf("entry %s: %w", prefix, common.ErrorNotFound)
	case 1:
		return found[0], nil
	default:
		return models.Reflection{}, fmt.Errorf("%s: %w", prefix, errAmbiguousID)
	}
}

func (a *App) reportEntryError(err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		a.println("No such entry.")
	case errors.Is(err, errAmbiguousID):
		a.println("More than one entry matches, type more of the id.")
	case errors.Is(err, models.ErrMissingField), errors.Is(err, models.ErrInvalidDate):
		a.println("Invalid input:", err)
	default:
		a.println("Error:", err)
	}
}

// Calendar prints a month grid and the entries of that month. month is
// YYYY-MM; empty means the current month.
func (a *App) Calendar(ctx context.Context, month string) error {
	now := a.now()
	year, mon := now.Year(), now.Month()
	if month != "" {
		t, err := time.ParseInLocation("2006-01", month, time.Local)
		if err != nil {
			a.println("usage: calendar [YYYY-MM]")
			return err
		}
		year, mon = t.Year(), t.Month()
	}

	byDay := a.reflections.CalendarMonth(year, mon)
	a.println(formatMonth(year, mon, byDay))

	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)
	for _, d := range days {
		for _, e := range byDay[d] {
			a.println(formatSummary(e))
		}
	}
	return nil
}
