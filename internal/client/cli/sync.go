package cli

import (
	"context"
	"fmt"
	"time"
)

// Sync runs a full reconciliation and prints the outcome.
func (a *App) Sync(ctx context.Context) error {
	if a.remoteName == "" {
		a.println("No remote store configured, entries are kept on this device only.")
		return nil
	}
	if !a.isLoggedIn() {
		a.println("Sign in first to sync.")
		return nil
	}

	if err := a.reflections.SyncNow(ctx); err != nil {
		a.println("Sync failed:", err)
		return err
	}
	a.printf("Synced with %s.\n", a.remoteName)
	return nil
}

// Status prints the sync state and a short summary of the journal.
func (a *App) Status(ctx context.Context) error {
	st := a.reflections.Status()
	entries := a.reflections.Entries()

	unsynced := 0
	for _, e := range entries {
		if !e.Synced {
			unsynced++
		}
	}

	remote := a.remoteName
	if remote == "" {
		remote = "none"
	}
	user := "not signed in"
	if u, ok := a.auth.CurrentUser(); ok {
		user = u.Email
	}

	a.printf("Remote:      %s (%s)\n", remote, a.Mode())
	a.printf("Account:     %s\n", user)
	a.printf("Entries:     %d (%d not synced)\n", len(entries), unsynced)
	a.printf("Last synced: %s\n", formatLastSynced(st.LastSynced))
	if st.Syncing {
		a.println("Sync in progress.")
	}
	if st.Error != "" {
		a.printf("Last error:  %s\n", st.Error)
	}
	return nil
}

func formatLastSynced(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return fmt.Sprintf("%s (%s ago)", t.Local().Format("2006-01-02 15:04:05"), time.Since(*t).Round(time.Second))
}
