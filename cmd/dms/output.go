package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"text/tabwriter"

	"dms-go/internal/dms"
	"dms-go/internal/form"
)

// printError reports err the way a user can act on it.
func printError(err error) {
	var verrs form.ValidationErrors
	var apiErr *dms.APIError
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", fe.Field, fe.Message)
		}
	case errors.Is(err, dms.ErrInvalidCredentials):
		fmt.Fprintln(os.Stderr, "invalid username or password")
	case errors.Is(err, dms.ErrUnauthorized):
		fmt.Fprintln(os.Stderr, "session expired, please log in again")
	case errors.Is(err, dms.ErrLoginRequired):
		fmt.Fprintln(os.Stderr, "not logged in, run dms login")
	case errors.Is(err, form.ErrUnchanged):
		fmt.Fprintln(os.Stderr, "nothing to save")
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = "request failed"
		}
		fmt.Fprintf(os.Stderr, "server error %d: %s\n", apiErr.StatusCode, msg)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

// progressPrinter renders transfer progress on one stderr line.
func progressPrinter(label string) (dms.ProgressFunc, func()) {
	var mu sync.Mutex
	shown := false
	report := func(pct int) {
		mu.Lock()
		defer mu.Unlock()
		shown = true
		fmt.Fprintf(os.Stderr, "\r%s %3d%%", label, pct)
	}
	done := func() {
		mu.Lock()
		defer mu.Unlock()
		if shown {
			fmt.Fprintln(os.Stderr)
		}
	}
	return report, done
}
