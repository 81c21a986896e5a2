package main

import (
	"fmt"
	"io"

	"rollcall/internal/reconcile"
)

func printReport(w io.Writer, req reconcile.Request, out reconcile.Outcome, prefix, mention string) {
	r := out.Report

	fmt.Fprintf(w, "Run: %s\n", out.RunID)
	mode := string(out.Mode)
	if out.Tier != "" {
		mode += " (" + string(out.Tier) + ")"
	}
	fmt.Fprintf(w, "Mode: %s  Scope: %s\n", mode, req.Scope)
	fmt.Fprintf(w, "Target: %d  Present: %d  Missing: %d  Rate: %s\n",
		r.Total, r.PresentCount, r.MissingCount, r.PercentString())
	if out.Failure != nil {
		fmt.Fprintf(w, "Extraction failed: %v\n", out.Failure)
	}

	fmt.Fprintln(w)
	if r.MissingCount == 0 {
		fmt.Fprintln(w, "Everyone is present.")
	} else {
		printList(w, "Missing", r.Missing)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Notice:")
		fmt.Fprintln(w, r.Notice(prefix, mention))
	}
	fmt.Fprintln(w)
	printList(w, "Present", r.Present)
}

func printList(w io.Writer, title string, list []string) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(list))
	for _, name := range list {
		fmt.Fprintf(w, "  %s\n", name)
	}
}
