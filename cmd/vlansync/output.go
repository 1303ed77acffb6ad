package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/carlosrabelo/vlansync/internal/entities"
	"github.com/carlosrabelo/vlansync/internal/util"
)

// table writes column-aligned rows. The header and its dash divider are
// written on the first row, so an empty table prints nothing.
type table struct {
	w       *tabwriter.Writer
	headers []string
	written bool
}

func newTable(out io.Writer, headers ...string) *table {
	return &table{
		w:       tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
		headers: headers,
	}
}

func (t *table) row(values ...string) {
	if !t.written {
		t.written = true
		fmt.Fprintln(t.w, strings.Join(t.headers, "\t"))
		dividers := make([]string, len(t.headers))
		for i, h := range t.headers {
			dividers[i] = strings.Repeat("-", len(h))
		}
		fmt.Fprintln(t.w, strings.Join(dividers, "\t"))
	}
	fmt.Fprintln(t.w, strings.Join(values, "\t"))
}

func (t *table) flush() {
	if t.written {
		t.w.Flush()
	}
}

// printResult renders a SyncResult and returns errSyncFailed when it
// reports a failure
func printResult(out, errOut io.Writer, result entities.SyncResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		if util.RawOutputEnabled() && result.RawOutput != "" {
			fmt.Fprintln(out, strings.TrimRight(result.RawOutput, "\r\n"))
			fmt.Fprintln(out)
		}
		if result.Success {
			t := newTable(out, "VLAN", "NAME")
			for _, v := range result.VLANs {
				t.row(v.ID, v.Name)
			}
			t.flush()
			fmt.Fprintln(out, result.Message)
		} else {
			fmt.Fprintf(errOut, "Error: %s\n", result.Message)
		}
	}
	if !result.Success {
		return errSyncFailed
	}
	return nil
}
