package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/tuannm99/sqllab/internal/engine"
	"github.com/tuannm99/sqllab/internal/record"
)

// statementComplete checks if we have a terminating ';' outside single quotes.
func statementComplete(buf string) bool {
	inQuote := false
	for _, r := range buf {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == ';' && !inQuote:
			return true
		}
	}
	return false
}

func isMetaCommand(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "\\") ||
		line == "quit" || line == "exit"
}

func printResult(w io.Writer, res *engine.Result) {
	if !res.Success {
		fmt.Fprintf(w, "error: %s\n", res.Error)
		return
	}
	if len(res.Fields) == 0 {
		fmt.Fprintln(w, "OK")
		return
	}
	printRows(w, res.Fields, res.Data)
}

// printRows renders rows as an aligned grid. Cells a row does not carry
// print as NULL.
func printRows(w io.Writer, cols []string, rows []record.Row) {
	cell := func(r record.Row, c string) string {
		if v, ok := r[c]; ok {
			return v.Text()
		}
		return "NULL"
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, c := range cols {
			widths[i] = max(widths[i], len(cell(row, c)))
		}
	}

	printRow := func(values []string) {
		for i := range cols {
			if i > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprint(w, padRight(values[i], widths[i]))
		}
		fmt.Fprintln(w)
	}

	printRow(cols)
	for i := range cols {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", widths[i]))
	}
	fmt.Fprintln(w)

	out := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			out[i] = cell(row, c)
		}
		printRow(out)
	}

	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

func printTables(w io.Writer, defs []record.TableDefinition) {
	if len(defs) == 0 {
		fmt.Fprintln(w, "no tables")
		return
	}
	for _, d := range defs {
		cols := make([]string, 0, len(d.Columns))
		for _, c := range d.Columns {
			s := c.Name + " " + c.Type
			if c.IsPrimary {
				s += " PK"
			}
			if !c.Nullable {
				s += " NOT NULL"
			}
			cols = append(cols, s)
		}
		fmt.Fprintf(w, "%s (%s)\n", d.Name, strings.Join(cols, ", "))
	}
}

func padRight(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
