package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/tuannm99/novaheap/internal/executor"
	"github.com/tuannm99/novaheap/internal/record"
)

func printResult(w io.Writer, res *executor.Result) {
	if res.AffectedRows > 0 || len(res.Columns) == 0 {
		fmt.Fprintf(w, "OK (%d affected)\n", res.AffectedRows)
		return
	}

	cols, rows := res.Columns, res.Rows
	cell := func(row []record.Value, i int) string {
		if i < len(row) && row[i] != nil {
			return row[i].String()
		}
		return "NULL"
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i := range cols {
			if s := cell(row, i); len(s) > widths[i] {
				widths[i] = len(s)
			}
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

	for _, row := range rows {
		out := make([]string, len(cols))
		for i := range cols {
			out[i] = cell(row, i)
		}
		printRow(out)
	}
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

func padRight(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
