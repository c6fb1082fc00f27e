package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tuannm99/novaheap/internal/executor"
	"github.com/tuannm99/novaheap/internal/record"
)

// parseColumns turns "name:type" specs into a schema. type is int, string
// or string(n).
func parseColumns(specs []string) (*record.Schema, error) {
	types := make([]record.FieldType, 0, len(specs))
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		name, typ, ok := strings.Cut(spec, ":")
		if !ok || name == "" || typ == "" {
			return nil, fmt.Errorf("column %q: want name:type", spec)
		}
		maxLen := 0
		if open := strings.IndexByte(typ, '('); open >= 0 {
			if !strings.HasSuffix(typ, ")") {
				return nil, fmt.Errorf("column %q: unbalanced length", spec)
			}
			n, err := strconv.Atoi(typ[open+1 : len(typ)-1])
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("column %q: bad length", spec)
			}
			typ, maxLen = typ[:open], n
		}
		ft, err := record.ParseFieldType(typ, maxLen)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", spec, err)
		}
		types = append(types, ft)
		names = append(names, name)
	}
	return record.NewSchema(types, names)
}

// parseWhere parses "<column> <op> <value>" against s. The value may be
// quoted with ' or ".
func parseWhere(s *record.Schema, expr string) (*executor.Predicate, error) {
	parts := strings.Fields(expr)
	if len(parts) < 3 {
		return nil, fmt.Errorf("where %q: want <column> <op> <value>", expr)
	}
	field, err := s.IndexOf(parts[0])
	if err != nil {
		return nil, err
	}
	op, err := record.ParseOp(parts[1])
	if err != nil {
		return nil, err
	}
	ft, err := s.FieldType(field)
	if err != nil {
		return nil, err
	}

	// keep the inner spacing of the value
	rest := strings.TrimSpace(expr)
	rest = strings.TrimSpace(strings.TrimPrefix(rest, parts[0]))
	rest = strings.TrimSpace(strings.TrimPrefix(rest, parts[1]))
	val, err := record.ParseValue(ft, unquote(rest))
	if err != nil {
		return nil, err
	}
	return executor.NewPredicate(field, op, val), nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// readCSV decodes every CSV record into a tuple of s.
func readCSV(r io.Reader, s *record.Schema, skipHeader bool) ([]*record.Tuple, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = s.NumFields()
	cr.TrimLeadingSpace = true

	var rows []*record.Tuple
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && skipHeader {
			continue
		}
		t := record.NewTuple(s)
		for i, raw := range rec {
			ft, _ := s.FieldType(i)
			v, err := record.ParseValue(ft, raw)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line, i+1, err)
			}
			if err := t.Set(i, v); err != nil {
				return nil, err
			}
		}
		rows = append(rows, t)
	}
}

// splitArgs splits a shell line on blanks, keeping quoted runs together.
func splitArgs(line string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		inArg bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
