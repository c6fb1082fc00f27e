package heap

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"unicode"
)

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Fprintf(format string, a ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, a...)
}

func (e *errWriter) Fprintln(a ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintln(e.w, a...)
}

// ASCII preview: printable -> itself, else '.'
func asciiPreview(b []byte) string {
	var buf bytes.Buffer
	for _, c := range b {
		r := rune(c)
		if r < unicode.MaxASCII && unicode.IsPrint(r) {
			buf.WriteRune(r)
		} else {
			buf.WriteByte('.')
		}
	}
	return buf.String()
}

// Debug prints the header bitmap and every occupied slot, decoded and as hex.
func (p *HeapPage) Debug(w io.Writer) error {
	ew := &errWriter{w: w}

	ew.Fprintf("=== HeapPage %s ===\n", p.id)
	ew.Fprintf("schema=%s\n", p.schema)
	ew.Fprintf("slotWidth=%d numSlots=%d used=%d free=%d dirty=%v\n",
		p.schema.Size(), p.numSlots, p.numSlots-p.NumEmptySlots(), p.NumEmptySlots(), p.dirty)

	ew.Fprintln("\n-- Bitmap --")
	ew.Fprintf("%s\n", hex.EncodeToString(p.buf[:p.headerLen]))

	ew.Fprintln("\n-- Slots --")
	const maxPreview = 32
	used := 0
	for i := 0; i < p.numSlots && ew.err == nil; i++ {
		if !p.IsSlotUsed(i) {
			continue
		}
		used++
		raw := p.slotBytes(i)
		preview := raw
		if len(preview) > maxPreview {
			preview = preview[:maxPreview]
		}
		t, err := p.Tuple(i)
		if err != nil {
			ew.Fprintf("[%d] <decode error: %v>\n", i, err)
		} else {
			ew.Fprintf("[%d] %s\n", i, t)
		}
		ew.Fprintf("     hex=%s ascii=%q\n", hex.EncodeToString(preview), asciiPreview(preview))
	}
	if used == 0 {
		ew.Fprintln("(none)")
	}

	ew.Fprintln("=== End HeapPage ===")
	return ew.err
}

func (p *HeapPage) DebugString() string {
	var b bytes.Buffer
	if err := p.Debug(&b); err != nil {
		// best-effort: surface the error in the output so callers see it
		_, _ = b.WriteString("\n<debug write error: " + err.Error() + ">\n")
	}
	return b.String()
}
