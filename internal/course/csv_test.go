package course

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestParseBuffer_HeaderKeysPreservedVerbatim(t *testing.T) {
	buf := []byte("Unique ID, Title ,desc\nC1,Go, x\n")

	rows, err := ParseBuffer(context.Background(), buf)
	if err != nil {
		t.Fatalf("ParseBuffer() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}

	// Header cells keep their original casing and whitespace.
	if rows[0]["Unique ID"] != "C1" {
		t.Errorf("rows[0][%q] = %q, want %q", "Unique ID", rows[0]["Unique ID"], "C1")
	}
	if rows[0][" Title "] != "Go" {
		t.Errorf("rows[0][%q] = %q, want %q", " Title ", rows[0][" Title "], "Go")
	}
	if rows[0]["desc"] != " x" {
		t.Errorf("rows[0][%q] = %q, want %q", "desc", rows[0]["desc"], " x")
	}
}

func TestParseBuffer_RowsInFileOrder(t *testing.T) {
	buf := []byte("id\nfirst\nsecond\nthird\n")

	rows, err := ParseBuffer(context.Background(), buf)
	if err != nil {
		t.Fatalf("ParseBuffer() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(rows) != len(want) {
		t.Fatalf("len(rows) = %d, want %d", len(rows), len(want))
	}
	for i, w := range want {
		if rows[i]["id"] != w {
			t.Errorf("rows[%d][id] = %q, want %q", i, rows[i]["id"], w)
		}
	}
}

func TestParseBuffer_EmptyBuffer(t *testing.T) {
	rows, err := ParseBuffer(context.Background(), nil)
	if err != nil {
		t.Fatalf("ParseBuffer() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}
}

func TestParseBuffer_HeaderOnly(t *testing.T) {
	rows, err := ParseBuffer(context.Background(), []byte("a,b,c\n"))
	if err != nil {
		t.Fatalf("ParseBuffer() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}
}

func TestParseBuffer_ShortRowLeavesKeysAbsent(t *testing.T) {
	rows, err := ParseBuffer(context.Background(), []byte("a,b\n\"only one\"\n"))
	if err != nil {
		t.Fatalf("ParseBuffer() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if _, ok := rows[0]["b"]; ok {
		t.Error("short row produced a value for the missing column")
	}
}

func TestParseBuffer_MalformedQuoting(t *testing.T) {
	buf := []byte("a,b\n\"unterminated,2\n")

	_, err := ParseBuffer(context.Background(), buf)
	if !errors.Is(err, ErrParse) {
		t.Errorf("ParseBuffer() error = %v, want ErrParse", err)
	}
}

func TestParseBuffer_StripsBOM(t *testing.T) {
	buf := append([]byte{0xEF, 0xBB, 0xBF}, []byte("id,title\nC1,Go\n")...)

	rows, err := ParseBuffer(context.Background(), buf)
	if err != nil {
		t.Fatalf("ParseBuffer() error = %v", err)
	}
	if rows[0]["id"] != "C1" {
		t.Errorf("rows[0][id] = %q, want %q (BOM leaked into the first header)", rows[0]["id"], "C1")
	}
}

func TestParseBuffer_SanitizesInvalidUTF8(t *testing.T) {
	buf := []byte("id,title\nC1,bad\xffvalue\n")

	rows, err := ParseBuffer(context.Background(), buf)
	if err != nil {
		t.Fatalf("ParseBuffer() error = %v", err)
	}
	if got := rows[0]["title"]; got != "bad?value" {
		t.Errorf("rows[0][title] = %q, want %q", got, "bad?value")
	}
}

// Files larger than the internal read buffers must survive with
// multi-byte runes intact: chunk boundaries land mid-rune and the
// sanitizer has to carry the split sequence across reads.
func TestParseBuffer_LargeFileWithMultiByteRunes(t *testing.T) {
	var b strings.Builder
	b.WriteString("course_id,title\n")
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&b, "r%03d,课程世界\n", i)
	}
	buf := []byte(b.String())
	if len(buf) <= 4096 {
		t.Fatalf("fixture too small to span a read boundary: %d bytes", len(buf))
	}

	rows, err := ParseBuffer(context.Background(), buf)
	if err != nil {
		t.Fatalf("ParseBuffer() error = %v", err)
	}
	if len(rows) != 300 {
		t.Fatalf("len(rows) = %d, want 300", len(rows))
	}
	for i, row := range rows {
		if row["title"] != "课程世界" {
			t.Fatalf("rows[%d][title] = %q, want %q", i, row["title"], "课程世界")
		}
	}
}

// chunkReader caps each Read at n bytes so multi-byte runes can be
// forced to straddle read boundaries.
type chunkReader struct {
	r io.Reader
	n int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(p) > c.n {
		p = p[:c.n]
	}
	return c.r.Read(p)
}

func TestUTF8Sanitizer_RuneSplitAcrossReads(t *testing.T) {
	// 8-byte chunks cut the first three-byte rune after its second byte.
	src := &chunkReader{r: strings.NewReader("abcdef世界"), n: 8}

	got, err := io.ReadAll(newUTF8Sanitizer(src))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "abcdef世界" {
		t.Errorf("sanitized = %q, want %q", got, "abcdef世界")
	}
}

func TestUTF8Sanitizer_SmallDestinationBuffer(t *testing.T) {
	s := newUTF8Sanitizer(strings.NewReader("héllo, 世界"))

	var out []byte
	p := make([]byte, 2)
	for {
		n, err := s.Read(p)
		out = append(out, p[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	}
	if string(out) != "héllo, 世界" {
		t.Errorf("sanitized = %q, want %q", out, "héllo, 世界")
	}
}

func TestUTF8Sanitizer_TruncatedRuneAtEOF(t *testing.T) {
	got, err := io.ReadAll(newUTF8Sanitizer(strings.NewReader("ab\xe4\xb8")))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "ab??" {
		t.Errorf("sanitized = %q, want %q", got, "ab??")
	}
}

func TestParseBuffer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var b strings.Builder
	b.WriteString("id\n")
	for i := 0; i < 500; i++ {
		b.WriteString("row\n")
	}

	if _, err := ParseBuffer(ctx, []byte(b.String())); !errors.Is(err, context.Canceled) {
		t.Errorf("ParseBuffer() error = %v, want context.Canceled", err)
	}
}
