package segmenter

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"lawrag/internal/domain"
)

func TestSegmentBasic(t *testing.T) {
	text := "Article 1. First provision.\n\nArticle 2. Second provision.\n   \nArticle 3. Third provision."

	chunks, err := Segment(text, 500, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected all paragraphs in one chunk, got %d", len(chunks))
	}
	want := "Article 1. First provision.\nArticle 2. Second provision.\nArticle 3. Third provision."
	if chunks[0] != want {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestSegmentFlushesAtBudget(t *testing.T) {
	para := strings.Repeat("a", 40)
	text := strings.Join([]string{para, para, para}, "\n")

	chunks, err := Segment(text, 85, 10)
	if err != nil {
		t.Fatal(err)
	}
	// Two 40-rune paragraphs plus the joining newline fit in 85; the third
	// does not.
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != para+"\n"+para {
		t.Errorf("first chunk: %q", chunks[0])
	}
	if chunks[1] != para {
		t.Errorf("second chunk: %q", chunks[1])
	}
}

func TestSegmentOversizedParagraph(t *testing.T) {
	// 1200 runes in one paragraph, chunk_size=500, overlap=50:
	// hard-split windows start at 0, 450, 900.
	text := strings.Repeat("x", 1200)

	chunks, err := Segment(text, 500, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantLens := []int{500, 500, 300}
	for i, chunk := range chunks {
		if got := utf8.RuneCountInString(chunk); got != wantLens[i] {
			t.Errorf("chunk %d: expected %d runes, got %d", i, wantLens[i], got)
		}
	}
}

func TestSegmentOversizedParagraphFlushesBuffer(t *testing.T) {
	short := "short paragraph"
	long := strings.Repeat("y", 30)
	text := short + "\n" + long

	chunks, err := Segment(text, 20, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected buffer flush before hard split, got %d chunks", len(chunks))
	}
	if chunks[0] != short {
		t.Errorf("expected buffered chunk first, got %q", chunks[0])
	}
	// Hard-split windows of the long paragraph follow, stride 15.
	if chunks[1] != strings.Repeat("y", 20) {
		t.Errorf("unexpected first window: %q", chunks[1])
	}
}

func TestSegmentRuneCounting(t *testing.T) {
	// CJK runes are 3 bytes each; the budget must count runes, not bytes.
	para := strings.Repeat("法", 10)

	chunks, err := Segment(para, 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for a 10-rune paragraph at chunk_size 10, got %d", len(chunks))
	}
}

func TestSegmentProperties(t *testing.T) {
	texts := []string{
		"single line",
		strings.Repeat("long ", 300),
		"a\nb\nc\n" + strings.Repeat("z", 1700) + "\nd",
		"第一条 合同是民事主体之间设立、变更、终止民事法律关系的协议。\n第二条 " + strings.Repeat("法律", 400),
	}

	const chunkSize, overlap = 500, 50
	for _, text := range texts {
		chunks, err := Segment(text, chunkSize, overlap)
		if err != nil {
			t.Fatal(err)
		}
		for i, chunk := range chunks {
			if chunk == "" {
				t.Errorf("chunk %d is empty", i)
			}
			if n := utf8.RuneCountInString(chunk); n > chunkSize {
				t.Errorf("chunk %d has %d runes, budget %d", i, n, chunkSize)
			}
		}
	}
}

func TestSegmentPreservesContent(t *testing.T) {
	// Concatenating all chunks (ignoring separators) reproduces the original
	// non-blank paragraph content when no paragraph is hard-split.
	text := "alpha\nbeta\n\ngamma\ndelta"

	chunks, err := Segment(text, 12, 3)
	if err != nil {
		t.Fatal(err)
	}
	var got strings.Builder
	for _, chunk := range chunks {
		got.WriteString(strings.ReplaceAll(chunk, "\n", ""))
	}
	if got.String() != "alphabetagammadelta" {
		t.Errorf("content not preserved: %q", got.String())
	}
}

func TestSegmentDeterministic(t *testing.T) {
	text := "para one\n" + strings.Repeat("w", 1000) + "\npara two"
	first, err := Segment(text, 300, 30)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Segment(text, 300, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("non-deterministic chunk count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSegmentInvalidConfig(t *testing.T) {
	cases := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"overlap equals chunk size", 100, 100},
		{"overlap exceeds chunk size", 100, 150},
		{"zero chunk size", 0, 0},
		{"negative overlap", 100, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Segment("some text", tc.chunkSize, tc.overlap)
			if err == nil {
				t.Fatal("expected config error")
			}
			var cfgErr *domain.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigError, got %T", err)
			}
		})
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	for _, text := range []string{"", "\n\n\n", "   \n  \t \n"} {
		chunks, err := Segment(text, 500, 50)
		if err != nil {
			t.Fatal(err)
		}
		if len(chunks) != 0 {
			t.Errorf("expected no chunks for blank input %q, got %d", text, len(chunks))
		}
	}
}
