// Package segmenter splits raw legal text into bounded, overlapping chunks
// sized for embedding.
package segmenter

import (
	"strings"
	"unicode/utf8"

	"lawrag/internal/domain"
)

// Segment splits text into ordered chunks of at most chunkSize runes.
//
// Input is normalized into non-blank, space-trimmed paragraphs (one per
// line). Paragraphs are accumulated into a buffer that is flushed as a chunk
// whenever appending the next paragraph would exceed chunkSize. A paragraph
// longer than chunkSize flushes the buffer and is hard-split into windows of
// chunkSize runes at stride chunkSize-overlap.
//
// overlap only sets the hard-split stride; adjacent buffered chunks share no
// content. Lengths are counted in runes, not bytes, since the corpus is
// predominantly CJK.
//
// Deterministic and pure: the same input always yields the same chunks, in
// source order, none of them empty.
func Segment(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, domain.Configf("chunk_size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, domain.Configf("overlap must not be negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return nil, domain.Configf("overlap (%d) must be smaller than chunk_size (%d)", overlap, chunkSize)
	}

	var chunks []string
	var buf strings.Builder
	bufLen := 0

	flush := func() {
		if bufLen > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
			bufLen = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		para := strings.TrimSpace(line)
		if para == "" {
			continue
		}
		paraLen := utf8.RuneCountInString(para)

		if paraLen > chunkSize {
			flush()
			runes := []rune(para)
			stride := chunkSize - overlap
			for i := 0; i < len(runes); i += stride {
				end := i + chunkSize
				if end > len(runes) {
					end = len(runes)
				}
				chunks = append(chunks, string(runes[i:end]))
			}
			continue
		}

		need := paraLen
		if bufLen > 0 {
			need += bufLen + 1 // joining newline counts toward the budget
		}
		if need > chunkSize {
			flush()
			buf.WriteString(para)
			bufLen = paraLen
			continue
		}

		if bufLen > 0 {
			buf.WriteString("\n")
			bufLen++
		}
		buf.WriteString(para)
		bufLen += paraLen
	}
	flush()

	return chunks, nil
}
