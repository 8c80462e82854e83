package chunker

import (
	"strings"
	"unicode"
)

// Unit is one extraction unit (typically a page) to be split independently.
// Chunks never span unit boundaries.
type Unit struct {
	Page int
	Text string
}

// Chunk is a retrieval unit. Index is contiguous and 0-based across the
// whole document, Offset is the rune offset of the chunk within its unit.
type Chunk struct {
	Index  int
	Page   int
	Offset int
	Text   string
}

// Split windows each unit into chunks of at most size runes with the given
// overlap, preferring to cut on whitespace. A single token longer than the
// window is emitted whole rather than split mid-token. Whitespace-only input
// produces no chunks.
func Split(units []Unit, size, overlap int) []Chunk {
	if size <= 0 {
		size = 1500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}

	var chunks []Chunk
	index := 0
	for _, unit := range units {
		for _, p := range splitUnit(unit.Text, size, overlap) {
			chunks = append(chunks, Chunk{
				Index:  index,
				Page:   unit.Page,
				Offset: p.offset,
				Text:   p.text,
			})
			index++
		}
	}
	return chunks
}

type piece struct {
	offset int
	text   string
}

func splitUnit(text string, size, overlap int) []piece {
	runes := []rune(text)
	var pieces []piece

	pos := 0
	for pos < len(runes) {
		for pos < len(runes) && unicode.IsSpace(runes[pos]) {
			pos++
		}
		if pos >= len(runes) {
			break
		}

		end := pos + size
		if end >= len(runes) {
			pieces = appendPiece(pieces, runes[pos:], pos)
			break
		}

		// Walk back to the nearest whitespace so words stay intact.
		cut := end
		for cut > pos && !unicode.IsSpace(runes[cut]) {
			cut--
		}

		atomic := false
		if cut == pos {
			// No break point inside the window: the token itself is larger
			// than the window. Extend to its end and emit it whole.
			cut = end
			for cut < len(runes) && !unicode.IsSpace(runes[cut]) {
				cut++
			}
			atomic = true
		}

		pieces = appendPiece(pieces, runes[pos:cut], pos)

		next := cut - overlap
		if atomic || next <= pos {
			next = cut
		}
		pos = next
	}

	return pieces
}

func appendPiece(pieces []piece, runes []rune, offset int) []piece {
	text := strings.TrimSpace(string(runes))
	if text == "" {
		return pieces
	}
	return append(pieces, piece{offset: offset, text: text})
}
