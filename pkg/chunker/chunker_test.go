package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	chunks := Split([]Unit{{Page: 1, Text: "a small document"}}, 100, 20)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, "a small document", chunks[0].Text)
}

func TestSplitIndicesContiguousAcrossPages(t *testing.T) {
	long := strings.Repeat("lorem ipsum dolor sit amet ", 40)
	units := []Unit{
		{Page: 1, Text: long},
		{Page: 2, Text: long},
		{Page: 3, Text: "short tail"},
	}

	chunks := Split(units, 120, 20)

	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index, "indices must be contiguous and 0-based")
		assert.NotEmpty(t, strings.TrimSpace(c.Text))
	}
	assert.Equal(t, 3, chunks[len(chunks)-1].Page)
}

func TestSplitNoEmptyChunks(t *testing.T) {
	units := []Unit{
		{Page: 1, Text: "   \n\t  "},
		{Page: 2, Text: "actual content here"},
		{Page: 3, Text: ""},
	}

	chunks := Split(units, 50, 10)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 2, chunks[0].Page)
}

func TestSplitOverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta epsilon ", 30)
	chunks := Split([]Unit{{Page: 1, Text: text}}, 100, 30)

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prevEnd := chunks[i-1].Offset + len([]rune(chunks[i-1].Text))
		assert.Less(t, chunks[i].Offset, prevEnd, "chunk %d should overlap its predecessor", i)
	}
}

func TestSplitOversizedTokenEmittedWhole(t *testing.T) {
	token := strings.Repeat("x", 400)
	text := "before " + token + " after"

	chunks := Split([]Unit{{Page: 1, Text: text}}, 100, 20)

	var holders int
	for _, c := range chunks {
		if strings.Contains(c.Text, token) {
			holders++
			assert.Equal(t, token, c.Text, "the oversized token must be its own chunk")
		}
	}
	assert.Equal(t, 1, holders, "the oversized token must appear whole in exactly one chunk")
}

func TestSplitDegenerateOverlapStillTerminates(t *testing.T) {
	text := strings.Repeat("word ", 200)

	chunks := Split([]Unit{{Page: 1, Text: text}}, 50, 50)

	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestSplitWordsNotBrokenAtWindowEdge(t *testing.T) {
	text := strings.Repeat("boundary ", 50)
	chunks := Split([]Unit{{Page: 1, Text: text}}, 40, 8)

	for _, c := range chunks {
		for _, w := range strings.Fields(c.Text) {
			assert.Equal(t, "boundary", w)
		}
	}
}
