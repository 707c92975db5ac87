package rag_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adroit-club/assistant/internal/index"
	"github.com/adroit-club/assistant/internal/rag"
)

func results(contents ...string) []index.Result {
	out := make([]index.Result, len(contents))
	for i, c := range contents {
		out[i] = index.Result{
			Chunk: index.Chunk{ID: fmt.Sprintf("c%d", i), Content: c},
		}
	}
	return out
}

func TestMerge_PrecedenceOrder(t *testing.T) {
	merged := rag.Merge([][]index.Result{
		results("first partition one", "first partition two"),
		results("second partition one"),
	}, 6)

	require.Len(t, merged, 3)
	assert.Equal(t, "first partition one", merged[0].Content)
	assert.Equal(t, "first partition two", merged[1].Content)
	assert.Equal(t, "second partition one", merged[2].Content)
}

func TestMerge_DeduplicatesByContentPrefix(t *testing.T) {
	shared := strings.Repeat("x", 50)
	merged := rag.Merge([][]index.Result{
		results(shared + " from global"),
		results(shared + " from resources"),
	}, 6)

	require.Len(t, merged, 1)
	// The earlier occurrence wins.
	assert.Equal(t, shared+" from global", merged[0].Content)
}

func TestMerge_ShortContentComparedWhole(t *testing.T) {
	merged := rag.Merge([][]index.Result{
		results("short"),
		results("short", "shorter"),
	}, 6)

	require.Len(t, merged, 2)
	assert.Equal(t, "short", merged[0].Content)
	assert.Equal(t, "shorter", merged[1].Content)
}

func TestMerge_Idempotent(t *testing.T) {
	list := results("alpha content", "beta content", "gamma content")

	once := rag.Merge([][]index.Result{list, list}, 6)
	twice := rag.Merge([][]index.Result{once, once}, 6)

	assert.Equal(t, list, once)
	assert.Equal(t, once, twice)
}

func TestMerge_CapInvariant(t *testing.T) {
	var lists [][]index.Result
	for i := 0; i < 4; i++ {
		lists = append(lists, results(
			fmt.Sprintf("partition %d chunk a", i),
			fmt.Sprintf("partition %d chunk b", i),
			fmt.Sprintf("partition %d chunk c", i),
		))
	}

	merged := rag.Merge(lists, 6)
	assert.Len(t, merged, 6)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	a := results("one", "two")
	b := results("one", "three")
	aCopy := append([]index.Result(nil), a...)
	bCopy := append([]index.Result(nil), b...)

	rag.Merge([][]index.Result{a, b}, 6)

	assert.Equal(t, aCopy, a)
	assert.Equal(t, bCopy, b)
}
