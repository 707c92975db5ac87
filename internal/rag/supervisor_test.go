package rag_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/adroit-club/assistant/internal/index"
	"github.com/adroit-club/assistant/internal/ingest"
	"github.com/adroit-club/assistant/internal/rag"
	"github.com/adroit-club/assistant/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func (f *ragFixture) pipeline(location string, docs ...index.Document) *ingest.Pipeline {
	return ingest.New(
		ingest.SourceFunc(func(context.Context) ([]index.Document, error) { return docs, nil }),
		f.embedder, location,
		ingest.WithLogger(testutil.DiscardLogger()))
}

func (f *ragFixture) supervisor(t *testing.T, handle *rag.Handle, global, resources *ingest.Pipeline) *rag.Supervisor {
	t.Helper()
	s, err := rag.NewSupervisor(rag.SupervisorConfig{
		Handle:    handle,
		Global:    global,
		Resources: resources,
		UserPipeline: func(userID string) *ingest.Pipeline {
			return f.pipeline(f.userIndexDir(userID),
				doc("User upload for "+userID, "upload"))
		},
		NewRouter: func() (*rag.Router, error) { return f.router(t), nil },
		Logger:    testutil.DiscardLogger(),
	})
	require.NoError(t, err)
	return s
}

func TestSupervisor_SwapsRouterAfterRebuild(t *testing.T) {
	f := newFixture(t)
	f.buildPartition(t, f.globalDir, doc("Old global content.", "global"))

	handle := rag.NewHandle(f.router(t))
	old := handle.Router()

	s := f.supervisor(t, handle,
		f.pipeline(f.globalDir, doc("New global content.", "global")),
		f.pipeline(f.resourcesDir, doc("New resource entry.", "resource")))

	s.ReindexAll(context.Background())
	s.Wait()

	fresh := handle.Router()
	require.NotSame(t, old, fresh)

	ret, err := fresh.Retrieve(context.Background(),
		"New global content.", rag.Identity{})
	require.NoError(t, err)
	require.NotEmpty(t, ret.Results)
	assert.Equal(t, "New global content.", ret.Results[0].Content)
}

func TestSupervisor_OldSnapshotSurvivesSwap(t *testing.T) {
	f := newFixture(t)
	f.buildPartition(t, f.globalDir, doc("Old global content.", "global"))

	handle := rag.NewHandle(f.router(t))
	old := handle.Router()

	s := f.supervisor(t, handle,
		f.pipeline(f.globalDir, doc("New global content.", "global")),
		nil)
	s.ReindexAll(context.Background())
	s.Wait()

	// A request that grabbed the old snapshot before the swap still
	// searches the old generation.
	ret, err := old.Retrieve(context.Background(),
		"Old global content.", rag.Identity{})
	require.NoError(t, err)
	require.NotEmpty(t, ret.Results)
	assert.Equal(t, "Old global content.", ret.Results[0].Content)
}

func TestSupervisor_FailedPipelineKeepsPartition(t *testing.T) {
	f := newFixture(t)
	f.buildPartition(t, f.globalDir, doc("Existing global content.", "global"))
	f.buildPartition(t, f.resourcesDir, doc("Existing resource.", "resource"))

	handle := rag.NewHandle(f.router(t))

	// The global rebuild finds nothing and fails; resources rebuilds fine.
	s := f.supervisor(t, handle,
		f.pipeline(f.globalDir),
		f.pipeline(f.resourcesDir, doc("Fresh resource.", "resource")))
	s.ReindexAll(context.Background())
	s.Wait()

	ret, err := handle.Router().Retrieve(context.Background(),
		"Existing global content.", rag.Identity{UserID: "alice", Approved: true})
	require.NoError(t, err)
	assert.Equal(t, rag.CombinedRAG, ret.Provenance)

	var contents []string
	for _, r := range ret.Results {
		contents = append(contents, r.Content)
	}
	assert.Contains(t, contents, "Existing global content.")
	assert.Contains(t, contents, "Fresh resource.")
}

func TestSupervisor_ReindexUser(t *testing.T) {
	f := newFixture(t)
	f.buildPartition(t, f.globalDir, doc("Public knowledge.", "global"))

	handle := rag.NewHandle(f.router(t))
	s := f.supervisor(t, handle, nil, nil)

	require.NoError(t, s.ReindexUser(context.Background(), "dave"))

	// The active router sees the new private partition without a swap.
	ret, err := handle.Router().Retrieve(context.Background(),
		"User upload for dave", rag.Identity{UserID: "dave"})
	require.NoError(t, err)
	assert.Equal(t, rag.UserRAG, ret.Provenance)
}
