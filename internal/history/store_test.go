package history

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/veriscope/veriscope/internal/detection"
	"github.com/veriscope/veriscope/internal/kv"
)

func videoResult(verdict detection.Verdict) *detection.Result {
	return &detection.Result{
		InputType:       detection.MediaVideo,
		FinalPrediction: verdict,
		Confidence:      87.3,
		FramePredictions: []detection.FramePrediction{
			{ID: 1, Prob: 0.91},
			{ID: 2, Prob: 0.84},
		},
		Heatmaps: []string{"data:image/jpeg;base64,/9j/4AAQ"},
	}
}

func TestSaveThenLoad(t *testing.T) {
	store := NewStore(kv.NewMemoryStore())
	session := detection.Session{
		ID:        "1700000000000",
		Name:      "clip.mp4",
		Type:      detection.MediaVideo,
		Status:    detection.VerdictFake,
		Timestamp: "Nov 14, 2023 22:13",
	}
	result := videoResult(detection.VerdictFake)

	require.NoError(t, store.SaveSession(session, result))

	sessions, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, session, sessions[0])

	loaded, ok, err := store.LoadResult(session.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, result, loaded)
}

func TestPrependOrdering(t *testing.T) {
	store := NewStore(kv.NewMemoryStore())
	first := detection.Session{ID: "1", Name: "a.png", Type: detection.MediaImage, Status: detection.VerdictReal}
	second := detection.Session{ID: "2", Name: "b.mp4", Type: detection.MediaVideo, Status: detection.VerdictFake}

	require.NoError(t, store.SaveSession(first, videoResult(detection.VerdictReal)))
	require.NoError(t, store.SaveSession(second, videoResult(detection.VerdictFake)))

	sessions, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, "2", sessions[0].ID)
	require.Equal(t, "1", sessions[1].ID)
}

func TestDeleteCascades(t *testing.T) {
	store := NewStore(kv.NewMemoryStore())
	keep := detection.Session{ID: "keep", Name: "keep.png", Type: detection.MediaImage, Status: detection.VerdictReal}
	gone := detection.Session{ID: "gone", Name: "gone.mp4", Type: detection.MediaVideo, Status: detection.VerdictFake}
	require.NoError(t, store.SaveSession(keep, videoResult(detection.VerdictReal)))
	require.NoError(t, store.SaveSession(gone, videoResult(detection.VerdictFake)))

	require.NoError(t, store.DeleteSession("gone"))

	sessions, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "keep", sessions[0].ID)

	_, ok, err := store.LoadResult("gone")
	require.NoError(t, err)
	require.False(t, ok, "deleted session's result must be gone")

	_, ok, err = store.LoadResult("keep")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	backend := kv.NewMemoryStore()
	store := NewStore(backend)
	session := detection.Session{ID: "only", Name: "only.png", Type: detection.MediaImage, Status: detection.VerdictReal}
	require.NoError(t, store.SaveSession(session, videoResult(detection.VerdictReal)))

	require.NoError(t, store.DeleteSession("never-existed"))

	sessions, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "only", sessions[0].ID)
}

func TestMalformedHistoryTreatedAsEmpty(t *testing.T) {
	backend := kv.NewMemoryStore()
	require.NoError(t, backend.Set("analysis_history", `[{"id": "trunc`))

	store := NewStore(backend)
	sessions, err := store.LoadAll()
	require.NoError(t, err, "malformed history must not surface an error")
	require.Empty(t, sessions)
}

func TestMalformedResultTreatedAsAbsent(t *testing.T) {
	backend := kv.NewMemoryStore()
	require.NoError(t, backend.Set("result_42", "not json"))

	store := NewStore(backend)
	_, ok, err := store.LoadResult("42")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoadResultAbsent(t *testing.T) {
	store := NewStore(kv.NewMemoryStore())
	_, ok, err := store.LoadResult("nope")
	require.NoError(t, err)
	require.False(t, ok)
}
