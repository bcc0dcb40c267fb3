package view

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/policyqa/internal/models"
)

func TestNewModel_InitialState(t *testing.T) {
	state := NewModel().Snapshot()
	assert.True(t, state.SubmitEnabled)
	assert.False(t, state.LoadingVisible)
	assert.False(t, state.ResponseVisible)
	assert.Empty(t, state.Sources)
}

func TestModel_Sources(t *testing.T) {
	model := NewModel()

	model.ShowSourcesPlaceholder(models.NoSourcesPlaceholder)
	assert.Equal(t, models.NoSourcesPlaceholder, model.Snapshot().SourcesPlaceholder)

	model.AppendSource(models.SourceBlock{Label: "Page 1", Content: "a"})
	model.AppendSource(models.SourceBlock{Label: "Page 2", Content: "b"})
	state := model.Snapshot()
	assert.Empty(t, state.SourcesPlaceholder)
	require.Len(t, state.Sources, 2)
	assert.Equal(t, "b", state.Sources[1].Content)

	model.ClearSources()
	state = model.Snapshot()
	assert.Empty(t, state.Sources)
	assert.Empty(t, state.SourcesPlaceholder)
}

func TestModel_SnapshotIsACopy(t *testing.T) {
	model := NewModel()
	model.AppendSource(models.SourceBlock{Label: "Page 1", Content: "a"})

	state := model.Snapshot()
	state.Sources[0].Content = "changed"

	assert.Equal(t, "a", model.Snapshot().Sources[0].Content)
}

func TestModel_Alert(t *testing.T) {
	model := NewModel()
	assert.Equal(t, "", model.TakeAlert())

	model.Alert("Please enter a question.")
	assert.Equal(t, "Please enter a question.", model.TakeAlert())
	assert.Equal(t, "", model.TakeAlert())
}

func TestModel_Listener(t *testing.T) {
	model := NewModel()

	var states []State
	model.SetListener(func(state State) {
		// Reading the model from the listener must not deadlock
		_ = model.QuestionText()
		states = append(states, state)
	})

	model.SetQuestionText("typing is not a render")
	model.Alert("alerts are not a render")
	model.SetLoadingVisible(true)
	model.SetAnswerText("answer")
	model.SetLoadingVisible(false)

	require.Len(t, states, 3)
	assert.True(t, states[0].LoadingVisible)
	assert.Equal(t, "answer", states[1].AnswerText)
	assert.False(t, states[2].LoadingVisible)

	model.SetListener(nil)
	model.SetSubmitEnabled(false)
	assert.Len(t, states, 3)
}

func TestModel_VersionOrdersDisplayChanges(t *testing.T) {
	model := NewModel()
	assert.Equal(t, uint64(0), model.Snapshot().Version)

	model.SetQuestionText("typing")
	model.Alert("notice")
	assert.Equal(t, uint64(0), model.Snapshot().Version)

	model.SetLoadingVisible(true)
	model.SetAnswerText("answer")
	model.SetLoadingVisible(false)
	assert.Equal(t, uint64(3), model.Snapshot().Version)
}

func TestModel_ConcurrentUpdates(t *testing.T) {
	model := NewModel()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			model.AppendSource(models.SourceBlock{Label: "Page 1"})
			_ = model.Snapshot()
		}()
	}
	wg.Wait()

	assert.Len(t, model.Snapshot().Sources, 20)
	assert.Equal(t, uint64(20), model.Snapshot().Version)
}
