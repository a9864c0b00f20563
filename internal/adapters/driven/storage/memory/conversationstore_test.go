package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/core/domain"
)

func TestHistory_UnknownSessionIsEmpty(t *testing.T) {
	s := NewConversationStore()
	assert.Empty(t, s.History("nope"))
	assert.Equal(t, 0, s.Len("nope"))
}

func TestAppend_PreservesOrder(t *testing.T) {
	s := NewConversationStore()

	s.Append("sess",
		domain.Turn{Role: domain.RoleUser, Content: "first question"},
		domain.Turn{Role: domain.RoleAssistant, Content: "first answer"},
	)
	s.Append("sess",
		domain.Turn{Role: domain.RoleUser, Content: "second question"},
		domain.Turn{Role: domain.RoleAssistant, Content: "second answer"},
	)

	history := s.History("sess")
	require.Len(t, history, 4)
	assert.Equal(t, "first question", history[0].Content)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, "second answer", history[3].Content)
	assert.Equal(t, domain.RoleAssistant, history[3].Role)
}

func TestSessions_AreIsolated(t *testing.T) {
	s := NewConversationStore()

	s.Append("a", domain.Turn{Role: domain.RoleUser, Content: "for a"})
	s.Append("b", domain.Turn{Role: domain.RoleUser, Content: "for b"})

	require.Len(t, s.History("a"), 1)
	require.Len(t, s.History("b"), 1)
	assert.Equal(t, "for a", s.History("a")[0].Content)
	assert.Equal(t, "for b", s.History("b")[0].Content)
	assert.ElementsMatch(t, []string{"a", "b"}, s.Sessions())
}

func TestHistory_ReturnsCopy(t *testing.T) {
	s := NewConversationStore()
	s.Append("sess", domain.Turn{Role: domain.RoleUser, Content: "original"})

	history := s.History("sess")
	history[0].Content = "mutated"

	assert.Equal(t, "original", s.History("sess")[0].Content)
}

func TestAppend_NoTurnsIsNoop(t *testing.T) {
	s := NewConversationStore()
	s.Append("sess")
	assert.Equal(t, 0, s.Len("sess"))
}

func TestConcurrentAccess(t *testing.T) {
	s := NewConversationStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("sess-%d", i%3)
			for j := 0; j < 50; j++ {
				s.Append(id, domain.Turn{Role: domain.RoleUser, Content: "q"})
				s.History(id)
				s.Len(id)
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for _, id := range s.Sessions() {
		total += s.Len(id)
	}
	assert.Equal(t, 500, total)
}
