package components

import (
	"testing"
	"time"

	"github.com/Veraticus/frontdesk/internal/testutil"
	tuitest "github.com/Veraticus/frontdesk/internal/tui/testing"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)

const testTimeout = 5 * time.Second

func clock() time.Time { return testNow }

func ownerSession(t *testing.T) *testutil.Session {
	t.Helper()
	return testutil.NewSession(t, testNow, testutil.OwnerIdentity())
}

// only runs cmd and returns the single message of type T it produced.
func only[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	var found []T
	for _, msg := range tuitest.Collect(cmd) {
		if m, ok := msg.(T); ok {
			found = append(found, m)
		}
	}
	require.Len(t, found, 1)
	return found[0]
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}
