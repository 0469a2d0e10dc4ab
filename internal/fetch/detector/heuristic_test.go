package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShouldPromote(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(0)

	t.Run("empty body promotes", func(t *testing.T) {
		require.True(t, h.ShouldPromote(nil))
	})

	t.Run("spa root marker promotes", func(t *testing.T) {
		require.True(t, h.ShouldPromote([]byte(`<html><body><div id="root"></div></body></html>`)))
		require.True(t, h.ShouldPromote([]byte(`<html><body><div data-reactroot></div></body></html>`)))
	})

	t.Run("short script-heavy body promotes", func(t *testing.T) {
		body := `<html><script>` + strings.Repeat("var x=1;", 40) + `</script><p>hi</p></html>`
		require.True(t, h.ShouldPromote([]byte(body)))
	})

	t.Run("ordinary content stays static", func(t *testing.T) {
		body := `<html><body>` + strings.Repeat("<p>Job listing content here.</p>", 20) + `</body></html>`
		require.False(t, h.ShouldPromote([]byte(body)))
	})

	t.Run("long body ignores script density", func(t *testing.T) {
		h := NewHeuristic(64)
		body := `<html><script>` + strings.Repeat("var x=1;", 40) + `</script></html>`
		require.False(t, h.ShouldPromote([]byte(body)))
	})
}
