package metrics

import (
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	assert := assert.New(t)

	c := NewCollector(&SimpleCounter{}, 2)
	c.Add("a/one.go", "This is a test.\nIt has two lines.")
	c.Add("a/two.go", "Another test item")
	c.Add("b.md", "Different type\n")
	c.Wait()
	c.Wait()

	files := c.Files()
	require.Len(t, files, 3)
	assert.Equal(2, files["a/one.go"].Lines)
	assert.Equal(1, files["b.md"].Lines)
	assert.Equal([]string{"a/one.go", "a/two.go", "b.md"}, c.Paths())

	total := c.Total()
	assert.Equal(len("This is a test.\nIt has two lines.")+len("Another test item")+len("Different type\n"), total.Bytes)
	assert.Equal(4, total.Lines)
	assert.Positive(total.Tokens)
}

func TestCollectorManyFiles(t *testing.T) {
	c := NewCollector(&SimpleCounter{}, 4)
	for i := 0; i < 100; i++ {
		c.Add(fmt.Sprintf("f%03d.txt", i), "abcdefgh")
	}
	c.Wait()
	assert.Equal(t, Item{Bytes: 800, Tokens: 200, Lines: 100}, c.Total())
}

// Wait right after Add, before any worker has been scheduled.
func TestCollectorWaitBeforeWorkersStart(t *testing.T) {
	defer runtime.GOMAXPROCS(runtime.GOMAXPROCS(1))

	for i := 0; i < 200; i++ {
		c := NewCollector(&SimpleCounter{}, 8)
		c.Add("a.txt", "hello")

		done := make(chan struct{})
		go func() {
			c.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("iteration %d: Wait did not return", i)
		}
		require.Equal(t, Item{Bytes: 5, Tokens: 1, Lines: 1}, c.Total(), "iteration %d", i)
	}

	empty := NewCollector(&SimpleCounter{}, 8)
	empty.Wait()
	assert.Empty(t, empty.Files())
}

func TestSimpleCounter(t *testing.T) {
	assert := assert.New(t)
	counter := &SimpleCounter{}

	bytes, tokens, lines := counter.Count("")
	assert.Equal(0, bytes)
	assert.Equal(0, tokens)
	assert.Equal(0, lines)

	text := "Hello, world!\nThis is a test."
	bytes, tokens, lines = counter.Count(text)
	assert.Equal(len(text), bytes)
	assert.Equal(2, lines)
	assert.Equal(len(text)/4, tokens)

	_, _, lines = counter.Count("one\ntwo\n")
	assert.Equal(2, lines)
}

func TestNewCounter(t *testing.T) {
	c, err := NewCounter("")
	require.NoError(t, err)
	assert.IsType(t, &SimpleCounter{}, c)

	_, err = NewCounter("words")
	assert.Error(t, err)
}
