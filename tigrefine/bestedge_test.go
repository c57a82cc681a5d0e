package tigrefine

import (
	"io/ioutil"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
)

func testWriteBestEdges(t *testing.T, dir, data string) string {
	f, err := ioutil.TempFile(dir, "best-edges")
	expect.NoError(t, err)
	_, err = f.Write([]byte(data))
	expect.NoError(t, err)
	expect.NoError(t, f.Close())
	return f.Name()
}

func TestLoadBestEdgesEmptyPath(t *testing.T) {
	g, err := LoadBestEdges("", 5)
	expect.NoError(t, err)
	expect.EQ(t, g.Best5(1), NoRead)
	expect.EQ(t, g.Best3(1), NoRead)
	expect.False(t, g.isContained(1))
}

func TestLoadBestEdges(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	data := "" +
		"1 1000 C---- - 0 0 2 5\n" +
		"2 1200 ----- M 1 3 3 5\n" +
		"3 900  ----S - 2 5 0 0\n"
	path := testWriteBestEdges(t, tempDir, data)

	g, err := LoadBestEdges(path, 3)
	expect.NoError(t, err)

	expect.True(t, g.isContained(1))
	expect.EQ(t, g.Best5(1), ReadID(0))
	expect.EQ(t, g.Best3(1), ReadID(2))

	expect.False(t, g.isContained(2))
	expect.EQ(t, g.Best5(2), ReadID(1))
	expect.EQ(t, g.Best3(2), ReadID(3))

	expect.True(t, g.IsSpur(3))
	expect.EQ(t, g.Best5(3), ReadID(2))
	expect.EQ(t, g.Best3(3), ReadID(0))
}

func TestLoadBestEdgesNoMarkerColumn(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	// No marker column at all on this line.
	data := "1 1000 ----- 2 5 3 5\n"
	path := testWriteBestEdges(t, tempDir, data)

	g, err := LoadBestEdges(path, 3)
	expect.NoError(t, err)
	expect.EQ(t, g.Best5(1), ReadID(2))
	expect.EQ(t, g.Best3(1), ReadID(3))
}

func TestLoadBestEdgesMissingFile(t *testing.T) {
	_, err := LoadBestEdges("/nonexistent/path/to/best.edges", 3)
	expect.NotNil(t, err)
}

func TestLoadBestEdgesMalformed(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	path := testWriteBestEdges(t, tempDir, "1 1000 BAD\n")
	_, err := LoadBestEdges(path, 3)
	expect.NotNil(t, err)
}

func TestBestEdgeGraphBubbleOrphanMarks(t *testing.T) {
	g := NewBestEdgeGraph(2)
	expect.False(t, g.IsBubble(1))
	expect.False(t, g.IsOrphan(1))

	g.setBubble(1)
	g.setOrphan(1)
	expect.True(t, g.IsBubble(1))
	expect.True(t, g.IsOrphan(1))
	expect.False(t, g.IsBubble(2))

	// Idempotent, monotone.
	g.setBubble(1)
	expect.True(t, g.IsBubble(1))
}
