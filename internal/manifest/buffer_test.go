package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"a\n",
		"a\nb",
		"a\nb\n",
		"a\r\nb\r\n",
		"a\r\nb\nc",
		"\n\n",
		pyproject,
	}

	for _, in := range inputs {
		b := NewBuffer(in)
		assert.Equal(t, in, string(b.Bytes()), "input %q", in)
		assert.Equal(t, in, string(b.Original()), "input %q", in)
		assert.Empty(t, b.Modified())
	}
}

func TestBufferLinesStripTerminators(t *testing.T) {
	b := NewBuffer("[x]\r\na = \"1\"\r\n")

	assert.Equal(t, []string{"[x]", `a = "1"`}, b.Lines())
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, `a = "1"`, b.Line(1))
}

func TestBufferSetKeepsTerminators(t *testing.T) {
	b := NewBuffer("[x]\r\na = \"1\"\r\nb = \"2\"")

	require.NoError(t, b.Set(1, `a = "3"`))

	assert.Equal(t, "[x]\r\na = \"3\"\r\nb = \"2\"", string(b.Bytes()))
	assert.Equal(t, "[x]\r\na = \"1\"\r\nb = \"2\"", string(b.Original()))
	assert.Equal(t, []int{1}, b.Modified())
}

func TestBufferSetErrors(t *testing.T) {
	b := NewBuffer("a\nb\n")

	assert.ErrorIs(t, b.Set(-1, "x"), ErrLineOutOfRange)
	assert.ErrorIs(t, b.Set(2, "x"), ErrLineOutOfRange)
	assert.Error(t, b.Set(0, "x\ny"))
	assert.Empty(t, b.Modified())
}

func TestBufferSetSameTextIsNotModified(t *testing.T) {
	b := NewBuffer("a\nb\n")
	require.NoError(t, b.Set(0, "a"))
	assert.Empty(t, b.Modified())
}

func TestRewrite(t *testing.T) {
	b := NewBuffer(pyproject)
	candidates := poetryExtractor().Extract(b.Lines())

	err := Rewrite(b, candidates, map[int]string{6: `requests = "^2.32.3"`})
	require.NoError(t, err)

	want := strings.Replace(pyproject, `requests = "^2.31.0"`, `requests = "^2.32.3"`, 1)
	assert.Equal(t, want, string(b.Bytes()))
	assert.Equal(t, []int{6}, b.Modified())
}

func TestRewriteOutsideSection(t *testing.T) {
	b := NewBuffer(pyproject)
	candidates := poetryExtractor().Extract(b.Lines())

	// line 5 is python, line 12 belongs to the dev group
	for _, idx := range []int{5, 12} {
		err := Rewrite(b, candidates, map[int]string{6: `requests = "9"`, idx: "x = \"1\""})
		assert.ErrorIs(t, err, ErrOutsideSection)
	}
	assert.Empty(t, b.Modified(), "a rejected rewrite leaves the buffer untouched")
}

func TestWriteFileKeepsPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pyproject.toml")
	require.NoError(t, os.WriteFile(path, []byte("a = \"1\"\n"), 0600))

	b, err := ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, b.Set(0, `a = "2"`))
	require.NoError(t, b.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a = \"2\"\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBufferProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genText := gen.SliceOf(gen.OneConstOf("a", "b = \"1\"", "", "\r", "\n", "\r\n", "[x]")).
		Map(func(parts []string) string { return strings.Join(parts, "") })

	properties.Property("unchanged buffer reproduces its input", prop.ForAll(
		func(text string) bool {
			return string(NewBuffer(text).Bytes()) == text
		},
		genText,
	))

	properties.Property("setting one line changes only that line", prop.ForAll(
		func(text string, pick int) bool {
			b := NewBuffer(text)
			if b.Len() == 0 {
				return true
			}
			i := pick % b.Len()
			if err := b.Set(i, "changed"); err != nil {
				return false
			}

			after := NewBuffer(string(b.Bytes()))
			if after.Len() != b.Len() {
				return false
			}
			orig := NewBuffer(text)
			for j := 0; j < after.Len(); j++ {
				if j == i {
					continue
				}
				if after.Line(j) != orig.Line(j) {
					return false
				}
			}
			return after.Line(i) == "changed"
		},
		genText, gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
