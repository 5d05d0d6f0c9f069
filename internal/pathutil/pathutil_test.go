package pathutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStandardize_Root verifies that the sync root standardizes to "/".
func TestStandardize_Root(t *testing.T) {
	root := filepath.Join("data", "assets")
	assert.Equal(t, "/", Standardize(root, root))
}

// TestStandardize_NestedFile verifies leading slash, forward slashes and no
// trailing slash for nested paths.
func TestStandardize_NestedFile(t *testing.T) {
	root := filepath.Join("data", "assets")
	abs := filepath.Join(root, "marketing", "logo.png")
	assert.Equal(t, "/marketing/logo.png", Standardize(root, abs))
}

// TestStandardize_DeepDirectory verifies directory standardization.
func TestStandardize_DeepDirectory(t *testing.T) {
	root := filepath.Join("srv", "dam")
	abs := filepath.Join(root, "a", "b", "c")
	assert.Equal(t, "/a/b/c", Standardize(root, abs))
}

// TestAbsolute_RoundTrip verifies Absolute inverts Standardize.
func TestAbsolute_RoundTrip(t *testing.T) {
	root := filepath.Join("data", "assets")
	abs := filepath.Join(root, "marketing", "logo.png")

	std := Standardize(root, abs)
	assert.Equal(t, abs, Absolute(root, std))
}

// TestAbsolute_Root verifies the standardized root maps back to root.
func TestAbsolute_Root(t *testing.T) {
	root := filepath.Join("data", "assets")
	assert.Equal(t, filepath.Clean(root), Absolute(root, "/"))
}

// TestJoin verifies segment joining produces a single standardized path.
func TestJoin(t *testing.T) {
	assert.Equal(t, "/a/b/c.png", Join("/a", "b", "c.png"))
	assert.Equal(t, "/a/b", Join("/a/", "/b"))
	assert.Equal(t, "/", Join())
	assert.Equal(t, "/x", Join("x"))
}

// TestParent verifies parent resolution including the root edge case.
func TestParent(t *testing.T) {
	assert.Equal(t, "/a/b", Parent("/a/b/c.png"))
	assert.Equal(t, "/", Parent("/a"))
	assert.Equal(t, "/", Parent("/"))
}

// TestBase verifies final segment extraction.
func TestBase(t *testing.T) {
	assert.Equal(t, "c.png", Base("/a/b/c.png"))
	assert.Equal(t, "a", Base("/a"))
	assert.Equal(t, "", Base("/"))
}

// TestEqual_CaseInsensitive verifies path comparison ignores case.
func TestEqual_CaseInsensitive(t *testing.T) {
	assert.True(t, Equal("/Marketing/Logo.PNG", "/marketing/logo.png"))
	assert.True(t, Equal("/", "/"))
	assert.False(t, Equal("/a/b", "/a/c"))
}
