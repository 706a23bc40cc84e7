package fixture_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/fnfixture/pkg/domain"
	"github.com/specvital/fnfixture/pkg/fixture"
)

const root = "fixtures"

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}

func emptyDir() *fstest.MapFile {
	return &fstest.MapFile{Mode: fs.ModeDir | 0o755}
}

func build(t *testing.T, fsys fstest.MapFS, opts ...fixture.Option) *domain.Suite {
	t.Helper()
	opts = append([]fixture.Option{fixture.WithName("parse"), fixture.WithFS(fsys), fixture.WithRootName("fixtures")}, opts...)
	suite, err := fixture.Build(root, opts...)
	require.NoError(t, err)
	require.NotNil(t, suite.Root)
	return suite
}

func childNames(n *domain.Node) []string {
	names := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return names
}

func TestBuild_LeavesAndGroups(t *testing.T) {
	suite := build(t, fstest.MapFS{
		"good/input.txt":           file("42"),
		"nested/bytes/input.bin":   file("\x00\x01"),
		"nested/source/input.yaml": file("a: 1"),
		"README.md":                file("ignored"),
	})

	rootNode := suite.Root
	assert.Equal(t, domain.KindGroup, rootNode.Kind)
	assert.Equal(t, []string{"good", "nested"}, childNames(rootNode))
	assert.Equal(t, 3, suite.CountCases())
	assert.Empty(t, suite.Diagnostics())

	good := rootNode.Children[0]
	require.Equal(t, domain.KindLeaf, good.Kind)
	assert.Equal(t, "good", good.Case.Name)
	assert.Empty(t, good.Case.Namespace)
	assert.Equal(t, domain.ArtifactText, good.Case.Input.Kind)
	assert.Equal(t, filepath.Join(root, "good", "input.txt"), good.Case.Input.Path)
	assert.Equal(t, filepath.Join(root, "good", "parse.txt"), good.Case.ExpectedPath)
	assert.Equal(t, filepath.Join(root, "good", "parse.actual.txt"), good.Case.ActualPath)

	content, err := good.Case.Load()
	require.NoError(t, err)
	assert.Equal(t, "42", string(content))

	nested := rootNode.Children[1]
	require.Equal(t, domain.KindGroup, nested.Kind)
	assert.Equal(t, []string{"bytes", "source"}, childNames(nested))

	bytesCase := nested.Children[0].Case
	require.NotNil(t, bytesCase)
	assert.Equal(t, domain.ArtifactBytes, bytesCase.Input.Kind)
	assert.Equal(t, []string{"nested"}, bytesCase.Namespace)
	assert.Equal(t, "nested/bytes", bytesCase.FullName())

	sourceCase := nested.Children[1].Case
	require.NotNil(t, sourceCase)
	assert.Equal(t, domain.ArtifactSource, sourceCase.Input.Kind)
	assert.Equal(t, "nested/source", sourceCase.FullName())
}

func TestBuild_InvalidShapesDoNotSuppressSiblings(t *testing.T) {
	suite := build(t, fstest.MapFS{
		"a_ok/input.txt":        file("1"),
		"b_two/input.txt":       file("1"),
		"b_two/input.bin":       file("1"),
		"c_mixed/input.txt":     file("1"),
		"c_mixed/sub/input.txt": file("1"),
		"d_empty":               emptyDir(),
		"e_only_other/notes.md": file("x"),
		"f_ok/input.yaml":       file("1"),
	})

	rootNode := suite.Root
	require.Len(t, rootNode.Children, 6, "sibling count in output must equal sibling count in input")

	kinds := make(map[string]domain.NodeKind)
	for _, c := range rootNode.Children {
		kinds[c.Name] = c.Kind
	}
	want := map[string]domain.NodeKind{
		"a_ok":         domain.KindLeaf,
		"b_two":        domain.KindInvalid,
		"c_mixed":      domain.KindInvalid,
		"d_empty":      domain.KindInvalid,
		"e_only_other": domain.KindInvalid,
		"f_ok":         domain.KindLeaf,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("node kinds mismatch (-want +got):\n%s", diff)
	}

	diags := suite.Diagnostics()
	require.Len(t, diags, 4)
	for _, d := range diags {
		assert.Contains(t, d.Message, "expected sub-directories or exactly one of input.yaml, input.bin, or input.txt")
		assert.NotEmpty(t, d.Path)
	}
	assert.Equal(t, 2, suite.CountCases())
}

func TestBuild_BaselinesAreIgnoredForClassification(t *testing.T) {
	tests := []struct {
		name  string
		files []string
	}{
		{name: "expected and actual", files: []string{"parse.txt", "parse.actual.txt"}},
		{name: "expected only", files: []string{"parse.txt"}},
		{name: "actual only", files: []string{"parse.actual.txt"}},
		{name: "unrelated text file", files: []string{"notes.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"sample/input.txt": file("42")}
			for _, name := range tt.files {
				fsys["sample/"+name] = file(name)
			}

			suite := build(t, fsys)

			require.Len(t, suite.Root.Children, 1)
			leaf := suite.Root.Children[0]
			assert.Equal(t, domain.KindLeaf, leaf.Kind)
			assert.Nil(t, leaf.Diagnostic)
			require.NotNil(t, leaf.Case)
			assert.Equal(t, "sample", leaf.Case.Name)
		})
	}
}

func TestBuild_EmptyRootIsInvalid(t *testing.T) {
	suite := build(t, fstest.MapFS{".": emptyDir()})

	assert.Equal(t, domain.KindInvalid, suite.Root.Kind)
	assert.Equal(t, 0, suite.CountCases())
	require.Len(t, suite.Diagnostics(), 1)
	assert.Equal(t, root, suite.Diagnostics()[0].Path)
}

func TestBuild_RootLeaf(t *testing.T) {
	suite := build(t, fstest.MapFS{"input.txt": file("single")}, fixture.WithRootName("single_value"))

	require.Equal(t, domain.KindLeaf, suite.Root.Kind)
	assert.Equal(t, "single_value", suite.Root.Case.Name)
	assert.Equal(t, filepath.Join(root, "parse.txt"), suite.Root.Case.ExpectedPath)
}

func TestBuild_NonIdentifierNames(t *testing.T) {
	suite := build(t, fstest.MapFS{
		"bad-name/input.txt":  file("1"),
		"func/input.txt":      file("1"),
		"good_name/input.txt": file("1"),
	})

	require.Len(t, suite.Root.Children, 3)
	assert.Equal(t, domain.KindInvalid, suite.Root.Children[0].Kind)
	assert.Contains(t, suite.Root.Children[0].Diagnostic.Message, "into an identifier")
	assert.Equal(t, domain.KindInvalid, suite.Root.Children[1].Kind, "keywords are not identifiers")
	assert.Equal(t, domain.KindLeaf, suite.Root.Children[2].Kind)
}

func TestBuild_DeterministicOrder(t *testing.T) {
	suite := build(t, fstest.MapFS{
		"b/input.txt":  file("1"),
		"a/input.txt":  file("1"),
		"_z/input.txt": file("1"),
		"B/input.txt":  file("1"),
	})

	assert.Equal(t, []string{"B", "_z", "a", "b"}, childNames(suite.Root))
}

func TestBuild_ExcludePatterns(t *testing.T) {
	suite := build(t, fstest.MapFS{
		"keep/input.txt":        file("1"),
		"skip/input.txt":        file("1"),
		"group/tmp/scratch.txt": file("1"),
		"group/real/input.bin":  file("1"),
	}, fixture.WithExclude("skip", "**/tmp"))

	assert.Equal(t, []string{"group", "keep"}, childNames(suite.Root))
	assert.Equal(t, []string{"real"}, childNames(suite.Root.Children[0]))
	assert.Empty(t, suite.Diagnostics())
}

func TestBuild_DeepNesting(t *testing.T) {
	suite := build(t, fstest.MapFS{
		"a/b/c/d/input.txt": file("1"),
		"a/b/bad":           emptyDir(),
		"a/x/input.txt":     file("1"),
	})

	cases := suite.Cases()
	require.Len(t, cases, 2)
	assert.Equal(t, "a/b/c/d", cases[0].FullName())
	assert.Equal(t, "a/x", cases[1].FullName())

	diags := suite.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, filepath.Join(root, "a", "b", "bad"), diags[0].Path)
}

func TestBuild_ConfigurationErrors(t *testing.T) {
	fsys := fstest.MapFS{"a/input.txt": file("1")}

	t.Run("should reject empty name", func(t *testing.T) {
		_, err := fixture.Build(root, fixture.WithFS(fsys))
		assert.ErrorIs(t, err, fixture.ErrInvalidName)
	})

	t.Run("should reject name colliding with input.txt", func(t *testing.T) {
		_, err := fixture.Build(root, fixture.WithFS(fsys), fixture.WithName("input"))
		assert.ErrorIs(t, err, fixture.ErrReservedName)
	})

	t.Run("should reject name with separators", func(t *testing.T) {
		_, err := fixture.Build(root, fixture.WithFS(fsys), fixture.WithName("a/b"))
		assert.ErrorIs(t, err, fixture.ErrInvalidName)
	})

	t.Run("should reject missing root", func(t *testing.T) {
		_, err := fixture.Build(filepath.Join(t.TempDir(), "missing"), fixture.WithName("parse"))
		assert.ErrorIs(t, err, fixture.ErrInvalidRoot)
	})

	t.Run("should reject file root", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		_, err := fixture.Build(path, fixture.WithName("parse"))
		assert.ErrorIs(t, err, fixture.ErrInvalidRoot)
	})
}

func TestBuild_OSFileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	for _, dir := range []string{"one", "group/two"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, dir), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, dir, "input.txt"), []byte(dir), 0o644))
	}

	suite, err := fixture.Build(tmpDir, fixture.WithName("parse"))
	require.NoError(t, err)

	cases := suite.Cases()
	require.Len(t, cases, 2)
	assert.Equal(t, "group/two", cases[0].FullName())
	assert.Equal(t, filepath.Join(tmpDir, "group", "two", "parse.txt"), cases[0].ExpectedPath)

	content, err := cases[1].Load()
	require.NoError(t, err)
	assert.Equal(t, "one", string(content))
}

func TestBuild_BrokenSymlinkInvalidatesParent(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "linked", "real"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "linked", "real", "input.txt"), []byte("1"), 0o644))
	if err := os.Symlink(filepath.Join(tmpDir, "nowhere"), filepath.Join(tmpDir, "linked", "broken")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "sibling"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "sibling", "input.txt"), []byte("1"), 0o644))

	suite, err := fixture.Build(tmpDir, fixture.WithName("parse"))
	require.NoError(t, err)

	require.Len(t, suite.Root.Children, 2)
	linked := suite.Root.Children[0]
	assert.Equal(t, domain.KindInvalid, linked.Kind)
	require.NotNil(t, linked.Diagnostic)
	assert.Error(t, linked.Diagnostic.Err)
	assert.Equal(t, domain.KindLeaf, suite.Root.Children[1].Kind)
}

func TestBuilder_Reusable(t *testing.T) {
	b := fixture.NewBuilder(fixture.WithName("parse"))

	first := t.TempDir()
	second := t.TempDir()
	for _, dir := range []string{first, second} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "x"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "x", "input.txt"), []byte("1"), 0o644))
	}

	s1, err := b.Build(first)
	require.NoError(t, err)
	s2, err := b.Build(second)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(first, "x", "parse.txt"), s1.Cases()[0].ExpectedPath)
	assert.Equal(t, filepath.Join(second, "x", "parse.txt"), s2.Cases()[0].ExpectedPath)
}
