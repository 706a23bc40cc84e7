package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/fnfixture/pkg/domain"
	"github.com/specvital/fnfixture/pkg/fixture"
	"github.com/specvital/fnfixture/pkg/golden"
)

type rejected struct {
	Code int
}

func leafCase(t *testing.T, kind domain.ArtifactKind, content string) *domain.TestCase {
	t.Helper()

	dir := t.TempDir()
	input := filepath.Join(dir, "input")
	require.NoError(t, os.WriteFile(input, []byte(content), 0o644))

	return &domain.TestCase{
		ActualPath:   filepath.Join(dir, "fn.actual.txt"),
		ExpectedPath: filepath.Join(dir, "fn.txt"),
		Input:        domain.InputArtifact{Kind: kind, Path: input},
		Load: func() ([]byte, error) {
			return os.ReadFile(input)
		},
		Name: "leaf",
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestVerify(t *testing.T) {
	t.Run("should write actual on missing baseline", func(t *testing.T) {
		tc := leafCase(t, domain.ArtifactSource, "41")

		err := verify(func(n int) int { return n + 1 }, tc, &Options{})

		require.ErrorIs(t, err, golden.ErrNoBaseline)
		assert.Equal(t, "(int) 42\n", readFile(t, tc.ActualPath))
	})

	t.Run("should pass once the actual file is accepted", func(t *testing.T) {
		tc := leafCase(t, domain.ArtifactSource, "41")
		fn := func(n int) int { return n + 1 }

		require.Error(t, verify(fn, tc, &Options{}))
		require.NoError(t, golden.Promote(tc.ActualPath, tc.ExpectedPath))

		assert.NoError(t, verify(fn, tc, &Options{}))
	})

	t.Run("should record message panics", func(t *testing.T) {
		tc := leafCase(t, domain.ArtifactText, "boom")

		err := verify(func(s string) int { panic(s) }, tc, &Options{})

		require.ErrorIs(t, err, golden.ErrNoBaseline)
		want := golden.Render(golden.Panic{Kind: golden.StringPanic, Payload: "boom"})
		assert.Equal(t, want, readFile(t, tc.ActualPath))
	})

	t.Run("should record opaque panics", func(t *testing.T) {
		tc := leafCase(t, domain.ArtifactSource, "3")

		err := verify(func(n int) int { panic(rejected{Code: n}) }, tc, &Options{})

		require.ErrorIs(t, err, golden.ErrNoBaseline)
		actual := readFile(t, tc.ActualPath)
		assert.Contains(t, actual, golden.OpaquePanic)
		assert.Contains(t, actual, "Code: (int) 3")
	})

	t.Run("should render plaintext results", func(t *testing.T) {
		tc := leafCase(t, domain.ArtifactText, "abc")

		err := verify(func(s string) string { return s + s }, tc, &Options{Plaintext: true})

		require.ErrorIs(t, err, golden.ErrNoBaseline)
		assert.Equal(t, "abcabc", readFile(t, tc.ActualPath))
	})

	t.Run("should propagate panics in plaintext mode", func(t *testing.T) {
		tc := leafCase(t, domain.ArtifactText, "abc")

		assert.PanicsWithValue(t, "boom", func() {
			_ = verify(func(string) string { panic("boom") }, tc, &Options{Plaintext: true})
		})
		assert.NoFileExists(t, tc.ActualPath)
	})

	t.Run("should fail on mismatch", func(t *testing.T) {
		tc := leafCase(t, domain.ArtifactBytes, "xyz")
		require.NoError(t, os.WriteFile(tc.ExpectedPath, []byte("(int) 4\n"), 0o644))

		err := verify(func(b []byte) int { return len(b) }, tc, &Options{})

		var mismatch *golden.MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "(int) 3\n", mismatch.Actual)
	})

	t.Run("should report unreadable input", func(t *testing.T) {
		tc := leafCase(t, domain.ArtifactText, "x")
		tc.Load = func() ([]byte, error) { return nil, errors.New("gone") }

		err := verify(func(s string) string { return s }, tc, &Options{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "gone")
		assert.NoFileExists(t, tc.ActualPath)
	})

	t.Run("should fail on parameter type mismatch", func(t *testing.T) {
		tc := leafCase(t, domain.ArtifactText, "x")

		err := verify(func(n int) int { return n }, tc, &Options{})

		assert.ErrorIs(t, err, ErrInputType)
		assert.NoFileExists(t, tc.ActualPath)
	})
}

func TestDecode(t *testing.T) {
	t.Run("should decode yaml into structs", func(t *testing.T) {
		type config struct {
			Name  string   `yaml:"name"`
			Ports []int    `yaml:"ports"`
			Tags  []string `yaml:"tags"`
		}

		got, err := decode[config](domain.ArtifactSource, []byte("name: api\nports: [80, 443]\ntags:\n  - edge\n"))

		require.NoError(t, err)
		assert.Equal(t, config{Name: "api", Ports: []int{80, 443}, Tags: []string{"edge"}}, got)
	})

	t.Run("should decode json as yaml", func(t *testing.T) {
		got, err := decode[map[string]int](domain.ArtifactSource, []byte(`{"a": 1, "b": 2}`))

		require.NoError(t, err)
		assert.Equal(t, map[string]int{"a": 1, "b": 2}, got)
	})

	t.Run("should reject malformed yaml", func(t *testing.T) {
		_, err := decode[int](domain.ArtifactSource, []byte("[unterminated"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), domain.InputSource)
	})

	t.Run("should pass text to string kinds", func(t *testing.T) {
		type token string

		got, err := decode[token](domain.ArtifactText, []byte("abc\n"))
		require.NoError(t, err)
		assert.Equal(t, token("abc\n"), got)

		anyGot, err := decode[any](domain.ArtifactText, []byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, "abc", anyGot)
	})

	t.Run("should pass bytes to byte slices", func(t *testing.T) {
		type raw []byte

		got, err := decode[raw](domain.ArtifactBytes, []byte{0x00, 0xff})
		require.NoError(t, err)
		assert.Equal(t, raw{0x00, 0xff}, got)
	})

	t.Run("should reject incompatible parameters", func(t *testing.T) {
		_, err := decode[[]byte](domain.ArtifactText, []byte("abc"))
		assert.ErrorIs(t, err, ErrInputType)

		_, err = decode[string](domain.ArtifactBytes, []byte("abc"))
		assert.ErrorIs(t, err, ErrInputType)

		_, err = decode[[]int](domain.ArtifactBytes, []byte("abc"))
		assert.ErrorIs(t, err, ErrInputType)

		_, err = decode[string]("unknown", []byte("abc"))
		assert.ErrorIs(t, err, ErrInputType)
	})
}

type counter struct{}

func (counter) Count(n int) int { return n }

func identity[T any](v T) T { return v }

func TestFuncName(t *testing.T) {
	t.Run("should name package functions", func(t *testing.T) {
		got, err := FuncName(fixture.ValidateName)
		require.NoError(t, err)
		assert.Equal(t, "ValidateName", got)
	})

	t.Run("should name method values", func(t *testing.T) {
		got, err := FuncName(counter{}.Count)
		require.NoError(t, err)
		assert.Equal(t, "Count", got)
	})

	t.Run("should name generic instantiations", func(t *testing.T) {
		got, err := FuncName(identity[int])
		require.NoError(t, err)
		assert.Equal(t, "identity", got)
	})

	t.Run("should reject closures", func(t *testing.T) {
		_, err := FuncName(func(n int) int { return n })
		assert.ErrorIs(t, err, ErrAnonymousFunc)
	})

	t.Run("should reject non functions", func(t *testing.T) {
		_, err := FuncName(42)
		assert.Error(t, err)

		var fn func(int) int
		_, err = FuncName(fn)
		assert.Error(t, err)
	})
}

func TestSymbolName(t *testing.T) {
	tests := []struct {
		symbol  string
		want    string
		wantErr bool
	}{
		{symbol: "example.com/pkg.parse", want: "parse"},
		{symbol: "example.com/pkg.(*Parser).Parse-fm", want: "Parse"},
		{symbol: "example.com/pkg.Parser.Parse-fm", want: "Parse"},
		{symbol: "gopkg.in/yaml.v3.Unmarshal", want: "Unmarshal"},
		{symbol: "example.com/pkg.decode[...]", want: "decode"},
		{symbol: "example.com/pkg.TestParse.func1", wantErr: true},
		{symbol: "example.com/pkg.TestParse.func1.2", wantErr: true},
		{symbol: "example.com/pkg.glob..func1", wantErr: true},
		{symbol: "main", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			got, err := symbolName(tt.symbol)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrAnonymousFunc)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild(t *testing.T) {
	t.Run("should derive the baseline name from the function", func(t *testing.T) {
		suite, err := build("testdata/double", func(n int) int { return n }, &Options{Name: "double"})
		require.NoError(t, err)
		assert.Equal(t, "double", suite.Name)
		assert.Equal(t, 2, suite.CountCases())

		suite, err = build("testdata/length", identity[[]byte], &Options{})
		require.NoError(t, err)
		assert.Equal(t, "identity", suite.Name)
	})

	t.Run("should require a name for closures", func(t *testing.T) {
		_, err := build("testdata/double", func(n int) int { return n }, &Options{})
		assert.ErrorIs(t, err, ErrAnonymousFunc)
	})

	t.Run("should reject missing roots", func(t *testing.T) {
		_, err := build("testdata/missing", identity[int], &Options{})
		assert.ErrorIs(t, err, fixture.ErrInvalidRoot)
	})

	t.Run("should apply exclude patterns", func(t *testing.T) {
		suite, err := build("testdata/double", identity[int], &Options{Exclude: []string{"nested"}})
		require.NoError(t, err)
		assert.Equal(t, 1, suite.CountCases())
	})
}
