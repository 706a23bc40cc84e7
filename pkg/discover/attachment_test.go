package discover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, source string) []Attachment {
	t.Helper()

	attachments, err := ParseFile(context.Background(), []byte(source), "pkg/parse_test.go", DefaultImportPath)
	require.NoError(t, err)
	return attachments
}

func TestParseFile(t *testing.T) {
	t.Run("should find attachments with the default import name", func(t *testing.T) {
		got := parse(t, `package parse

import (
	"testing"

	"github.com/specvital/fnfixture/pkg/snapshot"
)

func TestParse(t *testing.T) {
	snapshot.Run(t, "testdata/parse", parse)
}

func TestLex(t *testing.T) {
	t.Run("tokens", func(t *testing.T) {
		snapshot.Run(t, `+"`testdata/lex`"+`, lexer.Tokens, snapshot.Plaintext(), snapshot.Parallel())
	})
}
`)

		require.Len(t, got, 2)
		assert.Equal(t, Attachment{
			File: "pkg/parse_test.go",
			Func: "parse",
			Line: 10,
			Root: "testdata/parse",
			Test: "TestParse",
		}, got[0])
		assert.Equal(t, "testdata/lex", got[1].Root)
		assert.Equal(t, "lexer.Tokens", got[1].Func)
		assert.Equal(t, "TestLex", got[1].Test)
		assert.Equal(t, 15, got[1].Line)
		assert.True(t, got[1].Plaintext)
		assert.True(t, got[1].Parallel)
	})

	t.Run("should resolve aliased and dot imports", func(t *testing.T) {
		aliased := parse(t, `package parse

import snap "github.com/specvital/fnfixture/pkg/snapshot"

func TestParse(t *testing.T) {
	snap.Run(t, "testdata", parse, snap.Exclude("wip", "**/tmp"), snap.Name("parse"))
	snapshot.Run(t, "ignored", parse)
}
`)
		require.Len(t, aliased, 1)
		assert.Equal(t, []string{"wip", "**/tmp"}, aliased[0].Exclude)
		assert.Equal(t, "parse", aliased[0].Name)

		dotted := parse(t, `package parse

import . "github.com/specvital/fnfixture/pkg/snapshot"

func TestParse(t *testing.T) {
	Run(t, "testdata", parse, Plaintext())
}
`)
		require.Len(t, dotted, 1)
		assert.True(t, dotted[0].Plaintext)
	})

	t.Run("should ignore files without the driver import", func(t *testing.T) {
		got := parse(t, `package parse

import "example.com/other/snapshot"

func TestParse(t *testing.T) {
	snapshot.Run(t, "testdata", parse)
}
`)
		assert.Empty(t, got)
	})

	t.Run("should record unresolvable attachments", func(t *testing.T) {
		got := parse(t, `package parse

import "github.com/specvital/fnfixture/pkg/snapshot"

func TestParse(t *testing.T) {
	root := "testdata"
	snapshot.Run(t, root, parse)
	snapshot.Run(t, "testdata", func(s string) int { return len(s) })
	snapshot.Run(t, "testdata", func(s string) int { return len(s) }, snapshot.Name("length"))
}
`)
		require.Len(t, got, 3)
		assert.Contains(t, got[0].Problem, "not a string literal")
		assert.True(t, got[1].FuncLiteral)
		assert.Contains(t, got[1].Problem, "requires a Name option")
		assert.Empty(t, got[2].Problem)
		assert.Equal(t, "length", got[2].BaseName())
	})
}

func TestAttachment_BaseName(t *testing.T) {
	tests := []struct {
		name       string
		attachment Attachment
		want       string
	}{
		{name: "identifier", attachment: Attachment{Func: "parse"}, want: "parse"},
		{name: "selector", attachment: Attachment{Func: "lexer.Tokens"}, want: "Tokens"},
		{name: "generic instantiation", attachment: Attachment{Func: "decode[int]"}, want: "decode"},
		{name: "explicit name", attachment: Attachment{Func: "parse", Name: "custom"}, want: "custom"},
		{name: "function literal", attachment: Attachment{Func: "func(s string) int { return 0 }", FuncLiteral: true}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.attachment.BaseName())
		})
	}
}

func TestAttachment_RootPath(t *testing.T) {
	a := Attachment{File: "pkg/parse/parse_test.go", Root: "testdata/cases"}
	assert.Equal(t, "pkg/parse/testdata/cases", a.RootPath())

	a = Attachment{File: "parse_test.go", Root: "testdata"}
	assert.Equal(t, "testdata", a.RootPath())
}

func TestTrimQuotes(t *testing.T) {
	assert.Equal(t, "a\tb", trimQuotes(`"a\tb"`))
	assert.Equal(t, `a\tb`, trimQuotes("`a\\tb`"))
	assert.Equal(t, `bad \q`, trimQuotes(`"bad \q"`))
	assert.Equal(t, "bare", trimQuotes("bare"))
}
