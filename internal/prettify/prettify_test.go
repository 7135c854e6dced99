package prettify

import "testing"

func format(t *testing.T, cfg Config, input string) string {
	t.Helper()
	ctx := WithConfig([]byte(input), cfg)
	ctx.StepAll()
	return string(ctx.Output())
}

// A short bracketed group (under the single-line-paren limit) stays on
// one line: SingleLineParen mode streams bytes through as-is, so a
// group that was already compact passes through unchanged.
func TestShortGroupStaysOnOneLine(t *testing.T) {
	cfg := DefaultConfig()
	got := format(t, cfg, "(1,2,3)")
	want := "(1,2,3)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// A group whose contents exceed the limit expands onto indented lines.
func TestLongGroupExpandsAndIndents(t *testing.T) {
	cfg := Config{SingleLineParenLimit: 4, MaxLineWidth: 80, Indent: 2}
	got := format(t, cfg, "(1,2,3)")
	want := "(\n  1, 2, 3\n)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// Nested groups each get their own indent level.
func TestNestedGroupsIndentByDepth(t *testing.T) {
	cfg := Config{SingleLineParenLimit: 1, MaxLineWidth: 80, Indent: 2}
	got := format(t, cfg, "(a,(b,c))")
	want := "(\n  a, (\n    b, c\n  )\n)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// A line comment is passed through verbatim, including its terminating
// newline's indent.
func TestLineCommentPassesThroughVerbatim(t *testing.T) {
	cfg := DefaultConfig()
	got := format(t, cfg, "// hello\nx")
	want := "// hello\nx"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// A string literal's contents, including an escaped delimiter, pass
// through untouched.
func TestStringLiteralPassesThroughVerbatim(t *testing.T) {
	cfg := DefaultConfig()
	got := format(t, cfg, `"a, (b) \"c\""`)
	want := `"a, (b) \"c\""`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// A mismatched closing delimiter flips the machine into Corrupted, after
// which the rest of the input streams through unchanged.
func TestMismatchedDelimiterCorrupts(t *testing.T) {
	cfg := DefaultConfig()
	got := format(t, cfg, "(a]b)")
	want := "(a]b)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// A comma outside any bracket group is passed through without any
// line-wrapping logic applied.
func TestCommaOutsideGroupIsPlain(t *testing.T) {
	cfg := DefaultConfig()
	got := format(t, cfg, "a,b")
	want := "a,b"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// IgnoreQuote only gates quote-detection in plain Text state; a quote
// byte there either starts a String (consecutive interior whitespace
// preserved untouched) or, ignored, is just another character subject
// to the enclosing group's normal whitespace collapsing.
func TestIgnoreQuoteAffectsWhitespaceCollapseInsideGroup(t *testing.T) {
	base := Config{SingleLineParenLimit: 1, MaxLineWidth: 80, Indent: 4}

	respecting := base
	respecting.IgnoreQuote = false
	got := format(t, respecting, `("  ")`)
	want := "(\n    \"  \"\n)"
	if got != want {
		t.Fatalf("ignore_quote=false: got %q, want %q", got, want)
	}

	ignoring := base
	ignoring.IgnoreQuote = true
	got = format(t, ignoring, `("  ")`)
	want = "(\n    \" \"\n)"
	if got != want {
		t.Fatalf("ignore_quote=true: got %q, want %q", got, want)
	}
}
