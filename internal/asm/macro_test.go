package asm

import "testing"

func expandSource(src string) ([]Token, *ErrorList) {
	errs := &ErrorList{}
	toks := NewLexer("test.rvmasm", src).Tokens(errs)

	return NewExpander().Expand(toks, errs), errs
}

func TestMacroParametricExpansion(tt *testing.T) {
	tt.Parallel()

	src := "%%double x\nmov 8, r1, x\niadd r1, x\n%endmacro\n!double r2\n"

	toks, errs := expandSource(src)
	if errs.HasErrors() {
		tt.Fatalf("unexpected errors: %v", errs.Error())
	}

	// The definition itself is stripped; only the bound-argument expansion remains, so
	// every occurrence of the parameter x is replaced with r2.
	for _, t := range toks {
		if t.Kind == TokMacroDef || t.Kind == TokEndMacro {
			tt.Errorf("definition token %v leaked into expanded output", t)
		}
	}

	var sawR2 int
	for _, t := range toks {
		if t.Kind == TokIdent && t.Text == "r2" {
			sawR2++
		}
	}

	if sawR2 != 2 {
		tt.Errorf("expected the bound argument r2 to appear twice, saw %d", sawR2)
	}
}

func TestMacroInlineExpansion(tt *testing.T) {
	tt.Parallel()

	src := "%%-DOUBLE 2\nmovc 8, r1, =DOUBLE\n"

	toks, errs := expandSource(src)
	if errs.HasErrors() {
		tt.Fatalf("unexpected errors: %v", errs.Error())
	}

	var sawTwo bool
	for _, t := range toks {
		if t.Kind == TokNumber && t.Text == "2" {
			sawTwo = true
		}
	}

	if !sawTwo {
		tt.Error("inline macro body did not appear in expanded output")
	}
}

func TestMacroHygienicLabel(tt *testing.T) {
	tt.Parallel()

	src := "%%loop3\n&top: iadd r1, r2\njmp &top\n%endmacro\n!loop3\n!loop3\n"

	toks, errs := expandSource(src)
	if errs.HasErrors() {
		tt.Fatalf("unexpected errors: %v", errs.Error())
	}

	seen := map[string]bool{}
	for _, t := range toks {
		if t.Kind == TokIdent && len(t.Text) > 3 && t.Text[:3] == "top" {
			seen[t.Text] = true
		}
	}

	if len(seen) != 2 {
		tt.Errorf("expected two distinct gensym'd label names, one per invocation, got %v", seen)
	}
}

func TestMacroUndefinedCall(tt *testing.T) {
	tt.Parallel()

	_, errs := expandSource("!nosuch r1\n")
	if !errs.HasErrors() {
		tt.Error("expected an undefined-macro error")
	}
}

func TestMacroWrongArgumentCount(tt *testing.T) {
	tt.Parallel()

	src := "%%pair a b\nmov 8, a, b\n%endmacro\n!pair r1\n"

	_, errs := expandSource(src)
	if !errs.HasErrors() {
		tt.Error("expected a wrong-argument-count error")
	}
}

// TestMacroArgumentMustBeSingleToken documents a known limitation: a macro argument
// that itself lexes as more than one token (here, $label) is split across the
// comma-delimited argument list rather than treated as one argument, so a call that
// looks like it passes one address-of argument is rejected as passing two.
func TestMacroArgumentMustBeSingleToken(tt *testing.T) {
	tt.Parallel()

	src := "%%store x\nmovc 8, r1, x\n%endmacro\ntarget:\n    exit\n!store $target\n"

	_, errs := expandSource(src)
	if !errs.HasErrors() {
		tt.Error("expected the multi-token $target argument to miscount against a one-parameter macro")
	}
}
