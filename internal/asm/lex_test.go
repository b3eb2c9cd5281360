package asm

import "testing"

func TestLexerTokens(tt *testing.T) {
	tt.Parallel()

	src := "mov r1, 2 ; comment\n.text\nloop: jmp loop\n"

	errs := &ErrorList{}
	toks := NewLexer("test.rvmasm", src).Tokens(errs)

	if errs.HasErrors() {
		tt.Fatalf("unexpected lex errors: %v", errs.Error())
	}

	want := []Kind{
		TokIdent, TokIdent, TokComma, TokNumber, TokNewline,
		TokDirective, TokNewline,
		TokIdent, TokColon, TokIdent, TokIdent, TokNewline,
		TokEOF,
	}

	if len(toks) != len(want) {
		tt.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}

	for i, k := range want {
		if toks[i].Kind != k {
			tt.Errorf("token %d: kind = %s, want %s (%q)", i, toks[i].Kind, k, toks[i].Text)
		}
	}
}

func TestLexerMacroSigils(tt *testing.T) {
	tt.Parallel()

	src := "%%double x\nmov r1, x\niadd r1, x\n%endmacro\n!double r2\n"

	errs := &ErrorList{}
	toks := NewLexer("test.rvmasm", src).Tokens(errs)

	if errs.HasErrors() {
		tt.Fatalf("unexpected lex errors: %v", errs.Error())
	}

	if toks[0].Kind != TokMacroDef || toks[0].Text != "double" {
		tt.Errorf("first token = %+v, want MacroDef(double)", toks[0])
	}

	var sawEndMacro, sawMacroCall bool

	for _, t := range toks {
		switch t.Kind {
		case TokEndMacro:
			sawEndMacro = true
		case TokMacroCall:
			sawMacroCall = true

			if t.Text != "double" {
				tt.Errorf("macro call name = %q, want %q", t.Text, "double")
			}
		}
	}

	if !sawEndMacro {
		tt.Error("missing TokEndMacro")
	}

	if !sawMacroCall {
		tt.Error("missing TokMacroCall")
	}
}

func TestLexerUnterminatedString(tt *testing.T) {
	tt.Parallel()

	errs := &ErrorList{}
	NewLexer("test.rvmasm", `.ds "unterminated`).Tokens(errs)

	if !errs.HasErrors() {
		tt.Error("expected a lex error for an unterminated string")
	}
}
