package asm

// macro.go expands both macro flavors at the token-stream level, before parsing: a
// parametric macro (`%%name param...[:]` ... `%endmacro`, invoked `!name arg...`) stands
// in for one or more whole lines, while an inline macro (`%%-NAME: ...body...`,
// invoked `=NAME`) stands in for a single operand or short fragment mid-line. Both
// support a hygienic fresh-name token, `&ident`, which expands to a name unique to
// that one expansion so a macro that declares its own labels can be invoked more than
// once without colliding.

import "fmt"

const maxExpansionDepth = 64

type macroDef struct {
	name   string
	params []string
	body   []Token
}

type inlineDef struct {
	name string
	body []Token
}

// Expander expands both macro flavors across a token stream.
type Expander struct {
	macros  map[string]macroDef
	inlines map[string]inlineDef
	gensym  int
}

// NewExpander returns an empty Expander.
func NewExpander() *Expander {
	return &Expander{macros: map[string]macroDef{}, inlines: map[string]inlineDef{}}
}

// Expand consumes toks, collecting macro/inline definitions and substituting every
// invocation, and returns the fully expanded stream (with TokMacroDef/TokInlineDef
// definitions and their bodies removed).
func (e *Expander) Expand(toks []Token, errs *ErrorList) []Token {
	e.collectDefinitions(toks, errs)

	return e.expandCalls(e.stripDefinitions(toks), 0, errs)
}

// collectDefinitions records every macro and inline definition in toks. It runs before
// expansion so a macro may be invoked earlier in the file than it is defined, the
// usual assembler convention.
func (e *Expander) collectDefinitions(toks []Token, errs *ErrorList) {
	for i := 0; i < len(toks); i++ {
		switch toks[i].Kind {
		case TokMacroDef:
			def := macroDef{name: toks[i].Text}
			i++

			for i < len(toks) && toks[i].Kind == TokIdent {
				def.params = append(def.params, toks[i].Text)
				i++
			}

			if i < len(toks) && toks[i].Kind == TokColon {
				i++
			}

			for i < len(toks) && toks[i].Kind == TokNewline {
				i++
			}

			start := i
			for i < len(toks) && toks[i].Kind != TokEndMacro {
				i++
			}

			if i >= len(toks) {
				errs.Add(&MacroError{Info: toks[start].Info, Name: def.name, Msg: "missing %endmacro"})
				return
			}

			def.body = toks[start:i]
			e.macros[def.name] = def

		case TokInlineDef:
			def := inlineDef{name: toks[i].Text}
			i++

			if i < len(toks) && toks[i].Kind == TokColon {
				i++
			}

			start := i
			for i < len(toks) && toks[i].Kind != TokNewline {
				i++
			}

			def.body = toks[start:i]
			e.inlines[def.name] = def
		}
	}
}

// stripDefinitions removes every definition (header through body) from the stream,
// leaving only the lines that will actually assemble.
func (e *Expander) stripDefinitions(toks []Token) []Token {
	var out []Token

	for i := 0; i < len(toks); i++ {
		switch toks[i].Kind {
		case TokMacroDef:
			for i < len(toks) && toks[i].Kind != TokEndMacro {
				i++
			}
		case TokInlineDef:
			for i < len(toks) && toks[i].Kind != TokNewline {
				i++
			}
			out = append(out, toks[i])
		default:
			out = append(out, toks[i])
		}
	}

	return out
}

func (e *Expander) expandCalls(toks []Token, depth int, errs *ErrorList) []Token {
	if depth > maxExpansionDepth {
		if len(toks) > 0 {
			errs.Add(&MacroError{Info: toks[0].Info, Name: "", Msg: "macro expansion depth exceeded"})
		}

		return nil
	}

	var out []Token

	for i := 0; i < len(toks); i++ {
		tok := toks[i]

		switch tok.Kind {
		case TokMacroCall:
			def, ok := e.macros[tok.Text]
			if !ok {
				errs.Add(&MacroError{Info: tok.Info, Name: tok.Text, Msg: "undefined macro"})
				continue
			}

			var args []Token
			for i+1 < len(toks) && toks[i+1].Kind != TokNewline {
				i++
				if toks[i].Kind == TokComma {
					continue
				}
				args = append(args, toks[i])
			}

			if len(args) != len(def.params) {
				errs.Add(&MacroError{Info: tok.Info, Name: tok.Text, Msg: fmt.Sprintf("expected %d argument(s), got %d", len(def.params), len(args))})
				continue
			}

			bound := substitute(def.body, def.params, args, e.freshSuffix())
			out = append(out, e.expandCalls(bound, depth+1, errs)...)
			out = append(out, Token{Kind: TokNewline, Info: tok.Info})

		case TokInlineCall:
			def, ok := e.inlines[tok.Text]
			if !ok {
				errs.Add(&MacroError{Info: tok.Info, Name: tok.Text, Msg: "undefined inline macro"})
				continue
			}

			bound := substitute(def.body, nil, nil, e.freshSuffix())
			out = append(out, e.expandCalls(bound, depth+1, errs)...)

		default:
			out = append(out, tok)
		}
	}

	return out
}

func (e *Expander) freshSuffix() string {
	e.gensym++
	return fmt.Sprintf("$%d", e.gensym)
}

// substitute replaces each parameter name with its bound argument tokens, and rewrites
// every `&ident` hygienic reference to `ident` suffixed with this expansion's unique
// tag, throughout body.
func substitute(body []Token, params []string, args []Token, suffix string) []Token {
	argFor := make(map[string][]Token, len(params))
	for i, name := range params {
		argFor[name] = []Token{args[i]}
	}

	var out []Token

	for i := 0; i < len(body); i++ {
		tok := body[i]

		switch tok.Kind {
		case TokIdent:
			if bound, ok := argFor[tok.Text]; ok {
				out = append(out, bound...)
			} else {
				out = append(out, tok)
			}

		case TokAmp:
			// &name was lexed as a bare TokAmp followed by an ident; the ident is the
			// next token in the body.
			if i+1 < len(body) && body[i+1].Kind == TokIdent {
				i++
				out = append(out, Token{Kind: TokIdent, Text: body[i].Text + suffix, Info: tok.Info})
			}

		default:
			out = append(out, tok)
		}
	}

	return out
}
