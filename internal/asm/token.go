package asm

// token.go defines the token stream the lexer produces. Every token carries the
// SourceInfo it was read from, so a diagnostic raised anywhere downstream -- macro
// expansion, parsing, symbol resolution -- can still report an original file:line:col.

import "fmt"

// Kind classifies a Token.
type Kind int

const (
	TokEOF Kind = iota
	TokNewline
	TokIdent      // bare word: mnemonic, register name, label reference
	TokDirective  // .data .text .bss .include and friends
	TokNumber     // raw numeric literal text; the parser reads it as an unsigned integer
	TokString     // "quoted string", escapes already processed by the lexer
	TokChar       // 'c'
	TokColon      // label suffix: name ':'
	TokComma
	TokDollar     // $name: address-of a symbol
	TokAt         // '@' sigil; lexed, but the parser does not accept it
	TokAtAt       // '@@' sigil; lexed, but the parser does not accept it
	TokAmp        // &name: hygienic fresh-name reference inside a macro body
	TokMacroDef   // %%name: parametric macro definition header
	TokMacroCall  // !name: parametric macro invocation
	TokInlineDef  // %%-NAME: inline macro definition header
	TokInlineCall // =NAME: inline macro invocation
	TokEndMacro   // %endmacro
)

func (k Kind) String() string {
	switch k {
	case TokEOF:
		return "EOF"
	case TokNewline:
		return "newline"
	case TokIdent:
		return "ident"
	case TokDirective:
		return "directive"
	case TokNumber:
		return "number"
	case TokString:
		return "string"
	case TokChar:
		return "char"
	case TokColon:
		return "':'"
	case TokComma:
		return "','"
	case TokDollar:
		return "'$'"
	case TokAt:
		return "'@'"
	case TokAtAt:
		return "'@@'"
	case TokAmp:
		return "'&'"
	case TokMacroDef:
		return "'%%'"
	case TokMacroCall:
		return "'!'"
	case TokInlineDef:
		return "'%%-'"
	case TokInlineCall:
		return "'='"
	case TokEndMacro:
		return "%endmacro"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Token is one lexical unit together with the source position it came from.
type Token struct {
	Kind Kind
	Text string
	Info SourceInfo
}

func (t Token) String() string {
	return fmt.Sprintf("%s<%s>%q", t.Kind, t.Info, t.Text)
}
