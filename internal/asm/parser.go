package asm

// parser.go turns a macro-expanded token stream into a Program: label definitions,
// instructions (operands parsed according to their opcode's shape) and data/bss
// directives, one source line at a time.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nicobert/rvm/internal/vm"
)

// Parser consumes a token stream for a single, already-merged and macro-expanded
// source unit and produces a Program.
type Parser struct {
	toks []Token
	pos  int
	errs *ErrorList

	section    Section
	entryLabel string

	// pendingLabel holds a label name seen on its own line until the next item that
	// actually occupies space (an instruction or data/bss directive) claims it. A
	// section-only directive (.text, .data, .entry, ...) leaves it untouched.
	pendingLabel string

	// pending queues extra items a single source line expands to beyond the one
	// returned from parseLine -- printstr's string-plus-instructions expansion is the
	// only user today.
	pending []Item

	printstrSeq int
}

// NewParser returns a Parser over toks, reporting diagnostics to errs.
func NewParser(toks []Token, errs *ErrorList) *Parser {
	return &Parser{toks: toks, errs: errs, section: SectionText}
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) atEOF() bool { return p.cur().Kind == TokEOF }

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}

	return t
}

func (p *Parser) skipNewlines() {
	for p.cur().Kind == TokNewline {
		p.advance()
	}
}

// Parse consumes the entire token stream and returns the resulting Program. Parse
// errors are collected in p.errs and do not stop the scan: the parser resynchronizes
// at the next newline so one bad line costs only that line's diagnostics.
func (p *Parser) Parse() *Program {
	prog := &Program{}

	for {
		p.skipNewlines()

		if p.atEOF() {
			prog.Entry = p.entryLabel
			return prog
		}

		item, ok := p.parseLine()
		if ok {
			item.Section = p.section
			prog.Items = append(prog.Items, item)
		}

		if len(p.pending) > 0 {
			prog.Items = append(prog.Items, p.pending...)
			p.pending = nil
		}

		p.syncToNewline()
	}
}

func (p *Parser) syncToNewline() {
	for p.cur().Kind != TokNewline && p.cur().Kind != TokEOF {
		p.advance()
	}
}

func (p *Parser) parseLine() (Item, bool) {
	tok := p.cur()

	if tok.Kind == TokDirective {
		return p.attachLabel(p.parseDirective())
	}

	if tok.Kind != TokIdent {
		p.errs.Add(&SyntaxError{Info: tok.Info, Msg: "expected a label, directive or mnemonic, found " + tok.Kind.String()})
		return Item{}, false
	}

	// label: ident followed immediately by ':'
	if p.toks[p.pos+1].Kind == TokColon {
		name := tok.Text
		p.advance()
		p.advance()

		// A label may be followed by its instruction on the same line.
		if p.cur().Kind == TokIdent {
			inst, ok := p.parseInstruction()
			if ok {
				return Item{Label: name, Instruction: inst}, true
			}

			return Item{}, false
		}

		// ...or by a directive on the same line, which claims it if it occupies space.
		if p.cur().Kind == TokDirective {
			p.pendingLabel = name
			return p.attachLabel(p.parseDirective())
		}

		// Otherwise the label stands alone on its own line; it binds to whatever
		// item the next line produces, however many directive-only lines away.
		p.pendingLabel = name

		return Item{}, false
	}

	inst, ok := p.parseInstruction()
	if !ok {
		return Item{}, false
	}

	return p.attachLabel(Item{Instruction: inst}, true)
}

// attachLabel claims any pending label for item, once item actually occupies space.
// A directive that changes section or state only (.text, .entry, ...) returns ok=false
// and must not consume the pending label -- it still needs a home.
func (p *Parser) attachLabel(item Item, ok bool) (Item, bool) {
	if ok && p.pendingLabel != "" {
		item.Label = p.pendingLabel
		p.pendingLabel = ""
	}

	return item, ok
}

func (p *Parser) parseDirective() (Item, bool) {
	tok := p.advance()

	switch tok.Text {
	case ".text":
		p.section = SectionText
		return Item{}, false
	case ".data":
		p.section = SectionData
		return Item{}, false
	case ".bss":
		p.section = SectionBss
		return Item{}, false
	case ".entry":
		name := p.advance()
		if name.Kind != TokIdent {
			p.errs.Add(&SyntaxError{Info: name.Info, Msg: ".entry requires a label name"})
			return Item{}, false
		}
		p.entryLabel = name.Text
		return Item{}, false
	case ".dn", ".ds", ".db", ".da", ".offsetfrom":
		return p.parseDataDirective(tok)
	case ".printstr":
		return p.parsePrintstr(tok)
	default:
		p.errs.Add(&SyntaxError{Info: tok.Info, Msg: "unknown directive " + tok.Text})
		return Item{}, false
	}
}

func (p *Parser) parseDataDirective(tok Token) (Item, bool) {
	switch tok.Text {
	case ".ds":
		s := p.advance()
		if s.Kind != TokString {
			p.errs.Add(&SyntaxError{Info: s.Info, Msg: ".ds requires a string literal"})
			return Item{}, false
		}

		return Item{Data: &DataItem{Size: vm.Size1, Bytes: append([]byte(s.Text), 0), Info: tok.Info}}, true

	case ".db":
		var bytes []byte

		for {
			n := p.advance()
			if n.Kind != TokNumber {
				p.errs.Add(&SyntaxError{Info: n.Info, Msg: ".db requires byte literals"})
				return Item{}, false
			}

			v, err := parseIntLiteral(n.Text)
			if err != nil {
				p.errs.Add(&LiteralRangeError{Info: n.Info, Size: 1, Raw: n.Text})
				return Item{}, false
			}

			bytes = append(bytes, byte(v))

			if p.cur().Kind != TokComma {
				break
			}
			p.advance()
		}

		return Item{Data: &DataItem{Size: vm.Size1, Bytes: bytes, Info: tok.Info}}, true

	case ".dn":
		size, ok := p.parseSize()
		if !ok {
			return Item{}, false
		}

		p.expectComma()

		n := p.advance()

		v, err := parseIntLiteral(n.Text)
		if err != nil {
			p.errs.Add(&LiteralRangeError{Info: n.Info, Size: int(size), Raw: n.Text})
			return Item{}, false
		}

		data := make([]byte, size)
		for i := range data {
			data[i] = byte(v >> (8 * uint(i)))
		}

		return Item{Data: &DataItem{Size: size, Bytes: data, Info: tok.Info}}, true

	case ".da":
		sym := p.advance()
		if sym.Kind != TokIdent {
			p.errs.Add(&SyntaxError{Info: sym.Info, Msg: ".da requires a label name"})
			return Item{}, false
		}

		return Item{Data: &DataItem{Size: vm.Size8, Symbol: sym.Text, Info: tok.Info}}, true

	case ".offsetfrom":
		sym := p.advance()
		if sym.Kind != TokIdent {
			p.errs.Add(&SyntaxError{Info: sym.Info, Msg: ".offsetfrom requires a label name"})
			return Item{}, false
		}

		return Item{Data: &DataItem{Size: vm.Size8, RelativeTo: sym.Text, Info: tok.Info}}, true
	}

	return Item{}, false
}

// parsePrintstr expands .printstr "text" into a NUL-terminated string literal parked in
// .data plus the three instructions that print it: load its address into print, select
// PRINT_STRING in int, and intr. Grounded on the hand-encoded mov print,r1 / movc
// int,PRINT_UNSIGNED / intr sequence package cmd's demo program builds by hand -- this
// directive just automates writing that sequence out for a literal string.
func (p *Parser) parsePrintstr(tok Token) (Item, bool) {
	s := p.advance()
	if s.Kind != TokString {
		p.errs.Add(&SyntaxError{Info: s.Info, Msg: ".printstr requires a string literal"})
		return Item{}, false
	}

	p.printstrSeq++
	label := fmt.Sprintf("__printstr_%d", p.printstrSeq)

	p.pending = append(p.pending,
		Item{
			Section: SectionData,
			Label:   label,
			Data:    &DataItem{Size: vm.Size1, Bytes: append([]byte(s.Text), 0), Info: tok.Info},
		},
		Item{
			Section: p.section,
			Instruction: &Instruction{
				Opcode: vm.MovRC,
				Operands: []Operand{
					{Kind: OperandSize, Size: vm.Size8, Info: tok.Info},
					{Kind: OperandRegister, Reg: vm.Print, Info: tok.Info},
					{Kind: OperandAddressOf, Symbol: label, Info: tok.Info},
				},
				Info: tok.Info,
			},
		},
		Item{
			Section: p.section,
			Instruction: &Instruction{
				Opcode: vm.MovRC,
				Operands: []Operand{
					{Kind: OperandSize, Size: vm.Size8, Info: tok.Info},
					{Kind: OperandRegister, Reg: vm.Int, Info: tok.Info},
					{Kind: OperandImmediate, Imm: vm.Word(vm.PrintString), Info: tok.Info},
				},
				Info: tok.Info,
			},
		},
		Item{Section: p.section, Instruction: &Instruction{Opcode: vm.Intr, Info: tok.Info}},
	)

	// The first printing instruction claims a label waiting from an earlier line.
	if p.pendingLabel != "" {
		p.pending[len(p.pending)-3].Label = p.pendingLabel
		p.pendingLabel = ""
	}

	return Item{}, false
}

func (p *Parser) parseSize() (vm.Size, bool) {
	tok := p.advance()
	if tok.Kind != TokNumber {
		p.errs.Add(&SyntaxError{Info: tok.Info, Msg: "expected a size (1, 2, 4 or 8)"})
		return 0, false
	}

	n, err := strconv.Atoi(tok.Text)
	if err != nil || !vm.Size(n).Valid() {
		p.errs.Add(&SyntaxError{Info: tok.Info, Msg: "invalid size " + tok.Text})
		return 0, false
	}

	return vm.Size(n), true
}

func (p *Parser) expectComma() {
	if p.cur().Kind == TokComma {
		p.advance()
	} else {
		p.errs.Add(&SyntaxError{Info: p.cur().Info, Msg: "expected ','"})
	}
}

func (p *Parser) parseInstruction() (*Instruction, bool) {
	mnemonicTok := p.advance()

	op, ok := vm.LookupOpcode(strings.ToLower(mnemonicTok.Text))
	if !ok {
		p.errs.Add(&SyntaxError{Info: mnemonicTok.Info, Msg: "unknown mnemonic " + mnemonicTok.Text})
		return nil, false
	}

	sh := opcodeShape[op]
	inst := &Instruction{Opcode: op, Info: mnemonicTok.Info}

	switch sh {
	case shapeNone:
		// no operands

	case shapeReg:
		reg, ok := p.parseRegisterOperand()
		if !ok {
			return nil, false
		}
		inst.Operands = []Operand{reg}

	case shapeRegReg:
		r1, ok := p.parseRegisterOperand()
		if !ok {
			return nil, false
		}
		p.expectComma()
		r2, ok := p.parseRegisterOperand()
		if !ok {
			return nil, false
		}
		inst.Operands = []Operand{r1, r2}

	case shapeSizedAddr:
		size, ok := p.parseSize()
		if !ok {
			return nil, false
		}
		p.expectComma()
		addr, ok := p.parseAddressOperand()
		if !ok {
			return nil, false
		}
		inst.Operands = []Operand{{Kind: OperandSize, Size: size, Info: mnemonicTok.Info}, addr}

	case shapeSizedConst:
		size, ok := p.parseSize()
		if !ok {
			return nil, false
		}
		p.expectComma()
		v, ok := p.parseValueOperand(size)
		if !ok {
			return nil, false
		}
		inst.Operands = []Operand{{Kind: OperandSize, Size: size, Info: mnemonicTok.Info}, v}

	case shapeAddr:
		addr, ok := p.parseAddressOperand()
		if !ok {
			return nil, false
		}
		inst.Operands = []Operand{addr}

	case shapeMove:
		size, ok := p.parseSize()
		if !ok {
			return nil, false
		}
		p.expectComma()

		dst, ok := p.parseMoveOperand(moveDstKind(op), size)
		if !ok {
			return nil, false
		}
		p.expectComma()

		src, ok := p.parseMoveOperand(moveSrcKind(op), size)
		if !ok {
			return nil, false
		}

		inst.Operands = []Operand{{Kind: OperandSize, Size: size, Info: mnemonicTok.Info}, dst, src}

	default:
		p.errs.Add(&SyntaxError{Info: mnemonicTok.Info, Msg: "internal: no shape for " + op.String()})
		return nil, false
	}

	return inst, true
}

func (p *Parser) parseMoveOperand(kind byte, size vm.Size) (Operand, bool) {
	switch kind {
	case 'R', 'I':
		return p.parseRegisterOperand()
	case 'A':
		return p.parseAddressOperand()
	case 'C':
		return p.parseValueOperand(size)
	default:
		p.errs.Add(&SyntaxError{Info: p.cur().Info, Msg: "internal: unknown move operand kind"})
		return Operand{}, false
	}
}

func (p *Parser) parseRegisterOperand() (Operand, bool) {
	tok := p.advance()
	if tok.Kind != TokIdent {
		p.errs.Add(&RegisterError{Info: tok.Info, Name: tok.Text})
		return Operand{}, false
	}

	reg, ok := vm.LookupRegister(strings.ToLower(tok.Text))
	if !ok {
		p.errs.Add(&RegisterError{Info: tok.Info, Name: tok.Text})
		return Operand{}, false
	}

	return Operand{Kind: OperandRegister, Reg: reg, Info: tok.Info}, true
}

// parseAddressOperand parses an address-valued operand: a bare label name (resolved to
// its address in the second pass) or a numeric literal naming an absolute address.
func (p *Parser) parseAddressOperand() (Operand, bool) {
	tok := p.advance()

	switch tok.Kind {
	case TokIdent:
		return Operand{Kind: OperandAddress, Symbol: tok.Text, Info: tok.Info}, true
	case TokNumber:
		v, err := parseIntLiteral(tok.Text)
		if err != nil {
			p.errs.Add(&LiteralRangeError{Info: tok.Info, Size: 8, Raw: tok.Text})
			return Operand{}, false
		}
		return Operand{Kind: OperandImmediate, Imm: v, Info: tok.Info}, true
	default:
		p.errs.Add(&SyntaxError{Info: tok.Info, Msg: "expected a label or address"})
		return Operand{}, false
	}
}

// parseValueOperand parses a constant-valued operand: a numeric literal, or $label
// (the label's address, taken as an immediate -- the address-of sigil).
func (p *Parser) parseValueOperand(size vm.Size) (Operand, bool) {
	tok := p.advance()

	switch tok.Kind {
	case TokNumber:
		v, err := parseIntLiteral(tok.Text)
		if err != nil {
			p.errs.Add(&LiteralRangeError{Info: tok.Info, Size: int(size), Raw: tok.Text})
			return Operand{}, false
		}
		return Operand{Kind: OperandImmediate, Imm: v, Info: tok.Info}, true

	case TokDollar:
		name := p.advance()
		if name.Kind != TokIdent {
			p.errs.Add(&SyntaxError{Info: name.Info, Msg: "expected a label after '$'"})
			return Operand{}, false
		}
		return Operand{Kind: OperandAddressOf, Symbol: name.Text, Info: name.Info}, true

	case TokChar:
		r := []rune(tok.Text)
		if len(r) != 1 {
			p.errs.Add(&SyntaxError{Info: tok.Info, Msg: "invalid char literal"})
			return Operand{}, false
		}
		return Operand{Kind: OperandImmediate, Imm: vm.Word(r[0]), Info: tok.Info}, true

	default:
		p.errs.Add(&SyntaxError{Info: tok.Info, Msg: "expected a number or $label"})
		return Operand{}, false
	}
}

// parseIntLiteral parses a decimal, 0x-hex or 0b-binary literal.
func parseIntLiteral(s string) (vm.Word, error) {
	s = strings.ReplaceAll(s, "_", "")

	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		iv, ierr := strconv.ParseInt(s, 0, 64)
		if ierr != nil {
			return 0, err
		}

		return vm.Word(iv), nil
	}

	return vm.Word(v), nil
}
