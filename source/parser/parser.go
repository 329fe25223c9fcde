package parser

// The line-oriented export format. Three growing arrays (names, levels,
// expressions) are populated by numbered lines whose indices must arrive
// densely and in order; declaration commands reference into the arrays and
// are emitted to the certifier as they appear. Notation commands only feed
// the pretty printer.

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/name"
	"github.com/quern-dev/quern/source/settings"
)

type Parser struct {
	env    *env.Env
	names  []*name.Name
	levels []*level.Level
	exprs  []expr.Expr
	line   int
}

func New(e *env.Env) *Parser {
	return &Parser{
		env:    e,
		names:  []*name.Name{name.Anon},
		levels: []*level.Level{level.Zero},
	}
}

// Parse consumes the whole stream, calling emit for each declaration command
// in order. A non-nil error from emit stops the parse and is returned as is.
func (p *Parser) Parse(r io.Reader, emit func(env.Item) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		p.line++
		fields := splitFields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		item, err := p.parseLine(fields)
		if err != nil {
			return fmt.Errorf("line %d: %w", p.line, err)
		}
		if item != nil {
			if settings.SHOW_PARSER {
				fmt.Println("line", p.line, "emits", item.ItemName().String())
			}
			if err := emit(item); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("line %d: %w", p.line, err)
	}
	return nil
}

func splitFields(s string) []string {
	var out []string
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\r') {
			i++
		}
		j := i
		for j < len(s) && s[j] != ' ' && s[j] != '\t' && s[j] != '\r' {
			j++
		}
		if j > i {
			out = append(out, s[i:j])
		}
		i = j
	}
	return out
}

func (p *Parser) parseLine(fields []string) (env.Item, error) {
	switch fields[0] {
	case "#AX":
		return p.parseAxiom(fields[1:])
	case "#DEF":
		return p.parseDef(fields[1:])
	case "#IND":
		return p.parseInd(fields[1:])
	case "#QUOT":
		return &env.QuotItem{}, nil
	case "#PREFIX", "#INFIX", "#POSTFIX":
		return nil, p.parseNotation(fields)
	default:
		return nil, p.parseIndexed(fields)
	}
}

func (p *Parser) parseAxiom(args []string) (env.Item, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("#AX needs a name and a type")
	}
	nm, err := p.getName(args[0])
	if err != nil {
		return nil, err
	}
	ty, err := p.getExpr(args[1])
	if err != nil {
		return nil, err
	}
	params, err := p.getParamLevels(args[2:])
	if err != nil {
		return nil, err
	}
	return &env.AxiomItem{Nm: nm, Params: params, Ty: ty}, nil
}

func (p *Parser) parseDef(args []string) (env.Item, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("#DEF needs a name, a type and a value")
	}
	nm, err := p.getName(args[0])
	if err != nil {
		return nil, err
	}
	ty, err := p.getExpr(args[1])
	if err != nil {
		return nil, err
	}
	val, err := p.getExpr(args[2])
	if err != nil {
		return nil, err
	}
	params, err := p.getParamLevels(args[3:])
	if err != nil {
		return nil, err
	}
	return &env.DefItem{Nm: nm, Params: params, Ty: ty, Value: val}, nil
}

func (p *Parser) parseInd(args []string) (env.Item, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("#IND needs a parameter count, a name, a type and an intro count")
	}
	numParams, err := strconv.Atoi(args[0])
	if err != nil || numParams < 0 {
		return nil, fmt.Errorf("bad parameter count %q", args[0])
	}
	nm, err := p.getName(args[1])
	if err != nil {
		return nil, err
	}
	ty, err := p.getExpr(args[2])
	if err != nil {
		return nil, err
	}
	numIntros, err := strconv.Atoi(args[3])
	if err != nil || numIntros < 0 {
		return nil, fmt.Errorf("bad intro count %q", args[3])
	}
	rest := args[4:]
	if len(rest) < 2*numIntros {
		return nil, fmt.Errorf("#IND announces %d intro(s) but lists fewer", numIntros)
	}
	intros := make([]env.Intro, numIntros)
	for i := 0; i < numIntros; i++ {
		inm, err := p.getName(rest[2*i])
		if err != nil {
			return nil, err
		}
		ity, err := p.getExpr(rest[2*i+1])
		if err != nil {
			return nil, err
		}
		intros[i] = env.Intro{Nm: inm, Ty: ity}
	}
	params, err := p.getParamLevels(rest[2*numIntros:])
	if err != nil {
		return nil, err
	}
	return &env.IndItem{Nm: nm, Params: params, Ty: ty, NumParams: numParams, Intros: intros}, nil
}

func (p *Parser) parseNotation(fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("%s needs a name, a priority and a symbol", fields[0])
	}
	nm, err := p.getName(fields[1])
	if err != nil {
		return err
	}
	prio, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Errorf("bad priority %q", fields[2])
	}
	kind := env.PREFIX
	switch fields[0] {
	case "#INFIX":
		kind = env.INFIX
	case "#POSTFIX":
		kind = env.POSTFIX
	}
	p.env.AddNotation(nm, env.Notation{Kind: kind, Priority: prio, Symbol: fields[3]})
	return nil
}

// parseIndexed handles '<idx> #N./#U./#E. ...' lines, which must arrive with
// strictly increasing dense indices.
func (p *Parser) parseIndexed(fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("unrecognized line")
	}
	idx, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("unrecognized command %q", fields[0])
	}
	cmd, args := fields[1], fields[2:]
	switch cmd {
	case "#NS", "#NI":
		return p.parseName(idx, cmd, args)
	case "#US", "#UM", "#UIM", "#UP":
		return p.parseLevel(idx, cmd, args)
	case "#EV", "#ES", "#EC", "#EA", "#EL", "#EP", "#EZ":
		return p.parseExpr(idx, cmd, args)
	}
	return fmt.Errorf("unrecognized command %q", cmd)
}

func (p *Parser) parseName(idx int, cmd string, args []string) error {
	if idx != len(p.names) {
		return fmt.Errorf("name index %d out of order, expected %d", idx, len(p.names))
	}
	if len(args) != 2 {
		return fmt.Errorf("%s needs a parent and a component", cmd)
	}
	parent, err := p.getName(args[0])
	if err != nil {
		return err
	}
	if cmd == "#NS" {
		p.names = append(p.names, parent.Str(args[1]))
		return nil
	}
	n, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("bad numeric component %q", args[1])
	}
	p.names = append(p.names, parent.Num(n))
	return nil
}

func (p *Parser) parseLevel(idx int, cmd string, args []string) error {
	if idx != len(p.levels) {
		return fmt.Errorf("universe index %d out of order, expected %d", idx, len(p.levels))
	}
	switch cmd {
	case "#US":
		if len(args) != 1 {
			return fmt.Errorf("#US needs one universe index")
		}
		l, err := p.getLevel(args[0])
		if err != nil {
			return err
		}
		p.levels = append(p.levels, level.Succ(l))
	case "#UM", "#UIM":
		if len(args) != 2 {
			return fmt.Errorf("%s needs two universe indices", cmd)
		}
		a, err := p.getLevel(args[0])
		if err != nil {
			return err
		}
		b, err := p.getLevel(args[1])
		if err != nil {
			return err
		}
		if cmd == "#UM" {
			p.levels = append(p.levels, level.Max(a, b))
		} else {
			p.levels = append(p.levels, level.IMax(a, b))
		}
	default: // #UP
		if len(args) != 1 {
			return fmt.Errorf("#UP needs a name index")
		}
		nm, err := p.getName(args[0])
		if err != nil {
			return err
		}
		p.levels = append(p.levels, level.Param(nm))
	}
	return nil
}

func (p *Parser) parseExpr(idx int, cmd string, args []string) error {
	if idx != len(p.exprs) {
		return fmt.Errorf("expression index %d out of order, expected %d", idx, len(p.exprs))
	}
	var e expr.Expr
	switch cmd {
	case "#EV":
		if len(args) != 1 {
			return fmt.Errorf("#EV needs a de Bruijn index")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("bad de Bruijn index %q", args[0])
		}
		e = expr.NewVar(n)
	case "#ES":
		if len(args) != 1 {
			return fmt.Errorf("#ES needs a universe index")
		}
		l, err := p.getLevel(args[0])
		if err != nil {
			return err
		}
		e = expr.NewSort(l)
	case "#EC":
		if len(args) < 1 {
			return fmt.Errorf("#EC needs a name index")
		}
		nm, err := p.getName(args[0])
		if err != nil {
			return err
		}
		lvls := make([]*level.Level, len(args)-1)
		for i, a := range args[1:] {
			if lvls[i], err = p.getLevel(a); err != nil {
				return err
			}
		}
		e = expr.NewConst(nm, lvls)
	case "#EA":
		if len(args) != 2 {
			return fmt.Errorf("#EA needs two expression indices")
		}
		fn, err := p.getExpr(args[0])
		if err != nil {
			return err
		}
		arg, err := p.getExpr(args[1])
		if err != nil {
			return err
		}
		e = expr.NewApp(fn, arg)
	case "#EL", "#EP":
		if len(args) != 4 {
			return fmt.Errorf("%s needs a binder style, a name, a domain and a body", cmd)
		}
		b, err := p.getBinder(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		body, err := p.getExpr(args[3])
		if err != nil {
			return err
		}
		if cmd == "#EL" {
			e = expr.NewLambda(b, body)
		} else {
			e = expr.NewPi(b, body)
		}
	default: // #EZ
		if len(args) != 4 {
			return fmt.Errorf("#EZ needs a name, a type, a value and a body")
		}
		nm, err := p.getName(args[0])
		if err != nil {
			return err
		}
		ty, err := p.getExpr(args[1])
		if err != nil {
			return err
		}
		val, err := p.getExpr(args[2])
		if err != nil {
			return err
		}
		body, err := p.getExpr(args[3])
		if err != nil {
			return err
		}
		e = expr.NewLet(expr.Binder{Nm: nm, Ty: ty}, val, body)
	}
	p.exprs = append(p.exprs, e)
	return nil
}

func (p *Parser) getBinder(style, nmIdx, tyIdx string) (expr.Binder, error) {
	var s expr.BinderStyle
	switch style {
	case "#BD":
		s = expr.DEFAULT
	case "#BI":
		s = expr.IMPLICIT
	case "#BS":
		s = expr.STRICT_IMPLICIT
	case "#BC":
		s = expr.INST_IMPLICIT
	default:
		return expr.Binder{}, fmt.Errorf("unrecognized binder style %q", style)
	}
	nm, err := p.getName(nmIdx)
	if err != nil {
		return expr.Binder{}, err
	}
	ty, err := p.getExpr(tyIdx)
	if err != nil {
		return expr.Binder{}, err
	}
	return expr.Binder{Nm: nm, Style: s, Ty: ty}, nil
}

func (p *Parser) getName(s string) (*name.Name, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || i >= len(p.names) {
		return nil, fmt.Errorf("bad name index %q", s)
	}
	return p.names[i], nil
}

func (p *Parser) getLevel(s string) (*level.Level, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || i >= len(p.levels) {
		return nil, fmt.Errorf("bad universe index %q", s)
	}
	return p.levels[i], nil
}

func (p *Parser) getExpr(s string) (expr.Expr, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || i >= len(p.exprs) {
		return nil, fmt.Errorf("bad expression index %q", s)
	}
	return p.exprs[i], nil
}

// getParamLevels reads trailing universe-parameter name indices.
func (p *Parser) getParamLevels(args []string) ([]*level.Level, error) {
	out := make([]*level.Level, len(args))
	for i, a := range args {
		nm, err := p.getName(a)
		if err != nil {
			return nil, err
		}
		out[i] = level.Param(nm)
	}
	return out, nil
}
