package libpauli

import (
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/pauli-systems/gopauli/gopauli"
	"github.com/pkg/errors"
)

// SetExpr is a comma (or semicolon) separated list of Pauli string exprs:
//
//	"XXI, IZZ, YIY"
//	"X1Z3:5; Z2"
//
// A string body is either one letter per site ("XIZZ") or positional, naming
// a 1-based site after each letter ("X1Z3").  An optional ":N" suffix pads
// the string out to N sites.
type SetExpr struct {
	Strings []*StringExpr `parser:"(@@ ((',' | ';') @@)*)?"`
}

type StringExpr struct {
	Body  string `parser:"@Ident"`
	Width int    `parser:"(':' @Int)?"`
}

var parseSetExpr = participle.MustBuild[SetExpr]()

func (expr *StringExpr) buildPauli() (gopauli.Pauli, error) {
	positional := false
	for _, r := range expr.Body {
		if unicode.IsDigit(r) {
			positional = true
			break
		}
	}
	if positional {
		return expr.buildPositional()
	}
	p, err := gopauli.PauliFromString(expr.Body)
	if err != nil {
		return p, err
	}
	if expr.Width > 0 {
		if expr.Width < p.NumQubits() {
			return p, errors.Wrapf(gopauli.ErrBadEncoding, "width %d below %q", expr.Width, expr.Body)
		}
		return p.Expand(expr.Width)
	}
	return p, nil
}

func (expr *StringExpr) buildPositional() (gopauli.Pauli, error) {
	var p gopauli.Pauli
	width := expr.Width

	body := expr.Body
	for i := 0; i < len(body); {
		op, err := gopauli.OpFromRune(rune(body[i]))
		if err != nil {
			return p, errors.Wrapf(err, "in %q", body)
		}
		i++
		site := 0
		nd := 0
		for i < len(body) && body[i] >= '0' && body[i] <= '9' {
			site = site*10 + int(body[i]-'0')
			i++
			nd++
		}
		if nd == 0 || site < 1 || site > gopauli.MaxQubits {
			return p, errors.Wrapf(gopauli.ErrBadSite, "in %q", body)
		}
		if site > width {
			width = site
		}
		grown, err := p.Expand(width)
		if err != nil {
			return p, err
		}
		p = grown.WithSite(site-1, op)
	}
	if expr.Width > 0 && expr.Width < p.NumQubits() {
		return p, errors.Wrapf(gopauli.ErrBadEncoding, "width %d below %q", expr.Width, body)
	}
	return p, nil
}

// InitFromString resets the set to the generators named by setExpr.
func (set *Set) InitFromString(setExpr string) error {
	set.Init(nil)

	expr, err := parseSetExpr.ParseString("", setExpr)
	if err != nil {
		return errors.Wrap(gopauli.ErrBadEncoding, err.Error())
	}
	for _, strExpr := range expr.Strings {
		p, err := strExpr.buildPauli()
		if err != nil {
			return err
		}
		if err := set.Add(p); err != nil {
			return err
		}
	}
	return nil
}

// NewSetFromStr parses a SetExpr into a pooled Set.
func NewSetFromStr(setExpr string) (*Set, error) {
	set := NewSet(nil)
	if err := set.InitFromString(setExpr); err != nil {
		set.Reclaim()
		return nil, err
	}
	return set, nil
}

// MustSet panics if setExpr does not parse; intended for fixed expressions.
func MustSet(setExpr string) *Set {
	set, err := NewSetFromStr(setExpr)
	if err != nil {
		panic(err)
	}
	return set
}
