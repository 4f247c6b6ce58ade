package svg

import (
	"math"
	"strconv"

	"honnef.co/go/curve"

	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/geom"
)

// ArcTolerance is the maximum distance, in user units, between an elliptical
// arc and the cubics that replace it.
const ArcTolerance = 0.01

// ParsePathData converts the value of a d attribute to node form.
//
// All commands of SVG 1.1 are accepted, absolute and relative. Lines become
// corner nodes, quadratic curves are raised to cubics and arcs are
// approximated by cubics. When Z closes a sub-path whose current point is not
// its start, a closing corner node is appended so the closing line is an
// ordinary segment. An empty string yields an empty path.
func ParsePathData(d string) (geom.Path, error) {
	p := &pathParser{scan: scanner{s: d}}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.path, nil
}

type pathParser struct {
	scan scanner
	path geom.Path

	open  bool // the last sub-path of path accepts segments
	pos   geom.Point
	start geom.Point

	prevCmd  byte
	prevCtrl geom.Point // second control point of the previous C or S
	prevQuad geom.Point // control point of the previous Q or T
}

func (p *pathParser) parse() error {
	s := &p.scan
	s.skipSpace()
	if s.done() {
		return nil
	}
	if c := s.peek(); c != 'M' && c != 'm' {
		return errors.New(errors.ErrCodeInvalidPathData, "path data must start with a moveto, got %q", string(c))
	}

	for {
		s.skipSpace()
		if s.done() {
			return nil
		}
		cmd := s.next()
		if err := p.command(cmd); err != nil {
			return err
		}
		// Repeated argument groups reuse the command, except that extra
		// pairs after a moveto are linetos.
		for cmd != 'Z' && cmd != 'z' && s.hasNumber() {
			switch cmd {
			case 'M':
				cmd = 'L'
			case 'm':
				cmd = 'l'
			}
			if err := p.command(cmd); err != nil {
				return err
			}
		}
	}
}

func (p *pathParser) command(cmd byte) error {
	s := &p.scan
	rel := cmd >= 'a'
	var origin geom.Point
	if rel {
		origin = p.pos
	}
	point := func() (geom.Point, error) {
		x, err := s.number()
		if err != nil {
			return geom.Point{}, err
		}
		y, err := s.number()
		if err != nil {
			return geom.Point{}, err
		}
		return geom.Point{X: origin.X + x, Y: origin.Y + y}, nil
	}

	var err error
	switch cmd {
	case 'M', 'm':
		var pt geom.Point
		if pt, err = point(); err == nil {
			p.moveTo(pt)
		}
	case 'L', 'l':
		var pt geom.Point
		if pt, err = point(); err == nil {
			p.lineTo(pt)
		}
	case 'H', 'h':
		var x float64
		if x, err = s.number(); err == nil {
			p.lineTo(geom.Point{X: origin.X + x, Y: p.pos.Y})
		}
	case 'V', 'v':
		var y float64
		if y, err = s.number(); err == nil {
			p.lineTo(geom.Point{X: p.pos.X, Y: origin.Y + y})
		}
	case 'C', 'c':
		var c1, c2, pt geom.Point
		if c1, err = point(); err != nil {
			break
		}
		if c2, err = point(); err != nil {
			break
		}
		if pt, err = point(); err == nil {
			p.cubicTo(c1, c2, pt)
		}
	case 'S', 's':
		var c2, pt geom.Point
		if c2, err = point(); err != nil {
			break
		}
		if pt, err = point(); err == nil {
			c1 := p.pos
			if isCubicCmd(p.prevCmd) {
				c1 = reflect(p.prevCtrl, p.pos)
			}
			p.cubicTo(c1, c2, pt)
		}
	case 'Q', 'q':
		var ctrl, pt geom.Point
		if ctrl, err = point(); err != nil {
			break
		}
		if pt, err = point(); err == nil {
			p.quadTo(ctrl, pt)
		}
	case 'T', 't':
		var pt geom.Point
		if pt, err = point(); err == nil {
			ctrl := p.pos
			if isQuadCmd(p.prevCmd) {
				ctrl = reflect(p.prevQuad, p.pos)
			}
			p.quadTo(ctrl, pt)
		}
	case 'A', 'a':
		err = p.arc(origin)
	case 'Z', 'z':
		p.closePath()
	default:
		return errors.New(errors.ErrCodeInvalidPathData, "unexpected command %q", string(cmd))
	}
	if err != nil {
		return err
	}
	p.prevCmd = cmd
	return nil
}

func (p *pathParser) arc(origin geom.Point) error {
	s := &p.scan
	var vals [3]float64
	for i := range vals {
		v, err := s.number()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	large, err := s.flag()
	if err != nil {
		return err
	}
	sweep, err := s.flag()
	if err != nil {
		return err
	}
	x, err := s.number()
	if err != nil {
		return err
	}
	y, err := s.number()
	if err != nil {
		return err
	}
	end := geom.Point{X: origin.X + x, Y: origin.Y + y}
	p.arcTo(vals[0], vals[1], vals[2], large, sweep, end)
	return nil
}

func isCubicCmd(c byte) bool { return c == 'C' || c == 'c' || c == 'S' || c == 's' }
func isQuadCmd(c byte) bool { return c == 'Q' || c == 'q' || c == 'T' || c == 't' }

func reflect(ctrl, around geom.Point) geom.Point {
	return geom.Point{X: 2*around.X - ctrl.X, Y: 2*around.Y - ctrl.Y}
}

func (p *pathParser) moveTo(pt geom.Point) {
	p.path = append(p.path, geom.SubPath{Nodes: []geom.Node{geom.Corner(pt)}})
	p.open = true
	p.pos, p.start = pt, pt
}

// ensureOpen starts a new sub-path at the current point after a closepath
// that was not followed by a moveto.
func (p *pathParser) ensureOpen() *geom.SubPath {
	if !p.open {
		p.moveTo(p.pos)
	}
	return &p.path[len(p.path)-1]
}

func (p *pathParser) lineTo(pt geom.Point) {
	sp := p.ensureOpen()
	sp.Nodes = append(sp.Nodes, geom.Corner(pt))
	p.pos = pt
}

func (p *pathParser) cubicTo(c1, c2, pt geom.Point) {
	sp := p.ensureOpen()
	sp.Nodes[len(sp.Nodes)-1].Out = c1
	sp.Nodes = append(sp.Nodes, geom.Node{In: c2, Anchor: pt, Out: pt})
	p.pos = pt
	p.prevCtrl = c2
}

func (p *pathParser) quadTo(ctrl, pt geom.Point) {
	c := curve.QuadBez{P0: p.pos, P1: ctrl, P2: pt}.Raise()
	p.cubicTo(c.P1, c.P2, pt)
	p.prevQuad = ctrl
}

// arcTo follows the endpoint to center conversion of SVG 1.1 appendix F.6.
func (p *pathParser) arcTo(rx, ry, rotation float64, large, sweep bool, end geom.Point) {
	start := p.pos
	if start == end {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		p.lineTo(end)
		return
	}

	phi := rotation * math.Pi / 180
	sinPhi, cosPhi := math.Sincos(phi)
	dx2, dy2 := (start.X-end.X)/2, (start.Y-end.Y)/2
	x1 := cosPhi*dx2 + sinPhi*dy2
	y1 := -sinPhi*dx2 + cosPhi*dy2

	if lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry); lambda > 1 {
		k := math.Sqrt(lambda)
		rx, ry = rx*k, ry*k
	}

	rx2, ry2 := rx*rx, ry*ry
	num := rx2*ry2 - rx2*y1*y1 - ry2*x1*x1
	den := rx2*y1*y1 + ry2*x1*x1
	coef := 0.0
	if num > 0 && den > 0 {
		coef = math.Sqrt(num / den)
	}
	if large == sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := -coef * ry * x1 / rx
	center := geom.Point{
		X: cosPhi*cx1 - sinPhi*cy1 + (start.X+end.X)/2,
		Y: sinPhi*cx1 + cosPhi*cy1 + (start.Y+end.Y)/2,
	}

	u := curve.Vec((x1-cx1)/rx, (y1-cy1)/ry)
	v := curve.Vec((-x1-cx1)/rx, (-y1-cy1)/ry)
	theta := u.Angle()
	delta := math.Atan2(u.Cross(v), u.Dot(v))
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	arc := curve.Arc{
		Center:     center,
		Radii:      curve.Vec(rx, ry),
		StartAngle: theta,
		SweepAngle: delta,
		XRotation:  phi,
	}
	var cubics []curve.PathElement
	for el := range arc.PathElements(ArcTolerance) {
		if el.Kind == curve.CubicToKind {
			cubics = append(cubics, el)
		}
	}
	for i, el := range cubics {
		pt := el.P2
		if i == len(cubics)-1 {
			pt = end
		}
		p.cubicTo(el.P0, el.P1, pt)
	}
	if len(cubics) == 0 {
		p.lineTo(end)
	}
}

func (p *pathParser) closePath() {
	if !p.open {
		return
	}
	sp := &p.path[len(p.path)-1]
	if first := sp.Nodes[0].Anchor; sp.Nodes[len(sp.Nodes)-1].Anchor != first {
		sp.Nodes = append(sp.Nodes, geom.Corner(first))
	}
	sp.Closed = true
	p.open = false
	p.pos = p.start
}

// FormatPathData writes path as a d attribute value. Segments without
// handles are written as lines, others as cubics. precision bounds the number
// of decimals; 0 writes each coordinate in the shortest form that reads back
// exactly.
func FormatPathData(path geom.Path, precision int) string {
	var bp curve.BezPath
	for _, sp := range path {
		if len(sp.Nodes) == 0 {
			continue
		}
		bp.MoveTo(sp.Nodes[0].Anchor)
		for i := 1; i < len(sp.Nodes); i++ {
			prev, cur := sp.Nodes[i-1], sp.Nodes[i]
			if geom.IsLine(prev, cur) {
				bp.LineTo(cur.Anchor)
			} else {
				bp.CubicTo(prev.Out, cur.In, cur.Anchor)
			}
		}
		if sp.Closed {
			bp.ClosePath()
		}
	}
	return bp.SVG(curve.SVGOptions{MaxPrecision: precision})
}

// PathData parses the d attribute of e.
func (e *Element) PathData() (geom.Path, error) {
	return ParsePathData(e.Attr("d"))
}

// SetPathData replaces the d attribute of e.
func (e *Element) SetPathData(path geom.Path, precision int) {
	e.Set("d", FormatPathData(path, precision))
}

// scanner tokenizes path data.
type scanner struct {
	s   string
	pos int
}

func (s *scanner) done() bool { return s.pos >= len(s.s) }
func (s *scanner) peek() byte { return s.s[s.pos] }

func (s *scanner) next() byte {
	c := s.s[s.pos]
	s.pos++
	return c
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func (s *scanner) skipSpace() {
	for !s.done() && isSpace(s.peek()) {
		s.pos++
	}
}

// skipSep skips whitespace and at most one comma.
func (s *scanner) skipSep() {
	s.skipSpace()
	if !s.done() && s.peek() == ',' {
		s.pos++
		s.skipSpace()
	}
}

// hasNumber reports whether another argument follows.
func (s *scanner) hasNumber() bool {
	save := s.pos
	s.skipSep()
	ok := !s.done() && (isDigit(s.peek()) || s.peek() == '.' || s.peek() == '-' || s.peek() == '+')
	s.pos = save
	return ok
}

func (s *scanner) number() (float64, error) {
	s.skipSep()
	start := s.pos
	if !s.done() && (s.peek() == '+' || s.peek() == '-') {
		s.pos++
	}
	digits := 0
	for !s.done() && isDigit(s.peek()) {
		s.pos++
		digits++
	}
	if !s.done() && s.peek() == '.' {
		s.pos++
		for !s.done() && isDigit(s.peek()) {
			s.pos++
			digits++
		}
	}
	if digits == 0 {
		s.pos = start
		return 0, errors.New(errors.ErrCodeInvalidPathData, "expected number at offset %d", start)
	}
	if !s.done() && (s.peek() == 'e' || s.peek() == 'E') {
		save := s.pos
		s.pos++
		if !s.done() && (s.peek() == '+' || s.peek() == '-') {
			s.pos++
		}
		exp := 0
		for !s.done() && isDigit(s.peek()) {
			s.pos++
			exp++
		}
		if exp == 0 {
			s.pos = save
		}
	}
	v, err := strconv.ParseFloat(s.s[start:s.pos], 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, errors.New(errors.ErrCodeInvalidPathData, "invalid number %q at offset %d", s.s[start:s.pos], start)
	}
	return v, nil
}

// flag reads an arc flag, which may be written without a separator.
func (s *scanner) flag() (bool, error) {
	s.skipSep()
	if !s.done() {
		switch s.next() {
		case '0':
			return false, nil
		case '1':
			return true, nil
		}
		s.pos--
	}
	return false, errors.New(errors.ErrCodeInvalidPathData, "expected arc flag at offset %d", s.pos)
}
