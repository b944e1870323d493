package geom

import (
	"math"
	"strings"
)

// Op identifies a path command.
type Op string

const (
	OpMove  Op = "M"
	OpLine  Op = "L"
	OpArc   Op = "A"
	OpCubic Op = "C"
	OpClose Op = "Z"
)

// Arc is a circular arc around Center. Start and End are compass angles in
// degrees; End > Start sweeps clockwise, End < Start counter-clockwise.
type Arc struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
}

// Sweep returns the signed angular span in degrees.
func (a Arc) Sweep() float64 { return a.End - a.Start }

// From returns the arc's starting point.
func (a Arc) From() Point { return Polar(a.Center.X, a.Center.Y, a.Radius, a.Start) }

// To returns the arc's end point.
func (a Arc) To() Point { return Polar(a.Center.X, a.Center.Y, a.Radius, a.End) }

// Large reports whether the arc spans more than half a circle.
func (a Arc) Large() bool { return math.Abs(a.Sweep()) > 180 }

// Cubic is a single cubic Bézier segment.
type Cubic struct {
	C1, C2, To Point
}

// Cubics approximates the arc with cubic Béziers of at most 90° each.
// The returned segments start at a.From() and end at a.To().
func (a Arc) Cubics() []Cubic {
	sweep := a.Sweep()
	if sweep == 0 || a.Radius <= 0 {
		return nil
	}
	n := int(math.Ceil(math.Abs(sweep) / 90))
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(Radians(step)/4)

	tangent := func(deg float64) Point {
		r := Radians(deg)
		return Point{X: a.Radius * math.Cos(r), Y: a.Radius * math.Sin(r)}
	}

	out := make([]Cubic, 0, n)
	for i := 0; i < n; i++ {
		a0 := a.Start + step*float64(i)
		a1 := a0 + step
		p0 := Polar(a.Center.X, a.Center.Y, a.Radius, a0)
		p1 := Polar(a.Center.X, a.Center.Y, a.Radius, a1)
		out = append(out, Cubic{
			C1: p0.Add(tangent(a0).Scale(k)),
			C2: p1.Sub(tangent(a1).Scale(k)),
			To: p1,
		})
	}
	return out
}

// Command is one drawing instruction. Points holds the target for M and L,
// and (c1, c2, to) for C. Arc is set only for A.
type Command struct {
	Op     Op      `json:"op"`
	Points []Point `json:"points,omitempty"`
	Arc    *Arc    `json:"arc,omitempty"`
}

// Path is an ordered list of drawing commands.
type Path []Command

// MoveTo starts a new subpath at p.
func (p *Path) MoveTo(pt Point) { *p = append(*p, Command{Op: OpMove, Points: []Point{pt}}) }

// LineTo draws a straight edge to pt.
func (p *Path) LineTo(pt Point) { *p = append(*p, Command{Op: OpLine, Points: []Point{pt}}) }

// ArcTo draws a circular arc. The current point is expected to be a.From().
func (p *Path) ArcTo(a Arc) { *p = append(*p, Command{Op: OpArc, Arc: &a}) }

// CubicTo draws a cubic Bézier through control points c1 and c2 to pt.
func (p *Path) CubicTo(c1, c2, pt Point) {
	*p = append(*p, Command{Op: OpCubic, Points: []Point{c1, c2, pt}})
}

// Close closes the current subpath.
func (p *Path) Close() { *p = append(*p, Command{Op: OpClose}) }

// Empty reports whether the path has no commands.
func (p Path) Empty() bool { return len(p) == 0 }

// Polygon returns a closed path through pts.
func Polygon(pts []Point) Path {
	if len(pts) == 0 {
		return nil
	}
	p := make(Path, 0, len(pts)+1)
	p.MoveTo(pts[0])
	for _, pt := range pts[1:] {
		p.LineTo(pt)
	}
	p.Close()
	return p
}

// SVG serializes the path as SVG path data.
//
// Arcs spanning a full turn are emitted as two half arcs because a single
// SVG arc whose endpoints coincide draws nothing.
func (p Path) SVG() string {
	var b strings.Builder
	for i, c := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch c.Op {
		case OpMove, OpLine:
			b.WriteString(string(c.Op))
			writePoint(&b, c.Points[0])
		case OpCubic:
			b.WriteString("C")
			writePoint(&b, c.Points[0])
			b.WriteByte(' ')
			writePoint(&b, c.Points[1])
			b.WriteByte(' ')
			writePoint(&b, c.Points[2])
		case OpArc:
			a := *c.Arc
			if math.Abs(a.Sweep()) >= 360-1e-9 {
				mid := a
				mid.End = a.Start + a.Sweep()/2
				writeArc(&b, mid)
				b.WriteByte(' ')
				rest := a
				rest.Start = mid.End
				writeArc(&b, rest)
				continue
			}
			writeArc(&b, a)
		case OpClose:
			b.WriteString("Z")
		}
	}
	return b.String()
}

func writePoint(b *strings.Builder, pt Point) {
	b.WriteString(Num(pt.X))
	b.WriteByte(',')
	b.WriteString(Num(pt.Y))
}

func writeArc(b *strings.Builder, a Arc) {
	large, sweep := "0", "0"
	if a.Large() {
		large = "1"
	}
	if a.Sweep() > 0 {
		sweep = "1"
	}
	r := Num(a.Radius)
	b.WriteString("A")
	b.WriteString(r + "," + r + " 0 " + large + " " + sweep + " ")
	writePoint(b, a.To())
}
