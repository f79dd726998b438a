package gerber

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/geometry"
)

const mmPerInch = 25.4

// arcStep is the maximum angle covered by one segment of a flattened arc.
const arcStep = math.Pi / 18

type interpolation int

const (
	linear interpolation = iota
	clockwise
	counterClockwise
)

// parser holds the modal graphics state while walking a file.
type parser struct {
	file *File

	// coordinate format
	intDigits, decDigits int
	trailing             bool // trailing-zero omission
	incremental          bool
	scale                float64 // units → mm

	apertures map[int]Aperture
	current   Aperture
	haveAp    bool

	pos        geometry.Point
	interp     interpolation
	multiQuad  bool
	lastOp     int
	inRegion   bool
	contour    []geometry.Point
	lineNumber int
}

// ParseFile opens and parses a Gerber file.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	file, err := Parse(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	file.Path = path
	return file, nil
}

// Parse reads Gerber data from r.
func Parse(r io.Reader) (*File, error) {
	p := &parser{
		file:      &File{Units: "mm"},
		intDigits: 3,
		decDigits: 6,
		scale:     1,
		apertures: make(map[int]Aperture),
		lastOp:    1,
		multiQuad: true,
	}

	br := bufio.NewReader(r)
	var block strings.Builder
	inExtended := false

	for {
		ch, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch ch {
		case '\n':
			p.lineNumber++
			continue
		case '\r', ' ', '\t':
			if !inExtended || block.Len() == 0 {
				continue
			}
		case '%':
			inExtended = !inExtended
			block.Reset()
			continue
		case '*':
			cmd := block.String()
			block.Reset()
			if cmd == "" {
				continue
			}
			var perr error
			if inExtended {
				perr = p.extended(cmd)
			} else {
				perr = p.word(cmd)
			}
			if perr != nil {
				return nil, perr
			}
			if p.file.ended {
				return p.file, nil
			}
			continue
		}
		block.WriteByte(ch)
	}

	p.closeContour()
	return p.file, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidFormat, "line %d: "+format, append([]any{p.lineNumber + 1}, args...)...)
}

// extended handles one block of a %...% command.
func (p *parser) extended(cmd string) error {
	switch {
	case strings.HasPrefix(cmd, "FS"):
		return p.formatSpec(cmd[2:])
	case strings.HasPrefix(cmd, "MO"):
		switch strings.TrimSpace(cmd[2:]) {
		case "IN":
			p.scale = mmPerInch
			p.file.Units = "in"
		case "MM":
			p.scale = 1
			p.file.Units = "mm"
		default:
			return p.errorf("unknown unit %q", cmd[2:])
		}
	case strings.HasPrefix(cmd, "ADD"):
		return p.apertureDefinition(cmd[3:])
	}
	// AM, LP, TF, TA, TO, TD, SR, IP, LN and friends do not affect geometry extents.
	return nil
}

// formatSpec parses the body of an FS command, e.g. "LAX46Y46".
func (p *parser) formatSpec(s string) error {
	for len(s) > 0 {
		switch s[0] {
		case 'L':
			p.trailing = false
			s = s[1:]
		case 'T':
			p.trailing = true
			s = s[1:]
		case 'A':
			p.incremental = false
			s = s[1:]
		case 'I':
			p.incremental = true
			s = s[1:]
		case 'X', 'Y':
			if len(s) < 3 {
				return p.errorf("short format spec %q", s)
			}
			i, err1 := strconv.Atoi(s[1:2])
			d, err2 := strconv.Atoi(s[2:3])
			if err1 != nil || err2 != nil {
				return p.errorf("bad format spec %q", s)
			}
			p.intDigits, p.decDigits = i, d
			s = s[3:]
		default:
			// N, G, D, M digit counts from older writers.
			s = s[1:]
		}
	}
	return nil
}

// apertureDefinition parses e.g. "10C,0.254" or "11R,1.2X0.8".
func (p *parser) apertureDefinition(s string) error {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return p.errorf("aperture definition without number: %q", s)
	}
	number, _ := strconv.Atoi(s[:i])
	rest := s[i:]

	name, params, _ := strings.Cut(rest, ",")
	var values []float64
	if params != "" && len(name) == 1 {
		for _, f := range strings.Split(params, "X") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return p.errorf("bad aperture parameter %q", f)
			}
			values = append(values, v*p.scale)
		}
	}

	ap := Aperture{Number: number, Shape: ShapeMacro}
	switch name {
	case "C":
		ap.Shape = ShapeCircle
		if len(values) > 0 {
			ap.Width, ap.Height = values[0], values[0]
		}
	case "R", "O":
		ap.Shape = ShapeRect
		if name == "O" {
			ap.Shape = ShapeObround
		}
		if len(values) > 1 {
			ap.Width, ap.Height = values[0], values[1]
		} else if len(values) == 1 {
			ap.Width, ap.Height = values[0], values[0]
		}
	case "P":
		// Outer diameter; vertex count and rotation are only relevant for drawing.
		ap.Shape = ShapePolygon
		if len(values) > 0 {
			ap.Width, ap.Height = values[0], values[0]
		}
	}
	p.apertures[number] = ap
	return nil
}

// word handles one non-extended block such as "G01X1000Y2000D01".
func (p *parser) word(cmd string) error {
	if strings.HasPrefix(cmd, "G04") {
		return nil
	}
	if strings.HasPrefix(cmd, "M02") || strings.HasPrefix(cmd, "M00") || strings.HasPrefix(cmd, "M30") {
		p.closeContour()
		p.file.ended = true
		return nil
	}

	var (
		x, y, ii, jj string
		hasX, hasY   bool
		hasI, hasJ   bool
		op           = -1
	)

	s := cmd
	for len(s) > 0 {
		letter := s[0]
		j := 1
		for j < len(s) && (s[j] == '-' || s[j] == '+' || s[j] == '.' || (s[j] >= '0' && s[j] <= '9')) {
			j++
		}
		value := s[1:j]
		s = s[j:]

		switch letter {
		case 'G':
			n, err := strconv.Atoi(value)
			if err != nil {
				return p.errorf("bad G code %q", value)
			}
			p.gcode(n)
		case 'D':
			n, err := strconv.Atoi(value)
			if err != nil {
				return p.errorf("bad D code %q", value)
			}
			if n >= 10 {
				ap, ok := p.apertures[n]
				if !ok {
					return p.errorf("aperture D%d used before definition", n)
				}
				p.current, p.haveAp = ap, true
			} else {
				op = n
			}
		case 'X':
			x, hasX = value, true
		case 'Y':
			y, hasY = value, true
		case 'I':
			ii, hasI = value, true
		case 'J':
			jj, hasJ = value, true
		case 'N', 'M':
			// Sequence numbers and stray M codes carry no geometry.
		default:
			return p.errorf("unexpected %q in %q", string(letter), cmd)
		}
	}

	if !hasX && !hasY && op < 0 {
		return nil
	}
	if op < 0 {
		op = p.lastOp
	}
	p.lastOp = op

	target := p.pos
	if hasX {
		v, err := p.coordinate(x)
		if err != nil {
			return err
		}
		if p.incremental {
			target.X += v
		} else {
			target.X = v
		}
	}
	if hasY {
		v, err := p.coordinate(y)
		if err != nil {
			return err
		}
		if p.incremental {
			target.Y += v
		} else {
			target.Y = v
		}
	}
	var offset geometry.Point
	if hasI {
		v, err := p.coordinate(ii)
		if err != nil {
			return err
		}
		offset.X = v
	}
	if hasJ {
		v, err := p.coordinate(jj)
		if err != nil {
			return err
		}
		offset.Y = v
	}

	switch op {
	case 1:
		p.interpolate(target, offset)
	case 2:
		if p.inRegion {
			p.closeContour()
			p.contour = []geometry.Point{target}
		}
	case 3:
		p.file.Flashes = append(p.file.Flashes, Flash{At: target, Aperture: p.current})
	default:
		return p.errorf("unknown operation D%02d", op)
	}
	p.pos = target
	return nil
}

func (p *parser) gcode(n int) {
	switch n {
	case 1:
		p.interp = linear
	case 2:
		p.interp = clockwise
	case 3:
		p.interp = counterClockwise
	case 36:
		p.inRegion = true
		p.contour = []geometry.Point{p.pos}
	case 37:
		p.closeContour()
		p.inRegion = false
	case 70:
		p.scale = mmPerInch
		p.file.Units = "in"
	case 71:
		p.scale = 1
		p.file.Units = "mm"
	case 74:
		p.multiQuad = false
	case 75:
		p.multiQuad = true
	case 90:
		p.incremental = false
	case 91:
		p.incremental = true
	}
}

// coordinate converts a fixed-point coordinate string to millimeters.
func (p *parser) coordinate(s string) (float64, error) {
	if s == "" {
		return 0, p.errorf("empty coordinate")
	}
	if strings.Contains(s, ".") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, p.errorf("bad coordinate %q", s)
		}
		return v * p.scale, nil
	}

	sign := 1.0
	digits := s
	switch s[0] {
	case '-':
		sign, digits = -1, s[1:]
	case '+':
		digits = s[1:]
	}
	if p.trailing {
		if want := p.intDigits + p.decDigits; len(digits) < want {
			digits += strings.Repeat("0", want-len(digits))
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, p.errorf("bad coordinate %q", s)
	}
	return sign * float64(n) / math.Pow10(p.decDigits) * p.scale, nil
}

// interpolate draws from the current point to target.
func (p *parser) interpolate(target, offset geometry.Point) {
	points := []geometry.Point{target}
	if p.interp != linear {
		points = p.arc(p.pos, target, offset)
	}

	if p.inRegion {
		p.contour = append(p.contour, points...)
		return
	}

	width := p.current.StrokeWidth()
	from := p.pos
	for _, pt := range points {
		p.file.Strokes = append(p.file.Strokes, Stroke{From: from, To: pt, Width: width})
		from = pt
	}
}

// arc flattens a circular interpolation into points ending at end.
func (p *parser) arc(start, end, offset geometry.Point) []geometry.Point {
	cw := p.interp == clockwise

	var center geometry.Point
	if p.multiQuad {
		center = start.Add(offset)
	} else {
		center = p.singleQuadrantCenter(start, end, offset, cw)
	}

	radius := start.Distance(center)
	a0 := math.Atan2(start.Y-center.Y, start.X-center.X)
	a1 := math.Atan2(end.Y-center.Y, end.X-center.X)

	sweep := a1 - a0
	full := p.multiQuad && start.Distance(end) < 1e-9
	switch {
	case full && cw:
		sweep = -2 * math.Pi
	case full:
		sweep = 2 * math.Pi
	case cw && sweep >= 0:
		sweep -= 2 * math.Pi
	case !cw && sweep <= 0:
		sweep += 2 * math.Pi
	}

	n := int(math.Ceil(math.Abs(sweep) / arcStep))
	if n < 1 {
		n = 1
	}
	points := make([]geometry.Point, 0, n)
	for i := 1; i < n; i++ {
		a := a0 + sweep*float64(i)/float64(n)
		points = append(points, geometry.Pt(center.X+radius*math.Cos(a), center.Y+radius*math.Sin(a)))
	}
	return append(points, end)
}

// singleQuadrantCenter picks the signed center offset for G74 arcs, whose
// I and J are unsigned: the candidate that is equidistant from both ends and
// spans at most a quarter turn in the requested direction wins.
func (p *parser) singleQuadrantCenter(start, end, offset geometry.Point, cw bool) geometry.Point {
	ox, oy := math.Abs(offset.X), math.Abs(offset.Y)
	best := start.Add(geometry.Pt(ox, oy))
	bestErr := math.Inf(1)
	for _, sx := range []float64{1, -1} {
		for _, sy := range []float64{1, -1} {
			c := start.Add(geometry.Pt(sx*ox, sy*oy))
			a0 := math.Atan2(start.Y-c.Y, start.X-c.X)
			a1 := math.Atan2(end.Y-c.Y, end.X-c.X)
			sweep := a1 - a0
			if cw {
				sweep = -sweep
			}
			for sweep < 0 {
				sweep += 2 * math.Pi
			}
			if sweep > math.Pi/2+1e-6 {
				continue
			}
			if e := math.Abs(start.Distance(c) - end.Distance(c)); e < bestErr {
				best, bestErr = c, e
			}
		}
	}
	return best
}

func (p *parser) closeContour() {
	if len(p.contour) >= 3 {
		p.file.Regions = append(p.file.Regions, Region{Points: p.contour})
	}
	p.contour = nil
}
