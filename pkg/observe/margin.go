package observe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/homeworkclubco/preschool/pkg/dom"
)

// Unit is the measurement unit of a margin component.
type Unit int

const (
	// Pixels is an absolute CSS pixel length.
	Pixels Unit = iota
	// Percent is relative to the viewport dimension on the same axis.
	Percent
)

// Length is one component of a root margin. Negative values shrink the
// root rectangle, which is how "trigger before the exact edge" margins
// like "0px 0px -120px 0px" work.
type Length struct {
	Value float64
	Unit  Unit
}

// Margin is a parsed CSS margin shorthand applied to the viewport
// rectangle before intersection is computed.
type Margin struct {
	Top    Length
	Right  Length
	Bottom Length
	Left   Length
}

// ParseMargin parses CSS margin shorthand syntax: one to four
// whitespace-separated lengths with px or % units. Bare numbers and "0"
// are accepted as pixels. The empty string parses to a zero margin.
func ParseMargin(s string) (Margin, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Margin{}, nil
	}
	if len(fields) > 4 {
		return Margin{}, fmt.Errorf("observe: margin %q has %d components, want 1-4", s, len(fields))
	}
	lengths := make([]Length, len(fields))
	for i, f := range fields {
		l, err := parseLength(f)
		if err != nil {
			return Margin{}, fmt.Errorf("observe: margin %q: %w", s, err)
		}
		lengths[i] = l
	}
	// CSS shorthand expansion: top, right, bottom, left.
	switch len(lengths) {
	case 1:
		return Margin{lengths[0], lengths[0], lengths[0], lengths[0]}, nil
	case 2:
		return Margin{lengths[0], lengths[1], lengths[0], lengths[1]}, nil
	case 3:
		return Margin{lengths[0], lengths[1], lengths[2], lengths[1]}, nil
	default:
		return Margin{lengths[0], lengths[1], lengths[2], lengths[3]}, nil
	}
}

func parseLength(s string) (Length, error) {
	unit := Pixels
	num := s
	switch {
	case strings.HasSuffix(s, "px"):
		num = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "%"):
		unit = Percent
		num = strings.TrimSuffix(s, "%")
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("bad length %q", s)
	}
	return Length{Value: v, Unit: unit}, nil
}

// Expand grows (or, for negative components, shrinks) the rect by the
// margin. Percent components resolve against the rect's own dimensions:
// top/bottom against height, left/right against width, per the
// IntersectionObserver rootMargin rules.
func (m Margin) Expand(r dom.Rect) dom.Rect {
	top := m.Top.resolve(r.Height)
	right := m.Right.resolve(r.Width)
	bottom := m.Bottom.resolve(r.Height)
	left := m.Left.resolve(r.Width)
	return dom.Rect{
		X:      r.X - left,
		Y:      r.Y - top,
		Width:  r.Width + left + right,
		Height: r.Height + top + bottom,
	}
}

func (l Length) resolve(base float64) float64 {
	if l.Unit == Percent {
		return base * l.Value / 100
	}
	return l.Value
}
