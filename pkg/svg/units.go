package svg

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/xkcdify/pkg/errors"
)

// Pixels per unit, at the CSS resolution of 96 pixels per inch.
var pixelsPer = map[string]float64{
	"":   1,
	"px": 1,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
	"q":  96 / 25.4 / 4,
	"pt": 96.0 / 72,
	"pc": 16,
}

// Length is a number with an optional unit, such as "2mm" or "50%".
type Length struct {
	Value float64
	Unit  string // lower case; "" for user units
}

// ParseLength parses a length. Unit names are case insensitive.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	i := len(s)
	for i > 0 && (isLetter(s[i-1]) || s[i-1] == '%') {
		i--
	}
	num, unit := strings.TrimSpace(s[:i]), strings.ToLower(s[i:])
	if num == "" {
		return Length{}, errors.New(errors.ErrCodeInvalidUnit, "missing number in length %q", s)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Length{}, errors.New(errors.ErrCodeInvalidUnit, "invalid number in length %q", s)
	}
	if _, ok := pixelsPer[unit]; !ok && unit != "%" {
		return Length{}, errors.New(errors.ErrCodeInvalidUnit, "unknown unit %q in length %q", unit, s)
	}
	return Length{Value: v, Unit: unit}, nil
}

// Pixels converts an absolute length to CSS pixels. Percentages are relative
// and cannot be converted without a viewport.
func (l Length) Pixels() (float64, error) {
	f, ok := pixelsPer[l.Unit]
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidUnit, "cannot convert %q to pixels without a viewport", l.Unit)
	}
	return l.Value * f, nil
}

// String formats the length the way it would appear in an attribute.
func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'g', -1, 64) + l.Unit
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// ViewBox returns the root viewBox as min-x, min-y, width, height.
func (d *Document) ViewBox() (x, y, w, h float64, ok bool) {
	v := d.Root.Attr("viewBox")
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' })
	if len(fields) != 4 {
		return 0, 0, 0, 0, false
	}
	var vals [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, 0, 0, 0, false
		}
		vals[i] = n
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return 0, 0, 0, 0, false
	}
	return vals[0], vals[1], vals[2], vals[3], true
}

// dimension returns the root width or height attribute in pixels.
func (d *Document) dimension(name string) (float64, bool) {
	v, ok := d.Root.Get(name)
	if !ok {
		return 0, false
	}
	l, err := ParseLength(v)
	if err != nil {
		return 0, false
	}
	px, err := l.Pixels()
	if err != nil || px <= 0 {
		return 0, false
	}
	return px, true
}

// UserUnitsPerPixel is the scale from CSS pixels on the page to user units
// of the root coordinate system. Without both a viewBox and an absolute size
// the two coincide. When the aspect ratios differ the smaller scale wins, as
// with the default preserveAspectRatio.
func (d *Document) UserUnitsPerPixel() float64 {
	_, _, vbW, vbH, ok := d.ViewBox()
	if !ok {
		return 1
	}
	w, wok := d.dimension("width")
	h, hok := d.dimension("height")
	switch {
	case wok && hok:
		return 1 / min(w/vbW, h/vbH)
	case wok:
		return vbW / w
	case hok:
		return vbH / h
	default:
		return 1
	}
}

// ViewportToUnit converts a length such as "2mm" to user units of the root
// coordinate system. Percentages are taken of the normalized viewport
// diagonal, sqrt((w²+h²)/2).
func (d *Document) ViewportToUnit(s string) (float64, error) {
	l, err := ParseLength(s)
	if err != nil {
		return 0, err
	}
	if l.Unit == "%" {
		w, h, ok := d.viewportSize()
		if !ok {
			return 0, errors.New(errors.ErrCodeInvalidUnit, "percentage length %q needs a viewBox or width and height", s)
		}
		return l.Value / 100 * math.Sqrt((w*w+h*h)/2), nil
	}
	px, err := l.Pixels()
	if err != nil {
		return 0, err
	}
	return px * d.UserUnitsPerPixel(), nil
}

func (d *Document) viewportSize() (w, h float64, ok bool) {
	if _, _, vw, vh, ok := d.ViewBox(); ok {
		return vw, vh, true
	}
	w, wok := d.dimension("width")
	h, hok := d.dimension("height")
	return w, h, wok && hok
}
