package stamp

import (
	"strconv"
	"strings"

	"github.com/matzehuels/scatter/pkg/errors"
)

// Point is a vertex in stamp-local units.
type Point struct{ X, Y float64 }

// ParsePath reads the polygon subset of SVG path data (M, L, H, V, Z in
// absolute and relative form) into closed polygons. Traced stamps only use
// this subset; curves are rejected.
func ParsePath(d string) ([][]Point, error) {
	toks, err := tokenize(d)
	if err != nil {
		return nil, err
	}

	var (
		polys  [][]Point
		cur    []Point
		x, y   float64
		sx, sy float64
		cmd    byte
		args   []float64
	)
	flush := func() {
		if len(cur) > 1 {
			polys = append(polys, cur)
		}
		cur = nil
	}

	for i := 0; i < len(toks); {
		if toks[i].cmd != 0 {
			cmd = toks[i].cmd
			i++
			if cmd == 'Z' || cmd == 'z' {
				x, y = sx, sy
				flush()
				continue
			}
		}
		if cmd == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "path data must start with a command")
		}

		n := arity(cmd)
		if n == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported path command %q", cmd)
		}
		args = args[:0]
		for len(args) < n {
			if i >= len(toks) || toks[i].cmd != 0 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "path command %q expects %d numbers", cmd, n)
			}
			args = append(args, toks[i].num)
			i++
		}

		rel := cmd >= 'a'
		switch cmd {
		case 'M', 'm':
			flush()
			if rel {
				x, y = x+args[0], y+args[1]
			} else {
				x, y = args[0], args[1]
			}
			sx, sy = x, y
			cur = append(cur, Point{x, y})
			// Further pairs after a moveto are implicit linetos.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
			continue
		case 'L':
			x, y = args[0], args[1]
		case 'l':
			x, y = x+args[0], y+args[1]
		case 'H':
			x = args[0]
		case 'h':
			x += args[0]
		case 'V':
			y = args[0]
		case 'v':
			y += args[0]
		}
		cur = append(cur, Point{x, y})
	}
	flush()
	return polys, nil
}

func arity(cmd byte) int {
	switch cmd {
	case 'M', 'm', 'L', 'l':
		return 2
	case 'H', 'h', 'V', 'v':
		return 1
	}
	return 0
}

type token struct {
	cmd byte
	num float64
}

func tokenize(d string) ([]token, error) {
	var toks []token
	for i := 0; i < len(d); {
		c := d[i]
		switch {
		case c == ' ' || c == ',' || c == '\n' || c == '\t' || c == '\r':
			i++
		case isCommand(c):
			toks = append(toks, token{cmd: c})
			i++
		default:
			j := i
			if d[j] == '-' || d[j] == '+' {
				j++
			}
			for j < len(d) && (d[j] >= '0' && d[j] <= '9' || d[j] == '.') {
				j++
			}
			if j == i || (j == i+1 && (d[i] == '-' || d[i] == '+')) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "unexpected %q in path data", c)
			}
			v, err := strconv.ParseFloat(d[i:j], 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad number in path data")
			}
			toks = append(toks, token{num: v})
			i = j
		}
	}
	return toks, nil
}

func isCommand(c byte) bool {
	return strings.IndexByte("MmLlHhVvZzCcSsQqTtAa", c) >= 0
}
