package loguru

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// DefaultFormat is loguru's default verbose format (spec.md §6).
const DefaultFormat = "<green>{time}</green> | <level>{level: <8}</level> | " +
	"<cyan>{name}</cyan>:<cyan>{function}</cyan>:<cyan>{line}</cyan> - <level>{message}</level>"

// TimeLayout is the Go time.Format layout used to render {time}.
const TimeLayout = "2006-01-02 15:04:05.000000 Z07:00"

// compiledFormat is one template, precompiled into literal/placeholder
// segments, for a single level (spec.md §4.2 "Format compilation").
type compiledFormat struct {
	segments []formatSegment
}

type formatSegment struct {
	literal     string
	isPlaceholder bool
	field       string
	subfield    string
	align       byte // '<', '>', '^', or 0 for none
	fill        byte
	width       int
}

// compileFormats precompiles one formatSegment set per registered level,
// resolving markup (including the <level>/<lvl> pseudo-tag) against each
// level's style hint, per the invariant "a handler's compiled format set
// has one entry per registered level" (spec.md §3).
func compileFormats(template string, colored bool) (map[string]*compiledFormat, error) {
	out := make(map[string]*compiledFormat, len(levelRegistry))
	for _, lvl := range registeredLevels() {
		cf, err := compileFormatForLevel(template, colored, lvl)
		if err != nil {
			return nil, err
		}
		out[lvl.Name] = cf
	}
	return out, nil
}

// compileFormatForLevel compiles template against a single level's style,
// used both by compileFormats above and as a lazy fallback (handler.go)
// for custom levels registered after a handler was constructed.
func compileFormatForLevel(template string, colored bool, lvl Level) (*compiledFormat, error) {
	resolved, _, err := parseMarkup(template, colored, levelStyle(lvl))
	if err != nil {
		return nil, &FormatError{Template: template, Err: err}
	}
	segs, err := compileSegments(resolved)
	if err != nil {
		return nil, &FormatError{Template: template, Err: err}
	}
	return &compiledFormat{segments: segs}, nil
}

// parseMarkup resolves <tag>...</tag> markup recursively. The pseudo-tag
// <level>/<lvl> expands to the attributes named in levelStyle. When
// colored is false all markup is stripped instead of rendered (spec.md
// §4.2). It returns the rendered text and how many bytes of s were
// consumed (used internally to detect the matching close tag).
func parseMarkup(s string, colored bool, levelStyleHint string) (string, int, error) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		// Placeholders pass through verbatim, so a format spec such as
		// "{level: <8}" is not mistaken for the start of a tag.
		if s[i] == '{' {
			if end := strings.IndexByte(s[i:], '}'); end >= 0 {
				b.WriteString(s[i : i+end+1])
				i += end + 1
				continue
			}
		}
		if s[i] == '<' {
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				return "", 0, fmt.Errorf("unterminated tag in format template")
			}
			tagRaw := s[i+1 : i+end]
			if strings.HasPrefix(tagRaw, "/") {
				return b.String(), i, nil
			}

			name := strings.ToLower(tagRaw)
			innerStart := i + end + 1
			inner, consumed, err := parseMarkup(s[innerStart:], colored, levelStyleHint)
			if err != nil {
				return "", 0, err
			}
			closeAt := innerStart + consumed
			if closeAt >= len(s) {
				return "", 0, fmt.Errorf("tag <%s> never closed", tagRaw)
			}
			closeEnd := strings.IndexByte(s[closeAt:], '>')
			if closeEnd < 0 {
				return "", 0, fmt.Errorf("tag <%s> never closed", tagRaw)
			}
			closingName := strings.ToLower(strings.TrimPrefix(s[closeAt+1:closeAt+closeEnd], "/"))
			if closingName != name {
				return "", 0, fmt.Errorf("mismatched tag: <%s> closed by </%s>", tagRaw, closingName)
			}

			if colored {
				b.WriteString(renderTag(name, inner, levelStyleHint))
			} else {
				b.WriteString(inner)
			}
			i = closeAt + closeEnd + 1
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String(), i, nil
}

// renderTag wraps inner with the ANSI attributes named by tag, using
// fatih/color as the opaque escape-sequence renderer (spec.md §1).
// Unrecognized tags pass their content through unstyled rather than
// erroring, since the styling helper's tag vocabulary is open-ended.
func renderTag(tag, inner, levelStyleHint string) string {
	var names []string
	if tag == "level" || tag == "lvl" {
		names = extractTagNames(levelStyleHint)
	} else {
		names = []string{tag}
	}

	var attrs []color.Attribute
	for _, n := range names {
		if a, ok := tagAttribute(n); ok {
			attrs = append(attrs, a)
		}
	}
	if len(attrs) == 0 {
		return inner
	}
	// EnableColor overrides fatih/color's global NoColor (set when stdout
	// is not a terminal): the handler's colored flag already decided.
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(inner)
}

// extractTagNames pulls the opening-tag names out of a style hint string
// such as "<red><bold>" (level style hints are a flat sequence of
// opening tags, never closed — see level.go).
func extractTagNames(hint string) []string {
	var names []string
	i := 0
	for i < len(hint) {
		if hint[i] != '<' {
			i++
			continue
		}
		end := strings.IndexByte(hint[i:], '>')
		if end < 0 {
			break
		}
		names = append(names, strings.ToLower(hint[i+1:i+end]))
		i += end + 1
	}
	return names
}

func tagAttribute(name string) (color.Attribute, bool) {
	switch name {
	case "black":
		return color.FgBlack, true
	case "red":
		return color.FgRed, true
	case "green":
		return color.FgGreen, true
	case "yellow":
		return color.FgYellow, true
	case "blue":
		return color.FgBlue, true
	case "magenta":
		return color.FgMagenta, true
	case "cyan":
		return color.FgCyan, true
	case "white":
		return color.FgWhite, true
	case "bg-black":
		return color.BgBlack, true
	case "bg-red":
		return color.BgRed, true
	case "bg-green":
		return color.BgGreen, true
	case "bg-yellow":
		return color.BgYellow, true
	case "bg-blue":
		return color.BgBlue, true
	case "bg-magenta":
		return color.BgMagenta, true
	case "bg-cyan":
		return color.BgCyan, true
	case "bg-white":
		return color.BgWhite, true
	case "bold":
		return color.Bold, true
	case "dim":
		return color.Faint, true
	case "underline":
		return color.Underline, true
	case "italic":
		return color.Italic, true
	case "reverse":
		return color.ReverseVideo, true
	case "strike":
		return color.CrossedOut, true
	default:
		return 0, false
	}
}

// compileSegments parses a markup-resolved template into literal and
// placeholder segments. Placeholder grammar: {field}, {field.subfield},
// or either form followed by ":fmtspec" where fmtspec is an optional
// [fill]align (one of <, >, ^) and a width, e.g. "{level: <8}".
func compileSegments(s string) ([]formatSegment, error) {
	var segs []formatSegment
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			segs = append(segs, formatSegment{literal: literal.String()})
			literal.Reset()
		}
	}

	i := 0
	for i < len(s) {
		if s[i] == '{' {
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated placeholder in format template")
			}
			token := s[i+1 : i+end]
			i += end + 1

			flush()
			seg, err := parsePlaceholder(token)
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
			continue
		}
		literal.WriteByte(s[i])
		i++
	}
	flush()
	return segs, nil
}

var placeholderFields = map[string]map[string]bool{
	"time":     nil,
	"elapsed":  nil,
	"level":    {"no": true, "name": true},
	"message":  nil,
	"name":     nil,
	"file":     {"name": true, "path": true},
	"function": nil,
	"line":     nil,
	"module":   nil,
	"thread":   {"id": true, "name": true},
	"process":  {"id": true, "name": true},
	"exception": nil,
}

func parsePlaceholder(token string) (formatSegment, error) {
	field, spec, _ := strings.Cut(token, ":")
	field, subfield, _ := strings.Cut(field, ".")
	field = strings.TrimSpace(field)
	subfield = strings.TrimSpace(subfield)

	subfields, known := placeholderFields[field]
	if !known {
		return formatSegment{}, fmt.Errorf("unknown placeholder field: %q", field)
	}
	if subfield != "" && !subfields[subfield] {
		return formatSegment{}, fmt.Errorf("unknown subfield %q for field %q", subfield, field)
	}

	seg := formatSegment{isPlaceholder: true, field: field, subfield: subfield, fill: ' '}
	if spec != "" {
		align, fill, width, err := parseFormatSpec(spec)
		if err != nil {
			return formatSegment{}, err
		}
		seg.align, seg.fill, seg.width = align, fill, width
	}
	return seg, nil
}

// parseFormatSpec parses a minimal Python-style format spec: an optional
// [fill]align pair (align in <, >, ^) followed by a decimal width.
func parseFormatSpec(spec string) (align byte, fill byte, width int, err error) {
	fill = ' '
	rest := spec
	if len(spec) >= 2 && isAlign(spec[1]) {
		fill, align, rest = spec[0], spec[1], spec[2:]
	} else if len(spec) >= 1 && isAlign(spec[0]) {
		align, rest = spec[0], spec[1:]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return align, fill, 0, nil
	}
	w, convErr := strconv.Atoi(rest)
	if convErr != nil {
		return 0, 0, 0, fmt.Errorf("invalid format spec width: %q", rest)
	}
	return align, fill, w, nil
}

func isAlign(b byte) bool { return b == '<' || b == '>' || b == '^' }

// render evaluates a compiled format against a record.
func (cf *compiledFormat) render(rec *Record) (string, error) {
	var b strings.Builder
	for _, seg := range cf.segments {
		if !seg.isPlaceholder {
			b.WriteString(seg.literal)
			continue
		}
		val, err := fieldValue(rec, seg.field, seg.subfield)
		if err != nil {
			return "", err
		}
		if seg.width > 0 {
			val = pad(val, seg.width, seg.align, seg.fill)
		}
		b.WriteString(val)
	}
	return b.String(), nil
}

func pad(s string, width int, align byte, fill byte) string {
	n := width - len([]rune(s))
	if n <= 0 {
		return s
	}
	padding := strings.Repeat(string(fill), n)
	switch align {
	case '>':
		return padding + s
	case '^':
		left := n / 2
		right := n - left
		return strings.Repeat(string(fill), left) + s + strings.Repeat(string(fill), right)
	default: // '<' or unset: left-align (loguru's default for strings)
		return s + padding
	}
}

func fieldValue(rec *Record, field, subfield string) (string, error) {
	switch field {
	case "time":
		return rec.Time.Format(TimeLayout), nil
	case "elapsed":
		return rec.Elapsed.String(), nil
	case "level":
		switch subfield {
		case "no":
			return strconv.Itoa(rec.Level.No), nil
		default:
			return rec.Level.Name, nil
		}
	case "message":
		return rec.Message, nil
	case "name":
		return rec.Name, nil
	case "file":
		switch subfield {
		case "path":
			return rec.File.Path, nil
		default:
			return rec.File.Name, nil
		}
	case "function":
		return rec.Function, nil
	case "line":
		return strconv.Itoa(rec.Line), nil
	case "module":
		return rec.Module, nil
	case "thread":
		switch subfield {
		case "id":
			return strconv.FormatInt(rec.Thread.ID, 10), nil
		default:
			return rec.Thread.Name, nil
		}
	case "process":
		switch subfield {
		case "id":
			return strconv.Itoa(rec.Process.ID), nil
		default:
			return rec.Process.Name, nil
		}
	case "exception":
		if rec.Exception == nil {
			return "", nil
		}
		return rec.Exception.Value.Error(), nil
	default:
		return "", fmt.Errorf("unknown placeholder field: %q", field)
	}
}
