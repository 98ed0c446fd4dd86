package loguru

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RotationPolicy decides whether a file sink should roll over before
// writing the next message (spec.md §5: size, duration, frequency,
// daytime, and callable triggers).
type RotationPolicy interface {
	ShouldRotate(recordTime time.Time, currentSize, messageLen int64) bool
}

type rotationFunc func(recordTime time.Time, currentSize, messageLen int64) bool

func (f rotationFunc) ShouldRotate(t time.Time, size, msgLen int64) bool { return f(t, size, msgLen) }

// RetentionPolicy decides which already-rotated backup files to delete
// during a rotation (spec.md §5).
type RetentionPolicy interface {
	Prune(logs []os.FileInfo) []os.FileInfo
}

type retentionFunc func(logs []os.FileInfo) []os.FileInfo

func (f retentionFunc) Prune(logs []os.FileInfo) []os.FileInfo { return f(logs) }

// sizeRotationLimit is a byte count that NewRotationPolicy (and so
// WithRotation) accepts instead of a free-form string.
type sizeRotationLimit float64

// NewRotationPolicy builds a RotationPolicy from any of the forms
// spec.md §5 allows: nil (never rotate), a string ("500 MB", "1 week",
// "daily", "monday at 12:00"), a byte count, a time.Duration, a
// time.Time used only for its clock fields (daily-at-this-time), or a
// func(time.Time) time.Time callable computing the next rotation time
// from the current one. It mirrors loguru's make_should_rotate_function
// dispatch (original_source/loguru/__init__.py).
func NewRotationPolicy(spec interface{}, start time.Time) (RotationPolicy, time.Time, error) {
	switch v := spec.(type) {
	case nil:
		return nil, time.Time{}, nil
	case string:
		return rotationFromString(v, start)
	case int:
		return rotationFromSize(float64(v)), time.Time{}, nil
	case int64:
		return rotationFromSize(float64(v)), time.Time{}, nil
	case float64:
		return rotationFromSize(v), time.Time{}, nil
	case sizeRotationLimit:
		return rotationFromSize(float64(v)), time.Time{}, nil
	case time.Time:
		limit := nextDaytime(start, nil, clockOf(v))
		return dayTimePolicy(nil, clockOf(v), limit), limit, nil
	case time.Duration:
		limit := start.Add(v)
		return intervalPolicy(v, limit), limit, nil
	case func(time.Time) time.Time:
		limit := v(start)
		return callableRotationPolicy(v, limit), limit, nil
	case RotationPolicy:
		return v, time.Time{}, nil
	default:
		return nil, time.Time{}, &ConfigError{Op: "rotation", Err: fmt.Errorf("cannot infer rotation from %T", spec)}
	}
}

func rotationFromSize(limit float64) RotationPolicy {
	return rotationFunc(func(_ time.Time, size, msgLen int64) bool {
		return float64(size+msgLen) >= limit
	})
}

func rotationFromString(spec string, start time.Time) (RotationPolicy, time.Time, error) {
	if bytes, ok := parseSize(spec); ok {
		return rotationFromSize(bytes), time.Time{}, nil
	}
	if d, ok, err := parseDuration(spec); ok {
		if err != nil {
			return nil, time.Time{}, &ConfigError{Op: "rotation", Err: err}
		}
		limit := start.Add(d)
		return intervalPolicy(d, limit), limit, nil
	}
	if freq, ok := parseFrequency(spec); ok {
		return rotationFromFrequency(freq, start)
	}
	if weekday, clock, ok, err := parseDaytime(spec); ok {
		if err != nil {
			return nil, time.Time{}, &ConfigError{Op: "rotation", Err: err}
		}
		c := clockOf(time.Time{})
		if clock != nil {
			c = *clock
		}
		limit := nextDaytime(start, weekday, c)
		return dayTimePolicy(weekday, c, limit), limit, nil
	}
	return nil, time.Time{}, &ConfigError{Op: "rotation", Err: fmt.Errorf("cannot parse rotation from %q", spec)}
}

func rotationFromFrequency(freq *frequencySpec, start time.Time) (RotationPolicy, time.Time, error) {
	if freq.fn != nil {
		limit := freq.fn(start)
		return callableRotationPolicy(freq.fn, limit), limit, nil
	}
	return rotationFromString(freq.daytime, start)
}

func callableRotationPolicy(next func(time.Time) time.Time, initial time.Time) RotationPolicy {
	limit := initial
	return rotationFunc(func(recordTime time.Time, _, _ int64) bool {
		if recordTime.Before(limit) {
			return false
		}
		limit = next(recordTime)
		return true
	})
}

func intervalPolicy(d time.Duration, initial time.Time) RotationPolicy {
	limit := initial
	return rotationFunc(func(recordTime time.Time, _, _ int64) bool {
		if recordTime.Before(limit) {
			return false
		}
		for !limit.After(recordTime) {
			limit = limit.Add(d)
		}
		return true
	})
}

func dayTimePolicy(weekday *time.Weekday, clock clockTime, initial time.Time) RotationPolicy {
	limit := initial
	return rotationFunc(func(recordTime time.Time, _, _ int64) bool {
		if recordTime.Before(limit) {
			return false
		}
		for !limit.After(recordTime) {
			limit = nextDaytime(limit, weekday, clock)
		}
		return true
	})
}

// NewRetentionPolicy builds a RetentionPolicy from the forms spec.md §5
// allows: nil, a count, a duration/"age" string, a time.Duration, or a
// func([]os.FileInfo) []os.FileInfo callable (mirrors
// make_manage_backups_function).
func NewRetentionPolicy(spec interface{}) (RetentionPolicy, error) {
	switch v := spec.(type) {
	case nil:
		return nil, nil
	case int:
		return retentionByCount(v), nil
	case time.Duration:
		return retentionByAge(v), nil
	case string:
		d, ok, err := parseDuration(v)
		if err != nil {
			return nil, &ConfigError{Op: "retention", Err: err}
		}
		if !ok {
			return nil, &ConfigError{Op: "retention", Err: fmt.Errorf("cannot parse retention from %q", v)}
		}
		return retentionByAge(d), nil
	case func([]os.FileInfo) []os.FileInfo:
		return retentionFunc(v), nil
	case RetentionPolicy:
		return v, nil
	default:
		return nil, &ConfigError{Op: "retention", Err: fmt.Errorf("cannot infer retention from %T", spec)}
	}
}

func retentionByCount(keep int) RetentionPolicy {
	return retentionFunc(func(logs []os.FileInfo) []os.FileInfo {
		sorted := append([]os.FileInfo(nil), logs...)
		sort.Slice(sorted, func(i, j int) bool {
			if !sorted[i].ModTime().Equal(sorted[j].ModTime()) {
				return sorted[i].ModTime().After(sorted[j].ModTime())
			}
			return sorted[i].Name() < sorted[j].Name()
		})
		if keep >= len(sorted) {
			return nil
		}
		return sorted[keep:]
	})
}

func retentionByAge(d time.Duration) RetentionPolicy {
	return retentionFunc(func(logs []os.FileInfo) []os.FileInfo {
		cutoff := time.Now().Add(-d)
		var stale []os.FileInfo
		for _, log := range logs {
			if !log.ModTime().After(cutoff) {
				stale = append(stale, log)
			}
		}
		return stale
	})
}

// clockTime is the hour/minute/second/nanosecond part of a daytime
// rotation spec, Go's analogue of a bare datetime.time.
type clockTime struct {
	hour, min, sec, nsec int
}

func clockOf(t time.Time) clockTime {
	return clockTime{t.Hour(), t.Minute(), t.Second(), t.Nanosecond()}
}

// nextDaytime returns the first instant strictly after 'after' that has
// the given clock time and (if weekday is non-nil) falls on that
// weekday.
func nextDaytime(after time.Time, weekday *time.Weekday, clock clockTime) time.Time {
	candidate := time.Date(after.Year(), after.Month(), after.Day(),
		clock.hour, clock.min, clock.sec, clock.nsec, after.Location())
	for {
		if (weekday == nil || candidate.Weekday() == *weekday) && candidate.After(after) {
			return candidate
		}
		candidate = candidate.AddDate(0, 0, 1)
	}
}

// --- parsing -----------------------------------------------------------

var sizeRE = regexp.MustCompile(`(?i)^([e+\-.\d]+)\s*([kmgtpezy])?(i)?(b)$`)

// parseSize parses strings like "500 MB", "1GiB", "10kb" into a byte
// count, distinguishing bit/byte and binary/decimal multipliers
// (mirrors parse_size in original_source/loguru/__init__.py).
func parseSize(s string) (float64, bool) {
	m := sizeRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	unit := 0
	if m[2] != "" {
		unit = strings.Index("kmgtpezy", strings.ToLower(m[2])) + 1
	}
	base := 1000.0
	if m[3] != "" {
		base = 1024.0
	}
	bitsPerUnit := 1.0
	if m[4] == "b" {
		bitsPerUnit = 8.0
	}
	size := value * pow(base, unit) / bitsPerUnit
	return size, true
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

var (
	durationTermRE = regexp.MustCompile(`(?i)([e+\-.\d]+)\s*([a-z]+)[\s,]*`)
	durationFullRE = regexp.MustCompile(`(?i)^(?:[e+\-.\d]+\s*[a-z]+[\s,]*)+$`)
)

var durationUnits = []struct {
	re   *regexp.Regexp
	secs float64
}{
	{regexp.MustCompile(`(?i)^(y|years?)$`), 31536000},
	{regexp.MustCompile(`(?i)^(mo|months?)$`), 2628000},
	{regexp.MustCompile(`(?i)^(w|weeks?)$`), 604800},
	{regexp.MustCompile(`(?i)^(d|days?)$`), 86400},
	{regexp.MustCompile(`(?i)^(h|hours?)$`), 3600},
	{regexp.MustCompile(`(?i)^(m|minutes?)$`), 60},
	{regexp.MustCompile(`(?i)^(s|seconds?)$`), 1},
	{regexp.MustCompile(`(?i)^(ms|milliseconds?)$`), 0.001},
	{regexp.MustCompile(`(?i)^(us|microseconds?)$`), 0.000001},
}

// parseDuration parses strings like "1 week, 3 days" or "1h30m" into a
// time.Duration (mirrors parse_duration).
func parseDuration(s string) (time.Duration, bool, error) {
	s = strings.TrimSpace(s)
	if !durationFullRE.MatchString(s) {
		return 0, false, nil
	}

	var seconds float64
	for _, m := range durationTermRE.FindAllStringSubmatch(s, -1) {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, true, fmt.Errorf("invalid float value while parsing duration: %q", m[1])
		}
		unit, ok := matchDurationUnit(m[2])
		if !ok {
			// An unknown unit (e.g. "MB") means this is not a duration.
			return 0, false, nil
		}
		seconds += value * unit
	}
	return time.Duration(seconds * float64(time.Second)), true, nil
}

func matchDurationUnit(token string) (float64, bool) {
	for _, u := range durationUnits {
		if u.re.MatchString(token) {
			return u.secs, true
		}
	}
	return 0, false
}

type frequencySpec struct {
	fn      func(time.Time) time.Time
	daytime string
}

// parseFrequency resolves the named rotation frequencies (mirrors
// parse_frequency).
func parseFrequency(s string) (*frequencySpec, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hourly":
		return &frequencySpec{fn: func(t time.Time) time.Time {
			t = t.Add(time.Hour)
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
		}}, true
	case "daily":
		return &frequencySpec{daytime: "00:00"}, true
	case "weekly":
		return &frequencySpec{daytime: "w0"}, true
	case "monthly":
		return &frequencySpec{fn: func(t time.Time) time.Time {
			t = t.AddDate(0, 1, 0)
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		}}, true
	case "yearly":
		return &frequencySpec{fn: func(t time.Time) time.Time {
			t = t.AddDate(1, 0, 0)
			return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
		}}, true
	default:
		return nil, false
	}
}

var (
	daytimeWithAtRE = regexp.MustCompile(`(?i)^(.*?)\s+at\s+(.*)$`)
	dayIndexRE      = regexp.MustCompile(`(?i)^w(\d+)$`)
	clockRE         = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
)

var weekdayNames = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// parseDaytime parses "<day>? at? <time>" rotation specs, e.g. "10:00",
// "w0", "monday", or "saturday at 12:00" (mirrors parse_daytime).
func parseDaytime(s string) (*time.Weekday, *clockTime, bool, error) {
	s = strings.TrimSpace(s)

	var dayTok, timeTok string
	hasDay, hasTime := false, false

	if m := daytimeWithAtRE.FindStringSubmatch(s); m != nil {
		dayTok, timeTok = m[1], m[2]
		hasDay, hasTime = true, true
	} else if clockRE.MatchString(s) {
		timeTok = s
		hasTime = true
	} else if dayIndexRE.MatchString(s) || isWeekdayName(s) {
		dayTok = s
		hasDay = true
	} else {
		return nil, nil, false, nil
	}

	var weekday *time.Weekday
	if hasDay {
		wd, err := parseWeekdayToken(dayTok)
		if err != nil {
			return nil, nil, true, err
		}
		weekday = wd
	}

	var clock *clockTime
	if hasTime {
		c, err := parseClockToken(timeTok)
		if err != nil {
			return nil, nil, true, err
		}
		clock = c
	} else {
		clock = &clockTime{}
	}

	return weekday, clock, true, nil
}

func isWeekdayName(s string) bool {
	up := strings.ToUpper(s)
	for _, n := range weekdayNames {
		if n == up {
			return true
		}
	}
	return false
}

func parseWeekdayToken(tok string) (*time.Weekday, error) {
	if m := dayIndexRE.FindStringSubmatch(tok); m != nil {
		idx, _ := strconv.Atoi(m[1])
		if idx < 0 || idx > 6 {
			return nil, fmt.Errorf("invalid weekday index while parsing daytime: %d", idx)
		}
		wd := goWeekday(idx)
		return &wd, nil
	}
	up := strings.ToUpper(tok)
	for i, n := range weekdayNames {
		if n == up {
			wd := goWeekday(i)
			return &wd, nil
		}
	}
	return nil, fmt.Errorf("invalid weekday value while parsing daytime: %q", tok)
}

// goWeekday maps loguru's Monday-first index (0=Monday..6=Sunday) onto
// time.Weekday (0=Sunday..6=Saturday).
func goWeekday(mondayFirst int) time.Weekday {
	return time.Weekday((mondayFirst + 1) % 7)
}

func parseClockToken(tok string) (*clockTime, error) {
	m := clockRE.FindStringSubmatch(strings.TrimSpace(tok))
	if m == nil {
		return nil, fmt.Errorf("invalid time while parsing daytime: %q", tok)
	}
	hour, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec := 0
	if m[3] != "" {
		sec, _ = strconv.Atoi(m[3])
	}
	if hour > 23 || min > 59 || sec > 59 {
		return nil, fmt.Errorf("invalid time while parsing daytime: %q", tok)
	}
	return &clockTime{hour: hour, min: min, sec: sec}, nil
}
