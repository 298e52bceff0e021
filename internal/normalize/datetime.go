// internal/normalize/datetime.go
package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// TimestampFormat is the canonical wire form of every fixture datetime,
// expressed in the configured local timezone with no offset suffix.
const TimestampFormat = "2006-01-02 15:04:05"

// Resolution flags describe how much of a resolved timestamp was reported by
// the source versus filled in by us.
type Resolution uint8

const (
	// YearInferred marks a timestamp whose year was not confirmed by the
	// window search and fell back to the window's start year.
	YearInferred Resolution = 1 << iota
	// TimeDefaulted marks a timestamp whose clock time was unknown and
	// defaulted to 00:00:00.
	TimeDefaulted
)

// Window is the inclusive [From, To] date range fixtures must fall within.
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow builds a window from two instants, keeping only their date parts
// in the given location.
func NewWindow(from, to time.Time, loc *time.Location) Window {
	return Window{From: dateOnly(from.In(loc)), To: dateOnly(to.In(loc))}
}

// Contains reports whether the date part of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(w.From) && !d.After(w.To)
}

// Years returns the distinct years spanned by the window in ascending order.
func (w Window) Years() []int {
	years := []int{w.From.Year()}
	if w.To.Year() != w.From.Year() {
		years = append(years, w.To.Year())
	}
	sort.Ints(years)
	return years
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var (
	dateTokenPattern = regexp.MustCompile(`(\d{1,2})[./](\d{1,2})`)
	isoDatePattern   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	timeTokenPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// timestampLayouts are tried in order for fully-qualified timestamp strings.
// Layouts without a zone are interpreted in the resolver's location.
var timestampLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339, true},
	{"2006-01-02T15:04:05Z0700", true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04", false},
	{"2006-01-02", false},
	{"02/01/2006 15:04", false},
}

// DateTimeResolver converts source-reported timestamps and partial date/time
// tokens into instants localized to one fixed timezone.
type DateTimeResolver struct {
	loc *time.Location
}

// NewDateTimeResolver creates a resolver for the given local timezone.
func NewDateTimeResolver(loc *time.Location) *DateTimeResolver {
	if loc == nil {
		loc = time.UTC
	}
	return &DateTimeResolver{loc: loc}
}

// Location returns the resolver's configured timezone.
func (r *DateTimeResolver) Location() *time.Location {
	return r.loc
}

// ResolveTimestamp parses a fully-qualified timestamp string. Zoned values are
// converted into the local timezone; naive values have the local zone attached
// without shifting the reported clock time.
func (r *DateTimeResolver) ResolveTimestamp(value string) (time.Time, error) {
	for _, candidate := range timestampLayouts {
		t, err := time.ParseInLocation(candidate.layout, value, r.loc)
		if err != nil {
			continue
		}
		if candidate.zoned {
			return t.In(r.loc), nil
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// ResolveTokens reconstructs a full timestamp from a partial day/month date
// token and an optional HH:MM time token. The year is searched across the
// window's distinct years in order; the first candidate whose date falls
// inside the window wins. When no candidate fits, the window's start year is
// used and the result is flagged YearInferred rather than failed.
func (r *DateTimeResolver) ResolveTokens(dateToken, timeToken string, win Window) (time.Time, Resolution, error) {
	var res Resolution

	hour, minute, ok := parseTimeToken(timeToken)
	if !ok {
		res |= TimeDefaulted
	}

	if m := isoDatePattern.FindStringSubmatch(dateToken); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		t, err := r.makeDate(year, month, day, hour, minute)
		return t, res, err
	}

	m := dateTokenPattern.FindStringSubmatch(dateToken)
	if m == nil {
		return time.Time{}, 0, fmt.Errorf("unrecognized date token %q", dateToken)
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])

	for _, year := range win.Years() {
		t, err := r.makeDate(year, month, day, hour, minute)
		if err != nil {
			continue
		}
		if win.Contains(t) {
			return t, res, nil
		}
	}

	t, err := r.makeDate(win.From.Year(), month, day, hour, minute)
	if err != nil {
		return time.Time{}, 0, err
	}
	res |= YearInferred
	return t, res, nil
}

// Format renders a resolved instant in the canonical wire form.
func (r *DateTimeResolver) Format(t time.Time) string {
	return t.In(r.loc).Format(TimestampFormat)
}

// Renormalize reparses a canonical datetime string and reformats it, used when
// the downstream sink rejects a batch over a malformed datetime.
func (r *DateTimeResolver) Renormalize(value string) (string, error) {
	t, err := r.ResolveTimestamp(value)
	if err != nil {
		return "", err
	}
	return r.Format(t), nil
}

// makeDate builds a local instant, rejecting impossible calendar dates that
// time.Date would silently roll over.
func (r *DateTimeResolver) makeDate(year, month, day, hour, minute int) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid date %02d/%02d", day, month)
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, r.loc)
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, fmt.Errorf("invalid date %02d/%02d/%04d", day, month, year)
	}
	return t, nil
}

func parseTimeToken(token string) (hour, minute int, ok bool) {
	m := timeTokenPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	// "00:00" comes from sources that render a placeholder when the kickoff
	// time is not yet published; treat it the same as missing.
	if hour == 0 && minute == 0 {
		return 0, 0, false
	}
	return hour, minute, true
}
