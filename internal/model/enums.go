package model

import (
	"fmt"
	"strings"
)

// Group is a statistical operation under comparison.
type Group int

// Groups in declaration order. Runs and sorted output follow this order.
const (
	GroupMean Group = iota
	GroupSum
	GroupVar
	GroupStd
	GroupMax
	GroupMin
	GroupMedian
	GroupRank
	GroupSkew
	GroupKurt
	groupCount
)

var groupTags = [groupCount]string{"mean", "sum", "var", "std", "max", "min", "median", "rank", "skew", "kurt"}

var groupLabels = [groupCount]string{"Mean", "Sum", "Variance", "Std Dev", "Max", "Min", "Median", "Rank", "Skewness", "Kurtosis"}

// Groups returns every group in declaration order.
func Groups() []Group {
	out := make([]Group, groupCount)
	for i := range out {
		out[i] = Group(i)
	}
	return out
}

// Valid reports whether g belongs to the closed set.
func (g Group) Valid() bool {
	return g >= 0 && g < groupCount
}

// String returns the tag used in persisted records.
func (g Group) String() string {
	if !g.Valid() {
		return fmt.Sprintf("group(%d)", int(g))
	}
	return groupTags[g]
}

// Label returns a display label.
func (g Group) Label() string {
	if !g.Valid() {
		return g.String()
	}
	return groupLabels[g]
}

// ParseGroup resolves a tag such as "median".
func ParseGroup(tag string) (Group, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for i, t := range groupTags {
		if t == tag {
			return Group(i), nil
		}
	}
	return 0, fmt.Errorf("unknown group %q (available: %s)", tag, strings.Join(groupTags[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (g Group) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid group %d", int(g))
	}
	return []byte(groupTags[g]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Group) UnmarshalText(text []byte) error {
	parsed, err := ParseGroup(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Library identifies one candidate implementation being timed.
type Library int

// Libraries in declaration order.
const (
	LibraryNaive Library = iota
	LibraryRolling
	LibraryRollingParallel
	LibraryMoremath
	LibraryFrame
	libraryCount
)

var libraryTags = [libraryCount]string{"naive", "rolling", "rolling_parallel", "moremath", "frame"}

var libraryLabels = [libraryCount]string{"Naive", "Rolling", "Rolling (parallel)", "go-moremath", "Frame"}

// Libraries returns every library in declaration order.
func Libraries() []Library {
	out := make([]Library, libraryCount)
	for i := range out {
		out[i] = Library(i)
	}
	return out
}

// Valid reports whether l belongs to the closed set.
func (l Library) Valid() bool {
	return l >= 0 && l < libraryCount
}

// String returns the tag used in persisted records.
func (l Library) String() string {
	if !l.Valid() {
		return fmt.Sprintf("library(%d)", int(l))
	}
	return libraryTags[l]
}

// Label returns a display label.
func (l Library) Label() string {
	if !l.Valid() {
		return l.String()
	}
	return libraryLabels[l]
}

// ParseLibrary resolves a tag such as "rolling_parallel".
func ParseLibrary(tag string) (Library, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for i, t := range libraryTags {
		if t == tag {
			return Library(i), nil
		}
	}
	return 0, fmt.Errorf("unknown library %q (available: %s)", tag, strings.Join(libraryTags[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (l Library) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid library %d", int(l))
	}
	return []byte(libraryTags[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Library) UnmarshalText(text []byte) error {
	parsed, err := ParseLibrary(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Comparison identifies one of the fixed baseline/candidate differences
// reported by relative deltas.
type Comparison int

// Comparisons and the (minuend, subtrahend) libraries they subtract.
const (
	ComparisonNaiveVsRolling Comparison = iota
	ComparisonMoremathVsParallel
	ComparisonFrameVsParallel
	comparisonCount
)

var comparisonTags = [comparisonCount]string{"naive_vs_rolling", "moremath_vs_parallel", "frame_vs_parallel"}

var comparisonPairs = [comparisonCount][2]Library{
	{LibraryNaive, LibraryRolling},
	{LibraryMoremath, LibraryRollingParallel},
	{LibraryFrame, LibraryRollingParallel},
}

// Comparisons returns every comparison in declaration order.
func Comparisons() []Comparison {
	out := make([]Comparison, comparisonCount)
	for i := range out {
		out[i] = Comparison(i)
	}
	return out
}

// Pair returns the libraries subtracted by c: baseline minus candidate.
func (c Comparison) Pair() (baseline, candidate Library) {
	p := comparisonPairs[c]
	return p[0], p[1]
}

// String returns the comparison identifier.
func (c Comparison) String() string {
	if c < 0 || c >= comparisonCount {
		return fmt.Sprintf("comparison(%d)", int(c))
	}
	return comparisonTags[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c Comparison) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Mode selects the benchmark suite.
type Mode string

// Suites.
const (
	ModeRolling Mode = "rolling"
	ModeAgg     Mode = "agg"
)

// ParseMode validates a suite name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeRolling:
		return ModeRolling, nil
	case ModeAgg:
		return ModeAgg, nil
	default:
		return "", fmt.Errorf("unknown mode %q (use rolling or agg)", s)
	}
}
