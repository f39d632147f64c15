package scenario

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"asepower/domain/core"
)

// Field tags used in scenario filenames and comparison identifiers.
const (
	TagTheta        = "theta"
	TagTheta1       = "theta1"
	TagTheta2       = "theta2"
	TagRsimG1       = "rsim-g1"
	TagRsimG2       = "rsim-g2"
	TagNBiorep      = "nbiorep"
	TagAllelicReads = "allelicreads"
	TagSimRuns      = "simruns"

	setPrefix = "out_set_"
	separator = "_"
)

var knownTags = map[string]bool{
	TagTheta:        true,
	TagTheta1:       true,
	TagTheta2:       true,
	TagRsimG1:       true,
	TagRsimG2:       true,
	TagNBiorep:      true,
	TagAllelicReads: true,
	TagSimRuns:      true,
}

var knownExtensions = []string{".tsv", ".csv", ".txt"}

// Encode renders k as the per-condition simulation name for replicate set.
// The condition tag is not part of the name.
func Encode(k Key, set int) string {
	return setPrefix + strconv.Itoa(set) + separator + joinTags(
		TagTheta, formatFloat(k.Theta),
		TagRsimG1, formatFloat(k.RsimG1),
		TagRsimG2, formatFloat(k.RsimG2),
		TagNBiorep, strconv.Itoa(k.NBiorep),
		TagAllelicReads, strconv.Itoa(k.AllelicReads),
		TagSimRuns, strconv.Itoa(k.SimRuns),
	)
}

// FileName is Encode with the .tsv extension the simulator writes.
func FileName(k Key, set int) string {
	return Encode(k, set) + ".tsv"
}

// MergedName is the file name of a merged comparison dataset. Its stem is
// the comparison identifier the fitting engine copies into its output.
func MergedName(c Comparison) string {
	return comparisonStem(c) + ".tsv"
}

func comparisonStem(c Comparison) string {
	return joinTags(
		TagTheta1, formatFloat(c.Theta1),
		TagTheta2, formatFloat(c.Theta2),
		TagRsimG1, formatFloat(c.RsimG1),
		TagRsimG2, formatFloat(c.RsimG2),
		TagNBiorep, strconv.Itoa(c.NBiorep),
		TagAllelicReads, strconv.Itoa(c.AllelicReads),
		TagSimRuns, strconv.Itoa(c.SimRuns),
	)
}

// Decode parses a per-condition simulation name (bare, with a directory,
// with or without extension and out_set prefix) into a Key.
func Decode(s string) (Key, error) {
	k, _, err := ParseName(s)
	return k, err
}

// ParseName is Decode that also returns the replicate-set index, 0 when the
// name carries no out_set prefix.
func ParseName(s string) (Key, int, error) {
	f, err := tokenize(s)
	if err != nil {
		return Key{}, 0, err
	}
	if f.has(TagTheta1) || f.has(TagTheta2) {
		return Key{}, 0, core.NewMalformedKeyError(s, "per-condition name carries theta1/theta2")
	}
	k, err := f.key(s)
	if err != nil {
		return Key{}, 0, err
	}
	return k, f.set, nil
}

// DecodeComparison parses a comparison identifier. Identifiers carrying
// theta1 and theta2 decode on their own; identifiers carrying a single theta
// belong to cond, and the other condition takes the null theta.
func DecodeComparison(s string, cond Condition) (Comparison, error) {
	f, err := tokenize(s)
	if err != nil {
		return Comparison{}, err
	}

	if f.has(TagTheta1) || f.has(TagTheta2) {
		if f.has(TagTheta) {
			return Comparison{}, core.NewMalformedKeyError(s, "theta mixed with theta1/theta2")
		}
		if !f.has(TagRsimG1) || !f.has(TagRsimG2) {
			return Comparison{}, core.NewMalformedKeyError(s, "missing rsim-g1/rsim-g2")
		}
		theta1, err := f.float(s, TagTheta1)
		if err != nil {
			return Comparison{}, err
		}
		theta2, err := f.float(s, TagTheta2)
		if err != nil {
			return Comparison{}, err
		}
		f.values[TagTheta] = f.values[TagTheta1]
		k, err := f.key(s)
		if err != nil {
			return Comparison{}, err
		}
		c, _ := NewComparison(k, k)
		c.Theta1, c.Theta2 = theta1, theta2
		return c, nil
	}

	if !cond.Valid() {
		return Comparison{}, core.NewMalformedKeyError(s, "single-theta identifier needs a condition")
	}
	k, err := f.key(s)
	if err != nil {
		return Comparison{}, err
	}
	null := k
	null.Theta = NullTheta
	if cond == Condition1 {
		return NewComparison(k, null)
	}
	return NewComparison(null, k)
}

var conditionDirPattern = regexp.MustCompile(`(?i)^(?:h|c|condition|comparate)_?([12])(?:$|_)`)

// ConditionFromDir infers the comparate from a directory name such as
// H1_null, H2_not_null, c2 or condition_1. Combined comparison directories
// (H1_..._H2_..._H3_...) carry both conditions and return ConditionUnset.
func ConditionFromDir(dir string) Condition {
	base := filepath.Base(filepath.Clean(dir))
	if strings.Contains(base, "_H2_") || strings.Contains(base, "_H3_") {
		return ConditionUnset
	}
	m := conditionDirPattern.FindStringSubmatch(base)
	if m == nil {
		return ConditionUnset
	}
	if m[1] == "1" {
		return Condition1
	}
	return Condition2
}

type fields struct {
	values map[string]string
	set    int
}

func tokenize(s string) (*fields, error) {
	name := filepath.Base(strings.TrimSpace(s))
	for _, ext := range knownExtensions {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" || name == "." {
		return nil, core.NewMalformedKeyError(s, "empty name")
	}

	f := &fields{values: make(map[string]string)}
	if strings.HasPrefix(name, setPrefix) {
		rest := strings.TrimPrefix(name, setPrefix)
		idx := strings.Index(rest, separator)
		if idx <= 0 {
			return nil, core.NewMalformedKeyError(s, "out_set prefix without set index")
		}
		set, err := strconv.Atoi(rest[:idx])
		if err != nil || set <= 0 {
			return nil, core.NewMalformedKeyError(s, fmt.Sprintf("invalid set index %q", rest[:idx]))
		}
		f.set = set
		name = rest[idx+1:]
	}

	tokens := strings.Split(name, separator)
	if len(tokens)%2 != 0 {
		return nil, core.NewMalformedKeyError(s, "tags and values do not alternate")
	}
	for i := 0; i < len(tokens); i += 2 {
		tag, value := tokens[i], tokens[i+1]
		if !knownTags[tag] {
			return nil, core.NewMalformedKeyError(s, fmt.Sprintf("unknown tag %q", tag))
		}
		if value == "" {
			return nil, core.NewMalformedKeyError(s, fmt.Sprintf("empty value for %q", tag))
		}
		if _, dup := f.values[tag]; dup {
			return nil, core.NewMalformedKeyError(s, fmt.Sprintf("duplicate tag %q", tag))
		}
		f.values[tag] = value
	}
	return f, nil
}

func (f *fields) has(tag string) bool {
	_, ok := f.values[tag]
	return ok
}

func (f *fields) float(s, tag string) (float64, error) {
	raw, ok := f.values[tag]
	if !ok {
		return 0, core.NewMalformedKeyError(s, fmt.Sprintf("missing tag %q", tag))
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !finite(v) {
		return 0, core.NewMalformedKeyError(s, fmt.Sprintf("%s value %q is not a number", tag, raw))
	}
	return v, nil
}

func (f *fields) int(s, tag string) (int, error) {
	raw, ok := f.values[tag]
	if !ok {
		return 0, core.NewMalformedKeyError(s, fmt.Sprintf("missing tag %q", tag))
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewMalformedKeyError(s, fmt.Sprintf("%s value %q is not an integer", tag, raw))
	}
	return v, nil
}

func (f *fields) floatOr(s, tag string, fallback float64) (float64, error) {
	if !f.has(tag) {
		return fallback, nil
	}
	return f.float(s, tag)
}

// key builds a Key from the theta tag and the shared tags.
func (f *fields) key(s string) (Key, error) {
	var (
		k   Key
		err error
	)
	if k.Theta, err = f.float(s, TagTheta); err != nil {
		return Key{}, err
	}
	if k.RsimG1, err = f.floatOr(s, TagRsimG1, DefaultMappingRate); err != nil {
		return Key{}, err
	}
	if k.RsimG2, err = f.floatOr(s, TagRsimG2, DefaultMappingRate); err != nil {
		return Key{}, err
	}
	if k.NBiorep, err = f.int(s, TagNBiorep); err != nil {
		return Key{}, err
	}
	if k.AllelicReads, err = f.int(s, TagAllelicReads); err != nil {
		return Key{}, err
	}
	if k.SimRuns, err = f.int(s, TagSimRuns); err != nil {
		return Key{}, err
	}
	return k, nil
}

func joinTags(pairs ...string) string {
	return strings.Join(pairs, separator)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
