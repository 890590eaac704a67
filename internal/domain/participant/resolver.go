package participant

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Resolver derives the user id of a session from the path of its interval
// log. Sessions live under <root>/<user>/<date>/.
type Resolver interface {
	Resolve(logPath string) (int64, error)
}

// Strategy names accepted by NewResolver.
const (
	StrategyOffset    = "offset"
	StrategyPattern   = "pattern"
	StrategyDirectory = "directory"
)

// Default offset extraction: four characters after a five character prefix,
// as in "örnek1013_2024-01-01.txt".
const (
	DefaultOffset = 5
	DefaultLength = 4
)

// NewResolver builds the resolver for a configured strategy. An empty
// strategy selects the offset resolver.
func NewResolver(strategy string, offset, length int, pattern string) (Resolver, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyOffset:
		if length <= 0 {
			offset, length = DefaultOffset, DefaultLength
		}
		if offset < 0 {
			return nil, fmt.Errorf("%w: negative offset %d", ErrUnknownStrategy, offset)
		}
		return OffsetResolver{Offset: offset, Length: length}, nil
	case StrategyPattern:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling user id pattern: %w", err)
		}
		if re.NumSubexp() != 1 {
			return nil, fmt.Errorf("user id pattern %q must have exactly one group", pattern)
		}
		return PatternResolver{Pattern: re}, nil
	case StrategyDirectory:
		return DirectoryResolver{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// OffsetResolver takes Length characters starting at Offset of the file
// name. Names are NFC-normalized first so composed and decomposed spellings
// of the same prefix count the same number of characters.
type OffsetResolver struct {
	Offset int
	Length int
}

func (r OffsetResolver) Resolve(logPath string) (int64, error) {
	name := []rune(norm.NFC.String(filepath.Base(logPath)))
	if r.Offset+r.Length > len(name) {
		return 0, fmt.Errorf("%w: %q is shorter than %d characters", ErrUserID, filepath.Base(logPath), r.Offset+r.Length)
	}
	return parseID(string(name[r.Offset:r.Offset+r.Length]), logPath)
}

// PatternResolver takes the single capture group of Pattern matched against
// the file name.
type PatternResolver struct {
	Pattern *regexp.Regexp
}

func (r PatternResolver) Resolve(logPath string) (int64, error) {
	name := norm.NFC.String(filepath.Base(logPath))
	m := r.Pattern.FindStringSubmatch(name)
	if len(m) < 2 {
		return 0, fmt.Errorf("%w: %q does not match %s", ErrUserID, name, r.Pattern)
	}
	return parseID(m[1], logPath)
}

// DirectoryResolver uses the name of the user folder two levels above the log.
type DirectoryResolver struct{}

func (DirectoryResolver) Resolve(logPath string) (int64, error) {
	return parseID(filepath.Base(filepath.Dir(filepath.Dir(logPath))), logPath)
}

func parseID(token, logPath string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: token %q from %s is not a positive integer", ErrUserID, token, logPath)
	}
	return id, nil
}
