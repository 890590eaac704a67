package timeline

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ganot/hrv-ingest/internal/failure"
)

// ParseLog reads an interval log: a start timestamp on the first line, then
// one non-negative millisecond interval per non-blank line. The origin is
// interpreted in loc (UTC when nil).
func ParseLog(source string, r io.Reader, loc *time.Location) (IntervalLog, error) {
	if loc == nil {
		loc = time.UTC
	}
	log := IntervalLog{Source: source}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
			origin, err := time.ParseInLocation(OriginLayout, line, loc)
			if err != nil {
				return IntervalLog{}, &failure.ParseError{Source: source, Line: lineNo, Input: line, Err: ErrMalformedOrigin}
			}
			log.Origin = origin
			continue
		}
		if line == "" {
			continue
		}
		gap, err := strconv.Atoi(line)
		if err != nil || gap < 0 {
			return IntervalLog{}, &failure.ParseError{Source: source, Line: lineNo, Input: line, Err: ErrMalformedGap}
		}
		log.Gaps = append(log.Gaps, gap)
	}
	if err := scanner.Err(); err != nil {
		return IntervalLog{}, fmt.Errorf("reading %s: %w", source, err)
	}
	if lineNo == 0 || len(log.Gaps) == 0 {
		return IntervalLog{}, &failure.ParseError{Source: source, Err: ErrEmptyLog}
	}
	return log, nil
}
