package reports

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"
)

// base32 alphabet whose character order matches numeric order, so encoded IDs
// sort the same lexicographically as their timestamps
const base32SortAlphabet = "234567abcdefghijklmnopqrstuvwxyz"

// ReportID is a compact, time-orderable report identifier: 13 characters of
// sort-order base32 encoding a microsecond timestamp plus a per-process clock
// ID. Lexicographic order of IDs matches creation order.
type ReportID string

var ridRegex = regexp.MustCompile(`^[234567abcdefghij][234567abcdefghijklmnopqrstuvwxyz]{12}$`)

func ParseReportID(raw string) (ReportID, error) {
	if raw == "" {
		return "", errors.New("expected report ID, got empty string")
	}
	if len(raw) != 13 {
		return "", errors.New("report ID is wrong length (expected 13 chars)")
	}
	if !ridRegex.MatchString(raw) {
		return "", errors.New("report ID syntax didn't validate via regex")
	}
	return ReportID(raw), nil
}

func newReportID(unixMicros int64, clockID uint) ReportID {
	v := (uint64(unixMicros&0x1F_FFFF_FFFF_FFFF) << 10) | uint64(clockID&0x3FF)
	v = 0x7FFF_FFFF_FFFF_FFFF & v
	s := ""
	for i := 0; i < 13; i++ {
		s = string(base32SortAlphabet[v&0x1F]) + s
		v = v >> 5
	}
	return ReportID(s)
}

// Returns the [time.Time] encoded in this report ID's timestamp.
func (id ReportID) Time() time.Time {
	var v uint64
	for i := 0; i < len(id) && i < 13; i++ {
		c := strings.IndexByte(base32SortAlphabet, id[i])
		if c < 0 {
			return time.Time{}
		}
		v = (v << 5) | uint64(c&0x1F)
	}
	return time.UnixMicro(int64((v >> 10) & 0x1FFF_FFFF_FFFF_FFFF)).UTC()
}

func (id ReportID) String() string {
	return string(id)
}

// RIDClock generates report IDs, keeping state to ensure values always
// monotonically increase, even when the wall clock steps backwards.
//
// Uses [sync.Mutex], so may block briefly but safe for concurrent use.
type RIDClock struct {
	ClockID       uint
	mtx           sync.Mutex
	lastUnixMicro int64
}

func NewRIDClock(clockID uint) RIDClock {
	return RIDClock{
		ClockID: clockID,
	}
}

func (c *RIDClock) Next() ReportID {
	now := time.Now().UTC().UnixMicro()
	c.mtx.Lock()
	if now <= c.lastUnixMicro {
		now = c.lastUnixMicro + 1
	}
	c.lastUnixMicro = now
	c.mtx.Unlock()
	return newReportID(now, c.ClockID)
}
