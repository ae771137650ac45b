package core

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidMemory = errors.New("invalid memory request")

// Memory is a memory reservation in KiB.
type Memory int64

const (
	KiB Memory = 1
	MiB        = 1024 * KiB
	GiB        = 1024 * MiB
	TiB        = 1024 * GiB
)

var memReqRegexp = regexp.MustCompile(`^([0-9]+)(?:([KMGT])B?)?$`)

var memUnits = []struct {
	suffix string
	size   Memory
}{
	{"T", TiB},
	{"G", GiB},
	{"M", MiB},
	{"K", KiB},
}

// ParseMemory decodes <int>[K|M|G|T]. Default units are megabytes.
func ParseMemory(req string) (Memory, error) {
	match := memReqRegexp.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(req)))
	if match == nil {
		return 0, errors.Wrapf(ErrInvalidMemory, "%q", req)
	}
	base, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidMemory, "%q", req)
	}
	unit := MiB
	for _, u := range memUnits {
		if u.suffix == match[2] {
			unit = u.size
		}
	}
	if base <= 0 {
		return 0, errors.Wrapf(ErrInvalidMemory, "%q: must be positive", req)
	}
	if base > math.MaxInt64/int64(unit) {
		return 0, errors.Wrapf(ErrInvalidMemory, "%q: too large", req)
	}
	return Memory(base) * unit, nil
}

// String uses the largest unit that divides the value exactly.
func (m Memory) String() string {
	if m <= 0 {
		return "0"
	}
	for _, u := range memUnits {
		if m%u.size == 0 {
			return strconv.FormatInt(int64(m/u.size), 10) + u.suffix
		}
	}
	return strconv.FormatInt(int64(m), 10) + "K"
}

// Megabytes rounds up to whole MiB.
func (m Memory) Megabytes() int64 {
	return int64((m + MiB - 1) / MiB)
}

func (m Memory) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Memory) UnmarshalText(text []byte) error {
	val, err := ParseMemory(string(text))
	if err != nil {
		return err
	}
	*m = val
	return nil
}
