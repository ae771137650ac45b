package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrInvalidTimeLimit = errors.New("invalid time limit")

// TimeLimit is the wall-clock limit of a job.
// Accepted forms follow sbatch --time: "M", "M:S", "H:M:S", "D-H", "D-H:M"
// and "D-H:M:S".
type TimeLimit time.Duration

func ParseTimeLimit(value string) (TimeLimit, error) {
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return 0, errors.Wrap(ErrInvalidTimeLimit, "empty value")
	}

	days := int64(0)
	rest := value
	withDays := false
	if i := strings.Index(value, "-"); i >= 0 {
		d, err := parseTimeField(value[:i])
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidTimeLimit, "%q: days", value)
		}
		if d > int64(maxTimeLimit/(24*time.Hour)) {
			return 0, errors.Wrapf(ErrInvalidTimeLimit, "%q: too large", value)
		}
		days = d
		rest = value[i+1:]
		withDays = true
	}

	fields := strings.Split(rest, ":")
	nums := make([]int64, len(fields))
	for i, field := range fields {
		n, err := parseTimeField(field)
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidTimeLimit, "%q", value)
		}
		// bounded so the sum below cannot overflow
		if n > int64(maxTimeLimit/time.Second) {
			return 0, errors.Wrapf(ErrInvalidTimeLimit, "%q: too large", value)
		}
		nums[i] = n
	}

	var hours, minutes, seconds int64
	switch {
	case withDays && len(nums) == 1:
		hours = nums[0]
	case withDays && len(nums) == 2:
		hours, minutes = nums[0], nums[1]
	case withDays && len(nums) == 3:
		hours, minutes, seconds = nums[0], nums[1], nums[2]
	case len(nums) == 1:
		minutes = nums[0]
	case len(nums) == 2:
		minutes, seconds = nums[0], nums[1]
	case len(nums) == 3:
		hours, minutes, seconds = nums[0], nums[1], nums[2]
	default:
		return 0, errors.Wrapf(ErrInvalidTimeLimit, "%q: too many fields", value)
	}
	if withDays && hours > 23 {
		return 0, errors.Wrapf(ErrInvalidTimeLimit, "%q: hours out of range", value)
	}
	if (withDays || len(nums) == 3) && minutes > 59 {
		return 0, errors.Wrapf(ErrInvalidTimeLimit, "%q: minutes out of range", value)
	}
	if len(nums) > 1 && seconds > 59 {
		return 0, errors.Wrapf(ErrInvalidTimeLimit, "%q: seconds out of range", value)
	}

	total := ((days*24+hours)*60+minutes)*60 + seconds
	if total <= 0 {
		return 0, errors.Wrapf(ErrInvalidTimeLimit, "%q: must be positive", value)
	}
	if total > int64(maxTimeLimit/time.Second) {
		return 0, errors.Wrapf(ErrInvalidTimeLimit, "%q: too large", value)
	}
	return TimeLimit(time.Duration(total) * time.Second), nil
}

// TimeLimitFromSeconds applies the same bounds as ParseTimeLimit to a plain
// count of seconds.
func TimeLimitFromSeconds(seconds int64) (TimeLimit, error) {
	if seconds <= 0 {
		return 0, errors.Wrapf(ErrInvalidTimeLimit, "%d: must be positive", seconds)
	}
	if seconds > int64(maxTimeLimit/time.Second) {
		return 0, errors.Wrapf(ErrInvalidTimeLimit, "%d: too large", seconds)
	}
	return TimeLimit(time.Duration(seconds) * time.Second), nil
}

// 10 years is far beyond any scheduler's MaxTime
const maxTimeLimit = 10 * 365 * 24 * time.Hour

func parseTimeField(field string) (int64, error) {
	if len(field) == 0 {
		return 0, errors.New("empty field")
	}
	for _, c := range field {
		if c < '0' || c > '9' {
			return 0, errors.Errorf("bad digit %q", c)
		}
	}
	return strconv.ParseInt(field, 10, 64)
}

func (t TimeLimit) Duration() time.Duration {
	return time.Duration(t)
}

// String renders D-H:MM:SS, e.g. 0-4:00:00.
func (t TimeLimit) String() string {
	total := int64(time.Duration(t) / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%d-%d:%02d:%02d", days, hours, minutes, seconds)
}

// Hours renders H:MM:SS with days folded into hours (SGE h_rt).
func (t TimeLimit) Hours() string {
	total := int64(time.Duration(t) / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func (t TimeLimit) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeLimit) UnmarshalText(text []byte) error {
	val, err := ParseTimeLimit(string(text))
	if err != nil {
		return err
	}
	*t = val
	return nil
}
