package schedule

import (
	"strconv"
	"strings"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/domain"
)

// TimeOfDay is a wall-clock time with no date or zone attached.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "H:MM" or "H:MM:SS". Anything else is a
// MalformedTimeError.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, &domain.MalformedTimeError{Value: s}
	}

	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return TimeOfDay{}, &domain.MalformedTimeError{Value: s}
		}
		fields[i] = n
	}

	tod := TimeOfDay{Hour: fields[0], Minute: fields[1], Second: fields[2]}
	if tod.Hour > 23 || tod.Minute > 59 || tod.Second > 59 {
		return TimeOfDay{}, &domain.MalformedTimeError{Value: s}
	}
	return tod, nil
}
