package astrolabe

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/yanqian/iztro-mcp/internal/domain/solartime"
	apperrors "github.com/yanqian/iztro-mcp/pkg/errors"
)

var birthdayPattern = regexp.MustCompile(`^(\d{4})[-/](\d{2})[-/](\d{2})$`)

func normalizeGender(raw string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "男", "male":
		return GenderMale, nil
	case "女", "female":
		return GenderFemale, nil
	case "":
		return "", apperrors.Wrap("invalid_input", "gender is required (男/女 or male/female)", nil)
	default:
		return "", apperrors.Wrap("invalid_input", fmt.Sprintf("unsupported gender %q", raw), nil)
	}
}

func normalizeCalendar(raw string) (Calendar, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "solar", "gregorian", "阳历", "公历":
		return CalendarSolar, nil
	case "lunar", "阴历", "农历":
		return CalendarLunar, nil
	default:
		return "", apperrors.Wrap("invalid_input", fmt.Sprintf("unsupported calendar type %q", raw), nil)
	}
}

func normalizeLanguage(raw, fallback string) (string, error) {
	lang := strings.TrimSpace(raw)
	if lang == "" {
		lang = fallback
	}
	if lang == "" {
		lang = SupportedLanguages[0]
	}
	if !slices.Contains(SupportedLanguages, lang) {
		return "", apperrors.Wrap("invalid_input",
			fmt.Sprintf("unsupported language %q, expected one of %s", raw, strings.Join(SupportedLanguages, ", ")), nil)
	}
	return lang, nil
}

// normalizeBirthday accepts YYYY-MM-DD or YYYY/MM/DD. Solar dates must exist
// in the Gregorian calendar; lunar days may run to 30.
func normalizeBirthday(raw string, calendar Calendar) (string, error) {
	m := birthdayPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", apperrors.Wrap("invalid_input", "birthday must be formatted as YYYY-MM-DD or YYYY/MM/DD", nil)
	}
	date := m[1] + "-" + m[2] + "-" + m[3]

	if calendar == CalendarSolar {
		if _, err := solartime.ParseDate(date); err != nil {
			return "", err
		}
		return date, nil
	}

	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 30 {
		return "", apperrors.Wrap("invalid_input", fmt.Sprintf("lunar birthday %q is out of range", date), nil)
	}
	return date, nil
}

// toChartSlot maps the thirteen-slot convention onto the chart engine's
// twelve slots. The late rat hour belongs to the next civil day.
func toChartSlot(date string, slot solartime.Slot) (string, int, error) {
	if slot != solartime.LateRat {
		return date, int(slot), nil
	}
	day, err := solartime.ParseDate(date)
	if err != nil {
		return "", 0, err
	}
	return day.AddDate(0, 0, 1).Format(solartime.DateLayout), int(solartime.EarlyRat), nil
}
