package normalization

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PartialDate дата сбора с возможно неизвестными частями
// nil означает "не указано", а не ноль
type PartialDate struct {
	Day   *int `json:"day,omitempty"`
	Month *int `json:"month,omitempty"`
	Year  *int `json:"year,omitempty"`
}

// IsEmpty сообщает, что ни одна часть даты не распознана
func (d PartialDate) IsEmpty() bool {
	return d.Day == nil && d.Month == nil && d.Year == nil
}

// String возвращает дату в виде ГГГГ-ММ-ДД, ГГГГ-ММ или ГГГГ
func (d PartialDate) String() string {
	switch {
	case d.Year == nil:
		return ""
	case d.Month == nil:
		return fmt.Sprintf("%04d", *d.Year)
	case d.Day == nil:
		return fmt.Sprintf("%04d-%02d", *d.Year, *d.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", *d.Year, *d.Month, *d.Day)
	}
}

// dateRule шаблон даты и его преобразование
type dateRule struct {
	name    string
	pattern string
	full    *regexp.Regexp
	convert func(token string) (PartialDate, bool)
}

// Порядок правил важен: при равной позиции в строке выигрывает более раннее правило
var dateRules = []*dateRule{
	{name: "full", pattern: `\d{1,2}[./]\d{1,2}[./]\d{2,4}`, convert: convertFullDate},
	{name: "month_year", pattern: `\d{1,2}\D\d{4}`, convert: convertMonthYear},
	{name: "year", pattern: `\d{4}`, convert: convertYear},
	{name: "day_range", pattern: `\d{1,2}-\d{1,2}\.\s?\d{1,2}\.\d{4}`, convert: convertDayRange},
}

var (
	dateTokenRegex *regexp.Regexp
	digitsRegex    = regexp.MustCompile(`\d+`)
)

func init() {
	patterns := make([]string, 0, len(dateRules))
	for _, rule := range dateRules {
		rule.full = regexp.MustCompile(`^(?:` + rule.pattern + `)$`)
		patterns = append(patterns, rule.pattern)
	}
	dateTokenRegex = regexp.MustCompile(strings.Join(patterns, "|"))
}

// ParseDate извлекает дату сбора из свободного текста
// Проверяется только календарная корректность
func ParseDate(raw string) PartialDate {
	date, _ := ParseDateRule(raw)
	return date
}

// ParseDateRule как ParseDate, но дополнительно возвращает имя сработавшего правила
// Пустое имя означает, что дата не распознана
func ParseDateRule(raw string) (PartialDate, string) {
	token := dateTokenRegex.FindString(raw)
	if token == "" {
		return PartialDate{}, ""
	}

	for _, rule := range dateRules {
		if !rule.full.MatchString(token) {
			continue
		}
		if date, ok := rule.convert(token); ok {
			return date, rule.name
		}
		return PartialDate{}, ""
	}

	return PartialDate{}, ""
}

// convertFullDate: "/" - месяц первым, "." - день первым
// Год сначала читается как четырехзначный, затем как двузначный
func convertFullDate(token string) (PartialDate, bool) {
	sep := token[strings.IndexAny(token, "./")]
	parts := strings.Split(token, string(sep))
	if len(parts) != 3 {
		return PartialDate{}, false
	}

	first, _ := strconv.Atoi(parts[0])
	second, _ := strconv.Atoi(parts[1])
	day, month := first, second
	if sep == '/' {
		day, month = second, first
	}

	year, ok := parseYear(parts[2])
	if !ok || !validDate(year, month, day) {
		return PartialDate{}, false
	}

	return PartialDate{Day: intPtr(day), Month: intPtr(month), Year: intPtr(year)}, true
}

func convertMonthYear(token string) (PartialDate, bool) {
	nums := digitsRegex.FindAllString(token, -1)
	if len(nums) != 2 {
		return PartialDate{}, false
	}
	month, _ := strconv.Atoi(nums[0])
	year, _ := strconv.Atoi(nums[1])
	if month < 1 || month > 12 {
		return PartialDate{}, false
	}
	return PartialDate{Month: intPtr(month), Year: intPtr(year)}, true
}

func convertYear(token string) (PartialDate, bool) {
	year, err := strconv.Atoi(token)
	if err != nil || year < 1 {
		return PartialDate{}, false
	}
	return PartialDate{Year: intPtr(year)}, true
}

// convertDayRange: "28-31. 07.2019" - диапазон дней, известны только месяц и год
func convertDayRange(token string) (PartialDate, bool) {
	nums := digitsRegex.FindAllString(token, -1)
	if len(nums) != 4 {
		return PartialDate{}, false
	}
	month, _ := strconv.Atoi(nums[2])
	year, _ := strconv.Atoi(nums[3])
	if month < 1 || month > 12 {
		return PartialDate{}, false
	}
	return PartialDate{Month: intPtr(month), Year: intPtr(year)}, true
}

// parseYear: четыре цифры как есть, две цифры по правилу 69-99 -> 19xx, 00-68 -> 20xx
func parseYear(s string) (int, bool) {
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	switch len(s) {
	case 4:
		return year, year > 0
	case 2:
		if year >= 69 {
			return 1900 + year, true
		}
		return 2000 + year, true
	default:
		return 0, false
	}
}

func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

func intPtr(v int) *int {
	return &v
}
