package normalization

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultInvalidValues значения, которые считаются "неизвестными"
var DefaultInvalidValues = []string{"", "?", "unknown", "неизвестно", "-", "н/д", "nd"}

// ValueNormalizer приводит значение свободного текста к ключу дедупликации
type ValueNormalizer struct {
	invalid map[string]struct{}
}

// NewValueNormalizer создает нормализатор с заданным набором "неизвестных" значений
// Пустая строка считается неизвестной всегда
func NewValueNormalizer(invalidValues []string) *ValueNormalizer {
	vn := &ValueNormalizer{
		invalid: make(map[string]struct{}, len(invalidValues)+1),
	}
	vn.invalid[""] = struct{}{}
	for _, v := range invalidValues {
		vn.invalid[vn.fold(strings.TrimSpace(v))] = struct{}{}
	}
	return vn
}

// Normalize возвращает обрезанное и приведенное к одному регистру значение
// или пустую строку, если значение входит в набор неизвестных
func (vn *ValueNormalizer) Normalize(raw string) string {
	folded := vn.fold(strings.TrimSpace(raw))
	if _, ok := vn.invalid[folded]; ok {
		return ""
	}
	return folded
}

// IsInvalid проверяет, что значение считается неизвестным
func (vn *ValueNormalizer) IsInvalid(raw string) bool {
	return vn.Normalize(raw) == ""
}

func (vn *ValueNormalizer) fold(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	// cases.Caser хранит состояние, поэтому создается на каждый вызов
	return cases.Fold().String(s)
}
