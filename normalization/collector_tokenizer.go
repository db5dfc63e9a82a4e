package normalization

import (
	"regexp"
	"strings"
)

// CollectorName имя коллектора, найденное в поле "Коллектор"
type CollectorName struct {
	Token     string // исходный фрагмент, ключ дедупликации
	FirstName string
	LastName  string
}

const (
	initialsPattern = `(?:\p{Lu}\.\s?){1,2}`
	wordPattern     = `\p{Lu}[\p{L}'-]+`
)

var (
	collectorRegex = regexp.MustCompile(
		initialsPattern + `\s?` + wordPattern + // И.И. Иванов
			`|` + wordPattern + `\s` + initialsPattern + // Иванов И.И.
			`|` + wordPattern) // Иванов
	initialsFirstRegex = regexp.MustCompile(`^(` + initialsPattern + `)\s?(` + wordPattern + `)$`)
	initialsLastRegex  = regexp.MustCompile(`^(` + wordPattern + `)\s(` + initialsPattern + `)$`)
)

// ExtractCollectorNames извлекает имена коллекторов в порядке появления
// Повторы не удаляются: дедупликация выполняется реестром
func ExtractCollectorNames(raw string) []CollectorName {
	tokens := collectorRegex.FindAllString(raw, -1)
	if len(tokens) == 0 {
		return nil
	}

	names := make([]CollectorName, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		names = append(names, splitCollectorName(token))
	}
	return names
}

// splitCollectorName делит двухсловный токен на имя (инициалы) и фамилию
// Однословный токен сохраняется как имя с пустой фамилией
func splitCollectorName(token string) CollectorName {
	if m := initialsFirstRegex.FindStringSubmatch(token); m != nil {
		return CollectorName{Token: token, FirstName: compactInitials(m[1]), LastName: m[2]}
	}
	if m := initialsLastRegex.FindStringSubmatch(token); m != nil {
		return CollectorName{Token: token, FirstName: compactInitials(m[2]), LastName: m[1]}
	}
	return CollectorName{Token: token, FirstName: token}
}

func compactInitials(s string) string {
	return strings.Join(strings.Fields(s), "")
}
