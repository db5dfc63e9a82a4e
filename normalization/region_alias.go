package normalization

import (
	"regexp"
	"strings"
)

// RegionRule правило переписывания названия региона
type RegionRule struct {
	Name  string
	Match func(s string) bool
	Apply func(s string) string
}

// RegionStage этап переписывания: внутри этапа срабатывает первое подходящее правило
type RegionStage struct {
	Name  string
	Rules []RegionRule
}

// RegionResolution результат переписывания региона
type RegionResolution struct {
	Input string
	Value string
	Rules []string // имена сработавших правил, по порядку этапов
}

// Matched сообщает, сработало ли хотя бы одно правило
func (r RegionResolution) Matched() bool {
	return len(r.Rules) > 0
}

// RegionAliasResolver приводит устаревшие и "шумные" названия регионов к каноническим
// перед геокодированием
type RegionAliasResolver struct {
	stages []RegionStage
}

var (
	districtSuffixRegex = regexp.MustCompile(`\s+р-о?н\.?$`)
	oblastSuffixRegex   = regexp.MustCompile(`\s+обл\.?$`)
	provincePrefixRegex = regexp.MustCompile(`(?i)^(пров\.|пр-ция|prov\.)\s*`)
)

// literalCorrections исторические названия, транслитерация и известные опечатки ввода
var literalCorrections = []struct{ from, to string }{
	{"Алма-Атинская", "Алматинская"},
	{"Семипалатинская", "Восточно-Казахстанская"},
	{"Примоский", "Приморский"},
	{"Хабаровскй", "Хабаровский"},
	{"Primorskiy Kray", "Приморский край"},
	{"Читинская область", "Забайкальский край"},
}

// DefaultRegionAliases устаревшие и иноязычные названия регионов
var DefaultRegionAliases = map[string]string{
	"Alma-Ata Oblast":             "Алматинская область",
	"Almaty Region":               "Алматинская область",
	"Primorsky Krai":              "Приморский край",
	"Khabarovsk Krai":             "Хабаровский край",
	"Пермская область":            "Пермский край",
	"Камчатская область":          "Камчатский край",
	"Корякский АО":                "Камчатский край",
	"Агинский Бурятский АО":       "Забайкальский край",
	"Усть-Ордынский Бурятский АО": "Иркутская область",
	"Горно-Алтайская АО":          "Республика Алтай",
	"Ленинград":                   "Санкт-Петербург",
	"Кзыл-Ординская область":      "Кызылординская область",
	"Гурьевская область":          "Атырауская область",
	"Киргизская ССР":              "Киргизия",
}

// DefaultAmbiguousCities города, которые геокодер путает, и их однозначный регион
var DefaultAmbiguousCities = []struct{ City, Region string }{
	{"Петергоф", "Санкт-Петербург"},
	{"Сестрорецк", "Санкт-Петербург"},
	{"Зеленоград", "Москва"},
	{"Щербинка", "Москва"},
	{"Кировск", "Мурманская область"},
}

// NewRegionAliasResolver создает резолвер со стандартными правилами
// aliases дополняют (и переопределяют) DefaultRegionAliases
func NewRegionAliasResolver(aliases map[string]string) *RegionAliasResolver {
	table := make(map[string]string, len(DefaultRegionAliases)+len(aliases))
	for k, v := range DefaultRegionAliases {
		table[k] = v
	}
	for k, v := range aliases {
		table[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	return &RegionAliasResolver{
		stages: []RegionStage{
			{Name: "suffix", Rules: suffixRules()},
			{Name: "prefix", Rules: prefixRules()},
			{Name: "literal", Rules: literalRules()},
			{Name: "alias", Rules: []RegionRule{aliasRule(table)}},
			{Name: "city", Rules: cityRules()},
		},
	}
}

// Normalize возвращает каноническое название региона
// Если ни одно правило не подошло, значение возвращается как есть (без крайних пробелов)
func (r *RegionAliasResolver) Normalize(raw string) string {
	return r.Resolve(raw).Value
}

// Resolve прогоняет значение через все этапы и возвращает сработавшие правила
func (r *RegionAliasResolver) Resolve(raw string) RegionResolution {
	res := RegionResolution{Input: raw, Value: strings.TrimSpace(raw)}
	if res.Value == "" {
		return res
	}

	for _, stage := range r.stages {
		for _, rule := range stage.Rules {
			if !rule.Match(res.Value) {
				continue
			}
			res.Value = strings.TrimSpace(rule.Apply(res.Value))
			res.Rules = append(res.Rules, stage.Name+":"+rule.Name)
			break
		}
	}

	return res
}

func suffixRules() []RegionRule {
	return []RegionRule{
		{
			Name:  "республика",
			Match: func(s string) bool { return strings.HasSuffix(s, ", Республика") },
			Apply: func(s string) string { return strings.TrimSuffix(s, ", Республика") },
		},
		{
			Name:  "район",
			Match: districtSuffixRegex.MatchString,
			Apply: func(s string) string { return districtSuffixRegex.ReplaceAllString(s, "") },
		},
		{
			Name:  "область",
			Match: oblastSuffixRegex.MatchString,
			Apply: func(s string) string { return oblastSuffixRegex.ReplaceAllString(s, " область") },
		},
	}
}

func prefixRules() []RegionRule {
	return []RegionRule{
		{
			Name:  "провинция",
			Match: provincePrefixRegex.MatchString,
			Apply: func(s string) string { return provincePrefixRegex.ReplaceAllString(s, "") },
		},
	}
}

func literalRules() []RegionRule {
	rules := make([]RegionRule, 0, len(literalCorrections))
	for _, c := range literalCorrections {
		from, to := c.from, c.to
		rules = append(rules, RegionRule{
			Name:  from,
			Match: func(s string) bool { return strings.Contains(s, from) },
			Apply: func(s string) string { return strings.ReplaceAll(s, from, to) },
		})
	}
	return rules
}

func aliasRule(table map[string]string) RegionRule {
	return RegionRule{
		Name: "table",
		Match: func(s string) bool {
			_, ok := table[s]
			return ok
		},
		Apply: func(s string) string { return table[s] },
	}
}

// cityWordRegex находит город только целым словом: "Кировск" не совпадает
// с "Кировская область", "Зеленоград" с "Зеленоградск"
func cityWordRegex(city string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\p{L}-])` + regexp.QuoteMeta(city) + `(?:[^\p{L}-]|$)`)
}

func cityRules() []RegionRule {
	rules := make([]RegionRule, 0, len(DefaultAmbiguousCities))
	for _, c := range DefaultAmbiguousCities {
		region := c.Region
		word := cityWordRegex(c.City)
		rules = append(rules, RegionRule{
			Name:  c.City,
			Match: func(s string) bool { return s != region && word.MatchString(s) },
			Apply: func(string) string { return region },
		})
	}
	return rules
}
