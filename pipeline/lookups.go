package pipeline

import "strings"

// Sexes постоянная таблица полов
var Sexes = []Sex{
	{ID: 1, Name: "самец"},
	{ID: 2, Name: "самка"},
}

// Ages постоянная таблица возрастных групп
var Ages = []Age{
	{ID: 1, Name: "взрослый"},
	{ID: 2, Name: "полувзрослый"},
	{ID: 3, Name: "молодой"},
	{ID: 4, Name: "детеныш"},
}

// sexCodes коды пола из исходной таблицы (после нормализации) -> id
var sexCodes = map[string]int{
	"m":      1,
	"м":      1,
	"♂":      1,
	"male":   1,
	"самец":  1,
	"f":      2,
	"ж":      2,
	"♀":      2,
	"female": 2,
	"самка":  2,
}

// ageCodes коды возраста из исходной таблицы (после нормализации) -> id
var ageCodes = map[string]int{
	"ad":           1,
	"adult":        1,
	"взр":          1,
	"взрослый":     1,
	"sad":          2,
	"subad":        2,
	"subadult":     2,
	"полувзр":      2,
	"полувзрослый": 2,
	"juv":          3,
	"juvenile":     3,
	"мол":          3,
	"молодой":      3,
	"pull":         4,
	"pullus":       4,
	"neonate":      4,
	"детеныш":      4,
}

// lookupCode ищет нормализованный код в таблице; точка в конце сокращения не учитывается
// Неизвестный код дает nil, а не значение по умолчанию
func lookupCode(codes map[string]int, normalized string) *int {
	key := strings.TrimRight(normalized, ".")
	if key == "" {
		return nil
	}
	id, ok := codes[key]
	if !ok {
		return nil
	}
	return &id
}
