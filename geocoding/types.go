package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Place результат геокодирования: страна и регион
type Place struct {
	Country string `json:"country"`
	Region  string `json:"region"`
}

// Address компоненты адреса, возвращаемые сервисом геокодирования
type Address map[string]string

// UnmarshalJSON принимает и нестроковые значения компонентов, приводя их к строке
func (a *Address) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Address, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	*a = out
	return nil
}

// Service внешний сервис геокодирования
type Service interface {
	// Reverse координаты -> адрес
	Reverse(ctx context.Context, lat, lon float64) (Address, error)
	// Search текст -> адрес
	Search(ctx context.Context, query string) (Address, error)
}

// Store постоянное хранилище кэша геокодирования
type Store interface {
	Load(ctx context.Context) (map[string]Place, error)
	Save(ctx context.Context, key string, place Place) error
}

// Типы дескрипторов запроса
const (
	QueryTypePosition = "position"
	QueryTypeGeocode  = "geocode"
)

// Query дескриптор запроса, по которому ведется кэш
type Query struct {
	Type string
	Lat  float64
	Lon  float64
	Text string
}

// PositionQuery дескриптор обратного геокодирования
func PositionQuery(lat, lon float64) Query {
	return Query{Type: QueryTypePosition, Lat: lat, Lon: lon}
}

// TextQuery дескриптор прямого геокодирования
// Пробелы по краям убираются, внутренние схлопываются
func TextQuery(text string) Query {
	return Query{Type: QueryTypeGeocode, Text: strings.Join(strings.Fields(text), " ")}
}

// Key сериализует дескриптор в ключ кэша
func (q Query) Key() string {
	var v any
	if q.Type == QueryTypePosition {
		v = struct {
			Type string  `json:"type"`
			Lat  float64 `json:"lat"`
			Lon  float64 `json:"lon"`
		}{q.Type, q.Lat, q.Lon}
	} else {
		v = struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{q.Type, q.Text}
	}
	// Маршалинг плоской структуры из строк и чисел не может завершиться ошибкой
	data, _ := json.Marshal(v)
	return string(data)
}
