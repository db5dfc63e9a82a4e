package pipeline

import (
	"math"
	"strconv"
	"strings"
)

// parseCoordinate читает координату в десятичных градусах, допускается запятая
// Пустое или нечисловое значение, а также значение вне диапазона считаются отсутствующими
func parseCoordinate(raw string, limit float64) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < -limit || v > limit {
		return 0, false
	}
	return v, true
}

// parsePoint возвращает точку, если обе координаты заданы и не равны нулю
// Нулевая координата во входных данных означает "нет координаты"
func parsePoint(lat, lon string) *Point {
	la, okLat := parseCoordinate(lat, 90)
	lo, okLon := parseCoordinate(lon, 180)
	if !okLat || !okLon || la == 0 || lo == 0 {
		return nil
	}
	return &Point{Lat: la, Lon: lo}
}
