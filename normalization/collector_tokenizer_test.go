package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCollectorNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []CollectorName
	}{
		{
			name:  "two surnames",
			input: "Иванов Петров",
			want: []CollectorName{
				{Token: "Иванов", FirstName: "Иванов"},
				{Token: "Петров", FirstName: "Петров"},
			},
		},
		{
			name:  "initials before surname",
			input: "И.И. Иванов, П. Сидоров",
			want: []CollectorName{
				{Token: "И.И. Иванов", FirstName: "И.И.", LastName: "Иванов"},
				{Token: "П. Сидоров", FirstName: "П.", LastName: "Сидоров"},
			},
		},
		{
			name:  "initials after surname",
			input: "Иванов И.И.; Lissovsky A.A.",
			want: []CollectorName{
				{Token: "Иванов И.И.", FirstName: "И.И.", LastName: "Иванов"},
				{Token: "Lissovsky A.A.", FirstName: "A.A.", LastName: "Lissovsky"},
			},
		},
		{
			name:  "spaced initials",
			input: "А. Б. Кузнецов",
			want: []CollectorName{
				{Token: "А. Б. Кузнецов", FirstName: "А.Б.", LastName: "Кузнецов"},
			},
		},
		{
			name:  "hyphenated surname",
			input: "Римский-Корсаков",
			want: []CollectorName{
				{Token: "Римский-Корсаков", FirstName: "Римский-Корсаков"},
			},
		},
		{
			name:  "duplicates kept in order",
			input: "Иванов, Иванов",
			want: []CollectorName{
				{Token: "Иванов", FirstName: "Иванов"},
				{Token: "Иванов", FirstName: "Иванов"},
			},
		},
		{
			name:  "lowercase words ignored",
			input: "сборщик неизвестен",
			want:  nil,
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCollectorNames(tt.input))
		})
	}
}
