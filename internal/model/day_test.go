package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		input   string
		want    Day
		wantErr bool
	}{
		{input: "Lunes", want: Monday},
		{input: "  martes ", want: Tuesday},
		{input: "Miércoles", want: Wednesday},
		{input: "miercoles", want: Wednesday},
		{input: "THURSDAY", want: Thursday},
		{input: "5", want: Friday},
		{input: "Sábado", wantErr: true},
		{input: "0", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDay(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidDay))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDay_String(t *testing.T) {
	labels := make([]string, 0, len(Days))
	for _, d := range Days {
		labels = append(labels, d.String())
	}
	assert.Equal(t, []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes"}, labels)
	assert.Equal(t, "Day(9)", Day(9).String())
}

func TestToday(t *testing.T) {
	// 2024-03-04 was a Monday.
	monday := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	d, err := Today(monday)
	require.NoError(t, err)
	assert.Equal(t, Monday, d)

	d, err = Today(monday.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Equal(t, Friday, d)

	_, err = Today(monday.AddDate(0, 0, 5))
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestDay_JSONMapKeys(t *testing.T) {
	in := map[Day]int{Monday: 1, Wednesday: 3}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Lunes":1,"Miércoles":3}`, string(data))

	var out map[Day]int
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
