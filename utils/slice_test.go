package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueUint(t *testing.T) {
	tests := []struct {
		name string
		in   []uint
		want []uint
	}{
		{"empty", []uint{}, []uint{}},
		{"no duplicates", []uint{1, 2, 3}, []uint{1, 2, 3}},
		{"duplicates collapse", []uint{1, 2, 1, 3, 2}, []uint{1, 2, 3}},
		{"all same", []uint{7, 7, 7}, []uint{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UniqueUint(tt.in))
		})
	}
}
