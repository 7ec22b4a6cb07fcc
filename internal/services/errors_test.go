package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorAddMoney(t *testing.T) {
	cases := []struct {
		amount   string
		positive bool
		wantErr  bool
	}{
		{"0", false, false},
		{"0", true, true},
		{"12.50", true, false},
		{"1.500", false, false},
		{"-0.01", false, true},
		{"0.005", false, true},
		{"0.004", true, true},
		{"19.999", false, true},
	}
	for _, tc := range cases {
		verr := &ValidationError{}
		verr.AddMoney("price", d(tc.amount), tc.positive)
		if tc.wantErr {
			assert.Contains(t, verr.Fields, "price", tc.amount)
		} else {
			assert.NoError(t, verr.OrNil(), tc.amount)
		}
	}
}
