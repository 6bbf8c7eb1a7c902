package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     error
	}{
		{"valid", "password1", nil},
		{"too short", "pass1", ErrPasswordTooShort},
		{"no digit", "passwordonly", ErrPasswordNoDigit},
		{"no letter", "1234567890", ErrPasswordNoLetter},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}
