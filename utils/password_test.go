package utils_test

import (
	"testing"

	"collab-project/backend/management-service/utils"

	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"Segredo123", true},
		{"curta1A", false},
		{"semdigitosA", false},
		{"semmaiuscula1", false},
		{"", false},
	}
	for _, c := range cases {
		err := utils.ValidatePassword(c.password)
		if c.valid {
			require.NoError(t, err, c.password)
		} else {
			require.Error(t, err, c.password)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := utils.HashPassword("Segredo123")
	require.NoError(t, err)
	require.NotEqual(t, "Segredo123", hash)

	require.NoError(t, utils.CheckPassword(hash, "Segredo123"))
	require.Error(t, utils.CheckPassword(hash, "errada"))
}
