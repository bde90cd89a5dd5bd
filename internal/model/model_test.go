package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{"student", RoleStudent, true},
		{" student ", RoleStudent, true},
		{"ADMIN", "", false},
		{"driver", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestPrincipalJSONOmitsPasswordHash(t *testing.T) {
	p := Principal{ID: 7, Name: "Amy", Email: "amy@x.com", PasswordHash: "$2a$10$secret", Role: RoleStudent}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "password")
	assert.Contains(t, string(b), `"role":"student"`)
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-06-01"`), &d))
	assert.Equal(t, "2024-06-01", d.String())

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-06-01"`, string(b))

	assert.Error(t, json.Unmarshal([]byte(`"01/06/2024"`), &d))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "amy@x.com", NormalizeEmail("  Amy@X.com "))
}
