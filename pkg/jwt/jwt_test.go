package jwt_test

import (
	"testing"

	"github.com/jhoicas/Suministros-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateAndParse(t *testing.T) {
	in := jwt.Identity{UserID: "u-1", Email: "ana@example.com", Sector: "Limpieza", Role: "compras"}
	tok, err := jwt.Generate(secret, in, "suministros-test", 60)
	require.NoError(t, err)

	out, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestParse_Expired(t *testing.T) {
	tok, err := jwt.Generate(secret, jwt.Identity{UserID: "u-1", Role: "admin"}, "x", -1)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := jwt.Generate(secret, jwt.Identity{UserID: "u-1", Role: "admin"}, "x", 60)
	require.NoError(t, err)
	_, err = jwt.Parse("otro", tok)
	assert.Error(t, err)
}

func TestGenerate_Validations(t *testing.T) {
	_, err := jwt.Generate("", jwt.Identity{UserID: "u"}, "x", 1)
	assert.Error(t, err)
	_, err = jwt.Generate(secret, jwt.Identity{}, "x", 1)
	assert.Error(t, err)
}
