package schema_test

import (
	"testing"

	"github.com/jhoicas/Suministros-api/internal/domain/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAll_EsquemaActualEsValido(t *testing.T) {
	require.NoError(t, schema.ValidateAll())
}

func TestValidate_IdDebeSerPrimeraColumna(t *testing.T) {
	tbl := schema.Table{Name: "x", Version: 1, Columns: map[string]int{"name": 0, "id": 1}}
	assert.Error(t, tbl.Validate())
}

func TestValidate_IndicesContiguos(t *testing.T) {
	tbl := schema.Table{Name: "x", Version: 1, Columns: map[string]int{"id": 0, "name": 2}}
	assert.Error(t, tbl.Validate())
}

func TestValidate_IndiceRepetido(t *testing.T) {
	tbl := schema.Table{Name: "x", Version: 1, Columns: map[string]int{"id": 0, "a": 1, "b": 1}}
	assert.Error(t, tbl.Validate())
}

func TestRow_SetPorNombre(t *testing.T) {
	row := schema.Balances.Row().Set("id", "p1").Set("available", "3.00")
	cells := row.Cells()
	require.Len(t, cells, len(schema.Balances.Header()))
	assert.Equal(t, "p1", cells[0])
	assert.Equal(t, "3.00", cells[schema.Balances.Index("available")])
	assert.Equal(t, "id", schema.Balances.Header()[0])
}
