package docs_test

import (
	"encoding/json"
	"testing"

	"github.com/jhoicas/Suministros-api/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerInfo_Registrado(t *testing.T) {
	docs.SwaggerInfo.Title = "Suministros test"
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Swagger string `json:"swagger"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
		SecurityDefinitions map[string]interface{} `json:"securityDefinitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "Suministros test", doc.Info.Title)
	assert.Contains(t, doc.SecurityDefinitions, "Bearer")
}
