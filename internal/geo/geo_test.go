package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "conocida/pkg/domain-errors"
)

func TestValidate(t *testing.T) {
	t.Run("valid triple", func(t *testing.T) {
		assert.NoError(t, Validate("Paraguay", "Central", "Luque"))
	})

	t.Run("unknown country", func(t *testing.T) {
		err := Validate("Atlantis", "Central", "Luque")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("province from another country", func(t *testing.T) {
		err := Validate("Paraguay", "Córdoba", "Córdoba")
		assert.Error(t, err)
	})

	t.Run("city outside declared province", func(t *testing.T) {
		err := Validate("Paraguay", "Central", "Encarnación")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestLookups(t *testing.T) {
	assert.Contains(t, Countries(), "Paraguay")
	assert.Contains(t, Provinces("Argentina"), "Misiones")
	assert.Contains(t, Cities("Uruguay", "Canelones"), "Las Piedras")
	assert.Empty(t, Cities("Atlantis", "Nowhere"))
}
