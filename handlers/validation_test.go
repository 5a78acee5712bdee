// validation_test.go - Tests for the custom catname and slugurl rules

package handlers

import (
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func validCategory(name, url string) error {
	return binding.Validator.ValidateStruct(&CategoryInput{
		Name:  name,
		URL:   url,
		Image: []ImageInput{{URL: "https://img/a.png"}},
	})
}

func TestCatalogNameRule(t *testing.T) {
	assert.NoError(t, validCategory("Shoes", "shoes"))
	assert.NoError(t, validCategory("Shoes 2024", "shoes"))
	assert.NoError(t, validCategory("ab", "shoes"))
	assert.NoError(t, validCategory(strings.Repeat("a", 50), "shoes"))

	assert.Error(t, validCategory("a", "shoes"))
	assert.Error(t, validCategory(strings.Repeat("a", 51), "shoes"))
	assert.Error(t, validCategory("Shoes & Boots", "shoes"))
	assert.Error(t, validCategory("Café", "shoes"))
}

func TestSlugRule(t *testing.T) {
	for _, ok := range []string{"shoes", "running-shoes", "running_shoes", "a-b_c", "Shoes2"} {
		assert.NoError(t, validCategory("Shoes", ok), ok)
	}
	for _, bad := range []string{"s", "sh--oes", "sh__oes", "sh-_oes", "sh_-oes", "sh oes", "shoes/", strings.Repeat("a", 51)} {
		assert.Error(t, validCategory("Shoes", bad), bad)
	}
}

func TestBindingErrorsUseJSONNames(t *testing.T) {
	err := binding.Validator.ValidateStruct(&SubCategoryInput{Name: "Shoes", URL: "shoes", Image: []ImageInput{{}}})
	body := bindingErrors(err)
	fields, ok := body["fields"].(gin.H)
	if assert.True(t, ok) {
		assert.Equal(t, "is required", fields["categoryId"])
		assert.Equal(t, "is required", fields["image[0].url"])
	}
}
