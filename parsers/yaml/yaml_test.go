package yaml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/sevigo/docchunk/parsers/testing"
	"github.com/sevigo/docchunk/parsers/yaml"
)

func TestYamlPlugin(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	plugin := yaml.NewYamlPlugin(log)

	t.Run("BasicInfo", func(t *testing.T) {
		assert.Equal(t, "yaml", plugin.Name())
		assert.Contains(t, plugin.Extensions(), ".yaml")
		assert.Contains(t, plugin.Aliases(), "yml")
	})

	t.Run("CanHandle", func(t *testing.T) {
		assert.True(t, plugin.CanHandle("config.yaml", nil))
		assert.True(t, plugin.CanHandle("docker-compose.yml", nil))
		assert.False(t, plugin.CanHandle("config.json", nil))
	})

	t.Run("TopLevelKeys", func(t *testing.T) {
		content := `version: "3"
# application services
services:
  web:
    image: nginx
volumes:
  data: {}`
		starts, err := plugin.DeclarationStarts(content)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 5}, starts)
	})

	t.Run("MultipleDocuments", func(t *testing.T) {
		content := "kind: Service\nname: a\n---\nkind: Deployment\n---\n- item"
		starts, err := plugin.DeclarationStarts(content)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 3, 5}, starts)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := plugin.DeclarationStarts("key: [unclosed")
		assert.Error(t, err)
	})
}
