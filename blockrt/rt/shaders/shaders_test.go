package shaders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddedEntryPoints(t *testing.T) {
	assert.Contains(t, BlockWGSL, "fn vs_main(")
	assert.Contains(t, BlockWGSL, "fn fs_main(")
	assert.Contains(t, BlockWGSL, "texture_depth_2d")
	assert.Contains(t, BlockWGSL, "sampler_comparison")
	assert.Contains(t, BlockDepthWGSL, "fn vs_depth(")
	assert.NotContains(t, BlockDepthWGSL, "@fragment")
}
