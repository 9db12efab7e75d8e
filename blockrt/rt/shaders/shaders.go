package shaders

import (
	_ "embed"
)

//go:embed block.wgsl
var BlockWGSL string

//go:embed block_depth.wgsl
var BlockDepthWGSL string
