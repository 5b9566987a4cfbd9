package shaders

import (
	_ "embed"
)

//go:embed shader.wgsl
var MeshWGSL string

const (
	MeshVertexEntry   = "vs_main"
	MeshFragmentEntry = "fs_main"
)
