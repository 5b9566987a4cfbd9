package assets

import (
	_ "embed"
)

// HappyTreePNG is the default texture drawn on the mesh.
//
//go:embed happy_tree.png
var HappyTreePNG []byte
