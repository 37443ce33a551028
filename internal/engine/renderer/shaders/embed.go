// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// ModelVertexShader is the vertex shader for product meshes.
//
//go:embed model.vert
var ModelVertexShader string

// ModelFragmentShader lights product meshes with the studio rig.
//
//go:embed model.frag
var ModelFragmentShader string

// QuadVertexShader is the vertex shader for the fullscreen fallback image.
//
//go:embed quad.vert
var QuadVertexShader string

// QuadFragmentShader samples the fallback image.
//
//go:embed quad.frag
var QuadFragmentShader string

// DepthVertexShader renders meshes from the key light for the shadow map.
//
//go:embed depth.vert
var DepthVertexShader string

// DepthFragmentShader writes depth only.
//
//go:embed depth.frag
var DepthFragmentShader string
