// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// ObjectVertexShader is the vertex shader for lit scene objects.
//
//go:embed object.vert
var ObjectVertexShader string

// ObjectFragmentShader is the fragment shader for lit scene objects.
//
//go:embed object.frag
var ObjectFragmentShader string

// SkyboxVertexShader is the vertex shader for the environment cube.
//
//go:embed skybox.vert
var SkyboxVertexShader string

// SkyboxFragmentShader is the fragment shader for the environment cube.
//
//go:embed skybox.frag
var SkyboxFragmentShader string
