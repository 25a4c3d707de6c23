package model

import "github.com/Carmen-Shannon/oxy-scene/engine/renderer"

// Material pairs a diffuse and a normal-map texture with the scalar MTL properties.
type Material struct {
	// Name is the material identifier from newmtl.
	Name string

	// DiffuseTexture is the sRGB color texture.
	DiffuseTexture renderer.Texture

	// NormalTexture is the linear tangent-space normal map.
	NormalTexture renderer.Texture

	// Ambient, Diffuse and Specular are the Ka, Kd and Ks colors.
	Ambient, Diffuse, Specular [3]float32

	// Shininess is the Ns specular exponent.
	Shininess float32

	// Dissolve is the d opacity (1 = opaque).
	Dissolve float32
}

// Release frees the material's GPU textures. Safe to call more than once.
func (m *Material) Release() {
	if m.DiffuseTexture != nil {
		m.DiffuseTexture.Release()
		m.DiffuseTexture = nil
	}
	if m.NormalTexture != nil {
		m.NormalTexture.Release()
		m.NormalTexture = nil
	}
}
