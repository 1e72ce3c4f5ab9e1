//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var shaderNames = []string{
	"face.vert",
	"face.frag",
	"composite.vert",
	"composite.frag",
}

// Compiles the GLSL sources in assets/shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the volren binary.
func (Build) Binary() error {
	if err := buildShaders(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "volren", "."), withStream()); err != nil {
		return err
	}
	return nil
}

func buildShaders() error {
	for _, name := range shaderNames {
		src := "assets/shaders/" + name
		out := src + ".spv"
		if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}
