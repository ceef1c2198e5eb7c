package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/paint-house/engine/material"
)

type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor converts glTF materials into shading descriptor templates.
// Templates are never handed to a scene graph directly; each instantiation clones them.
type gltfMaterialExtractor interface {
	// ExtractMaterial converts one material. Materials carrying KHR_materials_unlit become
	// basic descriptors; everything else becomes a standard descriptor with the glTF
	// defaults (white, metallic 1, roughness 1) for absent factors.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - material.Descriptor: the descriptor template
	//   - error: error if the index is out of range
	ExtractMaterial(materialIndex int) (material.Descriptor, error)

	// ExtractAllMaterials converts every material in document order.
	//
	// Returns:
	//   - []material.Descriptor: the descriptor templates
	//   - error: error if extraction fails
	ExtractAllMaterials() ([]material.Descriptor, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex int) (material.Descriptor, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return nil, fmt.Errorf("material index %d: %w", materialIndex, errAccessorOutOfRange)
	}
	src := &doc.Materials[materialIndex]

	baseColor := [4]float32{1, 1, 1, 1}
	metallic, roughness := float32(1), float32(1)
	if pbr := src.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			baseColor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			roughness = *pbr.RoughnessFactor
		}
	}

	side := material.FrontSide
	if src.DoubleSided {
		side = material.DoubleSide
	}
	opts := []material.DescriptorBuilderOption{
		material.WithName(src.Name),
		material.WithColor([3]float32{baseColor[0], baseColor[1], baseColor[2]}),
		material.WithSide(side),
		material.WithExtras(src.Extras),
	}
	if src.AlphaMode == gltfAlphaModeBlend {
		opts = append(opts, material.WithOpacity(baseColor[3]))
	}

	if _, unlit := src.Extensions[gltfExtensionUnlit]; unlit {
		return material.NewBasic(opts...), nil
	}
	opts = append(opts, material.WithMetalness(metallic), material.WithRoughness(roughness))
	return material.NewStandard(opts...), nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]material.Descriptor, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	out := make([]material.Descriptor, len(doc.Materials))
	for i := range doc.Materials {
		d, err := e.ExtractMaterial(i)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
