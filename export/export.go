// Package export writes the skinned rig as binary glTF.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/geometry"
	"github.com/mo-kasiri/Three-IK/engine/skeleton"
	"github.com/mo-kasiri/Three-IK/engine/skin"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrMismatch is returned when the influences do not cover the geometry's vertices.
var ErrMismatch = errors.New("influence count does not match vertex count")

// Build creates a glTF document holding the mesh in its bind pose, one node per bone carrying the bone's current
// local transform, and a skin whose joints follow the bone list order.
//
// Parameters:
//   - sk: the bound skeleton, world matrices current
//   - geom: the rest geometry
//   - influences: one influence per vertex
//
// Returns:
//   - *gltf.Document: the document, scene 0 holds the mesh node and the skeleton root
//   - error: ErrMismatch when the attribute counts disagree
func Build(sk *skeleton.Skeleton, geom *geometry.Geometry, influences []skin.Influence) (*gltf.Document, error) {
	n := geom.VertexCount()
	if len(influences) != n {
		return nil, fmt.Errorf("%d influences for %d vertices: %w", len(influences), n, ErrMismatch)
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "Three IK"

	positions := make([][3]float32, n)
	normals := make([][3]float32, n)
	for i := range geom.Positions {
		positions[i] = geom.Positions[i]
		normals[i] = geom.Normals[i]
	}
	joints, weights := skin.Flatten(influences)

	attributes := map[string]uint32{
		"POSITION":  modeler.WritePosition(doc, positions),
		"NORMAL":    modeler.WriteNormal(doc, normals),
		"JOINTS_0":  modeler.WriteJoints(doc, joints),
		"WEIGHTS_0": modeler.WriteWeights(doc, weights),
	}
	indices := modeler.WriteIndices(doc, geom.Indices)

	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        "default",
		DoubleSided: true,
	})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "Skinned Cylinder",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(indices),
			Attributes: attributes,
			Material:   gltf.Index(0),
		}},
	})

	// Bone i becomes node i+1; node 0 is the mesh.
	const firstJoint = 1
	meshNode := &gltf.Node{Name: "Skinned Cylinder", Mesh: gltf.Index(0), Skin: gltf.Index(0)}
	doc.Nodes = append(doc.Nodes, meshNode)

	bones := sk.Bones()
	jointNodes := make([]uint32, len(bones))
	inverseBind := make([][4][4]float32, len(bones))
	for i := range bones {
		b := &bones[i]
		node := &gltf.Node{
			Name:        b.Name,
			Translation: b.Position,
			Rotation:    [4]float32{b.Rotation.V[0], b.Rotation.V[1], b.Rotation.V[2], b.Rotation.W},
			Scale:       b.Scale,
		}
		for _, c := range b.Children {
			node.Children = append(node.Children, uint32(firstJoint+c))
		}
		jointNodes[i] = uint32(firstJoint + i)
		inverseBind[i] = columns(sk.InverseBindMatrix(i))
		doc.Nodes = append(doc.Nodes, node)
	}

	root := uint32(firstJoint + sk.Layout().Root)
	doc.Skins = append(doc.Skins, &gltf.Skin{
		Name:                "Bone Chain",
		InverseBindMatrices: gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, inverseBind)),
		Skeleton:            gltf.Index(root),
		Joints:              jointNodes,
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0, root)
	return doc, nil
}

// columns converts a column-major matrix to the column array layout glTF accessors store.
func columns(m mgl32.Mat4) [4][4]float32 {
	var out [4][4]float32
	for c := range 4 {
		out[c] = m.Col(c)
	}
	return out
}

// WriteGLB encodes the rig as a binary glTF stream.
//
// Parameters:
//   - w: the destination
//   - sk: the bound skeleton
//   - geom: the rest geometry
//   - influences: one influence per vertex
//
// Returns:
//   - error: a Build or encoding error
func WriteGLB(w io.Writer, sk *skeleton.Skeleton, geom *geometry.Geometry, influences []skin.Influence) error {
	doc, err := Build(sk, geom, influences)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode glb: %w", err)
	}
	return nil
}

// SaveGLB writes the rig to path, replacing any existing file.
func SaveGLB(path string, sk *skeleton.Skeleton, geom *geometry.Geometry, influences []skin.Influence) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export %s: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := WriteGLB(bw, sk, geom, influences); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return bw.Flush()
}
