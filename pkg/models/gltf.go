package models

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/tuikart/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals fills in smooth normals when the file carries none.
	CalculateNormals bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{CalculateNormals: true}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	for i, mat := range doc.Materials {
		color := [4]float64{1, 1, 1, 1}
		if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
			color = *pbr.BaseColorFactor
		}
		name := mat.Name
		if name == "" {
			name = fmt.Sprintf("material-%d", i)
		}
		mesh.Materials = append(mesh.Materials, Material{Name: name, BaseColor: color})
	}

	for _, m := range doc.Meshes {
		if err := readMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("read mesh %q: %w", m.Name, err)
		}
	}

	if l.CalculateNormals && !hasNormals(mesh) {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()
	return mesh, nil
}

func hasNormals(m *Mesh) bool {
	for _, v := range m.Vertices {
		if v.Normal.LenSq() > 1e-6 {
			return true
		}
	}
	return false
}

// readMesh appends the triangle primitives of m to mesh.
func readMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}
		var normals [][3]float32
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: vec3(p)}
			if i < len(normals) {
				v.Normal = vec3(normals[i])
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{Material: material}
			for j := range 3 {
				idx := int(indices[i+j])
				if idx >= len(positions) {
					return fmt.Errorf("index %d out of range (%d vertices)", idx, len(positions))
				}
				f.V[j] = base + idx
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}
	return nil
}

// SaveGLB writes mesh to path as a binary GLTF document with one primitive
// per material.
func SaveGLB(mesh *Mesh, path string) error {
	doc, err := Document(mesh)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save glb: %w", err)
	}
	return nil
}

// Document converts mesh into an in-memory GLTF document.
func Document(mesh *Mesh) (*gltf.Document, error) {
	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("mesh %q has no faces", mesh.Name)
	}

	doc := gltf.NewDocument()
	positions := make([][3]float32, len(mesh.Vertices))
	normals := make([][3]float32, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		positions[i] = float3(v.Position)
		normals[i] = float3(v.Normal.NormalizeOr(math3d.Up()))
	}
	posIdx := modeler.WritePosition(doc, positions)
	normIdx := modeler.WriteNormal(doc, normals)

	for _, mat := range mesh.Materials {
		color := mat.BaseColor
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name:                 mat.Name,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &color},
		})
	}

	// Faces are grouped by material; -1 collects unassigned faces.
	groups := make(map[int][]uint32)
	order := make([]int, 0, len(mesh.Materials)+1)
	for _, f := range mesh.Faces {
		mat := f.Material
		if mat >= len(mesh.Materials) {
			mat = -1
		}
		if _, seen := groups[mat]; !seen {
			order = append(order, mat)
		}
		groups[mat] = append(groups[mat], uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
	}

	gm := &gltf.Mesh{Name: mesh.Name}
	for _, mat := range order {
		prim := &gltf.Primitive{
			Indices: gltf.Index(modeler.WriteIndices(doc, groups[mat])),
			Mode:    gltf.PrimitiveTriangles,
		}
		prim.Attributes = map[string]int{gltf.POSITION: posIdx, gltf.NORMAL: normIdx}
		if mat >= 0 {
			prim.Material = gltf.Index(mat)
		}
		gm.Primitives = append(gm.Primitives, prim)
	}

	doc.Meshes = append(doc.Meshes, gm)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: mesh.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	return doc, nil
}

func vec3(f [3]float32) math3d.Vec3 {
	return math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
}

func float3(v math3d.Vec3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
