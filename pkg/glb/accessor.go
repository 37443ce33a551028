package glb

import (
	"fmt"
	"slices"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// MaxAccessorCount bounds the elements a single accessor may declare.
const MaxAccessorCount = 1 << 24

var typeComponents = map[gltf.AccessorType]int{
	gltf.AccessorScalar: 1,
	gltf.AccessorVec2:   2,
	gltf.AccessorVec3:   3,
	gltf.AccessorVec4:   4,
	gltf.AccessorMat4:   16,
}

var componentSizes = map[gltf.ComponentType]int{
	gltf.ComponentByte:   1,
	gltf.ComponentUbyte:  1,
	gltf.ComponentShort:  2,
	gltf.ComponentUshort: 2,
	gltf.ComponentUint:   4,
	gltf.ComponentFloat:  4,
}

// ReadPositions reads a float VEC3 POSITION accessor.
func (f *File) ReadPositions(index int) ([][3]float32, error) {
	acc, err := f.accessor(index, gltf.AccessorVec3, gltf.ComponentFloat)
	if err != nil {
		return nil, err
	}
	out, err := modeler.ReadPosition(f.Document, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("%w %d: %v", ErrInvalidAccessor, index, err)
	}
	return out, nil
}

// ReadNormals reads a float VEC3 NORMAL accessor.
func (f *File) ReadNormals(index int) ([][3]float32, error) {
	acc, err := f.accessor(index, gltf.AccessorVec3, gltf.ComponentFloat)
	if err != nil {
		return nil, err
	}
	out, err := modeler.ReadNormal(f.Document, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("%w %d: %v", ErrInvalidAccessor, index, err)
	}
	return out, nil
}

// ReadIndices reads an unsigned SCALAR accessor and widens it to uint32.
func (f *File) ReadIndices(index int) ([]uint32, error) {
	acc, err := f.accessor(index, gltf.AccessorScalar,
		gltf.ComponentUbyte, gltf.ComponentUshort, gltf.ComponentUint)
	if err != nil {
		return nil, err
	}
	out, err := modeler.ReadIndices(f.Document, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("%w %d: %v", ErrInvalidAccessor, index, err)
	}
	return out, nil
}

// accessor returns accessor index after checking its type and that every
// element it declares lies inside its buffer view and buffer. Nothing is
// allocated from Count before these checks pass. An accessor without a
// buffer view reads as zeros.
func (f *File) accessor(index int, typ gltf.AccessorType, components ...gltf.ComponentType) (*Accessor, error) {
	doc := f.Document
	if index < 0 || index >= len(doc.Accessors) || doc.Accessors[index] == nil {
		return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidAccessor, index)
	}
	acc := doc.Accessors[index]

	if acc.Type != typ || !slices.Contains(components, acc.ComponentType) {
		return nil, fmt.Errorf("%w %d: unexpected %v/%v", ErrInvalidAccessor, index, acc.Type, acc.ComponentType)
	}
	if acc.Count < 0 || acc.Count > MaxAccessorCount {
		return nil, fmt.Errorf("%w %d: count %d outside [0, %d]", ErrInvalidAccessor, index, acc.Count, MaxAccessorCount)
	}
	if acc.Sparse != nil {
		return nil, fmt.Errorf("%w %d: sparse accessors are not supported", ErrInvalidAccessor, index)
	}
	elem := typeComponents[acc.Type] * componentSizes[acc.ComponentType]

	if acc.BufferView == nil {
		return acc, nil
	}
	vi := int(*acc.BufferView)
	if vi < 0 || vi >= len(doc.BufferViews) || doc.BufferViews[vi] == nil {
		return nil, fmt.Errorf("%w %d: buffer view %d out of range", ErrInvalidAccessor, index, vi)
	}
	view := doc.BufferViews[vi]
	if view.Buffer < 0 || int(view.Buffer) >= len(doc.Buffers) || doc.Buffers[view.Buffer] == nil {
		return nil, fmt.Errorf("%w %d: buffer %d out of range", ErrInvalidAccessor, index, view.Buffer)
	}
	data := doc.Buffers[view.Buffer].Data

	stride := elem
	if view.ByteStride != 0 {
		stride = int(view.ByteStride)
	}
	if stride < elem {
		return nil, fmt.Errorf("%w %d: stride %d smaller than element %d", ErrInvalidAccessor, index, stride, elem)
	}

	if view.ByteOffset < 0 || view.ByteLength < 0 || acc.ByteOffset < 0 ||
		int(view.ByteOffset) > len(data) || int(view.ByteLength) > len(data)-int(view.ByteOffset) {
		return nil, fmt.Errorf("%w: buffer view %d exceeds buffer %d", ErrTruncated, vi, view.Buffer)
	}
	avail := int(view.ByteLength) - int(acc.ByteOffset)
	if avail < 0 {
		return nil, fmt.Errorf("%w: accessor %d starts past buffer view %d", ErrTruncated, index, vi)
	}
	// Written as a division so a huge count cannot overflow.
	if acc.Count > 0 && (avail < elem || int(acc.Count)-1 > (avail-elem)/stride) {
		return nil, fmt.Errorf("%w: accessor %d exceeds buffer view %d", ErrTruncated, index, vi)
	}
	return acc, nil
}
