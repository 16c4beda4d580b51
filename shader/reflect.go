// Package shader reflects the resource bindings of WGSL shaders.
//
// The state applier only emits the slots a shader actually declares. Reflect
// parses and lowers a WGSL module with naga and classifies every bound global
// variable into one of the four D3D11 binding classes:
//
//	var<uniform>                      constant buffer
//	var<storage, read>                shader resource view
//	var<storage, read_write>          unordered access view
//	texture_storage_* (write access)  unordered access view
//	other textures                    shader resource view
//	sampler, sampler_comparison       sampler
//
// The binding number is the slot. Groups are ignored: a D3D11 stage has a
// single flat slot space per class.
package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"

	"github.com/jamestiotio/dxvk/gpucore"
)

// Errors returned by Reflect.
var (
	ErrUnboundedArray = errors.New("shader: unbounded binding arrays are not supported")
	ErrSlotRange      = errors.New("shader: binding exceeds slot range")
)

// Class is a D3D11 binding class.
type Class uint8

// Binding classes.
const (
	ClassConstantBuffer Class = iota
	ClassShaderResource
	ClassSampler
	ClassUnorderedAccess
)

var classNames = [...]string{
	ClassConstantBuffer:  "ConstantBuffer",
	ClassShaderResource:  "ShaderResource",
	ClassSampler:         "Sampler",
	ClassUnorderedAccess: "UnorderedAccess",
}

// String returns the class name.
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "Unknown"
}

// Binding is one reflected resource binding.
type Binding struct {
	Name  string
	Class Class
	Slot  uint32
	Count uint32
}

// Layout is the set of slots a shader module uses, per class.
type Layout struct {
	Bindings []Binding
	Stages   []gpucore.Stage

	used [4]gpucore.SlotMask
}

// Used returns the slots of class c used by the module.
func (l *Layout) Used(c Class) gpucore.SlotMask {
	if l == nil || int(c) >= len(l.used) {
		return gpucore.SlotMask{}
	}
	return l.used[c]
}

// HasStage reports whether the module has an entry point for stage s.
func (l *Layout) HasStage(s gpucore.Stage) bool {
	for _, st := range l.Stages {
		if st == s {
			return true
		}
	}
	return false
}

// Reflect parses WGSL source and returns its binding layout.
func Reflect(source string) (*Layout, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("shader: parse: %w", err)
	}
	module, err := naga.Lower(ast)
	if err != nil {
		return nil, fmt.Errorf("shader: lower: %w", err)
	}
	return FromModule(module)
}

// FromModule builds a layout from a lowered naga module.
func FromModule(m *ir.Module) (*Layout, error) {
	l := &Layout{}
	for _, ep := range m.EntryPoints {
		if s, ok := stageOf(ep.Stage); ok && !l.HasStage(s) {
			l.Stages = append(l.Stages, s)
		}
	}

	for i := range m.GlobalVariables {
		gv := &m.GlobalVariables[i]
		if gv.Binding == nil {
			continue
		}
		class, count, ok, err := classify(m, gv)
		if err != nil {
			return nil, fmt.Errorf("%w (%s)", err, gv.Name)
		}
		if !ok {
			continue
		}
		slot := gv.Binding.Binding
		if uint64(slot)+uint64(count) > gpucore.MaxSlots {
			return nil, fmt.Errorf("%w: %s %s at %d", ErrSlotRange, class, gv.Name, slot)
		}
		l.Bindings = append(l.Bindings, Binding{Name: gv.Name, Class: class, Slot: slot, Count: count})
		l.used[class] = l.used[class].Or(gpucore.SlotRange(slot, count))
	}
	return l, nil
}

func classify(m *ir.Module, gv *ir.GlobalVariable) (Class, uint32, bool, error) {
	switch gv.Space {
	case ir.SpaceUniform:
		return ClassConstantBuffer, 1, true, nil

	case ir.SpaceStorage:
		if gv.Access == ir.StorageRead {
			return ClassShaderResource, 1, true, nil
		}
		return ClassUnorderedAccess, 1, true, nil

	case ir.SpaceHandle:
		if int(gv.Type) >= len(m.Types) {
			return 0, 0, false, nil
		}
		inner := m.Types[gv.Type].Inner
		count := uint32(1)
		if ba, ok := inner.(ir.BindingArrayType); ok {
			if ba.Size == nil {
				return 0, 0, false, ErrUnboundedArray
			}
			count = *ba.Size
			if int(ba.Base) >= len(m.Types) {
				return 0, 0, false, nil
			}
			inner = m.Types[ba.Base].Inner
		}
		switch t := inner.(type) {
		case ir.SamplerType:
			return ClassSampler, count, true, nil
		case ir.ImageType:
			if t.Class == ir.ImageClassStorage && t.StorageAccess != ir.StorageAccessRead {
				return ClassUnorderedAccess, count, true, nil
			}
			return ClassShaderResource, count, true, nil
		}
	}
	return 0, 0, false, nil
}

func stageOf(s ir.ShaderStage) (gpucore.Stage, bool) {
	switch s {
	case ir.StageVertex:
		return gpucore.StageVertex, true
	case ir.StageFragment:
		return gpucore.StagePixel, true
	case ir.StageCompute:
		return gpucore.StageCompute, true
	}
	return 0, false
}
