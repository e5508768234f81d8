package lumen

import (
	"reflect"
)

// Queries visit archetypes in key order and entities in ascending id order,
// so two runs over the same world see the same sequence.
type Query1[A any] struct {
	ecs     *Ecs
	without set[componentId]
}
type Query2[A, B any] struct {
	ecs     *Ecs
	without set[componentId]
}
type Query3[A, B, C any] struct {
	ecs     *Ecs
	without set[componentId]
}

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }

// Without excludes entities that carry any of the given component types.
func (q Query1[A]) Without(components ...any) Query1[A] {
	q.without = identifyOptionals(q.ecs, components...)
	return q
}

func (q Query2[A, B]) Without(components ...any) Query2[A, B] {
	q.without = identifyOptionals(q.ecs, components...)
	return q
}

func (q Query3[A, B, C]) Without(components ...any) Query3[A, B, C] {
	q.without = identifyOptionals(q.ecs, components...)
	return q
}

// Map calls m for every matching entity until m returns false. Component
// types listed in optionals may be missing; m then receives nil for them.
func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	id1 := identifyComponents1[A](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.ordered {
		if excluded(arch, q.without) {
			continue
		}
		comps1, ok1 := column[A](arch, id1, opt)
		if !ok1 {
			continue
		}

		for _, entityId := range arch.order {
			r := arch.entities[entityId]
			if !m(entityId, at(comps1, r)) {
				return
			}
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	id1, id2 := identifyComponents2[A, B](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.ordered {
		if excluded(arch, q.without) {
			continue
		}
		comps1, ok1 := column[A](arch, id1, opt)
		comps2, ok2 := column[B](arch, id2, opt)
		if !ok1 || !ok2 {
			continue
		}

		for _, entityId := range arch.order {
			r := arch.entities[entityId]
			if !m(entityId, at(comps1, r), at(comps2, r)) {
				return
			}
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	id1, id2, id3 := identifyComponents3[A, B, C](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.ordered {
		if excluded(arch, q.without) {
			continue
		}
		comps1, ok1 := column[A](arch, id1, opt)
		comps2, ok2 := column[B](arch, id2, opt)
		comps3, ok3 := column[C](arch, id3, opt)
		if !ok1 || !ok2 || !ok3 {
			continue
		}

		for _, entityId := range arch.order {
			r := arch.entities[entityId]
			if !m(entityId, at(comps1, r), at(comps2, r), at(comps3, r)) {
				return
			}
		}
	}
}

// column returns the archetype's storage for id. A missing optional column
// matches with a nil slice.
func column[T any](arch *archetype, id componentId, optionals set[componentId]) ([]T, bool) {
	if data, ok := arch.componentData[id]; ok {
		return data.([]T), true
	}
	if _, ok := optionals[id]; ok {
		return nil, true
	}
	return nil, false
}

func at[T any](comps []T, r row) *T {
	if comps == nil {
		return nil
	}
	return &comps[r]
}

func excluded(arch *archetype, without set[componentId]) bool {
	for id := range without {
		if _, ok := arch.componentData[id]; ok {
			return true
		}
	}
	return false
}

func identifyOptionals(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId])
	for _, c := range components {
		res[ecs.getComponentId(componentType(c))] = struct{}{}
	}

	return res
}

func identifyComponents1[A any](ecs *Ecs) componentId {
	var a A
	return ecs.getComponentId(reflect.TypeOf(a))
}

func identifyComponents2[A, B any](ecs *Ecs) (componentId, componentId) {
	var a A
	var b B
	return ecs.getComponentId(reflect.TypeOf(a)), ecs.getComponentId(reflect.TypeOf(b))
}

func identifyComponents3[A, B, C any](ecs *Ecs) (componentId, componentId, componentId) {
	var a A
	var b B
	var c C
	return ecs.getComponentId(reflect.TypeOf(a)), ecs.getComponentId(reflect.TypeOf(b)), ecs.getComponentId(reflect.TypeOf(c))
}
