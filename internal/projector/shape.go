package projector

import (
	"bytes"
	"encoding/json"
)

// shapeObject keeps member insertion order so the skeleton mirrors the
// configured path order.
type shapeObject struct {
	keys    []string
	members map[string]any
}

type shapeArray struct {
	elem any
}

func newShapeObject() *shapeObject {
	return &shapeObject{members: make(map[string]any)}
}

func (o *shapeObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.members[k])
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a *shapeArray) MarshalJSON() ([]byte, error) {
	if a.elem == nil {
		return []byte("[]"), nil
	}
	val, err := json.Marshal(a.elem)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{'['}, val...), ']'), nil
}

// Skeleton returns an indented JSON document with an empty-string leaf at every
// declared path. In list mode the record shape is wrapped in an array. Paths
// that do not compile, or that conflict with an earlier path, are left out.
func (p *Projector) Skeleton() string {
	var root any
	for _, segs := range p.compiled {
		if len(segs) == 0 {
			continue
		}
		if root == nil {
			root = newContainer(segs[0])
		}
		insertShape(root, segs)
	}
	if root == nil {
		root = newShapeObject()
	}
	if p.listMode {
		root = &shapeArray{elem: root}
	}

	raw, err := json.Marshal(root)
	if err != nil {
		return "{}"
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}

func newContainer(seg segment) any {
	if seg.isIndex {
		return &shapeArray{}
	}
	return newShapeObject()
}

// insertShape adds segs below node, creating containers as needed. It returns
// false when the path conflicts with the shape built so far.
func insertShape(node any, segs []segment) bool {
	seg := segs[0]
	last := len(segs) == 1

	var child any
	if !last {
		child = newContainer(segs[1])
	} else {
		child = ""
	}

	switch n := node.(type) {
	case *shapeObject:
		if seg.isIndex {
			return false
		}
		existing, ok := n.members[seg.name]
		if !ok {
			n.keys = append(n.keys, seg.name)
			n.members[seg.name] = child
			existing = child
		}
		if last {
			return true
		}
		return insertShape(existing, segs[1:])
	case *shapeArray:
		if !seg.isIndex {
			return false
		}
		if n.elem == nil {
			n.elem = child
		}
		if last {
			return true
		}
		return insertShape(n.elem, segs[1:])
	default:
		return false
	}
}
