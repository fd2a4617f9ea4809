package http1

import (
	"strings"
)

// Field is a single header field.
type Field struct {
	Name  string
	Value string
}

// fieldMap stores header fields in insertion order with case-insensitive,
// single-valued lookup. The original casing of a name is the one supplied on
// first set; later sets overwrite the value but keep the first casing.
type fieldMap struct {
	list  []Field
	index map[string]int // case-folded name -> position in list
}

func foldName(name string) string {
	return strings.ToLower(name)
}

func (m *fieldMap) set(name, value string) {
	if i, ok := m.index[foldName(name)]; ok {
		m.list[i].Value = value
		return
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	m.index[foldName(name)] = len(m.list)
	m.list = append(m.list, Field{Name: name, Value: value})
}

func (m *fieldMap) get(name string) (string, bool) {
	i, ok := m.index[foldName(name)]
	if !ok {
		return "", false
	}
	return m.list[i].Value, true
}

func (m *fieldMap) has(name string) bool {
	_, ok := m.index[foldName(name)]
	return ok
}

// fields returns an ordered copy of the field list.
func (m *fieldMap) fields() []Field {
	fields := make([]Field, len(m.list))
	copy(fields, m.list)
	return fields
}
