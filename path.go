package tagged

import (
	"strconv"
	"strings"
)

// PathElement is one step of a coding path, either an object key or a collection index.
type PathElement struct {
	Key   string
	Index int

	isIndex bool
}

// Key returns a PathElement that selects the child named key.
func Key(key string) PathElement {
	return PathElement{Key: key}
}

// Index returns a PathElement that selects the element at position idx of a collection.
func Index(idx int) PathElement {
	return PathElement{Index: idx, isIndex: true}
}

// IsIndex reports whether the element selects a collection element.
func (e PathElement) IsIndex() bool {
	return e.isIndex
}

// Path is the sequence of keys and indices traversed to reach a value.
type Path []PathElement

// String renders the path in a JSONPath like notation, e.g. $.messages[3].url
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteByte('$')

	for _, elem := range p {
		if elem.isIndex {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(elem.Index))
			sb.WriteByte(']')
			continue
		}

		if isPlainKey(elem.Key) {
			sb.WriteByte('.')
			sb.WriteString(elem.Key)
			continue
		}

		sb.WriteByte('[')
		sb.WriteString(strconv.Quote(elem.Key))
		sb.WriteByte(']')
	}

	return sb.String()
}

// lastKey returns the innermost object key of the path.
func (p Path) lastKey() string {
	for idx := len(p) - 1; idx >= 0; idx-- {
		if !p[idx].isIndex {
			return p[idx].Key
		}
	}

	return ""
}

func isPlainKey(key string) bool {
	if key == "" {
		return false
	}

	for _, ch := range key {
		isLetter := ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
		isDigit := ch >= '0' && ch <= '9'
		if !isLetter && !isDigit && ch != '_' && ch != '-' {
			return false
		}
	}

	return true
}
