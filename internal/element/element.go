// Package element classifies schema element tags and carries their attributes.
package element

// Tag identifies the schema constructs that have their own rule set.
type Tag uint8

const (
	// Other is any tag without a dedicated rule set. The raw name is kept on Kind.
	Other Tag = iota
	Field
	DynamicField
	CopyField
	FieldType
	UniqueKey
)

var tagNames = [...]string{
	Field:        "field",
	DynamicField: "dynamicField",
	CopyField:    "copyField",
	FieldType:    "fieldType",
	UniqueKey:    "uniqueKey",
}

// String returns the element tag name, or "" for Other.
func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return ""
}

// Kind is the classified form of an element tag.
type Kind struct {
	raw string
	tag Tag
}

// Classify maps a raw tag name to its Kind. Unknown tags become Other(raw).
func Classify(raw string) Kind {
	for tag, name := range tagNames {
		if name != "" && name == raw {
			return Kind{tag: Tag(tag), raw: raw}
		}
	}
	return Kind{tag: Other, raw: raw}
}

// Tag returns the rule set selector.
func (k Kind) Tag() Tag { return k.tag }

// Name returns the raw element tag, e.g. "fieldType".
func (k Kind) Name() string { return k.raw }

// IsOther reports whether the kind has no dedicated rule set.
func (k Kind) IsOther() bool { return k.tag == Other }

// String returns the raw element tag.
func (k Kind) String() string { return k.raw }

// Attr is one attribute of an element instance.
type Attr struct {
	Key   string
	Value string
}

// Attrs is the ordered attribute list of one element instance.
// Keys may repeat; lookups return the last occurrence.
type Attrs []Attr

// Lookup returns the value of the last attribute named key.
func (a Attrs) Lookup(key string) (string, bool) {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].Key == key {
			return a[i].Value, true
		}
	}
	return "", false
}

// Value returns the value of the last attribute named key, or "".
func (a Attrs) Value(key string) string {
	v, _ := a.Lookup(key)
	return v
}

// Has reports whether any attribute is named key.
func (a Attrs) Has(key string) bool {
	_, ok := a.Lookup(key)
	return ok
}

// All returns the values of every attribute named key, in document order.
func (a Attrs) All(key string) []string {
	var out []string
	for _, attr := range a {
		if attr.Key == key {
			out = append(out, attr.Value)
		}
	}
	return out
}
