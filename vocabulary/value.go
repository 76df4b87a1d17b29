package vocabulary

// ValueKind tags the type actually stored in a VarValue. §3 "typed
// values (int, float, bool, AgentId, pointer, 2D vec, 3D vec)",
// §9 "Typed state variables".
type ValueKind int

const (
	NoValue ValueKind = iota
	IntValue
	FloatValue
	BoolValue
	AgentValue
	PointerValue
	Vec2Value
	Vec3Value
)

// Vec2 is an opaque 2D vector value. The runtime never interprets
// its contents; it only stores and returns it.
type Vec2 struct{ X, Y float64 }

// Vec3 is an opaque 3D vector value.
type Vec3 struct{ X, Y, Z float64 }

// VarValue is a tagged-variant value for a state/substate slot.
// Exactly one field is meaningful, selected by Kind; it is the
// caller's contract (§3) to read back with the same accessor used to
// write.
type VarValue struct {
	Kind    ValueKind
	Int     int64
	Float   float64
	Bool    bool
	Agent   AgentId
	Pointer interface{}
	Vec2    Vec2
	Vec3    Vec3
}
