package cache

// Kind identifies the entity family a cache tag scopes.
type Kind string

const (
	KindUsers     Kind = "users"
	KindCourses   Kind = "courses"
	KindPurchases Kind = "purchases"
)

type scope uint8

const (
	scopeGlobal scope = iota
	scopeID
	scopeUser
)

// Tag labels memoized results with an invalidation scope.
// Tags can only be built through Global, ByID and ByUser so that every
// tagger and invalidator serializes them through the same String method.
type Tag struct {
	scope scope
	kind  Kind
	id    string
}

// Global tags every cached result of the given kind.
func Global(kind Kind) Tag {
	return Tag{scope: scopeGlobal, kind: kind}
}

// ByID tags results derived from the single entity with the given id.
func ByID(kind Kind, id string) Tag {
	return Tag{scope: scopeID, kind: kind, id: id}
}

// ByUser tags results of the given kind owned by a user.
func ByUser(kind Kind, userID string) Tag {
	return Tag{scope: scopeUser, kind: kind, id: userID}
}

// String renders the tag as "global:<kind>", "id:<id>-<kind>" or "user:<userId>-<kind>".
func (t Tag) String() string {
	switch t.scope {
	case scopeID:
		return "id:" + t.id + "-" + string(t.kind)
	case scopeUser:
		return "user:" + t.id + "-" + string(t.kind)
	default:
		return "global:" + string(t.kind)
	}
}

// EntityTags returns the tags every mutation of a single entity must invalidate.
func EntityTags(kind Kind, id string) []Tag {
	return []Tag{Global(kind), ByID(kind, id)}
}
