package models

// ResourceKind is the stable label of one encryptable record category.
// Each (user, kind) pair owns exactly one local token; the kind values are
// shared between the session manager and the record services and must not
// change once data exists for them.
type ResourceKind string

const (
	KindCourse ResourceKind = "course"
)

// DefaultResourceKinds is the category set provisioned for new users. The
// session manager takes the list as a constructor argument, so deployments
// can extend it without touching protocol code.
func DefaultResourceKinds() []ResourceKind {
	return []ResourceKind{KindCourse}
}
