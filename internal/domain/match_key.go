package domain

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchKeyKind names which identity component leads a MatchKey.
type MatchKeyKind int

const (
	MatchKeyEmpty MatchKeyKind = iota
	MatchKeyProgramLinked
	MatchKeyCatalogLinked
	MatchKeyCustom
)

func (k MatchKeyKind) String() string {
	switch k {
	case MatchKeyProgramLinked:
		return "program"
	case MatchKeyCatalogLinked:
		return "catalog"
	case MatchKeyCustom:
		return "custom"
	default:
		return "empty"
	}
}

// MatchKey identifies "the same exercise" across sessions of one program.
//
// It is the tuple (programExerciseId, exerciseId, normalized custom name). A zero
// ObjectID or an empty name stand for an absent component. The struct is comparable,
// so == is the equality used for matching and the key can index a map directly.
type MatchKey struct {
	programExerciseID primitive.ObjectID
	exerciseID        primitive.ObjectID
	customName        string
}

// NewMatchKey builds the key from the three nullable identity fields of a session exercise.
func NewMatchKey(programExerciseID, exerciseID *primitive.ObjectID, customName *string) MatchKey {
	var k MatchKey
	if programExerciseID != nil {
		k.programExerciseID = *programExerciseID
	}
	if exerciseID != nil {
		k.exerciseID = *exerciseID
	}
	if customName != nil {
		k.customName = NormalizeExerciseName(*customName)
	}
	return k
}

// ProgramLinkedKey is the key of a planned exercise slot.
func ProgramLinkedKey(programExerciseID, exerciseID primitive.ObjectID) MatchKey {
	return MatchKey{programExerciseID: programExerciseID, exerciseID: exerciseID}
}

// CatalogLinkedKey is the key of an ad-hoc exercise picked from the catalog.
func CatalogLinkedKey(exerciseID primitive.ObjectID) MatchKey {
	return MatchKey{exerciseID: exerciseID}
}

// CustomKey is the key of an ad-hoc exercise with a free-text name.
func CustomKey(name string) MatchKey {
	return MatchKey{customName: NormalizeExerciseName(name)}
}

// NormalizeExerciseName trims and lower-cases a custom exercise name.
func NormalizeExerciseName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Kind reports the leading identity component.
func (k MatchKey) Kind() MatchKeyKind {
	switch {
	case !k.programExerciseID.IsZero():
		return MatchKeyProgramLinked
	case !k.exerciseID.IsZero():
		return MatchKeyCatalogLinked
	case k.customName != "":
		return MatchKeyCustom
	default:
		return MatchKeyEmpty
	}
}

// IsEmpty is true when no component is set; such a key never matches anything.
func (k MatchKey) IsEmpty() bool {
	return k.Kind() == MatchKeyEmpty
}

// Equal compares all three components.
func (k MatchKey) Equal(other MatchKey) bool {
	return k == other
}

func (k MatchKey) String() string {
	return fmt.Sprintf("%s(program=%s, exercise=%s, name=%q)", k.Kind(), hexOrNil(k.programExerciseID), hexOrNil(k.exerciseID), k.customName)
}

func hexOrNil(id primitive.ObjectID) string {
	if id.IsZero() {
		return "nil"
	}
	return id.Hex()
}
