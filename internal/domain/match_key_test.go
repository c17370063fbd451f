package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMatchKey_Kind(t *testing.T) {
	pe, ex := primitive.NewObjectID(), primitive.NewObjectID()

	require.Equal(t, MatchKeyProgramLinked, ProgramLinkedKey(pe, ex).Kind())
	require.Equal(t, MatchKeyCatalogLinked, CatalogLinkedKey(ex).Kind())
	require.Equal(t, MatchKeyCustom, CustomKey("Farmer Carry").Kind())
	require.Equal(t, MatchKeyEmpty, NewMatchKey(nil, nil, ptrS("   ")).Kind())
	require.True(t, MatchKey{}.IsEmpty())
}

func TestMatchKey_Equality(t *testing.T) {
	pe, ex := primitive.NewObjectID(), primitive.NewObjectID()

	require.True(t, CustomKey(" Farmer CARRY ").Equal(CustomKey("farmer carry")))
	require.True(t, NewMatchKey(&pe, &ex, nil).Equal(ProgramLinkedKey(pe, ex)))

	// A program-linked key never equals a catalog key for the same exercise.
	require.False(t, ProgramLinkedKey(pe, ex).Equal(CatalogLinkedKey(ex)))
	require.False(t, CatalogLinkedKey(ex).Equal(CustomKey("bench")))
	require.False(t, ProgramLinkedKey(pe, ex).Equal(ProgramLinkedKey(primitive.NewObjectID(), ex)))
}

func TestMatchKey_MapKey(t *testing.T) {
	ex := primitive.NewObjectID()
	seen := map[MatchKey]int{}
	seen[CatalogLinkedKey(ex)]++
	seen[NewMatchKey(nil, &ex, nil)]++
	seen[CustomKey("Row")]++
	seen[CustomKey("row ")]++

	require.Len(t, seen, 2)
	require.Equal(t, 2, seen[CatalogLinkedKey(ex)])
	require.Equal(t, 2, seen[CustomKey("ROW")])
}

func TestSessionExercise_MatchKey(t *testing.T) {
	pe, ex := primitive.NewObjectID(), primitive.NewObjectID()

	planned := SessionExercise{ProgramExerciseID: &pe, ExerciseID: &ex}
	require.Equal(t, ProgramLinkedKey(pe, ex), planned.MatchKey())

	custom := SessionExercise{IsAdHoc: true, CustomExerciseName: ptrS("Sled Push")}
	require.Equal(t, CustomKey("sled push"), custom.MatchKey())
	require.Contains(t, custom.MatchKey().String(), "custom")
}
