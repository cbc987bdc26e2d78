package types_test

import (
	"testing"

	"viper/internal/types"
)

func TestIntInterning(t *testing.T) {
	r := types.NewRegistry()
	if r.Int(types.I32) != r.Int(types.I32) {
		t.Fatal("Int(i32) should return the same handle on repeated calls")
	}
}

func TestPointerCanonicalization(t *testing.T) {
	r := types.NewRegistry()
	i32 := r.Int(types.I32)

	p1 := r.PointerTo(r.PointerTo(i32))
	p2 := r.PointerTo(r.PointerTo(i32))

	if p1 != p2 {
		t.Fatal("pointerTo(pointerTo(T)) should be a single canonical handle")
	}
}

func TestFuncCanonicalization(t *testing.T) {
	r := types.NewRegistry()
	i32 := r.Int(types.I32)
	boolT := r.Bool()

	f1 := r.Func(boolT, []types.Type{i32, i32})
	f2 := r.Func(boolT, []types.Type{i32, i32})

	if f1 != f2 {
		t.Fatal("identical function signatures should canonicalize to one handle")
	}

	f3 := r.Func(boolT, []types.Type{i32})
	if f1 == f3 {
		t.Fatal("distinct signatures must not canonicalize together")
	}
}

func TestStructIncompleteThenComplete(t *testing.T) {
	r := types.NewRegistry()

	incomplete := r.DeclareStruct("Point")
	if !incomplete.Incomplete {
		t.Fatal("freshly declared struct should be incomplete")
	}

	complete := r.CompleteStruct("Point", []types.Field{
		{Name: "x", Type: r.Int(types.I32)},
		{Name: "y", Type: r.Int(types.I32)},
	})

	if incomplete != complete {
		t.Fatal("completing a struct must reuse the same handle so earlier references resolve")
	}
	if incomplete.Incomplete {
		t.Fatal("handle should no longer report incomplete after completion")
	}
	if incomplete.FieldIndex("y") != 1 {
		t.Fatalf("expected field y at index 1, got %d", incomplete.FieldIndex("y"))
	}
}

func TestErrorTypeIsDistinctSingleton(t *testing.T) {
	r := types.NewRegistry()
	if r.ErrorSentinel() != r.ErrorSentinel() {
		t.Fatal("error type handle must be a stable singleton")
	}
}
