package profile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDeepMergeNestedMapsMergeKeywise(t *testing.T) {
	base := map[string]any{
		"base_url": "https://api.example.com",
		"headers": map[string]any{
			"Accept":        "application/json",
			"Authorization": "Bearer base",
		},
	}
	override := map[string]any{
		"headers": map[string]any{
			"Authorization": "Bearer override",
			"X-Request-Id":  "abc",
		},
		"timeout_ms": 5000,
	}

	got := DeepMerge(base, override)
	want := map[string]any{
		"base_url": "https://api.example.com",
		"headers": map[string]any{
			"Accept":        "application/json",
			"Authorization": "Bearer override",
			"X-Request-Id":  "abc",
		},
		"timeout_ms": 5000,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("DeepMerge mismatch (-want +got):\n%s", diff)
	}
}

func TestDeepMergeMismatchedTypesOverrideReplaces(t *testing.T) {
	base := map[string]any{
		"tags": []any{"a", "b"},
		"meta": map[string]any{"owner": "acme"},
	}
	override := map[string]any{
		"tags": "not-a-list-anymore",
		"meta": "not-a-map-anymore",
	}

	got := DeepMerge(base, override)
	want := map[string]any{
		"tags": "not-a-list-anymore",
		"meta": "not-a-map-anymore",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("DeepMerge mismatch (-want +got):\n%s", diff)
	}
}

func TestDeepMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"a": map[string]any{"x": 1}}
	override := map[string]any{"a": map[string]any{"y": 2}}

	baseCopy := map[string]any{"a": map[string]any{"x": 1}}
	overrideCopy := map[string]any{"a": map[string]any{"y": 2}}

	DeepMerge(base, override)

	if diff := cmp.Diff(baseCopy, base); diff != "" {
		t.Fatalf("base mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(overrideCopy, override); diff != "" {
		t.Fatalf("override mutated (-want +got):\n%s", diff)
	}
}
