package profile

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepMergeNestedMaps(t *testing.T) {
	base := map[string]any{"headers": map[string]any{"a": "1", "b": "2"}}
	override := map[string]any{"headers": map[string]any{"b": "3", "c": "4"}}
	merged := DeepMerge(base, override)
	assert.Equal(t, map[string]any{"a": "1", "b": "3", "c": "4"}, merged["headers"])
}

func TestDeepMergeReplacesNonMapTypes(t *testing.T) {
	base := map[string]any{"tags": []any{"a", "b"}}
	override := map[string]any{"tags": []any{"c"}}
	merged := DeepMerge(base, override)
	assert.Equal(t, []any{"c"}, merged["tags"])
}

func TestDeepMergeSelfIsIdempotent(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"b": "1"}}
	assert.Equal(t, doc, DeepMerge(doc, doc))
}

func TestExpandStringSubstitutesKnownVar(t *testing.T) {
	t.Setenv("TOKEN", "abc")
	assert.Equal(t, "Bearer abc", expandString("Bearer ${TOKEN}"))
}

func TestExpandStringFallbackWhenUnset(t *testing.T) {
	assert.Equal(t, "default", expandString("${MISSING_VAR:-default}"))
}

func TestExpandStringEmptyWhenUnsetNoFallback(t *testing.T) {
	assert.Equal(t, "", expandString("${MISSING_VAR_2}"))
}

func TestExpandStringIdempotentWithoutSyntax(t *testing.T) {
	assert.Equal(t, "plain text", expandString("plain text"))
}

func TestServiceListShadowsByTier(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bundled/http/api/users.json", []byte(`{"base_url":"bundled"}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/project/http/api/users.json", []byte(`{"base_url":"project"}`), 0o644))

	svc := NewService(fs, []Root{
		{Path: "/bundled", Tier: TierBundled},
		{Path: "/project", Tier: TierProject},
	})

	ids := svc.List(TypeHTTP)
	require.Len(t, ids, 1)
	assert.Equal(t, TierProject, ids[0].Tier)
}

func TestServiceFindNotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	svc := NewService(fs, []Root{{Path: "/bundled", Tier: TierBundled}})
	_, err := svc.Find(TypeHTTP, "api", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoaderMergesMetaAncestorsRootFirst(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bundled/http/api/_meta.json", []byte(`{"headers":{"a":"1","b":"2"}}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/bundled/http/api/users.json", []byte(`{"base_url":"https://api.example.com","headers":{"b":"3"}}`), 0o644))

	svc := NewService(fs, []Root{{Path: "/bundled", Tier: TierBundled}})
	id, err := svc.Find(TypeHTTP, "api", "users")
	require.NoError(t, err)

	loader := NewLoader(fs, false)
	doc, err := loader.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", doc["base_url"])
	assert.Equal(t, map[string]any{"a": "1", "b": "3"}, doc["headers"])
}

func TestLoaderSubstitutesEnvWhenEnabled(t *testing.T) {
	t.Setenv("TOKEN", "secret")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bundled/http/api/users.json", []byte(`{"headers":{"Auth":"${TOKEN}"}}`), 0o644))

	svc := NewService(fs, []Root{{Path: "/bundled", Tier: TierBundled}})
	id, err := svc.Find(TypeHTTP, "api", "users")
	require.NoError(t, err)

	loader := NewLoader(fs, true)
	doc, err := loader.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "secret", doc["headers"].(map[string]any)["Auth"])
}

func TestLoaderMalformedProfileErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bundled/http/api/users.json", []byte(`not json`), 0o644))

	svc := NewService(fs, []Root{{Path: "/bundled", Tier: TierBundled}})
	id, err := svc.Find(TypeHTTP, "api", "users")
	require.NoError(t, err)

	loader := NewLoader(fs, false)
	_, err = loader.Load(id)
	assert.ErrorIs(t, err, ErrMalformed)
}
