package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnproject/jn/pkg/plugin"
)

func csvPlugin(tier plugin.Tier) plugin.Info {
	return plugin.Info{
		Name:    "csv",
		Matches: []string{`.*\.csv$|.*\.tsv$`},
		Modes:   []plugin.Mode{plugin.ModeRead, plugin.ModeWrite},
		Tier:    tier,
		Language: plugin.LanguageNative,
	}
}

func TestFindMatchesByPattern(t *testing.T) {
	r := New()
	r.Register(csvPlugin(plugin.TierBundled))

	m, ok := r.Find("data.csv", plugin.ModeRead)
	require.True(t, ok)
	assert.Equal(t, "csv", m.Info.Name)

	_, ok = r.Find("data.json", plugin.ModeRead)
	assert.False(t, ok)
}

func TestFindRespectsMode(t *testing.T) {
	r := New()
	r.Register(plugin.Info{
		Name:    "readonly",
		Matches: []string{"^x"},
		Modes:   []plugin.Mode{plugin.ModeRead},
	})
	_, ok := r.Find("x-thing", plugin.ModeWrite)
	assert.False(t, ok)
}

func TestProjectTierOutscoresBundled(t *testing.T) {
	r := New()
	r.Register(csvPlugin(plugin.TierBundled))
	r.Register(csvPlugin(plugin.TierProject))

	m, ok := r.Find("data.csv", plugin.ModeRead)
	require.True(t, ok)
	assert.Equal(t, plugin.TierProject, m.Info.Tier)
}

func TestFindAllSortedByScoreDescending(t *testing.T) {
	r := New()
	r.Register(csvPlugin(plugin.TierBundled))
	r.Register(csvPlugin(plugin.TierProject))
	r.Register(csvPlugin(plugin.TierUser))

	all := r.FindAll("data.csv", plugin.ModeRead)
	require.Len(t, all, 3)
	assert.Equal(t, plugin.TierProject, all[0].Info.Tier)
	assert.Equal(t, plugin.TierUser, all[1].Info.Tier)
	assert.Equal(t, plugin.TierBundled, all[2].Info.Tier)
}

func TestDuplicateNamesBothAppearInAll(t *testing.T) {
	r := New()
	r.Register(csvPlugin(plugin.TierBundled))
	r.Register(csvPlugin(plugin.TierBundled))
	assert.Len(t, r.All(), 2)
}
