// Package plugin defines the data types shared by discovery, cache, and
// registry: the record describing one discovered plugin executable, and
// the directory descriptor discovery scans.
package plugin

import "time"

// Tier is a discovery priority level.
type Tier string

const (
	TierProject Tier = "project"
	TierUser    Tier = "user"
	TierBundled Tier = "bundled"
)

// tierPriority is the scoring constant the registry adds for each tier.
var tierPriority = map[Tier]int{
	TierProject: 300,
	TierUser:    200,
	TierBundled: 100,
}

// Priority returns this tier's scoring contribution.
func (t Tier) Priority() int {
	return tierPriority[t]
}

// Language distinguishes a native binary plugin from an interpreted script.
type Language string

const (
	LanguageNative Language = "native"
	LanguageScript Language = "script"
)

// languagePriority is the scoring constant the registry adds for each
// language.
var languagePriority = map[Language]int{
	LanguageNative: 10,
	LanguageScript: 0,
}

// Priority returns this language's scoring contribution.
func (l Language) Priority() int {
	return languagePriority[l]
}

// Role is the kind of data-plane concern a plugin handles.
type Role string

const (
	RoleFormat      Role = "format"
	RoleProtocol    Role = "protocol"
	RoleCompression Role = "compression"
	RoleDatabase    Role = "database"
)

// Mode is an operation a plugin supports.
type Mode string

const (
	ModeRead     Mode = "read"
	ModeWrite    Mode = "write"
	ModeRaw      Mode = "raw"
	ModeProfiles Mode = "profiles"
)

// Info is a discovered plugin. Required fields are Name and Matches
// (non-empty); everything else carries a documented default applied by
// discovery when absent from the plugin's metadata.
type Info struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Matches     []string `json:"matches"`
	Role        Role     `json:"role"`
	Modes       []Mode   `json:"modes"`
	ProfileType string   `json:"profile_type,omitempty"`

	Language Language `json:"language"`
	Tier     Tier      `json:"tier"`
	Path     string    `json:"path"`
	MTime    time.Time `json:"mtime"`
}

// SupportsMode reports whether this plugin advertises the given mode.
func (i Info) SupportsMode(mode Mode) bool {
	for _, m := range i.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// WithDefaults fills in the documented defaults for optional fields left
// zero-valued by a partially-populated discovery probe: version="0.0.0",
// role="format", modes=["read","write"].
func (i Info) WithDefaults() Info {
	if i.Version == "" {
		i.Version = "0.0.0"
	}
	if i.Role == "" {
		i.Role = RoleFormat
	}
	if len(i.Modes) == 0 {
		i.Modes = []Mode{ModeRead, ModeWrite}
	}
	return i
}

// Dir is a directory discovery scans, paired with the tier and language it
// represents.
type Dir struct {
	Path     string
	Tier     Tier
	Language Language
}
