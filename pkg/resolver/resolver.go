// Package resolver implements the address resolver: coordinating the address
// parser's output with the plugin registry and profile service to produce a
// pipeline.Spec the orchestrator can run.
package resolver

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/jnproject/jn/internal/jnerr"
	"github.com/jnproject/jn/pkg/address"
	"github.com/jnproject/jn/pkg/pipeline"
	"github.com/jnproject/jn/pkg/plugin"
	"github.com/jnproject/jn/pkg/profile"
	"github.com/jnproject/jn/pkg/registry"
)

// defaultFormat is what EffectiveFormat is assumed to be for an address with
// no detectable extension and no explicit override: jsonl is a straight
// pass-through, so this is the safest default.
const defaultFormat = "jsonl"

// MetaFields are the fixed NDJSON fields glob-mode metadata injection
// prepends to every record.
var MetaFields = []string{"_path", "_dir", "_filename", "_basename", "_ext", "_file_index", "_line_index"}

// Options carries the request-scoped settings a resolution needs beyond the
// parsed Address itself.
type Options struct {
	Mode        plugin.Mode
	ReaderFlags []string // CLI flags forwarded verbatim, e.g. --delimiter
	InjectMeta  bool
	HTTPHeaders map[string]string
}

// Resolver coordinates the Registry, profile Service, and profile Loader.
type Resolver struct {
	fs       afero.Fs
	registry *registry.Registry
	profiles *profile.Service
	loader   *profile.Loader
}

// New returns a Resolver.
func New(fs afero.Fs, reg *registry.Registry, profiles *profile.Service, loader *profile.Loader) *Resolver {
	return &Resolver{fs: fs, registry: reg, profiles: profiles, loader: loader}
}

// Resolve dispatches on addr.Kind and produces a pipeline specification.
func (r *Resolver) Resolve(addr address.Address, opts Options) (pipeline.Spec, error) {
	switch addr.Kind {
	case address.KindStdin:
		return r.resolveStdin(addr, opts)
	case address.KindFile:
		return r.resolveFile(addr, opts)
	case address.KindURL:
		return r.resolveURL(addr, opts)
	case address.KindProfile:
		return r.resolveProfile(addr, opts)
	case address.KindGlob:
		return r.resolveGlob(addr, opts)
	default:
		return pipeline.Spec{}, jnerr.New(jnerr.KindAddressUnresolvable, addr.Raw, nil)
	}
}

// ResolveAll dispatches like Resolve, except a glob address expands to one
// Spec per matched file, one pipeline run per match. Every other address
// kind resolves to a single-element slice. When opts.InjectMeta is set, each
// glob-driven Spec's format stage receives the fixed metadata fields as
// JN_META_* environment variables for the format plugin to prepend to its
// output records; _line_index is necessarily per-record and left for the
// plugin itself to increment, since the Resolver only sees whole files.
func (r *Resolver) ResolveAll(addr address.Address, opts Options) ([]pipeline.Spec, error) {
	if addr.Kind != address.KindGlob {
		spec, err := r.Resolve(addr, opts)
		if err != nil {
			return nil, err
		}
		return []pipeline.Spec{spec}, nil
	}

	if err := pipeline.ValidateGlobPattern(addr.Path); err != nil {
		return nil, jnerr.New(jnerr.KindShellEscapeViolation, addr.Raw, err)
	}
	matches, err := ExpandGlob(r.fs, addr.Path)
	if err != nil {
		return nil, jnerr.New(jnerr.KindAddressUnresolvable, addr.Raw, err)
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		// Zero matches is benign by default (nullglob).
		return nil, nil
	}

	specs := make([]pipeline.Spec, 0, len(matches))
	for i, m := range matches {
		fileAddr := address.Parse(m)
		spec, err := r.resolveFile(fileAddr, opts)
		if err != nil {
			return nil, err
		}
		if opts.InjectMeta {
			injectMetaEnv(&spec, m, i)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// injectMetaEnv attaches the glob-mode metadata fields to the pipeline's
// final stage (the one producing NDJSON records) as environment variables.
func injectMetaEnv(spec *pipeline.Spec, path string, fileIndex int) {
	if len(spec.Stages) == 0 {
		return
	}
	last := &spec.Stages[len(spec.Stages)-1]
	dir, filename := filepath.Split(path)
	ext := filepath.Ext(filename)
	basename := strings.TrimSuffix(filename, ext)
	last.Env = append(last.Env,
		"JN_META_PATH="+path,
		"JN_META_DIR="+strings.TrimSuffix(dir, "/"),
		"JN_META_FILENAME="+filename,
		"JN_META_BASENAME="+basename,
		"JN_META_EXT="+ext,
		"JN_META_FILE_INDEX="+strconv.Itoa(fileIndex),
		"JN_META_INJECT=1",
	)
}

func (r *Resolver) resolveStdin(addr address.Address, opts Options) (pipeline.Spec, error) {
	format, ok := addr.EffectiveFormat()
	if !ok || format == "" {
		format = defaultFormat
	}
	if format == defaultFormat || format == "ndjson" {
		return pipeline.Spec{Input: pipeline.Input{Kind: pipeline.InputInherit}}, nil
	}

	formatPlugin, err := r.findFormatPlugin(format, addr.Raw, opts.Mode)
	if err != nil {
		return pipeline.Spec{}, err
	}
	return pipeline.Spec{
		Input:  pipeline.Input{Kind: pipeline.InputInherit},
		Stages: []pipeline.Stage{r.buildFormatStage(0, formatPlugin, opts)},
	}, nil
}

func (r *Resolver) resolveFile(addr address.Address, opts Options) (pipeline.Spec, error) {
	if exists, err := afero.Exists(r.fs, addr.Path); err != nil || !exists {
		return pipeline.Spec{}, jnerr.New(jnerr.KindAddressUnresolvable, addr.Raw, err).
			WithHint("file does not exist")
	}

	var stages []pipeline.Stage
	pos := 0

	if addr.Compression != "" {
		decompress, err := r.findCompressionPlugin(addr.Compression, addr.Raw, opts.Mode)
		if err != nil {
			return pipeline.Spec{}, err
		}
		stages = append(stages, pipeline.Stage{Position: pos, Path: decompress.Path, Args: []string{"--mode=read"}})
		pos++
	}

	format, ok := addr.EffectiveFormat()
	if !ok {
		format = defaultFormat
	}
	formatPlugin, err := r.findFormatPlugin(format, addr.Raw, opts.Mode)
	if err != nil {
		return pipeline.Spec{}, err
	}
	stages = append(stages, r.buildFormatStage(pos, formatPlugin, opts))

	return pipeline.Spec{
		Input:  pipeline.Input{Kind: pipeline.InputFile, Path: addr.Path},
		Stages: stages,
	}, nil
}

func (r *Resolver) resolveURL(addr address.Address, opts Options) (pipeline.Spec, error) {
	switch addr.Protocol {
	case "http", "https":
		return r.resolveHTTP(addr.Protocol+"://"+addr.Path, addr.Compression, addr, opts)
	case "s3", "gs", "gcs", "gdrive":
		protoPlugin, err := r.findProtocolPlugin(addr.Protocol, addr.Raw, opts.Mode)
		if err != nil {
			return pipeline.Spec{}, err
		}
		format, ok := addr.EffectiveFormat()
		if !ok {
			format = defaultFormat
		}
		formatPlugin, err := r.findFormatPlugin(format, addr.Raw, opts.Mode)
		if err != nil {
			return pipeline.Spec{}, err
		}
		stages := []pipeline.Stage{
			{Position: 0, Path: protoPlugin.Path, Args: []string{"--mode=raw", addr.Protocol + "://" + addr.Path}},
			r.buildFormatStage(1, formatPlugin, opts),
		}
		return pipeline.Spec{Input: pipeline.Input{Kind: pipeline.InputClosed}, Stages: stages}, nil
	default:
		return pipeline.Spec{}, jnerr.New(jnerr.KindUnsupportedProtocol, addr.Raw, nil)
	}
}

// resolveHTTP builds the fetch -> [decompress] -> format chain shared by
// plain http(s) addresses and http profiles.
func (r *Resolver) resolveHTTP(url, compression string, addr address.Address, opts Options) (pipeline.Spec, error) {
	fetchStage, err := buildHTTPFetchStage(0, url, opts.HTTPHeaders)
	if err != nil {
		return pipeline.Spec{}, jnerr.New(jnerr.KindShellEscapeViolation, addr.Raw, err)
	}

	stages := []pipeline.Stage{fetchStage}
	pos := 1
	if compression != "" {
		decompress, err := r.findCompressionPlugin(compression, addr.Raw, opts.Mode)
		if err != nil {
			return pipeline.Spec{}, err
		}
		stages = append(stages, pipeline.Stage{Position: pos, Path: decompress.Path, Args: []string{"--mode=read"}})
		pos++
	}

	format, ok := addr.EffectiveFormat()
	if !ok {
		format = defaultFormat
	}
	formatPlugin, err := r.findFormatPlugin(format, addr.Raw, opts.Mode)
	if err != nil {
		return pipeline.Spec{}, err
	}
	stages = append(stages, r.buildFormatStage(pos, formatPlugin, opts))

	return pipeline.Spec{Input: pipeline.Input{Kind: pipeline.InputClosed}, Stages: stages}, nil
}

func (r *Resolver) resolveProfile(addr address.Address, opts Options) (pipeline.Spec, error) {
	if addr.ProfileNamespace == "code" {
		match, ok := r.registry.Find("@code/"+addr.ProfileName, opts.Mode)
		if !ok {
			return pipeline.Spec{}, jnerr.New(jnerr.KindAddressUnresolvable, addr.Raw, nil)
		}
		return pipeline.Spec{
			Input:  pipeline.Input{Kind: pipeline.InputClosed},
			Stages: []pipeline.Stage{{Position: 0, Path: match.Info.Path, Args: []string{"--mode=" + string(opts.Mode), "@code/" + addr.ProfileName}}},
		}, nil
	}

	// The cascade order across profile types when no discriminator is
	// given: try http, then duckdb, then file, the first type for which
	// a matching file exists on disk — see DESIGN.md.
	profileType, err := r.inferProfileType(addr)
	if err != nil {
		return pipeline.Spec{}, err
	}

	id, err := r.profiles.Find(profileType, addr.ProfileNamespace, addr.ProfileName)
	if err != nil {
		return pipeline.Spec{}, jnerr.New(jnerr.KindProfileNotFound, addr.Raw, err)
	}

	// duckdb profiles are ".sql" text, not a JSON document to merge/load.
	if profileType == profile.TypeDuckDB {
		return r.resolveDuckDBProfile(addr, id, opts)
	}

	doc, err := r.loader.Load(id)
	if err != nil {
		return pipeline.Spec{}, jnerr.New(jnerr.KindMalformedProfile, addr.Raw, err)
	}

	if profileType == profile.TypeHTTP {
		return r.resolveHTTPProfile(addr, doc, opts)
	}
	return r.resolveFileProfile(addr, doc, opts)
}

// inferProfileType tries each of the three recognised profile types in
// turn, picking the first one for which a matching file exists on disk.
func (r *Resolver) inferProfileType(addr address.Address) (profile.Type, error) {
	for _, t := range []profile.Type{profile.TypeHTTP, profile.TypeDuckDB, profile.TypeFile} {
		if _, err := r.profiles.Find(t, addr.ProfileNamespace, addr.ProfileName); err == nil {
			return t, nil
		}
	}
	return "", jnerr.New(jnerr.KindProfileNotFound, addr.Raw, nil)
}

func (r *Resolver) resolveHTTPProfile(addr address.Address, doc map[string]any, opts Options) (pipeline.Spec, error) {
	baseURL, ok := doc["base_url"].(string)
	if !ok || baseURL == "" {
		return pipeline.Spec{}, jnerr.New(jnerr.KindMissingField, addr.Raw, nil).WithHint("http profile requires base_url")
	}
	path, _ := doc["path"].(string)
	url := strings.TrimSuffix(baseURL, "/") + path
	if addr.Query != "" {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + addr.Query
	}

	headers := map[string]string{}
	if raw, ok := doc["headers"].(map[string]any); ok {
		for k, v := range raw {
			if s, ok := v.(string); ok {
				headers[k] = s
			}
		}
	}
	for k, v := range opts.HTTPHeaders {
		headers[k] = v
	}
	opts.HTTPHeaders = headers

	return r.resolveHTTP(url, "", addr, opts)
}

func (r *Resolver) resolveDuckDBProfile(addr address.Address, id profile.Identity, opts Options) (pipeline.Spec, error) {
	dbPlugin, ok := findByRole(r.registry, plugin.RoleDatabase, opts.Mode)
	if !ok {
		return pipeline.Spec{}, jnerr.New(jnerr.KindAddressUnresolvable, addr.Raw, nil).WithHint("no duckdb plugin registered")
	}

	args := []string{"--mode=" + string(opts.Mode), "--sql-file=" + id.Path}
	flags, _ := queryFlags(addr.Query)
	args = append(args, flags...)

	return pipeline.Spec{
		Input:  pipeline.Input{Kind: pipeline.InputClosed},
		Stages: []pipeline.Stage{{Position: 0, Path: dbPlugin.Info.Path, Args: args}},
	}, nil
}

func (r *Resolver) resolveFileProfile(addr address.Address, doc map[string]any, opts Options) (pipeline.Spec, error) {
	globPattern, ok := doc["pattern"].(string)
	if !ok || globPattern == "" {
		return pipeline.Spec{}, jnerr.New(jnerr.KindMissingField, addr.Raw, nil).WithHint("file profile requires pattern")
	}

	globAddr := address.Parse(globPattern)
	spec, err := r.resolveGlob(globAddr, opts)
	if err != nil {
		return pipeline.Spec{}, err
	}

	if filterProgram, ok := doc["filter"].(string); ok && filterProgram != "" {
		spec.Stages = append(spec.Stages, pipeline.Stage{Position: len(spec.Stages), Path: filterProgram})
	}
	return spec, nil
}

// resolveGlob expands addr.Path via doublestar and recurses into file-kind
// dispatch for the first match. This single-match
// form backs a file profile's embedded pattern, which composes into one
// Spec; top-level glob addresses fan out across every match instead, via
// ResolveAll (see cmd/jn/commands/root.go).
func (r *Resolver) resolveGlob(addr address.Address, opts Options) (pipeline.Spec, error) {
	if err := pipeline.ValidateGlobPattern(addr.Path); err != nil {
		return pipeline.Spec{}, jnerr.New(jnerr.KindShellEscapeViolation, addr.Raw, err)
	}

	matches, err := ExpandGlob(r.fs, addr.Path)
	if err != nil {
		return pipeline.Spec{}, jnerr.New(jnerr.KindAddressUnresolvable, addr.Raw, err)
	}
	if len(matches) == 0 {
		// Zero matches is benign by default (nullglob).
		return pipeline.Spec{}, nil
	}

	fileAddr := address.Parse(matches[0])
	return r.resolveFile(fileAddr, opts)
}

// ExpandGlob expands pattern against fs using doublestar (`**` recursive,
// nullglob semantics: zero matches is zero files, never an error).
func ExpandGlob(aferoFS afero.Fs, pattern string) ([]string, error) {
	return doublestar.Glob(afero.NewIOFS(aferoFS), pattern)
}

func (r *Resolver) findFormatPlugin(format, addr string, mode plugin.Mode) (plugin.Info, error) {
	match, ok := r.registry.Find(format, mode)
	if !ok {
		return plugin.Info{}, jnerr.New(jnerr.KindAddressUnresolvable, addr, nil).
			WithHint("no plugin registered for format " + format)
	}
	return match.Info, nil
}

func (r *Resolver) findCompressionPlugin(compression, addr string, mode plugin.Mode) (plugin.Info, error) {
	if compression != "gzip" {
		return plugin.Info{}, jnerr.New(jnerr.KindUnsupportedCompress, addr, nil).
			WithHint(compression + " is not yet supported; only gzip is")
	}
	match, found := findByRole(r.registry, plugin.RoleCompression, mode)
	if !found {
		return plugin.Info{}, jnerr.New(jnerr.KindUnsupportedCompress, addr, nil).
			WithHint("no gzip plugin registered")
	}
	return match.Info, nil
}

func (r *Resolver) findProtocolPlugin(proto, addr string, mode plugin.Mode) (plugin.Info, error) {
	match, ok := r.registry.Find(proto+"://", mode)
	if ok {
		return match.Info, nil
	}
	protoMatch, found := findByRole(r.registry, plugin.RoleProtocol, mode)
	if !found {
		return plugin.Info{}, jnerr.New(jnerr.KindUnsupportedProtocol, addr, nil).
			WithHint("no plugin registered for protocol " + proto)
	}
	return protoMatch.Info, nil
}

// buildFormatStage assembles a format plugin's stage, forwarding the
// reader's own CLI flags.
func (r *Resolver) buildFormatStage(pos int, info plugin.Info, opts Options) pipeline.Stage {
	args := []string{"--mode=" + string(opts.Mode)}
	args = append(args, cliPassthroughFlags(opts.ReaderFlags)...)
	return pipeline.Stage{Position: pos, Path: info.Path, Args: args}
}

// buildHTTPFetchStage composes the sanctioned curl-via-shell exception:
// every interpolated value passes through pipeline.ShellQuote, and header
// values are validated against response splitting before being interpolated.
func buildHTTPFetchStage(pos int, url string, headers map[string]string) (pipeline.Stage, error) {
	var b strings.Builder
	b.WriteString("curl -fsSL ")
	for k, v := range headers {
		if err := pipeline.ValidateHeaderValue(v); err != nil {
			return pipeline.Stage{}, err
		}
		b.WriteString("-H ")
		b.WriteString(pipeline.ShellQuote(k + ": " + v))
		b.WriteString(" ")
	}
	b.WriteString(pipeline.ShellQuote(url))
	return pipeline.Stage{Position: pos, Path: "sh", Args: []string{"-c", b.String()}}, nil
}

func findByRole(reg *registry.Registry, role plugin.Role, mode plugin.Mode) (registry.Match, bool) {
	for _, info := range reg.All() {
		if info.Role == role && info.SupportsMode(mode) {
			return registry.Match{Info: info}, true
		}
	}
	return registry.Match{}, false
}
