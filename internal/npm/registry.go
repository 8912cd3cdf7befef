package npm

import (
	"strconv"
	"strings"
	"time"
)

const (
	DefaultRegistry  = "https://registry.npmjs.org/"
	MirrorRegistry   = "https://registry.npmmirror.com/"
	DefaultProbeTTL  = 24 * time.Hour
	RegistryEnvVar   = "BOTDROP_NPM_REGISTRY"
	registryFuncName = "botdrop_resolve_npm_registry"
)

// RegistrySelector chooses which npm registry the generated commands talk to.
// Prefix returns shell text placed in front of every npm invocation.
type RegistrySelector interface {
	Prefix() string
}

// NoRegistry leaves the registry to npm's configuration.
type NoRegistry struct{}

func (NoRegistry) Prefix() string { return "" }

// FixedRegistry pins every command to one registry URL.
type FixedRegistry struct {
	URL string
}

func (f FixedRegistry) Prefix() string {
	url := strings.TrimSpace(f.URL)
	if url == "" {
		return ""
	}
	return "NPM_CONFIG_REGISTRY=" + QuoteSingle(ensureSlash(url)) + "\nexport NPM_CONFIG_REGISTRY\n"
}

// ProbeSelector defines a shell function that picks the reachable registry at
// run time. The primary registry wins when both respond. The choice is cached
// in CacheFile for TTL per network gateway, and the environment variable
// named by EnvVar overrides everything when it holds an http(s) URL.
type ProbeSelector struct {
	Default   string
	Mirror    string
	CacheFile string
	TTL       time.Duration
	EnvVar    string
}

// DefaultProbeSelector probes npmjs and npmmirror with a 24h cache in $HOME.
func DefaultProbeSelector() ProbeSelector {
	return ProbeSelector{
		Default:   DefaultRegistry,
		Mirror:    MirrorRegistry,
		CacheFile: `$HOME/.botdrop_npm_registry_cache`,
		TTL:       DefaultProbeTTL,
		EnvVar:    RegistryEnvVar,
	}
}

func (p ProbeSelector) Prefix() string {
	return p.function() +
		"NPM_CONFIG_REGISTRY=\"$(" + registryFuncName + ")\"\n" +
		"export NPM_CONFIG_REGISTRY\n"
}

func (p ProbeSelector) withDefaults() ProbeSelector {
	d := DefaultProbeSelector()
	if p.Default == "" {
		p.Default = d.Default
	}
	if p.Mirror == "" {
		p.Mirror = d.Mirror
	}
	if p.CacheFile == "" {
		p.CacheFile = d.CacheFile
	}
	if p.TTL <= 0 {
		p.TTL = d.TTL
	}
	if p.EnvVar == "" {
		p.EnvVar = d.EnvVar
	}
	p.Default = ensureSlash(p.Default)
	p.Mirror = ensureSlash(p.Mirror)
	return p
}

func (p ProbeSelector) function() string {
	p = p.withDefaults()
	return strings.NewReplacer(
		"@FUNC@", registryFuncName,
		"@DEFAULT@", p.Default,
		"@MIRROR@", p.Mirror,
		"@CACHE_FILE@", p.CacheFile,
		"@TTL@", strconv.FormatInt(int64(p.TTL/time.Second), 10),
		"@ENV@", p.EnvVar,
	).Replace(probeFunction)
}

func ensureSlash(url string) string {
	if strings.HasSuffix(url, "/") {
		return url
	}
	return url + "/"
}

// probeFunction is POSIX sh. Probes use curl, then wget; with neither the
// primary registry is used.
const probeFunction = `@FUNC@() {
  default_registry="@DEFAULT@"
  mirror_registry="@MIRROR@"
  cache_file="@CACHE_FILE@"
  cache_ttl_seconds=@TTL@
  gateway=""
  resolved=""
  default_probe=""
  mirror_probe=""
  resolved_probe=""
  now="$(date +%s 2>/dev/null || echo 0)"
  cache_gateway=""
  cache_expiry=""
  cache_registry=""

  if [ -n "$@ENV@" ]; then
    case "$@ENV@" in
      http://*|https://*) echo "$@ENV@" ;;
      *) echo "$default_registry" ;;
    esac
    return 0
  fi

  if command -v ip >/dev/null 2>&1; then
    gateway="$(ip route 2>/dev/null | awk '/^default/ {print $3; exit}')"
  fi
  [ -z "$gateway" ] && gateway="unknown"

  if [ -f "$cache_file" ]; then
    cache_gateway="$(awk -F= '/^gateway=/{print $2; exit}' "$cache_file")"
    cache_expiry="$(awk -F= '/^expiry=/{print $2; exit}' "$cache_file")"
    cache_registry="$(awk -F= '/^registry=/{print $2; exit}' "$cache_file")"
    case "$cache_registry" in
      "$default_registry"|"$mirror_registry") ;;
      *) cache_registry="" ;;
    esac
    case "$cache_expiry" in
      ''|*[!0-9]*) cache_expiry=0 ;;
    esac
    if [ "$gateway" = "$cache_gateway" ] && [ -n "$cache_registry" ] && [ "$cache_expiry" -ge "$now" ]; then
      resolved="$cache_registry"
    fi
  fi

  # past half the TTL: confirm the cached registry still answers
  if [ -n "$resolved" ] && [ "$now" -ge "$((cache_expiry - cache_ttl_seconds / 2))" ]; then
    if command -v curl >/dev/null 2>&1; then
      resolved_probe="$(curl -m 2 -o /dev/null -s -w '%{http_code}' "${resolved}openclaw" 2>/dev/null)"
    elif command -v wget >/dev/null 2>&1; then
      wget -q -T 2 -t 1 --spider "${resolved}openclaw" >/dev/null 2>&1 && resolved_probe=200
    fi
    [ "$resolved_probe" != "200" ] && resolved=""
  fi

  if [ -z "$resolved" ]; then
    if command -v curl >/dev/null 2>&1; then
      default_probe="$(curl -m 2 -o /dev/null -s -w '%{http_code}' "${default_registry}openclaw" 2>/dev/null)"
      mirror_probe="$(curl -m 2 -o /dev/null -s -w '%{http_code}' "${mirror_registry}openclaw" 2>/dev/null)"
    elif command -v wget >/dev/null 2>&1; then
      wget -q -T 2 -t 1 --spider "${default_registry}openclaw" >/dev/null 2>&1 && default_probe=200
      wget -q -T 2 -t 1 --spider "${mirror_registry}openclaw" >/dev/null 2>&1 && mirror_probe=200
    fi

    if [ "$default_probe" = "200" ]; then
      resolved="$default_registry"
    elif [ "$mirror_probe" = "200" ]; then
      resolved="$mirror_registry"
    else
      resolved="$default_registry"
    fi

    {
      echo "gateway=$gateway"
      echo "expiry=$((now + cache_ttl_seconds))"
      echo "registry=$resolved"
    } > "$cache_file" 2>/dev/null
  fi

  echo "$resolved"
}
`
