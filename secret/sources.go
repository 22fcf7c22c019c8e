package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// envProvider reads the secret from an environment variable.
type envProvider struct {
	key string
}

// FromEnv returns a provider that reads the named environment
// variable. An unset or empty variable reports ErrNotFound.
func FromEnv(key string) Provider {
	return &envProvider{key: key}
}

func (p *envProvider) Name() string { return "env:" + p.key }

func (p *envProvider) Resolve(_ context.Context) (string, error) {
	value, ok := os.LookupEnv(p.key)
	if !ok || value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// fileProvider reads the secret from a file on disk.
type fileProvider struct {
	path string
}

// FromFile returns a provider that reads the secret from path,
// trimming surrounding whitespace. Mounted secret files commonly end
// with a trailing newline.
func FromFile(path string) Provider {
	return &fileProvider{path: path}
}

func (p *fileProvider) Name() string { return "file:" + p.path }

func (p *fileProvider) Resolve(_ context.Context) (string, error) {
	if p.path == "" {
		return "", ErrNotFound
	}
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read secret file: %w", err)
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// valueProvider holds a literal value, expanded strictly against the
// environment.
type valueProvider struct {
	value string
}

// FromValue returns a provider for a literal configuration value.
// `${VAR}` placeholders are expanded and must exist in the
// environment. An empty value reports ErrNotFound.
func FromValue(value string) Provider {
	return &valueProvider{value: value}
}

func (p *valueProvider) Name() string { return "value" }

func (p *valueProvider) Resolve(_ context.Context) (string, error) {
	if p.value == "" {
		return "", ErrNotFound
	}
	expanded, err := expandEnv(p.value)
	if err != nil {
		return "", err
	}
	if expanded == "" {
		return "", ErrNotFound
	}
	return expanded, nil
}

var braceVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv expands environment references in v. A brace-form
// `${VAR}` reference to an unset variable is an error; bare `$VAR`
// follows os.ExpandEnv semantics. `$$` emits a literal dollar.
func expandEnv(v string) (string, error) {
	const literalDollar = "\x00matiq-dollar\x00"
	v = strings.ReplaceAll(v, "$$", literalDollar)

	var missing []string
	seen := make(map[string]bool)
	for _, match := range braceVarPattern.FindAllStringSubmatch(v, -1) {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := os.LookupEnv(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return strings.ReplaceAll(os.ExpandEnv(v), literalDollar, "$"), nil
}
