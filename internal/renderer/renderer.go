// Package renderer replaces {{ name }} placeholders in issue bodies.
package renderer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dpshade/child-issue/internal/errors"
	"github.com/dpshade/child-issue/internal/models"
)

// Substitution modes accepted by NewRenderer
const (
	ModeSequential = "sequential"
	ModeScan       = "scan"
)

var placeholderPattern = regexp.MustCompile(`\{\{ ([^\n]+?) \}\}`)

// Token returns the literal placeholder text for key
func Token(key string) string {
	return "{{ " + key + " }}"
}

// Substitute replaces every {{ key }} in body with its value, one key at a time.
//
// Each replacement runs over the output of the previous one, so a value
// containing another key's token is itself substituted when that key comes
// later. Keys are visited in sorted order. Tokens without a mapping entry
// are left untouched.
func Substitute(body string, subs map[string]string) string {
	if len(subs) == 0 {
		return body
	}

	keys := make([]string, 0, len(subs))
	for key := range subs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		body = strings.ReplaceAll(body, Token(key), subs[key])
	}
	return body
}

// SubstituteScan replaces placeholders in a single left-to-right pass over
// the original body. Values are never rescanned, so the result does not
// depend on iteration order. Where two tokens overlap the longer one wins.
func SubstituteScan(body string, subs map[string]string) string {
	if len(subs) == 0 {
		return body
	}

	keys := make([]string, 0, len(subs))
	for key := range subs {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, len(keys)*2)
	for _, key := range keys {
		pairs = append(pairs, Token(key), subs[key])
	}
	return strings.NewReplacer(pairs...).Replace(body)
}

// Placeholders returns the distinct placeholder keys in body in order of first appearance
func Placeholders(body string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, match := range placeholderPattern.FindAllStringSubmatch(body, -1) {
		key := match[1]
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// Unmatched returns the placeholder keys in body that subs has no value for
func Unmatched(body string, subs map[string]string) []string {
	var missing []string
	for _, key := range Placeholders(body) {
		if _, ok := subs[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// Renderer applies one substitution mode to issue bodies
type Renderer struct {
	mode string
}

// NewRenderer creates a renderer; "" selects the sequential mode
func NewRenderer(mode string) (*Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeSequential:
		return &Renderer{mode: ModeSequential}, nil
	case ModeScan:
		return &Renderer{mode: ModeScan}, nil
	default:
		return nil, errors.InvalidInputError("substitution mode", "unknown mode "+mode+" (want sequential or scan)")
	}
}

// Mode returns the substitution mode in use
func (r *Renderer) Mode() string {
	return r.mode
}

// RenderText substitutes placeholders in body
func (r *Renderer) RenderText(body string, subs map[string]string) string {
	if r.mode == ModeScan {
		return SubstituteScan(body, subs)
	}
	return Substitute(body, subs)
}

// RenderJSON renders an issue record as indented JSON
func RenderJSON(record *models.IssueRecord) (string, error) {
	jsonBytes, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return string(jsonBytes), nil
}
