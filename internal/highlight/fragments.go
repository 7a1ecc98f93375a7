package highlight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// docIDSanitizer strips the characters a documentation ID (e.g.
// "M:Namespace.Class.Method(System.String)") can carry but a JSON map key
// used as a stable lookup should not, per §4.6a's "sanitize" step.
var docIDSanitizer = strings.NewReplacer(
	":", "_", ".", "_", "(", "_", ")", "_", ",", "_",
	"`", "_", "<", "_", ">", "_", " ", "",
)

// SanitizeDocID normalizes a raw documentation ID into the stable key the
// fragment store is keyed by.
func SanitizeDocID(id string) string {
	return docIDSanitizer.Replace(strings.TrimSpace(id))
}

// FragmentStore is the re-architected stand-in for a loaded, compiled
// source solution (§4.6a, §9): rather than compiling a project and
// walking its symbols at runtime, it loads pre-extracted
// (documentation-id -> source-fragment) pairs from a JSON sidecar file.
type FragmentStore struct {
	path        string
	execCommand string

	mu   sync.RWMutex
	byID map[string]string
}

// LoadFragmentStore loads path, a JSON object mapping documentation IDs
// to source-fragment text. An empty path yields a store with no entries
// (every xmldocid fence then resolves to the not-found placeholder); a
// missing file is treated the same way rather than as an error, since
// fragment extraction is an optional companion build step.
func LoadFragmentStore(path, execCommand string) (*FragmentStore, error) {
	fs := &FragmentStore{path: path, execCommand: execCommand, byID: make(map[string]string)}
	if path == "" {
		return fs, nil
	}
	if err := fs.Reload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return fs, nil
}

// Reload re-reads the sidecar file from disk.
func (fs *FragmentStore) Reload() error {
	if fs.path == "" {
		return nil
	}
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fs.mu.Lock()
			fs.byID = make(map[string]string)
			fs.mu.Unlock()
			return nil
		}
		return fmt.Errorf("highlight: read fragments file: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("highlight: parse fragments file: %w", err)
	}

	sanitized := make(map[string]string, len(raw))
	for id, source := range raw {
		sanitized[SanitizeDocID(id)] = source
	}

	fs.mu.Lock()
	fs.byID = sanitized
	fs.mu.Unlock()
	return nil
}

// Resolve looks up docID (sanitized before lookup) and, if bodyOnly is
// set, narrows the result to the declaring member's body text.
func (fs *FragmentStore) Resolve(docID string, bodyOnly bool) (string, bool) {
	key := SanitizeDocID(docID)
	fs.mu.RLock()
	src, ok := fs.byID[key]
	fs.mu.RUnlock()
	if !ok {
		return "", false
	}
	if bodyOnly {
		return extractBody(src), true
	}
	return src, true
}

// extractBody returns the text between a method or class body's braces,
// or the expression text following "=>" for an expression-bodied member,
// mirroring the span-narrowing rule in §4.6a.
func extractBody(src string) string {
	if start := strings.Index(src, "{"); start != -1 {
		depth := 0
		for i := start; i < len(src); i++ {
			switch src[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return strings.TrimSpace(src[start+1 : i])
				}
			}
		}
	}
	if idx := strings.Index(src, "=>"); idx != -1 {
		return strings.TrimSuffix(strings.TrimSpace(src[idx+2:]), ";")
	}
	return src
}

// Execute invokes the configured external command with source on stdin
// (the "child process per sample" alternative to a live compiler named in
// §9) and returns the selected output. The command's stdout is parsed as
// "key\tvalue" lines when it contains any tabs (modeling a
// IEnumerable<(string,string)> return value); otherwise the whole output
// is the single unnamed result. dataKey selects a named entry; an empty
// dataKey selects the unnamed result.
func (fs *FragmentStore) Execute(ctx context.Context, source, dataKey string) (string, error) {
	if fs.execCommand == "" {
		return "", errors.New("highlight: no exec command configured for executable xmldocid fences")
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", fs.execCommand)
	cmd.Stdin = strings.NewReader(source)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("highlight: exec command: %w", err)
	}

	results := parseExecOutput(out.String())
	if dataKey != "" {
		v, ok := results[dataKey]
		if !ok {
			return "", fmt.Errorf("highlight: exec output has no entry %q", dataKey)
		}
		return v, nil
	}
	if v, ok := results[""]; ok {
		return v, nil
	}
	return out.String(), nil
}

func parseExecOutput(raw string) map[string]string {
	results := make(map[string]string)
	var keyed bool
	for _, line := range strings.Split(raw, "\n") {
		if key, value, ok := strings.Cut(line, "\t"); ok {
			results[key] = value
			keyed = true
		}
	}
	if !keyed {
		results[""] = raw
	}
	return results
}
