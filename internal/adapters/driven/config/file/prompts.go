package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/llm"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// promptFile describes one editable prompt.
type promptFile struct {
	name         string
	fallback     string
	placeholders int
	about        string
}

var promptFiles = []promptFile{
	{
		name:     driven.PromptAnswerSystem,
		fallback: llm.DefaultAnswerSystemPrompt,
		about:    "system prompt; keeps answers grounded in the retrieved context",
	},
	{
		name:         driven.PromptAnswer,
		fallback:     llm.DefaultAnswerPrompt,
		placeholders: 2,
		about:        "user prompt; receives the question, then the context",
	},
}

func lookupPrompt(name string) (promptFile, bool) {
	for _, p := range promptFiles {
		if p.name == name {
			return p, true
		}
	}
	return promptFile{}, false
}

// PromptStore serves answer prompts from <dir>/<name>.txt. Missing or
// unusable files fall back to the built-in prompt. The directory is
// seeded with the defaults on the first Load, never in the constructor.
type PromptStore struct {
	dir  string
	seed func() error

	mu    sync.Mutex
	cache map[string]string
}

// NewPromptStore returns a store rooted at dir, or ~/.docqa/prompts when
// dir is empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".docqa", "prompts")
	}

	s := &PromptStore{dir: dir, cache: map[string]string{}}
	s.seed = sync.OnceValue(s.writeDefaults)
	return s, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named prompt. Unknown names are an error.
func (s *PromptStore) Load(name string) (string, error) {
	p, known := lookupPrompt(name)
	if !known {
		return "", fmt.Errorf("load prompt %q: %w", name, fs.ErrNotExist)
	}

	if err := s.seed(); err != nil {
		logger.Debug("prompt directory unavailable, using built-in prompts: %v", err)
		return p.fallback, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if text, ok := s.cache[name]; ok {
		return text, nil
	}
	text := s.read(p)
	s.cache[name] = text
	return text, nil
}

// Reload drops cached prompts so the next Load reads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

// read returns the file content, or the fallback when the file is missing,
// empty, or has lost its format placeholders.
func (s *PromptStore) read(p promptFile) string {
	data, err := os.ReadFile(s.path(p.name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("read prompt %s: %v", p.name, err)
		}
		return p.fallback
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return p.fallback
	}
	if got := strings.Count(text, "%s"); got != p.placeholders {
		logger.Warn("prompt %s has %d %%s placeholders, want %d; using built-in prompt", p.name, got, p.placeholders)
		return p.fallback
	}
	return text
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// writeDefaults creates the directory and any prompt file or README that
// does not exist yet. Existing files are left alone.
func (s *PromptStore) writeDefaults() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	files := map[string]string{filepath.Join(s.dir, "README.md"): promptReadme()}
	for _, p := range promptFiles {
		files[s.path(p.name)] = p.fallback
	}

	for path, content := range files {
		err := writeNew(path, content)
		if err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// writeNew creates path with content, failing with fs.ErrExist if it is
// already there.
func writeNew(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func promptReadme() string {
	var b strings.Builder
	b.WriteString("# docqa prompts\n\n")
	b.WriteString("These files shape how answers are written. Edit them freely; changes\n")
	b.WriteString("apply on the next command or after the server restarts.\n\n")
	for _, p := range promptFiles {
		fmt.Fprintf(&b, "- `%s.txt`: %s", p.name, p.about)
		if p.placeholders > 0 {
			fmt.Fprintf(&b, " (keep its %d `%%s` placeholders in order)", p.placeholders)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nDelete a file to restore its default.\n")
	return b.String()
}
