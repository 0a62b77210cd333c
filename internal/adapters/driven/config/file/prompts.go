package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-library/internal/logger"
)

// promptsFileName sits next to config.toml.
const promptsFileName = "prompts.toml"

var _ driven.PromptStore = (*PromptStore)(nil)

// promptFile is the on-disk layout, used to seed a readable file.
type promptFile struct {
	AskSystem  string `toml:"ask_system" multiline:"true"`
	AskContext string `toml:"ask_context" multiline:"true"`
	Summarise  string `toml:"summarise" multiline:"true"`
}

var defaultPrompts = map[string]string{
	driven.PromptAskSystem: "You are a library assistant. Answer questions using only the document excerpt you are given.\n" +
		"If the excerpt does not contain the answer, say so plainly. Quote short passages when they support the answer.",

	driven.PromptAskContext: "Document: %s\n\nContent:\n%s\n\nQuestion: %s",

	driven.PromptSummarise: "Summarise the following content in %d characters or less.\n" +
		"Be concise and capture the key points.\n\nContent:\n%s\n\nSummary:",
}

// requiredVerbs lists the format verbs each template is filled with. A user
// template that does not match is ignored.
var requiredVerbs = map[string]map[string]int{
	driven.PromptAskContext: {"%s": 3},
	driven.PromptSummarise:  {"%d": 1, "%s": 1},
}

// PromptStore reads assistant prompts from a user-editable prompts.toml.
//
// The file is seeded with the defaults on first use, never in the
// constructor, and re-read whenever its modification time changes.
type PromptStore struct {
	mu      sync.Mutex
	path    string
	seeded  bool
	modTime time.Time
	loaded  map[string]string
}

// NewPromptStore creates a prompt store in configDir.
// If configDir is empty, defaults to ~/.sercha-library.
func NewPromptStore(configDir string) (*PromptStore, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = dir
	}
	return &PromptStore{path: filepath.Join(configDir, promptsFileName)}, nil
}

// Path returns the prompts file path.
func (s *PromptStore) Path() string {
	return s.path
}

// Load returns the template for name: the user's version when it is present
// and carries the right placeholders, otherwise the default.
func (s *PromptStore) Load(name string) (string, error) {
	def, known := defaultPrompts[name]
	if !known {
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		logger.Warn("prompts: %v", err)
		return def, nil
	}
	if tmpl, ok := s.loaded[name]; ok {
		if validTemplate(name, tmpl) {
			return tmpl, nil
		}
		logger.Warn("prompts: %s in %s has the wrong placeholders, using default", name, s.path)
	}
	return def, nil
}

// refresh seeds the file once and re-reads it when it changed. Caller holds mu.
func (s *PromptStore) refresh() error {
	if !s.seeded {
		s.seeded = true
		if err := s.seed(); err != nil {
			return err
		}
	}

	info, err := os.Stat(s.path)
	if err != nil {
		s.loaded = nil
		return err
	}
	if s.loaded != nil && info.ModTime().Equal(s.modTime) {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	loaded := make(map[string]string, len(raw))
	for k, v := range raw {
		if str, ok := v.(string); ok {
			loaded[k] = strings.TrimSpace(str)
		}
	}
	s.loaded = loaded
	s.modTime = info.ModTime()
	return nil
}

// seed writes the defaults unless a file already exists.
func (s *PromptStore) seed() error {
	if _, err := os.Stat(s.path); !os.IsNotExist(err) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	data, err := toml.Marshal(promptFile{
		AskSystem:  defaultPrompts[driven.PromptAskSystem],
		AskContext: defaultPrompts[driven.PromptAskContext],
		Summarise:  defaultPrompts[driven.PromptSummarise],
	})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

func validTemplate(name, tmpl string) bool {
	if tmpl == "" {
		return false
	}
	for verb, n := range requiredVerbs[name] {
		if strings.Count(tmpl, verb) != n {
			return false
		}
	}
	return true
}
