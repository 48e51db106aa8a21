package languages

import (
	"errors"
	"sort"
	"sync"
	"time"
)

const (
	Java   = "java"
	Cpp    = "cpp"
	Python = "python"
	// Oracle runs trusted reference code on the java image with looser limits.
	Oracle = "oracle"
)

var (
	ErrLanguageNotFound = errors.New("language not found")
)

type Registry struct {
	mu        sync.RWMutex
	languages map[string]Language
}

func NewRegistry() *Registry {
	r := &Registry{
		languages: make(map[string]Language),
	}
	r.registerDefaults()
	return r
}

func (r *Registry) Register(lang Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.languages[lang.ID] = lang
}

func (r *Registry) Get(id string) (Language, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lang, ok := r.languages[id]
	if !ok {
		return Language{}, ErrLanguageNotFound
	}
	return lang, nil
}

// List returns the registered languages ordered by id.
func (r *Registry) List() []Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	langs := make([]Language, 0, len(r.languages))
	for _, l := range r.languages {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i].ID < langs[j].ID })
	return langs
}

// Images returns the distinct images used by registered languages.
func (r *Registry) Images() []string {
	seen := make(map[string]bool)
	var images []string
	for _, l := range r.List() {
		if !seen[l.Config.Image] {
			seen[l.Config.Image] = true
			images = append(images, l.Config.Image)
		}
	}
	return images
}

const javaImage = "openjdk:17-slim"

func (r *Registry) registerDefaults() {
	javac := []string{"/bin/sh", "-c", "javac -encoding UTF-8 *.java"}
	java := []string{"java", "-Xss64m", "-XX:+UseSerialGC", "-Dfile.encoding=UTF-8", "Main"}

	r.Register(Language{
		ID:   Java,
		Name: "Java",
		Kind: CompiledManaged,
		Config: RuntimeConfig{
			Image:          javaImage,
			CompileCommand: javac,
			RunCommand:     java,
			CompileTimeout: 10 * time.Second,
			RunTimeout:     3 * time.Second,
		},
	})

	r.Register(Language{
		ID:   Cpp,
		Name: "C++",
		Kind: CompiledNative,
		Config: RuntimeConfig{
			Image:          "gcc:13",
			CompileCommand: []string{"g++", "-std=c++17", "-O2", "-pipe", "-o", "main", "Main.cpp"},
			RunCommand:     []string{"./main"},
			CompileTimeout: 10 * time.Second,
			RunTimeout:     2 * time.Second,
		},
	})

	r.Register(Language{
		ID:   Python,
		Name: "Python",
		Kind: Interpreted,
		Config: RuntimeConfig{
			Image:      "python:3.11-slim",
			RunCommand: []string{"python", "-B", "main.py"},
			RunTimeout: 5 * time.Second,
			Env:        []string{"PYTHONDONTWRITEBYTECODE=1", "PYTHONIOENCODING=utf-8"},
		},
	})

	r.Register(Language{
		ID:   Oracle,
		Name: "Java (reference)",
		Kind: CompiledManaged,
		Config: RuntimeConfig{
			Image:          javaImage,
			CompileCommand: javac,
			RunCommand:     java,
			CompileTimeout: 20 * time.Second,
			RunTimeout:     10 * time.Second,
		},
	})
}
