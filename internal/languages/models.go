package languages

import "time"

// Kind selects how a language moves from source to a running process.
type Kind int

const (
	Interpreted Kind = iota
	CompiledNative
	CompiledManaged
)

func (k Kind) String() string {
	switch k {
	case CompiledNative:
		return "compiled-native"
	case CompiledManaged:
		return "compiled-managed"
	default:
		return "interpreted"
	}
}

// Compiled reports whether a separate compile container is needed.
func (k Kind) Compiled() bool {
	return k == CompiledNative || k == CompiledManaged
}

type RuntimeConfig struct {
	Image          string
	CompileCommand []string
	RunCommand     []string
	CompileTimeout time.Duration
	RunTimeout     time.Duration
	Env            []string
}

type Language struct {
	ID     string
	Name   string
	Kind   Kind
	Config RuntimeConfig
}
