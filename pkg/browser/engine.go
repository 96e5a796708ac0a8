package browser

import (
	"strings"

	"github.com/entrhq/browserd/pkg/browser/driver"
)

// Options are the launch options accepted by open.
type Options struct {
	Headless  bool     `json:"headless,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
}

// Engine turns launch options into the startup arguments of one browser kind.
type Engine interface {
	Kind() driver.Kind
	StartupArgs(opts Options) []string
}

type chromeEngine struct{}

func (chromeEngine) Kind() driver.Kind { return driver.Chrome }

func (chromeEngine) StartupArgs(opts Options) []string {
	var args []string
	if opts.Headless {
		args = append(args, "--headless=new")
	}
	return append(args, opts.Arguments...)
}

type firefoxEngine struct{}

func (firefoxEngine) Kind() driver.Kind { return driver.Firefox }

func (firefoxEngine) StartupArgs(opts Options) []string {
	var args []string
	if opts.Headless {
		args = append(args, "--headless")
	}
	return append(args, opts.Arguments...)
}

// safariEngine takes no startup arguments; headless and arguments are ignored.
type safariEngine struct{}

func (safariEngine) Kind() driver.Kind { return driver.Safari }

func (safariEngine) StartupArgs(Options) []string { return nil }

var engines = map[driver.Kind]Engine{
	driver.Chrome:  chromeEngine{},
	driver.Firefox: firefoxEngine{},
	driver.Safari:  safariEngine{},
}

// EngineFor returns the engine for a browser kind name (case-insensitive).
func EngineFor(kind string) (Engine, error) {
	e, ok := engines[driver.Kind(strings.ToLower(strings.TrimSpace(kind)))]
	if !ok {
		return nil, newFault(UnsupportedBrowserKind,
			map[string]interface{}{"kind": kind},
			"unsupported browser kind %q (must be chrome, firefox or safari)", kind)
	}
	return e, nil
}
