package initcmd

import (
	"io"
	"strings"

	"github.com/roomkit/roomkit/internal/errdef"
)

// Opt maps the init flags one to one.
type Opt struct {
	Dir string
	// Name is the app's base name; the script is written as <Name>.js and
	// the scenario points at it.
	Name        string
	Template    string
	Force       bool
	DryRun      bool
	NoGitignore bool
	List        bool
	Out         io.Writer
}

func withDefaults(opt Opt) Opt {
	opt.Dir = strings.TrimSpace(opt.Dir)
	if opt.Dir == "" {
		opt.Dir = DefaultDir
	}
	opt.Name = strings.TrimSuffix(strings.TrimSpace(opt.Name), ".js")
	if opt.Name == "" {
		opt.Name = DefaultName
	}
	opt.Template = normalizeTemplateName(opt.Template)
	if opt.Template == "" {
		opt.Template = DefaultTemplate
	}
	return opt
}

// validateName rejects names that would leave the target folder or hide
// the app from listings.
func validateName(name string) error {
	switch {
	case strings.ContainsAny(name, `/\`):
		return errdef.New(errdef.CodeInit, "app name %q must not contain a path separator", name)
	case strings.HasPrefix(name, "."):
		return errdef.New(errdef.CodeInit, "app name %q must not start with a dot", name)
	case strings.ContainsAny(name, placeholderChars):
		return errdef.New(errdef.CodeInit, "app name %q contains reserved characters", name)
	}
	return nil
}

func normalizeTemplateName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
