package initcmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/roomkit/roomkit/internal/errdef"
)

// Run scaffolds an app folder, or lists the templates when o.List is set.
func Run(o Opt) error {
	o = withDefaults(o)
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.List {
		return listTemplates(o.Out)
	}
	if err := validateName(o.Name); err != nil {
		return err
	}
	tpl, ok := findTemplate(o.Template)
	if !ok {
		name := o.Template
		if name == "" {
			name = "(empty)"
		}
		return errdef.New(errdef.CodeInit, "unknown template %q (available: %s)",
			name, strings.Join(templateNames(), ", "))
	}
	s, err := newScaffold(o, tpl)
	if err != nil {
		return err
	}
	return s.write()
}

func listTemplates(w io.Writer) error {
	width := 0
	for _, t := range templates {
		width = max(width, len(t.Name))
	}
	for _, t := range templates {
		desc := strings.ReplaceAll(t.Description, appPlaceholder, "<name>")
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, t.Name, desc); err != nil {
			return errdef.Wrap(errdef.CodeIO, err, "list templates")
		}
	}
	return nil
}
