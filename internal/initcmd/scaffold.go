package initcmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/roomkit/roomkit/internal/engine"
	"github.com/roomkit/roomkit/internal/errdef"
	"github.com/roomkit/roomkit/internal/scenario"
)

// target is a template file filled in for one app and placed in the folder.
type target struct {
	rel     string
	abs     string
	data    string
	replace bool
}

// scaffold writes one template into one folder. Every conflict and every
// broken file is found before anything is written.
type scaffold struct {
	o       Opt
	tpl     template
	targets []target
}

func newScaffold(o Opt, tpl template) (*scaffold, error) {
	if info, err := os.Stat(o.Dir); err == nil && !info.IsDir() {
		return nil, errdef.New(errdef.CodeInit, "%s is not a folder", o.Dir)
	}
	fill := strings.NewReplacer(appPlaceholder, o.Name).Replace
	s := &scaffold{o: o, tpl: tpl}
	var conflicts []string
	for _, f := range tpl.Files {
		rel := filepath.FromSlash(fill(f.Path))
		data := fill(f.Data)
		if err := check(rel, data); err != nil {
			return nil, err
		}
		t := target{rel: rel, abs: filepath.Join(o.Dir, rel), data: data}
		info, err := os.Stat(t.abs)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, errdef.Wrap(errdef.CodeIO, err, "stat %s", rel)
		case info.IsDir():
			conflicts = append(conflicts, rel+" (dir)")
		case !o.Force:
			conflicts = append(conflicts, rel)
		default:
			t.replace = true
		}
		s.targets = append(s.targets, t)
	}
	if len(conflicts) > 0 {
		return nil, errdef.New(errdef.CodeInit, "files already exist: %s (use --force to overwrite)",
			strings.Join(conflicts, ", "))
	}
	return s, nil
}

// check rejects a filled-in file the host would refuse on first run, such
// as a scenario an odd app name no longer parses as.
func check(rel, data string) error {
	var err error
	switch {
	case filepath.Ext(rel) == ".js":
		_, err = engine.Compile(rel, data)
	case filepath.Base(rel) == fileScenario:
		_, err = scenario.Decode(strings.NewReader(data))
	}
	if err != nil {
		return errdef.Wrap(errdef.CodeInit, err, "template file %s", rel)
	}
	return nil
}

func (s *scaffold) write() error {
	for _, t := range s.targets {
		verb := "create"
		if t.replace {
			verb = "overwrite"
		}
		if !s.o.DryRun {
			if err := os.MkdirAll(filepath.Dir(t.abs), dirPerm); err != nil {
				return errdef.Wrap(errdef.CodeIO, err, "create folder for %s", t.rel)
			}
			if err := writeFile(t.abs, t.data); err != nil {
				return errdef.Wrap(errdef.CodeIO, err, "write %s", t.rel)
			}
		}
		if err := s.say(verb, t.rel); err != nil {
			return err
		}
	}
	if s.tpl.AddGitignore && !s.o.NoGitignore {
		return s.ignoreEnv()
	}
	return nil
}

// ignoreEnv keeps the .env holding local ROOMKIT_* overrides out of
// version control.
func (s *scaffold) ignoreEnv() error {
	p := filepath.Join(s.o.Dir, gitignoreFile)
	data, err := os.ReadFile(p)
	verb := "append"
	switch {
	case errors.Is(err, fs.ErrNotExist):
		verb = "create"
	case err != nil:
		return errdef.Wrap(errdef.CodeIO, err, "read %s", gitignoreFile)
	case ignores(string(data), gitignoreEntry):
		return s.say("skip", gitignoreFile)
	}
	if !s.o.DryRun {
		text := string(data)
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		if err := writeFile(p, text+gitignoreEntry+"\n"); err != nil {
			return errdef.Wrap(errdef.CodeIO, err, "write %s", gitignoreFile)
		}
	}
	return s.say(verb, gitignoreFile)
}

func (s *scaffold) say(verb, rel string) error {
	if s.o.Out == nil {
		return nil
	}
	if s.o.DryRun {
		verb = "dry-run: " + verb
	}
	if _, err := fmt.Fprintf(s.o.Out, "%s %s\n", verb, rel); err != nil {
		return errdef.Wrap(errdef.CodeIO, err, "report %s", rel)
	}
	return nil
}

// ignores reports whether a .gitignore line names entry exactly, rooted or
// not, ignoring a trailing comment.
func ignores(data, entry string) bool {
	for line := range strings.SplitSeq(data, "\n") {
		line, _, _ = strings.Cut(line, "#")
		line = strings.TrimSpace(line)
		if line == entry || line == "/"+entry {
			return true
		}
	}
	return false
}

// writeFile replaces p through a temp file in the same folder, so a failed
// write never leaves a truncated app behind.
func writeFile(p, data string) (err error) {
	f, err := os.CreateTemp(filepath.Dir(p), tempPattern)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.WriteString(data); err != nil {
		return err
	}
	if err = f.Chmod(filePerm); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}
