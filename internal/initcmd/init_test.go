package initcmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roomkit/roomkit/internal/errdef"
)

func TestRunStandardCreatesFiles(t *testing.T) {
	dir := t.TempDir()
	op := Opt{Dir: dir, Template: "standard", Out: io.Discard}
	if err := Run(op); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{
		"app.js",
		fileScenario,
		fileSettings,
		fileConfig,
		fileEnvExample,
		fileHelp,
		gitignoreFile,
	}
	for _, name := range want {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatalf("read .gitignore: %v", err)
	}
	if !strings.Contains(string(data), ".env") {
		t.Fatalf("expected .env in .gitignore")
	}
}

func TestRunConflict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.js")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	op := Opt{Dir: dir, Template: "minimal", Out: io.Discard}
	err := Run(op)
	if err == nil {
		t.Fatalf("expected conflict error")
	}
	if !strings.Contains(err.Error(), "--force") {
		t.Fatalf("expected a hint about --force, got %v", err)
	}
	if errdef.CodeOf(err) != errdef.CodeInit {
		t.Fatalf("expected an init error, got %v", errdef.CodeOf(err))
	}
}

func TestRunForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.js")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	op := Opt{Dir: dir, Template: "minimal", Force: true, Out: io.Discard}
	if err := Run(op); err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.TrimSpace(string(data)) == "old" {
		t.Fatalf("expected overwrite")
	}
}

func TestRunDry(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	op := Opt{Dir: dir, Template: "minimal", DryRun: true, Out: &buf}
	if err := Run(op); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "app.js")); !os.IsNotExist(err) {
		t.Fatalf("expected no files in dry-run")
	}
	if !strings.Contains(buf.String(), "dry-run: create app.js") {
		t.Fatalf("expected dry-run report, got %q", buf.String())
	}
}

func TestRunNoGitignore(t *testing.T) {
	dir := t.TempDir()
	op := Opt{Dir: dir, Template: "minimal", NoGitignore: true, Out: io.Discard}
	if err := Run(op); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, gitignoreFile)); !os.IsNotExist(err) {
		t.Fatalf("expected no .gitignore when no-gitignore is set")
	}
}

func TestRunAppendsToExistingGitignore(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, gitignoreFile)
	if err := os.WriteFile(p, []byte("node_modules"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Run(Opt{Dir: dir, Template: "minimal", Out: io.Discard}); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "node_modules\n.env\n" {
		t.Fatalf("unexpected .gitignore %q", string(data))
	}
}

func TestRunUnknownTemplate(t *testing.T) {
	err := Run(Opt{Dir: t.TempDir(), Template: "huge", Out: io.Discard})
	if err == nil || !strings.Contains(err.Error(), "minimal, standard") {
		t.Fatalf("expected unknown template error listing names, got %v", err)
	}
}

func TestListTemplates(t *testing.T) {
	var buf bytes.Buffer
	if err := Run(Opt{List: true, Out: &buf}); err != nil {
		t.Fatalf("list: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "minimal") || !strings.Contains(out, "standard") {
		t.Fatalf("expected template names in output: %s", out)
	}
	if strings.Contains(out, appPlaceholder) || !strings.Contains(out, "<name>.js") {
		t.Fatalf("expected the app file shown as <name>.js: %s", out)
	}
}

func TestIgnores(t *testing.T) {
	tests := []struct {
		data string
		want bool
	}{
		{data: ".env\n", want: true},
		{data: "/.env\n", want: true},
		{data: ".env # local secrets\n", want: true},
		{data: "node_modules\n  .env  \n", want: true},
		{data: ".env.example\n", want: false},
		{data: "# .env\n", want: false},
		{data: "", want: false},
	}
	for _, tc := range tests {
		if got := ignores(tc.data, ".env"); got != tc.want {
			t.Fatalf("ignores(%q) = %v, want %v", tc.data, got, tc.want)
		}
	}
}

func TestRunSkipsIgnoredEnv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, gitignoreFile)
	if err := os.WriteFile(p, []byte("/.env\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var buf bytes.Buffer
	if err := Run(Opt{Dir: dir, Template: "minimal", Out: &buf}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(buf.String(), "skip .gitignore") {
		t.Fatalf("expected a skip report, got %q", buf.String())
	}
	data, _ := os.ReadFile(p)
	if string(data) != "/.env\n" {
		t.Fatalf(".gitignore changed: %q", data)
	}
}

func TestBuiltinTemplatesAreValid(t *testing.T) {
	for _, tpl := range templates {
		for _, name := range []string{DefaultName, "tip-goal", "Party Time"} {
			fill := strings.NewReplacer(appPlaceholder, name).Replace
			for _, f := range tpl.Files {
				if err := check(fill(f.Path), fill(f.Data)); err != nil {
					t.Fatalf("%s/%s with name %q: %v", tpl.Name, f.Path, name, err)
				}
			}
		}
	}
}

func TestRunRejectsNameThatBreaksScenario(t *testing.T) {
	dir := t.TempDir()
	err := Run(Opt{Dir: dir, Name: "a: b", Template: "minimal", Out: io.Discard})
	if errdef.CodeOf(err) != errdef.CodeInit || !strings.Contains(err.Error(), fileScenario) {
		t.Fatalf("expected the scenario to be rejected, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("nothing may be written, got %d entries", len(entries))
	}
}

func TestRunFolderInTheWay(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "app.js"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	err := Run(Opt{Dir: dir, Template: "minimal", Force: true, Out: io.Discard})
	if err == nil || !strings.Contains(err.Error(), "app.js (dir)") {
		t.Fatalf("expected a folder conflict even with --force, got %v", err)
	}
}

func TestRunTargetIsAFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Run(Opt{Dir: p, Out: io.Discard}); !errdef.Is(err, errdef.CodeInit) {
		t.Fatalf("expected an init error, got %v", err)
	}
}

func TestRunCreatesMissingFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "new", "room")
	if err := Run(Opt{Dir: dir, Template: "minimal", Out: io.Discard}); err != nil {
		t.Fatalf("run: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "app.js"))
	if err != nil {
		t.Fatalf("expected app.js: %v", err)
	}
	if info.Mode().Perm()&0o600 != 0o600 {
		t.Fatalf("expected a readable, writable file, got %v", info.Mode())
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, tempPattern))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestRunNamedApp(t *testing.T) {
	dir := t.TempDir()
	if err := Run(Opt{Dir: dir, Name: "goal.js", Out: io.Discard}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "goal.js")); err != nil {
		t.Fatalf("expected goal.js: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "app.js")); !os.IsNotExist(err) {
		t.Fatalf("expected no app.js when a name is given")
	}
	for name, want := range map[string]string{
		fileScenario: "app: goal.js\n",
		fileHelp:     "roomkit check goal.js",
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %q in %s, got:\n%s", want, name, data)
		}
		if strings.Contains(string(data), appPlaceholder) {
			t.Fatalf("placeholder left in %s", name)
		}
	}
}

func TestRunRejectsBadNames(t *testing.T) {
	for _, name := range []string{"../up", "sub/app", ".hidden", "{{x}}"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			err := Run(Opt{Dir: dir, Name: name, Out: io.Discard})
			if err == nil {
				t.Fatalf("expected %q to be rejected", name)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Fatalf("nothing may be written for a bad name, got %d entries", len(entries))
			}
		})
	}
}
