package initcmd

import (
	"sort"
	"strings"
)

// template is a named starter set. Paths and contents may carry the app
// name placeholder.
type template struct {
	Name         string
	Description  string
	Files        []fileSpec
	AddGitignore bool
}

type fileSpec struct {
	Path string
	Data string
}

var helpMD = buildHelpMD()

var templates = []template{
	{
		Name:        "minimal",
		Description: describeTemplate(fileApp, fileScenario),
		Files: []fileSpec{
			{Path: fileApp, Data: appJSMinimal},
			{Path: fileScenario, Data: scenarioMinimal},
		},
		AddGitignore: true,
	},
	{
		Name:        "standard",
		Description: describeTemplate(fileApp, fileScenario, fileSettings, fileConfig, fileEnvExample, fileHelp),
		Files: []fileSpec{
			{Path: fileApp, Data: appJSStandard},
			{Path: fileScenario, Data: scenarioStandard},
			{Path: fileSettings, Data: settingsYAML},
			{Path: fileConfig, Data: configTOML},
			{Path: fileEnvExample, Data: envExample},
			{Path: fileHelp, Data: helpMD},
		},
		AddGitignore: true,
	},
}

func findTemplate(name string) (template, bool) {
	name = normalizeTemplateName(name)
	for _, t := range templates {
		if t.Name == name {
			return t, true
		}
	}
	return template{}, false
}

func templateNames() []string {
	names := make([]string, 0, len(templates))
	for _, t := range templates {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

func describeTemplate(files ...string) string {
	return strings.Join(files, " + ")
}

const appJSMinimal = `cb.onEnter(function (user) {
  cb.sendNotice("Welcome, " + user.user + "!", user.user);
});

cb.onMessage(function (msg) {
  if (msg.m.indexOf("http") >= 0) {
    msg["X-Spam"] = true;
  }
  return msg;
});
`

const appJSStandard = `var total = 0;

cb.settings_choices = [
  {name: "goal", type: "int", minValue: 1, defaultValue: 100, label: "Goal (tokens)"},
  {name: "subject", type: "str", maxLength: 80, defaultValue: "Tip goal", label: "Room subject"},
  {name: "reminder", type: "int", minValue: 0, defaultValue: 60, label: "Reminder (seconds, 0 = off)"}
];

function progress() {
  return total + "/" + cb.settings.goal;
}

function remind() {
  cb.chatNotice(cb.settings.subject + ": " + progress(), "", "#FFFFFF", "#009CB5", "bold");
  cb.setTimeout(remind, cb.settings.reminder * 1000);
}

cb.onTip(function (tip) {
  total += tip.amount;
  cb.sendNotice("Thanks " + tip.from_user + "! " + progress(), tip.from_user);
  if (total >= cb.settings.goal) {
    cb.changeRoomSubject(cb.settings.subject + " reached!");
  }
  cb.drawPanel();
});

cb.onMessage(function (msg) {
  if (msg.is_mod) {
    msg.background = "#FFE0E0";
  }
  return msg;
});

cb.onDrawPanel(function () {
  return {template: "3_rows_of_labels", row1_label: "Goal", row1_value: progress()};
});

cb.changeRoomSubject(cb.settings.subject + " " + progress());
if (cb.settings.reminder > 0) {
  cb.setTimeout(remind, cb.settings.reminder * 1000);
}
`

const scenarioMinimal = `app: {{app}}.js
viewers:
  - name: alice
    gender: f
    has_tokens: true
events:
  - type: enter
    user: alice
  - type: chat
    user: alice
    message: hello!
  - type: chat
    user: alice
    message: visit http://example.com
    after: 2s
`

const scenarioStandard = `app: {{app}}.js
settings:
  goal: 50
viewers:
  - name: alice
    gender: f
    has_tokens: true
    tipped: 60
  - name: bob
    moderator: true
events:
  - type: enter
    user: alice
  - type: tip
    user: alice
    amount: 25
    message: go go go
  - type: chat
    user: bob
    message: keep it friendly
    after: 5s
  - type: wait
    after: 1m
  - type: tip
    user: alice
    amount: 25
  - type: leave
    user: alice
`

const settingsYAML = `goal: 50
subject: Tip goal
reminder: 60
`

const configTOML = `[tiers]
recently = 1
alot = 50
tons = 250

[chat]
clear_on_start = true
history = 500
timestamps = false

[script]
timeout = "5s"

[room]
owner = "llua"
slug = "llua"
`

const envExample = `# Copy to .env and adjust.
LOG_LEVEL=info
LOG_FORMAT=text
ROOMKIT_SCRIPT_TIMEOUT=5s
# ROOMKIT_TRACE_OTEL_ENDPOINT=localhost:4317
# ROOMKIT_TRACE_OTEL_INSECURE=true
`

func buildHelpMD() string {
	var b strings.Builder
	b.WriteString("# roomkit quickstart\n\n")
	b.WriteString("1. Check the app: `roomkit check ")
	b.WriteString(fileApp)
	b.WriteString("`.\n")
	b.WriteString("2. List its settings: `roomkit settings ")
	b.WriteString(fileApp)
	b.WriteString("`.\n")
	b.WriteString("3. Replay the sample room: `roomkit run ")
	b.WriteString(fileApp)
	b.WriteString(" --scenario ")
	b.WriteString(fileScenario)
	b.WriteString(" --settings ")
	b.WriteString(fileSettings)
	b.WriteString("`.\n")
	b.WriteString("4. Tune tiers and timeouts in `")
	b.WriteString(fileConfig)
	b.WriteString("` or copy `")
	b.WriteString(fileEnvExample)
	b.WriteString("` to `.env`.\n\n")
	b.WriteString("Next steps:\n")
	b.WriteString("- Scenario events: add, enter, leave, chat, tip, wait, suspend, resume, panel.\n")
	b.WriteString("- `after:` delays an event; app timers fire while the scenario waits.\n")
	b.WriteString("- Pass `--realtime` to wait on the wall clock instead of skipping ahead.\n")
	return b.String()
}
