package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskmgr/internal/config"
	"taskmgr/internal/exitcode"
	"taskmgr/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskmgr help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskmgr                                            Show totals across all projects
  taskmgr login [--email <email>] [--password <password>]
  taskmgr register --email <email> --password <password> [--first <name>] [--last <name>]
  taskmgr logout
  taskmgr whoami
  taskmgr refresh
  taskmgr projects
  taskmgr newproject [--desc <text>] <title...>
  taskmgr addproject [--desc <text>] <title...>
  taskmgr showproject <project>
  taskmgr editproject [--title <title>] [--desc <text>] <project>
  taskmgr rmproject [--force] <project>
  taskmgr tasks [--filter all|pending|completed] [--project <project>] [<project>]
  taskmgr add [--project <project>] [--due YYYY-MM-DD] [--desc <text>] <title...>
  taskmgr edit [--project <project>] [--title <title>] [--desc <text>] [--due YYYY-MM-DD|none] <n>
  taskmgr done [--project <project>] <n>
  taskmgr toggle [--project <project>] <n>
  taskmgr rm [--project <project>] <n>
  taskmgr progress [--project <project>] [<project>]
  taskmgr dashboard
  taskmgr help
  taskmgr version

<project> is a project id or title. --project defaults to default_project
from config.yaml. <n> is the task number shown by "taskmgr tasks".

Common flags:
  --config <dir>    Override config directory
  --api-url <url>   Override the API base URL
  --quiet           Suppress informational output
  --debug           Print debug logs to stderr
`
