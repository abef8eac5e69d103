package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type exportCmd struct {
	srv Service
	out string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the portfolio document as JSON" }
func (*exportCmd) Usage() string {
	return `invest_dash export [-o <file>]

  Writes the whole portfolio document to the given file, or stdout.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "", "output file (default stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	data, err := c.srv.ExportBackup(ctx)
	if err != nil {
		return fail(err)
	}

	if c.out == "" {
		fmt.Println(string(data))
		return subcommands.ExitSuccess
	}

	if err := os.WriteFile(c.out, data, 0o644); err != nil {
		return fail(err)
	}
	fmt.Printf("Exported to %s\n", c.out)
	return subcommands.ExitSuccess
}

type restoreCmd struct {
	srv Service
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "replace the portfolio from a backup file" }
func (*restoreCmd) Usage() string {
	return `invest_dash restore <backup.json>

  Validates and imports a previously exported document. On a rejected
  backup the current state stays untouched.
`
}

func (*restoreCmd) SetFlags(*flag.FlagSet) {}

func (c *restoreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageErr("exactly one backup file expected")
	}

	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		return fail(err)
	}

	if err := c.srv.ImportBackup(ctx, data); err != nil {
		return fail(err)
	}

	fmt.Println("Backup imported")
	return subcommands.ExitSuccess
}

type backupCmd struct {
	srv Service
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "write a timestamped backup into the backup directory" }
func (*backupCmd) Usage() string {
	return `invest_dash backup
`
}

func (*backupCmd) SetFlags(*flag.FlagSet) {}

func (c *backupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, err := c.srv.BackupToDir(ctx)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Backup written to %s\n", path)
	return subcommands.ExitSuccess
}
