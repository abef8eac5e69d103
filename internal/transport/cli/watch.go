package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/xtbdash/invest_dash/internal/scheduler"
)

type watchCmd struct {
	srv      Service
	interval time.Duration
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "run periodic auto-backups until interrupted" }
func (*watchCmd) Usage() string {
	return `invest_dash watch [-interval <duration>]

  Keeps writing timestamped backups into the backup directory on the given
  interval until SIGINT/SIGTERM.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.interval, "interval", c.interval, "backup interval")
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	interval := c.interval
	if interval <= 0 {
		return usageErr("backup interval must be positive")
	}

	sched := scheduler.New()
	sched.NewIntervalJob("auto backup", func(ctx context.Context) error {
		_, err := c.srv.BackupToDir(ctx)
		return err
	}, interval, true)
	sched.Start()
	defer sched.Stop()

	fmt.Printf("Auto-backup every %s, Ctrl-C to stop\n", interval)

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt

	return subcommands.ExitSuccess
}
