package host

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DriveFunc plays a table while its host is running.
type DriveFunc func(ctx context.Context, h *Host) error

// RunTables runs every host and calls drive once per host. It returns when
// all drivers have finished, stopping the hosts, or as soon as one driver
// fails.
func RunTables(ctx context.Context, hosts []*Host, drive DriveFunc) error {
	hostCtx, stop := context.WithCancel(ctx)
	defer stop()

	var running errgroup.Group
	for _, h := range hosts {
		running.Go(func() error { return h.Run(hostCtx) })
	}

	drivers, driveCtx := errgroup.WithContext(ctx)
	for _, h := range hosts {
		drivers.Go(func() error { return drive(driveCtx, h) })
	}

	err := drivers.Wait()
	stop()
	if runErr := running.Wait(); err == nil {
		err = runErr
	}
	return err
}
