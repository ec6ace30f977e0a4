package wsbridge

import (
	"context"

	"github.com/jessevdk/go-flags"
)

// Run parses command line arguments and runs the bridge until it stops.
func Run(args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	ctx := context.Background()
	if options.ConfigURL != "" {
		if err := options.LoadConfig(ctx); err != nil {
			return err
		}
		// Flags win over config file values.
		if _, err := flags.ParseArgs(options, args); err != nil {
			return err
		}
	}
	service, err := New(ctx, options)
	if err != nil {
		return err
	}
	return service.Run(ctx)
}
