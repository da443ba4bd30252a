package main

import (
	"context"
	"fmt"

	"github.com/target/realty-admin/internal/data"
)

type purgeOptions struct {
	Yes bool
}

func parsePurgeFlags(name string, args []string) (purgeOptions, error) {
	fs := newFlagSet(name)
	var opts purgeOptions
	fs.BoolVarP(&opts.Yes, "yes", "y", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return purgeOptions{}, err
	}
	return opts, nil
}

func runPurgeSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parsePurgeFlags("purge-sessions", args)
	if err != nil {
		return err
	}
	if !opts.Yes {
		if cerr := confirm(cmdCtx, "This signs out every admin user."); cerr != nil {
			return cerr
		}
	}
	return deletePrefix(cmdCtx, "session:", "sessions")
}

func runClearCache(cmdCtx *commandContext, args []string) error {
	if _, err := parsePurgeFlags("clear-cache", args); err != nil {
		return err
	}
	return deletePrefix(cmdCtx, "cache:", "cache entries")
}

// deletePrefix removes every key under the app's Redis prefix plus sub.
func deletePrefix(cmdCtx *commandContext, sub, what string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	client, err := connectRedis(cmdCtx)
	if err != nil {
		return err
	}
	defer closeRedis(cmdCtx, client)

	n, err := data.NewRedisCacheRepo(client, cmdCtx.Config.Redis.KeyPrefix).DeletePrefix(ctx, sub)
	if err != nil {
		return fmt.Errorf("delete %s: %w", what, err)
	}
	fmt.Fprintf(cmdCtx.Out, "Deleted %d %s.\n", n, what)
	return nil
}
