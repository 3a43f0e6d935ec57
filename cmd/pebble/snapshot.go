package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pebble/internal/errors"
	"github.com/vango-dev/pebble/pkg/snapshot"
)

func snapshotCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect saved snapshots",
		Long: `Inspect and remove snapshots in the store configured in pebble.json.

Examples:
  pebble snapshot show
  pebble snapshot show nightly
  pebble snapshot delete nightly`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show [key]",
			Short: "Print a saved snapshot",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, key, err := opts.openSnapshotStore(cmd, args)
				if err != nil {
					return err
				}
				defer store.Close()

				data, err := store.Load(cmd.Context(), key)
				if err != nil {
					return errors.FromError(err, "P040")
				}
				if data == nil {
					return errors.New("P041").WithDetail("no snapshot under key " + key)
				}
				doc, err := snapshot.Decode(data)
				if err != nil {
					return err
				}

				out, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete [key]",
			Short: "Delete a saved snapshot",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, key, err := opts.openSnapshotStore(cmd, args)
				if err != nil {
					return err
				}
				defer store.Close()

				if err := store.Delete(cmd.Context(), key); err != nil {
					return errors.FromError(err, "P040")
				}
				success(cmd.OutOrStdout(), "deleted %s", key)
				return nil
			},
		},
	)

	return cmd
}

// openSnapshotStore opens the configured store and resolves the key
// argument, defaulting to snapshot.key from pebble.json.
func (o *rootOptions) openSnapshotStore(cmd *cobra.Command, args []string) (snapshot.Store, string, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, "", err
	}
	if !cfg.SnapshotsEnabled() {
		return nil, "", errors.New("P020").
			WithDetail("snapshot.driver is not set").
			WithSuggestion("Configure a snapshot store in pebble.json")
	}

	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return nil, "", err
	}

	key := cfg.Snapshot.Key
	if len(args) == 1 {
		key = args[0]
	}
	return store, key, nil
}

func snapshotMissing(err error) bool {
	return errors.CodeOf(err) == "P041"
}
