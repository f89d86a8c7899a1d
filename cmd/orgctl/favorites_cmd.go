package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iota-uz/org-console/pkg/configuration"
	"github.com/iota-uz/org-console/pkg/constants"
	"github.com/iota-uz/org-console/pkg/favorites"
)

// openFavorites loads the store the server would use with the same settings.
func (o *rootOptions) openFavorites(ctx context.Context) (*favorites.Store, error) {
	conf := &configuration.Configuration{Favorites: o.favorites, RedisURL: o.redisURL}
	if err := conf.Favorites.Validate(); err != nil {
		return nil, withCode(exitUsage, err)
	}
	slot, err := favorites.OpenSlot(ctx, conf)
	if err != nil {
		return nil, withCode(exitBackend, err)
	}
	store := favorites.NewStore(slot, favorites.WithLogger(o.logger()))
	if err := store.Load(ctx); err != nil {
		_ = store.Close()
		return nil, withCode(exitBackend, err)
	}
	return store, nil
}

func newFavoritesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage the favorites collection",
	}
	cmd.AddCommand(newFavoritesListCmd(opts))
	cmd.AddCommand(newFavoritesAddCmd(opts))
	cmd.AddCommand(newFavoritesRemoveCmd(opts))
	cmd.AddCommand(newFavoritesClearCmd(opts))
	return cmd
}

func newFavoritesListCmd(opts *rootOptions) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print favorites as JSON, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.openFavorites(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			entries := store.All()
			if typ != "" {
				entries = store.ListByType(typ)
			}
			return writeJSON(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "only entries of this type")
	return cmd
}

func newFavoritesAddCmd(opts *rootOptions) *cobra.Command {
	var item favorites.Item
	cmd := &cobra.Command{
		Use:   "add --name <name> --path <path>",
		Short: "Add a favorite unless its key is already present",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := constants.Validate.Struct(item); err != nil {
				return withCode(exitUsage, err)
			}
			store, err := opts.openFavorites(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			added, err := store.Add(cmd.Context(), item)
			if err != nil {
				return withCode(exitBackend, err)
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "exists %s\n", item.Key())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", item.Key())
			return nil
		},
	}
	cmd.Flags().StringVar(&item.ID, "id", "", "favorite id (defaults to the path)")
	cmd.Flags().StringVar(&item.Name, "name", "", "display name")
	cmd.Flags().StringVar(&item.Path, "path", "", "console path")
	cmd.Flags().StringVar(&item.Icon, "icon", "", "icon")
	cmd.Flags().StringVar(&item.Type, "type", favorites.DefaultType, "category")
	return cmd
}

func newFavoritesRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove a favorite by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openFavorites(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			removed, err := store.Remove(cmd.Context(), args[0])
			if err != nil {
				return withCode(exitBackend, err)
			}
			if !removed {
				return withCode(exitUsage, fmt.Errorf("no favorite with key %q", args[0]))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}

func newFavoritesClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every favorite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.openFavorites(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			n := store.Len()
			if err := store.ClearAll(cmd.Context()); err != nil {
				return withCode(exitBackend, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d\n", n)
			return nil
		},
	}
}
