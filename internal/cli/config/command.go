package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	configdomain "github.com/crmarques/credstore/config"
	"github.com/crmarques/credstore/internal/cli/common"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "config",
		Short: "Manage contexts",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	command.AddCommand(
		newAddCommand(deps),
		newDeleteCommand(deps),
		newListCommand(deps, globalFlags),
		newUseCommand(deps),
		newShowCommand(deps, globalFlags),
		newCurrentCommand(deps, globalFlags),
	)

	return command
}

type contextListItem struct {
	Name       string `json:"name" yaml:"name"`
	Repository string `json:"repository" yaml:"repository"`
	Current    bool   `json:"current" yaml:"current"`
}

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contexts",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}
			items, err := contexts.List(command.Context())
			if err != nil {
				return err
			}

			currentName := ""
			if len(items) > 0 {
				current, err := contexts.GetCurrent(command.Context())
				if err != nil {
					return err
				}
				currentName = current.Name
			}

			listed := make([]contextListItem, 0, len(items))
			for _, item := range items {
				listed = append(listed, contextListItem{
					Name:       item.Name,
					Repository: item.Repository.Path,
					Current:    item.Name == currentName,
				})
			}

			return common.WriteOutput(command, globalFlags.Output, listed, func(w io.Writer, value []contextListItem) error {
				for _, item := range value {
					marker := " "
					if item.Current {
						marker = "*"
					}
					if _, writeErr := fmt.Fprintf(w, "%s %s\t%s\n", marker, item.Name, item.Repository); writeErr != nil {
						return writeErr
					}
				}
				return nil
			})
		},
	}
}

func newUseCommand(deps common.CommandDependencies) *cobra.Command {
	command := &cobra.Command{
		Use:   "use <name>",
		Short: "Set the current context",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}
			return contexts.SetCurrent(command.Context(), args[0])
		},
	}
	registerSingleContextArgCompletion(command, deps)
	return command
}

func newDeleteCommand(deps common.CommandDependencies) *cobra.Command {
	command := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a context; the credential repository is left untouched",
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}
			return contexts.Delete(command.Context(), args[0])
		},
	}
	registerSingleContextArgCompletion(command, deps)
	return command
}

func newShowCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "show [name]",
		Short: "Show the resolved settings of a context",
		Long: "Show the resolved settings of a context. Without a name the --context flag\n" +
			"or the current context is used. Repository overrides from --repository and\n" +
			"CREDSTORE_REPOSITORY are applied.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}

			selection := common.Selection(globalFlags)
			if len(args) > 0 {
				selection.Name = strings.TrimSpace(args[0])
			}

			shown, err := contexts.ResolveContext(command.Context(), selection)
			if err != nil {
				return err
			}
			return common.WriteOutput(command, common.OutputYAML, shown, nil)
		},
	}
	registerSingleContextArgCompletion(command, deps)
	return command
}

func newCurrentCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Get current context",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}
			current, err := contexts.GetCurrent(command.Context())
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags.Output, current, func(w io.Writer, value configdomain.Context) error {
				_, writeErr := fmt.Fprintln(w, value.Name)
				return writeErr
			})
		},
	}
}
