package main

import (
	"context"
	"errors"

	"github.com/recoverly/flowedit"
	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/spf13/cobra"
)

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("id", "", "Read the automation with this ID from the configured store")
	cmd.Flags().String("template", "", "Read a template from the catalogue instead")
}

// loadSource resolves the automation a read-only command works on: a file
// argument, a stored automation (--id) or a template (--template).
func loadSource(ctx context.Context, cmd *cobra.Command, args []string) (*domain.Automation, error) {
	if len(args) > 0 {
		return flowedit.LoadAutomationFile(args[0])
	}

	id, _ := cmd.Flags().GetString("id")
	templateID, _ := cmd.Flags().GetString("template")
	if id == "" && templateID == "" {
		return nil, errors.New("pass an automation file, --id or --template")
	}

	rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	if id != "" {
		return rt.Engine.Sessions().Load(ctx, id)
	}
	t, err := rt.Engine.Templates().GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return &domain.Automation{ID: t.ID, Name: t.Name, Graph: t.Graph}, nil
}
