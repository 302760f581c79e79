package cli

import (
	"github.com/spf13/cobra"

	"github.com/askiada/dvpublish/internal/config"
	"github.com/askiada/dvpublish/pkg/record"
)

func newTemplateCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the default metadata template",
		Long: `Write the default Dataverse citation template. The template is JSON with comments,
%NAME%, %DESCRIPTION%, %AUTHOR%, %AFFILIATION% and %EMAIL% are replaced verbatim.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			err := record.WriteDefaultTemplate(output)
			if err != nil {
				return err
			}

			a.logger.Info("template written", "path", output)

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", config.DefaultTemplate, "path of the template file")

	return cmd
}
