package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askiada/dvpublish/pkg/dataset"
)

func newValidateCommand(a *app) *cobra.Command {
	var input, datasetType string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that a dataset folder matches its type, without archiving or uploading it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := dataset.ParseType(datasetType)
			if err != nil {
				return err
			}

			desc := dataset.Descriptor{Root: input, Type: parsed}

			splits, err := dataset.SplitSet(desc.Root)
			if err == nil {
				a.logger.Debug("checking dataset", "path", desc.Root, "type", desc.Type, "splits", splits)
			}

			outcome := dataset.Validate(desc)
			if !outcome.OK() {
				return outcome.Err()
			}

			fmt.Fprintln(cmd.OutOrStdout(), outcome.String())

			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input path of the dataset files")
	cmd.Flags().StringVarP(&datasetType, "type", "t", "", "type of the dataset: tabular, classification or object-detection")
	requireFlags(cmd.Flags(), "input", "type")

	return cmd
}
