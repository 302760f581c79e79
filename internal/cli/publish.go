package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/askiada/dvpublish/pkg/archive"
	"github.com/askiada/dvpublish/pkg/dataset"
	"github.com/askiada/dvpublish/pkg/publish"
	"github.com/askiada/dvpublish/pkg/publish/drawer"
	"github.com/askiada/dvpublish/pkg/publish/logging"
	"github.com/askiada/dvpublish/pkg/publish/measure"
	"github.com/askiada/dvpublish/pkg/publish/model"
	"github.com/askiada/dvpublish/pkg/record"
	"github.com/askiada/dvpublish/pkg/repository"
)

type publishFlags struct {
	input       string
	datasetType string
	name        string
	description string
	author      string
	affiliation string
	email       string
	graph       string
}

func newPublishCommand(a *app) *cobra.Command {
	flags := &publishFlags{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Validate, archive and upload a dataset to a new record",
		Example: `  dvpublish publish -i ./iris -t tabular -n Iris -d "Iris flowers" \
    -a "Jane Doe" -f "Lab" -e jane@example.org`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			datasetType, err := dataset.ParseType(flags.datasetType)
			if err != nil {
				return err
			}

			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			client, err := repository.New(cfg.Repository())
			if err != nil {
				return err
			}

			opts := []model.PublishOption{logging.PublishLogger(a.logger)}

			if flags.graph != "" {
				msr := measure.NewDefaultMeasure()
				opts = append(opts,
					measure.PublishMeasure(msr),
					drawer.PublishDrawer(drawer.NewDOTDrawer(flags.graph), msr),
				)
			}

			publisher, err := publish.New(publish.Dependencies{
				Validator: dataset.Validator{},
				Archiver:  archive.NewZipper(cfg.ArchiveDir, cfg.ArchiveName),
				Builder:   record.NewBuilder(cfg.Template),
				Client:    client,
				Parent:    cfg.ParentCollection,
			}, opts...)
			if err != nil {
				return err
			}

			persistentID, err := publisher.Run(cmd.Context(), publish.Request{
				Dataset: dataset.Descriptor{Root: flags.input, Type: datasetType},
				Metadata: record.Fields{
					Name:        flags.name,
					Description: flags.description,
					Author:      flags.author,
					Affiliation: flags.affiliation,
					Email:       flags.email,
				},
			})
			if persistentID != "" {
				fmt.Fprintln(cmd.OutOrStdout(), persistentID)
			}

			return err
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "input path of the dataset files")
	cmd.Flags().StringVarP(&flags.datasetType, "type", "t", "", "type of the dataset: tabular, classification or object-detection")
	cmd.Flags().StringVarP(&flags.name, "name", "n", "", "name of the dataset")
	cmd.Flags().StringVarP(&flags.description, "description", "d", "", "description of the dataset")
	cmd.Flags().StringVarP(&flags.author, "author", "a", "", "author name")
	cmd.Flags().StringVarP(&flags.affiliation, "affiliation", "f", "", "author affiliation")
	cmd.Flags().StringVarP(&flags.email, "email", "e", "", "author email address")
	cmd.Flags().StringVar(&flags.graph, "graph", "", "write the states of the run to this DOT file")

	requireFlags(cmd.Flags(), "input", "type", "name", "description", "author", "affiliation", "email")

	return cmd
}

func requireFlags(flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		_ = cobra.MarkFlagRequired(flags, name)
	}
}
