package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/cpicrag/service"
)

func newIndexCmd(root *rootOptions) *cobra.Command {
	var (
		corpus  string
		folders []string
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Embed the corpus folders into the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, svc, _, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			req := service.IndexRequestFromConfig(cfg.Corpus)
			if corpus != "" {
				req.Root = corpus
			}
			if len(folders) > 0 {
				req.Folders = folders
			}
			result, err := svc.Index(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "indexed %d documents from %d folders into %q (%s)\n",
				result.Documents, result.Folders, svc.CollectionName(), result.Elapsed.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVar(&corpus, "root", "", "corpus root (default "+service.DefaultCorpusRoot+")")
	cmd.Flags().StringSliceVar(&folders, "folders", nil, "corpus folders to index")
	return cmd
}
