package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/cpicrag/service"
)

func newQueryCmd(root *rootOptions) *cobra.Command {
	var (
		q      service.Query
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Retrieve context for a gene, drug and phenotype",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if q.Gene == "" || q.Drug == "" || q.Phenotype == "" {
				return errors.New("--gene, --drug and --phenotype are required")
			}
			_, svc, _, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			docs, err := svc.Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(docs, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			for _, doc := range docs {
				fmt.Fprintf(out, "%.4f  %s\n", doc.Score, doc.ID)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, service.JoinContext(docs))
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Gene, "gene", "", "gene symbol, e.g. CYP2D6")
	cmd.Flags().StringVar(&q.Drug, "drug", "", "drug name, e.g. codeine")
	cmd.Flags().StringVar(&q.Phenotype, "phenotype", "", "phenotype, e.g. poor metabolizer")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print matched documents as JSON")
	return cmd
}
