package sentinel

import (
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/entropy-sentinel/sentinel/internal/audit"
)

func init() {
	var path string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded scans and vault operations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(path)
			if err != nil {
				return err
			}
			records, err := audit.New(s.root).History()
			if err != nil {
				return err
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			out := cmd.OutOrStdout()
			if flagJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			table := tablewriter.NewWriter(out)
			table.Header("WHEN", "ACTION", "DETAIL")
			for _, r := range records {
				detail := fmt.Sprintf("%d findings (%d new) in %d files", r.TotalFindings, r.NewFindings, r.FilesScanned)
				if r.Action == audit.ActionVault {
					detail = fmt.Sprintf("%s from %s into %s", r.Key, r.File, r.Store)
				}
				_ = table.Append([]string{r.Timestamp.Format("2006-01-02 15:04:05"), r.Action, detail})
			}
			return table.Render()
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", ".", "project root")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most this many records (0 = all)")
	rootCmd.AddCommand(cmd)
}
