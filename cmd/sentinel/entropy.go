package sentinel

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/entropy-sentinel/sentinel/internal/entropy"
)

func init() {
	cmd := &cobra.Command{
		Use:   "entropy <text>...",
		Short: "Print the Shannon entropy of each argument",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(".")
			if err != nil {
				return err
			}
			p := s.classifier.Policy()
			type row struct {
				Text      string  `json:"text"`
				Entropy   float64 `json:"entropy"`
				Length    int     `json:"length"`
				Secret    bool    `json:"secret"`
				Sensitive bool    `json:"secret_if_sensitive"`
			}
			rows := make([]row, 0, len(args))
			for _, a := range args {
				e := entropy.Shannon(a)
				n := utf8.RuneCountInString(a)
				long := n >= p.MinLength
				rows = append(rows, row{
					Text:      a,
					Entropy:   e,
					Length:    n,
					Secret:    long && e > p.BaseThreshold,
					Sensitive: long && e > p.SensitiveThreshold,
				})
			}
			out := cmd.OutOrStdout()
			if flagJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			for _, r := range rows {
				verdict := "benign"
				switch {
				case r.Secret:
					verdict = "secret"
				case r.Sensitive:
					verdict = "secret if assigned to a sensitive name"
				}
				fmt.Fprintf(out, "%.4f\t%s\t%s\n", r.Entropy, verdict, r.Text)
			}
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
