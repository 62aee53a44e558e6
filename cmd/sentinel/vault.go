package sentinel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/entropy-sentinel/sentinel/internal/audit"
	"github.com/entropy-sentinel/sentinel/internal/cache"
	"github.com/entropy-sentinel/sentinel/internal/detect"
	"github.com/entropy-sentinel/sentinel/internal/engine"
	"github.com/entropy-sentinel/sentinel/internal/types"
	"github.com/entropy-sentinel/sentinel/internal/vault"
)

var (
	flagVaultLine      int
	flagVaultColumn    int
	flagVaultStart     int
	flagVaultEnd       int
	flagVaultFinding   int
	flagVaultYes       bool
	flagVaultGitIgnore bool
	flagVaultFile      string
	flagVaultRef       string
)

func init() {
	cmd := &cobra.Command{
		Use:   "vault [file]",
		Short: "Move a detected secret into the .env vault",
		Long: `Append the secret to the project's .env file as KEY="value" and replace the
quoted literal in source with an environment reference (process.env.KEY by
default). KEY is the upper-cased variable name.

Select the secret by position (--line/--column), by byte range
(--start/--end), or by its number in the last scan's secrets (--finding).`,
		Example: `  sentinel vault src/config.js --line 12 --column 18
  sentinel vault --finding 1 --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: runVault,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "project root used when the file is not in a git work tree")
	cmd.Flags().IntVar(&flagVaultLine, "line", 0, "1-based line inside the secret")
	cmd.Flags().IntVar(&flagVaultColumn, "column", 0, "1-based column inside the secret")
	cmd.Flags().IntVar(&flagVaultStart, "start", -1, "byte offset where the value starts")
	cmd.Flags().IntVar(&flagVaultEnd, "end", -1, "byte offset where the value ends")
	cmd.Flags().IntVar(&flagVaultFinding, "finding", 0, "1-based number of a secret from the last scan")
	cmd.Flags().BoolVarP(&flagVaultYes, "yes", "y", false, "overwrite an existing key without asking")
	cmd.Flags().BoolVar(&flagVaultGitIgnore, "gitignore", true, "add the vault file to .gitignore")
	cmd.Flags().StringVar(&flagVaultFile, "file", "", "vault file relative to the project root (default .env)")
	cmd.Flags().StringVar(&flagVaultRef, "reference", "", "replacement template with one %s for the key (default process.env.%s)")
}

func runVault(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(flagPath)
	if err != nil {
		return err
	}
	file, rng, err := vaultTarget(s, args)
	if err != nil {
		return err
	}

	vc := s.vault()
	store := flagVaultFile
	if store == "" {
		store = vc.GetFile()
	}
	ref := flagVaultRef
	if ref == "" {
		ref = vc.GetReference()
	}
	if strings.Count(ref, "%s") != 1 {
		return fmt.Errorf("reference template %q must contain exactly one %%s", ref)
	}

	res, err := vault.Secret(file, rng, vault.Options{
		Root:      s.root,
		File:      store,
		Reference: ref,
		Confirm:   confirmOverwrite(cmd.InOrStdin(), cmd.ErrOrStderr(), store),
		GitIgnore: flagVaultGitIgnore,
		DryRun:    flagDryRun,
		Logger:    log.Logger,
	})
	if err != nil {
		if errors.Is(err, vault.ErrDeclined) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled; nothing was changed.")
			return exitError{code: 1}
		}
		return err
	}

	out := cmd.OutOrStdout()
	if flagDryRun {
		fmt.Fprintf(out, "(dry-run) would append %s to %s and replace the literal with %s\n", res.Key, res.EnvPath, res.Replacement)
		return nil
	}
	if err := audit.New(s.root).Append(audit.VaultRecord(s.root, file, res.Key, res.EnvPath, res.Replaced)); err != nil {
		log.Debug().Err(err).Msg("audit record not written")
	}
	fmt.Fprintf(out, "🔒 Vaulted %s to %s\n", res.Key, res.EnvPath)
	return nil
}

// vaultTarget resolves the file and value range selected by the flags.
func vaultTarget(s settings, args []string) (string, detect.Range, error) {
	if flagVaultFinding > 0 {
		return lastScanTarget(s.root, flagVaultFinding)
	}
	if len(args) == 0 {
		return "", detect.Range{}, errors.New("a file is required unless --finding is given")
	}
	file := args[0]
	if flagVaultStart >= 0 || flagVaultEnd >= 0 {
		if flagVaultStart < 0 || flagVaultEnd < 0 {
			return "", detect.Range{}, errors.New("--start and --end must be given together")
		}
		return file, detect.Range{Start: flagVaultStart, End: flagVaultEnd}, nil
	}
	if flagVaultLine <= 0 || flagVaultColumn <= 0 {
		return "", detect.Range{}, errors.New("select the secret with --line/--column, --start/--end or --finding")
	}
	text, err := os.ReadFile(file)
	if err != nil {
		return "", detect.Range{}, fmt.Errorf("read %s: %w", file, err)
	}
	for _, f := range engine.ScanText(s.classifier, file, string(text)) {
		if f.IsSecret() && contains(f, flagVaultLine, flagVaultColumn) {
			return file, detect.Range{Start: f.Start, End: f.End}, nil
		}
	}
	return "", detect.Range{}, fmt.Errorf("no secret detected at %s:%d:%d", file, flagVaultLine, flagVaultColumn)
}

func lastScanTarget(root string, n int) (string, detect.Range, error) {
	listing, err := cache.LoadListing(root)
	if err != nil {
		return "", detect.Range{}, fmt.Errorf("no previous scan results; run `sentinel scan` first: %w", err)
	}
	f, ok := listing.Secret(n)
	if !ok {
		return "", detect.Range{}, fmt.Errorf("last scan listed %d secret(s); --finding %d is out of range", len(listing.Secrets()), n)
	}
	return filepath.Join(root, filepath.FromSlash(f.Path)), detect.Range{Start: f.Start, End: f.End}, nil
}

func contains(f types.Finding, line, col int) bool {
	if line < f.Line || line > f.EndLine {
		return false
	}
	if line == f.Line && col < f.Column {
		return false
	}
	if line == f.EndLine && col > f.EndColumn {
		return false
	}
	return true
}

// confirmOverwrite asks on the terminal; without one it declines unless
// --yes was given.
func confirmOverwrite(in io.Reader, out io.Writer, store string) vault.ConfirmFunc {
	return func(key string) bool {
		if flagVaultYes {
			return true
		}
		if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
			fmt.Fprintf(out, "Key '%s' already exists in %s; re-run with --yes to overwrite.\n", key, store)
			return false
		}
		fmt.Fprintf(out, "Key '%s' already exists in %s. Overwrite? [y/N] ", key, store)
		line, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}
