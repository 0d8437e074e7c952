package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"medcore/m/domain"
	"medcore/m/internal/app"
	"medcore/m/internal/backup"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export and import backup bundles",
	}
	cmd.AddCommand(newBackupExportCmd())
	cmd.AddCommand(newBackupImportCmd())
	return cmd
}

func newBackupExportCmd() *cobra.Command {
	var mode, from, to, dir, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := backup.ParseMode(mode)
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) error {
				bundle, err := a.Backup.Export(cmd.Context(), m, from, to)
				if err != nil {
					return err
				}
				if output == "-" {
					return backup.Encode(cmd.OutOrStdout(), bundle)
				}
				path := output
				if path == "" {
					path = filepath.Join(dir, backup.FileName(bundle))
				}
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := backup.Encode(f, bundle); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bills, %d patients)\n", path, len(bundle.Bills), len(bundle.Patients))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "full", "full, daily or range")
	cmd.Flags().StringVar(&from, "from", "", "day for daily mode, first day for range mode")
	cmd.Flags().StringVar(&to, "to", "", "last day for range mode")
	cmd.Flags().StringVar(&dir, "dir", ".", "directory for the generated file name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, - for stdout")
	return cmd
}

func newBackupImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a backup bundle into the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) error {
				added, err := a.Backup.Import(cmd.Context(), data)
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), added)
				}
				names := make([]string, 0, len(added))
				for e := range added {
					names = append(names, string(e))
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s +%d\n", name, added[domain.EntityType(name)])
				}
				return nil
			})
		},
	}
}
