package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"course-catalog/internal/export"
	"course-catalog/internal/mappers"
	"course-catalog/internal/sftpclient"
)

const mappingCSVName = "course_mapping.csv"

func newExportCmd(a *app) *cobra.Command {
	var dir string
	var upload bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the mapping CSV and one JSON file per semester",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				dir = a.cfg.Cache.ExportDir
			}
			if upload {
				if err := a.cfg.ValidateSFTP(); err != nil {
					return err
				}
			}

			idx, err := a.loadIndex()
			if err != nil {
				return err
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("export: %w", err)
			}

			var buf bytes.Buffer
			if err := export.WriteMappingCSV(&buf, mappers.BuildMapping(idx.Records())); err != nil {
				return fmt.Errorf("export: mapping csv: %w", err)
			}
			csvPath := filepath.Join(dir, mappingCSVName)
			if err := a.store.WriteFile(csvPath, buf.Bytes()); err != nil {
				return fmt.Errorf("export: %w", err)
			}

			files, err := export.WriteSemesterFiles(cmd.Context(), a.store, idx, dir, a.pool())
			if err != nil {
				return err
			}
			files = append([]string{csvPath}, files...)

			out := cmd.OutOrStdout()
			for _, f := range files {
				fmt.Fprintln(out, f)
			}

			if upload {
				done, err := sftpclient.UploadFiles(cmd.Context(), sftpclient.FromConfig(a.cfg.SFTP), files, a.log)
				if err != nil {
					return fmt.Errorf("uploaded %d of %d files: %w", len(done), len(files), err)
				}
				fmt.Fprintf(out, "uploaded %d files to %s:%s\n", len(done), a.cfg.SFTP.Host, a.cfg.SFTP.Dir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default cache.export_dir)")
	cmd.Flags().BoolVar(&upload, "sftp", false, "upload the exported files using the sftp settings")
	return cmd
}
