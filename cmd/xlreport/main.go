// Package main provides the CLI entry point for xlreport-go.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ukaji3/xlreport-go/pkg/xlreport"
	"github.com/ukaji3/xlreport-go/pkg/xlreport/models"
	"github.com/ukaji3/xlreport-go/pkg/xlreport/output"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "xlreport:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "xlreport [template.xls] [structure.xml]",
		Short: "Compile an Excel report template and its structure description",
		Long: `xlreport-go compiles a BIFF8 (.xls) report template and an XML structure
description into a report model and outputs it as JSON or YAML.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, args[0], args[1])
		},
	}
	addFlags(cmd.Flags())
	return cmd
}

func addFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Config file (default: ./xlreport.yaml)")
	fs.StringP("output", "o", "", "Output file path (default: stdout)")
	fs.String("format", "json", "Output format: json, yaml")
	fs.Bool("pretty", false, "Pretty-print JSON output")
	fs.String("sheets-dir", "", "Directory for per-sheet output files")
	fs.String("template-out", "", "Write the preserved template to this file")
	fs.String("layout", "", "Write the layout workbook (.xlsx) to this file")
	fs.Bool("preserve-template", false, "Preserve the template (overrides the structure attribute)")
	fs.Bool("strict-expressions", false, "Reject expressions that do not compile")
	fs.Bool("copy-right-header", false, "Copy the template's right header instead of its center header")
	fs.String("log-level", "warn", "Log level: debug, info, warn, error")
}

// loadConfig binds flags, XLREPORT_* environment variables and the optional
// xlreport.yaml config file into v.
func loadConfig(v *viper.Viper, fs *pflag.FlagSet) error {
	if err := v.BindPFlags(fs); err != nil {
		return err
	}
	v.SetEnvPrefix("XLREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}
	v.SetConfigName("xlreport")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

func run(cmd *cobra.Command, v *viper.Viper, templatePath, structurePath string) error {
	level, err := logrus.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return err
	}
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(level)

	format := strings.ToLower(v.GetString("format"))
	if format != "json" && format != "yaml" {
		return fmt.Errorf("invalid format: %s (must be json or yaml)", format)
	}

	for _, path := range []string{templatePath, structurePath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
	}

	opts := xlreport.DefaultOptions()
	opts.Logger = logger
	opts.StrictExpressions = v.GetBool("strict-expressions")
	opts.CopyRightHeader = v.GetBool("copy-right-header")
	if v.IsSet("preserve-template") {
		preserve := v.GetBool("preserve-template")
		opts.PreserveTemplate = &preserve
	} else if v.GetString("template-out") != "" {
		preserve := true
		opts.PreserveTemplate = &preserve
	}

	report, err := xlreport.CompileFiles(templatePath, structurePath, opts)
	if err != nil {
		return err
	}

	data, err := serialize(report, format, v.GetBool("pretty"))
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	outputPath := v.GetString("output")
	sheetsDir := v.GetString("sheets-dir")
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if sheetsDir == "" {
		if err := writeOut(cmd.OutOrStdout(), data); err != nil {
			return err
		}
	}

	if sheetsDir != "" {
		if err := writeSheetFiles(report, sheetsDir, format, v.GetBool("pretty")); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
	}

	if path := v.GetString("template-out"); path != "" {
		if report.Template == nil {
			return errors.New("template was not preserved")
		}
		if err := os.WriteFile(path, report.Template, 0644); err != nil {
			return fmt.Errorf("failed to write template: %w", err)
		}
	}

	if path := v.GetString("layout"); path != "" {
		f, err := output.LayoutWorkbook(report)
		if err != nil {
			return fmt.Errorf("layout failed: %w", err)
		}
		defer f.Close()
		if err := f.SaveAs(path); err != nil {
			return fmt.Errorf("failed to write layout: %w", err)
		}
	}

	return nil
}

func serialize(report *models.Report, format string, pretty bool) ([]byte, error) {
	if format == "yaml" {
		return output.ToYAML(report)
	}
	return output.ToJSON(report, pretty)
}

func writeOut(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

func writeSheetFiles(report *models.Report, dir, format string, pretty bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, sheet := range report.Sheets {
		var (
			data []byte
			err  error
		)
		if format == "yaml" {
			data, err = output.SheetToYAML(sheet)
		} else {
			data, err = output.SheetToJSON(sheet, pretty)
		}
		if err != nil {
			return err
		}

		filename := filepath.Join(dir, sheet.ID+"."+format)
		if err := os.WriteFile(filename, data, 0644); err != nil {
			return err
		}
	}

	return nil
}
