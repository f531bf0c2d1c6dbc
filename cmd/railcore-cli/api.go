package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Export commands
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export documents through the API",
	Long:  "Download checklist and punch list exports rendered by the Railcore API",
}

var exportChecklistCmd = &cobra.Command{
	Use:   "checklist [submission-id]",
	Short: "Export a checklist submission as PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		out, _ := cmd.Flags().GetString("out")
		if project == "" {
			return fmt.Errorf("--project is required")
		}
		f, err := newClient().ExportChecklist(cmd.Context(), args[0], project)
		if err != nil {
			return err
		}
		return saveFile(cmd, out, f)
	},
}

var exportPunchCmd = &cobra.Command{
	Use:   "punch [project-id]",
	Short: "Export a project's punch list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		if format != "" && format != "pdf" && format != "xlsx" {
			return fmt.Errorf("--format must be pdf or xlsx")
		}
		f, err := newClient().ExportPunchList(cmd.Context(), args[0], format)
		if err != nil {
			return err
		}
		return saveFile(cmd, out, f)
	},
}

func init() {
	exportCmd.AddCommand(exportChecklistCmd)
	exportCmd.AddCommand(exportPunchCmd)

	exportChecklistCmd.Flags().String("project", "", "project name printed on the document")
	exportChecklistCmd.Flags().String("out", "", "output path (default from the server)")
	exportPunchCmd.Flags().String("format", "pdf", "pdf or xlsx")
	exportPunchCmd.Flags().String("out", "", "output path (default from the server)")
}

func saveFile(cmd *cobra.Command, out string, f File) error {
	path, err := writeDocument(out, f.Filename, f.Data)
	if err != nil {
		return err
	}
	reportWritten(cmd.OutOrStdout(), path, len(f.Data))
	return nil
}

// Daily report commands
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Daily report generation and distribution",
	Long: `Generate stored daily report PDFs and email them to a project's distribution list.

Example workflow:
  1. railcore-cli report generate <report-id> --project "Main Line Extension"
  2. railcore-cli report send <project-id> --pdf-url <url> --date 2024-03-15 --crew "Track Crew A"`,
}

var reportGenerateCmd = &cobra.Command{
	Use:   "generate [report-id]",
	Short: "Render and store a daily report, printing its URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		download, _ := cmd.Flags().GetString("download")
		if project == "" {
			return fmt.Errorf("--project is required")
		}
		c := newClient()
		u, err := c.GenerateReport(cmd.Context(), args[0], project)
		if err != nil {
			return err
		}
		switch outputFmt {
		case "json", "yaml":
			if err := formatOutput(cmd.OutOrStdout(), outputFmt, map[string]string{"pdfUrl": u}); err != nil {
				return err
			}
		case "env":
			fmt.Fprintf(cmd.OutOrStdout(), "PDF_URL=%s\n", u)
		default:
			fmt.Fprintln(cmd.OutOrStdout(), u)
		}
		if download == "" {
			return nil
		}
		f, err := c.Download(cmd.Context(), u)
		if err != nil {
			return err
		}
		return saveFile(cmd, download, f)
	},
}

var reportSendCmd = &cobra.Command{
	Use:   "send [project-id]",
	Short: "Email a generated report to the project's distribution list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pdfURL, _ := cmd.Flags().GetString("pdf-url")
		date, _ := cmd.Flags().GetString("date")
		crew, _ := cmd.Flags().GetString("crew")
		if pdfURL == "" || date == "" {
			return fmt.Errorf("--pdf-url and --date are required")
		}
		if err := newClient().SendReport(cmd.Context(), args[0], pdfURL, date, crew); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", failColor.Sprint("✗"), err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s report sent\n", okColor.Sprint("✓"))
		return nil
	},
}

func init() {
	reportCmd.AddCommand(reportGenerateCmd)
	reportCmd.AddCommand(reportSendCmd)

	reportGenerateCmd.Flags().String("project", "", "project name printed on the document")
	reportGenerateCmd.Flags().String("download", "", "also save the generated PDF to this path")
	reportSendCmd.Flags().String("pdf-url", "", "URL returned by report generate")
	reportSendCmd.Flags().String("date", "", "report date, YYYY-MM-DD or display form")
	reportSendCmd.Flags().String("crew", "", "crew name for the email body")
}
