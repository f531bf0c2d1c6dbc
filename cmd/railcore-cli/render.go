package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dillanmilo/railcore/internal/document"
	"github.com/dillanmilo/railcore/internal/reports/domain"
)

// Input files are YAML; JSON documents parse the same way.

type dailyInput struct {
	Project    string `yaml:"project"`
	Date       string `yaml:"date"`
	Crew       string `yaml:"crew"`
	Activities string `yaml:"activities"`
	Quantities string `yaml:"quantities"`
	Blockers   string `yaml:"blockers"`
}

type punchInput struct {
	Project string `yaml:"project"`
	Items   []struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Assignee    string `yaml:"assignee"`
		Status      string `yaml:"status"`
	} `yaml:"items"`
}

type checklistInput struct {
	Project  string `yaml:"project"`
	Template struct {
		Name   string                  `yaml:"name"`
		Fields []domain.ChecklistField `yaml:"fields"`
	} `yaml:"template"`
	Values map[string]domain.Value `yaml:"values"`
}

func decodeInput(r io.Reader, v any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func (in dailyInput) report() (domain.DailyReport, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(in.Date))
	if err != nil {
		return domain.DailyReport{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	if strings.TrimSpace(in.Activities) == "" {
		return domain.DailyReport{}, fmt.Errorf("activities are required")
	}
	return domain.DailyReport{
		ID:         uuid.New(),
		ReportDate: d,
		Crew:       in.Crew,
		Activities: in.Activities,
		Quantities: in.Quantities,
		Blockers:   in.Blockers,
	}, nil
}

func (in punchInput) items() ([]domain.PunchItem, error) {
	out := make([]domain.PunchItem, 0, len(in.Items))
	for i, it := range in.Items {
		st := domain.PunchStatus(strings.TrimSpace(it.Status))
		if st == "" {
			st = domain.PunchOpen
		}
		if !st.Valid() {
			return nil, fmt.Errorf("item %d: unknown status %q", i+1, it.Status)
		}
		if strings.TrimSpace(it.Title) == "" {
			return nil, fmt.Errorf("item %d: title is required", i+1)
		}
		out = append(out, domain.PunchItem{
			ID:          uuid.New(),
			Title:       it.Title,
			Description: it.Description,
			Assignee:    it.Assignee,
			Status:      st,
		})
	}
	return out, nil
}

func (in checklistInput) checklist() (domain.ChecklistSubmission, domain.ChecklistTemplate) {
	tpl := domain.ChecklistTemplate{ID: uuid.New(), Name: in.Template.Name, Fields: in.Template.Fields}
	sub := domain.ChecklistSubmission{ID: uuid.New(), TemplateID: tpl.ID, Values: in.Values}
	return sub, tpl
}

// renderInput reads kind's input document from r and renders it.
func renderInput(r *document.Renderer, kind string, src io.Reader) (filename string, pdf []byte, err error) {
	switch kind {
	case "daily":
		var in dailyInput
		if err := decodeInput(src, &in); err != nil {
			return "", nil, err
		}
		rep, err := in.report()
		if err != nil {
			return "", nil, err
		}
		pdf, err = r.RenderDailyReport(rep, in.Project)
		return "daily-report-" + rep.ReportDate.Format("2006-01-02") + ".pdf", pdf, err
	case "punch":
		var in punchInput
		if err := decodeInput(src, &in); err != nil {
			return "", nil, err
		}
		items, err := in.items()
		if err != nil {
			return "", nil, err
		}
		pdf, err = r.RenderPunchList(items, in.Project)
		return in.Project + "-punch-list.pdf", pdf, err
	case "checklist":
		var in checklistInput
		if err := decodeInput(src, &in); err != nil {
			return "", nil, err
		}
		sub, tpl := in.checklist()
		if missing := domain.MissingRequired(tpl, sub); len(missing) > 0 {
			fmt.Fprintf(os.Stderr, "warning: missing required values: %s\n", strings.Join(missing, ", "))
		}
		pdf, err = r.RenderChecklist(sub, tpl, in.Project)
		return "checklist.pdf", pdf, err
	}
	return "", nil, fmt.Errorf("unknown document kind %q", kind)
}

var renderCmd = &cobra.Command{
	Use:   "render [daily|punch|checklist]",
	Short: "Render a document locally from a YAML or JSON file",
	Long: `Render a daily report, punch list or checklist PDF without the API.

Example:
  railcore-cli render daily -f report.yaml --out report.pdf`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"daily", "punch", "checklist"},
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		out, _ := cmd.Flags().GetString("out")
		uncompressed, _ := cmd.Flags().GetBool("uncompressed")

		src, err := openInput(file)
		if err != nil {
			return err
		}
		defer src.Close()

		r := document.New(document.Options{Uncompressed: uncompressed})
		name, pdf, err := renderInput(r, args[0], src)
		if err != nil {
			return err
		}
		path, err := writeDocument(out, name, pdf)
		if err != nil {
			return err
		}
		reportWritten(cmd.OutOrStdout(), path, len(pdf))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringP("file", "f", "-", "input file (- for stdin)")
	renderCmd.Flags().String("out", "", "output path (default derived from the document)")
	renderCmd.Flags().Bool("uncompressed", false, "write uncompressed PDF content streams")
}
