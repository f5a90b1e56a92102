package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cloo-solutions/dreamcourse/internal/cli"
	"github.com/spf13/cobra"
)

// TableView is a parsed answer table as the API returns it.
type TableView struct {
	Columns  []string            `json:"columns"`
	Records  []map[string]string `json:"records"`
	Rejected []json.RawMessage   `json:"rejected,omitempty"`
}

// ProfileView is the submitted student profile.
type ProfileView struct {
	Name   string `json:"name"`
	School string `json:"school"`
	Job    string `json:"job"`
	Grade  int    `json:"grade"`
}

// SessionView mirrors the server's session representation.
type SessionView struct {
	ID                string       `json:"id"`
	Screen            string       `json:"screen"`
	Profile           *ProfileView `json:"profile,omitempty"`
	MajorTable        *TableView   `json:"major_table,omitempty"`
	RecommendedMajors []string     `json:"recommended_majors,omitempty"`
	SelectedMajor     string       `json:"selected_major,omitempty"`
	MajorComment      string       `json:"major_comment,omitempty"`
	CurriculumTable   *TableView   `json:"curriculum_table,omitempty"`
	AdmissionTable    *TableView   `json:"admission_table,omitempty"`
	Fault             string       `json:"fault,omitempty"`
}

// OptionsView lists the home screen choices.
type OptionsView struct {
	Grades        []string `json:"grades"`
	Jobs          []string `json:"jobs"`
	DefaultSchool string   `json:"default_school"`
	Universities  []string `json:"universities"`
}

func OptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List selectable grades, jobs and universities",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			resp, err := api.Get("/options")
			if err != nil {
				return fmt.Errorf("failed to fetch options: %w", err)
			}

			var opts OptionsView
			if err := json.Unmarshal(resp.Data, &opts); err != nil {
				return fmt.Errorf("failed to parse options: %w", err)
			}
			if outputJSON(cmd) {
				return printJSON(os.Stdout, opts)
			}

			fmt.Printf("Grades:         %s\n", strings.Join(opts.Grades, ", "))
			fmt.Printf("Jobs:           %s\n", strings.Join(opts.Jobs, ", "))
			fmt.Printf("Default school: %s\n", opts.DefaultSchool)
			fmt.Printf("Universities:   %s\n", strings.Join(opts.Universities, ", "))
			return nil
		},
	}
}

// StartCmd opens a session and submits the profile in one step.
func StartCmd() *cobra.Command {
	var name, school, job, grade string

	cmd := &cobra.Command{
		Use:     "start",
		Short:   "Start a session and get major recommendations",
		Example: `  dreamcourse start --name 김민수 --job "소프트웨어 개발자" --grade 고2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			if school == "" {
				if resp, err := api.Get("/options"); err == nil {
					var opts OptionsView
					if json.Unmarshal(resp.Data, &opts) == nil {
						school = opts.DefaultSchool
					}
				}
			}

			created, err := requestView(api.Post("/sessions", nil))
			if err != nil {
				return fmt.Errorf("failed to create session: %w", err)
			}
			if err := SaveSessionID(created.ID); err != nil {
				return err
			}

			view, err := requestView(api.Post("/sessions/"+created.ID+"/profile", map[string]string{
				"name":   name,
				"school": school,
				"job":    job,
				"grade":  grade,
			}))
			if err != nil {
				return fmt.Errorf("session %s: %w", created.ID, err)
			}
			return render(cmd, view)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Student name")
	cmd.Flags().StringVar(&school, "school", "", "High school (default from server options)")
	cmd.Flags().StringVar(&job, "job", "", "Desired job")
	cmd.Flags().StringVar(&grade, "grade", "고1", "Grade (고1, 고2, 고3)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("job")

	return cmd
}

func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionCall(cmd, func(api *APIClient, id string) (*APIResponse, error) {
				return api.Get("/sessions/" + id)
			})
		},
	}
	addSessionFlag(cmd)
	return cmd
}

func MajorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "major <name>",
		Short: "Select a major",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionCall(cmd, func(api *APIClient, id string) (*APIResponse, error) {
				return api.Post("/sessions/"+id+"/major", map[string]string{"major": args[0]})
			})
		},
	}
	addSessionFlag(cmd)
	return cmd
}

func CurriculumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curriculum",
		Short: "Show the curriculum and admission tables for the selected major",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionCall(cmd, func(api *APIClient, id string) (*APIResponse, error) {
				return api.Post("/sessions/"+id+"/curriculum", nil)
			})
		},
	}
	addSessionFlag(cmd)
	return cmd
}

func BackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "back <majors|home>",
		Short:     "Navigate back to the major list or the home screen",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"majors", "home"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionCall(cmd, func(api *APIClient, id string) (*APIResponse, error) {
				return api.Post("/sessions/"+id+"/back", map[string]string{"to": args[0]})
			})
		},
	}
	addSessionFlag(cmd)
	return cmd
}

func EndCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			flagID, _ := cmd.Flags().GetString("session")
			id, err := CurrentSessionID(flagID)
			if err != nil {
				return err
			}
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			if _, err := api.Delete("/sessions/" + id); err != nil {
				return fmt.Errorf("failed to end session: %w", err)
			}
			if flagID == "" {
				if err := SaveSessionID(""); err != nil {
					return err
				}
			}
			fmt.Printf("Session %s ended.\n", id)
			return nil
		},
	}
	addSessionFlag(cmd)
	return cmd
}

func addSessionFlag(cmd *cobra.Command) {
	cmd.Flags().String("session", "", "Session ID (default: the session from 'start')")
}

func sessionCall(cmd *cobra.Command, call func(api *APIClient, id string) (*APIResponse, error)) error {
	flagID, _ := cmd.Flags().GetString("session")
	id, err := CurrentSessionID(flagID)
	if err != nil {
		return err
	}
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}
	view, err := requestView(call(api, id))
	if err != nil {
		return err
	}
	return render(cmd, view)
}

func requestView(resp *APIResponse, err error) (*SessionView, error) {
	if err != nil {
		return nil, err
	}
	var view SessionView
	if err := json.Unmarshal(resp.Data, &view); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &view, nil
}

func outputJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("output")
	return v
}

func printJSON(w io.Writer, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func render(cmd *cobra.Command, view *SessionView) error {
	if outputJSON(cmd) {
		return printJSON(os.Stdout, view)
	}
	return printSession(os.Stdout, view)
}

func printSession(w io.Writer, view *SessionView) error {
	fmt.Fprintf(w, "Session %s [%s]\n", view.ID, view.Screen)
	if view.Fault != "" {
		fmt.Fprintf(w, "Halted: %s\n", view.Fault)
		return nil
	}
	if p := view.Profile; p != nil {
		fmt.Fprintf(w, "%s (%s, 고%d) wants to be: %s\n", p.Name, p.School, p.Grade, p.Job)
	}

	switch view.Screen {
	case "major_selection":
		fmt.Fprintln(w)
		if err := printTable(w, view.MajorTable); err != nil {
			return err
		}
		if len(view.RecommendedMajors) > 0 {
			fmt.Fprintf(w, "\nRecommended majors: %s\n", strings.Join(view.RecommendedMajors, ", "))
		}
		if view.SelectedMajor != "" {
			fmt.Fprintf(w, "Selected: %s\n", view.SelectedMajor)
		}
	case "curriculum":
		fmt.Fprintf(w, "\n%s\n", view.SelectedMajor)
		if view.MajorComment != "" {
			fmt.Fprintf(w, "%s\n", view.MajorComment)
		}
		fmt.Fprintln(w)
		if err := printTable(w, view.CurriculumTable); err != nil {
			return err
		}
		fmt.Fprintln(w)
		if err := printTable(w, view.AdmissionTable); err != nil {
			return err
		}
	}
	return nil
}

func printTable(w io.Writer, t *TableView) error {
	if t == nil || len(t.Records) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return nil
	}
	rows := make([][]string, len(t.Records))
	for i, rec := range t.Records {
		row := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = rec[c]
		}
		rows[i] = row
	}
	return cli.PrintTable(w, t.Columns, rows)
}
