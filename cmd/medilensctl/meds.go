package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type medication struct {
	Name      string `json:"name"`
	Info      string `json:"info"`
	FoodNotes string `json:"foodNotes"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Days      int    `json:"days"`
	UsageTime string `json:"usageTime"`
	SearchURL string `json:"searchUrl"`
}

func init() {
	medsCmd := &cobra.Command{
		Use:   "meds",
		Short: "Medication set operations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered medications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMedsList(apiFlag, os.Stdout)
		},
	}
	medsCmd.AddCommand(listCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete every medication with the given name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMedsDelete(apiFlag, args[0], os.Stdout)
		},
	}
	medsCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(medsCmd)
}

func runMedsList(api string, out io.Writer) error {
	data, err := checkResponse(newClient(api).R().Get("/api/medications"))
	if err != nil {
		return err
	}
	if jsonFlag {
		_, _ = fmt.Fprintln(out, string(data))
		return nil
	}
	var body struct {
		Medications []medication `json:"medications"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	printMedications(out, body.Medications)
	return nil
}

func runMedsDelete(api, name string, out io.Writer) error {
	data, err := checkResponse(newClient(api).R().Delete("/api/medications/" + url.PathEscape(name)))
	if err != nil {
		return err
	}
	var body struct {
		Deleted int `json:"deleted"`
	}
	_ = json.Unmarshal(data, &body)
	_, _ = fmt.Fprintf(out, "deleted %d record(s) named %s\n", body.Deleted, name)
	return nil
}

func printMedications(out io.Writer, meds []medication) {
	if len(meds) == 0 {
		_, _ = fmt.Fprintln(out, "no medications registered")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tFROM\tTO\tDAYS\tUSAGE")
	for _, m := range meds {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", m.Name, m.StartDate, m.EndDate, m.Days, m.UsageTime)
	}
	_ = tw.Flush()
}
