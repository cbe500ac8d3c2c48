package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	var todayDate string
	todayCmd := &cobra.Command{
		Use:   "today",
		Short: "Show the checklist of medications due on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToday(apiFlag, todayDate, os.Stdout)
		},
	}
	todayCmd.Flags().StringVarP(&todayDate, "date", "d", "", "Date YYYY-MM-DD (default: today)")
	rootCmd.AddCommand(todayCmd)

	var undo bool
	checkCmd := &cobra.Command{
		Use:   "check DATE NAME",
		Short: "Mark a dose as taken (or not, with --undo)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(apiFlag, args[0], args[1], !undo, os.Stdout)
		},
	}
	checkCmd.Flags().BoolVar(&undo, "undo", false, "Clear the checkmark instead of setting it")
	rootCmd.AddCommand(checkCmd)

	var from, to string
	calendarCmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show courses and fully-taken days for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalendar(apiFlag, from, to, os.Stdout)
		},
	}
	calendarCmd.Flags().StringVar(&from, "from", "", "First date YYYY-MM-DD (default: first of this month)")
	calendarCmd.Flags().StringVar(&to, "to", "", "Last date YYYY-MM-DD (default: end of this month)")
	rootCmd.AddCommand(calendarCmd)

	var yes bool
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all medications and adherence history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			return runReset(apiFlag, os.Stdout)
		},
	}
	resetCmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	rootCmd.AddCommand(resetCmd)
}

func runToday(api, date string, out io.Writer) error {
	req := newClient(api).R()
	if date != "" {
		req.SetQueryParam("date", date)
	}
	data, err := checkResponse(req.Get("/api/schedule"))
	if err != nil {
		return err
	}
	if jsonFlag {
		_, _ = fmt.Fprintln(out, string(data))
		return nil
	}
	var cl struct {
		Date  string `json:"date"`
		Items []struct {
			medication
			RemainingDays int  `json:"remainingDays"`
			Taken         bool `json:"taken"`
		} `json:"items"`
		AllTaken bool `json:"allTaken"`
	}
	if err := json.Unmarshal(data, &cl); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	_, _ = fmt.Fprintf(out, "%s\n", cl.Date)
	if len(cl.Items) == 0 {
		_, _ = fmt.Fprintln(out, "nothing due")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, it := range cl.Items {
		mark := "[ ]"
		if it.Taken {
			mark = "[x]"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d day(s) left\n", mark, it.Name, it.UsageTime, it.RemainingDays)
	}
	_ = tw.Flush()
	if cl.AllTaken {
		_, _ = fmt.Fprintln(out, "all doses taken")
	}
	return nil
}

func runCheck(api, date, name string, taken bool, out io.Writer) error {
	path := "/api/adherence/" + url.PathEscape(date) + "/" + url.PathEscape(name)
	_, err := checkResponse(newClient(api).R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]bool{"taken": taken}).
		Put(path))
	if err != nil {
		return err
	}
	state := "taken"
	if !taken {
		state = "not taken"
	}
	_, _ = fmt.Fprintf(out, "%s on %s: %s\n", name, date, state)
	return nil
}

func runCalendar(api, from, to string, out io.Writer) error {
	req := newClient(api).R()
	if from != "" {
		req.SetQueryParam("from", from)
	}
	if to != "" {
		req.SetQueryParam("to", to)
	}
	data, err := checkResponse(req.Get("/api/calendar"))
	if err != nil {
		return err
	}
	if jsonFlag {
		_, _ = fmt.Fprintln(out, string(data))
		return nil
	}
	var cal struct {
		From string `json:"from"`
		To   string `json:"to"`
		Bars []struct {
			Name  string `json:"name"`
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"bars"`
		AdherentDays []string `json:"adherentDays"`
	}
	if err := json.Unmarshal(data, &cal); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	_, _ = fmt.Fprintf(out, "%s .. %s\n", cal.From, cal.To)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, b := range cal.Bars {
		_, _ = fmt.Fprintf(tw, "%s\t%s\tuntil %s\n", b.Name, b.Start, b.End)
	}
	_ = tw.Flush()
	if len(cal.AdherentDays) > 0 {
		_, _ = fmt.Fprintf(out, "fully taken: %s\n", strings.Join(cal.AdherentDays, ", "))
	}
	return nil
}

func runReset(api string, out io.Writer) error {
	if _, err := checkResponse(newClient(api).R().Delete("/api/data")); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "all data deleted")
	return nil
}
