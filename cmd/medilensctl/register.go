package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var date string
	registerCmd := &cobra.Command{
		Use:   "register IMAGE",
		Short: "Analyze a prescription photo and replace the medication set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(apiFlag, args[0], date, os.Stdout)
		},
	}
	registerCmd.Flags().StringVarP(&date, "date", "d", "", "Registration date YYYY-MM-DD (default: today on the server)")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(api, imagePath, date string, out io.Writer) error {
	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	req := newClient(api).R().SetFile("image", imagePath)
	if date != "" {
		req.SetFormData(map[string]string{"date": date})
	}
	data, err := checkResponse(req.Post("/api/prescriptions"))
	if err != nil {
		return err
	}
	if jsonFlag {
		_, _ = fmt.Fprintln(out, string(data))
		return nil
	}
	var body struct {
		Count       int          `json:"count"`
		Medications []medication `json:"medications"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	_, _ = fmt.Fprintf(out, "registered %d medication(s)\n", body.Count)
	printMedications(out, body.Medications)
	return nil
}
