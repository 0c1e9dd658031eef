package main

import (
	"encoding/json"
	"io"
	"strconv"

	"leadqualify_backend/internal/communications"
	"leadqualify_backend/internal/leads/domain"
	"leadqualify_backend/internal/leads/pipeline"

	"github.com/jedib0t/go-pretty/v6/table"
)

func renderSummary(w io.Writer, summary pipeline.BatchSummary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("run " + summary.RunID)
	tw.AppendHeader(table.Row{"Lead", "Success", "New status", "Error", "Time (ms)"})
	for _, r := range summary.Results {
		tw.AppendRow(table.Row{r.LeadID, r.Success, r.NewStatus, r.Error, r.ProcessingTime.Milliseconds()})
	}
	tw.AppendFooter(table.Row{
		"found " + strconv.Itoa(summary.TotalFound),
		"ok " + strconv.Itoa(summary.Succeeded),
		"failed " + strconv.Itoa(summary.Failed),
		"", "",
	})
	tw.Render()
}

func renderLeads(w io.Writer, items []domain.Lead) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Tenant", "Name", "Email", "Status", "Attempts", "Created"})
	for _, l := range items {
		tw.AppendRow(table.Row{l.ID, l.ClientID, l.Name, l.Email, l.Status, l.QualificationAttempts, l.CreatedAt.UTC().Format("2006-01-02 15:04:05")})
	}
	tw.Render()
}

func renderCommunications(w io.Writer, items []communications.Communication) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("communications")
	tw.AppendHeader(table.Row{"ID", "Type", "Recipient", "Status", "Final", "Retries", "Error", "Created"})
	for _, c := range items {
		errMsg := ""
		if c.ErrorMessage != nil {
			errMsg = *c.ErrorMessage
		}
		tw.AppendRow(table.Row{
			c.ID, c.Type, c.Recipient, c.Status, c.Status.IsTerminal(), c.RetryCount, errMsg,
			c.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	tw.Render()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
