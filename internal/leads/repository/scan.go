package repository

import (
	"slices"
	"strings"

	"leadqualify_backend/internal/leads/domain"

	"github.com/jackc/pgx/v5"
)

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	var status string
	err := row.Scan(
		&lead.ID, &lead.ClientID, &lead.CompanyID, &lead.Name, &lead.Email, &lead.Phone,
		&status, &lead.Notes, &lead.CustomData,
		&lead.QualificationScore, &lead.QualificationNotes, &lead.QualificationAttempts,
		&lead.ClaimedAt, &lead.QualifiedAt, &lead.LastError, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Status = domain.LeadStatus(status)
	return lead, nil
}

func collectLeads(rows pgx.Rows) ([]domain.Lead, error) {
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}

func sortOldestFirst(leads []domain.Lead) {
	slices.SortStableFunc(leads, func(a, b domain.Lead) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}

// prefixed qualifies every column in a comma separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
