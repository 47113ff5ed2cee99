package queries

import "github.com/bcgov/restoration-tracker/pkg/model"

func InsertFundingSource(projectID int, f model.FundingSource, userID int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case f.InvestmentActionCategory == 0:
		return nil, missing("investment action category")
	case f.StartDate == "", f.EndDate == "":
		return nil, missing("funding dates")
	}
	return &Statement{
		SQL: `INSERT INTO project_funding_source (
  project_id, investment_action_category_id, funding_source_project_id,
  funding_amount, funding_start_date, funding_end_date, create_user
) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		Args: []interface{}{
			projectID, f.InvestmentActionCategory, nullable(f.AgencyProjectID),
			f.FundingAmount, f.StartDate, f.EndDate, nullableInt(userID),
		},
	}, nil
}

func DeleteFundingSources(projectID int) (*Statement, error) {
	return deleteByProject("project_funding_source", projectID)
}
