package queries

import "github.com/bcgov/restoration-tracker/pkg/model"

func InsertContact(projectID int, c model.Contact, userID int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case c.FirstName == "", c.LastName == "":
		return nil, missing("contact name")
	case c.EmailAddress == "":
		return nil, missing("contact email")
	case c.Agency == "":
		return nil, missing("contact agency")
	}
	return &Statement{
		SQL: `INSERT INTO project_contact (
  project_id, first_name, last_name, email_address, agency, is_public, is_primary, create_user
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		Args: []interface{}{projectID, c.FirstName, c.LastName, c.EmailAddress, c.Agency, c.IsPublic, c.IsPrimary, nullableInt(userID)},
	}, nil
}

func DeleteContacts(projectID int) (*Statement, error) {
	return deleteByProject("project_contact", projectID)
}
