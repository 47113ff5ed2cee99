package queries

import "github.com/bcgov/restoration-tracker/pkg/model"

// UpsertAttachment inserts an attachment row or, when the project already
// has a file of the same name, updates it in place keeping its key. The
// statement returns project_attachment_id and key.
func UpsertAttachment(projectID int, a model.Attachment, userID int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case a.FileName == "":
		return nil, missing("file name")
	case a.UUID == "":
		return nil, missing("attachment uuid")
	case a.Key == "":
		return nil, missing("object key")
	}
	return &Statement{
		SQL: `INSERT INTO project_attachment (
  project_id, uuid, file_name, file_type, file_size, title, description, key, create_user
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (project_id, file_name) DO UPDATE SET
  file_type = EXCLUDED.file_type,
  file_size = EXCLUDED.file_size,
  title = EXCLUDED.title,
  description = EXCLUDED.description,
  update_date = now(),
  update_user = EXCLUDED.create_user,
  revision_count = project_attachment.revision_count + 1
RETURNING project_attachment_id, key`,
		Args: []interface{}{
			projectID, a.UUID, a.FileName, nullable(a.FileType), a.Size,
			a.Title, a.Description, a.Key, nullableInt(userID),
		},
	}, nil
}

// DeleteAttachment removes an attachment row. The statement returns key.
func DeleteAttachment(projectID, attachmentID int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case attachmentID == 0:
		return nil, missing("attachment id")
	}
	return &Statement{
		SQL: `DELETE FROM project_attachment
WHERE project_id = ?
  AND project_attachment_id = ?
RETURNING key`,
		Args: []interface{}{projectID, attachmentID},
	}, nil
}
