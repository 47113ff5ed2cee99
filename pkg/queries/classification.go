package queries

// InsertIUCNClassification links a level 3 IUCN subclassification.
func InsertIUCNClassification(projectID, level3ID int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case level3ID == 0:
		return nil, missing("iucn subclassification")
	}
	return &Statement{
		SQL: `INSERT INTO project_iucn_action_classification (
  project_id, iucn_conservation_action_level_3_subclassification_id
) VALUES (?, ?)`,
		Args: []interface{}{projectID, level3ID},
	}, nil
}

func DeleteIUCNClassifications(projectID int) (*Statement, error) {
	return deleteByProject("project_iucn_action_classification", projectID)
}

func InsertRegion(projectID, regionID int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case regionID == 0:
		return nil, missing("region")
	}
	return &Statement{
		SQL:  `INSERT INTO project_region (project_id, nrm_region_id) VALUES (?, ?)`,
		Args: []interface{}{projectID, regionID},
	}, nil
}

func DeleteRegions(projectID int) (*Statement, error) {
	return deleteByProject("project_region", projectID)
}

// InsertSpecies links focal species by taxonomic unit id.
func InsertSpecies(projectID int, taxonIDs []int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case len(taxonIDs) == 0:
		return nil, missing("species")
	}
	args := make([]interface{}, 0, len(taxonIDs)*2)
	for _, id := range taxonIDs {
		args = append(args, projectID, id)
	}
	return &Statement{
		SQL: `INSERT INTO project_species (project_id, wldtaxonomic_units_id)
VALUES ` + valuesList("(?, ?)", len(taxonIDs)) + `
ON CONFLICT (project_id, wldtaxonomic_units_id) DO NOTHING`,
		Args: args,
	}, nil
}

func DeleteSpecies(projectID int) (*Statement, error) {
	return deleteByProject("project_species", projectID)
}

func InsertStakeholderPartnership(projectID int, name string) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case name == "":
		return nil, missing("partnership name")
	}
	return &Statement{
		SQL:  `INSERT INTO stakeholder_partnership (project_id, name) VALUES (?, ?)`,
		Args: []interface{}{projectID, name},
	}, nil
}

func DeleteStakeholderPartnerships(projectID int) (*Statement, error) {
	return deleteByProject("stakeholder_partnership", projectID)
}

// table is always a package constant, never user input.
func deleteByProject(table string, projectID int) (*Statement, error) {
	if projectID == 0 {
		return nil, missing("project id")
	}
	return &Statement{
		SQL:  `DELETE FROM ` + table + ` WHERE project_id = ?`,
		Args: []interface{}{projectID},
	}, nil
}
