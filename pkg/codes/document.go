// Package codes loads code table values (funding sources, regions,
// treatment types and the IUCN hierarchy) from a YAML document.
//
//	funding_sources:
//	  - name: Habitat Conservation Trust Foundation
//	    investment_action_categories: [Not Applicable, Action 1]
//	regions: [Kootenay-Boundary, Thompson-Okanagan]
//	treatment_types:
//	  - name: Seeding
//	    description: Native seed mix applied
//	iucn:
//	  - name: Species Management
//	    subclassifications:
//	      - name: Species Recovery
//	        subclassifications: [Captive breeding]
//
// Loading is idempotent: existing names are left in place.
package codes

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the parsed codes file.
type Document struct {
	FundingSources []FundingSource `yaml:"funding_sources"`
	Regions        []string        `yaml:"regions"`
	TreatmentTypes []TreatmentType `yaml:"treatment_types"`
	IUCN           []IUCNNode      `yaml:"iucn"`
}

type FundingSource struct {
	Name                       string   `yaml:"name"`
	InvestmentActionCategories []string `yaml:"investment_action_categories"`
}

type TreatmentType struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// IUCNNode is one level of the classification hierarchy. A plain string
// is accepted for leaf nodes.
type IUCNNode struct {
	Name               string     `yaml:"name"`
	Subclassifications []IUCNNode `yaml:"subclassifications"`
}

func (n *IUCNNode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		n.Name = value.Value
		return nil
	}
	type plain IUCNNode
	return value.Decode((*plain)(n))
}

// Parse decodes and validates a codes document. Unknown keys are rejected.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse codes: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate reports blank names and IUCN nesting deeper than three levels.
func (d *Document) Validate() error {
	var problems []string
	for i, fs := range d.FundingSources {
		if strings.TrimSpace(fs.Name) == "" {
			problems = append(problems, fmt.Sprintf("funding_sources[%d]: name is required", i))
		}
		for j, c := range fs.InvestmentActionCategories {
			if strings.TrimSpace(c) == "" {
				problems = append(problems, fmt.Sprintf("funding_sources[%d].investment_action_categories[%d]: name is required", i, j))
			}
		}
	}
	for i, r := range d.Regions {
		if strings.TrimSpace(r) == "" {
			problems = append(problems, fmt.Sprintf("regions[%d]: name is required", i))
		}
	}
	for i, tt := range d.TreatmentTypes {
		if strings.TrimSpace(tt.Name) == "" {
			problems = append(problems, fmt.Sprintf("treatment_types[%d]: name is required", i))
		}
	}
	for i, n := range d.IUCN {
		problems = append(problems, validateIUCN(n, fmt.Sprintf("iucn[%d]", i), 1)...)
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid codes document: %s", strings.Join(problems, "; "))
	}
	return nil
}

func validateIUCN(n IUCNNode, at string, level int) []string {
	var problems []string
	if strings.TrimSpace(n.Name) == "" {
		problems = append(problems, at+": name is required")
	}
	if level == 3 && len(n.Subclassifications) > 0 {
		return append(problems, at+": level 3 classifications cannot have subclassifications")
	}
	for i, c := range n.Subclassifications {
		problems = append(problems, validateIUCN(c, fmt.Sprintf("%s.subclassifications[%d]", at, i), level+1)...)
	}
	return problems
}
