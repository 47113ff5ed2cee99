package codes

import (
	"fmt"
	"io"
)

// Store abstracts the code table writes so the loader can be tested
// without a database. Each Ensure method inserts the row when missing and
// returns its id.
type Store interface {
	Transaction(fn func(Store) error) error
	EnsureFundingSource(name string) (int, error)
	EnsureInvestmentActionCategory(fundingSourceID int, name string) (int, error)
	EnsureRegion(name string) (int, error)
	EnsureTreatmentType(name, description string) (int, error)
	EnsureIUCN(level, parentID int, name string) (int, error)
}

// Result counts the rows a load touched.
type Result struct {
	FundingSources             int `json:"funding_sources"`
	InvestmentActionCategories int `json:"investment_action_categories"`
	Regions                    int `json:"regions"`
	TreatmentTypes             int `json:"treatment_types"`
	IUCN                       int `json:"iucn"`
}

// Loader writes a Document in one transaction.
type Loader struct {
	store Store
}

func NewLoader(store Store) *Loader {
	return &Loader{store: store}
}

// LoadFromReader parses and loads a codes document.
func (l *Loader) LoadFromReader(r io.Reader) (*Result, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return l.Load(doc)
}

func (l *Loader) Load(doc *Document) (*Result, error) {
	result := &Result{}
	err := l.store.Transaction(func(tx Store) error {
		*result = Result{}
		for _, fs := range doc.FundingSources {
			id, err := tx.EnsureFundingSource(fs.Name)
			if err != nil {
				return fmt.Errorf("funding source %q: %w", fs.Name, err)
			}
			result.FundingSources++
			for _, c := range fs.InvestmentActionCategories {
				if _, err := tx.EnsureInvestmentActionCategory(id, c); err != nil {
					return fmt.Errorf("investment action category %q: %w", c, err)
				}
				result.InvestmentActionCategories++
			}
		}
		for _, r := range doc.Regions {
			if _, err := tx.EnsureRegion(r); err != nil {
				return fmt.Errorf("region %q: %w", r, err)
			}
			result.Regions++
		}
		for _, tt := range doc.TreatmentTypes {
			if _, err := tx.EnsureTreatmentType(tt.Name, tt.Description); err != nil {
				return fmt.Errorf("treatment type %q: %w", tt.Name, err)
			}
			result.TreatmentTypes++
		}
		for _, n := range doc.IUCN {
			if err := loadIUCN(tx, n, 1, 0, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadIUCN(tx Store, n IUCNNode, level, parentID int, result *Result) error {
	id, err := tx.EnsureIUCN(level, parentID, n.Name)
	if err != nil {
		return fmt.Errorf("iucn level %d %q: %w", level, n.Name, err)
	}
	result.IUCN++
	for _, c := range n.Subclassifications {
		if err := loadIUCN(tx, c, level+1, id, result); err != nil {
			return err
		}
	}
	return nil
}
