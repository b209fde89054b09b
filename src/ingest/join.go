package ingest

import (
	"fmt"

	"github.com/cratergraph/cratergraph/src/schema"
)

// loadCrateCategories streams crates_categories.csv, populating each
// crate's Categories list and each category's Crates list.
func loadCrateCategories(
	dataDir string,
	crates map[string]*schema.Crate,
	categories map[string]*schema.Category,
	crateIDToName map[int]string,
	categoryIDToName map[int]string,
) (int, error) {
	return eachRow(dataDir, "crates_categories", func(t *table, rec []string) error {
		crateIDStr, err := t.col(rec, "crate_id")
		if err != nil {
			return err
		}
		categoryIDStr, err := t.col(rec, "category_id")
		if err != nil {
			return err
		}
		crateID, err := parseInt(crateIDStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing crate_id: %w", err))
		}
		categoryID, err := parseInt(categoryIDStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing category_id: %w", err))
		}

		crateName, ok := crateIDToName[crateID]
		if !ok {
			return t.rowErr(fmt.Errorf("dangling crate id %d", crateID))
		}
		categoryName, ok := categoryIDToName[categoryID]
		if !ok {
			return t.rowErr(fmt.Errorf("dangling category id %d", categoryID))
		}

		crates[crateName].Categories = append(crates[crateName].Categories, categoryName)
		categories[categoryName].Crates = append(categories[categoryName].Crates, crateName)
		return nil
	})
}

// loadCrateKeywords streams crates_keywords.csv, populating each crate's
// Keywords list and each keyword's Crates list.
func loadCrateKeywords(
	dataDir string,
	crates map[string]*schema.Crate,
	keywords map[string]*schema.Keyword,
	crateIDToName map[int]string,
	keywordIDToName map[int]string,
) (int, error) {
	return eachRow(dataDir, "crates_keywords", func(t *table, rec []string) error {
		crateIDStr, err := t.col(rec, "crate_id")
		if err != nil {
			return err
		}
		keywordIDStr, err := t.col(rec, "keyword_id")
		if err != nil {
			return err
		}
		crateID, err := parseInt(crateIDStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing crate_id: %w", err))
		}
		keywordID, err := parseInt(keywordIDStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing keyword_id: %w", err))
		}

		crateName, ok := crateIDToName[crateID]
		if !ok {
			return t.rowErr(fmt.Errorf("dangling crate id %d", crateID))
		}
		keywordName, ok := keywordIDToName[keywordID]
		if !ok {
			return t.rowErr(fmt.Errorf("dangling keyword id %d", keywordID))
		}

		crates[crateName].Keywords = append(crates[crateName].Keywords, keywordName)
		keywords[keywordName].Crates = append(keywords[keywordName].Crates, crateName)
		return nil
	})
}
