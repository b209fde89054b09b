package ingest

import (
	"fmt"

	"github.com/cratergraph/cratergraph/src/schema"
)

// loadCategories streams categories.csv, returning the name→Category map
// and the SQL id→name lookup used to resolve join-table rows.
func loadCategories(dataDir string) (map[string]*schema.Category, map[int]string, error) {
	byName := make(map[string]*schema.Category)
	idToName := make(map[int]string)

	_, err := eachRow(dataDir, "categories", func(t *table, rec []string) error {
		idStr, err := t.col(rec, "id")
		if err != nil {
			return err
		}
		name, err := t.col(rec, "category")
		if err != nil {
			return err
		}
		description, err := t.col(rec, "description")
		if err != nil {
			return err
		}
		id, err := parseInt(idStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing id: %w", err))
		}

		byName[name] = &schema.Category{
			Name:        name,
			Description: description,
			SQLID:       id,
		}
		idToName[id] = name
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return byName, idToName, nil
}

// loadKeywords streams keywords.csv, returning the name→Keyword map and
// the SQL id→name lookup.
func loadKeywords(dataDir string) (map[string]*schema.Keyword, map[int]string, error) {
	byName := make(map[string]*schema.Keyword)
	idToName := make(map[int]string)

	_, err := eachRow(dataDir, "keywords", func(t *table, rec []string) error {
		idStr, err := t.col(rec, "id")
		if err != nil {
			return err
		}
		name, err := t.col(rec, "keyword")
		if err != nil {
			return err
		}
		cntStr, err := t.col(rec, "crates_cnt")
		if err != nil {
			return err
		}
		id, err := parseInt(idStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing id: %w", err))
		}
		cnt, err := parseInt(cntStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing crates_cnt: %w", err))
		}

		byName[name] = &schema.Keyword{
			Name:      name,
			CratesCnt: cnt,
			SQLID:     id,
		}
		idToName[id] = name
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return byName, idToName, nil
}

// loadCrates streams crates.csv, returning the name→Crate map and the SQL
// id→name lookup. Version-derived fields (created_at, version, features)
// are left zero until Build folds the canonical versions in.
func loadCrates(dataDir string) (map[string]*schema.Crate, map[int]string, error) {
	byName := make(map[string]*schema.Crate)
	idToName := make(map[int]string)

	_, err := eachRow(dataDir, "crates", func(t *table, rec []string) error {
		idStr, err := t.col(rec, "id")
		if err != nil {
			return err
		}
		name, err := t.col(rec, "name")
		if err != nil {
			return err
		}
		description, err := t.col(rec, "description")
		if err != nil {
			return err
		}
		downloadsStr, err := t.col(rec, "downloads")
		if err != nil {
			return err
		}
		id, err := parseInt(idStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing id: %w", err))
		}
		downloads, err := parseInt(downloadsStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing downloads: %w", err))
		}

		byName[name] = &schema.Crate{
			Name:        name,
			Description: description,
			Downloads:   int64(downloads),
			SQLID:       id,
		}
		idToName[id] = name
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return byName, idToName, nil
}
