package ingest

import (
	"fmt"

	"github.com/cratergraph/cratergraph/src/schema"
)

// loadDependencies streams dependencies.csv, keeping only kind == 0
// ("normal") rows whose version_id matches some crate's selected
// canonical version, and appends each to its source crate's dependency
// list.
func loadDependencies(
	dataDir string,
	crates map[string]*schema.Crate,
	versionToCrate map[int]string,
	crateIDToName map[int]string,
) (int, error) {
	return eachRow(dataDir, "dependencies", func(t *table, rec []string) error {
		kindStr, err := t.col(rec, "kind")
		if err != nil {
			return err
		}
		kind, err := parseInt(kindStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing kind: %w", err))
		}
		if kind != 0 {
			return nil
		}

		versionIDStr, err := t.col(rec, "version_id")
		if err != nil {
			return err
		}
		versionID, err := parseInt(versionIDStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing version_id: %w", err))
		}

		from, ok := versionToCrate[versionID]
		if !ok {
			// Dependency row references a version that lost the canonical
			// selection for its crate — not an error, just not relevant
			// to the graph being built from the chosen versions.
			return nil
		}

		crateIDStr, err := t.col(rec, "crate_id")
		if err != nil {
			return err
		}
		crateID, err := parseInt(crateIDStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing crate_id: %w", err))
		}
		to, ok := crateIDToName[crateID]
		if !ok {
			return t.rowErr(fmt.Errorf("dangling crate id %d", crateID))
		}

		defaultFeaturesStr, err := t.col(rec, "default_features")
		if err != nil {
			return err
		}
		optionalStr, err := t.col(rec, "optional")
		if err != nil {
			return err
		}
		featuresStr, err := t.col(rec, "features")
		if err != nil {
			return err
		}
		targetStr, err := t.col(rec, "target")
		if err != nil {
			return err
		}

		features, err := parseBraceList(featuresStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing features: %w", err))
		}

		src, ok := crates[from]
		if !ok {
			return t.rowErr(fmt.Errorf("dangling crate name %q", from))
		}

		src.Dependencies = append(src.Dependencies, schema.Dependency{
			From:            from,
			To:              to,
			DefaultFeatures: parseFlag(defaultFeaturesStr),
			Features:        features,
			Optional:        parseFlag(optionalStr),
			Target:          targetStr,
		})
		return nil
	})
}
