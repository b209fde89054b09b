package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	masterminds "github.com/Masterminds/semver/v3"
)

// rawVersion is one row of versions.csv, prior to being folded into its
// crate's canonical fields.
type rawVersion struct {
	CrateID   int
	CreatedAt time.Time
	Features  string // raw JSON object, feature name → enabling tokens
	ID        int
	Num       string
}

// loadVersions streams versions.csv and retains one canonical rawVersion
// per crate id (see replaces for the selection predicate). conflicts
// counts how many rows were compared against an already-retained row for
// the same crate (one per row after a crate's first, whichever side
// wins) — purely informational, for the ingestor's summary narration.
func loadVersions(dataDir string) (byCrate map[int]*rawVersion, conflicts int, err error) {
	byCrate = make(map[int]*rawVersion)

	_, err = eachRow(dataDir, "versions", func(t *table, rec []string) error {
		crateIDStr, err := t.col(rec, "crate_id")
		if err != nil {
			return err
		}
		createdAtStr, err := t.col(rec, "created_at")
		if err != nil {
			return err
		}
		features, err := t.col(rec, "features")
		if err != nil {
			return err
		}
		idStr, err := t.col(rec, "id")
		if err != nil {
			return err
		}
		num, err := t.col(rec, "num")
		if err != nil {
			return err
		}

		crateID, err := parseInt(crateIDStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing crate_id: %w", err))
		}
		id, err := parseInt(idStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing id: %w", err))
		}
		createdAt, err := parseTimestamp(createdAtStr)
		if err != nil {
			return t.rowErr(fmt.Errorf("parsing created_at: %w", err))
		}

		v := &rawVersion{
			CrateID:   crateID,
			CreatedAt: createdAt,
			Features:  features,
			ID:        id,
			Num:       num,
		}

		incumbent, ok := byCrate[crateID]
		switch {
		case !ok:
			byCrate[crateID] = v
		case replaces(v, incumbent):
			byCrate[crateID] = v
			conflicts++
		default:
			conflicts++
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return byCrate, conflicts, nil
}

// replaces reports whether candidate should supersede incumbent as the
// canonical version for their shared crate: a stable release beats a
// pre-release, otherwise (major, minor, patch) decides, semver beats
// non-semver, and two non-semver versions compare by created_at.
func replaces(candidate, incumbent *rawVersion) bool {
	v, vErr := masterminds.NewVersion(candidate.Num)
	w, wErr := masterminds.NewVersion(incumbent.Num)

	switch {
	case vErr == nil && wErr == nil:
		vStable := v.Prerelease() == ""
		wStable := w.Prerelease() == ""
		if vStable && !wStable {
			return true
		}
		if vStable == wStable {
			return compareMMP(v, w) > 0
		}
		return false
	case vErr == nil && wErr != nil:
		return true
	case vErr != nil && wErr == nil:
		return false
	default: // neither parses
		return candidate.CreatedAt.After(incumbent.CreatedAt)
	}
}

// compareMMP compares two versions by (major, minor, patch) only,
// ignoring pre-release and build metadata — the two inputs are already
// known to share a stability classification by the time this is called.
func compareMMP(a, b *masterminds.Version) int {
	if a.Major() != b.Major() {
		return cmpUint64(a.Major(), b.Major())
	}
	if a.Minor() != b.Minor() {
		return cmpUint64(a.Minor(), b.Minor())
	}
	return cmpUint64(a.Patch(), b.Patch())
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// featureMap deserializes a version's features JSON column into the
// crate feature map.
func featureMap(raw string) (map[string][]string, error) {
	var m map[string][]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("decoding features JSON: %w", err)
	}
	return m, nil
}
