// Package storage persists generated browsing history into a SQLite
// database laid out exactly like Chrome's History file.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// HistoryWriter applies generated visits to a migrated History database.
// It owns the run's mutable write state: the previous visit's timestamp
// (feeding duration_since_last_visit) lives here, scoped to one writer
// per run, never shared.
type HistoryWriter struct {
	db  *sql.DB
	rng *rand.Rand

	// KeywordID identifies the search-engine keyword row that
	// keyword_search_terms entries reference.
	KeywordID int

	lastVisitTime int64
	hasLast       bool
}

// NewHistoryWriter creates a writer over an already-migrated database.
// The rand source must be the run's shared source: annotation fields
// (window ids, page end reasons) draw from it.
func NewHistoryWriter(db *sql.DB, rng *rand.Rand) *HistoryWriter {
	return &HistoryWriter{db: db, rng: rng, KeywordID: DefaultKeywordID}
}

// UpsertURL records one visit against the aggregate row for url. On first
// sight it inserts the row with visit_count 1; afterwards it increments
// the counters, raises last_visit_time to the max, and fills the title
// only if the stored one is empty or whitespace. Returns the row id.
func (w *HistoryWriter) UpsertURL(ctx context.Context, url, title string, visitTime int64, typed bool) (int64, error) {
	var (
		id            int64
		visitCount    int64
		typedCount    int64
		lastVisitTime int64
		existingTitle string
	)

	err := w.db.QueryRowContext(ctx,
		"SELECT id, visit_count, typed_count, last_visit_time, COALESCE(title,'') FROM urls WHERE url = ?",
		url,
	).Scan(&id, &visitCount, &typedCount, &lastVisitTime, &existingTitle)

	if errors.Is(err, sql.ErrNoRows) {
		typedCount = 0
		if typed {
			typedCount = 1
		}
		res, err := w.db.ExecContext(ctx,
			"INSERT INTO urls(url, title, visit_count, typed_count, last_visit_time, hidden) VALUES(?, ?, 1, ?, ?, 0)",
			url, title, typedCount, visitTime,
		)
		if err != nil {
			return 0, fmt.Errorf("insert url: %w", err)
		}
		return res.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("look up url: %w", err)
	}

	if typed {
		typedCount++
	}
	if visitTime > lastVisitTime {
		lastVisitTime = visitTime
	}
	finalTitle := existingTitle
	if strings.TrimSpace(existingTitle) == "" {
		finalTitle = title
	}

	if _, err := w.db.ExecContext(ctx,
		"UPDATE urls SET visit_count = ?, typed_count = ?, last_visit_time = ?, title = ? WHERE id = ?",
		visitCount+1, typedCount, lastVisitTime, finalTitle, id,
	); err != nil {
		return 0, fmt.Errorf("update url: %w", err)
	}

	return id, nil
}

// InsertVisit creates the visit row together with its 1:1 content and
// context annotation rows and its visit_source row, all in one
// transaction. Returns the new visit id.
func (w *HistoryWriter) InsertVisit(ctx context.Context, rec VisitRecord) (int64, error) {
	durationMicros := int64(ClampDwell(rec.DwellSec)) * 1_000_000

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	fromVisit := sql.NullInt64{Int64: rec.FromVisit, Valid: rec.FromVisit != 0}
	externalReferrer := sql.NullString{String: rec.ExternalReferrer, Valid: rec.ExternalReferrer != ""}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO visits(url, visit_time, from_visit, external_referrer_url, transition,
			visit_duration, incremented_omnibox_typed_score, is_known_to_sync,
			consider_for_ntp_most_visited, visited_link_id, app_id)
		VALUES(?, ?, ?, ?, ?, ?, 0, 0, 0, 0, NULL)
	`, rec.URLID, rec.VisitTime, fromVisit, externalReferrer, rec.Transition, durationMicros)
	if err != nil {
		return 0, fmt.Errorf("insert visit: %w", err)
	}

	visitID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	// source 0 = local browsing (SOURCE_BROWSED).
	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO visit_source(id, source) VALUES(?, 0)", visitID,
	); err != nil {
		return 0, fmt.Errorf("insert visit source: %w", err)
	}

	if err := w.insertContentAnnotation(ctx, tx, visitID, rec); err != nil {
		return 0, err
	}
	if err := w.insertContextAnnotation(ctx, tx, visitID, rec.VisitTime, durationMicros); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit visit: %w", err)
	}

	w.lastVisitTime = rec.VisitTime
	w.hasLast = true
	return visitID, nil
}

func (w *HistoryWriter) insertContentAnnotation(ctx context.Context, tx *sql.Tx, visitID int64, rec VisitRecord) error {
	searchTerms := sql.NullString{String: rec.SearchTerm, Valid: rec.SearchTerm != ""}
	// Chrome fills search_normalized_url only on search result pages.
	searchNormalizedURL := sql.NullString{String: rec.ExternalReferrer, Valid: rec.SearchTerm != "" && rec.ExternalReferrer != ""}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO content_annotations(visit_id, visibility_score, floc_protected_score, categories,
			page_topics_model_version, annotation_flags, entities, related_searches,
			search_normalized_url, search_terms, alternative_title, page_language,
			password_state, has_url_keyed_image)
		VALUES(?, -1, NULL, NULL, -1, 0, NULL, NULL, ?, ?, NULL, NULL, 0, 0)
	`, visitID, searchNormalizedURL, searchTerms)
	if err != nil {
		return fmt.Errorf("insert content annotation: %w", err)
	}
	return nil
}

// pageEndReasons holds the plausible terminal codes for an ordinary
// browsing session (tab closed, new navigation, and friends).
var pageEndReasons = []int{3, 4, 5, 6}

func (w *HistoryWriter) insertContextAnnotation(ctx context.Context, tx *sql.Tx, visitID, visitTime, durationMicros int64) error {
	durationSinceLast := int64(-1_000_000)
	if w.hasLast {
		durationSinceLast = visitTime - w.lastVisitTime
	}

	windowID := int64(1_000_000_000 + w.rng.Int63n(1_000_000_000))
	tabID := windowID + 1
	taskID := visitTime
	endReason := pageEndReasons[w.rng.Intn(len(pageEndReasons))]

	_, err := tx.ExecContext(ctx, `
		INSERT INTO context_annotations(visit_id, context_annotation_flags, duration_since_last_visit,
			page_end_reason, total_foreground_duration, browser_type,
			window_id, tab_id, task_id, root_task_id, parent_task_id, response_code)
		VALUES(?, 0, ?, ?, ?, 1, ?, ?, ?, ?, -1, 200)
	`, visitID, durationSinceLast, endReason, durationMicros, windowID, tabID, taskID, taskID)
	if err != nil {
		return fmt.Errorf("insert context annotation: %w", err)
	}
	return nil
}

// InsertSearchTerm links a normalized query term to a URL aggregate row.
// Blank terms are skipped.
func (w *HistoryWriter) InsertSearchTerm(ctx context.Context, urlID int64, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	_, err := w.db.ExecContext(ctx,
		"INSERT INTO keyword_search_terms(keyword_id, url_id, term, normalized_term) VALUES(?, ?, ?, ?)",
		w.KeywordID, urlID, term, NormalizeTerm(term),
	)
	if err != nil {
		return fmt.Errorf("insert search term: %w", err)
	}
	return nil
}

// NormalizeTerm lower-cases a query and collapses runs of whitespace.
func NormalizeTerm(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), " ")
}
