package leaderboard

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/lookboard/internal/common"
	"github.com/dmitrijs2005/lookboard/internal/cryptox"
	"github.com/dmitrijs2005/lookboard/internal/logging"
	"github.com/dmitrijs2005/lookboard/internal/server/blobs"
	"github.com/dmitrijs2005/lookboard/internal/server/models"
	"github.com/dmitrijs2005/lookboard/internal/server/sheets"
)

// Repository is the board's record store.
type Repository interface {
	// List returns every entry with a parsable score, in sheet order.
	List(ctx context.Context) ([]models.Entry, error)
	// Rows is List plus the rows whose score does not parse, which carry
	// UnscoredRank as their score.
	Rows(ctx context.Context) ([]models.Entry, error)
	// GetAll is List with failures logged and reported as an empty board.
	GetAll(ctx context.Context) []models.Entry
	// GetTop returns at most n entries in rank order.
	GetTop(ctx context.Context, n int) []models.Entry
	// Add appends e, stamping CreatedAt when it is zero.
	Add(ctx context.Context, e models.Entry) error
	// Delete removes the most recent entry matching identity whose secret
	// verifies, together with its image.
	Delete(ctx context.Context, identity, secret string) (bool, error)
	// Evict removes the most recent row with e's identity, stored secret,
	// image and score, together with its image.
	Evict(ctx context.Context, e models.Entry) (bool, error)
}

// UnscoredRank is the score a row with an unparsable score ranks at when
// the board is pruned.
const UnscoredRank = -1

// Canonical header columns.
const (
	ColIdentity = "identity"
	ColScore    = "score"
	ColDate     = "date"
	ColSecret   = "secret"
	ColImageRef = "image_ref"
)

// Header is written to an empty sheet.
var Header = []string{ColIdentity, ColScore, ColDate, ColSecret, ColImageRef}

// aliases maps header names of older sheets to canonical columns.
var aliases = map[string]string{
	"name":        ColIdentity,
	"created_at":  ColDate,
	"delete_pass": ColSecret,
	"image_url":   ColImageRef,
}

const dayLayout = "2006-01-02"

// SheetRepository keeps entries as rows of one sheet.
type SheetRepository struct {
	opener   sheets.Opener
	sheet    string
	blobs    *blobs.Manager
	tieBreak TieBreak
	logger   logging.Logger
	now      func() time.Time
}

func NewSheetRepository(opener sheets.Opener, sheet string, blobMgr *blobs.Manager, tb TieBreak, logger logging.Logger) *SheetRepository {
	return &SheetRepository{
		opener:   opener,
		sheet:    sheet,
		blobs:    blobMgr,
		tieBreak: tb,
		logger:   logger.With("module", "repository", "sheet", sheet),
		now:      time.Now,
	}
}

// snapshot is one read of the sheet.
type snapshot struct {
	sheet   sheets.Sheet
	empty   bool
	header  []string
	columns map[string]int
	entries []models.Entry
	// rows holds every data row, unscored ones included.
	rows []models.Entry
}

func (r *SheetRepository) read(ctx context.Context) (*snapshot, error) {
	sh, err := r.opener.Open(ctx, r.sheet)
	if err != nil {
		return nil, err
	}
	rows, err := sh.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w: %w", common.ErrRemote, err)
	}

	snap := &snapshot{sheet: sh, columns: map[string]int{}, empty: len(rows) == 0}
	if snap.empty {
		return snap, nil
	}
	snap.header = rows[0]
	snap.columns = mapColumns(rows[0])

	idCol, okID := snap.columns[ColIdentity]
	scoreCol, okScore := snap.columns[ColScore]
	if !okID || !okScore {
		return snap, nil
	}

	for i, row := range rows[1:] {
		score, err := strconv.ParseFloat(strings.TrimSpace(cell(row, scoreCol)), 64)
		scored := err == nil && !math.IsNaN(score) && !math.IsInf(score, 0)
		if !scored {
			score = UnscoredRank
		}
		e := models.Entry{
			Identity: strings.TrimSpace(cell(row, idCol)),
			Score:    score,
			Row:      i + 2,
		}
		if c, ok := snap.columns[ColDate]; ok {
			e.CreatedAt = parseDate(cell(row, c))
		}
		if c, ok := snap.columns[ColSecret]; ok {
			e.SecretHash = strings.TrimSpace(cell(row, c))
		}
		if c, ok := snap.columns[ColImageRef]; ok {
			e.ImageRef = strings.TrimSpace(cell(row, c))
		}
		snap.rows = append(snap.rows, e)
		if scored {
			snap.entries = append(snap.entries, e)
		}
	}
	return snap, nil
}

func (r *SheetRepository) List(ctx context.Context) ([]models.Entry, error) {
	snap, err := r.read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.entries, nil
}

func (r *SheetRepository) Rows(ctx context.Context) ([]models.Entry, error) {
	snap, err := r.read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.rows, nil
}

func (r *SheetRepository) GetAll(ctx context.Context) []models.Entry {
	entries, err := r.List(ctx)
	if err != nil {
		r.logger.Error(ctx, "ranking fetch failed", "error", err)
		return []models.Entry{}
	}
	return entries
}

func (r *SheetRepository) GetTop(ctx context.Context, n int) []models.Entry {
	entries := r.GetAll(ctx)
	Rank(entries, r.tieBreak)
	if n < 0 {
		n = 0
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func (r *SheetRepository) Add(ctx context.Context, e models.Entry) error {
	snap, err := r.read(ctx)
	if err != nil {
		return err
	}
	if err := r.ensureHeader(ctx, snap); err != nil {
		return err
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}
	row := make([]string, len(snap.header))
	set := func(col, value string) {
		row[snap.columns[col]] = value
	}
	set(ColIdentity, e.Identity)
	set(ColScore, strconv.FormatFloat(e.Score, 'f', -1, 64))
	set(ColDate, e.CreatedAt.UTC().Format(time.RFC3339))
	set(ColSecret, e.SecretHash)
	set(ColImageRef, e.ImageRef)

	if err := snap.sheet.AppendRow(ctx, row); err != nil {
		return fmt.Errorf("append row: %w: %w", common.ErrRemote, err)
	}
	r.logger.Info(ctx, "entry added", "identity", e.Identity, "score", e.Score)
	return nil
}

// ensureHeader writes the full header to an empty sheet and appends any
// canonical column an older header lacks.
func (r *SheetRepository) ensureHeader(ctx context.Context, snap *snapshot) error {
	if isBlank(snap.header) {
		if snap.empty {
			if err := snap.sheet.AppendRow(ctx, Header); err != nil {
				return fmt.Errorf("write header: %w: %w", common.ErrRemote, err)
			}
		} else {
			for i, name := range Header {
				if err := snap.sheet.UpdateHeaderCell(ctx, i+1, name); err != nil {
					return fmt.Errorf("write header: %w: %w", common.ErrRemote, err)
				}
			}
		}
		snap.header = append([]string(nil), Header...)
		snap.columns = mapColumns(snap.header)
		return nil
	}

	for _, name := range Header {
		if _, ok := snap.columns[name]; ok {
			continue
		}
		col := len(snap.header) + 1
		if err := snap.sheet.UpdateHeaderCell(ctx, col, name); err != nil {
			return fmt.Errorf("upgrade header: %w: %w", common.ErrRemote, err)
		}
		r.logger.Info(ctx, "header upgraded", "column", name, "position", col)
		snap.header = append(snap.header, name)
		snap.columns[name] = col - 1
	}
	return nil
}

func (r *SheetRepository) Delete(ctx context.Context, identity, secret string) (bool, error) {
	identity, secret = Normalize(identity), Normalize(secret)
	if identity == "" || secret == "" {
		return false, nil
	}
	return r.removeLast(ctx, func(e models.Entry) bool {
		return Normalize(e.Identity) == identity && cryptox.VerifySecret(e.SecretHash, secret)
	})
}

func (r *SheetRepository) Evict(ctx context.Context, target models.Entry) (bool, error) {
	return r.removeLast(ctx, func(e models.Entry) bool {
		return e.Identity == target.Identity &&
			e.SecretHash == target.SecretHash &&
			e.ImageRef == target.ImageRef &&
			e.Score == target.Score
	})
}

// removeLast deletes the last matching row, then releases its image. A blob
// failure is logged by the manager and does not fail the removal.
func (r *SheetRepository) removeLast(ctx context.Context, match func(models.Entry) bool) (bool, error) {
	snap, err := r.read(ctx)
	if err != nil {
		return false, err
	}
	for i := len(snap.rows) - 1; i >= 0; i-- {
		e := snap.rows[i]
		if !match(e) {
			continue
		}
		if err := snap.sheet.DeleteRow(ctx, e.Row); err != nil {
			return false, fmt.Errorf("delete row %d: %w: %w", e.Row, common.ErrRemote, err)
		}
		r.logger.Info(ctx, "entry removed", "identity", e.Identity, "row", e.Row)
		_ = r.blobs.Delete(ctx, e.ImageRef)
		return true, nil
	}
	return false, nil
}

func mapColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		if _, seen := cols[name]; !seen && name != "" {
			cols[name] = i
		}
	}
	return cols
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t
	}
	return time.Time{}
}
