package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequiredImportColumns lists the headers every task list import must carry,
// in the order they are checked.
var RequiredImportColumns = []string{
	"hashtag", "title", "description", "karma", "usage_count", "variable_karma",
	"level", "channel", "type", "ig", "org",
}

// referenceColumns are replaced by their resolved ids on accepted rows.
var referenceColumns = []string{"channel", "type", "level", "ig", "org"}

// ImportOutcome partitions the rows of one import. Every input row lands in
// exactly one list, in input order.
type ImportOutcome struct {
	Accepted []*ImportRow `json:"Success"`
	Rejected []*ImportRow `json:"Failed"`
}

// Total returns the number of rows processed.
func (o ImportOutcome) Total() int {
	return len(o.Accepted) + len(o.Rejected)
}

// Importer validates task list rows against reference data and persists the
// accepted ones one at a time.
type Importer struct {
	Lookup Directory
	Tasks  TaskWriter

	// Now and NewID are injectable for tests.
	Now   func() time.Time
	NewID func() string
}

// NewImporter returns an Importer using the wall clock and random UUIDs.
func NewImporter(lookup Directory, tasks TaskWriter) *Importer {
	return &Importer{
		Lookup: lookup,
		Tasks:  tasks,
		Now:    func() time.Time { return time.Now().UTC() },
		NewID:  uuid.NewString,
	}
}

// Import validates rows in order and persists each accepted row as a Task
// created by actor.
//
// Batch errors (*EmptyInputError, *MissingColumnError) are returned before
// any row is touched. Row failures are collected in Rejected with an "error"
// column. A lookup failure other than ErrNotFound, or a cancelled ctx, stops
// the import and returns the rows processed so far with the error; rows
// already persisted stay persisted.
func (im *Importer) Import(ctx context.Context, rows []*ImportRow, actor string) (ImportOutcome, error) {
	var out ImportOutcome

	if len(rows) == 0 {
		return out, &EmptyInputError{}
	}
	for _, col := range RequiredImportColumns {
		if !rows[0].Has(col) {
			return out, &MissingColumnError{Column: col}
		}
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		res, err := im.resolve(ctx, row)
		if err != nil {
			return out, err
		}
		if res.reason != "" {
			out.Rejected = append(out.Rejected, rejectRow(row, res.reason))
			continue
		}

		task := im.buildTask(row, res, actor)
		if err := im.Tasks.CreateTask(ctx, task); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, ctxErr
			}
			reason := MapError(err).Message
			if errors.Is(err, ErrHashtagExists) {
				reason = "Hashtag already exists: " + task.Hashtag
			}
			out.Rejected = append(out.Rejected, rejectRow(row, reason))
			continue
		}

		out.Accepted = append(out.Accepted, acceptRow(row, task))
	}

	return out, nil
}

// resolution is the outcome of the per-row checks. A non-empty reason
// rejects the row.
type resolution struct {
	reason        string
	channel       Channel
	taskType      TaskType
	levelID       *string
	igID          *string
	orgID         *string
	karma         int
	usageCount    int
	variableKarma bool
}

// resolve runs the per-row checks in their fixed order; the first failure wins.
func (im *Importer) resolve(ctx context.Context, row *ImportRow) (resolution, error) {
	var res resolution

	hashtag := strings.TrimSpace(row.String("hashtag"))
	channelName := strings.TrimSpace(row.String("channel"))
	typeTitle := strings.TrimSpace(row.String("type"))
	levelName := strings.TrimSpace(row.String("level"))
	igName := strings.TrimSpace(row.String("ig"))
	orgCode := strings.TrimSpace(row.String("org"))

	channel, channelOK, err := found(im.Lookup.ChannelByName(ctx, channelName))
	if err != nil {
		return res, fmt.Errorf("lookup channel %q: %w", channelName, err)
	}
	taskType, typeOK, err := found(im.Lookup.TaskTypeByTitle(ctx, typeTitle))
	if err != nil {
		return res, fmt.Errorf("lookup task type %q: %w", typeTitle, err)
	}

	if hashtag == "" {
		res.reason = "Hashtag is required"
		return res, nil
	}
	exists, err := im.Tasks.HashtagExists(ctx, hashtag)
	if err != nil {
		return res, fmt.Errorf("check hashtag %q: %w", hashtag, err)
	}
	if exists {
		res.reason = "Hashtag already exists: " + hashtag
		return res, nil
	}
	if !channelOK {
		res.reason = "Invalid channel ID: " + channelName
		return res, nil
	}
	if !typeOK {
		res.reason = "Invalid task type ID: " + typeTitle
		return res, nil
	}
	res.channel, res.taskType = channel, taskType

	if levelName != "" {
		level, ok, err := found(im.Lookup.LevelByName(ctx, levelName))
		if err != nil {
			return res, fmt.Errorf("lookup level %q: %w", levelName, err)
		}
		if !ok {
			res.reason = "Invalid level ID: " + levelName
			return res, nil
		}
		res.levelID = &level.ID
	}
	if igName != "" {
		ig, ok, err := found(im.Lookup.InterestGroupByName(ctx, igName))
		if err != nil {
			return res, fmt.Errorf("lookup interest group %q: %w", igName, err)
		}
		if !ok {
			res.reason = "Invalid interest group ID: " + igName
			return res, nil
		}
		res.igID = &ig.ID
	}
	if orgCode != "" {
		org, ok, err := found(im.Lookup.OrganizationByCode(ctx, orgCode))
		if err != nil {
			return res, fmt.Errorf("lookup organization %q: %w", orgCode, err)
		}
		if !ok {
			res.reason = "Invalid organization ID: " + orgCode
			return res, nil
		}
		res.orgID = &org.ID
	}

	if res.karma, err = parseCount(row.String("karma")); err != nil {
		res.reason = "Invalid karma: " + row.String("karma")
		return res, nil
	}
	if res.usageCount, err = parseCount(row.String("usage_count")); err != nil {
		res.reason = "Invalid usage count: " + row.String("usage_count")
		return res, nil
	}
	if res.variableKarma, err = parseFlag(row.String("variable_karma")); err != nil {
		res.reason = "Invalid variable karma: " + row.String("variable_karma")
		return res, nil
	}

	return res, nil
}

func (im *Importer) buildTask(row *ImportRow, res resolution, actor string) Task {
	now := im.Now()
	return Task{
		ID:            im.NewID(),
		Hashtag:       strings.TrimSpace(row.String("hashtag")),
		Title:         row.String("title"),
		Description:   row.String("description"),
		Karma:         res.karma,
		UsageCount:    res.usageCount,
		VariableKarma: res.variableKarma,
		Active:        true,
		ChannelID:     res.channel.ID,
		Channel:       res.channel.Name,
		TypeID:        res.taskType.ID,
		Type:          res.taskType.Title,
		LevelID:       res.levelID,
		IGID:          res.igID,
		OrgID:         res.orgID,
		CreatedBy:     actor,
		CreatedAt:     now,
		UpdatedBy:     actor,
		UpdatedAt:     now,
	}
}

func rejectRow(row *ImportRow, reason string) *ImportRow {
	r := row.Clone()
	r.Set("error", reason)
	return r
}

func acceptRow(row *ImportRow, t Task) *ImportRow {
	r := row.Clone()
	for _, col := range referenceColumns {
		r.Delete(col)
	}
	r.Set("id", t.ID)
	r.Set("channel_id", t.ChannelID)
	r.Set("type_id", t.TypeID)
	r.Set("level_id", t.LevelID)
	r.Set("ig_id", t.IGID)
	r.Set("org_id", t.OrgID)
	r.Set("created_by", t.CreatedBy)
	r.Set("created_at", t.CreatedAt)
	r.Set("updated_by", t.UpdatedBy)
	r.Set("updated_at", t.UpdatedAt)
	r.Set("active", t.Active)
	return r
}

// found folds ErrNotFound into a false ok so only infrastructure errors propagate.
func found[T any](v T, err error) (T, bool, error) {
	if err == nil {
		return v, true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return v, false, nil
	}
	return v, false, err
}

// parseCount parses an integer cell; blank means zero.
func parseCount(s string) (int, error) {
	s = CleanCell(s)
	if s == "" {
		return 0, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		// Spreadsheets often store integers as "10.0".
		return int(f), nil
	}
	return strconv.Atoi(s)
}

// parseFlag parses a boolean cell; blank means false.
func parseFlag(s string) (bool, error) {
	switch strings.ToLower(CleanCell(s)) {
	case "":
		return false, nil
	case "true", "t", "yes", "y", "1", "1.0":
		return true, nil
	case "false", "f", "no", "n", "0", "0.0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
